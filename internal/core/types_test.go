package core

import "testing"

type stubSim struct{ name string }

func (s *stubSim) Name() string   { return s.name }
func (s *stubSim) Size() Size     { return Size{W: 1, H: 1} }
func (s *stubSim) Reset(int64)    {}
func (s *stubSim) Step(float64)   {}
func (s *stubSim) Cells() []uint8 { return []uint8{0} }

func TestRegistryBuild(t *testing.T) {
	Register("stub-test", func(map[string]string) (Sim, error) {
		return &stubSim{name: "stub-test"}, nil
	})
	defer delete(sims, "stub-test")

	sim, err := Build("stub-test", nil)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if sim.Name() != "stub-test" {
		t.Fatalf("unexpected sim %q", sim.Name())
	}
	if _, err := Build("missing", nil); err == nil {
		t.Fatal("expected error for unknown sim")
	}

	found := false
	for _, name := range Names() {
		if name == "stub-test" {
			found = true
		}
	}
	if !found {
		t.Fatal("Names should list registered sims")
	}
}

func TestRegisterIgnoresEmpty(t *testing.T) {
	before := len(Sims())
	Register("", func(map[string]string) (Sim, error) { return nil, nil })
	Register("nil-factory", nil)
	if len(Sims()) != before {
		t.Fatal("empty registrations must be ignored")
	}
}
