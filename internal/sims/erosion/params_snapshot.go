package erosion

import (
	"strconv"

	"hydro-erosion/internal/core"
)

// Parameters reports the current tunables grouped for display.
func (s *Session) Parameters() core.ParameterSnapshot {
	cfg := s.sim.Config()
	params := cfg.Params
	features := cfg.Features
	groups := []core.ParameterGroup{
		{
			Name: "Grid",
			Params: []core.Parameter{
				intParam("w", "Width", cfg.Width),
				intParam("h", "Height", cfg.Height),
				int64Param("seed", "Seed", s.seed),
				intParam("workers", "Workers", cfg.Workers),
			},
		},
		{
			Name:    "Flow",
			Summary: "Virtual pipe acceleration: dt * A * g * dh / l",
			Params: []core.Parameter{
				floatParam("pipe_cross_section", "Pipe cross section", params.PipeCrossSection),
				floatParam("gravity", "Gravity", params.Gravity),
				floatParam("length_pipe", "Pipe length", params.LengthPipe),
				stringParam("head", "Head mode", features.Head.String()),
			},
		},
		{
			Name: "Sediment",
			Params: []core.Parameter{
				floatParam("sediment_transport", "Sediment capacity", params.SedimentTransport),
				floatParam("dissolving", "Dissolving rate", params.Dissolving),
				floatParam("deposition", "Deposition rate", params.Deposition),
				floatParam("min_alpha", "Min slope alpha", params.MinAlpha),
				stringParam("transport", "Transport sampler", features.Transport.String()),
			},
		},
		{
			Name: "Water",
			Params: []core.Parameter{
				floatParam("evaporation", "Evaporation rate", params.Evaporation),
				floatParam("injection_cutoff", "Injection cutoff (s)", features.InjectionCutoff),
				boolParam("source_ttl", "Source TTL", features.SourceTTL),
				boolParam("telemetry", "Telemetry", features.Telemetry),
			},
		},
	}
	return core.ParameterSnapshot{Groups: groups}
}

// ParameterControls lists the HUD-adjustable tunables.
func (s *Session) ParameterControls() []core.ParameterControl {
	return []core.ParameterControl{
		{Key: "pipe_cross_section", Label: "Pipe area", Type: core.ParamTypeFloat, Step: 10, Min: 0, HasMin: true, Max: 1000, HasMax: true},
		{Key: "gravity", Label: "Gravity", Type: core.ParamTypeFloat, Step: 0.1, Min: 0, HasMin: true, Max: 20, HasMax: true},
		{Key: "sediment_transport", Label: "Capacity", Type: core.ParamTypeFloat, Step: 0.1, Min: 0, HasMin: true, Max: 10, HasMax: true},
		{Key: "dissolving", Label: "Dissolve", Type: core.ParamTypeFloat, Step: 0.0005, Min: 0, HasMin: true, Max: 0.05, HasMax: true},
		{Key: "deposition", Label: "Deposit", Type: core.ParamTypeFloat, Step: 0.0005, Min: 0, HasMin: true, Max: 0.05, HasMax: true},
		{Key: "evaporation", Label: "Evaporation", Type: core.ParamTypeFloat, Step: 0.01, Min: 0, HasMin: true, Max: 1, HasMax: true},
		{Key: "workers", Label: "Workers", Type: core.ParamTypeInt, Step: 1, Min: 1, HasMin: true, Max: 64, HasMax: true},
		{Key: "telemetry", Label: "Telemetry", Type: core.ParamTypeBool},
		{Key: "source_ttl", Label: "Source TTL", Type: core.ParamTypeBool},
	}
}

// SetFloatParameter updates a physical tunable. It reports false for unknown
// keys or values the configuration rejects.
func (s *Session) SetFloatParameter(key string, value float64) bool {
	cfg := s.sim.Config()
	params := cfg.Params
	switch key {
	case "pipe_cross_section":
		params.PipeCrossSection = value
	case "gravity":
		params.Gravity = value
	case "length_pipe":
		params.LengthPipe = value
	case "sediment_transport":
		params.SedimentTransport = value
	case "dissolving":
		params.Dissolving = value
	case "deposition":
		params.Deposition = value
	case "evaporation":
		params.Evaporation = value
	case "min_alpha":
		params.MinAlpha = value
	case "injection_cutoff":
		features := cfg.Features
		features.InjectionCutoff = value
		return s.sim.SetFeatures(features) == nil
	default:
		return false
	}
	return s.sim.SetParams(params) == nil
}

// SetIntParameter updates integer settings.
func (s *Session) SetIntParameter(key string, value int) bool {
	switch key {
	case "workers":
		if value < 1 {
			return false
		}
		s.sim.SetWorkers(value)
		return true
	}
	return false
}

// SetBoolParameter toggles feature flags.
func (s *Session) SetBoolParameter(key string, value bool) bool {
	features := s.sim.Config().Features
	switch key {
	case "telemetry":
		features.Telemetry = value
	case "source_ttl":
		features.SourceTTL = value
	default:
		return false
	}
	return s.sim.SetFeatures(features) == nil
}

func intParam(key, label string, value int) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.Itoa(value),
	}
}

func int64Param(key, label string, value int64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.FormatInt(value, 10),
	}
}

func floatParam(key, label string, value float64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeFloat,
		Value: strconv.FormatFloat(value, 'f', -1, 64),
	}
}

func boolParam(key, label string, value bool) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeBool,
		Value: strconv.FormatBool(value),
	}
}

func stringParam(key, label, value string) core.Parameter {
	return core.Parameter{Key: key, Label: label, Type: core.ParamTypeString, Value: value}
}
