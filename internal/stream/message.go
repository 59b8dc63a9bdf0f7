package stream

import "hydro-erosion/internal/sims/erosion"

// Message kinds accepted from clients.
const (
	MsgAddSource    = "add_source"
	MsgRemoveSource = "remove_source"
	MsgClearSources = "clear_sources"
	MsgPause        = "pause"
)

// Message is a control request from a client.
type Message struct {
	Type     string  `json:"type"`
	X        int     `json:"x"`
	Y        int     `json:"y"`
	Radius   int     `json:"radius"`
	Strength float64 `json:"strength"`
	TTL      float64 `json:"ttl"`
	Paused   bool    `json:"paused"`
}

// ApplySourceMessage performs the source edits a message asks for. Messages
// that are not about sources are ignored and report false.
func ApplySourceMessage(m *erosion.SourceManager, msg Message) (bool, error) {
	switch msg.Type {
	case MsgAddSource:
		src := erosion.WaterSource{X: msg.X, Y: msg.Y, Radius: msg.Radius, Strength: msg.Strength, TTL: msg.TTL}
		if err := src.Validate(); err != nil {
			return false, err
		}
		m.Add(src)
		return true, nil
	case MsgRemoveSource:
		return m.RemoveNearest(msg.X, msg.Y), nil
	case MsgClearSources:
		m.Clear()
		return true, nil
	}
	return false, nil
}
