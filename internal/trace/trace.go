// Package trace records the observable calls made against an effect
// during an evaluation run. Traces are serialized as canonical JSON so
// golden-file comparison is byte-stable across runs and platforms.
package trace

// Kind labels a trace event.
type Kind string

const (
	// KindCapability records a capability query.
	KindCapability Kind = "capability"

	// KindSet records a set attempt and its verdict.
	KindSet Kind = "set"

	// KindGet records a round-trip read.
	KindGet Kind = "get"
)

// Event is one observable call in an evaluation run.
type Event struct {
	// Kind is the call type.
	Kind Kind `json:"kind"`

	// Seq is the deterministic sequence number within the run.
	Seq int64 `json:"seq"`

	// Value is the rendered parameter value for set/get events.
	Value string `json:"value,omitempty"`

	// Verdict is "accepted" or "rejected" for set events.
	Verdict string `json:"verdict,omitempty"`

	// MaxLevelDB is the reported bound for capability events.
	MaxLevelDB int `json:"max_level_db,omitempty"`
}

// toCanonical converts an event to the map form MarshalCanonical accepts.
// Zero-valued optional fields are dropped, mirroring the JSON tags.
func (e Event) toCanonical() map[string]any {
	m := map[string]any{
		"kind": string(e.Kind),
		"seq":  e.Seq,
	}
	if e.Value != "" {
		m["value"] = e.Value
	}
	if e.Verdict != "" {
		m["verdict"] = e.Verdict
	}
	if e.MaxLevelDB != 0 {
		m["max_level_db"] = e.MaxLevelDB
	}
	return m
}

// Snapshot is the golden-file payload for one run.
type Snapshot struct {
	Name   string
	Events []Event
}

// MarshalCanonical serializes the snapshot as canonical JSON.
func (s Snapshot) MarshalCanonical() ([]byte, error) {
	events := make([]any, len(s.Events))
	for i, e := range s.Events {
		events[i] = e.toCanonical()
	}
	return MarshalCanonical(map[string]any{
		"name":   s.Name,
		"events": events,
	})
}
