package effect

import (
	"context"
	"fmt"
	"sync"

	"github.com/fxlab/paramcheck/internal/param"
)

// Fault selects a misbehavior for a SimEffect. Harness scenarios inject
// faults to exercise the checker's failure classes without a real
// broken vendor implementation.
type Fault string

const (
	// FaultRejectAll makes SetParameter reject every value as an
	// illegal argument, including in-range ones.
	FaultRejectAll Fault = "reject_all"

	// FaultCorruptGet makes GetParameter return a level one dB below
	// the stored value, breaking the round-trip law.
	FaultCorruptGet Fault = "corrupt_get"

	// FaultDropCapability makes Capability fail with a transport error.
	FaultDropCapability Fault = "drop_capability"

	// FaultFailTransport makes SetParameter fail with a transport
	// error instead of a verdict.
	FaultFailTransport Fault = "fail_transport"
)

// ParseFault validates a fault name from a scenario file.
func ParseFault(s string) (Fault, error) {
	switch f := Fault(s); f {
	case FaultRejectAll, FaultCorruptGet, FaultDropCapability, FaultFailTransport:
		return f, nil
	default:
		return "", fmt.Errorf("unknown fault %q", s)
	}
}

// SimEffect is the in-memory reference implementation of Effect.
//
// It enforces the same range rule the checker predicts: a level is
// accepted iff it lies inside the configured band and does not exceed
// the configured capability. A conforming SimEffect therefore passes
// every sweep; faults make it misbehave in controlled ways.
//
// SimEffect has an explicit open window. Calls before Open or after
// Close fail with a CodeClosed protocol error, which the checker
// treats as fatal (the harness owns the lifecycle, not the checker).
//
// Thread-safety: all methods are safe for concurrent use via an
// internal mutex, though the checker itself is strictly sequential.
type SimEffect struct {
	desc   Descriptor
	band   param.Band
	cap    param.Capability
	faults map[Fault]bool

	mu     sync.Mutex
	open   bool
	values map[param.Family]param.Value
}

// SimConfig configures a SimEffect.
type SimConfig struct {
	Descriptor Descriptor
	Band       param.Band
	Capability param.Capability
	Faults     []Fault
}

// NewSim creates a closed SimEffect. Call Open before use.
func NewSim(cfg SimConfig) *SimEffect {
	faults := make(map[Fault]bool, len(cfg.Faults))
	for _, f := range cfg.Faults {
		faults[f] = true
	}
	return &SimEffect{
		desc:   cfg.Descriptor,
		band:   cfg.Band,
		cap:    cfg.Capability,
		faults: faults,
	}
}

// Open starts the instance's open window and seeds the default
// parameter state: level at the band minimum, mute off.
func (s *SimEffect) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open {
		return fmt.Errorf("effect %s already open", s.desc.Name)
	}
	s.open = true
	s.values = map[param.Family]param.Value{
		param.FamilyLevel: param.Level(s.band.MinLevelDB),
		param.FamilyMute:  param.Mute(false),
	}
	return nil
}

// Close ends the open window. Closing a closed instance is an error.
func (s *SimEffect) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return NewClosed(s.desc.Name)
	}
	s.open = false
	s.values = nil
	return nil
}

// Descriptor implements Effect.
func (s *SimEffect) Descriptor() Descriptor {
	return s.desc
}

// Capability implements Effect.
func (s *SimEffect) Capability(ctx context.Context) (param.Capability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return param.Capability{}, NewClosed(s.desc.Name)
	}
	if s.faults[FaultDropCapability] {
		return param.Capability{}, NewTransport(s.desc.Name, "capability query dropped")
	}
	return s.cap, nil
}

// SetParameter implements Effect. A rejected value leaves the stored
// state for its family untouched.
func (s *SimEffect) SetParameter(ctx context.Context, v param.Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return NewClosed(s.desc.Name)
	}
	if s.faults[FaultFailTransport] {
		return NewTransport(s.desc.Name, "set dropped by transport")
	}
	if s.faults[FaultRejectAll] {
		return NewIllegalArgument(s.desc.Name, fmt.Sprintf("rejecting %s", v))
	}
	if level, ok := v.LevelDB(); ok {
		if !s.band.Contains(level) || level > s.cap.MaxLevelDB {
			return NewIllegalArgument(s.desc.Name,
				fmt.Sprintf("level %d dB outside band %s with capability max %d dB",
					level, s.band, s.cap.MaxLevelDB))
		}
	}
	s.values[v.Family()] = v
	return nil
}

// GetParameter implements Effect.
func (s *SimEffect) GetParameter(ctx context.Context, f param.Family) (param.Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return param.Value{}, NewClosed(s.desc.Name)
	}
	v, ok := s.values[f]
	if !ok {
		return param.Value{}, NewTransport(s.desc.Name, fmt.Sprintf("no stored value for family %s", f))
	}
	if s.faults[FaultCorruptGet] {
		if level, isLevel := v.LevelDB(); isLevel {
			return param.Level(level - 1), nil
		}
	}
	return v, nil
}
