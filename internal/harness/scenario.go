package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fxlab/paramcheck/internal/checker"
	"github.com/fxlab/paramcheck/internal/effect"
	"github.com/fxlab/paramcheck/internal/param"
)

// Scenario defines one conformance run: the band and capability of a
// simulated effect instance, the queued parameter values, optional
// per-value expected outcomes, and optional injected faults.
type Scenario struct {
	// Name uniquely identifies this scenario; it also names the golden
	// trace file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Band optionally narrows the protocol band. When omitted the
	// protocol default applies.
	Band *BandSpec `yaml:"band,omitempty"`

	// Capability is the bound the simulated instance reports.
	Capability CapabilitySpec `yaml:"capability"`

	// Faults are misbehaviors injected into the simulated instance.
	Faults []string `yaml:"faults,omitempty"`

	// Values are the parameter values to queue, in order.
	Values []ValueSpec `yaml:"values"`

	// Expect optionally lists the expected outcome per value, aligned
	// with Values. When present it must have the same length.
	Expect []string `yaml:"expect,omitempty"`

	// FatalExpected marks scenarios whose run must abort with a
	// protocol failure rather than finish the sweep.
	FatalExpected bool `yaml:"fatal_expected,omitempty"`
}

// BandSpec is the YAML form of param.Band.
type BandSpec struct {
	MinLevelDB int `yaml:"min_level_db"`
	MaxLevelDB int `yaml:"max_level_db"`
}

// CapabilitySpec is the YAML form of param.Capability.
type CapabilitySpec struct {
	MaxLevelDB int `yaml:"max_level_db"`
}

// ValueSpec is the YAML form of a param.Value: exactly one of Level or
// Mute must be present.
type ValueSpec struct {
	Level *int  `yaml:"level,omitempty"`
	Mute  *bool `yaml:"mute,omitempty"`
}

// Value converts the YAML form to a param.Value.
func (s ValueSpec) Value() (param.Value, error) {
	switch {
	case s.Level != nil && s.Mute != nil:
		return param.Value{}, fmt.Errorf("value must set level or mute, not both")
	case s.Level != nil:
		return param.Level(*s.Level), nil
	case s.Mute != nil:
		return param.Mute(*s.Mute), nil
	default:
		return param.Value{}, fmt.Errorf("value must set level or mute")
	}
}

// LoadScenario reads and parses a scenario YAML file. Unknown fields
// are rejected so typos fail loudly instead of silently relaxing a
// scenario.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks required fields and cross-field consistency.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Values) == 0 {
		return fmt.Errorf("values list is required and must be non-empty")
	}

	band := s.band()
	if err := band.Validate(); err != nil {
		return err
	}
	if err := s.capability().Validate(band); err != nil {
		// Intentionally allowed: scenarios may declare a widening
		// capability to assert the checker aborts on it. Such a
		// scenario must say so.
		if !s.FatalExpected {
			return fmt.Errorf("capability widens band without fatal_expected: %w", err)
		}
	}

	for i, vs := range s.Values {
		if _, err := vs.Value(); err != nil {
			return fmt.Errorf("values[%d]: %w", i, err)
		}
	}

	if len(s.Expect) > 0 {
		if len(s.Expect) != len(s.Values) {
			return fmt.Errorf("expect has %d entries, values has %d", len(s.Expect), len(s.Values))
		}
		for i, e := range s.Expect {
			if _, err := checker.ParseOutcome(e); err != nil {
				return fmt.Errorf("expect[%d]: %w", i, err)
			}
		}
	}

	for i, f := range s.Faults {
		if _, err := effect.ParseFault(f); err != nil {
			return fmt.Errorf("faults[%d]: %w", i, err)
		}
	}

	return nil
}

// band returns the effective protocol band.
func (s *Scenario) band() param.Band {
	if s.Band == nil {
		return param.DefaultBand
	}
	return param.Band{MinLevelDB: s.Band.MinLevelDB, MaxLevelDB: s.Band.MaxLevelDB}
}

// capability returns the declared capability.
func (s *Scenario) capability() param.Capability {
	return param.Capability{MaxLevelDB: s.Capability.MaxLevelDB}
}

// values converts the queued value specs. Validation has already
// guaranteed each spec is well-formed.
func (s *Scenario) values() []param.Value {
	out := make([]param.Value, len(s.Values))
	for i, vs := range s.Values {
		v, _ := vs.Value()
		out[i] = v
	}
	return out
}

// faults converts the declared fault names.
func (s *Scenario) faults() []effect.Fault {
	out := make([]effect.Fault, len(s.Faults))
	for i, f := range s.Faults {
		fault, _ := effect.ParseFault(f)
		out[i] = fault
	}
	return out
}
