package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fxlab/paramcheck/internal/param"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/accept_below_capability.yaml")
	require.NoError(t, err)

	assert.Equal(t, "accept_below_capability", s.Name)
	require.NotNil(t, s.Band)
	assert.Equal(t, -100, s.Band.MinLevelDB)
	assert.Equal(t, 0, s.Capability.MaxLevelDB)
	require.Len(t, s.Values, 1)
	v, err := s.Values[0].Value()
	require.NoError(t, err)
	assert.True(t, v.Equal(param.Level(-1)))
	assert.Equal(t, []string{"accepted"}, s.Expect)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/nope.yaml")
	assert.Error(t, err)
}

func TestLoadScenario_UnknownFieldRejected(t *testing.T) {
	path := writeScenario(t, `
name: typo
description: a typo should fail loudly
capability:
  max_level_db: 0
valuez:
  - level: -1
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "valuez")
}

func TestLoadScenario_DefaultBand(t *testing.T) {
	path := writeScenario(t, `
name: default_band
description: omitting the band falls back to the protocol default
capability:
  max_level_db: 0
values:
  - mute: true
`)
	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, param.DefaultBand, s.band())
}

func TestValidateScenario(t *testing.T) {
	level := -1
	on := true
	valid := func() *Scenario {
		return &Scenario{
			Name:        "s",
			Description: "d",
			Capability:  CapabilitySpec{MaxLevelDB: 0},
			Values:      []ValueSpec{{Level: &level}},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Scenario)
		wantErr string
	}{
		{"valid", func(s *Scenario) {}, ""},
		{"missing name", func(s *Scenario) { s.Name = "" }, "name is required"},
		{"missing description", func(s *Scenario) { s.Description = "" }, "description is required"},
		{"no values", func(s *Scenario) { s.Values = nil }, "values list"},
		{"inverted band", func(s *Scenario) {
			s.Band = &BandSpec{MinLevelDB: 0, MaxLevelDB: -1}
		}, "inverted band"},
		{"widening capability without fatal", func(s *Scenario) {
			s.Capability.MaxLevelDB = 1
		}, "fatal_expected"},
		{"widening capability with fatal", func(s *Scenario) {
			s.Capability.MaxLevelDB = 1
			s.FatalExpected = true
		}, ""},
		{"value with both variants", func(s *Scenario) {
			s.Values = []ValueSpec{{Level: &level, Mute: &on}}
		}, "not both"},
		{"empty value", func(s *Scenario) {
			s.Values = []ValueSpec{{}}
		}, "level or mute"},
		{"expect length mismatch", func(s *Scenario) {
			s.Expect = []string{"accepted", "rejected"}
		}, "expect has 2 entries"},
		{"bad outcome", func(s *Scenario) {
			s.Expect = []string{"maybe"}
		}, "unknown outcome"},
		{"bad fault", func(s *Scenario) {
			s.Faults = []string{"explode"}
		}, "unknown fault"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(s)
			err := validateScenario(s)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValueSpec_Value(t *testing.T) {
	level := -42
	v, err := ValueSpec{Level: &level}.Value()
	require.NoError(t, err)
	assert.True(t, v.Equal(param.Level(-42)))

	on := false
	v, err = ValueSpec{Mute: &on}.Value()
	require.NoError(t, err)
	assert.True(t, v.Equal(param.Mute(false)))
}
