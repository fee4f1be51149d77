package checker

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fxlab/paramcheck/internal/effect"
	"github.com/fxlab/paramcheck/internal/param"
)

var testBand = param.Band{MinLevelDB: -100, MaxLevelDB: 0}

func newTestEffect(t *testing.T, capability param.Capability, faults ...effect.Fault) *effect.SimEffect {
	t.Helper()
	sim := effect.NewSim(effect.SimConfig{
		Descriptor: effect.Descriptor{
			Name:        "volume",
			Implementor: "test",
			UUID:        uuid.MustParse("fa81dd00-588b-11ed-9b6a-0242ac120002"),
		},
		Band:       testBand,
		Capability: capability,
		Faults:     faults,
	})
	require.NoError(t, sim.Open())
	t.Cleanup(func() { _ = sim.Close() })
	return sim
}

func TestIsInRange_Level(t *testing.T) {
	chk := New(WithBand(testBand))

	tests := []struct {
		name     string
		level    int
		capMax   int
		want     bool
	}{
		{"below band", -101, 0, false},
		{"band min", -100, 0, true},
		{"interior", -50, 0, true},
		{"band max", 0, 0, true},
		{"above band", 1, 0, false},
		{"above capability", -5, -10, false},
		{"at capability", -10, -10, true},
		{"band min with narrow capability", -100, -10, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := chk.IsInRange(param.Level(tt.level), param.Capability{MaxLevelDB: tt.capMax})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsInRange_Mute(t *testing.T) {
	chk := New(WithBand(testBand))

	// Mute has no range; the capability never matters.
	for _, m := range []bool{false, true} {
		for _, capMax := range []int{-100, -1, 0} {
			assert.True(t, chk.IsInRange(param.Mute(m), param.Capability{MaxLevelDB: capMax}))
		}
	}
}

func TestIsInRange_PureFunction(t *testing.T) {
	chk := New(WithBand(testBand))
	capability := param.Capability{MaxLevelDB: 0}

	// Same inputs, same verdict, regardless of anything done in between.
	first := chk.IsInRange(param.Level(-1), capability)
	eff := newTestEffect(t, capability)
	_, err := chk.Evaluate(context.Background(), eff, DefaultValues(testBand))
	require.NoError(t, err)
	second := chk.IsInRange(param.Level(-1), capability)
	assert.Equal(t, first, second)
}

func TestEvaluate_ConformingInstance(t *testing.T) {
	chk := New(WithBand(testBand))
	eff := newTestEffect(t, param.Capability{MaxLevelDB: 0})

	report, err := chk.Evaluate(context.Background(), eff, DefaultValues(testBand))
	require.NoError(t, err)

	assert.True(t, report.Pass())
	assert.Equal(t, 7, report.Passed, "5 boundary levels + 2 mutes")
	assert.Zero(t, report.Failed)

	// Out-of-band levels are expected rejections and still count as passes.
	assert.Equal(t, Rejected, report.Checks[0].Expected)
	assert.Equal(t, Rejected, report.Checks[0].Observed)
	assert.True(t, report.Checks[0].Pass)
	assert.Nil(t, report.Checks[0].RoundTrip, "no get after an expected rejection")

	// Accepted values carry the round-trip value.
	assert.Equal(t, Accepted, report.Checks[1].Expected)
	require.NotNil(t, report.Checks[1].RoundTrip)
	assert.True(t, report.Checks[1].RoundTrip.Equal(param.Level(-100)))
}

func TestEvaluate_AcceptBelowCapability(t *testing.T) {
	// Scenario A: cap 0, band [-100, 0], Level(-1) accepted and read back.
	chk := New(WithBand(testBand))
	eff := newTestEffect(t, param.Capability{MaxLevelDB: 0})

	report, err := chk.Evaluate(context.Background(), eff, []param.Value{param.Level(-1)})
	require.NoError(t, err)
	require.Len(t, report.Checks, 1)

	c := report.Checks[0]
	assert.Equal(t, Accepted, c.Expected)
	assert.True(t, c.Pass)
	require.NotNil(t, c.RoundTrip)
	assert.True(t, c.RoundTrip.Equal(param.Level(-1)))
}

func TestEvaluate_RejectAboveBand(t *testing.T) {
	// Scenario B: Level(1) rejected, stored state unchanged.
	chk := New(WithBand(testBand))
	eff := newTestEffect(t, param.Capability{MaxLevelDB: 0})
	ctx := context.Background()

	require.NoError(t, eff.SetParameter(ctx, param.Level(-7)))

	report, err := chk.Evaluate(ctx, eff, []param.Value{param.Level(1)})
	require.NoError(t, err)
	require.Len(t, report.Checks, 1)
	assert.Equal(t, Rejected, report.Checks[0].Observed)
	assert.True(t, report.Checks[0].Pass)

	got, err := eff.GetParameter(ctx, param.FamilyLevel)
	require.NoError(t, err)
	assert.True(t, got.Equal(param.Level(-7)), "rejection must not alter stored state")
}

func TestEvaluate_RejectBelowBandRegardlessOfCapability(t *testing.T) {
	// Scenario C: Level(min-1) rejected whatever the capability says.
	chk := New(WithBand(testBand))
	for _, capMax := range []int{-100, -50, 0} {
		eff := newTestEffect(t, param.Capability{MaxLevelDB: capMax})
		report, err := chk.Evaluate(context.Background(), eff, []param.Value{param.Level(testBand.MinLevelDB - 1)})
		require.NoError(t, err)
		assert.Equal(t, Rejected, report.Checks[0].Expected)
		assert.True(t, report.Checks[0].Pass)
	}
}

func TestEvaluate_MuteAlwaysAccepted(t *testing.T) {
	// Scenario D: Mute(true) accepted, round-trips.
	chk := New(WithBand(testBand))
	eff := newTestEffect(t, param.Capability{MaxLevelDB: -100})

	report, err := chk.Evaluate(context.Background(), eff, []param.Value{param.Mute(true)})
	require.NoError(t, err)
	require.Len(t, report.Checks, 1)

	c := report.Checks[0]
	assert.Equal(t, Accepted, c.Expected)
	assert.True(t, c.Pass)
	require.NotNil(t, c.RoundTrip)
	assert.True(t, c.RoundTrip.Equal(param.Mute(true)))
}

func TestEvaluate_InclusiveMaxBoundary(t *testing.T) {
	// Scenario E: Level(max) with capability at max is accepted.
	chk := New(WithBand(testBand))
	eff := newTestEffect(t, param.Capability{MaxLevelDB: testBand.MaxLevelDB})

	report, err := chk.Evaluate(context.Background(), eff, []param.Value{param.Level(testBand.MaxLevelDB)})
	require.NoError(t, err)
	assert.Equal(t, Accepted, report.Checks[0].Expected)
	assert.True(t, report.Checks[0].Pass)
}

func TestEvaluate_Idempotence(t *testing.T) {
	chk := New(WithBand(testBand))
	eff := newTestEffect(t, param.Capability{MaxLevelDB: 0})

	v := param.Level(-33)
	report, err := chk.Evaluate(context.Background(), eff, []param.Value{v, v})
	require.NoError(t, err)
	require.Len(t, report.Checks, 2)

	require.NotNil(t, report.Checks[0].RoundTrip)
	require.NotNil(t, report.Checks[1].RoundTrip)
	assert.True(t, report.Checks[0].RoundTrip.Equal(*report.Checks[1].RoundTrip),
		"setting the same accepted value twice must read back identically")
	assert.True(t, report.Pass())
}

func TestEvaluate_NoShortCircuit(t *testing.T) {
	// A broken instance that accepts everything: the out-of-range checks
	// fail but every queued value is still exercised.
	chk := New(WithBand(testBand))
	eff := newTestEffect(t, param.Capability{MaxLevelDB: 0})

	values := []param.Value{
		param.Level(1),    // must be rejected; conforming sim rejects it: pass
		param.Level(-200), // must be rejected: pass
		param.Level(-5),   // accepted: pass
	}
	report, err := chk.Evaluate(context.Background(), eff, values)
	require.NoError(t, err)
	assert.Len(t, report.Checks, len(values), "every queued value is exercised")
}

func TestEvaluate_VerdictMismatchIsFailureNotFatal(t *testing.T) {
	chk := New(WithBand(testBand))
	eff := newTestEffect(t, param.Capability{MaxLevelDB: 0}, effect.FaultRejectAll)

	values := []param.Value{param.Level(-1), param.Mute(true), param.Level(1)}
	report, err := chk.Evaluate(context.Background(), eff, values)
	require.NoError(t, err, "wrong verdicts are check failures, not fatal aborts")

	assert.Len(t, report.Checks, 3)
	assert.False(t, report.Checks[0].Pass)
	assert.NotEmpty(t, report.Checks[0].Detail)
	assert.False(t, report.Checks[1].Pass)
	assert.True(t, report.Checks[2].Pass, "Level(1) rejection is still correct")
	assert.False(t, report.Pass())
}

func TestEvaluate_RoundTripMismatch(t *testing.T) {
	chk := New(WithBand(testBand))
	eff := newTestEffect(t, param.Capability{MaxLevelDB: 0}, effect.FaultCorruptGet)

	report, err := chk.Evaluate(context.Background(), eff, []param.Value{param.Level(-10)})
	require.NoError(t, err)
	require.Len(t, report.Checks, 1)

	c := report.Checks[0]
	assert.Equal(t, Accepted, c.Observed, "the set itself succeeded")
	assert.False(t, c.Pass)
	require.NotNil(t, c.RoundTrip)
	assert.True(t, c.RoundTrip.Equal(param.Level(-11)))
	assert.Contains(t, c.Detail, "round-trip mismatch")
	assert.Contains(t, c.Detail, "level(-10dB)")
	assert.Contains(t, c.Detail, "level(-11dB)")
}

func TestEvaluate_TransportErrorIsFatal(t *testing.T) {
	chk := New(WithBand(testBand))
	eff := newTestEffect(t, param.Capability{MaxLevelDB: 0}, effect.FaultFailTransport)

	report, err := chk.Evaluate(context.Background(), eff, []param.Value{param.Level(-1), param.Mute(true)})
	require.Error(t, err)
	assert.False(t, effect.IsIllegalArgument(err), "transport errors are not rejections")
	assert.Empty(t, report.Checks, "abort happens before the first check is recorded")
	assert.Error(t, report.Fatal)
	assert.False(t, report.Pass())
}

func TestEvaluate_CapabilityFetchFailureIsFatal(t *testing.T) {
	chk := New(WithBand(testBand))
	eff := newTestEffect(t, param.Capability{MaxLevelDB: 0}, effect.FaultDropCapability)

	_, err := chk.Evaluate(context.Background(), eff, []param.Value{param.Mute(false)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "capability query failed")
}

func TestEvaluate_WideningCapabilityIsFatal(t *testing.T) {
	chk := New(WithBand(testBand))
	// Capability claims 1 dB, above the band max of 0.
	eff := newTestEffect(t, param.Capability{MaxLevelDB: 1})

	report, err := chk.Evaluate(context.Background(), eff, []param.Value{param.Level(0)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds band")
	assert.False(t, report.Pass())
}

func TestEvaluate_ClosedEffectIsFatal(t *testing.T) {
	chk := New(WithBand(testBand))
	sim := effect.NewSim(effect.SimConfig{
		Descriptor: effect.Descriptor{Name: "volume", Implementor: "test"},
		Band:       testBand,
		Capability: param.Capability{MaxLevelDB: 0},
	})
	// Never opened.
	_, err := chk.Evaluate(context.Background(), sim, []param.Value{param.Mute(true)})
	require.Error(t, err)
	assert.True(t, effect.IsClosed(err))
}

func TestEvaluate_PartialReportOnAbort(t *testing.T) {
	// The first value passes, then the capability disappears mid-run.
	chk := New(WithBand(testBand))
	eff := newFlakyEffect(t, 1)

	report, err := chk.Evaluate(context.Background(), eff,
		[]param.Value{param.Mute(true), param.Mute(false)})
	require.Error(t, err)
	assert.Len(t, report.Checks, 1, "checks completed before the abort survive")
	assert.True(t, report.Checks[0].Pass)
}

// flakyEffect answers a fixed number of capability queries and then
// fails with a transport error.
type flakyEffect struct {
	*effect.SimEffect
	remaining int
}

func newFlakyEffect(t *testing.T, capQueries int) *flakyEffect {
	t.Helper()
	return &flakyEffect{
		SimEffect: newTestEffect(t, param.Capability{MaxLevelDB: 0}),
		remaining: capQueries,
	}
}

func (f *flakyEffect) Capability(ctx context.Context) (param.Capability, error) {
	if f.remaining <= 0 {
		return param.Capability{}, effect.NewTransport("volume", "capability link dropped")
	}
	f.remaining--
	return f.SimEffect.Capability(ctx)
}
