// Package checker implements the parameter conformance core: a range
// predicate over (value, capability) and an evaluation pass that drives
// an effect through set/get round-trips and classifies each outcome.
package checker

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/fxlab/paramcheck/internal/effect"
	"github.com/fxlab/paramcheck/internal/param"
)

// Checker evaluates queued parameter values against an effect instance.
//
// The checker is single-threaded and synchronous: each set/get is
// awaited before the next queued value is touched. It never opens or
// closes the effect; it receives an already-opened handle.
type Checker struct {
	band   param.Band
	logger *slog.Logger
}

// Option configures a Checker.
type Option func(*Checker)

// WithBand overrides the protocol band. Scenarios use this to model
// narrower protocol revisions; production sweeps keep the default.
func WithBand(b param.Band) Option {
	return func(c *Checker) { c.band = b }
}

// WithLogger sets the structured logger. Defaults to a discard logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Checker) { c.logger = l }
}

// New creates a Checker over param.DefaultBand.
func New(opts ...Option) *Checker {
	c := &Checker{
		band:   param.DefaultBand,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Band returns the protocol band the checker evaluates against.
func (c *Checker) Band() param.Band {
	return c.band
}

// IsInRange is the acceptance predicate: a pure function of the value
// and the capability, independent of prior calls or ordering.
//
// A level is in range iff it lies inside the protocol band (inclusive
// at both edges) and does not exceed the capability maximum; the
// capability narrows the band, never widens it. Mute has no range to
// violate and is always in range.
func (c *Checker) IsInRange(v param.Value, capability param.Capability) bool {
	switch v.Family() {
	case param.FamilyLevel:
		level, _ := v.LevelDB()
		return c.band.Contains(level) && level <= capability.MaxLevelDB
	case param.FamilyMute:
		return true
	}
	// The family set is closed; constructors make this unreachable.
	return false
}

// Evaluate runs one pass over the queued values, in order.
//
// For each value it fetches the capability fresh, computes the expected
// outcome, attempts the set, and on expected acceptance issues a get
// and requires structural equality with the value just set. Every
// queued value is exercised; a failing check never short-circuits the
// pass, so a single broken boundary cannot mask the others.
//
// Any error outside the success/illegal-argument vocabulary, whether
// from the capability fetch, the set, or the get, aborts the run. The partial
// report accumulated so far is returned alongside the error so the
// harness can still surface the checks that completed.
func (c *Checker) Evaluate(ctx context.Context, eff effect.Effect, values []param.Value) (*Report, error) {
	report := &Report{
		Instance: eff.Descriptor().Name,
		Band:     c.band,
	}
	if err := c.band.Validate(); err != nil {
		report.Fatal = err
		return report, err
	}

	for i, v := range values {
		// Capability is fetched fresh per value; instances may
		// legitimately report different bounds across sessions.
		capability, err := eff.Capability(ctx)
		if err != nil {
			report.Fatal = fmt.Errorf("value %d (%s): capability query failed: %w", i, v, err)
			return report, report.Fatal
		}
		if err := capability.Validate(c.band); err != nil {
			report.Fatal = fmt.Errorf("value %d (%s): %w", i, v, err)
			return report, report.Fatal
		}

		expected := Rejected
		if c.IsInRange(v, capability) {
			expected = Accepted
		}

		check := Check{
			Value:      v,
			Capability: capability,
			Expected:   expected,
		}

		setErr := eff.SetParameter(ctx, v)
		switch {
		case setErr == nil:
			check.Observed = Accepted
		case effect.IsIllegalArgument(setErr):
			check.Observed = Rejected
		default:
			report.Fatal = fmt.Errorf("value %d (%s): set failed outside protocol vocabulary: %w", i, v, setErr)
			return report, report.Fatal
		}

		if check.Observed != check.Expected {
			check.Detail = fmt.Sprintf("%s: expected %s, observed %s (capability max %d dB)",
				v, check.Expected, check.Observed, capability.MaxLevelDB)
			report.add(check)
			c.logger.Warn("set verdict mismatch",
				"value", v.String(),
				"expected", string(check.Expected),
				"observed", string(check.Observed),
			)
			continue
		}

		// Round-trip only when the set was expected to succeed and did.
		if expected == Accepted {
			got, err := eff.GetParameter(ctx, v.Family())
			if err != nil {
				report.Fatal = fmt.Errorf("value %d (%s): get failed: %w", i, v, err)
				return report, report.Fatal
			}
			check.RoundTrip = &got
			if !got.Equal(v) {
				check.Detail = fmt.Sprintf("%s: round-trip mismatch: set %s, got %s", v, v, got)
				report.add(check)
				c.logger.Warn("round-trip mismatch",
					"set", v.String(),
					"got", got.String(),
				)
				continue
			}
		}

		check.Pass = true
		report.add(check)
		c.logger.Debug("check passed",
			"value", v.String(),
			"expected", string(expected),
		)
	}

	return report, nil
}
