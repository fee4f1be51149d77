// Package harness executes conformance scenarios: it builds a simulated
// effect instance from a scenario file, drives the checker over the
// queued values, and validates the declared expectations. Traces are
// recorded with deterministic sequence numbers for golden comparison.
//
// The harness owns the instance lifecycle. The checker only ever sees
// an already-opened handle, and the instance is closed when the run
// finishes, pass or fail.
package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fxlab/paramcheck/internal/checker"
	"github.com/fxlab/paramcheck/internal/effect"
	"github.com/fxlab/paramcheck/internal/param"
	"github.com/fxlab/paramcheck/internal/testutil"
	"github.com/fxlab/paramcheck/internal/trace"
)

// scenarioUUID is the fixed instance identity for scenario runs, so
// traces stay byte-identical across executions.
var scenarioUUID = uuid.MustParse("fa81dd00-588b-11ed-9b6a-0242ac120002")

// Harness runs scenarios against simulated effect instances.
type Harness struct {
	clock  *testutil.Clock
	logger *slog.Logger
}

// New creates a Harness with a fresh deterministic clock. Logs are
// discarded unless a logger is provided.
func New(logger *slog.Logger) *Harness {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Harness{
		clock:  testutil.NewClock(),
		logger: logger,
	}
}

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Build a simulated instance from the scenario's capability,
//     band, and faults
//  2. Open the instance
//  3. Evaluate the queued values through the checker
//  4. Close the instance
//  5. Validate per-value expectations and fatality against the report
func Run(scenario *Scenario) (*Result, error) {
	return New(nil).Run(context.Background(), scenario)
}

// Run executes a scenario using the harness's clock and logger.
func (h *Harness) Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	h.clock.Reset()
	result := NewResult()

	band := scenario.band()
	sim := effect.NewSim(effect.SimConfig{
		Descriptor: effect.Descriptor{
			Name:        scenario.Name,
			Implementor: "paramcheck",
			UUID:        scenarioUUID,
		},
		Band:       band,
		Capability: scenario.capability(),
		Faults:     scenario.faults(),
	})
	if err := sim.Open(); err != nil {
		return nil, fmt.Errorf("failed to open simulated effect: %w", err)
	}
	defer func() {
		if err := sim.Close(); err != nil {
			h.logger.Warn("failed to close simulated effect", "error", err)
		}
	}()

	traced := &tracedEffect{inner: sim, clock: h.clock, result: result}

	chk := checker.New(checker.WithBand(band), checker.WithLogger(h.logger))
	report, err := chk.Evaluate(ctx, traced, scenario.values())
	result.Report = report

	if err != nil {
		if !scenario.FatalExpected {
			result.AddError(fmt.Sprintf("run aborted: %v", err))
		}
	} else if scenario.FatalExpected {
		result.AddError("expected a fatal protocol failure, run completed")
	}

	h.validateChecks(scenario, report, result)

	h.logger.Info("scenario finished",
		"scenario", scenario.Name,
		"passed", report.Passed,
		"failed", report.Failed,
		"pass", result.Pass,
	)

	return result, nil
}

// validateChecks folds the checker's verdicts and the scenario's
// declared expectations into the result.
func (h *Harness) validateChecks(scenario *Scenario, report *checker.Report, result *Result) {
	for i, c := range report.Checks {
		if !c.Pass {
			result.AddError(c.Detail)
		}
		if len(scenario.Expect) > i {
			expected, _ := checker.ParseOutcome(scenario.Expect[i])
			if c.Observed != expected {
				result.AddError(fmt.Sprintf("%s: scenario expected %s, instance %s",
					c.Value, expected, c.Observed))
			}
		}
	}
}

// tracedEffect wraps an Effect and records every call as a trace event.
type tracedEffect struct {
	inner  effect.Effect
	clock  *testutil.Clock
	result *Result
}

func (t *tracedEffect) Descriptor() effect.Descriptor {
	return t.inner.Descriptor()
}

func (t *tracedEffect) Capability(ctx context.Context) (param.Capability, error) {
	c, err := t.inner.Capability(ctx)
	if err != nil {
		return c, err
	}
	t.result.Trace = append(t.result.Trace, trace.Event{
		Kind:       trace.KindCapability,
		Seq:        t.clock.Next(),
		MaxLevelDB: c.MaxLevelDB,
	})
	return c, nil
}

func (t *tracedEffect) SetParameter(ctx context.Context, v param.Value) error {
	err := t.inner.SetParameter(ctx, v)
	verdict := "accepted"
	if effect.IsIllegalArgument(err) {
		verdict = "rejected"
	} else if err != nil {
		// Transport failures abort the run; they are not trace-worthy
		// verdicts.
		return err
	}
	t.result.Trace = append(t.result.Trace, trace.Event{
		Kind:    trace.KindSet,
		Seq:     t.clock.Next(),
		Value:   v.String(),
		Verdict: verdict,
	})
	return err
}

func (t *tracedEffect) GetParameter(ctx context.Context, f param.Family) (param.Value, error) {
	v, err := t.inner.GetParameter(ctx, f)
	if err != nil {
		return v, err
	}
	t.result.Trace = append(t.result.Trace, trace.Event{
		Kind:  trace.KindGet,
		Seq:   t.clock.Next(),
		Value: v.String(),
	})
	return v, nil
}
