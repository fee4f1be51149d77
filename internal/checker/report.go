package checker

import (
	"fmt"
	"strings"

	"github.com/fxlab/paramcheck/internal/param"
)

// Outcome classifies what an effect should do (or did) with a value.
type Outcome string

const (
	// Accepted means the set must succeed.
	Accepted Outcome = "accepted"

	// Rejected means the set must fail with an illegal-argument error.
	Rejected Outcome = "rejected"
)

// ParseOutcome validates an outcome name from a scenario file.
func ParseOutcome(s string) (Outcome, error) {
	switch o := Outcome(s); o {
	case Accepted, Rejected:
		return o, nil
	default:
		return "", fmt.Errorf("unknown outcome %q (want accepted or rejected)", s)
	}
}

// Check records the evaluation of a single queued value.
type Check struct {
	// Value is the parameter value that was exercised.
	Value param.Value

	// Capability is the bound the effect reported for this step.
	Capability param.Capability

	// Expected is the outcome the range predicate demanded.
	Expected Outcome

	// Observed is the outcome the effect actually produced.
	Observed Outcome

	// RoundTrip holds the value returned by the follow-up get, set
	// only when Expected is Accepted and the set succeeded.
	RoundTrip *param.Value

	// Pass is true when Observed matches Expected and, for accepted
	// values, the round-trip returned the value just set.
	Pass bool

	// Detail explains a failure: the expected vs observed pair.
	// Empty when Pass is true.
	Detail string
}

// Report is the ordered result of one evaluation pass over an effect
// instance. Order follows the queued values; it matters for reporting
// only, never for correctness.
type Report struct {
	// Instance is the sanitized name of the effect under test.
	Instance string

	// Band is the protocol band the evaluation used.
	Band param.Band

	// Checks are the per-value records, one per queued value reached
	// before any fatal abort.
	Checks []Check

	// Passed and Failed count the checks.
	Passed int
	Failed int

	// Fatal records the transport/protocol error that aborted the
	// run, if any. A fatal run is never a pass.
	Fatal error
}

// Pass reports overall success: every check passed and nothing aborted.
func (r *Report) Pass() bool {
	return r.Fatal == nil && r.Failed == 0
}

// add appends a check and updates the counters.
func (r *Report) add(c Check) {
	r.Checks = append(r.Checks, c)
	if c.Pass {
		r.Passed++
	} else {
		r.Failed++
	}
}

// Summary renders a one-line result, e.g. "volume: 12 passed, 1 failed".
func (r *Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d passed, %d failed", r.Instance, r.Passed, r.Failed)
	if r.Fatal != nil {
		fmt.Fprintf(&b, " (aborted: %v)", r.Fatal)
	}
	return b.String()
}

// FailureDetails renders one line per failing check so a maintainer can
// see exactly which boundary broke.
func (r *Report) FailureDetails() []string {
	var out []string
	for _, c := range r.Checks {
		if !c.Pass {
			out = append(out, c.Detail)
		}
	}
	return out
}
