package harness

import (
	"github.com/fxlab/paramcheck/internal/checker"
	"github.com/fxlab/paramcheck/internal/trace"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: the checker's report passed,
	// every declared expectation matched, and fatality matched the
	// scenario's declaration.
	Pass bool `json:"pass"`

	// Trace contains every capability/set/get call in order.
	Trace []trace.Event `json:"trace"`

	// Errors contains validation error messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Report is the checker's per-value record, possibly partial when
	// the run aborted.
	Report *checker.Report `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []trace.Event{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
