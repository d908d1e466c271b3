package harness

import (
	"errors"
	"fmt"

	"github.com/quayside/chainstage/internal/actor"
)

// TraceEvent records one facade call made by the fixture, in
// invocation order. Actor is the logical participant name ("launcher1",
// "bob", "member3") or empty for calls with no subject, never an
// address: traces stay readable and golden files stay stable across
// derivation changes.
type TraceEvent struct {
	Seq   int64        `json:"seq"`
	Op    string       `json:"op"`
	Actor string       `json:"actor,omitempty"`
	Args  actor.Object `json:"args,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when setup completed and every assertion held.
	Pass bool `json:"pass"`

	// RunID identifies this execution. Elided from golden snapshots.
	RunID string `json:"run_id,omitempty"`

	// Trace contains every facade call in invocation order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains setup and assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result to accumulate into.
func NewResult(runID string) *Result {
	return &Result{
		Pass:   true,
		RunID:  runID,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError records a failure message and marks the result failed.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Pass = false
}

// PreconditionError reports a fixture call that violated an ordering
// or argument precondition. Raised before any facade call is made, so
// no partial state exists when it surfaces.
type PreconditionError struct {
	// Op names the fixture operation, e.g. "member" or "launch_phase2".
	Op string

	// Reason describes the violated precondition.
	Reason string
}

// Error implements the error interface.
func (e *PreconditionError) Error() string {
	return fmt.Sprintf("precondition violated in %s: %s", e.Op, e.Reason)
}

// IsPrecondition reports whether err is (or wraps) a PreconditionError.
func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}
