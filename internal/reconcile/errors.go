package reconcile

import (
	"errors"
	"fmt"
)

// Scan and approval failures the operator can act on. Handlers map these to
// HTTP statuses; none of them mutates ledger state.
var (
	ErrEmptyCode         = errors.New("scanned code is empty")
	ErrNotFound          = errors.New("identifier unknown to inventory")
	ErrNotInRequest      = errors.New("product has no matching request line")
	ErrWrongItem         = errors.New("scan does not match the selected line")
	ErrAlreadyConfirmed  = errors.New("identifier already confirmed")
	ErrZeroQuantity      = errors.New("no available quantity for identifier")
	ErrMissingIdentifier = errors.New("batch item has no persisted identifier")
	ErrSessionStopped    = errors.New("scan session is not active")
	ErrNotReady          = errors.New("request is not ready for approval")
	ErrTerminalState     = errors.New("request is in a terminal state")
)

// QuantityExceededError reports how much allowance was left on the line
// when a hard-cap scan was rejected.
type QuantityExceededError struct {
	LineID    uint
	Expected  float64
	Scanned   float64
	Attempted float64
}

func (e *QuantityExceededError) Error() string {
	return fmt.Sprintf("quantity exceeded for line %d: expected %.0f, scanned %.0f, attempted +%.0f (remaining %.0f)",
		e.LineID, e.Expected, e.Scanned, e.Attempted, e.Remaining())
}

// Remaining is the allowance still open on the line. Never negative.
func (e *QuantityExceededError) Remaining() float64 {
	if r := e.Expected - e.Scanned; r > 0 {
		return r
	}
	return 0
}

// CommitStep names one leg of the approval saga.
type CommitStep string

const (
	StepProgress      CommitStep = "progress"
	StepConfirmations CommitStep = "confirmations"
	StepStatus        CommitStep = "status"
)

// CommitError wraps a backend failure with the step that failed, so a retry
// can be reasoned about. Steps already completed are safe to repeat.
type CommitError struct {
	Step CommitStep
	Err  error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("approval commit failed at step %q: %v", e.Step, e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }
