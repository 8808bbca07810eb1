package ledger

import "fmt"

// ValidationError is malformed input, rejected before any ledger touch.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// InsufficientCapitalError is returned when a proposed cost does not fit the
// target scope's remaining capacity. Amounts are included so the caller can
// show the budget boundary.
type InsufficientCapitalError struct {
	Scope     string
	Available float64
	Required  float64
}

func (e *InsufficientCapitalError) Error() string {
	return fmt.Sprintf("insufficient capital for %s. Available: %.2f, Required: %.2f",
		e.Scope, e.Available, e.Required)
}

// InvalidStateTransitionError is an operation not legal in the record's
// current status (editing an approved entry, deleting a committed order).
type InvalidStateTransitionError struct {
	Entity string
	From   string
	Action string
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("cannot %s %s in status %q", e.Action, e.Entity, e.From)
}

type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// TransactionFailure means the mutation pipeline failed partway and was fully
// rolled back. No partial ledger state is observable.
type TransactionFailure struct {
	Op  string
	Err error
}

func (e *TransactionFailure) Error() string {
	return fmt.Sprintf("transaction failed during %s: %v", e.Op, e.Err)
}

func (e *TransactionFailure) Unwrap() error {
	return e.Err
}
