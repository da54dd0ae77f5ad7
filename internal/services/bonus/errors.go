package bonus

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNothingToPay is returned by PayoutBonuses when no approved, pending rows
// exist for the purchase and month
var ErrNothingToPay = errors.New("nothing to pay: no approved pending bonus records")

// ReadinessError reports every unmet precondition of a bonus calculation, not
// just the first, so an administrator can fix everything in one pass
type ReadinessError struct {
	Reasons []string
}

func (e *ReadinessError) Error() string {
	return fmt.Sprintf("team purchase is not ready for bonus calculation: %s", strings.Join(e.Reasons, "; "))
}

// ConflictError reports a transition attempted from an invalid state
type ConflictError struct {
	Operation string
	State     State
	Message   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflicts with current state %s: %s", e.Operation, e.State, e.Message)
}

// AsReadinessError unwraps a ReadinessError if err carries one
func AsReadinessError(err error) (*ReadinessError, bool) {
	var re *ReadinessError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// AsConflictError unwraps a ConflictError if err carries one
func AsConflictError(err error) (*ConflictError, bool) {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
