package domain

import (
	"errors"
	"fmt"
)

// Validation failures. They are expected and never leave state modified.
var (
	ErrEmptySelection    = errors.New("no cards selected")
	ErrOutOfBounds       = errors.New("card index out of bounds")
	ErrNotAdjacent       = errors.New("cards must be adjacent")
	ErrDuplicateIndex    = errors.New("card selected twice")
	ErrNoCommonValue     = errors.New("cards cannot resolve to a common value")
	ErrInvalidResolution = errors.New("resolution is not a value of that card")
	ErrDoesNotBeat       = errors.New("combo does not beat the table")
)

// InconsistencyError reports a logic defect: the engine reached a state its
// own invariants rule out.
type InconsistencyError struct {
	Op     string
	Detail string
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("internal inconsistency in %s: %s", e.Op, e.Detail)
}

// IsInconsistency reports whether err carries an InconsistencyError.
func IsInconsistency(err error) bool {
	var ie *InconsistencyError
	return errors.As(err, &ie)
}
