package conflict

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidArgument marks malformed candidates: missing creator, inverted ranges,
// empty rules or an empty removal set.
var ErrInvalidArgument = errors.New("invalid argument")

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// ConflictError rejects a candidate that overlaps existing commitments.
// Exactly one of Event and Template is set.
type ConflictError struct {
	Event          *Event
	Template       *Template
	ConflictingIDs []uuid.UUID
}

func (e *ConflictError) Error() string {
	ids := make([]string, len(e.ConflictingIDs))
	for i, id := range e.ConflictingIDs {
		ids[i] = id.String()
	}
	kind := "event"
	if e.Template != nil {
		kind = "recurring event"
	}
	return fmt.Sprintf("%s conflicts with %d existing item(s): %s", kind, len(ids), strings.Join(ids, ", "))
}

// AsConflict unwraps err into a *ConflictError.
func AsConflict(err error) (*ConflictError, bool) {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
