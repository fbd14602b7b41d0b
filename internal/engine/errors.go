package engine

import (
	"errors"
	"fmt"
)

// ErrUnavailable is the generic signal surfaced when every storage tier
// failed. It deliberately hides tier identity; front-ends render it as
// "try again later".
var ErrUnavailable = errors.New("service temporarily unavailable")

// NotEligibleError explains why a completion was denied. Reason is one
// of the catalog package's stable strings and is safe to show to the
// user.
type NotEligibleError struct {
	TaskID string
	Reason string
}

func (e *NotEligibleError) Error() string {
	return fmt.Sprintf("task %s not eligible: %s", e.TaskID, e.Reason)
}
