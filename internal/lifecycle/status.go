// Package lifecycle holds the job status state machine and plans the updates
// produced by status changes, payment finalization and payroll reporting.
// Nothing here touches storage: functions take job copies and return plain
// updates or reports for the caller to persist.
package lifecycle

import (
	"errors"
	"fmt"
	"strings"

	"github.com/diewo77/brushwork/internal/models"
)

var (
	// ErrInvalidTransition matches any *InvalidTransitionError.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrUnknownStatus is returned for a status outside Sequence.
	ErrUnknownStatus = errors.New("unknown job status")
)

// Sequence lists the job statuses in lifecycle order.
var Sequence = []models.JobStatus{
	models.StatusNotStarted,
	models.StatusInProgress,
	models.StatusComplete,
	models.StatusOpenPayment,
	models.StatusFinalized,
}

// InvalidTransitionError reports a move the state machine refuses.
type InvalidTransitionError struct {
	From models.JobStatus
	To   models.JobStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot move job from %q back to %q", e.From, e.To)
}

// Is lets errors.Is match ErrInvalidTransition.
func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// rank returns the position of s in Sequence, or -1.
func rank(s models.JobStatus) int {
	for i, v := range Sequence {
		if v == s {
			return i
		}
	}
	return -1
}

// Valid reports whether s is one of the lifecycle statuses.
func Valid(s models.JobStatus) bool {
	return rank(s) >= 0
}

// ParseStatus matches free-form input against the known statuses, ignoring
// case and surrounding blanks. "open_payment" and "open-payment" are accepted too.
func ParseStatus(raw string) (models.JobStatus, error) {
	norm := strings.NewReplacer("_", " ", "-", " ").Replace(strings.TrimSpace(raw))
	for _, s := range Sequence {
		if strings.EqualFold(string(s), norm) {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
}

// Next returns the status after current. ok is false at Finalized or when
// current is unknown.
func Next(current models.JobStatus) (models.JobStatus, bool) {
	i := rank(current)
	if i < 0 || i == len(Sequence)-1 {
		return "", false
	}
	return Sequence[i+1], true
}

// Transition validates a move from current to requested. Moving forward,
// including skipping statuses, and staying put are allowed. Moving back is not.
func Transition(current, requested models.JobStatus) (models.JobStatus, error) {
	from, to := rank(current), rank(requested)
	if from < 0 {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, current)
	}
	if to < 0 {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, requested)
	}
	if to < from {
		return "", &InvalidTransitionError{From: current, To: requested}
	}
	return requested, nil
}

// completed reports whether s counts as done work.
func completed(s models.JobStatus) bool {
	return rank(s) >= rank(models.StatusComplete)
}
