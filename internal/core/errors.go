package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for the domain. Handlers translate these to HTTP
// status codes; services wrap them with context via fmt.Errorf and %w.
var (
	// ErrNotFound covers every owner-scoped lookup miss: either the
	// entity does not exist or it belongs to a different user. The two
	// cases are deliberately indistinguishable to callers.
	ErrNotFound = errors.New("not found")

	// ErrInvalidAmount rejects non-positive or malformed money values.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrGoalLocked guards deposits, withdrawals and deletion of a
	// savings goal while its time lock is in effect.
	ErrGoalLocked = errors.New("savings goal is time-locked")

	// ErrStillLocked rejects an unlock attempt before the unlock time.
	ErrStillLocked = errors.New("savings goal cannot be unlocked yet")

	// ErrNotLocked rejects an unlock attempt on a goal without a lock.
	ErrNotLocked = errors.New("savings goal is not time-locked")

	// ErrInsufficientFunds rejects withdrawals above the current amount.
	ErrInsufficientFunds = errors.New("insufficient funds in savings goal")

	// ErrDuplicate rejects registration with an already used username,
	// email or phone number.
	ErrDuplicate = errors.New("already exists")

	// ErrInvalidCredentials covers both unknown identifier and wrong
	// password on login, again deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError reports a missing or malformed field in a request
// payload or entity.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validationf builds a ValidationError with a formatted reason.
func Validationf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
