package game

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports a missing entity (cube, prop, user).
	ErrNotFound = errors.New("not found")

	// ErrQuadrantTaken reports a prop insert that lost the race for a
	// quadrant. The spawner treats it as a no-op.
	ErrQuadrantTaken = errors.New("quadrant already occupied")
)

// ValidationError rejects malformed input before it reaches the store.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
