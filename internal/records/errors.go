package records

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes store errors.
type ErrorCode string

const (
	// ErrCodeInvalidArgument indicates a rejected argument, e.g. an empty record.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
)

// ErrInvalidArgument is the sentinel matched by errors.Is for any
// *Error with ErrCodeInvalidArgument.
var ErrInvalidArgument = errors.New("invalid argument")

// Error is returned by store operations that reject their input.
// The store is never modified when an Error is returned.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Param names the offending parameter.
	Param string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s: %s (param=%s)", e.Code, e.Message, e.Param)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is reports whether target is the sentinel for this error's code.
func (e *Error) Is(target error) bool {
	return target == ErrInvalidArgument && e.Code == ErrCodeInvalidArgument
}

// IsInvalidArgument returns true if err is, or wraps, an invalid argument error.
func IsInvalidArgument(err error) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Code == ErrCodeInvalidArgument
	}
	return false
}

func newInvalidArgument(param, message string) *Error {
	return &Error{
		Code:    ErrCodeInvalidArgument,
		Param:   param,
		Message: message,
	}
}
