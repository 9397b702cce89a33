package channel

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrChannelNotDefined means the default channel is ambiguous or misconfigured.
	ErrChannelNotDefined = errors.New("More than one channel exists. Specify which channel to use.")
	// ErrNoDefaultChannel means no channel exists at all.
	ErrNoDefaultChannel = errors.New("A default channel does not exist.")
	// ErrChannelNotFound is returned by stores for unknown slugs.
	ErrChannelNotFound = errors.New("channel not found")
)

// ErrorCode is the API error code attached to a ValidationError. Callers pick
// codes from their own mutation's error enum.
type ErrorCode string

// ValidationError is a field-scoped input error.
type ValidationError struct {
	Field   string
	Message string
	Code    ErrorCode
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func newValidationError(code ErrorCode, format string, args ...interface{}) *ValidationError {
	return &ValidationError{
		Field:   "channel",
		Message: fmt.Sprintf(format, args...),
		Code:    code,
	}
}
