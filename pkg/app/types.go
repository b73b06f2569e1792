package app

import (
	"fmt"

	"github.com/deploymenttheory/go-satatarget/internal/types"
)

// CommonError represents application-level errors
type CommonError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CommonError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *CommonError) Unwrap() error {
	return e.Cause
}

// Common error codes
const (
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeDeviceCreate  = "DEVICE_CREATE"
	ErrCodeDeviceCommand = "DEVICE_COMMAND"
	ErrCodeWorkload      = "WORKLOAD_FAILED"
	ErrCodeOutput        = "OUTPUT"
	ErrCodeTimeout       = "TIMEOUT"
)

// NewError creates a new CommonError
func NewError(code, message string, cause error) *CommonError {
	return &CommonError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// ExitCode maps an error to a process exit status. Target errors get a
// status per kind so scripts can tell them apart.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch types.KindOf(err) {
	case types.KindConfiguration:
		return 2
	case types.KindResourceExhaustion:
		return 3
	case types.KindBackendExhaustion:
		return 4
	case types.KindSizing, types.KindProtocolViolation, types.KindOutOfRange:
		return 5
	}
	return 1
}
