package target

import "github.com/deploymenttheory/go-satatarget/internal/types"

// Error kinds reported by the target, usable with errors.Is.
var (
	ErrConfiguration      = types.ErrConfiguration
	ErrResourceExhaustion = types.ErrResourceExhaustion
	ErrSizing             = types.ErrSizing
	ErrProtocolViolation  = types.ErrProtocolViolation
	ErrBackendExhaustion  = types.ErrBackendExhaustion
	ErrOutOfRange         = types.ErrOutOfRange
)

// Error is the typed error returned by target operations.
type Error = types.Error

// IsRetryable reports whether err may succeed if the request is retried.
func IsRetryable(err error) bool {
	return types.IsRetryable(err)
}
