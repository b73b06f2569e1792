package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures of the target core.
type ErrorKind int

const (
	// KindConfiguration is a request the reserve-memory guard or the
	// parameter checks rejected before anything was allocated.
	KindConfiguration ErrorKind = iota + 1
	// KindResourceExhaustion means the backing store could not be allocated.
	KindResourceExhaustion
	// KindSizing means a request needs more segments than the slot holds.
	KindSizing
	// KindProtocolViolation is a broken map/unmap contract or a bad tag.
	KindProtocolViolation
	// KindBackendExhaustion means the transfer backend committed zero segments.
	KindBackendExhaustion
	// KindOutOfRange is a sector outside the addressable range.
	KindOutOfRange
)

// Kind sentinels, usable with errors.Is.
var (
	ErrConfiguration      = errors.New("configuration error")
	ErrResourceExhaustion = errors.New("resource exhaustion")
	ErrSizing             = errors.New("sizing error")
	ErrProtocolViolation  = errors.New("protocol violation")
	ErrBackendExhaustion  = errors.New("backend exhaustion")
	ErrOutOfRange         = errors.New("sector out of range")
)

// Sentinel returns the errors.Is target for the kind.
func (k ErrorKind) Sentinel() error {
	switch k {
	case KindConfiguration:
		return ErrConfiguration
	case KindResourceExhaustion:
		return ErrResourceExhaustion
	case KindSizing:
		return ErrSizing
	case KindProtocolViolation:
		return ErrProtocolViolation
	case KindBackendExhaustion:
		return ErrBackendExhaustion
	case KindOutOfRange:
		return ErrOutOfRange
	}
	return nil
}

// String returns a string representation of the kind.
func (k ErrorKind) String() string {
	if s := k.Sentinel(); s != nil {
		return s.Error()
	}
	return "unknown error"
}

// Error is the error type returned by every core operation.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

// NewError creates a new Error of the given kind.
func NewError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf creates a new Error with a formatted cause.
func Errorf(kind ErrorKind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinel in addition to the wrapped chain.
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.Sentinel()
}

// Retryable reports whether the caller may retry the same request later.
func (e *Error) Retryable() bool {
	return e.Kind == KindBackendExhaustion
}

// KindOf returns the kind of err, or 0 if err is not an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsRetryable reports whether err is a retryable core error.
func IsRetryable(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Retryable()
}
