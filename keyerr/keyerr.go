// Package keyerr classifies failures of the key recovery operations.
package keyerr

import (
	"errors"
	"fmt"
)

// Kind is the class of a failure. It decides how a failure is surfaced, not whether it is retried.
type Kind int

const (
	// KindUnknown is any error that was not classified.
	KindUnknown Kind = iota
	// KindEnvironment covers a wrong OS, a missing or unloadable native module, or a binding failure.
	KindEnvironment
	// KindDiscovery covers install path, process, window or file not found.
	KindDiscovery
	// KindPermission covers access-denied signatures.
	KindPermission
	// KindTimeout covers window readiness, key polling and overall acquisition deadlines.
	KindTimeout
	// KindCanceled is a caller cancellation.
	KindCanceled
)

func (k Kind) String() string {
	switch k {
	case KindEnvironment:
		return "environment"
	case KindDiscovery:
		return "discovery"
	case KindPermission:
		return "permission"
	case KindTimeout:
		return "timeout"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Error carries a user-facing Message and the underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same Kind with an empty Message, so
// errors.Is(err, keyerr.ErrTimeout) works as a kind check.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// Kind markers for errors.Is.
var (
	ErrEnvironment = &Error{Kind: KindEnvironment}
	ErrDiscovery   = &Error{Kind: KindDiscovery}
	ErrPermission  = &Error{Kind: KindPermission}
	ErrTimeout     = &Error{Kind: KindTimeout}
	ErrCanceled    = &Error{Kind: KindCanceled}
)

func Environment(msg string, err error) error { return &Error{Kind: KindEnvironment, Message: msg, Err: err} }
func Discovery(msg string, err error) error   { return &Error{Kind: KindDiscovery, Message: msg, Err: err} }
func Permission(msg string, err error) error  { return &Error{Kind: KindPermission, Message: msg, Err: err} }
func Timeout(msg string, err error) error     { return &Error{Kind: KindTimeout, Message: msg, Err: err} }
func Canceled(msg string, err error) error    { return &Error{Kind: KindCanceled, Message: msg, Err: err} }

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Message returns the user-facing message of the first *Error in err's chain,
// falling back to err.Error().
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return err.Error()
}
