package web

import "github.com/pkg/errors"

var (
	// ErrAuthenticationMissing: the request has no authenticated session.
	ErrAuthenticationMissing = errors.New("authentication required")
	// ErrAuthorizationDenied: the session's role does not satisfy the route.
	ErrAuthorizationDenied = errors.New("authorization denied")
	// ErrCredentialInvalid: unknown email or wrong password at login.
	ErrCredentialInvalid = errors.New("invalid email or password")
	// ErrUpstream: the data service or object store failed.
	ErrUpstream = errors.New("upstream service failure")
)

// Upstream marks err as an upstream failure while keeping its message.
func Upstream(err error) error {
	if err == nil {
		return nil
	}
	return &upstreamError{err: err}
}

type upstreamError struct {
	err error
}

func (e *upstreamError) Error() string { return e.err.Error() }

func (e *upstreamError) Unwrap() error { return e.err }

func (e *upstreamError) Is(target error) bool { return target == ErrUpstream }
