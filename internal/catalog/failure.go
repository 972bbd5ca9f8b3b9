package catalog

import (
	"context"
	"errors"
	"fmt"

	"tvshelf/internal/services"
)

// FailureKind distinguishes catalog failures.
type FailureKind int

const (
	// FailureNotFound means the catalog has no such show or listings.
	FailureNotFound FailureKind = iota
	// FailureTransient covers I/O problems and timeouts; retrying may help.
	FailureTransient
	// FailureUnsupported means the service no longer honours the contract
	// this client speaks.
	FailureUnsupported
)

func (k FailureKind) String() string {
	switch k {
	case FailureNotFound:
		return "not_found"
	case FailureUnsupported:
		return "unsupported"
	default:
		return "transient"
	}
}

// Failure is the error type catalog clients return.
type Failure struct {
	Kind    FailureKind
	Timeout bool
	Err     error
}

func (f *Failure) Error() string {
	label := f.Kind.String()
	if f.Timeout {
		label = "timeout"
	}
	if f.Err == nil {
		return "catalog " + label
	}
	return fmt.Sprintf("catalog %s: %v", label, f.Err)
}

// Unwrap exposes the cause together with the matching services marker so
// errors.Is works for both.
func (f *Failure) Unwrap() []error {
	marker := services.ErrLookup
	switch {
	case f.Kind == FailureNotFound:
		marker = services.ErrNotFound
	case f.Timeout:
		marker = services.ErrTimeout
	}
	if f.Err == nil {
		return []error{marker}
	}
	return []error{marker, f.Err}
}

// NotFoundError reports a missing show or listing.
func NotFoundError(err error) *Failure {
	return &Failure{Kind: FailureNotFound, Err: err}
}

// TransientError reports an I/O failure, optionally caused by a timeout.
func TransientError(err error, timeout bool) *Failure {
	return &Failure{Kind: FailureTransient, Timeout: timeout, Err: err}
}

// UnsupportedError reports that the service contract is no longer honoured.
func UnsupportedError(err error) *Failure {
	return &Failure{Kind: FailureUnsupported, Err: err}
}

// AsFailure classifies err. Errors that are not *Failure become transient
// failures, flagged as timeouts when they carry a context deadline.
func AsFailure(err error) (*Failure, bool) {
	if err == nil {
		return nil, false
	}
	var failure *Failure
	if errors.As(err, &failure) {
		return failure, true
	}
	return TransientError(err, errors.Is(err, context.DeadlineExceeded)), true
}
