package domain

import (
	"errors"
	"fmt"
)

var (
	// Loader errors
	ErrMissingSessionKey = errors.New("session key is required")
	ErrInvalidScope      = errors.New("invalid statement scope")
	ErrTransport         = errors.New("document transport failed")

	// Insight errors
	ErrGeneratorUnavailable = errors.New("text generator is not configured")
)

// TransportErrorKind distinguishes network failures from non-success responses.
type TransportErrorKind string

const (
	TransportFetchFailed TransportErrorKind = "fetch_failed"
	TransportBadStatus   TransportErrorKind = "bad_status"
)

// TransportError is returned by the Document Loader when no document could be obtained.
type TransportError struct {
	Kind       TransportErrorKind
	StatusCode int
	URL        string
	Err        error
}

func (e *TransportError) Error() string {
	if e.Kind == TransportBadStatus {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is makes every TransportError match ErrTransport.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// NewFetchFailed wraps a network-level failure.
func NewFetchFailed(url string, err error) *TransportError {
	return &TransportError{Kind: TransportFetchFailed, URL: url, Err: err}
}

// NewBadStatus reports a non-2xx response.
func NewBadStatus(url string, status int) *TransportError {
	return &TransportError{Kind: TransportBadStatus, URL: url, StatusCode: status}
}
