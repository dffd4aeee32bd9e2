package ats

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration means required connection settings are missing. It is
	// fatal for the caller and is never converted into a SyncResult.
	ErrConfiguration = errors.New("ats: missing configuration")
	ErrNoToken       = errors.New("ats: authentication response has no token")
	ErrDisabled      = errors.New("ats: integration disabled")
	ErrValidation    = errors.New("ats: validation failed")
	ErrNoID          = errors.New("ats: response has no id")
)

// RemoteError wraps any failed call to the External ATS: transport errors,
// timeouts and non-2xx responses.
type RemoteError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *RemoteError) Error() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("ats ")
	b.WriteString(e.Op)
	if e.StatusCode > 0 {
		fmt.Fprintf(&b, ": status=%d", e.StatusCode)
	}
	if e.Body != "" {
		fmt.Fprintf(&b, " body=%s", e.Body)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *RemoteError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValidationError is returned before any network call when input is unusable.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("ats: invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
