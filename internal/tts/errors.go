package tts

import (
	"errors"
	"fmt"
)

// ErrMissingCredential is returned before any network call when the
// provider has no API key.
var ErrMissingCredential = errors.New("synthesis API key is not configured")

// TransportError wraps timeouts and connection failures talking to the
// synthesis service.
type TransportError struct {
	Provider string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s request: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// UpstreamError carries a non-success answer from the synthesis service
// as-is.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s failed (status %d): %s", e.Provider, e.StatusCode, e.Body)
}
