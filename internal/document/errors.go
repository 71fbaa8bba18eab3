package document

import (
	"errors"
	"fmt"

	"github.com/nikhilbhutani/doc2voice/pkg/textextract"
)

const (
	MsgNoFile         = "No file uploaded or too large."
	MsgNoReadableText = "No readable text in file."
	MsgReadFailed     = "Could not read uploaded file."
)

// ValidationError is a client-side problem with the upload. Message is
// safe to return to the caller verbatim.
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error { return e.Err }

// SynthesisError wraps any failure of the synthesis stage.
type SynthesisError struct {
	Err error
}

func (e *SynthesisError) Error() string { return e.Err.Error() }

func (e *SynthesisError) Unwrap() error { return e.Err }

func extractionError(err error) *ValidationError {
	var unsupported *textextract.UnsupportedTypeError
	var parseErr *textextract.ParseError
	switch {
	case errors.As(err, &unsupported):
		mt := unsupported.MediaType
		if mt == "" {
			mt = "unknown"
		}
		return &ValidationError{Message: fmt.Sprintf("Unsupported file type: %s", mt), Err: err}
	case errors.As(err, &parseErr):
		return &ValidationError{Message: fmt.Sprintf("Could not read %s document.", parseErr.Format), Err: err}
	default:
		return &ValidationError{Message: MsgReadFailed, Err: err}
	}
}
