package document

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/nikhilbhutani/doc2voice/pkg/textextract"
)

type TextExtractor interface {
	ExtractFile(ctx context.Context, path, mediaType string) (*textextract.ExtractedText, error)
}

// ReadError reports an I/O failure reading a stored upload.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

type extractor struct{}

func NewTextExtractor() TextExtractor {
	return &extractor{}
}

// ExtractFile resolves the media type before touching the file, so an
// unsupported upload is rejected without being read.
func (e *extractor) ExtractFile(ctx context.Context, path, mediaType string) (*textextract.ExtractedText, error) {
	format, err := textextract.ParseFormat(mediaType)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}

	result, err := textextract.Extract(f, info.Size(), format)
	if err != nil {
		var parseErr *textextract.ParseError
		var unsupported *textextract.UnsupportedTypeError
		if errors.As(err, &parseErr) || errors.As(err, &unsupported) {
			return nil, err
		}
		return nil, &ReadError{Path: path, Err: err}
	}
	return result, nil
}
