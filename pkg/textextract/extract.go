package textextract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// Format identifies a supported document encoding.
type Format int

const (
	FormatUnknown Format = iota
	FormatPDF
	FormatText
	FormatDOCX
)

const (
	MediaTypePDF  = "application/pdf"
	MediaTypeText = "text/plain"
	MediaTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

func (f Format) String() string {
	switch f {
	case FormatPDF:
		return "pdf"
	case FormatText:
		return "txt"
	case FormatDOCX:
		return "docx"
	default:
		return "unknown"
	}
}

type ExtractedText struct {
	Content  string
	Pages    int
	Metadata map[string]string
}

// UnsupportedTypeError is returned for media types no extractor handles.
type UnsupportedTypeError struct {
	MediaType string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported file type: %s", e.MediaType)
}

// ParseError reports a document whose structure could not be decoded.
type ParseError struct {
	Format Format
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

type extractFunc func(data io.ReaderAt, size int64) (*ExtractedText, error)

var extractors = map[Format]extractFunc{
	FormatPDF:  extractPDF,
	FormatText: extractTXT,
	FormatDOCX: extractDOCX,
}

var mediaTypes = map[string]Format{
	MediaTypePDF:  FormatPDF,
	MediaTypeText: FormatText,
	MediaTypeDOCX: FormatDOCX,
}

// ParseFormat maps a declared media type to its Format. Parameters such as
// charset are ignored.
func ParseFormat(mediaType string) (Format, error) {
	mt := strings.ToLower(strings.TrimSpace(mediaType))
	if parsed, _, err := mime.ParseMediaType(mt); err == nil {
		mt = parsed
	}
	if f, ok := mediaTypes[mt]; ok {
		return f, nil
	}
	return FormatUnknown, &UnsupportedTypeError{MediaType: mediaType}
}

// MediaTypeForName infers a supported media type from a file extension.
// It returns "" when the extension is not one of the supported formats.
func MediaTypeForName(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return MediaTypePDF
	case ".txt", ".text":
		return MediaTypeText
	case ".docx":
		return MediaTypeDOCX
	default:
		return ""
	}
}

func Extract(data io.ReaderAt, size int64, format Format) (*ExtractedText, error) {
	fn, ok := extractors[format]
	if !ok {
		return nil, &UnsupportedTypeError{MediaType: format.String()}
	}
	return fn(data, size)
}

func SupportedTypes() []string {
	return []string{MediaTypePDF, MediaTypeText, MediaTypeDOCX}
}

func extractPDF(data io.ReaderAt, size int64) (result *ExtractedText, err error) {
	// The decoder panics on some malformed object graphs.
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = &ParseError{Format: FormatPDF, Err: fmt.Errorf("corrupt document: %v", r)}
		}
	}()

	reader, err := pdf.NewReader(data, size)
	if err != nil {
		return nil, &ParseError{Format: FormatPDF, Err: err}
	}

	var buf strings.Builder
	numPages := reader.NumPage()

	// Unreadable pages are skipped, but a document with no readable page is
	// a parse failure rather than an empty one.
	var failed int
	var firstErr error
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			failed++
			if firstErr == nil {
				firstErr = fmt.Errorf("page %d: missing page object", i)
			}
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			failed++
			if firstErr == nil {
				firstErr = fmt.Errorf("page %d: %w", i, err)
			}
			continue
		}
		buf.WriteString(text)
		buf.WriteString("\n")
	}
	if numPages > 0 && failed == numPages {
		return nil, &ParseError{Format: FormatPDF, Err: firstErr}
	}

	return &ExtractedText{
		Content: buf.String(),
		Pages:   numPages,
		Metadata: map[string]string{
			"type": FormatPDF.String(),
		},
	}, nil
}

func extractDOCX(data io.ReaderAt, size int64) (*ExtractedText, error) {
	reader, err := zip.NewReader(data, size)
	if err != nil {
		return nil, &ParseError{Format: FormatDOCX, Err: err}
	}

	var body *zip.File
	for _, f := range reader.File {
		if f.Name == "word/document.xml" {
			body = f
			break
		}
	}
	if body == nil {
		return nil, &ParseError{Format: FormatDOCX, Err: errors.New("missing word/document.xml")}
	}

	rc, err := body.Open()
	if err != nil {
		return nil, &ParseError{Format: FormatDOCX, Err: fmt.Errorf("open document.xml: %w", err)}
	}
	defer rc.Close()

	text, paragraphs, err := documentText(rc)
	if err != nil {
		return nil, &ParseError{Format: FormatDOCX, Err: err}
	}

	return &ExtractedText{
		Content: text,
		Pages:   1,
		Metadata: map[string]string{
			"type":       FormatDOCX.String(),
			"paragraphs": fmt.Sprint(paragraphs),
		},
	}, nil
}

// documentText walks WordprocessingML and keeps run text only. Paragraphs
// end with a blank line, tabs and breaks keep their plain-text meaning.
func documentText(r io.Reader) (string, int, error) {
	dec := xml.NewDecoder(r)
	var (
		buf        strings.Builder
		inText     bool
		inTabStops bool
		paragraphs int
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", 0, fmt.Errorf("decode document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tabs":
				inTabStops = true
			case "tab":
				if !inTabStops {
					buf.WriteByte('\t')
				}
			case "br", "cr":
				buf.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "tabs":
				inTabStops = false
			case "p":
				paragraphs++
				buf.WriteString("\n\n")
			}
		case xml.CharData:
			if inText {
				buf.Write(t)
			}
		}
	}
	return buf.String(), paragraphs, nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func extractTXT(data io.ReaderAt, size int64) (*ExtractedText, error) {
	buf := make([]byte, size)
	_, err := data.ReadAt(buf, 0)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read TXT: %w", err)
	}

	buf = bytes.TrimPrefix(buf, utf8BOM)
	content := string(buf)
	if !utf8.ValidString(content) {
		content = strings.ToValidUTF8(content, "\uFFFD")
	}

	return &ExtractedText{
		Content: content,
		Pages:   1,
		Metadata: map[string]string{
			"type": FormatText.String(),
		},
	}, nil
}
