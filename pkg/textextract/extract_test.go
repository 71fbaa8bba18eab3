package textextract

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildPDF(t *testing.T, text string) []byte {
	t.Helper()
	return buildPDFWithContent(t, fmt.Sprintf("BT /F1 24 Tf 72 720 Td (%s) Tj ET", text))
}

// buildPDFWithContent assembles a single-page PDF with a correct
// cross-reference table around the given page content stream.
func buildPDFWithContent(t *testing.T, content string) []byte {
	t.Helper()

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func buildDOCX(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p>
      <w:pPr><w:tabs><w:tab w:val="left" w:pos="720"/></w:tabs></w:pPr>
      <w:r><w:rPr><w:b/></w:rPr><w:t>Hello</w:t></w:r>
      <w:r><w:tab/><w:t xml:space="preserve">Word </w:t></w:r>
    </w:p>
    <w:p>
      <w:r><w:t>Second</w:t><w:br/><w:t>line</w:t></w:r>
    </w:p>
  </w:body>
</w:document>`

func TestParseFormat(t *testing.T) {
	tests := []struct {
		mediaType string
		want      Format
	}{
		{"application/pdf", FormatPDF},
		{"text/plain", FormatText},
		{"text/plain; charset=utf-8", FormatText},
		{"TEXT/PLAIN", FormatText},
		{MediaTypeDOCX, FormatDOCX},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.mediaType)
		require.NoError(t, err, tt.mediaType)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseFormatUnsupported(t *testing.T) {
	_, err := ParseFormat("image/png")

	var unsupported *UnsupportedTypeError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "image/png", unsupported.MediaType)
	assert.Contains(t, err.Error(), "image/png")
}

func TestMediaTypeForName(t *testing.T) {
	assert.Equal(t, MediaTypePDF, MediaTypeForName("report.PDF"))
	assert.Equal(t, MediaTypeText, MediaTypeForName("notes.txt"))
	assert.Equal(t, MediaTypeDOCX, MediaTypeForName("letter.docx"))
	assert.Equal(t, "", MediaTypeForName("photo.png"))
}

func TestExtractText(t *testing.T) {
	data := []byte("\xEF\xBB\xBFhello\r\nworld\xff")

	got, err := Extract(bytes.NewReader(data), int64(len(data)), FormatText)
	require.NoError(t, err)
	assert.Equal(t, "hello\r\nworld\uFFFD", got.Content)
	assert.Equal(t, "txt", got.Metadata["type"])
}

func TestExtractDOCX(t *testing.T) {
	data := buildDOCX(t, map[string]string{
		"[Content_Types].xml": `<Types/>`,
		"word/document.xml":   documentXML,
	})

	got, err := Extract(bytes.NewReader(data), int64(len(data)), FormatDOCX)
	require.NoError(t, err)
	assert.Equal(t, "Hello\tWord \n\nSecond\nline\n\n", got.Content)
	assert.Equal(t, "2", got.Metadata["paragraphs"])
}

func TestExtractDOCXMalformed(t *testing.T) {
	t.Run("not a zip", func(t *testing.T) {
		data := []byte("definitely not a zip archive")
		_, err := Extract(bytes.NewReader(data), int64(len(data)), FormatDOCX)

		var parseErr *ParseError
		require.True(t, errors.As(err, &parseErr))
		assert.Equal(t, FormatDOCX, parseErr.Format)
	})

	t.Run("missing document part", func(t *testing.T) {
		data := buildDOCX(t, map[string]string{"word/styles.xml": "<w:styles/>"})
		_, err := Extract(bytes.NewReader(data), int64(len(data)), FormatDOCX)

		var parseErr *ParseError
		require.True(t, errors.As(err, &parseErr))
		assert.Contains(t, err.Error(), "document.xml")
	})

	t.Run("broken xml", func(t *testing.T) {
		data := buildDOCX(t, map[string]string{"word/document.xml": "<w:document><w:body>"})
		_, err := Extract(bytes.NewReader(data), int64(len(data)), FormatDOCX)

		var parseErr *ParseError
		require.True(t, errors.As(err, &parseErr))
	})
}

func TestExtractPDF(t *testing.T) {
	data := buildPDF(t, "Hello PDF")

	got, err := Extract(bytes.NewReader(data), int64(len(data)), FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Pages)
	assert.Contains(t, got.Content, "Hello PDF")
}

func TestExtractPDFCorrupt(t *testing.T) {
	data := []byte(strings.Repeat("garbage ", 64))

	_, err := Extract(bytes.NewReader(data), int64(len(data)), FormatPDF)

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, FormatPDF, parseErr.Format)
}

func TestExtractPDFNoReadablePage(t *testing.T) {
	// Dictionary keys must be names; this content stream cannot be decoded.
	data := buildPDFWithContent(t, "<< 1 2 >>")

	got, err := Extract(bytes.NewReader(data), int64(len(data)), FormatPDF)

	assert.Nil(t, got)
	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr), "got %v", err)
	assert.Equal(t, FormatPDF, parseErr.Format)
}

func TestExtractUnknownFormat(t *testing.T) {
	_, err := Extract(bytes.NewReader(nil), 0, FormatUnknown)

	var unsupported *UnsupportedTypeError
	assert.True(t, errors.As(err, &unsupported))
}
