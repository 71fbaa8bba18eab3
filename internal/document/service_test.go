package document

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/doc2voice/internal/models"
	"github.com/nikhilbhutani/doc2voice/internal/storage"
	"github.com/nikhilbhutani/doc2voice/internal/tts"
)

type fakeSynth struct {
	texts []string
	err   error
}

func (f *fakeSynth) Synthesize(ctx context.Context, text, filename string) (string, error) {
	f.texts = append(f.texts, text)
	if f.err != nil {
		return "", f.err
	}
	return filename, nil
}

type memJobs struct {
	saved []*models.Job
}

func (m *memJobs) Save(ctx context.Context, job *models.Job) error {
	m.saved = append(m.saved, job)
	return nil
}

func newTestService(t *testing.T, synth Synthesizer, opts ...Option) (*Service, *storage.LocalStorage) {
	t.Helper()
	uploads, err := storage.NewLocalStorage("uploads", filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC)
	opts = append([]Option{WithClock(func() time.Time { return fixed })}, opts...)
	return NewService(uploads, synth, opts...), uploads
}

func TestConvertPlainText(t *testing.T) {
	synth := &fakeSynth{}
	jobs := &memJobs{}
	svc, uploads := newTestService(t, synth, WithJobRecorder(jobs))

	conv, err := svc.Convert(context.Background(), UploadRequest{
		OriginalName: "notes.txt",
		MediaType:    "text/plain",
		FileSize:     24,
		Data:         strings.NewReader("Hello,\r\n\tworld.   Bye.\n"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Hello, world. Bye.", conv.Text)
	assert.Equal(t, []string{"Hello, world. Bye."}, synth.texts)
	assert.True(t, strings.HasPrefix(conv.Audio.URL, AudioURLPrefix))
	assert.True(t, strings.HasSuffix(conv.Audio.Name, ".mp3"))

	_, err = os.Stat(uploads.Path("1767323045000-notes.txt"))
	assert.NoError(t, err, "upload stored under arrival time and original name")

	require.Len(t, jobs.saved, 1)
	assert.Equal(t, conv.JobID, jobs.saved[0].ID)
	assert.Equal(t, conv.Audio.Name, jobs.saved[0].AudioName)
}

func TestConvertSynthesizesOnlyPrefix(t *testing.T) {
	synth := &fakeSynth{}
	svc, _ := newTestService(t, synth)
	long := strings.Repeat("word ", 500)

	conv, err := svc.Convert(context.Background(), UploadRequest{
		OriginalName: "long.txt",
		MediaType:    "text/plain",
		Data:         strings.NewReader(long),
	})
	require.NoError(t, err)

	assert.Equal(t, strings.TrimSpace(long), conv.Text)
	require.Len(t, synth.texts, 1)
	assert.Len(t, synth.texts[0], DefaultMaxSynthesisChars)
}

func TestConvertWhitespaceOnly(t *testing.T) {
	synth := &fakeSynth{}
	svc, _ := newTestService(t, synth)

	_, err := svc.Convert(context.Background(), UploadRequest{
		OriginalName: "blank.txt",
		MediaType:    "text/plain",
		Data:         strings.NewReader(" \n\t \r\n  "),
	})

	var validation *ValidationError
	require.True(t, errors.As(err, &validation))
	assert.Equal(t, MsgNoReadableText, validation.Message)
	assert.Empty(t, synth.texts)
}

func TestConvertUnsupportedType(t *testing.T) {
	synth := &fakeSynth{}
	svc, uploads := newTestService(t, synth)

	_, err := svc.Convert(context.Background(), UploadRequest{
		OriginalName: "photo.png",
		MediaType:    "image/png",
		Data:         strings.NewReader("\x89PNG"),
	})

	var validation *ValidationError
	require.True(t, errors.As(err, &validation))
	assert.Equal(t, "Unsupported file type: image/png", validation.Message)
	assert.Empty(t, synth.texts)

	entries, err := uploads.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 1, "only the original upload is written")
}

func TestConvertCorruptPDF(t *testing.T) {
	svc, _ := newTestService(t, &fakeSynth{})

	_, err := svc.Convert(context.Background(), UploadRequest{
		OriginalName: "broken.pdf",
		MediaType:    "application/pdf",
		Data:         strings.NewReader("this is not a pdf at all"),
	})

	var validation *ValidationError
	require.True(t, errors.As(err, &validation))
	assert.Equal(t, "Could not read pdf document.", validation.Message)
}

func TestConvertInfersTypeFromExtension(t *testing.T) {
	synth := &fakeSynth{}
	svc, _ := newTestService(t, synth)

	conv, err := svc.Convert(context.Background(), UploadRequest{
		OriginalName: "readme.txt",
		Data:         strings.NewReader("plain words"),
	})
	require.NoError(t, err)
	assert.Equal(t, "plain words", conv.Text)
}

func TestConvertRejectsOctetStreamDespiteExtension(t *testing.T) {
	synth := &fakeSynth{}
	svc, _ := newTestService(t, synth)

	_, err := svc.Convert(context.Background(), UploadRequest{
		OriginalName: "readme.txt",
		MediaType:    "application/octet-stream",
		Data:         strings.NewReader("plain words"),
	})

	var validation *ValidationError
	require.True(t, errors.As(err, &validation))
	assert.Equal(t, "Unsupported file type: application/octet-stream", validation.Message)
	assert.Empty(t, synth.texts)
}

func TestConvertSynthesisFailure(t *testing.T) {
	synth := &fakeSynth{err: tts.ErrMissingCredential}
	svc, _ := newTestService(t, synth)

	_, err := svc.Convert(context.Background(), UploadRequest{
		OriginalName: "notes.txt",
		MediaType:    "text/plain",
		Data:         strings.NewReader("speak this"),
	})

	var synthErr *SynthesisError
	require.True(t, errors.As(err, &synthErr))
	assert.ErrorIs(t, err, tts.ErrMissingCredential)
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "a.txt", baseName("a.txt"))
	assert.Equal(t, "passwd", baseName("../../etc/passwd"))
	assert.Equal(t, "doc.pdf", baseName(`C:\Users\me\doc.pdf`))
	assert.Equal(t, "upload", baseName(""))
}
