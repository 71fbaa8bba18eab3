package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/nikhilbhutani/doc2voice/internal/document"
)

// room for multipart boundaries and headers on top of the file itself
const multipartOverhead = 1 << 20

const msgConverted = "File processed and audio generated!"

type DocumentHandler struct {
	svc       *document.Service
	maxUpload int64
}

func NewDocumentHandler(svc *document.Service, maxUpload int64) *DocumentHandler {
	return &DocumentHandler{svc: svc, maxUpload: maxUpload}
}

type uploadResponse struct {
	Message  string `json:"message"`
	Text     string `json:"text"`
	AudioURL string `json:"audioUrl"`
	JobID    string `json:"jobId"`
}

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// Upload accepts one multipart "file" field and runs the conversion
// pipeline on it.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: document.MsgNoFile})
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: document.MsgNoFile})
		return
	}
	defer file.Close()

	if header.Size > h.maxUpload {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: document.MsgNoFile})
		return
	}

	// A client that hangs up does not abort the pipeline; whatever it
	// produced is reclaimed by the retention sweeper.
	ctx := context.WithoutCancel(r.Context())

	conv, err := h.svc.Convert(ctx, document.UploadRequest{
		OriginalName: header.Filename,
		MediaType:    header.Header.Get("Content-Type"),
		FileSize:     header.Size,
		Data:         file,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{
		Message:  msgConverted,
		Text:     conv.Text,
		AudioURL: conv.Audio.URL,
		JobID:    conv.JobID.String(),
	})
}

func (h *DocumentHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var validation *document.ValidationError
	var synthesis *document.SynthesisError

	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: validation.Message})
	case errors.As(err, &synthesis):
		slog.Error("upload failed", "stage", "synthesis", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "TTS failed", Error: synthesis.Error()})
	default:
		slog.Error("upload failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "Failed to process file.", Error: err.Error()})
	}
}
