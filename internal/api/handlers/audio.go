package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nikhilbhutani/doc2voice/internal/storage"
)

type AudioHandler struct {
	store *storage.LocalStorage
}

func NewAudioHandler(store *storage.LocalStorage) *AudioHandler {
	return &AudioHandler{store: store}
}

// Serve streams a stored artifact. Reclaimed or unknown names are 404.
func (h *AudioHandler) Serve(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if strings.HasPrefix(name, ".") {
		h.notFound(w)
		return
	}

	f, err := h.store.Open(r.Context(), name)
	if err != nil {
		h.notFound(w)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		h.notFound(w)
		return
	}

	if strings.EqualFold(filepath.Ext(name), ".mp3") {
		w.Header().Set("Content-Type", "audio/mpeg")
	}
	http.ServeContent(w, r, name, info.ModTime(), f)
}

func (h *AudioHandler) notFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, errorResponse{Message: "Audio not found."})
}
