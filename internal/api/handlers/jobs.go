package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nikhilbhutani/doc2voice/internal/jobs"
)

type JobHandler struct {
	store *jobs.Store
}

func NewJobHandler(store *jobs.Store) *JobHandler {
	return &JobHandler{store: store}
}

func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid job ID"})
		return
	}
	if h.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Message: "job records unavailable"})
		return
	}

	job, err := h.store.Get(r.Context(), id)
	if errors.Is(err, jobs.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Message: "job not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Message: "job records unavailable", Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, job)
}
