package models

import (
	"time"

	"github.com/google/uuid"
)

// UploadedFile is a document accepted by POST /upload and kept in the
// upload area until the retention sweeper reclaims it.
type UploadedFile struct {
	Path         string    `json:"path"`
	StoredName   string    `json:"stored_name"`
	OriginalName string    `json:"original_name"`
	MediaType    string    `json:"media_type"`
	SizeBytes    int64     `json:"size_bytes"`
	CreatedAt    time.Time `json:"created_at"`
}

// AudioArtifact is a synthesized audio file exposed under /audio/.
type AudioArtifact struct {
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

type Conversion struct {
	JobID uuid.UUID     `json:"job_id"`
	Text  string        `json:"text"`
	Audio AudioArtifact `json:"audio"`
}

// Job is the short-lived record of a finished conversion.
type Job struct {
	ID             uuid.UUID `json:"id"`
	OriginalName   string    `json:"original_name"`
	MediaType      string    `json:"media_type"`
	SizeBytes      int64     `json:"size_bytes"`
	UploadName     string    `json:"upload_name"`
	AudioName      string    `json:"audio_name"`
	AudioURL       string    `json:"audio_url"`
	TextChars      int       `json:"text_chars"`
	SynthesisChars int       `json:"synthesis_chars"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

const (
	JobStatusCompleted = "completed"
)
