package tts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElevenLabsSynthesize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/text-to-speech/"+DefaultElevenLabsVoiceID, r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("xi-api-key"))
		assert.Equal(t, "audio/mpeg", r.Header.Get("Accept"))

		var body elevenLabsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hello world", body.Text)
		assert.Equal(t, DefaultElevenLabsModelID, body.ModelID)
		assert.Equal(t, 0.5, body.VoiceSettings.Stability)
		assert.Equal(t, 0.75, body.VoiceSettings.SimilarityBoost)

		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("ID3-audio"))
	}))
	defer srv.Close()

	p := NewElevenLabs(ElevenLabsConfig{APIKey: "secret", BaseURL: srv.URL})
	res, err := p.Synthesize(context.Background(), SynthesisRequest{Input: "hello world"})
	require.NoError(t, err)
	assert.Equal(t, []byte("ID3-audio"), res.Audio)
	assert.Equal(t, "audio/mpeg", res.ContentType)
}

func TestElevenLabsMissingCredential(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	p := NewElevenLabs(ElevenLabsConfig{BaseURL: srv.URL})
	_, err := p.Synthesize(context.Background(), SynthesisRequest{Input: "hi"})

	assert.ErrorIs(t, err, ErrMissingCredential)
	assert.Zero(t, calls.Load())
}

func TestElevenLabsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":{"status":"invalid_api_key"}}`))
	}))
	defer srv.Close()

	p := NewElevenLabs(ElevenLabsConfig{APIKey: "bad", BaseURL: srv.URL})
	_, err := p.Synthesize(context.Background(), SynthesisRequest{Input: "hi"})

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusUnauthorized, upstream.StatusCode)
	assert.Contains(t, upstream.Body, "invalid_api_key")
}

func TestElevenLabsTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	p := NewElevenLabs(ElevenLabsConfig{APIKey: "secret", BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := p.Synthesize(context.Background(), SynthesisRequest{Input: "hi"})

	var transport *TransportError
	require.True(t, errors.As(err, &transport))
	assert.Equal(t, "elevenlabs", transport.Provider)
}
