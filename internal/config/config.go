package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	Storage   StorageConfig
	TTS       TTSConfig
	Retention RetentionConfig
}

type ServerConfig struct {
	Host           string
	Port           int
	MaxUploadBytes int64
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type StorageConfig struct {
	UploadDir string
	AudioDir  string
}

type TTSConfig struct {
	Backend           string // "elevenlabs" or "openai"
	ElevenLabsKey     string
	ElevenLabsBaseURL string
	VoiceID           string
	ModelID           string
	OpenAIKey         string
	OpenAIBaseURL     string
	OpenAIModel       string
	OpenAIVoice       string
	Timeout           time.Duration
	MaxChars          int
}

type RetentionConfig struct {
	MaxAge    time.Duration
	Interval  time.Duration
	InProcess bool // false when cmd/worker owns sweeping
}

const (
	BackendElevenLabs = "elevenlabs"
	BackendOpenAI     = "openai"
)

func Load() (*Config, error) {
	port, err := getEnvInt("PORT", 5000)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	maxUpload, err := getEnvInt("MAX_UPLOAD_BYTES", 5<<20)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_UPLOAD_BYTES: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	timeout, err := getEnvDuration("TTS_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid TTS_TIMEOUT: %w", err)
	}

	maxChars, err := getEnvInt("TTS_MAX_CHARS", 1000)
	if err != nil {
		return nil, fmt.Errorf("invalid TTS_MAX_CHARS: %w", err)
	}

	maxAge, err := getEnvDuration("RETENTION_MAX_AGE", time.Hour)
	if err != nil {
		return nil, fmt.Errorf("invalid RETENTION_MAX_AGE: %w", err)
	}

	interval, err := getEnvDuration("RETENTION_INTERVAL", time.Hour)
	if err != nil {
		return nil, fmt.Errorf("invalid RETENTION_INTERVAL: %w", err)
	}

	inProcess, err := getEnvBool("RETENTION_IN_PROCESS", true)
	if err != nil {
		return nil, fmt.Errorf("invalid RETENTION_IN_PROCESS: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           port,
			MaxUploadBytes: int64(maxUpload),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Storage: StorageConfig{
			UploadDir: getEnv("UPLOAD_DIR", "uploads"),
			AudioDir:  getEnv("AUDIO_DIR", "audios"),
		},
		TTS: TTSConfig{
			Backend:           strings.ToLower(getEnv("TTS_BACKEND", BackendElevenLabs)),
			ElevenLabsKey:     getEnv("ELEVENLABS_API_KEY", ""),
			ElevenLabsBaseURL: getEnv("ELEVENLABS_BASE_URL", "https://api.elevenlabs.io"),
			VoiceID:           getEnv("ELEVENLABS_VOICE_ID", "EXAVITQu4vr4xnSDxMaL"),
			ModelID:           getEnv("ELEVENLABS_MODEL_ID", "eleven_monolingual_v1"),
			OpenAIKey:         getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL:     getEnv("TTS_OPENAI_BASE_URL", ""),
			OpenAIModel:       getEnv("TTS_OPENAI_MODEL", "tts-1"),
			OpenAIVoice:       getEnv("TTS_OPENAI_VOICE", "alloy"),
			Timeout:           timeout,
			MaxChars:          maxChars,
		},
		Retention: RetentionConfig{
			MaxAge:    maxAge,
			Interval:  interval,
			InProcess: inProcess,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Validate reports settings the service cannot start with. A missing
// synthesis key is not one of them: the server runs and each synthesis
// fails until the key is supplied.
func (c *Config) Validate() error {
	var problems []string
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("PORT out of range: %d", c.Server.Port))
	}
	if c.Server.MaxUploadBytes <= 0 {
		problems = append(problems, "MAX_UPLOAD_BYTES must be positive")
	}
	if c.TTS.Backend != BackendElevenLabs && c.TTS.Backend != BackendOpenAI {
		problems = append(problems, fmt.Sprintf("unknown TTS_BACKEND %q", c.TTS.Backend))
	}
	if c.TTS.MaxChars <= 0 {
		problems = append(problems, "TTS_MAX_CHARS must be positive")
	}
	if c.Retention.MaxAge <= 0 || c.Retention.Interval <= 0 {
		problems = append(problems, "retention durations must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// SynthesisKey returns the API key of the selected backend.
func (c *Config) SynthesisKey() string {
	if c.TTS.Backend == BackendOpenAI {
		return c.TTS.OpenAIKey
	}
	return c.TTS.ElevenLabsKey
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return time.ParseDuration(v)
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseBool(v)
}
