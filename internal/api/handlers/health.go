package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
)

const livenessText = "Doc2Voice backend is running!"

// Pinger is a backing service whose reachability gates readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	redis Pinger
	dirs  map[string]string
}

// NewHealthHandler checks redis when job records are enabled and that each
// named storage directory exists. A nil redis skips that check.
func NewHealthHandler(redis Pinger, dirs map[string]string) *HealthHandler {
	return &HealthHandler{redis: redis, dirs: dirs}
}

func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(livenessText))
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{}

	if h.redis != nil {
		if err := h.redis.Ping(r.Context()); err != nil {
			checks["redis"] = "unhealthy: " + err.Error()
		} else {
			checks["redis"] = "ok"
		}
	}

	for name, dir := range h.dirs {
		info, err := os.Stat(dir)
		switch {
		case err != nil:
			checks[name] = "unhealthy: " + err.Error()
		case !info.IsDir():
			checks[name] = "unhealthy: not a directory"
		default:
			checks[name] = "ok"
		}
	}

	status := http.StatusOK
	for _, v := range checks {
		if v != "ok" {
			status = http.StatusServiceUnavailable
			break
		}
	}

	writeJSON(w, status, map[string]interface{}{"status": statusStr(status), "checks": checks})
}

func statusStr(code int) string {
	if code == http.StatusOK {
		return "ok"
	}
	return "unhealthy"
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
