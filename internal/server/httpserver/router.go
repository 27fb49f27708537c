package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/yndnr/reactorkv/internal/infra/buildinfo"
	"github.com/yndnr/reactorkv/internal/telemetry/logger"
	"github.com/yndnr/reactorkv/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Metrics is exposed on /metrics. Nil serves 404.
	Metrics *metric.Registry

	// Ready reports whether the server accepts Redis clients.
	// Nil means always ready.
	Ready func() error

	// Logger for request logging.
	Logger logger.Logger
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = logger.Discard()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(cfg.Ready))
	mux.Handle("GET /metrics", cfg.Metrics.Handler())
	mux.HandleFunc("GET /version", handleVersion)

	return Chain(mux, RequestID(), Recover(log), AccessLog(log))
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func handleReady(ready func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ready != nil {
			if err := ready(); err != nil {
				logger.FromContext(r.Context()).Warn("readiness check failed", "error", err)
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "not ready",
					"reason": err.Error(),
				})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
