package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aretw0/rewatch/pkg/domain"
	"github.com/aretw0/rewatch/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultHistoryLimit is used when /history is called without a limit.
const DefaultHistoryLimit = 20

// maxHistoryLimit bounds a single /history response.
const maxHistoryLimit = 1000

// Status describes the running watcher for /healthz.
type Status interface {
	Path() string
	State() string
}

// Server serves the status surface of a rewatch process.
type Server struct {
	Gatherer prometheus.Gatherer
	History  ports.HistoryStore
	Status   Status
	Version  string
}

// NewHandler creates the HTTP handler. A nil History makes /history answer 404.
func NewHandler(s *Server) http.Handler {
	r := chi.NewRouter()

	if s.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	}
	r.Get("/healthz", s.GetHealth)
	r.Get("/history", s.GetHistory)

	return r
}

// GetHealth handles the GET /healthz request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "ok"}
	if s.Version != "" {
		resp["version"] = s.Version
	}
	if s.Status != nil {
		resp["path"] = s.Status.Path()
		resp["state"] = s.Status.State()
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetHistory handles the GET /history request.
func (s *Server) GetHistory(w http.ResponseWriter, r *http.Request) {
	if s.History == nil {
		writeError(w, http.StatusNotFound, domain.ErrHistoryUnavailable)
		return
	}

	limit := DefaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, errors.New("limit must be a positive integer"))
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	records, err := s.History.Recent(r.Context(), limit)
	if err != nil {
		slog.Error("History read failed", "err", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encode failed", "err", err)
	}
}
