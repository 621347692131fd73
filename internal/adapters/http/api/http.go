// Package api serves the local status surface: Prometheus metrics, a JSON
// snapshot of the race core, and the stored ghosts.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/okian/ghostrun/internal/adapters/repository"
	"github.com/okian/ghostrun/internal/domain/model"
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	// SharedGhosts lists the shared folder.
	SharedGhosts(ctx context.Context) ([]model.SharedGhostMetadata, error)
	// PersonalBest returns the stored best for routeID.
	PersonalBest(ctx context.Context, routeID string) (*model.GhostRecording, error)
}

// Server wires HTTP routes for the status API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	ghostsHandler *GhostsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
		ghostsHandler: NewGhostsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/ghosts", MetricsMiddleware(s.ghostsHandler.HandleListShared, "ghosts"))
	mux.HandleFunc("/ghosts/personal/", MetricsMiddleware(s.ghostsHandler.HandleGetPersonal, "ghosts_personal"))
}

// Handler returns a mux with every route registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.Register(mux)
	return mux
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Join(ErrServe, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound) ||
		errors.Is(err, repository.ErrInvalidRoute) ||
		errors.Is(err, model.ErrRouteNotFound)
}
