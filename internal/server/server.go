// Package server exposes health, metrics, status and recent alerts over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"

	"solana-pair-radar/internal/domain"
	"solana-pair-radar/internal/observability"
	"solana-pair-radar/internal/orchestrator"
	"solana-pair-radar/internal/storage"
)

// Default configuration values.
const (
	DefaultAlertsLimit     = 50
	MaxAlertsLimit         = 500
	DefaultShutdownTimeout = 5 * time.Second
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// StatusProvider reports the monitor state.
type StatusProvider interface {
	Status() orchestrator.Status
}

var _ StatusProvider = (*orchestrator.Orchestrator)(nil)

// Options for creating Server.
type Options struct {
	Addr   string
	Status StatusProvider
	Alerts storage.AlertStore // optional; /alerts answers 404 without it
	Logger zerolog.Logger
}

// Server is the admin HTTP server.
type Server struct {
	router *mux.Router
	http   *http.Server
	status StatusProvider
	alerts storage.AlertStore
	logger zerolog.Logger
}

// New creates a new Server with its routes registered.
func New(opts Options) *Server {
	s := &Server{
		router: mux.NewRouter(),
		status: opts.Status,
		alerts: opts.Alerts,
		logger: opts.Logger.With().Str("component", "server").Logger(),
	}
	s.setupRoutes()

	s.http = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(s.requestIDMiddleware)
	s.router.Use(s.requestLoggingMiddleware)

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", observability.Handler()).Methods(http.MethodGet)
	s.router.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	s.router.HandleFunc("/alerts", s.handleAlerts).Methods(http.MethodGet)
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.http.Addr).Msg("admin server listening")
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// StatusResponse is the JSON response for /status.
type StatusResponse struct {
	State  string `json:"state"`
	Uptime string `json:"uptime"`
	orchestrator.Status
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	if s.status == nil {
		writeError(w, http.StatusServiceUnavailable, "monitor not running")
		return
	}

	st := s.status.Status()
	writeJSON(w, http.StatusOK, StatusResponse{
		State:  "running",
		Uptime: time.Since(st.StartedAt).Truncate(time.Second).String(),
		Status: st,
	})
}

// AlertsResponse is the JSON response for /alerts.
type AlertsResponse struct {
	Count  int                   `json:"count"`
	Alerts []*domain.AlertRecord `json:"alerts"`
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	if s.alerts == nil {
		writeError(w, http.StatusNotFound, "alert journal disabled")
		return
	}

	limit := DefaultAlertsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, MaxAlertsLimit)
	}

	alerts, err := s.alerts.ListRecent(r.Context(), limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("list alerts")
		writeError(w, http.StatusInternalServerError, "failed to list alerts")
		return
	}
	if alerts == nil {
		alerts = []*domain.AlertRecord{}
	}

	writeJSON(w, http.StatusOK, AlertsResponse{Count: len(alerts), Alerts: alerts})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = jsonAPI.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

type requestIDKey struct{}

// requestIDMiddleware tags each request with a short id.
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()[:8]
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, requestID)))
	})
}

// requestLoggingMiddleware logs method, path, status and latency at debug level.
func (s *Server) requestLoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapper, r)

		requestID, _ := r.Context().Value(requestIDKey{}).(string)
		s.logger.Debug().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapper.statusCode).
			Dur("latency", time.Since(start)).
			Msg("request")
	})
}

// responseWrapper captures the status code written by a handler.
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
