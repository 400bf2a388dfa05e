// Package server exposes collected monitoring events over HTTP.
//
// The API is read-only: events enter the store through sinks, and this
// server answers the queries the report tooling and dashboards need.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/traceloom/traceloom/pkg/errors"
	"github.com/traceloom/traceloom/pkg/event"
)

// EventStore is the query surface the server needs. *sink.MongoStore
// implements it; tests use an in-memory fake.
type EventStore interface {
	RecentErrors(ctx context.Context, limit int) ([]event.ErrorEvent, error)
	RecentSpans(ctx context.Context, limit int) ([]event.Span, error)
	TraceSpans(ctx context.Context, traceID string) ([]event.Span, error)
}

// defaultLimit bounds list endpoints when no limit parameter is given.
const defaultLimit = 50

// maxLimit is the hard ceiling for the limit parameter.
const maxLimit = 500

// Server serves the events API.
type Server struct {
	store  EventStore
	logger *log.Logger
	router chi.Router
}

// New creates a Server backed by store.
// A nil logger falls back to log.Default().
func New(store EventStore, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{store: store, logger: logger}

	r := chi.NewRouter()
	r.Use(s.requestLogger)
	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/events/errors", s.handleErrors)
		r.Get("/events/spans", s.handleSpans)
		r.Get("/traces/{id}", s.handleTrace)
	})
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// requestLogger logs each request with method, path, and duration.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start).Round(time.Microsecond))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleErrors(w http.ResponseWriter, r *http.Request) {
	events, err := s.store.RecentErrors(r.Context(), limitParam(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if events == nil {
		events = []event.ErrorEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleSpans(w http.ResponseWriter, r *http.Request) {
	spans, err := s.store.RecentSpans(r.Context(), limitParam(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if spans == nil {
		spans = []event.Span{}
	}
	writeJSON(w, http.StatusOK, spans)
}

func (s *Server) handleTrace(w http.ResponseWriter, r *http.Request) {
	traceID := chi.URLParam(r, "id")
	spans, err := s.store.TraceSpans(r.Context(), traceID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, spans)
}

// errorResponse is the JSON body for API failures.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeTraceNotFound, errors.ErrCodeNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeSinkUnavailable:
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, errorResponse{
		Code:    string(errors.GetCode(err)),
		Message: errors.UserMessage(err),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func limitParam(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultLimit
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return defaultLimit
	}
	return min(n, maxLimit)
}
