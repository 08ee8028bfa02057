// Package api provides the HTTP REST API server for solarprop.
//
// It exposes endpoints for system sizing, financing comparison,
// sensitivity analysis and combined proposals.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/seenimoa/solarprop/internal/config"
	"github.com/seenimoa/solarprop/internal/logging"
	"github.com/seenimoa/solarprop/internal/proposal"
	"github.com/seenimoa/solarprop/internal/sizing"
	"github.com/seenimoa/solarprop/pkg/models"
)

// Version is reported by the health endpoint. Set by the CLI at startup.
var Version = "dev"

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Server is the HTTP API server.
type Server struct {
	router chi.Router
	cfg    *config.Config
	svc    *proposal.Service
	log    *slog.Logger
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config, svc *proposal.Service, logger *slog.Logger) *Server {
	srv := &Server{
		cfg: cfg,
		svc: svc,
		log: logging.Component(logger, "api"),
	}
	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: s.requestTimeout() + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", addr, "estimator", s.svc.EstimatorName())
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

func (s *Server) requestTimeout() time.Duration {
	if s.cfg.API.RequestTimeout <= 0 {
		return 60 * time.Second
	}
	return time.Duration(s.cfg.API.RequestTimeout) * time.Second
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.requestTimeout()))

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Post("/sizing", s.handleSizing)
		r.Post("/financing", s.handleFinancing)
		r.Post("/sensitivity", s.handleSensitivity)
		r.Post("/proposal", s.handleProposal)

		r.Get("/assumptions", s.handleAssumptions)
		r.Get("/config/keys", s.handleConfigKeys)
	})

	return r
}

// requestLogger logs one line per request through slog.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.log.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"elapsed", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SizingRequest is the body for POST /api/v1/sizing.
type SizingRequest = sizing.Request

// FinancingRequest is the body for POST /api/v1/financing.
type FinancingRequest = proposal.FinancingRequest

// SensitivityRequest is the body for POST /api/v1/sensitivity.
type SensitivityRequest = proposal.SensitivityRequest

// ProposalRequest is the body for POST /api/v1/proposal.
type ProposalRequest = proposal.ProposalRequest

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]any{
			"status":    "ok",
			"version":   Version,
			"estimator": s.svc.EstimatorName(),
			"time":      time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func (s *Server) handleSizing(w http.ResponseWriter, r *http.Request) {
	var req SizingRequest
	if !decodeBody(w, r, &req) {
		return
	}
	result, err := s.svc.CompareSizes(r.Context(), req)
	s.respond(w, r, result, err)
}

func (s *Server) handleFinancing(w http.ResponseWriter, r *http.Request) {
	var req FinancingRequest
	if !decodeBody(w, r, &req) {
		return
	}
	result, err := s.svc.CompareFinancing(r.Context(), req)
	s.respond(w, r, result, err)
}

func (s *Server) handleSensitivity(w http.ResponseWriter, r *http.Request) {
	var req SensitivityRequest
	if !decodeBody(w, r, &req) {
		return
	}
	result, err := s.svc.Analyze(r.Context(), req)
	s.respond(w, r, result, err)
}

func (s *Server) handleProposal(w http.ResponseWriter, r *http.Request) {
	var req ProposalRequest
	if !decodeBody(w, r, &req) {
		return
	}
	result, err := s.svc.BuildProposal(r.Context(), req)
	s.respond(w, r, result, err)
}

// respond writes a result or maps err to a status code: input errors are
// the caller's fault, everything else is ours.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, result any, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: result})
		return
	}
	var inputErr *models.InputError
	if errors.As(err, &inputErr) {
		writeError(w, http.StatusBadRequest, inputErr.Error())
		return
	}
	s.log.Error("request failed", "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()), "error", err)
	writeError(w, http.StatusInternalServerError, err.Error())
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
