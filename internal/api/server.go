// Package api provides the HTTP server consumed by the desktop UI. All
// business behavior lives in the tracker; handlers translate HTTP to
// tracker calls and domain errors to status codes.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alphatrack/alphatrack/internal/app/tracker"
	"github.com/alphatrack/alphatrack/internal/domain"
)

// Server is the AlphaTrack HTTP API server.
type Server struct {
	tracker        *tracker.Tracker
	metricsEnabled bool
}

// NewServer creates a new API server around tr.
func NewServer(tr *tracker.Tracker) *Server {
	return &Server{tracker: tr}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Minute))
	r.Use(corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", s.handleListAccounts)
			r.Post("/", s.handleCreateAccount)
			r.Route("/{id}", func(r chi.Router) {
				r.Put("/", s.handleUpdateAccount)
				r.Delete("/", s.handleDeleteAccount)
				r.Get("/history", s.handleHistory)
				r.Post("/claim", s.handleClaim)
				r.Post("/airdrop", s.handleAirdrop)
				r.Post("/adjust", s.handleAdjust)
				r.Put("/reset-date", s.handleResetDate)
			})
		})

		r.Route("/cycle", func(r chi.Router) {
			r.Get("/", s.handleCycleStatus)
			r.Post("/reset", s.handleCycleReset)
			r.Put("/override", s.handleCycleOverride)
		})

		r.Get("/tools/fund-score", s.handleFundScore)
		r.Get("/export", s.handleExport)
		r.Post("/import", s.handleImport)
	})

	return r
}

// statusFor maps domain sentinel errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNameTaken):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInsufficientScore):
		return http.StatusConflict
	case errors.Is(err, domain.ErrConfirmationRequired):
		return http.StatusPreconditionRequired
	case errors.Is(err, domain.ErrMissingField),
		errors.Is(err, domain.ErrInvalidDate),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrMalformedSnapshot):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

// corsMiddleware adds CORS headers for the local UI.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
