// Package api provides the HTTP API server for on-demand domain health analysis.
// Uses chi router, tollbooth rate limiting, go-chi/cors, and Prometheus metrics.
package api

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/didip/tollbooth/v8"
	"github.com/didip/tollbooth/v8/limiter"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sudo-tiz/dnshealth-go/internal/config"
	"github.com/sudo-tiz/dnshealth-go/internal/metrics"
	"github.com/sudo-tiz/dnshealth-go/internal/normalize"
	"github.com/sudo-tiz/dnshealth-go/internal/tasks"
)

// APIVersion is the current version of the API
const APIVersion = "1.0.0"

// Server wraps chi router with a task queue client for async domain analyses.
type Server struct {
	router      *chi.Mux
	config      *config.APIConfig
	tasksClient tasks.ClientInterface
	csrf        *csrfStore
}

// NewServer configures middleware stack: CORS, tollbooth, chi logging, panic recovery.
func NewServer(cfg *config.APIConfig) *Server {
	s := &Server{router: chi.NewRouter(), config: cfg, csrf: newCSRFStore()}

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "X-CSRF-Token"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Tollbooth rate limiter with configurable IP source (RemoteAddr, X-Forwarded-For, etc.)
	// Only enable if RequestsPerSecond > 0 (0 = disabled)
	if cfg.RateLimiting.RequestsPerSecond > 0 {
		lmt := tollbooth.NewLimiter(
			float64(cfg.GetRateLimitRequestsPerSecond()),
			&limiter.ExpirableOptions{DefaultExpirationTTL: 10 * time.Minute},
		)
		lmt.SetBurst(cfg.GetRateLimitBurstSize())

		ipSource := os.Getenv("RATE_LIMIT_IP_SOURCE")
		if ipSource == "" {
			ipSource = "RemoteAddr"
		}
		lmt.SetIPLookup(limiter.IPLookup{Name: ipSource, IndexFromRight: 0})
		lmt.SetMessage(`{"error":"rate limit exceeded"}`)
		lmt.SetMessageContentType("application/json")

		s.router.Use(func(next http.Handler) http.Handler {
			return tollbooth.HTTPMiddleware(lmt)(next)
		})
	}

	// Chi middleware for logging, recovery, request ID, real IP
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)

	s.router.Get("/", s.handleIndex)
	s.router.Get("/health", s.handleHealthCheck)
	s.router.Head("/health", s.handleHealthCheck)
	s.router.Get("/metrics", s.handleMetrics)

	s.router.Get("/api/csrf-token", s.handleCSRFToken)
	s.router.Post("/api/check", s.requireCSRF(s.handleCheck))
	s.router.Get("/api/check/{taskID}", s.handleGetTaskStatus)

	return s
}

func allowedOrigins() []string {
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		return []string{v}
	}
	return []string{"*"}
}

// SetTasksClient injects task queue client (Asynq or in-memory).
func (s *Server) SetTasksClient(c tasks.ClientInterface) { s.tasksClient = c }

// Router exposes chi.Mux for testing.
func (s *Server) Router() http.Handler { return s.router }

// Run starts HTTP server with config-driven timeouts.
func (s *Server) Run(addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.config.GetServerReadTimeout()) * time.Second,
		WriteTimeout: time.Duration(s.config.GetServerWriteTimeout()) * time.Second,
		IdleTimeout:  time.Duration(s.config.GetServerIdleTimeout()) * time.Second,
	}
	return srv.ListenAndServe()
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"service": "dnshealth",
		"version": APIVersion,
	})
}

// checkRequest is the POST /api/check payload: a domain and an optional
// subset of the declared check names. An empty Checks list runs all of them.
type checkRequest struct {
	Domain string   `json:"domain"`
	Checks []string `json:"checks,omitempty"`
}

// checkResponse is returned when an analysis task is enqueued.
type checkResponse struct {
	TaskID  string `json:"task_id"`
	Message string `json:"message"`
}

// handleCheck submits a domain for asynchronous health analysis
// @Summary Submit a domain health analysis
// @Description Enqueue a DNS health analysis for a domain. Returns a task ID that can be polled.
// @Tags Analysis
// @Accept json
// @Produce json
// @Param X-CSRF-Token header string true "CSRF token from /api/csrf-token"
// @Param request body checkRequest true "Domain and optional checks"
// @Success 200 {object} checkResponse "Task accepted and enqueued"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 403 {object} map[string]string "Missing or invalid CSRF token"
// @Failure 429 {object} map[string]string "Rate limit exceeded"
// @Failure 503 {object} map[string]string "No workers available"
// @Router /api/check [post]
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request")
		return
	}

	metrics.APIRequestsTotal.WithLabelValues("api/check").Inc()

	domain, err := normalize.Domain(req.Domain)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Domain = domain

	if asynqClient, ok := s.tasksClient.(*tasks.Client); ok {
		if !asynqClient.HasActiveWorkers(r.Context()) {
			respondError(w, http.StatusServiceUnavailable, "no workers available - tasks cannot be processed")
			return
		}
	}

	if s.tasksClient == nil {
		respondError(w, http.StatusInternalServerError, "tasks client not configured")
		return
	}

	id, err := s.tasksClient.EnqueueAnalyze(r.Context(), req.Domain, req.Checks)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, checkResponse{TaskID: id, Message: "domain analysis enqueued"})
}

// handleGetTaskStatus retrieves the status and result of a submitted analysis
// @Summary Get analysis task status and result
// @Description Retrieve the status and result of a previously submitted domain analysis
// @Tags Analysis
// @Produce json
// @Param taskID path string true "Task ID"
// @Success 200 {object} tasks.TaskStatusResponse "Task found"
// @Failure 404 {object} map[string]string "Task not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/check/{taskID} [get]
func (s *Server) handleGetTaskStatus(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	if s.tasksClient == nil {
		respondError(w, http.StatusInternalServerError, "tasks client not configured")
		return
	}
	status, err := s.tasksClient.GetTaskStatus(r.Context(), taskID)
	if err != nil {
		if err.Error() == "not found" {
			respondError(w, http.StatusNotFound, "task not found")
		} else {
			respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	// Metrics on-demand: update when client polls results (solves worker metrics collection)
	metrics.APIResultPollsTotal.Inc()

	respondJSON(w, http.StatusOK, status)
}

// handleHealthCheck returns degraded if Asynq workers unavailable
// @Summary Health check
// @Description Check if the API service is running and workers are available
// @Tags System
// @Produce json
// @Success 200 {object} map[string]string "Service is healthy or degraded"
// @Router /health [get]
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	health := map[string]string{"status": "ok"}

	if asynqClient, ok := s.tasksClient.(*tasks.Client); ok {
		if !asynqClient.HasActiveWorkers(r.Context()) {
			health["status"] = "degraded"
			health["warning"] = "no active workers detected"
		}
	}

	if health["status"] == "degraded" {
		respondJSON(w, http.StatusServiceUnavailable, health)
		return
	}

	respondJSON(w, http.StatusOK, health)
}

// handleMetrics exposes Prometheus metrics
// @Summary Prometheus metrics
// @Description Expose application metrics in Prometheus format
// @Tags System
// @Produce text/plain
// @Success 200 {string} string "Prometheus metrics"
// @Router /metrics [get]
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// LoadConfigFromEnv provides default config path fallback.
func LoadConfigFromEnv() string {
	p := os.Getenv("CONFIG_PATH")
	if p == "" {
		p = "conf/config.yaml"
	}
	return p
}
