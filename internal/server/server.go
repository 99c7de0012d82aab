// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 rdlvis Contributors

package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	rdlerr "github.com/iso15926vis/rdlvis/pkg/errors"
	"github.com/iso15926vis/rdlvis/pkg/health"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config holds HTTP server configuration.
type Config struct {
	ListenAddr   string
	CORSOrigins  []string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	RateLimit    RateLimitConfig
	Version      string
}

// Server wraps a chi router with huma API and HTTP server.
type Server struct {
	router   chi.Router
	api      huma.API
	cfg      Config
	services *Services
	started  time.Time

	done      chan struct{}
	closeOnce sync.Once
}

// New creates a Server with chi router, huma API, health endpoints, metrics,
// CORS and optional per-IP rate limiting.
func New(cfg Config) (*Server, error) {
	if cfg.ListenAddr == "" {
		return nil, rdlerr.New(rdlerr.CodeServerConfigInvalid, "listen address is required")
	}
	if err := cfg.RateLimit.Validate(); err != nil {
		return nil, err
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 60 * time.Second
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}

	done := make(chan struct{})

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware(cfg.CORSOrigins))
	r.Use(rateLimitMiddleware(cfg.RateLimit, done))

	r.Handle("/metrics", promhttp.Handler())

	humaConfig := huma.DefaultConfig("rdlvis", cfg.Version)
	humaConfig.Info.Description = "Class hierarchy browser API for an ISO 15926 reference data library"
	api := humachi.New(r, humaConfig)

	srv := &Server{
		router:  r,
		api:     api,
		cfg:     cfg,
		started: time.Now(),
		done:    done,
	}

	huma.Register(api, huma.Operation{
		OperationID: "ping",
		Method:      http.MethodGet,
		Path:        "/ping",
		Summary:     "Liveness probe",
		Tags:        []string{"system"},
	}, func(_ context.Context, _ *struct{}) (*PingResponse, error) {
		return &PingResponse{Body: PingBody{Status: "success", Message: "Pong!"}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Tags:        []string{"system"},
	}, srv.handleHealth)

	return srv, nil
}

// Handler returns the underlying http.Handler for testing.
func (s *Server) Handler() http.Handler {
	return s.router
}

// API returns the huma API for registering additional operations.
func (s *Server) API() huma.API {
	return s.api
}

// Close stops background goroutines started by New. It is safe to call
// more than once.
func (s *Server) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return nil
}

// Start runs the HTTP server and blocks until the context is cancelled,
// then performs graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	defer s.Close() //nolint:errcheck

	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return rdlerr.Wrap(err, rdlerr.CodeServerStartFailure, "listening", rdlerr.Field("addr", s.cfg.ListenAddr))
	}

	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return rdlerr.Wrap(err, rdlerr.CodeServerStartFailure, "serving")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return rdlerr.Wrap(err, rdlerr.CodeServerShutdownFailure, "shutting down")
	}

	return <-errCh
}

// PingBody is the JSON body of the ping endpoint.
type PingBody struct {
	Status  string `json:"status" example:"success" doc:"Always success"`
	Message string `json:"message" example:"Pong!" doc:"Always Pong!"`
}

// PingResponse wraps the ping response.
type PingResponse struct {
	Body PingBody
}

// HealthResponse wraps the health check response.
type HealthResponse struct {
	Body health.Report
}

func (s *Server) handleHealth(ctx context.Context, _ *struct{}) (*HealthResponse, error) {
	report := health.Report{
		Status:  health.StatusDegraded,
		Version: s.cfg.Version,
		Uptime:  time.Since(s.started).Truncate(time.Second).String(),
	}
	if s.services != nil {
		st, err := s.services.Control().Status(ctx)
		if err != nil {
			return nil, toHTTPError(err)
		}
		report.Status = health.Evaluate(st.Loaded)
		report.Snapshot = st.Snapshot
		report.Triples = st.Triples
		if st.Loaded {
			loadedAt := st.LoadedAt
			report.LoadedAt = &loadedAt
		}
	}
	return &HealthResponse{Body: report}, nil
}

func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Link", "X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	})
}
