// Package server implements HTTP server for health checks and metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jittakal/boundedbuffer/internal/config/dto"
)

// HealthChecker interface for checking component health.
type HealthChecker interface {
	Liveness() bool
	Readiness(ctx context.Context) bool
	IsHealthy() bool
	GetStatus() map[string]string
}

// Server represents the HTTP server for health and metrics.
type Server struct {
	servers []*http.Server
	logger  *zap.Logger
}

// NewServer creates a new HTTP server. When health and metrics share a port,
// both are served by a single listener.
func NewServer(
	cfg dto.ObservabilityConfig,
	healthChecker HealthChecker,
	registry *prometheus.Registry,
	logger *zap.Logger,
) *Server {
	healthMux := http.NewServeMux()
	healthMux.HandleFunc(cfg.Health.LivenessPath, LivenessHandler(healthChecker, logger))
	healthMux.HandleFunc(cfg.Health.ReadinessPath, ReadinessHandler(healthChecker, logger))

	metricsMux := healthMux
	if cfg.Metrics.Port != cfg.Health.Port {
		metricsMux = http.NewServeMux()
	}
	metricsMux.Handle(cfg.Metrics.Path, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	s := &Server{logger: logger}
	s.servers = append(s.servers, newHTTPServer(cfg.Health.Port, healthMux))
	if metricsMux != healthMux {
		s.servers = append(s.servers, newHTTPServer(cfg.Metrics.Port, metricsMux))
	}
	return s
}

func newHTTPServer(port int, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}

// Start starts the HTTP servers.
func (s *Server) Start() error {
	for _, srv := range s.servers {
		go func(srv *http.Server) {
			s.logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.logger.Error("HTTP server failed", zap.String("addr", srv.Addr), zap.Error(err))
			}
		}(srv)
	}
	return nil
}

// Shutdown gracefully shuts down the servers.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP servers")

	errChan := make(chan error, len(s.servers))
	for _, srv := range s.servers {
		go func(srv *http.Server) {
			errChan <- srv.Shutdown(ctx)
		}(srv)
	}

	var lastErr error
	for range s.servers {
		if err := <-errChan; err != nil {
			s.logger.Error("Error shutting down server", zap.Error(err))
			lastErr = err
		}
	}

	return lastErr
}
