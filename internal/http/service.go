package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vmtuan/stockroom/internal/config"
	"github.com/vmtuan/stockroom/internal/http/middleware"
	"github.com/vmtuan/stockroom/internal/storage/db"
)

// Service is the operational HTTP surface: health and metrics only. The
// business API of this system is its event stream, not HTTP.
type Service struct {
	cfg    config.HTTP
	logger *slog.Logger

	healthCheckers []db.HealthChecker
}

type CleanupFunc func(ctx context.Context) error

func New(
	cfg config.HTTP,
	log *slog.Logger,
	healthCheckers ...db.HealthChecker,
) *Service {
	return &Service{
		cfg:            cfg,
		logger:         log.With(slog.String("service", "http")),
		healthCheckers: healthCheckers,
	}
}

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	r := chi.NewRouter()
	s.RegisterMiddlewares(r)
	s.RegisterHandlers(r)

	return s.RunWithServer(ctx, r)
}

func (s *Service) RunWithServer(ctx context.Context, handler http.Handler) (CleanupFunc, error) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64 KB
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic(err)
		}
	}()

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}, nil
}

func (s *Service) RegisterMiddlewares(r chi.Router) {
	r.Use(
		middleware.Recoverer(s.logger),
		middleware.Metrics(),
		middleware.CorrelationID(),
	)
}

func (s *Service) RegisterHandlers(r chi.Router) {
	r.Get("/healthz", s.handleHealthz)

	r.Handle(middleware.MetricsPath, promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		ErrorLog: log.Default(),
	}))
}

type healthzResponse struct {
	Status string `json:"status"`
}

func (s *Service) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	for _, checker := range s.healthCheckers {
		if healthy, err := checker.IsHealthy(r.Context()); err != nil || !healthy {
			s.logger.ErrorContext(r.Context(), "health check failed", slog.Any("error", err))

			w.WriteHeader(http.StatusServiceUnavailable)
			//nolint:errcheck
			json.NewEncoder(w).Encode(healthzResponse{Status: "unhealthy"})
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	//nolint:errcheck
	json.NewEncoder(w).Encode(healthzResponse{Status: "ok"})
}
