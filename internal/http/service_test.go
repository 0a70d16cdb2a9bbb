package http_test

import (
	"context"
	"errors"
	"log/slog"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/vmtuan/stockroom/internal/config"
	"github.com/vmtuan/stockroom/internal/http"
)

type fakeHealthChecker struct {
	healthy bool
}

func (c fakeHealthChecker) IsHealthy(context.Context) (bool, error) {
	if !c.healthy {
		return false, errors.New("unreachable")
	}
	return true, nil
}

func newRouter(healthy bool) *chi.Mux {
	svc := http.New(config.HTTP{Port: 8000}, slog.New(slog.DiscardHandler), fakeHealthChecker{healthy: healthy})

	r := chi.NewRouter()
	svc.RegisterMiddlewares(r)
	svc.RegisterHandlers(r)
	return r
}

func TestHealthz(t *testing.T) {
	t.Run("Should report ok when all checkers pass", func(t *testing.T) {
		r := newRouter(true)

		req := httptest.NewRequest(nethttp.MethodGet, "/healthz", nil)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)

		assert.Equal(t, nethttp.StatusOK, resp.Code)
		assert.JSONEq(t, `{"status":"ok"}`, resp.Body.String())
		assert.NotEmpty(t, resp.Header().Get("X-Correlation-ID"))
	})

	t.Run("Should report unhealthy when a checker fails", func(t *testing.T) {
		r := newRouter(false)

		req := httptest.NewRequest(nethttp.MethodGet, "/healthz", nil)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)

		assert.Equal(t, nethttp.StatusServiceUnavailable, resp.Code)
		assert.JSONEq(t, `{"status":"unhealthy"}`, resp.Body.String())
	})
}

func TestMetricsEndpoint(t *testing.T) {
	t.Run("Should expose prometheus metrics", func(t *testing.T) {
		r := newRouter(true)

		req := httptest.NewRequest(nethttp.MethodGet, "/metrics", nil)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)

		assert.Equal(t, nethttp.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), "stockroom_")
	})
}
