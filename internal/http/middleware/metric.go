package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/vmtuan/stockroom/internal/metric"
)

const MetricsPath = "/metrics"

func Metrics() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == MetricsPath {
				next.ServeHTTP(w, r)
				return
			}

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			t1 := time.Now()

			metric.HTTPInflightRequests.Inc()
			defer metric.HTTPInflightRequests.Dec()

			next.ServeHTTP(ww, r)

			duration := time.Since(t1).Seconds()
			labels := []string{r.Method, r.URL.Path}

			metric.HTTPRequestsTotal.WithLabelValues(labels...).Inc()
			metric.HTTPRequestDuration.WithLabelValues(labels...).Observe(duration)
		})
	}
}
