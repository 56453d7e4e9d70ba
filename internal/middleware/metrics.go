package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// NewMetrics returns a middleware that counts requests and observes their
// latency on reg, labelled by method, chi route pattern, and status class.
// Using the route pattern instead of the raw path keeps label cardinality
// bounded ("/volunteers/{volunteerId}/schedule", not one series per id).
func NewMetrics(reg prometheus.Registerer) func(http.Handler) http.Handler {
	factory := promauto.With(reg)
	requests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quest_calendar",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests broken down by method, route and status class.",
	}, []string{"method", "route", "result"})
	latency := factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "quest_calendar",
		Subsystem: "http",
		Name:      "latency_seconds",
		Help:      "Latency distribution of HTTP requests.",
		Buckets: []float64{
			0.001, 0.002, 0.005,
			0.01, 0.02, 0.05,
			0.1, 0.2, 0.5,
			1, 2, 5,
		},
	}, []string{"method", "route", "result"})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			labels := []string{r.Method, routePattern(r), statusClass(ww.Status())}
			requests.WithLabelValues(labels...).Inc()
			latency.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
		})
	}
}

// routePattern returns the matched chi pattern, or "unmatched" for requests
// that never reached a route.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

func statusClass(status int) string {
	if status == 0 {
		status = http.StatusOK
	}
	return strconv.Itoa(status/100) + "xx"
}
