package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/roamdigital/explainer/internal/metrics"
)

// observeRoute records one request against ExplainRequestsTotal/
// ExplainRequestDuration, keyed by the chi route pattern rather than the
// raw path so templated segments don't blow up cardinality.
func observeRoute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = r.URL.Path
		}
		metrics.ExplainRequestsTotal.WithLabelValues(route).Inc()
		metrics.ExplainRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
