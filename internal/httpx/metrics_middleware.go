package httpx

import (
	"net/http"
	"strconv"
	"time"

	"bookcatalog/internal/metrics"
)

// MetricsMiddleware records request counts and latencies labelled by the matched
// ServeMux pattern. It must wrap the mux directly so the pattern is visible after
// the call.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := wrap(w)

		next.ServeHTTP(rw, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rw.statusCode)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
