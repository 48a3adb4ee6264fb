package middleware

import (
	"net/http"
	"time"

	"github.com/JonMunkholm/xbrlmap/internal/metrics"
)

// Metrics records request counts and latency per route pattern. Labelling
// by pattern rather than path keeps concept names out of label values.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(ww, r)

			m.RecordRequest(routePattern(r), ww.status, time.Since(start))
		})
	}
}
