package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/DioGolang/fleettrack/pkg/metrics"
)

// statusStrings caches the label for every valid status code.
var statusStrings [600]string

func init() {
	for i := 100; i < 600; i++ {
		statusStrings[i] = strconv.Itoa(i)
	}
}

func statusLabel(code int) string {
	if code >= 100 && code < 600 {
		return statusStrings[code]
	}
	return strconv.Itoa(code)
}

// MetricsWrapper observes request latency labelled by the chi route pattern,
// so /current-region/{driver_id} stays one series.
func MetricsWrapper(m metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				route := "unknown"
				if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
					route = rctx.RoutePattern()
				}
				m.ObserveHTTPRequestDuration(r.Method, route, statusLabel(ww.Status()), time.Since(start).Seconds())
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
