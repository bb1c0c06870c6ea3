package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/DioGolang/fleettrack/pkg/logger"
)

// RequestLogger logs one line per request. Health and metrics probes are
// logged at debug level.
func RequestLogger(log logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			fields := []logger.Field{
				logger.String("method", r.Method),
				logger.String("path", r.URL.Path),
				logger.Int("status", ww.Status()),
				logger.Int("bytes", ww.BytesWritten()),
				logger.Duration("latency", time.Since(start)),
				logger.String("request_id", middleware.GetReqID(r.Context())),
			}
			switch {
			case isProbe(r.URL.Path):
				log.Debug(r.Context(), "http request processed", fields...)
			case ww.Status() >= http.StatusInternalServerError:
				log.Error(r.Context(), "http request failed", fields...)
			default:
				log.Info(r.Context(), "http request processed", fields...)
			}
		})
	}
}

func isProbe(path string) bool {
	return path == "/health" || path == "/metrics" || path == "/health/dependencies"
}
