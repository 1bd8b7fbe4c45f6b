package middleware

import (
	"net/http"
	"time"

	logpkg "github.com/MysticyDev/OproepBot/internal/logger"
	"github.com/MysticyDev/OproepBot/internal/request"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Logging creates request logging middleware. Each request gets a generated
// id so its pipeline log lines can be correlated.
func Logging(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := uuid.NewString()
			w.Header().Set("X-Request-ID", requestID)

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			duration := time.Since(start)
			fields := []zap.Field{
				zap.String("request_id", requestID),
				zap.String("method", r.Method),
				zap.String("path", logpkg.SanitizePath(r.URL.Path)),
				zap.Int("status_code", wrapped.statusCode),
				zap.Int64("duration_ms", duration.Milliseconds()),
			}
			if actor := request.ActorFromContext(r); actor != "" {
				fields = append(fields, zap.String("relay_actor", logpkg.SanitizeUserID(actor)))
			}
			logger.Info("http_request", fields...)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
