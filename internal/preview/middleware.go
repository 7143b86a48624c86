package preview

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/florentdestremau/florent.cc/internal/logfields"
)

// withRequestLogging logs each request and turns handler panics into a 500.
func withRequestLogging(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		defer func() {
			if err := recover(); err != nil {
				logger.Error("HTTP handler panic",
					slog.Any("error", err),
					logfields.Path(r.URL.Path),
					logfields.Method(r.Method))
				http.Error(wrapped, "internal server error", http.StatusInternalServerError)
			}
			logger.Debug("HTTP request",
				logfields.Method(r.Method),
				logfields.Path(r.URL.Path),
				logfields.Status(wrapped.statusCode),
				slog.Duration("duration", time.Since(start)))
		}()
		next.ServeHTTP(wrapped, r)
	})
}

// responseWriter captures status codes for logging.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
