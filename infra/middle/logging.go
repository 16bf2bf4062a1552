package middle

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/taiwanleaftea/ceca-bank-payments/infra/logger"
)

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	bytes       int
	wroteHeader bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += n
	return n, err
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if rw.wroteHeader {
		return
	}
	rw.wroteHeader = true
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

// RequestLoggingMiddleware logs every request with its status and duration.
// Bodies are never logged because webhook posts carry signatures.
func RequestLoggingMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rw := newResponseWriter(w)

			next.ServeHTTP(rw, r)

			ctx := logger.LogContext{
				Provider:  extractProviderFromURL(r.URL.Path),
				RequestID: middleware.GetReqID(r.Context()),
				Fields: map[string]any{
					"method":      r.Method,
					"path":        r.URL.Path,
					"status":      rw.statusCode,
					"bytes":       rw.bytes,
					"duration_ms": time.Since(start).Milliseconds(),
					"client_ip":   GetClientIP(r),
				},
			}

			switch {
			case rw.statusCode >= 500:
				logger.Warn("Request failed", ctx)
			case rw.statusCode >= 400:
				logger.Info("Request rejected", ctx)
			default:
				logger.Debug("Request served", ctx)
			}
		})
	}
}

// extractProviderFromURL returns the gateway segment of webhook, payment and
// checkout paths
func extractProviderFromURL(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")

	for i, part := range parts {
		if (part == "webhooks" || part == "payments" || part == "checkout" || part == "gateways") && i+1 < len(parts) {
			return parts[i+1]
		}
	}

	return "http"
}
