package middle

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/taiwanleaftea/ceca-bank-payments/infra/response"
)

// AuthMiddleware validates bearer API key authentication
func AuthMiddleware(expectedAPIKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if expectedAPIKey == "" {
				response.Error(w, http.StatusInternalServerError, "API key not configured", nil)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Error(w, http.StatusUnauthorized, "Authorization header required", nil)
				return
			}

			if !strings.HasPrefix(authHeader, "Bearer ") {
				response.Error(w, http.StatusUnauthorized, "Invalid authorization format. Use: Bearer <api_key>", nil)
				return
			}

			apiKey := strings.TrimPrefix(authHeader, "Bearer ")
			if apiKey == "" {
				response.Error(w, http.StatusUnauthorized, "API key required", nil)
				return
			}

			if subtle.ConstantTimeCompare([]byte(apiKey), []byte(expectedAPIKey)) != 1 {
				response.Error(w, http.StatusUnauthorized, "Invalid API key", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
