package middle

import (
	"net/http"
	"strings"

	"github.com/taiwanleaftea/ceca-bank-payments/infra/response"
)

// SecurityHeadersMiddleware adds security headers to responses. formActions
// are the external origins the checkout page may post to.
func SecurityHeadersMiddleware(formActions ...string) func(http.Handler) http.Handler {
	csp := "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; form-action 'self'"
	if len(formActions) > 0 {
		csp += " " + strings.Join(formActions, " ")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("X-XSS-Protection", "1; mode=block")
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			w.Header().Set("Content-Security-Policy", csp)
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			next.ServeHTTP(w, r)
		})
	}
}

// IPWhitelistMiddleware restricts access to a comma separated list of IPs.
// An empty whitelist allows everyone.
func IPWhitelistMiddleware(whitelist string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool)
	for _, ip := range strings.Split(whitelist, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			allowed[ip] = true
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(allowed) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			if !allowed[GetClientIP(r)] {
				response.Error(w, http.StatusForbidden, "IP not whitelisted", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequestValidationMiddleware validates common request properties
func RequestValidationMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
				contentType := r.Header.Get("Content-Type")

				// banks post webhooks form-urlencoded
				isWebhookEndpoint := strings.HasPrefix(r.URL.Path, "/v1/webhooks")

				if contentType != "" {
					if isWebhookEndpoint {
						if !strings.Contains(contentType, "application/x-www-form-urlencoded") &&
							!strings.Contains(contentType, "multipart/form-data") {
							response.Error(w, http.StatusUnsupportedMediaType, "Content-Type must be application/x-www-form-urlencoded", nil)
							return
						}
					} else if !strings.Contains(contentType, "application/json") {
						response.Error(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json", nil)
						return
					}
				} else if !isWebhookEndpoint {
					response.Error(w, http.StatusBadRequest, "Content-Type header is required", nil)
					return
				}
			}

			// max 1MB, webhooks are a handful of fields
			if r.ContentLength > 1024*1024 {
				response.Error(w, http.StatusRequestEntityTooLarge, "Request body too large", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
