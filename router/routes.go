package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/taiwanleaftea/ceca-bank-payments/handler"
	"github.com/taiwanleaftea/ceca-bank-payments/infra/middle"
	"github.com/taiwanleaftea/ceca-bank-payments/infra/response"
	v1 "github.com/taiwanleaftea/ceca-bank-payments/router/v1"
)

// Handlers served by the application
type Handlers struct {
	Payment *handler.PaymentHandler
	Logs    *handler.LogsHandler
	Health  *handler.HealthHandler
}

// Options configures the middleware stack
type Options struct {
	APIKey      string
	RateLimit   int
	IPWhitelist string
	// FormActions are the bank origins checkout pages may post to
	FormActions []string
	// Done stops background work such as rate limiter cleanup
	Done <-chan struct{}
}

// New builds the application router
func New(h Handlers, opts Options) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middle.RequestLoggingMiddleware())
	r.Use(middle.PanicRecoveryMiddleware())
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(middle.SecurityHeadersMiddleware(opts.FormActions...))
	r.Use(middle.RateLimitMiddleware(middle.NewRateLimiter(opts.RateLimit, opts.Done)))
	r.Use(middle.RequestValidationMiddleware())

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Origin", "X-Requested-With"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if h.Health != nil {
		r.Get("/health", h.Health.CheckHealth)
	}

	// Buyer facing checkout page (no auth required)
	r.Get("/checkout/{provider}/{orderID}", h.Payment.CheckoutPage)

	Routes(r, h, opts)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotFound, "Not Found", nil)
	})

	return r
}

// Routes mounts the versioned API
func Routes(r chi.Router, h Handlers, opts Options) {
	r.Route("/v1", func(r chi.Router) {
		v1.Routes(r, v1.Handlers{Payment: h.Payment, Logs: h.Logs},
			middle.IPWhitelistMiddleware(opts.IPWhitelist),
			middle.AuthMiddleware(opts.APIKey),
		)
	})
}
