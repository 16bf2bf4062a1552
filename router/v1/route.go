package v1

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/taiwanleaftea/ceca-bank-payments/handler"
)

// Handlers served under /v1
type Handlers struct {
	Payment *handler.PaymentHandler
	Logs    *handler.LogsHandler
}

// Routes registers all API routes. Webhooks are public because banks cannot
// authenticate; everything else runs behind the auth middlewares.
func Routes(r chi.Router, h Handlers, auth ...func(http.Handler) http.Handler) {
	// Webhook routes for payment notifications
	r.Post("/webhooks/{provider}", h.Payment.HandleWebhook)

	r.Group(func(r chi.Router) {
		r.Use(auth...)

		r.Route("/payments", func(r chi.Router) {
			r.Get("/{provider}/{orderID}/redirect", h.Payment.GetRedirectForm)
		})

		r.Get("/orders/{orderID}", h.Payment.GetOrder)

		r.Route("/gateways", func(r chi.Router) {
			r.Get("/", h.Payment.ListGateways)
			r.Get("/{provider}", h.Payment.GetGateway)
		})

		if h.Logs != nil {
			r.Route("/logs/{provider}", func(r chi.Router) {
				r.Get("/rejections", h.Logs.GetRejections)
				r.Get("/orders/{orderID}", h.Logs.GetOrderLogs)
			})
		}
	})
}
