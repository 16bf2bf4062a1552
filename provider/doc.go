// Package provider defines the redirect-form payment gateway abstraction and
// the service that routes checkouts and webhooks to configured gateways.
//
// # Core Concepts
//
//   - PaymentGateway: implemented by every bank integration
//   - RedirectForm: the signed form the buyer's browser posts to the bank
//   - ResponseToken: the literal body a webhook is answered with
//   - GatewayRegistry: gateways register a factory by name in init()
//   - PaymentService: resolves gateways, builds checkouts, audits webhooks
//
// # Basic Usage
//
//	import _ "github.com/taiwanleaftea/ceca-bank-payments/provider/ceca" // registers "ceca"
//
//	cfg, err := config.LoadGatewayConfig()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := order.NewMemoryStore("https://shop.example.com")
//	gateway, err := provider.CreateGateway("ceca", provider.Dependencies{
//	    Config: cfg,
//	    Store:  store,
//	    Locker: order.NewKeyedMutex(),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	service := provider.NewPaymentService(store, nil, "https://pay.example.com", gateway)
//
//	// checkout: render the returned form in the buyer's browser
//	form, err := service.Checkout(ctx, "ceca", "500")
//
//	// webhook: answer the bank with the token
//	token, err := service.HandleWebhook(ctx, "ceca", fields, provider.WebhookMeta{})
//	if provider.IsRetryable(token, err) {
//	    // answer 503 so the bank redelivers
//	}
//
// # Webhook Tokens
//
// TokenSuccess and TokenFailure are the bank's accepted and rejected answers.
// TokenNone is an empty body, used for replays of an already paid order and,
// together with an error, for deliveries that must be retried.
//
// # Auditing
//
// When an AuditLogger is configured every webhook delivery is recorded with
// its redacted fields, outcome, answered token and processing time.
//
// # Thread Safety
//
// PaymentService and the registry are safe for concurrent use. Gateways
// serialise deliveries for the same order themselves.
package provider
