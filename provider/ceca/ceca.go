// Package ceca integrates the CECA bank virtual POS: signed redirect forms at
// checkout and signed payment confirmations through a webhook.
package ceca

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/taiwanleaftea/ceca-bank-payments/infra/config"
	"github.com/taiwanleaftea/ceca-bank-payments/infra/logger"
	"github.com/taiwanleaftea/ceca-bank-payments/order"
	"github.com/taiwanleaftea/ceca-bank-payments/provider"
)

// Name is the registry name of the gateway
const Name = "ceca"

// Gateway implements provider.PaymentGateway for CECA
type Gateway struct {
	cfg        config.GatewayConfig
	store      order.Store
	signer     *Signer
	dispatcher *Dispatcher
}

// New builds a gateway. A nil locker falls back to an in-process keyed mutex.
func New(deps provider.Dependencies) (*Gateway, error) {
	cfg := deps.Config
	if !cfg.Environment.Valid() {
		return nil, &ConfigurationError{Environment: cfg.Environment}
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("ceca: order store is required")
	}

	locker := deps.Locker
	if locker == nil {
		locker = order.NewKeyedMutex()
	}

	if _, err := ResolveCredentials(cfg, cfg.Environment); err != nil && cfg.Enabled {
		logger.Warn("CECA gateway enabled without complete credentials", logger.LogContext{
			Provider: Name,
			Fields: map[string]any{
				"error": err.Error(),
			},
		})
	}
	if !contains(CurrencyCodes(), cfg.DefaultCurrency) {
		logger.Warn("Default currency is not in the gateway currency table", logger.LogContext{
			Provider: Name,
			Fields: map[string]any{
				"defaultCurrency": cfg.DefaultCurrency,
			},
		})
	}

	return &Gateway{
		cfg:    cfg,
		store:  deps.Store,
		signer: NewSigner(cfg, deps.Store),
		dispatcher: NewDispatcher(
			NewVerifier(cfg),
			NewMachine(deps.Store, order.Status(cfg.OrderStatus)),
			locker,
			cfg.Environment,
			cfg.Debug,
		),
	}, nil
}

// NewProvider is the registry factory
func NewProvider(deps provider.Dependencies) (provider.PaymentGateway, error) {
	return New(deps)
}

func (g *Gateway) Name() string { return Name }

func (g *Gateway) Enabled() bool { return g.cfg.Enabled }

// BuildRedirect signs the redirect form of o for the configured environment
func (g *Gateway) BuildRedirect(ctx context.Context, o *order.Order) (*provider.RedirectForm, error) {
	if !g.cfg.Enabled {
		return nil, fmt.Errorf("%w: %s", provider.ErrGatewayDisabled, Name)
	}

	if g.cfg.Debug {
		logger.Debug("Generate payment form", logger.LogContext{
			Provider: Name,
			Fields: map[string]any{
				"environment": g.cfg.Environment,
			},
		})
	}

	req, err := g.signer.BuildRedirectRequest(o, g.cfg.Environment)
	if err != nil {
		return nil, err
	}

	return &provider.RedirectForm{
		Action:    req.Action,
		Method:    http.MethodPost,
		Fields:    req.Fields(),
		Sandbox:   g.cfg.Environment == config.EnvSandbox,
		CancelURL: g.store.CancelURL(o),
		OrderID:   o.ID,
	}, nil
}

// HandleWebhook verifies and applies a payment confirmation
func (g *Gateway) HandleWebhook(ctx context.Context, fields map[string]string) (provider.ResponseToken, error) {
	return g.dispatcher.Handle(ctx, fields)
}

// Info returns the non-secret settings and the URL to register as the
// gateway's notification URL
func (g *Gateway) Info(baseURL string) provider.GatewayInfo {
	return provider.GatewayInfo{
		Name:        Name,
		Enabled:     g.cfg.Enabled,
		Environment: string(g.cfg.Environment),
		NotifyURL:   NotifyURL(baseURL),
		Settings:    g.cfg.Summary(),
	}
}

// NotifyURL is the webhook URL of the gateway under baseURL
func NotifyURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + "/v1/webhooks/" + Name
}
