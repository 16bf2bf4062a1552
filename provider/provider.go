package provider

import (
	"context"

	"github.com/taiwanleaftea/ceca-bank-payments/infra/config"
	"github.com/taiwanleaftea/ceca-bank-payments/order"
)

// ResponseToken is the literal body answered to a gateway webhook
type ResponseToken string

const (
	TokenSuccess ResponseToken = "$*$OKY$*$"
	TokenFailure ResponseToken = "$*$NOK$*$"
	// TokenNone is an empty body; the gateway treats it as neither accepted nor rejected
	TokenNone ResponseToken = ""
)

// FormField is one hidden input of a redirect form. Order matters for some banks.
type FormField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// RedirectForm is the signed form the buyer's browser posts to the bank
type RedirectForm struct {
	Action    string      `json:"action"`
	Method    string      `json:"method"`
	Fields    []FormField `json:"fields"`
	Sandbox   bool        `json:"sandbox"`
	CancelURL string      `json:"cancelUrl"`
	OrderID   string      `json:"orderId"`
}

// Value returns the value of the named field
func (f *RedirectForm) Value(name string) string {
	for _, field := range f.Fields {
		if field.Name == name {
			return field.Value
		}
	}
	return ""
}

// GatewayInfo is the non-secret description of a configured gateway
type GatewayInfo struct {
	Name        string         `json:"name"`
	Enabled     bool           `json:"enabled"`
	Environment string         `json:"environment"`
	NotifyURL   string         `json:"notifyUrl"`
	Settings    map[string]any `json:"settings"`
}

// PaymentGateway is a redirect-form card gateway that confirms payments through webhooks
type PaymentGateway interface {
	// Name is the registry name, also used in routes
	Name() string

	// Enabled reports whether the gateway accepts new checkouts
	Enabled() bool

	// BuildRedirect signs the redirect form for an order
	BuildRedirect(ctx context.Context, o *order.Order) (*RedirectForm, error)

	// HandleWebhook verifies a confirmation delivery, applies it to the order
	// and returns the token to answer with. A non-nil error with TokenNone
	// means the delivery should be retried by the gateway.
	HandleWebhook(ctx context.Context, fields map[string]string) (ResponseToken, error)

	// Info describes the gateway for operators. baseURL is the public URL of this service.
	Info(baseURL string) GatewayInfo
}

// Dependencies are handed to every gateway factory
type Dependencies struct {
	Config config.GatewayConfig
	Store  order.Store
	Locker order.Locker
}

// GatewayFactory builds a gateway from its dependencies
type GatewayFactory func(deps Dependencies) (PaymentGateway, error)
