package provider

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/taiwanleaftea/ceca-bank-payments/infra/logger"
	"github.com/taiwanleaftea/ceca-bank-payments/infra/opensearch"
	"github.com/taiwanleaftea/ceca-bank-payments/order"
)

var (
	ErrGatewayNotFound = errors.New("payment gateway not configured")
	ErrGatewayDisabled = errors.New("payment gateway disabled")
)

// Keys that never leave the process unmasked
var sensitiveFields = []string{"Firma"}

// AuditLogger records webhook deliveries
type AuditLogger interface {
	LogWebhook(ctx context.Context, entry opensearch.WebhookLog) error
}

// coded is implemented by gateway errors that carry a stable code
type coded interface {
	Code() string
}

// WebhookMeta describes the HTTP delivery of a webhook
type WebhookMeta struct {
	RequestID string
	ClientIP  string
}

// IsRetryable reports whether a webhook result asks the gateway to redeliver
func IsRetryable(token ResponseToken, err error) bool {
	return token == TokenNone && err != nil
}

// PaymentService routes checkouts and webhooks to the configured gateways
type PaymentService struct {
	gateways map[string]PaymentGateway
	store    order.Store
	audit    AuditLogger
	baseURL  string
}

// NewPaymentService creates a new payment service. audit may be nil.
func NewPaymentService(store order.Store, audit AuditLogger, baseURL string, gateways ...PaymentGateway) *PaymentService {
	s := &PaymentService{
		gateways: make(map[string]PaymentGateway, len(gateways)),
		store:    store,
		audit:    audit,
		baseURL:  baseURL,
	}
	for _, g := range gateways {
		s.gateways[g.Name()] = g
	}
	return s
}

// Gateway returns a configured gateway by name
func (s *PaymentService) Gateway(name string) (PaymentGateway, error) {
	g, ok := s.gateways[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGatewayNotFound, name)
	}
	return g, nil
}

// GatewayInfo describes one gateway
func (s *PaymentService) GatewayInfo(name string) (GatewayInfo, error) {
	g, err := s.Gateway(name)
	if err != nil {
		return GatewayInfo{}, err
	}
	return g.Info(s.baseURL), nil
}

// Gateways describes every configured gateway, sorted by name
func (s *PaymentService) Gateways() []GatewayInfo {
	infos := make([]GatewayInfo, 0, len(s.gateways))
	for _, g := range s.gateways {
		infos = append(infos, g.Info(s.baseURL))
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// Order loads an order
func (s *PaymentService) Order(ctx context.Context, orderID string) (*order.Order, error) {
	return s.store.Get(ctx, orderID)
}

// Checkout builds the signed redirect form of an order
func (s *PaymentService) Checkout(ctx context.Context, gatewayName, orderID string) (*RedirectForm, error) {
	g, err := s.Gateway(gatewayName)
	if err != nil {
		return nil, err
	}
	if !g.Enabled() {
		return nil, fmt.Errorf("%w: %s", ErrGatewayDisabled, gatewayName)
	}

	o, err := s.store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	form, err := g.BuildRedirect(ctx, o)
	if err != nil {
		logger.Warn("Failed to build redirect form", logger.LogContext{
			Provider: gatewayName,
			OrderID:  orderID,
			Fields: map[string]any{
				"error": err.Error(),
			},
		})
		return nil, err
	}

	logger.Info("Redirect form built", logger.LogContext{
		Provider: gatewayName,
		OrderID:  orderID,
		Fields: map[string]any{
			"sandbox": form.Sandbox,
		},
	})

	return form, nil
}

// HandleWebhook passes a webhook delivery to its gateway and audits the result
func (s *PaymentService) HandleWebhook(ctx context.Context, gatewayName string, fields map[string]string, meta WebhookMeta) (ResponseToken, error) {
	g, err := s.Gateway(gatewayName)
	if err != nil {
		return TokenFailure, err
	}

	startTime := time.Now()
	token, err := g.HandleWebhook(ctx, fields)
	processingMs := time.Since(startTime).Milliseconds()

	entry := opensearch.WebhookLog{
		Timestamp:        startTime,
		Provider:         gatewayName,
		Environment:      g.Info(s.baseURL).Environment,
		RequestID:        meta.RequestID,
		OrderID:          fields["Num_operacion"],
		ClientIP:         meta.ClientIP,
		Fields:           logger.Redact(fields, sensitiveFields...),
		Outcome:          outcome(token, err),
		Token:            string(token),
		StatusCode:       200,
		ProcessingTimeMs: processingMs,
	}

	if err != nil {
		entry.Error = opensearch.ErrorInfo{Code: errorCode(err), Message: err.Error()}
		if IsRetryable(token, err) {
			entry.StatusCode = 503
		}
	}

	s.recordAudit(ctx, entry)

	return token, err
}

func (s *PaymentService) recordAudit(ctx context.Context, entry opensearch.WebhookLog) {
	if s.audit == nil {
		return
	}

	if err := s.audit.LogWebhook(ctx, entry); err != nil {
		logger.Warn("Failed to audit webhook", logger.LogContext{
			Provider:  entry.Provider,
			OrderID:   entry.OrderID,
			RequestID: entry.RequestID,
			Fields: map[string]any{
				"error": err.Error(),
			},
		})
	}
}

func outcome(token ResponseToken, err error) string {
	switch {
	case token == TokenSuccess:
		return "completed"
	case token == TokenFailure:
		return "rejected"
	case err != nil:
		return "retry"
	default:
		return "ignored"
	}
}

func errorCode(err error) string {
	var c coded
	if errors.As(err, &c) {
		return c.Code()
	}
	return "INTERNAL"
}
