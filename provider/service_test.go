package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taiwanleaftea/ceca-bank-payments/infra/opensearch"
	"github.com/taiwanleaftea/ceca-bank-payments/order"
)

type mockGateway struct {
	name          string
	disabled      bool
	buildFn       func(ctx context.Context, o *order.Order) (*RedirectForm, error)
	handleFn      func(ctx context.Context, fields map[string]string) (ResponseToken, error)
	receivedOrder *order.Order
}

func (m *mockGateway) Name() string  { return m.name }
func (m *mockGateway) Enabled() bool { return !m.disabled }

func (m *mockGateway) BuildRedirect(ctx context.Context, o *order.Order) (*RedirectForm, error) {
	m.receivedOrder = o
	if m.buildFn != nil {
		return m.buildFn(ctx, o)
	}
	return &RedirectForm{Action: "https://bank.example.com", OrderID: o.ID}, nil
}

func (m *mockGateway) HandleWebhook(ctx context.Context, fields map[string]string) (ResponseToken, error) {
	if m.handleFn != nil {
		return m.handleFn(ctx, fields)
	}
	return TokenSuccess, nil
}

func (m *mockGateway) Info(baseURL string) GatewayInfo {
	return GatewayInfo{Name: m.name, Enabled: !m.disabled, Environment: "sandbox", NotifyURL: baseURL + "/v1/webhooks/" + m.name}
}

type mockAudit struct {
	entries []opensearch.WebhookLog
	err     error
}

func (m *mockAudit) LogWebhook(ctx context.Context, entry opensearch.WebhookLog) error {
	m.entries = append(m.entries, entry)
	return m.err
}

type codedErr struct{}

func (codedErr) Error() string { return "signature not valid" }
func (codedErr) Code() string  { return "VERIFICATION_signature-mismatch" }

func newTestService(gateways ...PaymentGateway) (*PaymentService, *order.MemoryStore, *mockAudit) {
	store := order.NewMemoryStore("https://shop.example.com")
	audit := &mockAudit{}
	return NewPaymentService(store, audit, "https://pay.example.com", gateways...), store, audit
}

func TestPaymentService_Gateway(t *testing.T) {
	s, _, _ := newTestService(&mockGateway{name: "ceca"})

	g, err := s.Gateway("ceca")
	require.NoError(t, err)
	assert.Equal(t, "ceca", g.Name())

	_, err = s.Gateway("other")
	assert.ErrorIs(t, err, ErrGatewayNotFound)
}

func TestPaymentService_Gateways(t *testing.T) {
	s, _, _ := newTestService(&mockGateway{name: "zeta"}, &mockGateway{name: "alpha"})

	infos := s.Gateways()
	require.Len(t, infos, 2)
	assert.Equal(t, "alpha", infos[0].Name)

	info, err := s.GatewayInfo("zeta")
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/v1/webhooks/zeta", info.NotifyURL)

	_, err = s.GatewayInfo("missing")
	assert.ErrorIs(t, err, ErrGatewayNotFound)
}

func TestPaymentService_Checkout(t *testing.T) {
	ctx := context.Background()
	g := &mockGateway{name: "ceca"}
	s, store, _ := newTestService(g)
	require.NoError(t, store.Create(ctx, &order.Order{ID: "500", Total: 25, Currency: "EUR"}))

	form, err := s.Checkout(ctx, "ceca", "500")
	require.NoError(t, err)
	assert.Equal(t, "500", form.OrderID)
	assert.Equal(t, 25.0, g.receivedOrder.Total)

	_, err = s.Checkout(ctx, "ceca", "404")
	assert.ErrorIs(t, err, order.ErrNotFound)

	_, err = s.Checkout(ctx, "missing", "500")
	assert.ErrorIs(t, err, ErrGatewayNotFound)
}

func TestPaymentService_CheckoutErrors(t *testing.T) {
	ctx := context.Background()
	buildErr := errors.New("credentials missing")
	s, store, _ := newTestService(
		&mockGateway{name: "off", disabled: true},
		&mockGateway{name: "broken", buildFn: func(ctx context.Context, o *order.Order) (*RedirectForm, error) { return nil, buildErr }},
	)
	require.NoError(t, store.Create(ctx, &order.Order{ID: "1", Currency: "EUR"}))

	_, err := s.Checkout(ctx, "off", "1")
	assert.ErrorIs(t, err, ErrGatewayDisabled)

	_, err = s.Checkout(ctx, "broken", "1")
	assert.ErrorIs(t, err, buildErr)
}

func TestPaymentService_HandleWebhookAudits(t *testing.T) {
	s, _, audit := newTestService(&mockGateway{name: "ceca"})

	token, err := s.HandleWebhook(context.Background(), "ceca", map[string]string{
		"Num_operacion": "500",
		"Firma":         "deadbeef",
	}, WebhookMeta{RequestID: "req-1", ClientIP: "10.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, TokenSuccess, token)

	require.Len(t, audit.entries, 1)
	entry := audit.entries[0]
	assert.Equal(t, "ceca", entry.Provider)
	assert.Equal(t, "500", entry.OrderID)
	assert.Equal(t, "req-1", entry.RequestID)
	assert.Equal(t, "10.0.0.1", entry.ClientIP)
	assert.Equal(t, "completed", entry.Outcome)
	assert.Equal(t, "$*$OKY$*$", entry.Token)
	assert.Equal(t, 200, entry.StatusCode)
	assert.Equal(t, "[REDACTED]", entry.Fields["Firma"])
	assert.Equal(t, "sandbox", entry.Environment)
}

func TestPaymentService_HandleWebhookOutcomes(t *testing.T) {
	tests := []struct {
		name       string
		token      ResponseToken
		err        error
		outcome    string
		statusCode int
		code       string
	}{
		{"rejected", TokenFailure, codedErr{}, "rejected", 200, "VERIFICATION_signature-mismatch"},
		{"replay", TokenNone, nil, "ignored", 200, ""},
		{"retry", TokenNone, errors.New("database is locked"), "retry", 503, "INTERNAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &mockGateway{name: "ceca", handleFn: func(ctx context.Context, fields map[string]string) (ResponseToken, error) {
				return tt.token, tt.err
			}}
			s, _, audit := newTestService(g)

			token, err := s.HandleWebhook(context.Background(), "ceca", map[string]string{}, WebhookMeta{})
			assert.Equal(t, tt.token, token)
			assert.Equal(t, tt.err, err)

			require.Len(t, audit.entries, 1)
			assert.Equal(t, tt.outcome, audit.entries[0].Outcome)
			assert.Equal(t, tt.statusCode, audit.entries[0].StatusCode)
			assert.Equal(t, tt.code, audit.entries[0].Error.Code)
		})
	}
}

func TestPaymentService_HandleWebhookUnknownGateway(t *testing.T) {
	s, _, audit := newTestService()

	token, err := s.HandleWebhook(context.Background(), "ceca", map[string]string{}, WebhookMeta{})
	assert.Equal(t, TokenFailure, token)
	assert.ErrorIs(t, err, ErrGatewayNotFound)
	assert.Empty(t, audit.entries)
}

func TestPaymentService_AuditFailureDoesNotChangeResult(t *testing.T) {
	store := order.NewMemoryStore("")
	audit := &mockAudit{err: errors.New("opensearch down")}
	s := NewPaymentService(store, audit, "", &mockGateway{name: "ceca"})

	token, err := s.HandleWebhook(context.Background(), "ceca", map[string]string{}, WebhookMeta{})
	assert.NoError(t, err)
	assert.Equal(t, TokenSuccess, token)
}

func TestRedirectForm_Value(t *testing.T) {
	form := &RedirectForm{Fields: []FormField{{Name: "Importe", Value: "2500"}}}
	assert.Equal(t, "2500", form.Value("Importe"))
	assert.Equal(t, "", form.Value("Firma"))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(TokenNone, errors.New("x")))
	assert.False(t, IsRetryable(TokenNone, nil))
	assert.False(t, IsRetryable(TokenFailure, errors.New("x")))
}
