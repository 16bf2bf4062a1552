package ceca

import (
	"context"

	"github.com/taiwanleaftea/ceca-bank-payments/infra/config"
	"github.com/taiwanleaftea/ceca-bank-payments/order"
)

const (
	testShopURL = "https://shop.example.com"
	testKey     = "secret"
)

func testConfig() config.GatewayConfig {
	return config.GatewayConfig{
		Enabled:     true,
		Environment: config.EnvSandbox,
		Sandbox: config.Credentials{
			AcquirerBIN:   "12345678",
			MerchantID:    "M1",
			TerminalID:    "00000003",
			EncryptionKey: testKey,
		},
		Production: config.Credentials{
			AcquirerBIN:   "87654321",
			MerchantID:    "P1",
			TerminalID:    "00000001",
			EncryptionKey: "production-secret",
		},
		DefaultCurrency: "978",
		DefaultLanguage: "6",
		OrderStatus:     string(order.StatusProcessing),
	}
}

// signedCallback returns webhook fields for orderID signed with key
func signedCallback(key, orderID, amount, reference string) map[string]string {
	fields := map[string]string{
		"MerchantID":    "M1",
		"AcquirerBIN":   "12345678",
		"TerminalID":    "00000003",
		"Num_operacion": orderID,
		"Importe":       amount,
		"TipoMoneda":    "978",
		"Exponente":     "2",
		"Referencia":    reference,
	}
	fields["Firma"] = Sign(key,
		fields["MerchantID"], fields["AcquirerBIN"], fields["TerminalID"], fields["Num_operacion"],
		fields["Importe"], fields["TipoMoneda"], fields["Exponente"], fields["Referencia"],
	)
	return fields
}

// mockStore delegates to an in-memory store unless a function field is set
type mockStore struct {
	*order.MemoryStore
	getFn          func(ctx context.Context, id string) (*order.Order, error)
	updateStatusFn func(ctx context.Context, id string, status order.Status, note string) error
	addNoteFn      func(ctx context.Context, id, note string) error
	markPaidFn     func(ctx context.Context, id, reference string) (bool, error)
}

func newMockStore() *mockStore {
	return &mockStore{MemoryStore: order.NewMemoryStore(testShopURL)}
}

func (m *mockStore) Get(ctx context.Context, id string) (*order.Order, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return m.MemoryStore.Get(ctx, id)
}

func (m *mockStore) UpdateStatus(ctx context.Context, id string, status order.Status, note string) error {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, id, status, note)
	}
	return m.MemoryStore.UpdateStatus(ctx, id, status, note)
}

func (m *mockStore) AddNote(ctx context.Context, id, note string) error {
	if m.addNoteFn != nil {
		return m.addNoteFn(ctx, id, note)
	}
	return m.MemoryStore.AddNote(ctx, id, note)
}

func (m *mockStore) MarkPaid(ctx context.Context, id, reference string) (bool, error) {
	if m.markPaidFn != nil {
		return m.markPaidFn(ctx, id, reference)
	}
	return m.MemoryStore.MarkPaid(ctx, id, reference)
}

func seedOrder(store order.Store, id string, total float64) {
	_ = store.Create(context.Background(), &order.Order{ID: id, Total: total, Currency: "EUR", Locale: "es_ES"})
}
