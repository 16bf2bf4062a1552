package ceca

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taiwanleaftea/ceca-bank-payments/infra/config"
	"github.com/taiwanleaftea/ceca-bank-payments/order"
	"github.com/taiwanleaftea/ceca-bank-payments/provider"
)

func newTestDispatcher(store order.Store, cfg config.GatewayConfig) *Dispatcher {
	return NewDispatcher(
		NewVerifier(cfg),
		NewMachine(store, order.Status(cfg.OrderStatus)),
		order.NewKeyedMutex(),
		cfg.Environment,
		true,
	)
}

func TestDispatcher_CompletesThenIgnoresReplay(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	seedOrder(store, "500", 25)
	d := newTestDispatcher(store, testConfig())

	fields := signedCallback(testKey, "500", "2500", "REF123")

	token, err := d.Handle(ctx, fields)
	require.NoError(t, err)
	assert.Equal(t, provider.TokenSuccess, token)
	assert.Equal(t, "$*$OKY$*$", string(token))

	token, err = d.Handle(ctx, fields)
	require.NoError(t, err)
	assert.Equal(t, provider.TokenNone, token)
	assert.Equal(t, "", string(token))

	o, _ := store.Get(ctx, "500")
	assert.Equal(t, order.StatusProcessing, o.Status)
	assert.Len(t, o.Notes, 1)
}

func TestDispatcher_RejectsForgedCallback(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	seedOrder(store, "500", 25)
	d := newTestDispatcher(store, testConfig())

	fields := signedCallback("attacker-key", "500", "2500", "REF123")

	token, err := d.Handle(ctx, fields)
	assert.Equal(t, provider.TokenFailure, token)
	assert.Equal(t, "$*$NOK$*$", string(token))
	assert.Equal(t, ReasonSignatureMismatch, verificationReason(t, err).Reason)

	o, _ := store.Get(ctx, "500")
	assert.Equal(t, order.StatusFailed, o.Status)
	assert.False(t, o.IsPaid())
}

func TestDispatcher_ForgedCallbackDoesNotFailPaidOrder(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	seedOrder(store, "500", 25)
	d := newTestDispatcher(store, testConfig())

	token, err := d.Handle(ctx, signedCallback(testKey, "500", "2500", "REF123"))
	require.NoError(t, err)
	require.Equal(t, provider.TokenSuccess, token)

	token, err = d.Handle(ctx, signedCallback("attacker-key", "500", "2500", "REF999"))
	assert.Error(t, err)
	assert.Equal(t, provider.TokenFailure, token)

	o, _ := store.Get(ctx, "500")
	assert.Equal(t, order.StatusProcessing, o.Status)
	assert.Equal(t, "REF123", o.Reference)
}

func TestDispatcher_MissingSignatureWithoutOrder(t *testing.T) {
	store := newMockStore()
	d := newTestDispatcher(store, testConfig())

	token, err := d.Handle(context.Background(), map[string]string{})
	assert.Equal(t, provider.TokenFailure, token)
	assert.Equal(t, ReasonMissingSignature, verificationReason(t, err).Reason)
}

func TestDispatcher_RejectedCallbackForUnknownOrder(t *testing.T) {
	d := newTestDispatcher(newMockStore(), testConfig())

	fields := signedCallback(testKey, "404", "2500", "REF")
	fields["Referencia"] = ""

	token, err := d.Handle(context.Background(), fields)
	assert.Equal(t, provider.TokenFailure, token)
	assert.Equal(t, ReasonMissingField, verificationReason(t, err).Reason)
}

func TestDispatcher_UnknownOrder(t *testing.T) {
	d := newTestDispatcher(newMockStore(), testConfig())

	token, err := d.Handle(context.Background(), signedCallback(testKey, "404", "2500", "REF"))
	assert.Equal(t, provider.TokenFailure, token)

	var lookupErr *LookupError
	assert.True(t, errors.As(err, &lookupErr))
}

func TestDispatcher_StoreOutageAsksForRedelivery(t *testing.T) {
	store := newMockStore()
	seedOrder(store, "500", 25)
	store.markPaidFn = func(ctx context.Context, id, ref string) (bool, error) {
		return false, errors.New("disk I/O error")
	}
	d := newTestDispatcher(store, testConfig())

	token, err := d.Handle(context.Background(), signedCallback(testKey, "500", "2500", "REF"))
	assert.Equal(t, provider.TokenNone, token)

	var storeErr *StoreError
	require.True(t, errors.As(err, &storeErr))
	assert.True(t, provider.IsRetryable(token, err))

	o, _ := store.Get(context.Background(), "500")
	assert.Equal(t, order.StatusPending, o.Status)
}

func TestDispatcher_MissingKeyAsksForRedelivery(t *testing.T) {
	cfg := testConfig()
	cfg.Sandbox.EncryptionKey = ""
	store := newMockStore()
	seedOrder(store, "500", 25)
	d := newTestDispatcher(store, cfg)

	token, err := d.Handle(context.Background(), signedCallback(testKey, "500", "2500", "REF"))
	assert.Equal(t, provider.TokenNone, token)

	var cfgErr *ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))

	o, _ := store.Get(context.Background(), "500")
	assert.Equal(t, order.StatusPending, o.Status)
}

func TestDispatcher_ConcurrentDuplicatesCompleteOnce(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	seedOrder(store, "500", 25)

	var mu sync.Mutex
	markPaidCalls := 0
	store.markPaidFn = func(ctx context.Context, id, ref string) (bool, error) {
		mu.Lock()
		markPaidCalls++
		mu.Unlock()
		return store.MemoryStore.MarkPaid(ctx, id, ref)
	}

	d := newTestDispatcher(store, testConfig())
	fields := signedCallback(testKey, "500", "2500", "REF123")

	const deliveries = 16
	tokens := make(chan provider.ResponseToken, deliveries)
	var wg sync.WaitGroup
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, err := d.Handle(ctx, fields)
			assert.NoError(t, err)
			tokens <- token
		}()
	}
	wg.Wait()
	close(tokens)

	counts := map[provider.ResponseToken]int{}
	for tok := range tokens {
		counts[tok]++
	}

	assert.Equal(t, 1, counts[provider.TokenSuccess])
	assert.Equal(t, deliveries-1, counts[provider.TokenNone])
	assert.Equal(t, 1, markPaidCalls)

	o, _ := store.Get(ctx, "500")
	assert.Len(t, o.Notes, 1)
}
