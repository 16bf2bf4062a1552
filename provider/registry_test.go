package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatewayRegistry_Register(t *testing.T) {
	registry := NewGatewayRegistry()

	registry.Register("test-gateway", func(deps Dependencies) (PaymentGateway, error) {
		return &mockGateway{name: "test-gateway"}, nil
	})

	factory, err := registry.Get("test-gateway")
	assert.NoError(t, err)
	assert.NotNil(t, factory)

	g, err := registry.CreateGateway("test-gateway", Dependencies{})
	require.NoError(t, err)
	assert.Equal(t, "test-gateway", g.Name())
}

func TestGatewayRegistry_GetGatewayNames(t *testing.T) {
	registry := NewGatewayRegistry()
	assert.Empty(t, registry.GetGatewayNames())

	factory := func(deps Dependencies) (PaymentGateway, error) { return nil, nil }
	registry.Register("zeta", factory)
	registry.Register("alpha", factory)

	assert.Equal(t, []string{"alpha", "zeta"}, registry.GetGatewayNames())
}

func TestGatewayRegistry_Get_NotFound(t *testing.T) {
	registry := NewGatewayRegistry()

	factory, err := registry.Get("non-existent")
	assert.Error(t, err)
	assert.Nil(t, factory)
	assert.Contains(t, err.Error(), "is not registered")

	_, err = registry.CreateGateway("non-existent", Dependencies{})
	assert.Error(t, err)
}

func TestDefaultRegistry(t *testing.T) {
	Register("default-test", func(deps Dependencies) (PaymentGateway, error) {
		return &mockGateway{name: "default-test"}, nil
	})

	factory, err := Get("default-test")
	assert.NoError(t, err)
	assert.NotNil(t, factory)

	g, err := CreateGateway("default-test", Dependencies{})
	require.NoError(t, err)
	assert.Equal(t, "default-test", g.Name())
}
