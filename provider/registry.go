package provider

import (
	"fmt"
	"sort"
	"sync"
)

// GatewayRegistry manages the gateway implementations compiled into the binary
type GatewayRegistry struct {
	factories map[string]GatewayFactory
	mu        sync.RWMutex
}

// NewGatewayRegistry creates a new gateway registry
func NewGatewayRegistry() *GatewayRegistry {
	return &GatewayRegistry{
		factories: make(map[string]GatewayFactory),
	}
}

// Register adds a gateway factory to the registry
func (r *GatewayRegistry) Register(name string, factory GatewayFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get retrieves a gateway factory by name
func (r *GatewayRegistry) Get(name string) (GatewayFactory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, exists := r.factories[name]
	if !exists {
		return nil, fmt.Errorf("payment gateway '%s' is not registered", name)
	}

	return factory, nil
}

// CreateGateway builds a gateway instance
func (r *GatewayRegistry) CreateGateway(name string, deps Dependencies) (PaymentGateway, error) {
	factory, err := r.Get(name)
	if err != nil {
		return nil, err
	}

	return factory(deps)
}

// GetGatewayNames returns the registered names in sorted order
func (r *GatewayRegistry) GetGatewayNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// DefaultRegistry is the global default gateway registry
var DefaultRegistry = NewGatewayRegistry()

// Register registers a gateway with the default registry
func Register(name string, factory GatewayFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get retrieves a gateway factory from the default registry
func Get(name string) (GatewayFactory, error) {
	return DefaultRegistry.Get(name)
}

// CreateGateway creates a gateway from the default registry
func CreateGateway(name string, deps Dependencies) (PaymentGateway, error) {
	return DefaultRegistry.CreateGateway(name, deps)
}
