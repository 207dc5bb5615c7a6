package gateway

import (
	"fmt"
	"sync"
)

// Factory creates checkout gateway instances, caching one per type.
type Factory struct {
	paystackConfig PaystackConfig

	mu       sync.RWMutex
	gateways map[GatewayType]CheckoutGateway
}

// NewFactory creates a gateway factory.
func NewFactory(paystackConfig PaystackConfig) *Factory {
	return &Factory{
		paystackConfig: paystackConfig,
		gateways:       make(map[GatewayType]CheckoutGateway),
	}
}

// CreateGateway returns the gateway for the given type, constructing it on
// first use.
func (f *Factory) CreateGateway(gatewayType GatewayType) (CheckoutGateway, error) {
	f.mu.RLock()
	if gw, exists := f.gateways[gatewayType]; exists {
		f.mu.RUnlock()
		return gw, nil
	}
	f.mu.RUnlock()

	var gw CheckoutGateway
	var err error
	switch gatewayType {
	case GatewayPaystack:
		gw, err = NewPaystackGateway(f.paystackConfig)
	default:
		return nil, fmt.Errorf("unsupported gateway type: %s", gatewayType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s gateway: %w", gatewayType, err)
	}

	f.mu.Lock()
	f.gateways[gatewayType] = gw
	f.mu.Unlock()

	return gw, nil
}
