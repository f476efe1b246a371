package payment

import (
	"context"

	"github.com/Vahe555123/busines/internal/domain"
	"github.com/Vahe555123/busines/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*NoopGateway)(nil)

// NoopGateway stands in when no shop credentials are configured. Checkout
// attempts fail fast instead of hitting the provider with empty auth.
type NoopGateway struct{}

func NewNoopGateway() *NoopGateway { return &NoopGateway{} }

func (NoopGateway) Name() string { return "noop" }

func (NoopGateway) Configured() bool { return false }

func (NoopGateway) CreateCheckout(ctx context.Context, amount int64, returnURL, description, idempotenceKey string) (adapter.Checkout, error) {
	return adapter.Checkout{}, domain.ErrGatewayUnconfigured
}
