package adapter

import "context"

// Checkout is the provider-hosted payment session created for a payment
// attempt. ConfirmationURL is where the payer is redirected to complete it.
type Checkout struct {
	ExternalID      string
	Status          string
	ConfirmationURL string
}

// PaymentGateway is the hex port for the external payment provider.
type PaymentGateway interface {
	Name() string

	// Configured reports whether provider credentials are present. Checkout
	// fails fast with ErrGatewayUnconfigured before persisting anything when
	// they are not.
	Configured() bool

	// CreateCheckout creates a hosted payment session for the given amount in
	// minor units. idempotenceKey must be unique per attempt so a retried
	// request cannot create a second charge. The call is not retried here;
	// the caller decides.
	CreateCheckout(ctx context.Context, amount int64, returnURL, description, idempotenceKey string) (Checkout, error)
}
