package model

import "time"

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"   // checkout session created; awaiting the provider webhook
	PaymentStatusSucceeded PaymentStatus = "succeeded" // confirmed by a payment.succeeded notification
	PaymentStatusCancelled PaymentStatus = "cancelled" // expired by the pending-payment sweep
)

// Payment records one checkout attempt against the external provider.
// Amount is stored in kopecks (integer minor units) to avoid float errors;
// the gateway client is responsible for fixed-point serialization.
type Payment struct {
	ID                string // UUID
	UserID            string
	PricingID         string
	ExternalPaymentID string // provider-side payment id; empty until the checkout session exists
	Amount            int64
	Title             string // resolved pricing title snapshot, shown to the payer and copied to the Purchase
	Status            PaymentStatus
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type PurchaseStatus string

const (
	PurchaseStatusPending   PurchaseStatus = "pending"
	PurchaseStatusCompleted PurchaseStatus = "completed"
	PurchaseStatusCancelled PurchaseStatus = "cancelled" // administrative side-channel only
)

// Purchase is the fulfilled transaction. Webhook-driven purchases carry the
// PaymentID of the payment that produced them; manual purchases do not.
type Purchase struct {
	ID        string // UUID
	UserID    string
	PricingID string
	PaymentID *string // UNIQUE when set: at most one purchase per payment
	Title     string
	Price     int64
	Status    PurchaseStatus
	CreatedAt time.Time
}
