package repository

import (
	"context"
	"time"

	"github.com/Vahe555123/busines/internal/domain/model"
)

// -----------------------------
// Payments
// -----------------------------

type PaymentRepository interface {
	Save(ctx context.Context, tx Tx, p *model.Payment) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Payment, error)
	// FindByIDForUser scopes the lookup to the owning user (owner-only reads).
	FindByIDForUser(ctx context.Context, tx Tx, id, userID string) (*model.Payment, error)
	FindByExternalID(ctx context.Context, tx Tx, externalID string) (*model.Payment, error)
	SetExternalID(ctx context.Context, tx Tx, id, externalID string) error
	// UpdateStatusIfPending atomically flips the status only when the current
	// status is 'pending' and reports whether a row was affected. This is the
	// idempotency guard for webhook redelivery and the expiry sweep.
	UpdateStatusIfPending(ctx context.Context, tx Tx, id string, status model.PaymentStatus) (bool, error)
	ListPendingOlderThan(ctx context.Context, tx Tx, olderThan time.Time, limit int) ([]*model.Payment, error)
}

// -----------------------------
// Purchases
// -----------------------------

type PurchaseRepository interface {
	// Save inserts the purchase. When pu.PaymentID is set and another purchase
	// already references the same payment, Save returns domain.ErrAlreadyExists.
	Save(ctx context.Context, tx Tx, pu *model.Purchase) error
	FindByPaymentID(ctx context.Context, tx Tx, paymentID string) (*model.Purchase, error)
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.Purchase, error)
}
