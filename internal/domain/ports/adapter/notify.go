package adapter

import (
	"context"
	"time"
)

// Mailer sends transactional email to site users.
type Mailer interface {
	SendPurchaseConfirmation(ctx context.Context, to, userName, productTitle string, price int64) error
}

// PurchaseNote is what the ops channel sees for every completed purchase.
type PurchaseNote struct {
	UserEmail    string
	UserName     string
	ProductTitle string
	Price        int64
	PurchaseID   string
	CreatedAt    time.Time
}

// OpsNotifier posts operational notifications to the internal chat channel.
type OpsNotifier interface {
	NotifyPurchase(ctx context.Context, n PurchaseNote) error
}

// Broadcaster pushes events to a user's currently connected realtime
// sessions. Delivery is fire-and-forget: with no open connection the event is
// dropped and the client falls back to polling.
type Broadcaster interface {
	Publish(userID, event string, data any)
}
