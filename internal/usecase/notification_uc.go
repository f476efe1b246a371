package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/Vahe555123/busines/internal/domain/model"
	"github.com/Vahe555123/busines/internal/domain/ports/adapter"
	"github.com/Vahe555123/busines/internal/infra/metrics"
	"github.com/Vahe555123/busines/internal/infra/worker"
)

// Compile-time check
var _ NotificationUseCase = (*notificationUC)(nil)

// NotificationUseCase fans a completed purchase out to the buyer and the
// operations channel. All deliveries are best-effort; the purchase itself is
// already committed when any of this runs.
type NotificationUseCase interface {
	PurchaseCompleted(ctx context.Context, user *model.User, purchase *model.Purchase)
	ManualPurchase(ctx context.Context, user *model.User, purchase *model.Purchase)
}

type notificationUC struct {
	mailer      adapter.Mailer
	ops         adapter.OpsNotifier
	broadcaster adapter.Broadcaster
	pool        *worker.Pool

	retryAttempts int
	retryBackoff  time.Duration
	log           zerolog.Logger
}

func NewNotificationUseCase(
	mailer adapter.Mailer,
	ops adapter.OpsNotifier,
	broadcaster adapter.Broadcaster,
	pool *worker.Pool,
	retryAttempts int,
	retryBackoff time.Duration,
	log zerolog.Logger,
) *notificationUC {
	if retryAttempts <= 0 {
		retryAttempts = 3
	}
	if retryBackoff <= 0 {
		retryBackoff = 500 * time.Millisecond
	}
	return &notificationUC{
		mailer:        mailer,
		ops:           ops,
		broadcaster:   broadcaster,
		pool:          pool,
		retryAttempts: retryAttempts,
		retryBackoff:  retryBackoff,
		log:           log.With().Str("component", "notification_uc").Logger(),
	}
}

func (u *notificationUC) PurchaseCompleted(ctx context.Context, user *model.User, purchase *model.Purchase) {
	// Realtime push goes out immediately; connected clients see the purchase
	// without waiting for a poll cycle.
	var paymentID string
	if purchase.PaymentID != nil {
		paymentID = *purchase.PaymentID
	}
	u.broadcaster.Publish(user.ID, "payment_succeeded", map[string]any{
		"paymentId":  paymentID,
		"purchaseId": purchase.ID,
	})
	metrics.IncNotification("ws", "sent")

	u.submitEmail(user, purchase)
	u.submitOpsAlert(user, purchase)
}

func (u *notificationUC) ManualPurchase(ctx context.Context, user *model.User, purchase *model.Purchase) {
	u.submitEmail(user, purchase)
	u.submitOpsAlert(user, purchase)
}

func (u *notificationUC) submitEmail(user *model.User, purchase *model.Purchase) {
	err := u.pool.Submit(func(ctx context.Context) error {
		return u.withRetry(ctx, "email", purchase.ID, func(ctx context.Context) error {
			return u.mailer.SendPurchaseConfirmation(ctx, user.Email, user.Name, purchase.Title, purchase.Price)
		})
	})
	if err != nil {
		metrics.IncNotification("email", "failed")
		u.log.Error().Err(err).Str("purchase_id", purchase.ID).Msg("could not queue confirmation email")
	}
}

func (u *notificationUC) submitOpsAlert(user *model.User, purchase *model.Purchase) {
	note := adapter.PurchaseNote{
		UserEmail:    user.Email,
		UserName:     user.Name,
		ProductTitle: purchase.Title,
		Price:        purchase.Price,
		PurchaseID:   purchase.ID,
		CreatedAt:    purchase.CreatedAt,
	}
	err := u.pool.Submit(func(ctx context.Context) error {
		return u.withRetry(ctx, "telegram", purchase.ID, func(ctx context.Context) error {
			return u.ops.NotifyPurchase(ctx, note)
		})
	})
	if err != nil {
		metrics.IncNotification("telegram", "failed")
		u.log.Error().Err(err).Str("purchase_id", purchase.ID).Msg("could not queue ops alert")
	}
}

// withRetry runs fn up to retryAttempts times with doubling backoff.
func (u *notificationUC) withRetry(ctx context.Context, channel, purchaseID string, fn func(ctx context.Context) error) error {
	backoff := u.retryBackoff
	var err error
	for attempt := 1; attempt <= u.retryAttempts; attempt++ {
		if err = fn(ctx); err == nil {
			metrics.IncNotification(channel, "sent")
			return nil
		}
		u.log.Warn().Err(err).Str("channel", channel).Str("purchase_id", purchaseID).Int("attempt", attempt).Msg("notification delivery failed")
		if attempt == u.retryAttempts {
			break
		}
		select {
		case <-ctx.Done():
			metrics.IncNotification(channel, "failed")
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	metrics.IncNotification(channel, "failed")
	return err
}
