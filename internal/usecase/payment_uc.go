package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"github.com/Vahe555123/busines/internal/domain"
	"github.com/Vahe555123/busines/internal/domain/model"
	"github.com/Vahe555123/busines/internal/domain/ports/adapter"
	"github.com/Vahe555123/busines/internal/domain/ports/repository"
	"github.com/Vahe555123/busines/internal/infra/metrics"
)

// Compile-time check
var _ PaymentUseCase = (*paymentUC)(nil)

type PaymentUseCase interface {
	// Checkout creates a pending payment for a pricing plan and returns it
	// together with the provider URL the buyer must be redirected to.
	Checkout(ctx context.Context, userID, pricingID string) (*model.Payment, string, error)
	// Status returns the payment only to its owner.
	Status(ctx context.Context, userID, paymentID string) (*model.Payment, error)
	// HandleGatewayEvent processes one provider webhook delivery. Redeliveries
	// and events for unknown payments are absorbed without error.
	HandleGatewayEvent(ctx context.Context, event, externalID string) error
	// ExpireStalePending cancels pending payments older than the TTL and
	// returns how many were cancelled.
	ExpireStalePending(ctx context.Context, olderThan time.Time) (int, error)
}

const eventPaymentSucceeded = "payment.succeeded"

type paymentUC struct {
	payments  repository.PaymentRepository
	purchases repository.PurchaseRepository
	pricing   repository.PricingRepository
	users     repository.UserRepository
	gateway   adapter.PaymentGateway
	tm        repository.TransactionManager
	notifier  NotificationUseCase

	frontendURL string
	log         zerolog.Logger
}

func NewPaymentUseCase(
	payments repository.PaymentRepository,
	purchases repository.PurchaseRepository,
	pricing repository.PricingRepository,
	users repository.UserRepository,
	gateway adapter.PaymentGateway,
	tm repository.TransactionManager,
	notifier NotificationUseCase,
	frontendURL string,
	log zerolog.Logger,
) *paymentUC {
	return &paymentUC{
		payments:    payments,
		purchases:   purchases,
		pricing:     pricing,
		users:       users,
		gateway:     gateway,
		tm:          tm,
		notifier:    notifier,
		frontendURL: frontendURL,
		log:         log.With().Str("component", "payment_uc").Logger(),
	}
}

func (u *paymentUC) Checkout(ctx context.Context, userID, pricingID string) (*model.Payment, string, error) {
	if userID == "" || pricingID == "" {
		return nil, "", domain.ErrInvalidArgument
	}
	// Refuse before persisting anything; an unconfigured provider must not
	// leave orphan pending rows behind.
	if !u.gateway.Configured() {
		return nil, "", domain.ErrGatewayUnconfigured
	}

	pricing, err := u.pricing.FindByID(ctx, repository.NoTX, pricingID)
	if err != nil {
		return nil, "", err
	}

	now := time.Now()
	p := &model.Payment{
		ID:        uuid.NewString(),
		UserID:    userID,
		PricingID: pricing.ID,
		Amount:    pricing.Price,
		Title:     pricing.DisplayTitle(),
		Status:    model.PaymentStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.payments.Save(ctx, repository.NoTX, p); err != nil {
		return nil, "", err
	}

	returnURL := fmt.Sprintf("%s/payment/return?paymentId=%s", u.frontendURL, p.ID)
	// The payment id doubles as the idempotence key: retrying the same
	// checkout cannot create a second charge at the provider.
	checkout, err := u.gateway.CreateCheckout(ctx, p.Amount, returnURL, p.Title, p.ID)
	if err != nil {
		return nil, "", err
	}

	if err := u.payments.SetExternalID(ctx, repository.NoTX, p.ID, checkout.ExternalID); err != nil {
		return nil, "", err
	}
	p.ExternalPaymentID = checkout.ExternalID

	metrics.IncPayment(string(model.PaymentStatusPending))
	u.log.Info().Str("payment_id", p.ID).Str("external_id", checkout.ExternalID).Int64("amount", p.Amount).Msg("checkout created")
	return p, checkout.ConfirmationURL, nil
}

func (u *paymentUC) Status(ctx context.Context, userID, paymentID string) (*model.Payment, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	if paymentID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return u.payments.FindByIDForUser(ctx, repository.NoTX, paymentID, userID)
}

func (u *paymentUC) HandleGatewayEvent(ctx context.Context, event, externalID string) error {
	if event != eventPaymentSucceeded {
		metrics.IncWebhookEvent("ignored")
		u.log.Debug().Str("event", event).Msg("ignoring gateway event")
		return nil
	}
	if externalID == "" {
		metrics.IncWebhookEvent("ignored")
		return nil
	}

	p, err := u.payments.FindByExternalID(ctx, repository.NoTX, externalID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.IncWebhookEvent("ignored")
			u.log.Warn().Str("external_id", externalID).Msg("gateway event for unknown payment")
			return nil
		}
		metrics.IncWebhookEvent("error")
		return err
	}

	var purchase *model.Purchase
	duplicate := false
	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		updated, err := u.payments.UpdateStatusIfPending(ctx, tx, p.ID, model.PaymentStatusSucceeded)
		if err != nil {
			return err
		}
		if !updated {
			// Replayed delivery; the first one already materialized the purchase.
			duplicate = true
			return nil
		}

		purchase = &model.Purchase{
			ID:        uuid.NewString(),
			UserID:    p.UserID,
			PricingID: p.PricingID,
			PaymentID: &p.ID,
			Title:     p.Title,
			Price:     p.Amount,
			Status:    model.PurchaseStatusCompleted,
			CreatedAt: time.Now(),
		}
		if err := u.purchases.Save(ctx, tx, purchase); err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				duplicate = true
				purchase = nil
				return nil
			}
			return err
		}
		return nil
	})
	if err != nil {
		metrics.IncWebhookEvent("error")
		return err
	}
	if duplicate {
		metrics.IncWebhookEvent("duplicate")
		u.log.Info().Str("payment_id", p.ID).Msg("gateway event replay absorbed")
		return nil
	}

	metrics.IncWebhookEvent("processed")
	metrics.IncPayment(string(model.PaymentStatusSucceeded))
	metrics.AddPaymentRevenue("rub", p.Amount)
	metrics.IncPurchase("gateway")
	u.log.Info().Str("payment_id", p.ID).Str("purchase_id", purchase.ID).Msg("payment succeeded, purchase materialized")

	// Fan-out happens after the transaction commits; a notification failure
	// must not roll back the purchase.
	user, err := u.users.FindByID(ctx, repository.NoTX, p.UserID)
	if err != nil {
		u.log.Error().Err(err).Str("user_id", p.UserID).Msg("cannot load buyer for notifications")
		return nil
	}
	u.notifier.PurchaseCompleted(ctx, user, purchase)
	return nil
}

func (u *paymentUC) ExpireStalePending(ctx context.Context, olderThan time.Time) (int, error) {
	stale, err := u.payments.ListPendingOlderThan(ctx, repository.NoTX, olderThan, 100)
	if err != nil {
		return 0, err
	}

	cancelled := 0
	for _, p := range stale {
		updated, err := u.payments.UpdateStatusIfPending(ctx, repository.NoTX, p.ID, model.PaymentStatusCancelled)
		if err != nil {
			u.log.Error().Err(err).Str("payment_id", p.ID).Msg("failed to cancel stale payment")
			continue
		}
		if updated {
			cancelled++
			metrics.IncPayment(string(model.PaymentStatusCancelled))
			u.log.Info().Str("payment_id", p.ID).Msg("stale pending payment cancelled")
		}
	}
	return cancelled, nil
}
