package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Vahe555123/busines/internal/domain"
	"github.com/Vahe555123/busines/internal/domain/model"
	"github.com/Vahe555123/busines/internal/domain/ports/repository"
	"github.com/Vahe555123/busines/internal/infra/metrics"
)

// Compile-time check
var _ PurchaseUseCase = (*purchaseUC)(nil)

type PurchaseUseCase interface {
	// CreateManual records a purchase without a backing payment, e.g. one
	// arranged over the phone. Admin only; enforced by the caller.
	CreateManual(ctx context.Context, userID, pricingID string) (*model.Purchase, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Purchase, error)
}

type purchaseUC struct {
	purchases repository.PurchaseRepository
	pricing   repository.PricingRepository
	users     repository.UserRepository
	notifier  NotificationUseCase
	log       zerolog.Logger
}

func NewPurchaseUseCase(
	purchases repository.PurchaseRepository,
	pricing repository.PricingRepository,
	users repository.UserRepository,
	notifier NotificationUseCase,
	log zerolog.Logger,
) *purchaseUC {
	return &purchaseUC{
		purchases: purchases,
		pricing:   pricing,
		users:     users,
		notifier:  notifier,
		log:       log.With().Str("component", "purchase_uc").Logger(),
	}
}

func (u *purchaseUC) CreateManual(ctx context.Context, userID, pricingID string) (*model.Purchase, error) {
	if userID == "" || pricingID == "" {
		return nil, domain.ErrInvalidArgument
	}

	user, err := u.users.FindByID(ctx, repository.NoTX, userID)
	if err != nil {
		return nil, err
	}
	pricing, err := u.pricing.FindByID(ctx, repository.NoTX, pricingID)
	if err != nil {
		return nil, err
	}

	purchase := &model.Purchase{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		PricingID: pricing.ID,
		Title:     pricing.DisplayTitle(),
		Price:     pricing.Price,
		Status:    model.PurchaseStatusCompleted,
		CreatedAt: time.Now(),
	}
	if err := u.purchases.Save(ctx, repository.NoTX, purchase); err != nil {
		return nil, err
	}

	metrics.IncPurchase("manual")
	u.log.Info().Str("purchase_id", purchase.ID).Str("user_id", user.ID).Msg("manual purchase recorded")

	u.notifier.ManualPurchase(ctx, user, purchase)
	return purchase, nil
}

func (u *purchaseUC) ListByUser(ctx context.Context, userID string) ([]*model.Purchase, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	return u.purchases.ListByUser(ctx, repository.NoTX, userID)
}
