package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Vahe555123/busines/internal/domain/model"
	"github.com/Vahe555123/busines/internal/domain/ports/repository"
)

// Compile-time check
var _ PricingUseCase = (*pricingUC)(nil)

// PricingUseCase exposes the purchasable plans shown on the site.
type PricingUseCase interface {
	List(ctx context.Context) ([]*model.Pricing, error)
	Get(ctx context.Context, id string) (*model.Pricing, error)
}

type pricingUC struct {
	pricing repository.PricingRepository
	log     zerolog.Logger
}

func NewPricingUseCase(pricing repository.PricingRepository, log zerolog.Logger) *pricingUC {
	return &pricingUC{
		pricing: pricing,
		log:     log.With().Str("component", "pricing_uc").Logger(),
	}
}

func (u *pricingUC) List(ctx context.Context) ([]*model.Pricing, error) {
	return u.pricing.ListAll(ctx, repository.NoTX)
}

func (u *pricingUC) Get(ctx context.Context, id string) (*model.Pricing, error) {
	return u.pricing.FindByID(ctx, repository.NoTX, id)
}
