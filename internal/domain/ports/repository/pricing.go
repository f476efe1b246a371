package repository

import (
	"context"

	"github.com/Vahe555123/busines/internal/domain/model"
)

type PricingRepository interface {
	Save(ctx context.Context, tx Tx, p *model.Pricing) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Pricing, error)
	ListAll(ctx context.Context, tx Tx) ([]*model.Pricing, error)
}
