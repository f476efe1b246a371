package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/Vahe555123/busines/internal/domain"
	"github.com/Vahe555123/busines/internal/domain/model"
	"github.com/Vahe555123/busines/internal/domain/ports/repository"
)

var _ repository.PricingRepository = (*pricingRepo)(nil)

type pricingRepo struct{ pool *pgxpool.Pool }

func NewPricingRepo(pool *pgxpool.Pool) *pricingRepo {
	return &pricingRepo{pool: pool}
}

const pricingColumns = `id, title_en, title_ru, title_hy, desc_en, desc_ru, desc_hy, price, sort_order, is_popular, created_at, updated_at`

func (r *pricingRepo) Save(ctx context.Context, tx repository.Tx, p *model.Pricing) error {
	const q = `
INSERT INTO pricing (id, title_en, title_ru, title_hy, desc_en, desc_ru, desc_hy, price, sort_order, is_popular, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
ON CONFLICT (id) DO UPDATE SET
  title_en=$2, title_ru=$3, title_hy=$4,
  desc_en=$5, desc_ru=$6, desc_hy=$7,
  price=$8, sort_order=$9, is_popular=$10, updated_at=$12;`

	_, err := execSQL(ctx, r.pool, tx, q,
		p.ID,
		p.Title.EN, p.Title.RU, p.Title.HY,
		p.Description.EN, p.Description.RU, p.Description.HY,
		p.Price, p.Order, p.IsPopular, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *pricingRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Pricing, error) {
	const q = `SELECT ` + pricingColumns + ` FROM pricing WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	p := &model.Pricing{}
	if err := scanPricing(row, p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return p, nil
}

func (r *pricingRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Pricing, error) {
	const q = `SELECT ` + pricingColumns + ` FROM pricing ORDER BY sort_order ASC, price ASC;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()

	var out []*model.Pricing
	for rows.Next() {
		p := new(model.Pricing)
		if err := scanPricing(rows, p); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, p)
	}
	return out, nil
}

func scanPricing(row pgx.Row, p *model.Pricing) error {
	return row.Scan(
		&p.ID,
		&p.Title.EN, &p.Title.RU, &p.Title.HY,
		&p.Description.EN, &p.Description.RU, &p.Description.HY,
		&p.Price, &p.Order, &p.IsPopular, &p.CreatedAt, &p.UpdatedAt,
	)
}
