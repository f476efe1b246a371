package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/Vahe555123/busines/internal/domain"
	"github.com/Vahe555123/busines/internal/domain/model"
	"github.com/Vahe555123/busines/internal/domain/ports/repository"
)

var _ repository.PurchaseRepository = (*purchaseRepo)(nil)

type purchaseRepo struct{ pool *pgxpool.Pool }

func NewPurchaseRepo(pool *pgxpool.Pool) *purchaseRepo {
	return &purchaseRepo{pool: pool}
}

const purchaseColumns = `id, user_id, pricing_id, payment_id, title, price, status, created_at`

// Save inserts a purchase. A duplicate payment_id trips the unique
// constraint and surfaces as domain.ErrAlreadyExists so callers can treat
// webhook redelivery as a no-op.
func (r *purchaseRepo) Save(ctx context.Context, tx repository.Tx, p *model.Purchase) error {
	const q = `
INSERT INTO purchases (id, user_id, pricing_id, payment_id, title, price, status, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8);`

	_, err := execSQL(ctx, r.pool, tx, q, p.ID, p.UserID, p.PricingID, p.PaymentID, p.Title, p.Price, p.Status, p.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrAlreadyExists
		}
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *purchaseRepo) FindByPaymentID(ctx context.Context, tx repository.Tx, paymentID string) (*model.Purchase, error) {
	const q = `SELECT ` + purchaseColumns + ` FROM purchases WHERE payment_id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, paymentID)
	if err != nil {
		return nil, err
	}
	p := &model.Purchase{}
	if err := row.Scan(&p.ID, &p.UserID, &p.PricingID, &p.PaymentID, &p.Title, &p.Price, &p.Status, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return p, nil
}

func (r *purchaseRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Purchase, error) {
	const q = `SELECT ` + purchaseColumns + ` FROM purchases WHERE user_id=$1 ORDER BY created_at DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q, userID)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()

	var out []*model.Purchase
	for rows.Next() {
		p := new(model.Purchase)
		if err := rows.Scan(&p.ID, &p.UserID, &p.PricingID, &p.PaymentID, &p.Title, &p.Price, &p.Status, &p.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, p)
	}
	return out, nil
}
