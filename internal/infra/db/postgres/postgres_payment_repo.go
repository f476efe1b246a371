package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/Vahe555123/busines/internal/domain"
	"github.com/Vahe555123/busines/internal/domain/model"
	"github.com/Vahe555123/busines/internal/domain/ports/repository"
)

var _ repository.PaymentRepository = (*paymentRepo)(nil)

type paymentRepo struct{ pool *pgxpool.Pool }

func NewPaymentRepo(pool *pgxpool.Pool) *paymentRepo {
	return &paymentRepo{pool: pool}
}

const paymentColumns = `id, user_id, pricing_id, external_payment_id, amount, title, status, created_at, updated_at`

func (r *paymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	const q = `
INSERT INTO payments (id, user_id, pricing_id, external_payment_id, amount, title, status, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (id) DO UPDATE SET
  external_payment_id=$4, amount=$5, title=$6, status=$7, updated_at=$9;`

	_, err := execSQL(ctx, r.pool, tx, q, p.ID, p.UserID, p.PricingID, p.ExternalPaymentID, p.Amount, p.Title, p.Status, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *paymentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Payment, error) {
	const q = `SELECT ` + paymentColumns + ` FROM payments WHERE id=$1;`
	return r.scanOne(ctx, tx, q, id)
}

func (r *paymentRepo) FindByIDForUser(ctx context.Context, tx repository.Tx, id, userID string) (*model.Payment, error) {
	const q = `SELECT ` + paymentColumns + ` FROM payments WHERE id=$1 AND user_id=$2;`
	return r.scanOne(ctx, tx, q, id, userID)
}

func (r *paymentRepo) FindByExternalID(ctx context.Context, tx repository.Tx, externalID string) (*model.Payment, error) {
	const q = `SELECT ` + paymentColumns + ` FROM payments WHERE external_payment_id=$1 LIMIT 1;`
	return r.scanOne(ctx, tx, q, externalID)
}

func (r *paymentRepo) SetExternalID(ctx context.Context, tx repository.Tx, id, externalID string) error {
	const q = `UPDATE payments SET external_payment_id=$2, updated_at=NOW() WHERE id=$1;`
	_, err := execSQL(ctx, r.pool, tx, q, id, externalID)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

// UpdateStatusIfPending is the single write path out of 'pending'. The
// conditional WHERE makes concurrent webhook redeliveries race safely: only
// one UPDATE reports an affected row.
func (r *paymentRepo) UpdateStatusIfPending(ctx context.Context, tx repository.Tx, id string, status model.PaymentStatus) (bool, error) {
	const q = `
UPDATE payments
   SET status = $2,
       updated_at = NOW()
 WHERE id = $1
   AND status = 'pending';`

	cmd, err := execSQL(ctx, r.pool, tx, q, id, string(status))
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return false, err
		}
		return false, domain.ErrOperationFailed
	}
	return cmd.RowsAffected() >= 1, nil
}

func (r *paymentRepo) ListPendingOlderThan(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.Payment, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `SELECT ` + paymentColumns + ` FROM payments WHERE status='pending' AND created_at < $1 ORDER BY created_at ASC LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, olderThan, limit)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()

	var out []*model.Payment
	for rows.Next() {
		p := new(model.Payment)
		if err := rows.Scan(&p.ID, &p.UserID, &p.PricingID, &p.ExternalPaymentID, &p.Amount, &p.Title, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *paymentRepo) scanOne(ctx context.Context, tx repository.Tx, q string, args ...interface{}) (*model.Payment, error) {
	row, err := pickRow(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, err
	}
	p := &model.Payment{}
	if err := row.Scan(&p.ID, &p.UserID, &p.PricingID, &p.ExternalPaymentID, &p.Amount, &p.Title, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return p, nil
}
