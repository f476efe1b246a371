package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

// NoTX is the explicit non-transactional handle. Callers outside a
// TransactionManager.WithTx closure pass it instead of a live tx.
var NoTX Tx

// TransactionManager provides a thin abstraction to execute a function within
// a database transaction, passing the underlying transaction handle via `tx`.
//
// Repository methods accept `tx Tx` and detect the handle implementation-side
// (pgx.Tx for Postgres); they MUST gracefully accept nil for the
// non-transactional path. Keep this interface small and stable.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
