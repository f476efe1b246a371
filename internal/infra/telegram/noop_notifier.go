package telegram

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Vahe555123/busines/internal/domain/ports/adapter"
)

var _ adapter.OpsNotifier = (*NoopNotifier)(nil)

// NoopNotifier logs instead of posting when no bot token is configured.
type NoopNotifier struct {
	log zerolog.Logger
}

func NewNoopNotifier(log zerolog.Logger) *NoopNotifier {
	return &NoopNotifier{log: log.With().Str("component", "telegram").Logger()}
}

func (n *NoopNotifier) NotifyPurchase(ctx context.Context, note adapter.PurchaseNote) error {
	n.log.Warn().Str("purchase_id", note.PurchaseID).Msg("telegram not configured, skipping purchase alert")
	return nil
}
