package mail

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Vahe555123/busines/internal/domain/ports/adapter"
)

var _ adapter.Mailer = (*NoopMailer)(nil)

// NoopMailer logs instead of sending when SMTP is not configured.
type NoopMailer struct {
	log zerolog.Logger
}

func NewNoopMailer(log zerolog.Logger) *NoopMailer {
	return &NoopMailer{log: log.With().Str("component", "mailer").Logger()}
}

func (m *NoopMailer) SendPurchaseConfirmation(ctx context.Context, to, userName, productTitle string, price int64) error {
	m.log.Warn().Str("to", to).Str("product", productTitle).Msg("smtp not configured, skipping purchase confirmation")
	return nil
}
