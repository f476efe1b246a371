package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/Vahe555123/busines/internal/usecase"
)

// PaymentExpiryWorker periodically cancels pending payments the gateway never
// confirmed, so abandoned checkouts do not linger forever.
type PaymentExpiryWorker struct {
	interval   time.Duration
	pendingTTL time.Duration
	payments   usecase.PaymentUseCase
	log        *zerolog.Logger
}

func NewPaymentExpiryWorker(interval, pendingTTL time.Duration, payments usecase.PaymentUseCase, logger *zerolog.Logger) *PaymentExpiryWorker {
	wLog := logger.With().Str("component", "PaymentExpiryWorker").Logger()
	return &PaymentExpiryWorker{
		interval:   interval,
		pendingTTL: pendingTTL,
		payments:   payments,
		log:        &wLog,
	}
}

func (w *PaymentExpiryWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting payment expiry worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping payment expiry worker")
			return ctx.Err()
		case <-ticker.C:
			n, err := w.payments.ExpireStalePending(ctx, time.Now().Add(-w.pendingTTL))
			if err != nil {
				w.log.Error().Err(err).Msg("payment expiry sweep failed")
			}
			if n > 0 {
				w.log.Info().Int("count", n).Msg("stale pending payments cancelled")
			}
		}
	}
}
