package ai

import (
	"context"

	"github.com/Vahe555123/busines/internal/domain/ports/adapter"
)

var _ adapter.AIServiceAdapter = (*NoopAdapter)(nil)

// NoopAdapter stands in when no API key is configured.
type NoopAdapter struct{}

func NewNoopAdapter() *NoopAdapter { return &NoopAdapter{} }

func (NoopAdapter) Configured() bool { return false }

func (NoopAdapter) Chat(ctx context.Context, messages []adapter.Message) (string, error) {
	return "", nil
}
