package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Vahe555123/busines/internal/config"
	"github.com/Vahe555123/busines/internal/domain/ports/adapter"
	"github.com/Vahe555123/busines/internal/infra/metrics"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.AIServiceAdapter = (*OpenAIAdapter)(nil)

// OpenAIAdapter implements adapter.AIServiceAdapter against any Chat
// Completions compatible endpoint (OpenAI, Groq, local proxies).
type OpenAIAdapter struct {
	apiKey string
	base   string // e.g., https://api.groq.com/openai/v1
	model  string
	client *http.Client
}

func NewOpenAIAdapter(cfg *config.AIConfig) (*OpenAIAdapter, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("ai api key empty")
	}
	base := cfg.BaseURL
	if base == "" {
		base = "https://api.groq.com/openai/v1"
	}
	model := cfg.Model
	if model == "" {
		model = "llama-3.1-8b-instant"
	}
	return &OpenAIAdapter{
		apiKey: cfg.APIKey,
		base:   base,
		model:  model,
		client: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (o *OpenAIAdapter) Configured() bool { return o.apiKey != "" }

func (o *OpenAIAdapter) Chat(ctx context.Context, messages []adapter.Message) (string, error) {
	// Build the request using the shared adapter.Message with JSON tags
	reqBody := struct {
		Model    string            `json:"model"`
		Messages []adapter.Message `json:"messages"`
	}{Model: o.model, Messages: messages}

	b, _ := json.Marshal(reqBody)
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, o.base+"/chat/completions", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	start := time.Now()
	resp, err := o.client.Do(req)
	latencyMs := int(time.Since(start) / time.Millisecond)
	if err != nil {
		metrics.ObserveAICall(o.model, latencyMs, false)
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		metrics.ObserveAICall(o.model, latencyMs, false)
		return "", fmt.Errorf("ai provider http %d", resp.StatusCode)
	}

	var payload struct {
		Choices []struct {
			Message adapter.Message `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		metrics.ObserveAICall(o.model, latencyMs, false)
		return "", err
	}
	metrics.ObserveAICall(o.model, latencyMs, true)
	for _, c := range payload.Choices {
		if c.Message.Content != "" {
			return c.Message.Content, nil
		}
	}
	return "", errors.New("no choice content")
}
