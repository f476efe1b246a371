package adapter

import "context"

// Message mirrors the chat-completions wire format.
type Message struct {
	Role    string `json:"role"` // "system" | "user" | "assistant"
	Content string `json:"content"`
}

// AIServiceAdapter is the hex port for the chat completion provider.
type AIServiceAdapter interface {
	Chat(ctx context.Context, messages []Message) (string, error)
	// Configured reports whether the provider has credentials; the chat flow
	// degrades to a canned reply instead of failing when it does not.
	Configured() bool
}
