package model

import "time"

// Conversation ties chat messages either to an anonymous browser session or
// to an authenticated user. Exactly one of SessionID/UserID is expected to be
// set; adoption (anonymous history surviving login) moves a conversation from
// session keying to user keying.
type Conversation struct {
	ID        string // UUID
	SessionID *string
	UserID    *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage IDs are ULIDs so a conversation's messages sort by id.
type ChatMessage struct {
	ID             string
	ConversationID string
	Role           ChatRole
	Content        string
	ImageURLs      []string
	CreatedAt      time.Time
}
