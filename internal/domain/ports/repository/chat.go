package repository

import (
	"context"

	"github.com/Vahe555123/busines/internal/domain/model"
)

type ChatRepository interface {
	SaveConversation(ctx context.Context, tx Tx, c *model.Conversation) error
	// FindConversationByUser returns the user's newest conversation.
	FindConversationByUser(ctx context.Context, tx Tx, userID string) (*model.Conversation, error)
	// FindConversationBySession returns the newest anonymous conversation for
	// a browser session id.
	FindConversationBySession(ctx context.Context, tx Tx, sessionID string) (*model.Conversation, error)
	// AdoptSession re-keys a conversation from an anonymous session to a user.
	AdoptSession(ctx context.Context, tx Tx, conversationID, userID string) error
	SaveMessage(ctx context.Context, tx Tx, m *model.ChatMessage) error
	// ListMessages returns a conversation's messages oldest first.
	ListMessages(ctx context.Context, tx Tx, conversationID string) ([]*model.ChatMessage, error)
}
