package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/pkoukk/tiktoken-go"
	"github.com/rs/zerolog"

	"github.com/Vahe555123/busines/internal/domain"
	"github.com/Vahe555123/busines/internal/domain/model"
	"github.com/Vahe555123/busines/internal/domain/ports/adapter"
	"github.com/Vahe555123/busines/internal/domain/ports/repository"
)

// Compile-time check
var _ ChatUseCase = (*chatUC)(nil)

// ChatUseCase drives the site assistant widget. Conversations are keyed by
// user id for authenticated callers and by browser session id otherwise; when
// a user logs in, their newest anonymous conversation is adopted so history
// survives authentication.
type ChatUseCase interface {
	// History returns (or creates) the caller's conversation with its messages.
	History(ctx context.Context, userID, sessionID string) (*model.Conversation, []*model.ChatMessage, error)
	// Send appends the user message, asks the assistant, and returns both.
	Send(ctx context.Context, userID, sessionID, content string, imageURLs []string) (*model.ChatMessage, *model.ChatMessage, error)
}

const (
	// unconfiguredReply is returned instead of failing when no AI key is set.
	unconfiguredReply = "Чат временно недоступен. Вы можете оставить заявку в разделе «Контакты»."
	// emptyReplyFallback covers a completion with no usable content.
	emptyReplyFallback = "Не удалось получить ответ. Попробуйте ещё раз."
	// imagePlaceholder replaces the text of an image-only message.
	imagePlaceholder = "(изображение)"
	// imagesAttachedSuffix tells the model a user message carried attachments.
	imagesAttachedSuffix = " [Изображения приложены]"
)

type chatUC struct {
	chats repository.ChatRepository
	ai    adapter.AIServiceAdapter

	systemPrompt      string
	historyTokenLimit int
	encoder           *tiktoken.Tiktoken
	log               zerolog.Logger
}

func NewChatUseCase(
	chats repository.ChatRepository,
	ai adapter.AIServiceAdapter,
	systemPrompt string,
	historyTokenLimit int,
	log zerolog.Logger,
) *chatUC {
	if historyTokenLimit <= 0 {
		historyTokenLimit = 3000
	}
	// cl100k_base is a reasonable tokenizer stand-in for the llama family.
	encoder, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		encoder = nil
	}
	return &chatUC{
		chats:             chats,
		ai:                ai,
		systemPrompt:      systemPrompt,
		historyTokenLimit: historyTokenLimit,
		encoder:           encoder,
		log:               log.With().Str("component", "chat_uc").Logger(),
	}
}

func (u *chatUC) History(ctx context.Context, userID, sessionID string) (*model.Conversation, []*model.ChatMessage, error) {
	conv, err := u.resolveConversation(ctx, userID, sessionID)
	if err != nil {
		return nil, nil, err
	}
	msgs, err := u.chats.ListMessages(ctx, repository.NoTX, conv.ID)
	if err != nil {
		return nil, nil, err
	}
	return conv, msgs, nil
}

func (u *chatUC) Send(ctx context.Context, userID, sessionID, content string, imageURLs []string) (*model.ChatMessage, *model.ChatMessage, error) {
	text := strings.TrimSpace(content)
	if text == "" && len(imageURLs) == 0 {
		return nil, nil, domain.ErrInvalidArgument
	}
	if text == "" {
		text = imagePlaceholder
	}

	conv, err := u.resolveConversation(ctx, userID, sessionID)
	if err != nil {
		return nil, nil, err
	}

	userMsg := &model.ChatMessage{
		ID:             ulid.Make().String(),
		ConversationID: conv.ID,
		Role:           model.ChatRoleUser,
		Content:        text,
		ImageURLs:      imageURLs,
		CreatedAt:      time.Now(),
	}
	if err := u.chats.SaveMessage(ctx, repository.NoTX, userMsg); err != nil {
		return nil, nil, err
	}

	history, err := u.chats.ListMessages(ctx, repository.NoTX, conv.ID)
	if err != nil {
		return nil, nil, err
	}

	reply := u.complete(ctx, history)

	assistantMsg := &model.ChatMessage{
		ID:             ulid.Make().String(),
		ConversationID: conv.ID,
		Role:           model.ChatRoleAssistant,
		Content:        reply,
		CreatedAt:      time.Now(),
	}
	if err := u.chats.SaveMessage(ctx, repository.NoTX, assistantMsg); err != nil {
		return nil, nil, err
	}
	return userMsg, assistantMsg, nil
}

// resolveConversation finds the caller's conversation, adopting an anonymous
// one on first authenticated contact, and creates one when none exists.
func (u *chatUC) resolveConversation(ctx context.Context, userID, sessionID string) (*model.Conversation, error) {
	if userID == "" && sessionID == "" {
		return nil, domain.ErrInvalidArgument
	}

	if userID != "" {
		conv, err := u.chats.FindConversationByUser(ctx, repository.NoTX, userID)
		if err == nil {
			return conv, nil
		}
		if err != domain.ErrNotFound {
			return nil, err
		}
		// First authenticated contact: take over the anonymous history, if any.
		if sessionID != "" {
			anon, err := u.chats.FindConversationBySession(ctx, repository.NoTX, sessionID)
			if err == nil {
				if err := u.chats.AdoptSession(ctx, repository.NoTX, anon.ID, userID); err == nil {
					u.log.Info().Str("conversation_id", anon.ID).Str("user_id", userID).Msg("anonymous conversation adopted")
					anon.UserID = &userID
					anon.SessionID = nil
					return anon, nil
				}
			} else if err != domain.ErrNotFound {
				return nil, err
			}
		}
		return u.createConversation(ctx, userID, "")
	}

	conv, err := u.chats.FindConversationBySession(ctx, repository.NoTX, sessionID)
	if err == nil {
		return conv, nil
	}
	if err != domain.ErrNotFound {
		return nil, err
	}
	return u.createConversation(ctx, "", sessionID)
}

func (u *chatUC) createConversation(ctx context.Context, userID, sessionID string) (*model.Conversation, error) {
	now := time.Now()
	conv := &model.Conversation{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if userID != "" {
		conv.UserID = &userID
	}
	if sessionID != "" {
		conv.SessionID = &sessionID
	}
	if err := u.chats.SaveConversation(ctx, repository.NoTX, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// complete turns the stored history into a completion request. All failures
// degrade to fixed replies; the widget never errors out at the user.
func (u *chatUC) complete(ctx context.Context, history []*model.ChatMessage) string {
	if !u.ai.Configured() {
		return unconfiguredReply
	}

	msgs := make([]adapter.Message, 0, len(history)+1)
	msgs = append(msgs, adapter.Message{Role: "system", Content: u.systemPrompt})
	for _, m := range u.trimHistory(history) {
		content := m.Content
		if m.Role == model.ChatRoleUser && len(m.ImageURLs) > 0 {
			content += imagesAttachedSuffix
		}
		msgs = append(msgs, adapter.Message{Role: string(m.Role), Content: content})
	}

	reply, err := u.ai.Chat(ctx, msgs)
	if err != nil {
		u.log.Error().Err(err).Msg("ai completion failed")
		return emptyReplyFallback
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return emptyReplyFallback
	}
	return reply
}

// trimHistory drops the oldest messages until the remainder fits the token
// budget. The newest message is always kept.
func (u *chatUC) trimHistory(history []*model.ChatMessage) []*model.ChatMessage {
	if len(history) == 0 {
		return history
	}
	budget := u.historyTokenLimit
	kept := make([]*model.ChatMessage, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		m := history[i]
		cost := u.countTokens(m.Content)
		if budget-cost < 0 && len(kept) > 0 {
			break
		}
		budget -= cost
		kept = append(kept, m)
	}
	// kept is newest-first; reverse back to chronological order.
	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}
	return kept
}

func (u *chatUC) countTokens(s string) int {
	if u.encoder == nil {
		// Rough fallback: ~4 chars per token.
		return len(s)/4 + 1
	}
	return len(u.encoder.Encode(s, nil, nil))
}
