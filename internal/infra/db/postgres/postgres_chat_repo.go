package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/Vahe555123/busines/internal/domain"
	"github.com/Vahe555123/busines/internal/domain/model"
	"github.com/Vahe555123/busines/internal/domain/ports/repository"
)

var _ repository.ChatRepository = (*chatRepo)(nil)

type chatRepo struct{ pool *pgxpool.Pool }

func NewChatRepo(pool *pgxpool.Pool) *chatRepo {
	return &chatRepo{pool: pool}
}

const conversationColumns = `id, session_id, user_id, created_at, updated_at`

func (r *chatRepo) SaveConversation(ctx context.Context, tx repository.Tx, c *model.Conversation) error {
	const q = `
INSERT INTO conversations (id, session_id, user_id, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (id) DO UPDATE SET session_id=$2, user_id=$3, updated_at=$5;`

	_, err := execSQL(ctx, r.pool, tx, q, c.ID, c.SessionID, c.UserID, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *chatRepo) FindConversationByUser(ctx context.Context, tx repository.Tx, userID string) (*model.Conversation, error) {
	const q = `SELECT ` + conversationColumns + ` FROM conversations WHERE user_id=$1 ORDER BY updated_at DESC LIMIT 1;`
	return r.scanConversation(ctx, tx, q, userID)
}

func (r *chatRepo) FindConversationBySession(ctx context.Context, tx repository.Tx, sessionID string) (*model.Conversation, error) {
	const q = `SELECT ` + conversationColumns + ` FROM conversations WHERE session_id=$1 AND user_id IS NULL ORDER BY updated_at DESC LIMIT 1;`
	return r.scanConversation(ctx, tx, q, sessionID)
}

func (r *chatRepo) AdoptSession(ctx context.Context, tx repository.Tx, conversationID, userID string) error {
	const q = `
UPDATE conversations
   SET user_id = $2,
       session_id = NULL,
       updated_at = NOW()
 WHERE id = $1
   AND user_id IS NULL;`

	cmd, err := execSQL(ctx, r.pool, tx, q, conversationID, userID)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *chatRepo) SaveMessage(ctx context.Context, tx repository.Tx, m *model.ChatMessage) error {
	const q = `
INSERT INTO chat_messages (id, conversation_id, role, content, image_urls, created_at)
VALUES ($1,$2,$3,$4,$5,$6);`

	_, err := execSQL(ctx, r.pool, tx, q, m.ID, m.ConversationID, m.Role, m.Content, m.ImageURLs, m.CreatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *chatRepo) ListMessages(ctx context.Context, tx repository.Tx, conversationID string) ([]*model.ChatMessage, error) {
	const q = `SELECT id, conversation_id, role, content, image_urls, created_at FROM chat_messages WHERE conversation_id=$1 ORDER BY id ASC;`
	rows, err := queryRows(ctx, r.pool, tx, q, conversationID)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()

	var out []*model.ChatMessage
	for rows.Next() {
		m := new(model.ChatMessage)
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.ImageURLs, &m.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *chatRepo) scanConversation(ctx context.Context, tx repository.Tx, q string, args ...interface{}) (*model.Conversation, error) {
	row, err := pickRow(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, err
	}
	c := &model.Conversation{}
	if err := row.Scan(&c.ID, &c.SessionID, &c.UserID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return c, nil
}
