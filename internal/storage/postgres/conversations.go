package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bhanmrinal/cf-project/internal/apperr"
	"github.com/bhanmrinal/cf-project/internal/conversation"
)

// ConversationStore implements conversation.Store.
type ConversationStore struct {
	pool *pgxpool.Pool
}

var _ conversation.Store = (*ConversationStore)(nil)

func (s *ConversationStore) Create(ctx context.Context, c conversation.Conversation) error {
	cc, err := json.Marshal(c.Context)
	if err != nil {
		return fmt.Errorf("marshal conversation context: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO conversations (id, user_id, resume_id, context, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, COALESCE($5, NOW()), COALESCE($6, NOW()))`,
		c.ID, c.UserID, c.ResumeID, cc, nullTime(c.CreatedAt), nullTime(c.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert conversation %s: %w", c.ID, err)
	}
	return nil
}

func (s *ConversationStore) Get(ctx context.Context, id string) (conversation.Conversation, error) {
	var (
		c  conversation.Conversation
		cc []byte
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, resume_id, context, created_at, updated_at
		 FROM conversations WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.UserID, &c.ResumeID, &cc, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return conversation.Conversation{}, apperr.NotFound("conversation", id)
		}
		return conversation.Conversation{}, fmt.Errorf("get conversation %s: %w", id, err)
	}

	if err := json.Unmarshal(cc, &c.Context); err != nil {
		return conversation.Conversation{}, fmt.Errorf("decode context of conversation %s: %w", id, err)
	}
	return c, nil
}

func (s *ConversationStore) SetResume(ctx context.Context, id, resumeID string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE conversations SET resume_id = $2, updated_at = NOW() WHERE id = $1`,
		id, resumeID,
	)
	if err != nil {
		return fmt.Errorf("set resume of conversation %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("conversation", id)
	}
	return nil
}

func (s *ConversationStore) UpdateContext(ctx context.Context, id string, c conversation.Context) error {
	cc, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal conversation context: %w", err)
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE conversations SET context = $2, updated_at = NOW() WHERE id = $1`,
		id, cc,
	)
	if err != nil {
		return fmt.Errorf("update context of conversation %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("conversation", id)
	}
	return nil
}

func (s *ConversationStore) AppendTurn(ctx context.Context, id string, t conversation.Turn) error {
	var payload []byte
	if len(t.Payload) > 0 {
		var err error
		if payload, err = json.Marshal(t.Payload); err != nil {
			return fmt.Errorf("marshal turn payload: %w", err)
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	tag, err := tx.Exec(ctx,
		`UPDATE conversations SET updated_at = NOW() WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("touch conversation %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("conversation", id)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO turns (id, conversation_id, sender, message, reply, intent, payload, version_seq, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, COALESCE($9, NOW()))`,
		t.ID, id, t.Sender, t.Message, t.Reply, t.Intent, payload, t.VersionSeq, nullTime(t.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert turn %s: %w", t.ID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit turn %s: %w", t.ID, err)
	}
	return nil
}

func (s *ConversationStore) RecentTurns(ctx context.Context, id string, n int) ([]conversation.Turn, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM conversations WHERE id = $1)`, id,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check conversation %s: %w", id, err)
	}
	if !exists {
		return nil, apperr.NotFound("conversation", id)
	}
	if n <= 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, sender, message, reply, intent, payload, version_seq, created_at
		 FROM (
		     SELECT * FROM turns WHERE conversation_id = $1
		     ORDER BY position DESC LIMIT $2
		 ) recent
		 ORDER BY position ASC`,
		id, n,
	)
	if err != nil {
		return nil, fmt.Errorf("query turns of conversation %s: %w", id, err)
	}
	defer rows.Close()

	var turns []conversation.Turn
	for rows.Next() {
		var (
			t       conversation.Turn
			payload []byte
		)
		if err := rows.Scan(&t.ID, &t.Sender, &t.Message, &t.Reply, &t.Intent, &payload, &t.VersionSeq, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &t.Payload); err != nil {
				return nil, fmt.Errorf("decode payload of turn %s: %w", t.ID, err)
			}
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turns: %w", err)
	}
	return turns, nil
}
