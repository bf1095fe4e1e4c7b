// Package conversation holds conversations, their turns, and the store contract the router writes through.
package conversation

import (
	"context"
	"time"
)

// DefaultSender is used when a conversation has no user id.
const DefaultSender = "user"

// Context is what the router remembers between turns to keep follow-up messages on topic.
type Context struct {
	TargetCompany  string `json:"target_company,omitempty"`
	JobDescription string `json:"job_description,omitempty"`
	TargetLanguage string `json:"target_language,omitempty"`
	TargetRegion   string `json:"target_region,omitempty"`
}

// Merge returns c with every non-empty field of update applied.
func (c Context) Merge(update Context) Context {
	if update.TargetCompany != "" {
		c.TargetCompany = update.TargetCompany
	}
	if update.JobDescription != "" {
		c.JobDescription = update.JobDescription
	}
	if update.TargetLanguage != "" {
		c.TargetLanguage = update.TargetLanguage
	}
	if update.TargetRegion != "" {
		c.TargetRegion = update.TargetRegion
	}
	return c
}

// Conversation is one chat session. Turns are stored separately and only appended.
type Conversation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id,omitempty"`
	ResumeID  string    `json:"resume_id,omitempty"`
	Context   Context   `json:"context"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Sender is the name recorded on turns of this conversation.
func (c Conversation) Sender() string {
	if c.UserID != "" {
		return c.UserID
	}
	return DefaultSender
}

// Turn is one exchange: the user message and the assistant reply to it.
type Turn struct {
	ID         string         `json:"id"`
	Sender     string         `json:"sender"`
	Message    string         `json:"message"`
	Reply      string         `json:"reply"`
	Intent     string         `json:"intent"`
	Payload    map[string]any `json:"payload,omitempty"`
	VersionSeq *int           `json:"version_seq,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Store persists conversations and their turns.
// Get, SetResume, UpdateContext, AppendTurn and RecentTurns return an
// apperr.ErrNotFound error for unknown conversation ids.
type Store interface {
	Create(ctx context.Context, c Conversation) error
	Get(ctx context.Context, id string) (Conversation, error)
	SetResume(ctx context.Context, id, resumeID string) error
	UpdateContext(ctx context.Context, id string, c Context) error
	AppendTurn(ctx context.Context, id string, t Turn) error
	// RecentTurns returns the last n turns, oldest first.
	RecentTurns(ctx context.Context, id string, n int) ([]Turn, error)
}
