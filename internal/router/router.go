// Package router runs one conversation turn: classify the message, dispatch it
// to an agent, record any new resume version and append the turn.
package router

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bhanmrinal/cf-project/internal/agents"
	"github.com/bhanmrinal/cf-project/internal/apperr"
	"github.com/bhanmrinal/cf-project/internal/conversation"
	"github.com/bhanmrinal/cf-project/internal/intent"
	"github.com/bhanmrinal/cf-project/internal/logger"
	"github.com/bhanmrinal/cf-project/internal/resume"
)

const defaultHistoryTurns = 3

// ErrEmptyMessage is returned for blank chat messages.
var ErrEmptyMessage = errors.New("message is empty")

// Classifier picks the intent of a message. It must not fail.
type Classifier interface {
	Classify(ctx context.Context, message string, recent []conversation.Turn, cc conversation.Context) intent.Intent
}

// Dispatcher runs the agent for an intent. It must not fail.
type Dispatcher interface {
	Dispatch(ctx context.Context, i intent.Intent, req agents.Request) agents.Response
}

// VersionStore is the part of the version store the router writes through.
type VersionStore interface {
	Create(ctx context.Context, resumeID string, content resume.Content, label string) (resume.Version, error)
	Current(ctx context.Context, resumeID string) (resume.Version, error)
	Record(ctx context.Context, resumeID string, content resume.Content, label, agent string) (resume.Version, error)
}

// ChatReply is the result of one turn.
type ChatReply struct {
	ConversationID string         `json:"conversation_id"`
	TurnID         string         `json:"turn_id"`
	Reply          string         `json:"reply"`
	Intent         string         `json:"intent"`
	Agent          string         `json:"agent"`
	Failed         bool           `json:"failed,omitempty"`
	Payload        map[string]any `json:"payload,omitempty"`
	// Version is the new resume version the turn produced, if any.
	Version *resume.Version `json:"new_version,omitempty"`
}

type Options struct {
	// HistoryTurns is how many recent turns the classifier and agents see.
	HistoryTurns int
}

type Router struct {
	conversations conversation.Store
	versions      VersionStore
	classifier    Classifier
	dispatcher    Dispatcher
	logger        *zap.Logger
	historyTurns  int

	now   func() time.Time
	newID func() string
}

func New(conversations conversation.Store, versions VersionStore, classifier Classifier, dispatcher Dispatcher, log *zap.Logger, opts Options) *Router {
	if opts.HistoryTurns <= 0 {
		opts.HistoryTurns = defaultHistoryTurns
	}
	return &Router{
		conversations: conversations,
		versions:      versions,
		classifier:    classifier,
		dispatcher:    dispatcher,
		logger:        logger.WithFields(log),
		historyTurns:  opts.HistoryTurns,
		now:           time.Now,
		newID:         uuid.NewString,
	}
}

// StartConversation creates an empty conversation for a user.
func (r *Router) StartConversation(ctx context.Context, userID string) (conversation.Conversation, error) {
	now := r.now().UTC()
	c := conversation.Conversation{
		ID:        r.newID(),
		UserID:    strings.TrimSpace(userID),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.conversations.Create(ctx, c); err != nil {
		return conversation.Conversation{}, apperr.Upstream("create conversation", err)
	}

	r.logger.Info("conversation started", logger.TurnFields(c.ID, "", "")...)
	return c, nil
}

// AttachResume stores an uploaded resume as version 0 of a new resume and makes
// it the active resume of the conversation.
func (r *Router) AttachResume(ctx context.Context, conversationID string, content resume.Content, label string) (resume.Version, error) {
	if _, err := r.conversations.Get(ctx, conversationID); err != nil {
		return resume.Version{}, apperr.Upstream("load conversation", err)
	}
	if strings.TrimSpace(label) == "" {
		label = "uploaded"
	}

	v, err := r.versions.Create(ctx, r.newID(), content, label)
	if err != nil {
		return resume.Version{}, apperr.Upstream("create resume", err)
	}
	if err := r.conversations.SetResume(ctx, conversationID, v.ResumeID); err != nil {
		return resume.Version{}, apperr.Upstream("attach resume", err)
	}

	r.logger.Info("resume attached", logger.TurnFields(conversationID, v.ResumeID, "")...)
	return v, nil
}

// HandleTurn runs one turn for the conversation. Classification and agent
// failures still produce a reply; store failures fail the turn.
func (r *Router) HandleTurn(ctx context.Context, conversationID, message string) (*ChatReply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	conv, err := r.conversations.Get(ctx, conversationID)
	if err != nil {
		return nil, apperr.Upstream("load conversation", err)
	}

	recent, err := r.conversations.RecentTurns(ctx, conversationID, r.historyTurns)
	if err != nil {
		return nil, apperr.Upstream("load recent turns", err)
	}

	i := r.classifier.Classify(ctx, message, recent, conv.Context)
	cc := intent.Extract(message, i, conv.Context)

	var current *resume.Resume
	if conv.ResumeID != "" {
		v, err := r.versions.Current(ctx, conv.ResumeID)
		if err != nil {
			return nil, apperr.Upstream("load current resume", err)
		}
		current = resume.FromVersion(v)
	}

	resp := r.dispatcher.Dispatch(ctx, i, agents.Request{
		ConversationID: conversationID,
		Resume:         current,
		Message:        message,
		Recent:         recent,
		Context:        cc,
	})

	log := r.logger.With(logger.TurnFields(conversationID, conv.ResumeID, resp.Intent.String())...)

	var version *resume.Version
	if resp.Content != nil && current != nil {
		v, err := r.versions.Record(ctx, current.ID, *resp.Content, resp.Label, resp.Intent.String())
		if err != nil {
			return nil, apperr.Upstream("record version", err)
		}
		version = &v
		log.Info("resume version recorded", logger.VersionFields(v.ResumeID, v.Seq)...)
	}

	if cc != conv.Context {
		if err := r.conversations.UpdateContext(ctx, conversationID, cc); err != nil {
			return nil, apperr.Upstream("update conversation context", err)
		}
	}

	turn := conversation.Turn{
		ID:        r.newID(),
		Sender:    conv.Sender(),
		Message:   message,
		Reply:     resp.Reply,
		Intent:    resp.Intent.String(),
		Payload:   resp.Payload,
		CreatedAt: r.now().UTC(),
	}
	if version != nil {
		seq := version.Seq
		turn.VersionSeq = &seq
	}

	if err := r.conversations.AppendTurn(ctx, conversationID, turn); err != nil {
		return nil, apperr.Upstream("append turn", err)
	}

	log.Info("turn handled",
		zap.String("agent", resp.Agent),
		zap.Bool("failed", resp.Failed),
		zap.Bool("new_version", version != nil),
	)

	return &ChatReply{
		ConversationID: conversationID,
		TurnID:         turn.ID,
		Reply:          resp.Reply,
		Intent:         resp.Intent.String(),
		Agent:          resp.Agent,
		Failed:         resp.Failed,
		Payload:        resp.Payload,
		Version:        version,
	}, nil
}
