// Package agents holds the specialized agents a conversation turn is dispatched to
// and the table that maps intents to them.
package agents

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/bhanmrinal/cf-project/internal/apperr"
	"github.com/bhanmrinal/cf-project/internal/conversation"
	"github.com/bhanmrinal/cf-project/internal/intent"
	"github.com/bhanmrinal/cf-project/internal/logger"
	"github.com/bhanmrinal/cf-project/internal/resume"
)

// Agent turns a message about a resume into a reply and, optionally, a new snapshot.
type Agent interface {
	Intent() intent.Intent
	Info() Info
	// RequiresResume agents are never called without an active resume.
	RequiresResume() bool
	Respond(ctx context.Context, req Request) (Response, error)
}

// Info describes an agent for listings.
type Info struct {
	Intent      string `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Example     string `json:"example,omitempty"`
}

// Request is everything an agent may look at.
type Request struct {
	ConversationID string
	// Resume is nil when the conversation has no resume attached.
	Resume  *resume.Resume
	Message string
	Recent  []conversation.Turn
	Context conversation.Context
}

// Response is what an agent produced for a turn.
type Response struct {
	Reply string
	// Content is the new snapshot to record, nil when the resume is unchanged.
	Content *resume.Content
	Label   string
	Payload map[string]any

	// Set by the table.
	Intent intent.Intent
	Agent  string
	Failed bool
}

// Table is the static intent to agent mapping.
type Table struct {
	agents map[intent.Intent]Agent
	order  []intent.Intent
	logger *zap.Logger
}

// NewTable registers the agents. Each intent may be registered once and a
// general chat agent is required as the fallback for unmapped intents.
func NewTable(log *zap.Logger, agents ...Agent) (*Table, error) {
	t := &Table{
		agents: make(map[intent.Intent]Agent, len(agents)),
		logger: logger.WithFields(log),
	}

	for _, a := range agents {
		i := a.Intent()
		if !i.Valid() {
			return nil, fmt.Errorf("agent %s: unknown intent %q", a.Info().Name, i)
		}
		if _, ok := t.agents[i]; ok {
			return nil, fmt.Errorf("intent %s registered twice", i)
		}
		t.agents[i] = a
		t.order = append(t.order, i)
	}

	if _, ok := t.agents[intent.GeneralChat]; !ok {
		return nil, errors.New("a general chat agent is required")
	}

	return t, nil
}

// Lookup returns the agent mapped to an intent.
func (t *Table) Lookup(i intent.Intent) (Agent, bool) {
	a, ok := t.agents[i]
	return a, ok
}

// Dispatch runs the agent mapped to i. It never fails: a missing resume gives the
// no-resume reply, and an agent error or panic gives a safe error reply.
func (t *Table) Dispatch(ctx context.Context, i intent.Intent, req Request) Response {
	a, ok := t.agents[i]
	if !ok {
		a = t.agents[intent.GeneralChat]
	}

	name := a.Info().Name
	var resumeID string
	if req.Resume != nil {
		resumeID = req.Resume.ID
	}
	log := t.logger.With(logger.TurnFields(req.ConversationID, resumeID, a.Intent().String())...).
		With(zap.String("agent", name))

	if a.RequiresResume() && req.Resume == nil {
		log.Info("no resume attached, agent skipped")
		return Response{Reply: NoResumeReply, Intent: a.Intent(), Agent: name}
	}

	resp, err := t.run(ctx, a, req)
	if err != nil {
		failure := &apperr.AgentFailureError{Agent: name, Err: err}
		log.Warn("agent failed", zap.Error(failure))
		return Response{
			Reply:  AgentErrorReply,
			Intent: a.Intent(),
			Agent:  name,
			Failed: true,
		}
	}

	resp.Intent = a.Intent()
	resp.Agent = name
	return resp
}

func (t *Table) run(ctx context.Context, a Agent, req Request) (resp Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	resp, err = a.Respond(ctx, req)
	if err != nil {
		return Response{}, err
	}
	if resp.Reply == "" {
		return Response{}, errors.New("agent returned an empty reply")
	}
	if resp.Content != nil && resp.Content.IsEmpty() {
		return Response{}, errors.New("agent returned an empty resume")
	}
	return resp, nil
}

// Describe lists the registered agents in registration order.
func (t *Table) Describe() []Info {
	infos := make([]Info, 0, len(t.order))
	for _, i := range t.order {
		infos = append(infos, t.agents[i].Info())
	}
	return infos
}
