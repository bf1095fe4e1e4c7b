package router

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/bhanmrinal/cf-project/internal/agents"
	"github.com/bhanmrinal/cf-project/internal/apperr"
	"github.com/bhanmrinal/cf-project/internal/conversation"
	"github.com/bhanmrinal/cf-project/internal/intent"
	"github.com/bhanmrinal/cf-project/internal/resume"
	"github.com/bhanmrinal/cf-project/internal/versions"
)

type stubGenerator struct {
	response string
	err      error
}

func (s *stubGenerator) GenerateContent(context.Context, string, string) (string, error) {
	return s.response, s.err
}

func (s *stubGenerator) Model() string { return "stub" }

// editAgent rewrites the summary to the message it received.
type editAgent struct {
	intent   intent.Intent
	panicMsg string
}

func (a *editAgent) Intent() intent.Intent { return a.intent }

func (a *editAgent) RequiresResume() bool { return true }

func (a *editAgent) Info() agents.Info {
	return agents.Info{Intent: a.intent.String(), Name: "edit " + a.intent.String()}
}

func (a *editAgent) Respond(_ context.Context, req agents.Request) (agents.Response, error) {
	if a.panicMsg != "" {
		panic(a.panicMsg)
	}
	content := resume.Content{Sections: []resume.Section{
		{Type: resume.SectionSummary, Title: "Summary", Lines: []string{req.Message}},
	}}
	return agents.Response{
		Reply:   "edited",
		Content: &content,
		Label:   "edited for " + req.Context.TargetCompany,
		Payload: map[string]any{"target_company": req.Context.TargetCompany},
	}, nil
}

type chatAgent struct{}

func (chatAgent) Intent() intent.Intent { return intent.GeneralChat }

func (chatAgent) RequiresResume() bool { return false }

func (chatAgent) Info() agents.Info {
	return agents.Info{Intent: intent.GeneralChat.String(), Name: "chat"}
}

func (chatAgent) Respond(_ context.Context, req agents.Request) (agents.Response, error) {
	return agents.Response{Reply: "echo: " + req.Message}, nil
}

type testEnv struct {
	router        *Router
	conversations *conversation.MemoryStore
	versions      *versions.Store
	backend       *flakyBackend
}

func newTestEnv(t *testing.T, gen *stubGenerator, extra ...agents.Agent) *testEnv {
	t.Helper()

	log := zap.NewNop()
	table, err := agents.NewTable(log, append([]agents.Agent{chatAgent{}}, extra...)...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	backend := &flakyBackend{MemoryBackend: versions.NewMemoryBackend()}
	env := &testEnv{
		conversations: conversation.NewMemoryStore(),
		versions:      versions.New(backend, log),
		backend:       backend,
	}
	classifier := intent.NewClassifier(gen, log, intent.Options{KeywordRules: true})
	env.router = New(env.conversations, env.versions, classifier, table, log, Options{})
	return env
}

func (e *testEnv) start(t *testing.T) string {
	t.Helper()

	c, err := e.router.StartConversation(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return c.ID
}

func (e *testEnv) attach(t *testing.T, conversationID string) resume.Version {
	t.Helper()

	content := resume.Content{Sections: []resume.Section{
		{Type: resume.SectionSummary, Title: "Summary", Lines: []string{"Backend engineer"}},
	}}
	v, err := e.router.AttachResume(context.Background(), conversationID, content, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return v
}

func (e *testEnv) turns(t *testing.T, conversationID string) []conversation.Turn {
	t.Helper()

	turns, err := e.conversations.RecentTurns(context.Background(), conversationID, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return turns
}

type flakyBackend struct {
	*versions.MemoryBackend
	saveErr error
}

func (b *flakyBackend) Save(ctx context.Context, h *resume.History) error {
	if b.saveErr != nil {
		return b.saveErr
	}
	return b.MemoryBackend.Save(ctx, h)
}

type failingTurns struct {
	*conversation.MemoryStore
	err error
}

func (f *failingTurns) AppendTurn(context.Context, string, conversation.Turn) error {
	return f.err
}

func TestHandleTurnWithoutResume(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, &stubGenerator{err: errors.New("must not be called")}, &editAgent{intent: intent.CompanyResearch})
	id := env.start(t)

	reply, err := env.router.HandleTurn(context.Background(), id, "Optimize my resume for Google")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.Reply != agents.NoResumeReply {
		t.Fatalf("unexpected reply %q", reply.Reply)
	}
	if reply.Intent != intent.CompanyResearch.String() {
		t.Fatalf("unexpected intent %q", reply.Intent)
	}
	if reply.Version != nil {
		t.Fatalf("expected no version, got %+v", reply.Version)
	}

	turns := env.turns(t, id)
	if len(turns) != 1 {
		t.Fatalf("expected one turn, got %d", len(turns))
	}
	if turns[0].Sender != "alice" || turns[0].Reply != agents.NoResumeReply || turns[0].VersionSeq != nil {
		t.Fatalf("unexpected turn %+v", turns[0])
	}

	conv, err := env.conversations.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conv.Context.TargetCompany != "Google" {
		t.Fatalf("expected company to be remembered, got %+v", conv.Context)
	}
}

func TestHandleTurnRecordRevertRecord(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t, &stubGenerator{}, &editAgent{intent: intent.CompanyResearch})
	id := env.start(t)
	v0 := env.attach(t, id)
	if v0.Seq != 0 {
		t.Fatalf("expected uploaded resume to be version 0, got %d", v0.Seq)
	}

	first, err := env.router.HandleTurn(ctx, id, "Optimize my resume for Google")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Version == nil || first.Version.Seq != 1 {
		t.Fatalf("expected version 1, got %+v", first.Version)
	}
	if first.Version.Label != "edited for Google" || first.Version.Agent != intent.CompanyResearch.String() {
		t.Fatalf("unexpected version metadata %+v", first.Version)
	}

	if _, err := env.versions.Revert(ctx, v0.ResumeID, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := env.router.HandleTurn(ctx, id, "Optimize my resume for Stripe")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Version == nil || second.Version.Seq != 2 {
		t.Fatalf("expected version 2, got %+v", second.Version)
	}

	history, current, err := env.versions.History(ctx, v0.ResumeID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var seqs []int
	for _, v := range history {
		seqs = append(seqs, v.Seq)
	}
	if len(seqs) != 2 || seqs[0] != 0 || seqs[1] != 2 || current != 2 {
		t.Fatalf("unexpected history %v current %d", seqs, current)
	}

	turns := env.turns(t, id)
	if len(turns) != 2 {
		t.Fatalf("expected two turns, got %d", len(turns))
	}
	if turns[1].VersionSeq == nil || *turns[1].VersionSeq != 2 {
		t.Fatalf("expected second turn to reference version 2, got %+v", turns[1].VersionSeq)
	}
	if turns[1].Payload["target_company"] != "Stripe" {
		t.Fatalf("unexpected payload %+v", turns[1].Payload)
	}
}

func TestHandleTurnContainsAgentFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t, &stubGenerator{}, &editAgent{intent: intent.CompanyResearch, panicMsg: "boom"})
	id := env.start(t)
	v0 := env.attach(t, id)

	reply, err := env.router.HandleTurn(ctx, id, "Optimize my resume for Google")
	if err != nil {
		t.Fatalf("agent failure must not fail the turn: %v", err)
	}
	if !reply.Failed || reply.Reply != agents.AgentErrorReply || strings.Contains(reply.Reply, "boom") {
		t.Fatalf("unexpected reply %+v", reply)
	}
	if reply.Version != nil {
		t.Fatalf("failed agent must not record a version")
	}

	history, current, err := env.versions.History(ctx, v0.ResumeID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 1 || current != 0 {
		t.Fatalf("expected history to be untouched, got %d versions current %d", len(history), current)
	}
	if got := len(env.turns(t, id)); got != 1 {
		t.Fatalf("expected the failed turn to be stored, got %d turns", got)
	}
}

func TestHandleTurnClassificationFallback(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, &stubGenerator{err: errors.New("quota exceeded")}, &editAgent{intent: intent.CompanyResearch})
	id := env.start(t)

	reply, err := env.router.HandleTurn(context.Background(), id, "hello there")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.Intent != intent.GeneralChat.String() || reply.Reply != "echo: hello there" {
		t.Fatalf("unexpected reply %+v", reply)
	}
}

func TestHandleTurnNonASCIIJobDescription(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t, &stubGenerator{response: "job_matching"}, &editAgent{intent: intent.JobMatching})
	id := env.start(t)
	env.attach(t, id)

	message := strings.Repeat("Ⱥ", 10) + " jd: Go, SQL"
	reply, err := env.router.HandleTurn(ctx, id, message)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.Intent != intent.JobMatching.String() || reply.Failed {
		t.Fatalf("unexpected reply %+v", reply)
	}

	conv, err := env.conversations.Get(ctx, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conv.Context.JobDescription != "jd: Go, SQL" {
		t.Fatalf("unexpected job description %q", conv.Context.JobDescription)
	}
}

func TestHandleTurnKeepsTurnOrder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t, &stubGenerator{response: "general_chat"})
	id := env.start(t)

	const n = 5
	for i := range n {
		if _, err := env.router.HandleTurn(ctx, id, fmt.Sprintf("message %d", i)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	turns := env.turns(t, id)
	if len(turns) != n {
		t.Fatalf("expected %d turns, got %d", n, len(turns))
	}
	seen := map[string]bool{}
	for i, turn := range turns {
		if want := fmt.Sprintf("message %d", i); turn.Message != want {
			t.Fatalf("turn %d: got %q, want %q", i, turn.Message, want)
		}
		if seen[turn.ID] {
			t.Fatalf("duplicate turn id %q", turn.ID)
		}
		seen[turn.ID] = true
	}
}

func TestHandleTurnRejectsBadInput(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, &stubGenerator{})
	id := env.start(t)

	if _, err := env.router.HandleTurn(context.Background(), id, "   "); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
	if _, err := env.router.HandleTurn(context.Background(), "missing", "hi"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := env.router.AttachResume(context.Background(), "missing", resume.Content{}, ""); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestHandleTurnSurfacesVersionStoreFailure(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, &stubGenerator{}, &editAgent{intent: intent.CompanyResearch})
	id := env.start(t)
	env.attach(t, id)

	cause := errors.New("disk full")
	env.backend.saveErr = cause

	_, err := env.router.HandleTurn(context.Background(), id, "Optimize my resume for Google")
	if !errors.Is(err, apperr.ErrUpstream) || !errors.Is(err, cause) {
		t.Fatalf("expected upstream error wrapping cause, got %v", err)
	}
	if got := len(env.turns(t, id)); got != 0 {
		t.Fatalf("failed turn must not be stored, got %d turns", got)
	}
}

func TestHandleTurnSurfacesConversationStoreFailure(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, &stubGenerator{response: "general_chat"})
	id := env.start(t)

	cause := errors.New("connection reset")
	env.router.conversations = &failingTurns{MemoryStore: env.conversations, err: cause}

	_, err := env.router.HandleTurn(context.Background(), id, "hi")
	if !errors.Is(err, apperr.ErrUpstream) || !errors.Is(err, cause) {
		t.Fatalf("expected upstream error wrapping cause, got %v", err)
	}
}
