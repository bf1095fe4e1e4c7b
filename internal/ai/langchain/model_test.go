package langchain

import (
	"context"
	"errors"
	"testing"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

type fakeLLM struct {
	messages []llms.MessageContent
	opts     llms.CallOptions
	response *llms.ContentResponse
	err      error
}

func (f *fakeLLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.messages = messages
	for _, opt := range options {
		opt(&f.opts)
	}
	return f.response, f.err
}

func (f *fakeLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func TestModelGenerateContent(t *testing.T) {
	temp := float32(0.1)
	llm := &fakeLLM{response: &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: " translation \n"}}}}
	m := newModel(llm, "llama", Options{Provider: "groq", Temperature: &temp}, zap.NewNop())

	out, err := m.GenerateContent(context.Background(), "classify intents", "translate to german")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "translation" {
		t.Fatalf("unexpected output %q", out)
	}

	if len(llm.messages) != 2 {
		t.Fatalf("expected system and human messages, got %d", len(llm.messages))
	}
	if llm.messages[0].Role != llms.ChatMessageTypeSystem || llm.messages[1].Role != llms.ChatMessageTypeHuman {
		t.Fatalf("unexpected roles %s/%s", llm.messages[0].Role, llm.messages[1].Role)
	}
	if llm.opts.Temperature < 0.09 || llm.opts.Temperature > 0.11 {
		t.Fatalf("expected temperature option, got %v", llm.opts.Temperature)
	}
}

func TestModelGenerateContentErrors(t *testing.T) {
	tests := []struct {
		name string
		llm  *fakeLLM
	}{
		{name: "call fails", llm: &fakeLLM{err: errors.New("boom")}},
		{name: "no choices", llm: &fakeLLM{response: &llms.ContentResponse{}}},
		{name: "empty content", llm: &fakeLLM{response: &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: "  "}}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newModel(tt.llm, "gpt", Options{Provider: "openai"}, zap.NewNop())
			if _, err := m.GenerateContent(context.Background(), "", "hello"); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestNewModelRequiresAPIKey(t *testing.T) {
	if _, err := NewModel(Options{Provider: "groq"}, zap.NewNop()); err == nil {
		t.Fatalf("expected error without api key")
	}
	if _, err := NewModel(Options{Provider: "anthropic", APIKey: "x"}, zap.NewNop()); err == nil {
		t.Fatalf("expected error for unsupported provider")
	}
}
