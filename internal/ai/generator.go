// Package ai defines the text-completion contract shared by the classifier and the agents.
package ai

import (
	"context"
)

// Provider names accepted in configuration.
const (
	ProviderGemini = "gemini"
	ProviderGroq   = "groq"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Generator is a prompt-in/text-out completion service.
// Implementations own their call-level retries and timeouts.
type Generator interface {
	GenerateContent(ctx context.Context, system, prompt string) (string, error)
	Model() string
}
