// Package langchain adapts langchaingo chat models (Groq, OpenAI, Ollama) to ai.Generator.
package langchain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"

	"github.com/bhanmrinal/cf-project/internal/ai"
	"github.com/bhanmrinal/cf-project/internal/logger"
	"github.com/bhanmrinal/cf-project/internal/util"
)

// GroqBaseURL is Groq's OpenAI-compatible endpoint.
const GroqBaseURL = "https://api.groq.com/openai/v1"

const (
	defaultGroqModel    = "llama-3.3-70b-versatile"
	defaultOpenAIModel  = "gpt-4o-mini"
	defaultOllamaModel  = "llama3.1"
	defaultMaxLogLength = 200
)

// Options configures a langchaingo-backed model.
type Options struct {
	Provider     string
	Model        string
	APIKey       string
	BaseURL      string
	Temperature  *float32
	MaxLogLength int
}

// Model wraps a langchaingo LLM for system + user prompt completion.
type Model struct {
	llm         llms.Model
	modelName   string
	temperature *float32
	maxLogLen   int
	logger      *zap.Logger
}

var _ ai.Generator = (*Model)(nil)

// NewModel creates an LLM model for the configured provider.
func NewModel(opts Options, log *zap.Logger) (*Model, error) {
	var (
		model llms.Model
		err   error
		name  = strings.TrimSpace(opts.Model)
	)

	switch opts.Provider {
	case ai.ProviderGroq, ai.ProviderOpenAI:
		if strings.TrimSpace(opts.APIKey) == "" {
			return nil, fmt.Errorf("%s api key is required", opts.Provider)
		}

		baseURL := strings.TrimSpace(opts.BaseURL)
		if name == "" {
			name = defaultOpenAIModel
		}
		if opts.Provider == ai.ProviderGroq {
			if baseURL == "" {
				baseURL = GroqBaseURL
			}
			if strings.TrimSpace(opts.Model) == "" {
				name = defaultGroqModel
			}
		}

		clientOpts := []openai.Option{
			openai.WithToken(opts.APIKey),
			openai.WithModel(name),
		}
		if baseURL != "" {
			clientOpts = append(clientOpts, openai.WithBaseURL(baseURL))
		}

		model, err = openai.New(clientOpts...)
		if err != nil {
			return nil, fmt.Errorf("create %s model: %w", opts.Provider, err)
		}

	case ai.ProviderOllama:
		if name == "" {
			name = defaultOllamaModel
		}

		clientOpts := []ollama.Option{ollama.WithModel(name)}
		if baseURL := strings.TrimSpace(opts.BaseURL); baseURL != "" {
			clientOpts = append(clientOpts, ollama.WithServerURL(baseURL))
		}

		model, err = ollama.New(clientOpts...)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", opts.Provider)
	}

	return newModel(model, name, opts, log), nil
}

func newModel(model llms.Model, name string, opts Options, log *zap.Logger) *Model {
	maxLogLen := opts.MaxLogLength
	if maxLogLen <= 0 {
		maxLogLen = defaultMaxLogLength
	}

	return &Model{
		llm:         model,
		modelName:   name,
		temperature: opts.Temperature,
		maxLogLen:   maxLogLen,
		logger:      logger.WithCommonFields(log, opts.Provider, name),
	}
}

// GenerateContent sends the system and user prompts and returns the first choice.
func (m *Model) GenerateContent(ctx context.Context, system, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	messages := make([]llms.MessageContent, 0, 2)
	if system = strings.TrimSpace(system); system != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, system))
	}
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, prompt))

	var callOpts []llms.CallOption
	if m.temperature != nil {
		callOpts = append(callOpts, llms.WithTemperature(float64(*m.temperature)))
	}

	m.logger.Debug("llm generate content request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", util.TruncateForLog(prompt, m.maxLogLen)),
	)

	response, err := m.llm.GenerateContent(ctx, messages, callOpts...)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", errors.New("no response choices")
	}

	output := strings.TrimSpace(response.Choices[0].Content)
	if output == "" {
		return "", errors.New("llm returned empty response")
	}

	m.logger.Debug("llm generate content response",
		zap.Int("response_length", utf8.RuneCountInString(output)),
		zap.String("response_preview", util.TruncateForLog(output, m.maxLogLen)),
	)

	return output, nil
}

// Model returns the LLM model name.
func (m *Model) Model() string {
	return m.modelName
}
