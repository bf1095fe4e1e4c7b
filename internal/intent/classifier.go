package intent

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bhanmrinal/cf-project/internal/ai"
	"github.com/bhanmrinal/cf-project/internal/apperr"
	"github.com/bhanmrinal/cf-project/internal/conversation"
	"github.com/bhanmrinal/cf-project/internal/logger"
	"github.com/bhanmrinal/cf-project/internal/util"
)

const (
	defaultHistoryTurns = 3
	turnPreviewRunes    = 100
	defaultMaxLogLength = 200
)

const systemPrompt = "You classify messages sent to a resume optimization assistant. Answer with exactly one label and nothing else."

type Options struct {
	// KeywordRules enables the regex fast path before the model is asked.
	KeywordRules bool
	// StickyContext routes messages without a rule hit to the topic the
	// conversation already has context for.
	StickyContext bool
	// HistoryTurns is how many recent turns go into the prompt.
	HistoryTurns int
	MaxLogLength int
}

// Classifier picks the intent of a message. It never fails: any completion
// error or unusable answer becomes GeneralChat.
type Classifier struct {
	generator ai.Generator
	logger    *zap.Logger
	opts      Options
}

func NewClassifier(generator ai.Generator, log *zap.Logger, opts Options) *Classifier {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.HistoryTurns <= 0 {
		opts.HistoryTurns = defaultHistoryTurns
	}
	if opts.MaxLogLength <= 0 {
		opts.MaxLogLength = defaultMaxLogLength
	}
	return &Classifier{generator: generator, logger: log, opts: opts}
}

// Classify returns the intent for message given the recent turns and the conversation context.
func (c *Classifier) Classify(ctx context.Context, message string, recent []conversation.Turn, cc conversation.Context) Intent {
	if c.opts.KeywordRules {
		if i, ok := MatchRules(strings.ToLower(message)); ok {
			c.logger.Debug("intent matched keyword rule", zap.String(logger.FieldIntent, i.String()))
			return i
		}
	}

	if c.opts.StickyContext {
		if i, ok := FromContext(cc); ok {
			c.logger.Debug("intent taken from conversation context", zap.String(logger.FieldIntent, i.String()))
			return i
		}
	}

	i, err := c.classifyWithModel(ctx, message, recent)
	if err != nil {
		c.logger.Warn("intent classification unavailable, falling back to general chat", zap.Error(err))
		return GeneralChat
	}
	return i
}

func (c *Classifier) classifyWithModel(ctx context.Context, message string, recent []conversation.Turn) (Intent, error) {
	if c.generator == nil {
		return GeneralChat, fmt.Errorf("%w: no completion service configured", apperr.ErrClassificationUnavailable)
	}

	prompt := c.buildPrompt(message, recent)

	raw, err := c.generator.GenerateContent(ctx, systemPrompt, prompt)
	if err != nil {
		return GeneralChat, fmt.Errorf("%w: %v", apperr.ErrClassificationUnavailable, err)
	}

	i, ok := ParseResponse(raw)
	if !ok {
		c.logger.Debug("unrecognized classification, using general chat",
			zap.String("response_preview", util.TruncateForLog(raw, c.opts.MaxLogLength)),
		)
	}
	return i, nil
}

func (c *Classifier) buildPrompt(message string, recent []conversation.Turn) string {
	if len(recent) > c.opts.HistoryTurns {
		recent = recent[len(recent)-c.opts.HistoryTurns:]
	}

	var b strings.Builder
	b.WriteString("Classify the user's intent for resume optimization.\n\n")

	if len(recent) > 0 {
		b.WriteString("Recent conversation:\n")
		for _, t := range recent {
			fmt.Fprintf(&b, "%s: %s\n", t.Sender, util.Clip(t.Message, turnPreviewRunes))
			if t.Reply != "" {
				fmt.Fprintf(&b, "assistant: %s\n", util.Clip(t.Reply, turnPreviewRunes))
			}
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Current user message: %q\n\nAvailable intents:\n", message)

	labels := make([]string, 0, len(All))
	for _, i := range All {
		fmt.Fprintf(&b, "- %s: %s\n", i, i.Description())
		labels = append(labels, i.String())
	}

	fmt.Fprintf(&b, "\nRespond with ONLY one of: %s.\nIf the intent is unclear or fits none of them, respond with %s.", strings.Join(labels, ", "), GeneralChat)

	return b.String()
}

// ParseResponse maps a model answer to an intent. An exact label wins; otherwise
// the label appearing first in the answer is used. Anything else is GeneralChat
// and reported as not ok.
func ParseResponse(raw string) (Intent, bool) {
	cleaned := ai.CleanResponse(raw)
	if i, ok := Parse(cleaned); ok {
		return i, true
	}

	lower := strings.ToLower(cleaned)
	best, bestIdx := GeneralChat, -1
	for _, i := range All {
		for _, label := range []string{i.String(), strings.ReplaceAll(i.String(), "_", " ")} {
			idx := strings.Index(lower, label)
			if idx != -1 && (bestIdx == -1 || idx < bestIdx) {
				best, bestIdx = i, idx
			}
		}
	}

	return best, bestIdx != -1
}
