package agents

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bhanmrinal/cf-project/internal/ai"
	"github.com/bhanmrinal/cf-project/internal/intent"
	"github.com/bhanmrinal/cf-project/internal/util"
)

const generalSystemPrompt = "You are a helpful career assistant for a resume optimization service. Keep answers short and practical."

const capabilities = `Available capabilities:
1. **Company Research & Optimization**: I can research specific companies and optimize your resume to match their culture and values. Example: "Optimize my resume for Google"

2. **Job Description Matching**: I can analyze job descriptions, calculate match scores, identify skill gaps, and optimize your resume for specific positions. Example: "Match my resume to this job description: [paste JD]"

3. **Translation & Localization**: I can translate your resume to different languages and adapt it for specific regional markets. Example: "Translate my resume to Spanish for the Mexican market"`

// GeneralChat answers everything the specialized agents do not handle. It needs
// no resume and falls back to a static capability list when the model fails.
type GeneralChat struct {
	generator ai.Generator
	logger    *zap.Logger
}

func NewGeneralChat(generator ai.Generator, logger *zap.Logger) *GeneralChat {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeneralChat{generator: generator, logger: logger}
}

func (a *GeneralChat) Intent() intent.Intent { return intent.GeneralChat }

func (a *GeneralChat) RequiresResume() bool { return false }

func (a *GeneralChat) Info() Info {
	return Info{
		Intent:      intent.GeneralChat.String(),
		Name:        "General Assistance",
		Description: "Answer questions and explain how to use the other agents",
	}
}

func (a *GeneralChat) Respond(ctx context.Context, req Request) (Response, error) {
	if a.generator == nil {
		return Response{Reply: staticGuidance(req)}, nil
	}

	reply, err := a.generator.GenerateContent(ctx, generalSystemPrompt, generalPrompt(req))
	reply = strings.TrimSpace(reply)
	if err != nil || reply == "" {
		a.logger.Warn("general chat completion unavailable, using static guidance", zap.Error(err))
		return Response{Reply: staticGuidance(req)}, nil
	}

	return Response{Reply: reply}, nil
}

func generalPrompt(req Request) string {
	situation := "The user has uploaded their resume and is asking:"
	if req.Resume == nil {
		situation = "The user has not uploaded a resume yet and is asking:"
	}

	var history strings.Builder
	for _, t := range req.Recent {
		fmt.Fprintf(&history, "%s: %s\nassistant: %s\n", t.Sender, util.Clip(t.Message, 200), util.Clip(t.Reply, 200))
	}

	prompt := fmt.Sprintf("%s\n\n%q\n\n%s\n\nPlease help the user understand how to use these features or clarify their request.", situation, req.Message, capabilities)
	if history.Len() > 0 {
		prompt = "Recent conversation:\n" + history.String() + "\n" + prompt
	}
	return prompt
}

func staticGuidance(req Request) string {
	intro := "I can help you tailor your resume."
	if req.Resume == nil {
		intro = "Upload a resume and I can help you tailor it."
	}
	return intro + "\n\n" + capabilities
}
