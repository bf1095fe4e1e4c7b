package agents

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bhanmrinal/cf-project/internal/ai"
	"github.com/bhanmrinal/cf-project/internal/intent"
	"github.com/bhanmrinal/cf-project/internal/research"
	"github.com/bhanmrinal/cf-project/internal/util"
)

const companySystemPrompt = `You are an expert career consultant and resume optimizer specializing in company research.

Your role is to:
1. Research and understand target companies (culture, values, mission, hiring patterns)
2. Optimize resumes to align with specific company preferences
3. Adjust language, tone, and emphasis to match company culture
4. Highlight experiences and skills most relevant to the target company

When optimizing a resume:
- Maintain truthfulness - never fabricate experiences or skills
- Use language and keywords that resonate with the company's values
- Emphasize achievements that align with the company's mission
- Structure content to highlight the most relevant qualifications first
- Keep the professional tone consistent with the company's culture

Output Format:
When providing an optimized resume, format it with clear section headers using "## Section Name" format.
Always explain your reasoning and the specific changes made.`

// CompanyResearcher looks up background on a company. It never fails.
type CompanyResearcher interface {
	Research(ctx context.Context, company string) research.CompanyInfo
}

// CompanyResearch optimizes a resume for a named employer.
type CompanyResearch struct {
	generator  ai.Generator
	researcher CompanyResearcher
	logger     *zap.Logger
}

func NewCompanyResearch(generator ai.Generator, researcher CompanyResearcher, logger *zap.Logger) *CompanyResearch {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompanyResearch{generator: generator, researcher: researcher, logger: logger}
}

func (a *CompanyResearch) Intent() intent.Intent { return intent.CompanyResearch }

func (a *CompanyResearch) RequiresResume() bool { return true }

func (a *CompanyResearch) Info() Info {
	return Info{
		Intent:      intent.CompanyResearch.String(),
		Name:        "Company Research & Optimization",
		Description: "Research companies and optimize your resume to match their culture and values",
		Example:     "Optimize my resume for Google",
	}
}

func (a *CompanyResearch) Respond(ctx context.Context, req Request) (Response, error) {
	company := util.FirstNonEmpty(req.Context.TargetCompany, intent.ExtractCompany(req.Message))
	if company == "" {
		return Response{Reply: noCompanyReply}, nil
	}

	info := research.DefaultInfo(company, nil)
	if a.researcher != nil {
		info = a.researcher.Research(ctx, company)
	}

	response, err := a.generator.GenerateContent(ctx, companySystemPrompt, companyPrompt(req, company, info))
	if err != nil {
		return Response{}, fmt.Errorf("optimize for %s: %w", company, err)
	}

	rev := rewrite(response, req.Resume.Content)
	notes := util.FirstNonEmpty(rev.Notes, "Resume optimized for target company.")

	a.logger.Debug("company optimization finished",
		zap.String("company", company),
		zap.Int("changes", len(rev.Changes)),
		zap.Bool("research_degraded", info.Degraded()),
	)

	return Response{
		Reply:   fmt.Sprintf("I've optimized your resume for %s. Here's what I changed and why:\n\n%s", company, notes),
		Content: rev.Content,
		Label:   "optimized for " + company,
		Payload: map[string]any{
			"target_company": company,
			"company_info":   info,
			"changes":        changesPayload(rev.Changes),
			"reasoning":      notes,
		},
	}, nil
}

func companyPrompt(req Request, company string, info research.CompanyInfo) string {
	skills := "Not available"
	if len(info.KeySkills) > 0 {
		skills = strings.Join(info.KeySkills, ", ")
	}

	return fmt.Sprintf(`User Request: %[1]s

Target Company: %[2]s

Company Information:
- Culture & Values: %[3]s
- Key Skills They Look For: %[4]s
- Industry: %[5]s
- Hiring Notes: %[6]s

Current Resume:
%[7]s

Please optimize this resume for %[2]s. Make the following improvements:
1. Adjust the language and tone to match the company's culture
2. Highlight experiences and achievements most relevant to their industry
3. Incorporate keywords and skills they value
4. Ensure the summary/objective aligns with their mission
5. Reorder or emphasize sections to best match what they're looking for

Provide the optimized resume with clear section headers (## Section Name) and explain your key changes at the end under "Key Changes:".

IMPORTANT: Only modify content that benefits the application. Maintain truthfulness and don't fabricate experiences.`,
		req.Message,
		company,
		util.FirstNonEmpty(info.Culture, "Not available"),
		skills,
		util.FirstNonEmpty(info.Industry, "Not available"),
		util.FirstNonEmpty(info.HiringNotes, "Not available"),
		req.Resume.Content.Text(),
	)
}
