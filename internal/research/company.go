package research

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bhanmrinal/cf-project/internal/ai"
	"github.com/bhanmrinal/cf-project/internal/util"
)

const (
	cultureResults    = 5
	cultureSnippets   = 3
	hiringResults     = 3
	hiringSnippets    = 2
	cultureInfoRunes  = 2000
	hiringInfoRunes   = 1000
	summarySystemText = "You are a company research analyst. Extract and summarize company information concisely."
)

// CompanyInfo is what the company research agent knows about a target company.
type CompanyInfo struct {
	Name        string   `json:"company_name"`
	Culture     string   `json:"culture"`
	KeySkills   []string `json:"key_skills"`
	Industry    string   `json:"industry"`
	HiringNotes string   `json:"hiring_notes"`
	Error       string   `json:"error,omitempty"`
}

// Degraded reports whether the info is the fallback used when research failed.
func (c CompanyInfo) Degraded() bool {
	return c.Error != ""
}

func (c CompanyInfo) clone() CompanyInfo {
	c.KeySkills = slices.Clone(c.KeySkills)
	return c
}

// DefaultInfo is used when research fails, so optimization can still go ahead.
func DefaultInfo(company string, err error) CompanyInfo {
	info := CompanyInfo{
		Name:        company,
		Culture:     "Information not available - using general best practices",
		KeySkills:   []string{},
		Industry:    "Unknown",
		HiringNotes: "No specific information found",
	}
	if err != nil {
		info.Error = err.Error()
	}
	return info
}

// Researcher looks companies up: cache first, then web search plus an LLM summary.
type Researcher struct {
	searcher  Searcher
	cache     Cache
	generator ai.Generator
	logger    *zap.Logger
}

// NewResearcher wires a researcher. searcher and cache may be nil: without a
// searcher the summary relies on the model alone, without a cache every call
// researches again.
func NewResearcher(searcher Searcher, cache Cache, generator ai.Generator, logger *zap.Logger) *Researcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Researcher{searcher: searcher, cache: cache, generator: generator, logger: logger}
}

// Research never fails: on any error it returns DefaultInfo carrying the error text.
func (r *Researcher) Research(ctx context.Context, company string) CompanyInfo {
	key := CacheKey(company)
	log := r.logger.With(zap.String("company", company))

	if r.cache != nil {
		cached, ok, err := r.cache.Get(ctx, key)
		switch {
		case err != nil:
			log.Warn("company cache lookup failed", zap.Error(err))
		case ok:
			log.Debug("company info served from cache")
			return *cached
		}
	}

	info, err := r.research(ctx, company)
	if err != nil {
		log.Warn("company research failed, using defaults", zap.Error(err))
		return DefaultInfo(company, err)
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, key, &info); err != nil {
			log.Warn("company cache store failed", zap.Error(err))
		}
	}

	return info
}

func (r *Researcher) research(ctx context.Context, company string) (CompanyInfo, error) {
	var cultureInfo, hiringInfo string

	if r.searcher != nil {
		g, gctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			results, err := r.searcher.Search(gctx, company+" company culture values mission", cultureResults)
			if err != nil {
				return fmt.Errorf("culture search: %w", err)
			}
			cultureInfo = joinSnippets(results, cultureSnippets)
			return nil
		})

		g.Go(func() error {
			results, err := r.searcher.Search(gctx, company+" hiring process interview what they look for", hiringResults)
			if err != nil {
				return fmt.Errorf("hiring search: %w", err)
			}
			hiringInfo = joinSnippets(results, hiringSnippets)
			return nil
		})

		if err := g.Wait(); err != nil {
			return CompanyInfo{}, err
		}
	}

	if r.generator == nil {
		return CompanyInfo{}, fmt.Errorf("no completion service configured")
	}

	response, err := r.generator.GenerateContent(ctx, summarySystemText, summaryPrompt(company, cultureInfo, hiringInfo))
	if err != nil {
		return CompanyInfo{}, fmt.Errorf("summarize company: %w", err)
	}

	return ParseCompanyInfo(response, company), nil
}

func summaryPrompt(company, cultureInfo, hiringInfo string) string {
	return fmt.Sprintf(`Based on the following information about %[1]s, extract key details:

Culture and Values Information:
%[2]s

Hiring Information:
%[3]s

Please extract and summarize:
1. Company culture and values (2-3 sentences)
2. Key skills and qualities they look for
3. Industry and main business areas
4. Any notable hiring preferences or patterns

Format your response as:
CULTURE: <summary>
KEY_SKILLS: <comma-separated list>
INDUSTRY: <industry>
HIRING_NOTES: <notes>`,
		company,
		util.FirstNonEmpty(util.Clip(cultureInfo, cultureInfoRunes), "No search results available."),
		util.FirstNonEmpty(util.Clip(hiringInfo, hiringInfoRunes), "No search results available."),
	)
}

// ParseCompanyInfo reads the CULTURE/KEY_SKILLS/INDUSTRY/HIRING_NOTES summary format.
func ParseCompanyInfo(response, company string) CompanyInfo {
	fields := ai.LabeledFields(response, "CULTURE", "KEY_SKILLS", "INDUSTRY", "HIRING_NOTES")

	return CompanyInfo{
		Name:        company,
		Culture:     fields["CULTURE"],
		KeySkills:   ai.SplitList(fields["KEY_SKILLS"]),
		Industry:    fields["INDUSTRY"],
		HiringNotes: fields["HIRING_NOTES"],
	}
}

func joinSnippets(results []Result, n int) string {
	parts := make([]string, 0, n)
	for _, r := range results {
		if len(parts) == n {
			break
		}
		if s := strings.TrimSpace(r.Snippet); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
