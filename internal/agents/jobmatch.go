package agents

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/bhanmrinal/cf-project/internal/ai"
	"github.com/bhanmrinal/cf-project/internal/intent"
	"github.com/bhanmrinal/cf-project/internal/util"
)

const (
	jobMatchSystemPrompt = `You are an expert ATS (Applicant Tracking System) specialist and career coach.

Your role is to:
1. Analyze job descriptions to identify key requirements, skills, and qualifications
2. Compare resumes against job requirements to calculate match scores
3. Identify gaps between resume content and job requirements
4. Restructure and optimize resumes to better match specific job descriptions
5. Provide actionable recommendations to improve match rates

When analyzing and optimizing:
- Extract both explicit requirements and implied preferences from job descriptions
- Consider both hard skills (technical) and soft skills
- Identify keywords that ATS systems would look for
- Prioritize changes that have the highest impact on match scores
- Maintain truthfulness - suggest highlighting existing skills, not fabricating new ones

Output Format:
- Provide match scores as percentages with breakdowns
- List skill gaps clearly with suggestions
- Format optimized resumes with "## Section Name" headers
- Always explain your analysis and recommendations`

	analysisSystemPrompt = "You are a job description analyst. Extract information precisely and concisely."
	semanticSystemPrompt = "You are an expert recruiter. Evaluate resume-job fit semantically. Respond with only a number 0-100."

	jobDescriptionRunes = 2000
	semanticResumeRunes = 3000
	defaultSemantic     = 50.0
)

// Keyword score weights, and the share of the keyword score in the overall score.
const (
	weightRequired  = 0.4
	weightPreferred = 0.2
	weightSoft      = 0.15
	weightKeywords  = 0.25
	keywordShare    = 0.6
)

// synonymGroups lets a skill match when any term of its group appears in the resume.
var synonymGroups = [][]string{
	{"python", "py", "django", "flask", "fastapi", "pytorch", "tensorflow"},
	{"programming", "coding", "development", "software", "engineer"},
	{"ml", "machine learning", "deep learning", "ai", "artificial intelligence", "neural network"},
	{"data", "analytics", "analysis", "statistics", "statistical"},
	{"math", "mathematics", "mathematical", "calculus", "linear algebra", "probability"},
	{"communication", "communicate", "presentation", "written", "verbal", "articulate"},
	{"leadership", "lead", "led", "leading", "manage", "managed", "team lead"},
	{"problem solving", "problem-solving", "analytical", "critical thinking", "debug", "troubleshoot"},
	{"teamwork", "team", "collaborate", "collaboration", "cross-functional"},
	{"agile", "scrum", "sprint", "kanban", "jira"},
	{"cloud", "aws", "azure", "gcp", "google cloud", "serverless"},
	{"database", "sql", "mysql", "postgresql", "mongodb", "nosql", "redis"},
	{"api", "rest", "restful", "graphql", "microservices"},
	{"testing", "test", "unit test", "pytest", "jest", "qa", "quality"},
	{"git", "github", "gitlab", "version control", "ci/cd"},
	{"degree", "bachelor", "master", "b.tech", "b.e.", "m.tech", "phd", "graduate"},
	{"engineering", "engineer", "b.tech", "b.e.", "computer science", "cs", "ece", "electrical"},
}

// JobAnalysis is the structured reading of a job description.
type JobAnalysis struct {
	RequiredSkills      []string `json:"required_skills"`
	PreferredSkills     []string `json:"preferred_skills"`
	SoftSkills          []string `json:"soft_skills"`
	ExperienceYears     *int     `json:"experience_years"`
	Education           string   `json:"education"`
	KeyResponsibilities []string `json:"key_responsibilities"`
	Keywords            []string `json:"keywords"`
	CompanyValues       []string `json:"company_values"`
}

// SkillMatch is the outcome of matching one skill category against the resume.
type SkillMatch struct {
	Score   float64  `json:"score"`
	Found   []string `json:"found"`
	Missing []string `json:"missing"`

	ratio float64
}

// MatchResult is the score breakdown returned as the turn payload.
type MatchResult struct {
	OverallScore    float64    `json:"overall_score"`
	KeywordScore    float64    `json:"keyword_score"`
	SemanticScore   float64    `json:"semantic_score"`
	RequiredSkills  SkillMatch `json:"required_skills"`
	PreferredSkills SkillMatch `json:"preferred_skills"`
	SoftSkills      SkillMatch `json:"soft_skills"`
	Keywords        SkillMatch `json:"keywords"`
	SkillGaps       []string   `json:"skill_gaps"`
	Recommendations []string   `json:"recommendations"`

	keyword float64
}

// Rating is the one-line verdict for the overall score.
func (m MatchResult) Rating() string {
	switch {
	case m.OverallScore >= 80:
		return "Excellent match!"
	case m.OverallScore >= 60:
		return "Good match with room for improvement"
	case m.OverallScore >= 40:
		return "Moderate match - optimization recommended"
	default:
		return "Low match - consider highlighting transferable skills"
	}
}

// JobMatching scores a resume against a job description and rewrites it to fit.
type JobMatching struct {
	generator ai.Generator
	logger    *zap.Logger
}

func NewJobMatching(generator ai.Generator, logger *zap.Logger) *JobMatching {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JobMatching{generator: generator, logger: logger}
}

func (a *JobMatching) Intent() intent.Intent { return intent.JobMatching }

func (a *JobMatching) RequiresResume() bool { return true }

func (a *JobMatching) Info() Info {
	return Info{
		Intent:      intent.JobMatching.String(),
		Name:        "Job Description Matching",
		Description: "Analyze job descriptions, calculate match scores, and identify skill gaps",
		Example:     "Match my resume to this job description: [paste JD]",
	}
}

func (a *JobMatching) Respond(ctx context.Context, req Request) (Response, error) {
	jd := util.FirstNonEmpty(req.Context.JobDescription, intent.ExtractJobDescription(req.Message))
	if jd == "" {
		return Response{Reply: noJobDescriptionReply}, nil
	}

	analysisText, err := a.generator.GenerateContent(ctx, analysisSystemPrompt, analysisPrompt(jd))
	if err != nil {
		return Response{}, fmt.Errorf("analyze job description: %w", err)
	}
	analysis := ParseJobAnalysis(analysisText)

	resumeText := req.Resume.Content.Text()
	match := ScoreKeywords(resumeText, analysis)
	semantic := a.semanticScore(ctx, resumeText, analysis)
	match.applySemantic(semantic)

	response, err := a.generator.GenerateContent(ctx, jobMatchSystemPrompt, jobMatchPrompt(req, jd, analysis, match))
	if err != nil {
		return Response{}, fmt.Errorf("optimize for job description: %w", err)
	}

	rev := rewrite(response, req.Resume.Content)

	a.logger.Debug("job match finished",
		zap.Float64("overall_score", match.OverallScore),
		zap.Float64("semantic_score", match.SemanticScore),
		zap.Int("changes", len(rev.Changes)),
	)

	return Response{
		Reply:   matchReply(match, rev.Content != nil),
		Content: rev.Content,
		Label:   "matched to job description",
		Payload: map[string]any{
			"job_analysis": analysis,
			"match_result": match,
			"changes":      changesPayload(rev.Changes),
			"reasoning":    util.FirstNonEmpty(rev.Notes, "Resume optimized to better match the job requirements."),
		},
	}, nil
}

// semanticScore asks the model for a 0-100 fit rating. Failures give the neutral default.
func (a *JobMatching) semanticScore(ctx context.Context, resumeText string, analysis JobAnalysis) float64 {
	prompt := fmt.Sprintf(`Analyze how well this resume matches the job requirements.
Consider context and meaning, not just exact keywords.

RESUME:
%s

JOB REQUIREMENTS:
- Required Skills: %s
- Preferred Skills: %s
- Soft Skills: %s

Rate the match from 0-100 considering:
1. Does the candidate have equivalent/transferable skills even if not exact keywords?
2. Does their experience demonstrate the required capabilities?
3. Do their projects/achievements show relevant expertise?

Respond with ONLY a number between 0-100, nothing else.`,
		util.Clip(resumeText, semanticResumeRunes),
		strings.Join(analysis.RequiredSkills, ", "),
		strings.Join(analysis.PreferredSkills, ", "),
		strings.Join(analysis.SoftSkills, ", "),
	)

	response, err := a.generator.GenerateContent(ctx, semanticSystemPrompt, prompt)
	if err != nil {
		a.logger.Debug("semantic score unavailable, using default", zap.Error(err))
		return defaultSemantic
	}

	n, ok := ai.FirstInt(response)
	if !ok {
		return defaultSemantic
	}
	return float64(min(100, max(0, n)))
}

func analysisPrompt(jd string) string {
	return fmt.Sprintf(`Analyze the following job description and extract:

Job Description:
%s

Please extract and categorize:
1. REQUIRED_SKILLS: Technical/hard skills that are required (comma-separated)
2. PREFERRED_SKILLS: Skills that are preferred but not required (comma-separated)
3. SOFT_SKILLS: Soft skills and qualities mentioned (comma-separated)
4. EXPERIENCE_YEARS: Minimum years of experience required (number or "Not specified")
5. EDUCATION: Education requirements
6. KEY_RESPONSIBILITIES: Main job responsibilities (bullet points)
7. KEYWORDS: Important keywords for ATS matching (comma-separated)
8. COMPANY_VALUES: Any company values or culture indicators mentioned

Format your response exactly as:
REQUIRED_SKILLS: skill1, skill2, skill3
PREFERRED_SKILLS: skill1, skill2
SOFT_SKILLS: skill1, skill2
EXPERIENCE_YEARS: X
EDUCATION: requirement
KEY_RESPONSIBILITIES:
- responsibility 1
- responsibility 2
KEYWORDS: keyword1, keyword2, keyword3
COMPANY_VALUES: value1, value2`, jd)
}

// ParseJobAnalysis reads the labeled analysis format. Missing labels leave fields empty.
func ParseJobAnalysis(response string) JobAnalysis {
	f := ai.LabeledFields(response,
		"REQUIRED_SKILLS", "PREFERRED_SKILLS", "SOFT_SKILLS", "EXPERIENCE_YEARS",
		"EDUCATION", "KEY_RESPONSIBILITIES", "KEYWORDS", "COMPANY_VALUES",
	)

	analysis := JobAnalysis{
		RequiredSkills:      ai.SplitList(f["REQUIRED_SKILLS"]),
		PreferredSkills:     ai.SplitList(f["PREFERRED_SKILLS"]),
		SoftSkills:          ai.SplitList(f["SOFT_SKILLS"]),
		Education:           f["EDUCATION"],
		KeyResponsibilities: ai.BulletLines(f["KEY_RESPONSIBILITIES"]),
		Keywords:            ai.SplitList(f["KEYWORDS"]),
		CompanyValues:       ai.SplitList(f["COMPANY_VALUES"]),
	}
	if n, ok := ai.FirstInt(f["EXPERIENCE_YEARS"]); ok {
		analysis.ExperienceYears = &n
	}
	if analysis.KeyResponsibilities == nil {
		analysis.KeyResponsibilities = []string{}
	}

	return analysis
}

// ScoreKeywords computes the keyword half of the match. The overall score
// equals the keyword score until a semantic score is applied.
func ScoreKeywords(resumeText string, analysis JobAnalysis) MatchResult {
	text := strings.ToLower(resumeText)

	m := MatchResult{
		RequiredSkills:  matchSkills(text, analysis.RequiredSkills),
		PreferredSkills: matchSkills(text, analysis.PreferredSkills),
		SoftSkills:      matchSkills(text, analysis.SoftSkills),
		Keywords:        matchSkills(text, analysis.Keywords),
	}

	m.keyword = m.RequiredSkills.ratio*weightRequired +
		m.PreferredSkills.ratio*weightPreferred +
		m.SoftSkills.ratio*weightSoft +
		m.Keywords.ratio*weightKeywords
	m.KeywordScore = round1(m.keyword)
	m.OverallScore = m.KeywordScore

	m.SkillGaps = append(append([]string{}, m.RequiredSkills.Missing...), firstN(m.PreferredSkills.Missing, 3)...)
	m.Recommendations = recommendations(m.RequiredSkills.Missing, m.PreferredSkills.Missing, m.SoftSkills.Missing)

	return m
}

func (m *MatchResult) applySemantic(score float64) {
	m.SemanticScore = round1(score)
	m.OverallScore = round1(m.keyword*keywordShare + score*(1-keywordShare))
}

func matchSkills(lowerResume string, skills []string) SkillMatch {
	m := SkillMatch{Found: []string{}, Missing: []string{}}
	for _, skill := range skills {
		if skillPresent(lowerResume, strings.ToLower(strings.TrimSpace(skill))) {
			m.Found = append(m.Found, skill)
		} else {
			m.Missing = append(m.Missing, skill)
		}
	}

	total := max(len(skills), 1)
	m.ratio = float64(len(m.Found)) / float64(total) * 100
	m.Score = round1(m.ratio)
	return m
}

func skillPresent(lowerResume, skill string) bool {
	variants := []string{
		skill,
		strings.ReplaceAll(skill, "-", " "),
		strings.ReplaceAll(skill, " ", "-"),
		strings.ReplaceAll(skill, " ", ""),
	}
	for _, v := range variants {
		if v != "" && strings.Contains(lowerResume, v) {
			return true
		}
	}

	for _, group := range synonymGroups {
		if !groupCovers(group, skill) {
			continue
		}
		for _, syn := range group {
			if strings.Contains(lowerResume, syn) {
				return true
			}
		}
	}
	return false
}

// groupCovers reports whether a skill belongs to a synonym group.
func groupCovers(group []string, skill string) bool {
	for _, syn := range group {
		if syn == skill || strings.Contains(skill, syn) {
			return true
		}
	}
	return false
}

func recommendations(requiredMissing, preferredMissing, softMissing []string) []string {
	var out []string
	if len(requiredMissing) > 0 {
		out = append(out, "Critical: Add or highlight experience with: "+strings.Join(firstN(requiredMissing, 5), ", "))
	}
	if len(preferredMissing) > 0 {
		out = append(out, "Recommended: Consider adding: "+strings.Join(firstN(preferredMissing, 3), ", "))
	}
	if len(softMissing) > 0 {
		out = append(out, "Soft skills to demonstrate: "+strings.Join(firstN(softMissing, 3), ", "))
	}
	if len(out) == 0 {
		out = append(out, "Your resume is well-aligned with this job!")
	}
	return out
}

func jobMatchPrompt(req Request, jd string, analysis JobAnalysis, match MatchResult) string {
	return fmt.Sprintf(`User Request: %s

Job Description:
%s

Job Analysis:
- Required Skills: %s
- Preferred Skills: %s
- Soft Skills: %s
- Key Responsibilities: %s
- Important Keywords: %s

Current Match Score: %s%%
- Required Skills Match: %s%%
- Missing Required Skills: %s
- Missing Keywords: %s

Current Resume:
%s

Please optimize this resume to better match the job description:
1. Incorporate missing keywords naturally where the candidate has relevant experience
2. Restructure bullet points to emphasize relevant responsibilities
3. Highlight transferable skills that match the requirements
4. Ensure the summary/objective aligns with the role
5. Use action verbs and quantifiable achievements where possible

Provide the optimized resume with clear section headers (## Section Name).
At the end, under "Key Changes:", explain the key changes made and the expected improvement in match score.

IMPORTANT: Only add skills/keywords where the candidate has genuine experience. Do not fabricate qualifications.`,
		req.Message,
		util.Clip(jd, jobDescriptionRunes),
		strings.Join(analysis.RequiredSkills, ", "),
		strings.Join(analysis.PreferredSkills, ", "),
		strings.Join(analysis.SoftSkills, ", "),
		strings.Join(firstN(analysis.KeyResponsibilities, 5), "; "),
		strings.Join(analysis.Keywords, ", "),
		formatScore(match.OverallScore),
		formatScore(match.RequiredSkills.Score),
		strings.Join(match.RequiredSkills.Missing, ", "),
		strings.Join(firstN(match.Keywords.Missing, 10), ", "),
		req.Resume.Content.Text(),
	)
}

func matchReply(m MatchResult, rewritten bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "**Match Analysis Complete** (Hybrid Keyword + Semantic Analysis)\n\n")
	fmt.Fprintf(&b, "**Overall Match Score: %s%%** - %s\n\n", formatScore(m.OverallScore), m.Rating())
	fmt.Fprintf(&b, "**Scoring Method:**\n")
	fmt.Fprintf(&b, "- Keyword Match: %s%% (exact skill/keyword matching)\n", formatScore(m.KeywordScore))
	fmt.Fprintf(&b, "- Semantic Match: %s%% (context-aware, transferable skills)\n\n", formatScore(m.SemanticScore))
	fmt.Fprintf(&b, "**Score Breakdown:**\n")
	fmt.Fprintf(&b, "- Required Skills: %s%%\n", formatScore(m.RequiredSkills.Score))
	fmt.Fprintf(&b, "- Preferred Skills: %s%%\n", formatScore(m.PreferredSkills.Score))
	fmt.Fprintf(&b, "- Soft Skills: %s%%\n", formatScore(m.SoftSkills.Score))
	fmt.Fprintf(&b, "- Keywords: %s%%\n\n", formatScore(m.Keywords.Score))

	b.WriteString("**Skills Found in Your Resume:**\n")
	found := firstN(append(append([]string{}, m.RequiredSkills.Found...), m.PreferredSkills.Found...), 8)
	if len(found) == 0 {
		b.WriteString("- None of the listed skills were found\n")
	}
	for _, s := range found {
		fmt.Fprintf(&b, "- %s\n", s)
	}

	b.WriteString("\n**Skill Gaps to Address:**\n")
	if len(m.SkillGaps) == 0 {
		b.WriteString("- None - great job!\n")
	}
	for _, gap := range firstN(m.SkillGaps, 5) {
		fmt.Fprintf(&b, "- %s\n", gap)
	}

	b.WriteString("\n**Recommendations:**\n")
	for _, r := range m.Recommendations {
		fmt.Fprintf(&b, "- %s\n", r)
	}

	if rewritten {
		b.WriteString("\nI've optimized your resume to better match this position. See the changes below:")
	} else {
		b.WriteString("\nYour resume already covers this position well, so I left it unchanged.")
	}

	return b.String()
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func formatScore(v float64) string {
	return fmt.Sprintf("%.1f", v)
}

func firstN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
