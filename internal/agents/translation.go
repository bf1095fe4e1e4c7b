package agents

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/bhanmrinal/cf-project/internal/ai"
	"github.com/bhanmrinal/cf-project/internal/intent"
	"github.com/bhanmrinal/cf-project/internal/locale"
	"github.com/bhanmrinal/cf-project/internal/util"
)

const translationSystemPrompt = `You are an expert professional translator and international career consultant.

Your role is to:
1. Translate resumes accurately while maintaining professional quality
2. Adapt content for specific cultural and regional contexts
3. Apply local resume formatting conventions
4. Ensure industry-specific terminology is correctly translated
5. Maintain the candidate's qualifications and achievements accurately

Translation Guidelines:
- Use formal, professional language appropriate for the target region
- Preserve technical terms that are commonly used in English (e.g., "software engineer")
- Adapt date formats, address formats to local conventions
- Translate job titles to their local equivalents where appropriate
- Maintain action verbs and achievement-focused language

Cultural Adaptation:
- Adjust the level of personal information based on regional norms
- Modify the resume structure if local conventions differ
- Include region-specific sections if needed (e.g., photo placeholder for Germany)
- Adapt the tone to match local professional communication styles

Output Format:
- Provide the translated resume with "## Section Name" headers (in the target language)
- Include a brief note about cultural adaptations made
- Highlight any terms kept in English and why`

// Translation translates and localizes a resume for a language and regional market.
type Translation struct {
	generator ai.Generator
	logger    *zap.Logger
}

func NewTranslation(generator ai.Generator, logger *zap.Logger) *Translation {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Translation{generator: generator, logger: logger}
}

func (a *Translation) Intent() intent.Intent { return intent.Translation }

func (a *Translation) RequiresResume() bool { return true }

func (a *Translation) Info() Info {
	return Info{
		Intent:      intent.Translation.String(),
		Name:        "Translation & Localization",
		Description: "Translate and localize your resume for different markets",
		Example:     "Translate my resume to Spanish for Mexico",
	}
}

func (a *Translation) Respond(ctx context.Context, req Request) (Response, error) {
	lang, requested := locale.DetectLanguage(req.Message)
	if lang.Name == "" {
		if requested != "" {
			return Response{Reply: unsupportedLanguageReply(requested)}, nil
		}
		known, ok := locale.Lookup(req.Context.TargetLanguage)
		if !ok {
			return Response{Reply: languageHelpReply()}, nil
		}
		lang = known
	}

	region := targetRegion(lang, req)
	conventions, hasConventions := locale.Conventions[region]

	response, err := a.generator.GenerateContent(ctx, translationSystemPrompt, translationPrompt(req, lang, region, conventions, hasConventions))
	if err != nil {
		return Response{}, fmt.Errorf("translate to %s: %w", lang.Name, err)
	}

	rev := rewrite(response, req.Resume.Content)
	notes := util.FirstNonEmpty(rev.Notes, "Resume translated and adapted for the target market.")

	a.logger.Debug("translation finished",
		zap.String("language", lang.Name),
		zap.String("region", region),
		zap.Int("changes", len(rev.Changes)),
	)

	payload := map[string]any{
		"target_language": lang.Name,
		"language_code":   lang.Code,
		"target_region":   region,
		"changes":         changesPayload(rev.Changes),
		"cultural_notes":  notes,
	}
	if hasConventions {
		payload["regional_conventions"] = conventions
	}

	return Response{
		Reply: fmt.Sprintf(`**Translation Complete**

**Target Language:** %s
**Target Region:** %s

**Regional Conventions Applied:**
%s

**Cultural Adaptations:**
%s

Your resume has been translated and localized. Review the changes below:`,
			lang.Title(), region, formatConventions(conventions, hasConventions), notes),
		Content: rev.Content,
		Label:   fmt.Sprintf("translated to %s (%s)", lang.Title(), region),
		Payload: payload,
	}, nil
}

// targetRegion prefers a region named in the message, then one remembered in the
// conversation if it fits the language, then the language default.
func targetRegion(lang locale.Language, req Request) string {
	if region := locale.DetectRegion(req.Message); region != "" {
		return region
	}
	if slices.Contains(lang.Regions, req.Context.TargetRegion) {
		return req.Context.TargetRegion
	}
	return lang.DefaultRegion()
}

func conventionLines(c locale.Convention) []string {
	return []string{
		"Photo: " + c.Photo,
		"Personal Info: " + c.PersonalInfo,
		"Format: " + c.Format,
		"Length: " + c.Length,
		"Notes: " + c.Notes,
	}
}

func formatConventions(c locale.Convention, ok bool) string {
	if !ok {
		return "- Standard international format applied"
	}
	lines := conventionLines(c)
	for i, l := range lines {
		label, value, _ := strings.Cut(l, ": ")
		lines[i] = fmt.Sprintf("- **%s:** %s", label, value)
	}
	return strings.Join(lines, "\n")
}

func translationPrompt(req Request, lang locale.Language, region string, c locale.Convention, ok bool) string {
	conventions := "Standard international format"
	if ok {
		lines := conventionLines(c)
		for i := range lines {
			lines[i] = "- " + lines[i]
		}
		conventions = strings.Join(lines, "\n")
	}

	return fmt.Sprintf(`User Request: %[1]s

Target Language: %[2]s
Target Region/Market: %[3]s

Regional Resume Conventions for %[3]s:
%[4]s

Original Resume:
%[5]s

Please translate and localize this resume for the %[3]s market:

1. Translate all content to %[2]s
2. Apply regional formatting conventions
3. Adapt section headers to local standards
4. Translate job titles appropriately (keep technical terms in English if commonly used)
5. Adjust date formats to local conventions
6. Modify personal information section based on regional norms

Provide the translated resume with section headers in %[2]s using "## Section Name" format.

At the end, include a brief note titled "CULTURAL_NOTES:" explaining:
- Key cultural adaptations made
- Any terms kept in English and why
- Suggestions for additional localization (e.g., adding photo for German market)

IMPORTANT: Maintain accuracy of qualifications and achievements. Do not embellish or change factual content.`,
		req.Message, lang.Title(), region, conventions, req.Resume.Content.Text())
}
