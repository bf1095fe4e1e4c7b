package intent

import (
	"regexp"

	"github.com/bhanmrinal/cf-project/internal/conversation"
)

type rule struct {
	intent   Intent
	patterns []*regexp.Regexp
}

// rules run in order against the lowercased message; the first hit wins.
var rules = []rule{
	{
		intent: CompanyResearch,
		patterns: compile(
			`optimi[sz]e.*(?:for|at)\s+\w+`,
			`(?:target|apply|applying).*company`,
			`\b(?:google|amazon|microsoft|meta|apple|netflix|spotify|uber|airbnb)\b`,
			`company\s+(?:culture|values|research)`,
			`tailor.*(?:for|to)\s+\w+`,
		),
	},
	{
		intent: JobMatching,
		patterns: compile(
			`job\s+description`,
			`match.*(?:job|position|role)`,
			`\bjd\b|job desc`,
			`skill\s+gap`,
			`match\s+score`,
			`requirements`,
			`fit.*(?:job|position|role)`,
			`\bats\b`,
		),
	},
	{
		intent: Translation,
		patterns: compile(
			`translat`,
			`spanish|french|german|portuguese|italian|japanese|chinese|korean|arabic|hindi|russian|dutch`,
			`spain|mexico|france|germany|brazil|japan|china|india`,
			`locali[sz]`,
			`(?:foreign|international)\s+market`,
			`(?:different|another)\s+language`,
		),
	},
}

func compile(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

// MatchRules runs the keyword rules. It reports false when no rule matches.
func MatchRules(lowerMessage string) (Intent, bool) {
	for _, r := range rules {
		for _, p := range r.patterns {
			if p.MatchString(lowerMessage) {
				return r.intent, true
			}
		}
	}
	return "", false
}

// FromContext keeps a conversation on the topic it already has context for.
func FromContext(c conversation.Context) (Intent, bool) {
	switch {
	case c.TargetCompany != "":
		return CompanyResearch, true
	case c.JobDescription != "":
		return JobMatching, true
	case c.TargetLanguage != "":
		return Translation, true
	default:
		return "", false
	}
}
