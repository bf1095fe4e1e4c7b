// Package intent classifies chat messages into the agent that should handle them.
package intent

import "strings"

type Intent string

const (
	CompanyResearch Intent = "company_research"
	JobMatching     Intent = "job_matching"
	Translation     Intent = "translation"
	GeneralChat     Intent = "general_chat"
)

// All lists every intent in prompt order.
var All = []Intent{CompanyResearch, JobMatching, Translation, GeneralChat}

var descriptions = map[Intent]string{
	CompanyResearch: "the user wants to optimize the resume for a specific company",
	JobMatching:     "the user wants to match the resume to a job description or analyze fit",
	Translation:     "the user wants to translate or localize the resume for another language or market",
	GeneralChat:     "anything else, or the intent is unclear",
}

// Description returns the one-line explanation used in the classification prompt.
func (i Intent) Description() string {
	return descriptions[i]
}

func (i Intent) Valid() bool {
	_, ok := descriptions[i]
	return ok
}

func (i Intent) String() string {
	return string(i)
}

// Parse matches a label exactly, ignoring case and separators.
func Parse(s string) (Intent, bool) {
	normalized := normalize(s)
	if normalized == "general" {
		return GeneralChat, true
	}
	i := Intent(normalized)
	return i, i.Valid()
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("-", "_", " ", "_").Replace(s)
	return strings.Trim(s, "._:;!")
}
