package agents

import (
	"fmt"
	"strings"

	"github.com/bhanmrinal/cf-project/internal/locale"
)

// NoResumeReply is returned for every resume-bound intent when no resume is attached.
const NoResumeReply = "Please upload a resume first before I can help you optimize it. You can upload a PDF or DOCX file."

// AgentErrorReply is the safe reply used when an agent fails. The cause is
// logged, never shown.
const AgentErrorReply = "I encountered an error while processing your request. Please try again or rephrase your request."

const (
	noCompanyReply        = "I couldn't identify a target company. Please specify which company you'd like me to optimize your resume for."
	noJobDescriptionReply = "I need a job description to analyze. Please provide the job description you'd like me to match your resume against."
)

func languageHelpReply() string {
	return fmt.Sprintf(`Please specify which language you'd like me to translate your resume to.

**Supported Languages:**
%s

**Example requests:**
- "Translate my resume to Spanish for the Mexican market"
- "Convert to German"
- "Create a French version for Canada"
- "Translate to Japanese"

You can also specify a region for more accurate localization.`, strings.Join(locale.Names(), ", "))
}

func unsupportedLanguageReply(requested string) string {
	return fmt.Sprintf("I don't currently support translation to '%s'. %s", requested, languageHelpReply())
}
