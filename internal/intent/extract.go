package intent

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/bhanmrinal/cf-project/internal/conversation"
	"github.com/bhanmrinal/cf-project/internal/locale"
)

const longJobDescriptionRunes = 200

var knownCompanies = regexp.MustCompile(`(?i)\b(Google|Amazon|Microsoft|Meta|Apple|Netflix|Spotify|Uber|Airbnb|Tesla|IBM|Oracle|Salesforce|Stripe)\b`)

var companyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:for|at|to)\s+([A-Z][A-Za-z0-9&]*(?:\s+[A-Z][A-Za-z0-9&]*)*?)(?:\s*$|\s*[.,!?]|\s+resume|\s+job|\s+position|\s+role|\s+team)`),
	regexp.MustCompile(`([A-Z][A-Za-z0-9]+(?:\s+[A-Z][A-Za-z0-9]+)*)\s+(?:company|corporation|inc|corp|ltd)`),
}

var companyStopWords = map[string]bool{
	"optimize": true, "resume": true, "the": true, "for": true, "and": true,
	"with": true, "make": true, "update": true, "my": true, "me": true,
	"it": true, "this": true, "a": true, "an": true, "i": true, "please": true,
}

// Offsets come from the original message so slicing stays on rune boundaries.
var jobDescriptionMarker = regexp.MustCompile(`(?i)(?:job description|jd|requirements|responsibilities|qualifications|position|role):`)

// Extract returns existing updated with what the message says about the given intent.
func Extract(message string, i Intent, existing conversation.Context) conversation.Context {
	update := conversation.Context{}

	switch i {
	case CompanyResearch:
		update.TargetCompany = ExtractCompany(message)
	case JobMatching:
		update.JobDescription = ExtractJobDescription(message)
	case Translation:
		if lang, _ := locale.DetectLanguage(message); lang.Name != "" {
			update.TargetLanguage = lang.Name
		}
		update.TargetRegion = locale.DetectRegion(message)
	}

	return existing.Merge(update)
}

// ExtractCompany finds the company a message asks to optimize for.
func ExtractCompany(message string) string {
	if m := knownCompanies.FindStringSubmatch(message); m != nil {
		return canonicalCompany(m[1])
	}

	for _, re := range companyPatterns {
		m := re.FindStringSubmatch(message)
		if m == nil {
			continue
		}
		if name := cleanCompany(m[1]); name != "" {
			return name
		}
	}

	for _, word := range strings.Fields(message) {
		word = strings.Trim(word, ".,!?\"'")
		r, _ := utf8.DecodeRuneInString(word)
		if unicode.IsUpper(r) && utf8.RuneCountInString(word) > 2 && !companyStopWords[strings.ToLower(word)] {
			return word
		}
	}

	return ""
}

// ExtractJobDescription returns the job description part of a message: the
// text from the first known marker on, or the whole message when it is long.
func ExtractJobDescription(message string) string {
	if loc := jobDescriptionMarker.FindStringIndex(message); loc != nil {
		return strings.TrimSpace(message[loc[0]:])
	}

	if utf8.RuneCountInString(message) > longJobDescriptionRunes {
		return strings.TrimSpace(message)
	}

	return ""
}

func cleanCompany(name string) string {
	words := strings.Fields(name)
	for len(words) > 0 && companyStopWords[strings.ToLower(words[0])] {
		words = words[1:]
	}
	if len(words) == 0 {
		return ""
	}
	return canonicalCompany(strings.Join(words, " "))
}

func canonicalCompany(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if strings.EqualFold(name, "ibm") {
		return "IBM"
	}
	if strings.ToLower(name) == name {
		r, size := utf8.DecodeRuneInString(name)
		return string(unicode.ToUpper(r)) + name[size:]
	}
	return name
}
