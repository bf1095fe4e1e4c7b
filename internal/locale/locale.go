// Package locale lists the languages and regional resume conventions the translation agent supports.
package locale

import (
	"regexp"
	"strings"
)

type Language struct {
	Name    string
	Code    string
	Regions []string
}

// Title is the display form of the language name.
func (l Language) Title() string {
	if l.Name == "" {
		return ""
	}
	return strings.ToUpper(l.Name[:1]) + l.Name[1:]
}

// DefaultRegion is the region used when the user names none.
func (l Language) DefaultRegion() string {
	if len(l.Regions) == 0 {
		return ""
	}
	return l.Regions[0]
}

// Languages are checked in this order when scanning a message.
var Languages = []Language{
	{Name: "spanish", Code: "es", Regions: []string{"Spain", "Mexico", "Argentina", "Colombia"}},
	{Name: "french", Code: "fr", Regions: []string{"France", "Canada", "Belgium", "Switzerland"}},
	{Name: "german", Code: "de", Regions: []string{"Germany", "Austria", "Switzerland"}},
	{Name: "portuguese", Code: "pt", Regions: []string{"Brazil", "Portugal"}},
	{Name: "italian", Code: "it", Regions: []string{"Italy", "Switzerland"}},
	{Name: "dutch", Code: "nl", Regions: []string{"Netherlands", "Belgium"}},
	{Name: "japanese", Code: "ja", Regions: []string{"Japan"}},
	{Name: "chinese", Code: "zh", Regions: []string{"China", "Taiwan", "Singapore"}},
	{Name: "korean", Code: "ko", Regions: []string{"South Korea"}},
	{Name: "arabic", Code: "ar", Regions: []string{"UAE", "Saudi Arabia", "Egypt"}},
	{Name: "hindi", Code: "hi", Regions: []string{"India"}},
	{Name: "russian", Code: "ru", Regions: []string{"Russia"}},
}

// Convention describes what a resume is expected to look like in a region.
type Convention struct {
	Photo        string `json:"photo"`
	PersonalInfo string `json:"personal_info"`
	Format       string `json:"format"`
	Length       string `json:"length"`
	Notes        string `json:"notes"`
}

// Conventions is keyed by region name.
var Conventions = map[string]Convention{
	"Germany": {
		Photo:        "Often expected",
		PersonalInfo: "Date of birth, nationality common",
		Format:       "Reverse chronological, detailed",
		Length:       "2-3 pages acceptable",
		Notes:        "Formal tone, include all certifications",
	},
	"France": {
		Photo:        "Common but not required",
		PersonalInfo: "Age, marital status sometimes included",
		Format:       "Reverse chronological",
		Length:       "1-2 pages",
		Notes:        "Include language proficiency levels",
	},
	"Japan": {
		Photo:        "Required",
		PersonalInfo: "Date of birth, gender expected",
		Format:       "Specific rirekisho format often required",
		Length:       "1-2 pages",
		Notes:        "Very formal, humble tone",
	},
	"Spain": {
		Photo:        "Common",
		PersonalInfo: "DNI number sometimes included",
		Format:       "Europass format accepted",
		Length:       "1-2 pages",
		Notes:        "Include language certifications",
	},
	"Mexico": {
		Photo:        "Often expected",
		PersonalInfo: "CURP sometimes included",
		Format:       "Similar to US but more personal info",
		Length:       "1-2 pages",
		Notes:        "Professional Spanish, formal tone",
	},
	"Brazil": {
		Photo:        "Common",
		PersonalInfo: "CPF sometimes included",
		Format:       "Similar to US",
		Length:       "1-2 pages",
		Notes:        "Portuguese (Brazilian), include courses/certifications",
	},
	"India": {
		Photo:        "Common",
		PersonalInfo: "Father's name sometimes included",
		Format:       "Detailed, comprehensive",
		Length:       "2-3 pages acceptable",
		Notes:        "Include all educational details",
	},
	"UAE": {
		Photo:        "Expected",
		PersonalInfo: "Nationality, visa status important",
		Format:       "Comprehensive",
		Length:       "2+ pages acceptable",
		Notes:        "Include nationality and visa status",
	},
}

// Lookup finds a supported language by name, case-insensitively.
func Lookup(name string) (Language, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, l := range Languages {
		if l.Name == name {
			return l, true
		}
	}
	return Language{}, false
}

// Names returns the display names of all supported languages.
func Names() []string {
	out := make([]string, len(Languages))
	for i, l := range Languages {
		out[i] = l.Title()
	}
	return out
}

var languagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:translate|convert|change).*?(?:to|into)\s+(\w+)`),
	regexp.MustCompile(`(\w+)\s+(?:version|translation|resume)`),
	regexp.MustCompile(`in\s+(\w+)(?:\s+language)?`),
}

// DetectLanguage finds the target language named in a message. The second
// result is the raw word the user asked for when it is not a supported
// language, so callers can tell "no language" from "unsupported language".
func DetectLanguage(message string) (Language, string) {
	lower := strings.ToLower(message)
	for _, l := range Languages {
		if strings.Contains(lower, l.Name) {
			return l, l.Name
		}
	}

	// Only the first pattern names a language explicitly; the others are
	// accepted for supported names only.
	for i, re := range languagePatterns {
		m := re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		if l, ok := Lookup(m[1]); ok {
			return l, l.Name
		}
		if i == 0 {
			return Language{}, m[1]
		}
	}

	return Language{}, ""
}

// extraRegions are recognized in messages even though no language defaults to them.
var extraRegions = []string{"Canada", "Argentina", "Italy"}

var marketPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:for|targeting|in)\s+(?:the\s+)?(\w+)\s+market`),
	regexp.MustCompile(`(\w+)\s+(?:market|region|country)`),
}

// adjectives maps market adjectives ("the Mexican market") to region names.
var adjectives = map[string]string{
	"mexican":    "Mexico",
	"spanish":    "Spain",
	"german":     "Germany",
	"french":     "France",
	"brazilian":  "Brazil",
	"japanese":   "Japan",
	"indian":     "India",
	"chinese":    "China",
	"canadian":   "Canada",
	"emirati":    "UAE",
	"italian":    "Italy",
	"portuguese": "Portugal",
	"dutch":      "Netherlands",
	"korean":     "South Korea",
	"russian":    "Russia",
	"argentine":  "Argentina",
}

// DetectRegion finds a target region named in a message.
func DetectRegion(message string) string {
	lower := strings.ToLower(message)

	for _, p := range regionPatterns {
		if p.re.MatchString(lower) {
			return p.region
		}
	}

	for _, re := range marketPatterns {
		m := re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		if region, ok := adjectives[m[1]]; ok {
			return region
		}
		for _, region := range allRegions() {
			if strings.ToLower(region) == m[1] {
				return region
			}
		}
	}

	return ""
}

func allRegions() []string {
	seen := make(map[string]bool)
	var out []string
	for _, l := range Languages {
		for _, r := range l.Regions {
			if !seen[r] {
				seen[r] = true
				out = append(out, r)
			}
		}
	}
	for _, r := range extraRegions {
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	return out
}

type regionPattern struct {
	region string
	re     *regexp.Regexp
}

// regionPatterns match whole region names in a lowercased message.
var regionPatterns = compileRegionPatterns()

func compileRegionPatterns() []regionPattern {
	regions := allRegions()
	out := make([]regionPattern, 0, len(regions))
	for _, r := range regions {
		out = append(out, regionPattern{
			region: r,
			re:     regexp.MustCompile(`\b` + regexp.QuoteMeta(strings.ToLower(r)) + `\b`),
		})
	}
	return out
}
