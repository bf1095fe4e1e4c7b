package resume

import (
	"strings"
)

// titleKeywords is checked in order; the first keyword contained in a lowercased
// title decides the section type.
var titleKeywords = []struct {
	keyword string
	section SectionType
}{
	{"contact", SectionContact},
	{"summary", SectionSummary},
	{"objective", SectionSummary},
	{"profile", SectionSummary},
	{"experience", SectionExperience},
	{"work", SectionExperience},
	{"education", SectionEducation},
	{"skills", SectionSkills},
	{"projects", SectionProjects},
	{"certifications", SectionCertifications},
	{"languages", SectionLanguages},
}

// TypeForTitle maps a free-form section title to a section type.
func TypeForTitle(title string) SectionType {
	lower := strings.ToLower(title)
	for _, k := range titleKeywords {
		if strings.Contains(lower, k.keyword) {
			return k.section
		}
	}
	return SectionOther
}

// ParseSections extracts "## Title" blocks from an agent response.
// When the response has no headers the fallback snapshot is returned unchanged.
func ParseSections(response string, fallback Content) Content {
	var (
		sections []Section
		current  *Section
	)

	flush := func() {
		if current == nil {
			return
		}
		current.Lines = trimBlankEdges(current.Lines)
		sections = append(sections, *current)
		current = nil
	}

	for _, raw := range strings.Split(response, "\n") {
		line := strings.TrimRight(raw, " \t\r")
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "##") {
			title := strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
			if title == "" {
				continue
			}
			flush()
			current = &Section{
				Type:  TypeForTitle(title),
				Title: title,
				Order: len(sections),
			}
			continue
		}

		if current != nil {
			current.Lines = append(current.Lines, trimmed)
		}
	}
	flush()

	if len(sections) == 0 {
		return fallback.Clone()
	}

	return Content{Sections: sections}
}

// FromText builds a snapshot from plain "## Title" text; an input without headers
// becomes a single "other" section.
func FromText(text string) Content {
	parsed := ParseSections(text, Content{})
	if len(parsed.Sections) > 0 {
		return parsed
	}
	lines := trimBlankEdges(strings.Split(strings.TrimSpace(text), "\n"))
	if len(lines) == 0 {
		return Content{}
	}
	return Content{Sections: []Section{{Type: SectionOther, Title: "Resume", Lines: lines}}}
}

func trimBlankEdges(lines []string) []string {
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	if start == end {
		return nil
	}
	return append([]string(nil), lines[start:end]...)
}
