// Package resume holds the structured resume model and its version history.
package resume

import (
	"sort"
	"strings"
	"time"
)

type SectionType string

const (
	SectionContact        SectionType = "contact"
	SectionSummary        SectionType = "summary"
	SectionExperience     SectionType = "experience"
	SectionEducation      SectionType = "education"
	SectionSkills         SectionType = "skills"
	SectionProjects       SectionType = "projects"
	SectionCertifications SectionType = "certifications"
	SectionLanguages      SectionType = "languages"
	SectionOther          SectionType = "other"
)

// Section is one titled block of a resume. Lines are the text fragments in display order.
type Section struct {
	Type  SectionType `json:"type" validate:"required,oneof=contact summary experience education skills projects certifications languages other"`
	Title string      `json:"title" validate:"required"`
	Lines []string    `json:"lines"`
	Order int         `json:"order"`
}

// Body joins the section lines.
func (s Section) Body() string {
	return strings.Join(s.Lines, "\n")
}

// Content is a full resume snapshot.
type Content struct {
	Sections []Section `json:"sections" validate:"required,min=1,dive"`
}

// Clone returns a deep copy, so snapshots stored in history never share slices with callers.
func (c Content) Clone() Content {
	if c.Sections == nil {
		return Content{}
	}
	sections := make([]Section, len(c.Sections))
	for i, s := range c.Sections {
		s.Lines = append([]string(nil), s.Lines...)
		sections[i] = s
	}
	return Content{Sections: sections}
}

// Sorted returns the sections ordered by Order, keeping input order for ties.
func (c Content) Sorted() []Section {
	sections := append([]Section(nil), c.Sections...)
	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].Order < sections[j].Order
	})
	return sections
}

// Section returns the first section of the given type.
func (c Content) Section(t SectionType) (Section, bool) {
	for _, s := range c.Sections {
		if s.Type == t {
			return s, true
		}
	}
	return Section{}, false
}

// IsEmpty reports whether the snapshot carries no text at all.
func (c Content) IsEmpty() bool {
	for _, s := range c.Sections {
		for _, line := range s.Lines {
			if strings.TrimSpace(line) != "" {
				return false
			}
		}
	}
	return true
}

// Text renders the snapshot in the "## Title" form used in prompts and agent replies.
func (c Content) Text() string {
	blocks := make([]string, 0, len(c.Sections))
	for _, s := range c.Sorted() {
		blocks = append(blocks, "## "+s.Title+"\n"+s.Body())
	}
	return strings.Join(blocks, "\n\n")
}

// Version is an immutable snapshot in a resume's history.
type Version struct {
	ResumeID  string    `json:"resume_id"`
	Seq       int       `json:"seq"`
	Label     string    `json:"label"`
	Agent     string    `json:"agent,omitempty"`
	Content   Content   `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Resume is what agents see: the id plus the snapshot at the current pointer.
type Resume struct {
	ID      string
	Seq     int
	Content Content
}

// FromVersion builds the agent view of the current version.
func FromVersion(v Version) *Resume {
	return &Resume{ID: v.ResumeID, Seq: v.Seq, Content: v.Content.Clone()}
}
