package agents

import (
	"regexp"
	"strings"

	"github.com/bhanmrinal/cf-project/internal/resume"
	"github.com/bhanmrinal/cf-project/internal/util"
)

const notesRunes = 500

const notesPhrases = `key changes|changes made|reasoning|explanation|what i changed|improvements|optimization summary|cultural[_ ]notes?`

var (
	// notesStart finds the explanation models append after the rewritten resume:
	// either a heading ("## Key Changes", "**Key Changes**") or a "Key Changes:" line.
	notesStart = regexp.MustCompile(`(?im)^(?:#+|\*\*)[ \t]*(?:` + notesPhrases + `)\b|^[ \t]*(?:` + notesPhrases + `)[ \t]*:`)
	notesLead  = regexp.MustCompile(`(?i)^[#*\s]*(?:` + notesPhrases + `)[*\s]*:?[*\s]*`)
)

// revision is a parsed agent rewrite. Content is nil when nothing changed.
type revision struct {
	Content *resume.Content
	Changes []resume.Change
	Notes   string
}

func rewrite(response string, current resume.Content) revision {
	body, notes := splitNotes(response)
	updated := resume.ParseSections(body, current)

	rev := revision{Notes: util.Clip(notes, notesRunes)}
	if changes := resume.IdentifyChanges(current, updated); len(changes) > 0 {
		rev.Content = &updated
		rev.Changes = changes
	}
	return rev
}

// splitNotes separates the rewritten resume from the explanation that follows it.
// A notes heading before the first section header is part of a preamble and ignored.
func splitNotes(response string) (body, notes string) {
	first := strings.Index(response, "##")
	for _, loc := range notesStart.FindAllStringIndex(response, -1) {
		if first != -1 && loc[0] <= first {
			continue
		}
		return response[:loc[0]], strings.TrimSpace(notesLead.ReplaceAllString(response[loc[0]:], ""))
	}
	return response, ""
}

func changesPayload(changes []resume.Change) []resume.Change {
	if changes == nil {
		return []resume.Change{}
	}
	return changes
}
