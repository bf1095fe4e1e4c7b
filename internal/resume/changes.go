package resume

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/bhanmrinal/cf-project/internal/util"
)

const changePreviewRunes = 200

type ChangeKind string

const (
	ChangeAdded    ChangeKind = "added"
	ChangeModified ChangeKind = "modified"
	ChangeRemoved  ChangeKind = "removed"
)

// Change summarizes how one section differs between two snapshots.
type Change struct {
	Section  string     `json:"section"`
	Kind     ChangeKind `json:"type"`
	Original string     `json:"original_content,omitempty"`
	Updated  string     `json:"new_content,omitempty"`
}

// IdentifyChanges compares snapshots section type by section type.
func IdentifyChanges(before, after Content) []Change {
	beforeByType := byType(before)
	afterByType := byType(after)

	var changes []Change
	seen := make(map[SectionType]bool)

	for _, s := range after.Sorted() {
		if seen[s.Type] {
			continue
		}
		seen[s.Type] = true
		updated := afterByType[s.Type]

		original, ok := beforeByType[s.Type]
		switch {
		case !ok:
			changes = append(changes, Change{
				Section: updated.Title,
				Kind:    ChangeAdded,
				Updated: updated.Body(),
			})
		case original.Body() != updated.Body():
			changes = append(changes, Change{
				Section:  updated.Title,
				Kind:     ChangeModified,
				Original: util.Clip(original.Body(), changePreviewRunes),
				Updated:  util.Clip(updated.Body(), changePreviewRunes),
			})
		}
	}

	for _, s := range before.Sorted() {
		if _, ok := afterByType[s.Type]; ok || seen[s.Type] {
			continue
		}
		seen[s.Type] = true
		original := beforeByType[s.Type]
		changes = append(changes, Change{
			Section:  original.Title,
			Kind:     ChangeRemoved,
			Original: util.Clip(original.Body(), changePreviewRunes),
		})
	}

	return changes
}

// LineChange is one line of a section diff. Op is "+", "-" or " ".
type LineChange struct {
	Op   string `json:"op"`
	Text string `json:"text"`
}

// SectionDiff is the line-level diff of one section between two versions.
type SectionDiff struct {
	Type    SectionType  `json:"type"`
	Title   string       `json:"title"`
	Changed bool         `json:"changed"`
	Added   int          `json:"added"`
	Removed int          `json:"removed"`
	Lines   []LineChange `json:"lines,omitempty"`
}

// Compare diffs two snapshots section by section. Sections are reported in the
// order of b, followed by sections only present in a.
func Compare(a, b Content) []SectionDiff {
	aByType := byType(a)
	bByType := byType(b)

	var order []SectionType
	seen := make(map[SectionType]bool)
	for _, s := range append(b.Sorted(), a.Sorted()...) {
		if !seen[s.Type] {
			seen[s.Type] = true
			order = append(order, s.Type)
		}
	}

	dmp := diffmatchpatch.New()
	diffs := make([]SectionDiff, 0, len(order))
	for _, t := range order {
		before, after := aByType[t], bByType[t]
		title := after.Title
		if title == "" {
			title = before.Title
		}

		d := SectionDiff{Type: t, Title: title}
		d.Lines, d.Added, d.Removed = lineDiff(dmp, before.Body(), after.Body())
		d.Changed = d.Added > 0 || d.Removed > 0
		diffs = append(diffs, d)
	}

	return diffs
}

func lineDiff(dmp *diffmatchpatch.DiffMatchPatch, before, after string) ([]LineChange, int, int) {
	// Every line must end with a newline, otherwise the last line of one side
	// never equals the same line in the middle of the other.
	if before != "" {
		before += "\n"
	}
	if after != "" {
		after += "\n"
	}

	c1, c2, lineArray := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(c1, c2, false), lineArray)

	var (
		lines          []LineChange
		added, removed int
	)
	for _, diff := range diffs {
		op := " "
		switch diff.Type {
		case diffmatchpatch.DiffInsert:
			op = "+"
		case diffmatchpatch.DiffDelete:
			op = "-"
		}

		for _, text := range strings.Split(strings.TrimSuffix(diff.Text, "\n"), "\n") {
			if diff.Text == "" {
				break
			}
			lines = append(lines, LineChange{Op: op, Text: text})
			switch op {
			case "+":
				added++
			case "-":
				removed++
			}
		}
	}

	return lines, added, removed
}

// byType keeps the last section of each type, matching how agents overwrite sections.
func byType(c Content) map[SectionType]Section {
	m := make(map[SectionType]Section, len(c.Sections))
	for _, s := range c.Sections {
		m[s.Type] = s
	}
	return m
}
