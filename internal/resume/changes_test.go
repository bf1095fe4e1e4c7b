package resume

import (
	"testing"
)

func TestIdentifyChanges(t *testing.T) {
	before := Content{Sections: []Section{
		{Type: SectionSummary, Title: "Summary", Lines: []string{"Engineer"}, Order: 0},
		{Type: SectionSkills, Title: "Skills", Lines: []string{"Go"}, Order: 1},
		{Type: SectionProjects, Title: "Projects", Lines: []string{"cli tool"}, Order: 2},
	}}
	after := Content{Sections: []Section{
		{Type: SectionSummary, Title: "Summary", Lines: []string{"Senior engineer"}, Order: 0},
		{Type: SectionSkills, Title: "Skills", Lines: []string{"Go"}, Order: 1},
		{Type: SectionEducation, Title: "Education", Lines: []string{"BSc"}, Order: 2},
	}}

	changes := IdentifyChanges(before, after)
	if len(changes) != 3 {
		t.Fatalf("expected 3 changes, got %+v", changes)
	}

	want := []struct {
		section string
		kind    ChangeKind
	}{
		{"Summary", ChangeModified},
		{"Education", ChangeAdded},
		{"Projects", ChangeRemoved},
	}
	for i, w := range want {
		if changes[i].Section != w.section || changes[i].Kind != w.kind {
			t.Fatalf("change %d = %+v, want %s/%s", i, changes[i], w.section, w.kind)
		}
	}
}

func TestCompare(t *testing.T) {
	a := Content{Sections: []Section{
		{Type: SectionExperience, Title: "Experience", Lines: []string{"Acme", "Built APIs"}},
		{Type: SectionSkills, Title: "Skills", Lines: []string{"Go"}},
	}}
	b := Content{Sections: []Section{
		{Type: SectionExperience, Title: "Experience", Lines: []string{"Acme", "Built APIs", "Led migration"}},
		{Type: SectionSkills, Title: "Skills", Lines: []string{"Go"}},
	}}

	diffs := Compare(a, b)
	if len(diffs) != 2 {
		t.Fatalf("expected 2 section diffs, got %d", len(diffs))
	}

	exp := diffs[0]
	if !exp.Changed || exp.Added != 1 || exp.Removed != 0 {
		t.Fatalf("unexpected experience diff %+v", exp)
	}
	last := exp.Lines[len(exp.Lines)-1]
	if last.Op != "+" || last.Text != "Led migration" {
		t.Fatalf("unexpected last line %+v", last)
	}

	if diffs[1].Changed {
		t.Fatalf("skills section must be unchanged: %+v", diffs[1])
	}
}
