package resume

import "testing"

func TestDecodeJSONDocument(t *testing.T) {
	t.Parallel()

	data := []byte(`{
		"sections": [
			{"title": "Summary", "lines": "Backend engineer\nGo and SQL"},
			{"type": "skills", "title": "Tech", "lines": ["Go", "SQL"], "order": 5}
		]
	}`)

	c, err := Decode(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(c.Sections))
	}

	summary := c.Sections[0]
	if summary.Type != SectionSummary || len(summary.Lines) != 2 || summary.Lines[1] != "Go and SQL" {
		t.Fatalf("unexpected summary %+v", summary)
	}
	skills := c.Sections[1]
	if skills.Type != SectionSkills || skills.Order != 5 || len(skills.Lines) != 2 {
		t.Fatalf("unexpected skills %+v", skills)
	}
}

func TestDecodeText(t *testing.T) {
	t.Parallel()

	c, err := Decode([]byte("## Experience\nBuilt things\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.Sections) != 1 || c.Sections[0].Type != SectionExperience {
		t.Fatalf("unexpected content %+v", c)
	}
}

func TestDecodeRejectsBrokenJSON(t *testing.T) {
	t.Parallel()

	if _, err := Decode([]byte(`{"sections": [`)); err == nil {
		t.Fatalf("expected an error for truncated json")
	}
}
