package cmd

import (
	"testing"
	"time"

	"github.com/bhanmrinal/cf-project/internal/resume"
)

func TestVersionLineRoundTrip(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		version resume.Version
		current int
		want    string
	}{
		{version: resume.Version{Seq: 0, Label: "uploaded", CreatedAt: created}, current: 2, want: "  v0 uploaded (2024-05-01 10:30)"},
		{version: resume.Version{Seq: 2, Label: "optimized for Google", CreatedAt: created}, current: 2, want: "* v2 optimized for Google (2024-05-01 10:30)"},
	}

	for _, tt := range tests {
		line := versionLine(tt.version, tt.current)
		if line != tt.want {
			t.Fatalf("versionLine = %q, want %q", line, tt.want)
		}
		seq, err := parseVersionLine(line)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if seq != tt.version.Seq {
			t.Fatalf("parsed seq %d, want %d", seq, tt.version.Seq)
		}
	}

	if _, err := parseVersionLine(PromptBack); err == nil {
		t.Fatalf("expected an error for a line without a version")
	}
}
