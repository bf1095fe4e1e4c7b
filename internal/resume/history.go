package resume

import (
	"fmt"
	"time"

	"github.com/bhanmrinal/cf-project/internal/apperr"
)

// History is an append-only arena of versions plus a pointer to the current one.
//
// Reverting only moves the pointer. Recording after a revert drops every entry
// past the pointer before appending, so redo is lost once a new edit is made.
// Sequence numbers keep growing across truncations and are never reused.
type History struct {
	ResumeID string    `json:"resume_id"`
	Versions []Version `json:"versions"`
	Current  int       `json:"current"`
	NextSeq  int       `json:"next_seq"`
}

// NewHistory starts a history with the uploaded content as version 0.
func NewHistory(resumeID string, content Content, label string, now time.Time) *History {
	h := &History{ResumeID: resumeID}
	h.Versions = []Version{{
		ResumeID:  resumeID,
		Seq:       0,
		Label:     label,
		Content:   content.Clone(),
		CreatedAt: now,
	}}
	h.NextSeq = 1
	return h
}

// Record truncates everything after the pointer, appends a new version and points at it.
func (h *History) Record(content Content, label, agent string, now time.Time) Version {
	kept := make([]Version, 0, h.Current+2)
	if len(h.Versions) > 0 {
		kept = append(kept, h.Versions[:h.Current+1]...)
	}

	v := Version{
		ResumeID:  h.ResumeID,
		Seq:       h.NextSeq,
		Label:     label,
		Agent:     agent,
		Content:   content.Clone(),
		CreatedAt: now,
	}

	h.Versions = append(kept, v)
	h.Current = len(h.Versions) - 1
	h.NextSeq++

	return v
}

// Revert moves the pointer to the version with the given sequence number.
// History and pointer are left untouched when seq is unknown.
func (h *History) Revert(seq int) (Version, error) {
	idx := h.indexOf(seq)
	if idx < 0 {
		return Version{}, &apperr.InvalidVersionError{ResumeID: h.ResumeID, Seq: seq}
	}
	h.Current = idx
	return h.Versions[idx], nil
}

// CurrentVersion returns the snapshot at the pointer.
func (h *History) CurrentVersion() (Version, bool) {
	if len(h.Versions) == 0 {
		return Version{}, false
	}
	return h.Versions[h.Current], true
}

// Find returns the version with the given sequence number.
func (h *History) Find(seq int) (Version, bool) {
	idx := h.indexOf(seq)
	if idx < 0 {
		return Version{}, false
	}
	return h.Versions[idx], true
}

// Entries returns the versions oldest first. The slice is a copy.
func (h *History) Entries() []Version {
	return append([]Version(nil), h.Versions...)
}

// Clone returns a deep copy of the history.
func (h *History) Clone() *History {
	c := &History{ResumeID: h.ResumeID, Current: h.Current, NextSeq: h.NextSeq}
	c.Versions = make([]Version, len(h.Versions))
	for i, v := range h.Versions {
		v.Content = v.Content.Clone()
		c.Versions[i] = v
	}
	return c
}

// Validate checks the pointer and sequence invariants of a history loaded from a store.
func (h *History) Validate() error {
	if len(h.Versions) == 0 {
		return fmt.Errorf("resume %q: history is empty", h.ResumeID)
	}
	if h.Current < 0 || h.Current >= len(h.Versions) {
		return fmt.Errorf("resume %q: pointer %d out of range [0,%d)", h.ResumeID, h.Current, len(h.Versions))
	}
	for i := 1; i < len(h.Versions); i++ {
		if h.Versions[i].Seq <= h.Versions[i-1].Seq {
			return fmt.Errorf("resume %q: sequence numbers are not increasing at index %d", h.ResumeID, i)
		}
	}
	if last := h.Versions[len(h.Versions)-1].Seq; h.NextSeq <= last {
		return fmt.Errorf("resume %q: next sequence %d must exceed %d", h.ResumeID, h.NextSeq, last)
	}
	return nil
}

func (h *History) indexOf(seq int) int {
	for i, v := range h.Versions {
		if v.Seq == seq {
			return i
		}
	}
	return -1
}
