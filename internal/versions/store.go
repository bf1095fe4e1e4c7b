// Package versions owns resume version histories. It is the only place where a
// resume's content or its current pointer change.
package versions

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bhanmrinal/cf-project/internal/apperr"
	"github.com/bhanmrinal/cf-project/internal/logger"
	"github.com/bhanmrinal/cf-project/internal/resume"
)

// Backend persists whole histories keyed by resume id.
// Load returns an apperr.ErrNotFound error for unknown ids; Save upserts.
type Backend interface {
	Load(ctx context.Context, resumeID string) (*resume.History, error)
	Save(ctx context.Context, h *resume.History) error
}

// Store applies history operations on top of a Backend.
//
// Each mutation is load, apply, save under a lock keyed by resume id, so two
// callers in this process never interleave on one resume. Callers in other
// processes sharing the backend are not coordinated; the last save wins.
type Store struct {
	backend Backend
	logger  *zap.Logger
	now     func() time.Time

	mu    sync.Mutex
	locks map[string]*resumeLock
}

// resumeLock is dropped from Store.locks once nobody holds or waits on it.
type resumeLock struct {
	mu   sync.Mutex
	refs int
}

// New creates a Store over the given backend.
func New(backend Backend, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		backend: backend,
		logger:  log,
		now:     time.Now,
		locks:   make(map[string]*resumeLock),
	}
}

// Create starts a history with content as version 0. An existing history for
// the same id is replaced.
func (s *Store) Create(ctx context.Context, resumeID string, content resume.Content, label string) (resume.Version, error) {
	unlock := s.lock(resumeID)
	defer unlock()

	h := resume.NewHistory(resumeID, content, label, s.now())
	if err := s.backend.Save(ctx, h); err != nil {
		return resume.Version{}, apperr.Upstream("save resume history", err)
	}

	v, _ := h.CurrentVersion()
	s.logger.Info("resume history created", logger.VersionFields(resumeID, v.Seq)...)
	return v, nil
}

// Record appends content as a new version after dropping everything past the
// current pointer, and moves the pointer to it.
func (s *Store) Record(ctx context.Context, resumeID string, content resume.Content, label, agent string) (resume.Version, error) {
	unlock := s.lock(resumeID)
	defer unlock()

	h, err := s.load(ctx, resumeID)
	if err != nil {
		return resume.Version{}, err
	}

	dropped := len(h.Versions) - 1 - h.Current
	v := h.Record(content, label, agent, s.now())

	if err := s.backend.Save(ctx, h); err != nil {
		return resume.Version{}, apperr.Upstream("save resume history", err)
	}

	s.logger.Info("resume version recorded",
		append(logger.VersionFields(resumeID, v.Seq),
			zap.String("label", label),
			zap.Int("discarded_versions", dropped),
		)...,
	)
	return v, nil
}

// Revert moves the current pointer to seq without deleting any version.
func (s *Store) Revert(ctx context.Context, resumeID string, seq int) (resume.Version, error) {
	unlock := s.lock(resumeID)
	defer unlock()

	h, err := s.load(ctx, resumeID)
	if err != nil {
		return resume.Version{}, err
	}

	v, err := h.Revert(seq)
	if err != nil {
		return resume.Version{}, err
	}

	if err := s.backend.Save(ctx, h); err != nil {
		return resume.Version{}, apperr.Upstream("save resume history", err)
	}

	s.logger.Info("resume reverted", logger.VersionFields(resumeID, seq)...)
	return v, nil
}

// Current returns the version at the pointer.
func (s *Store) Current(ctx context.Context, resumeID string) (resume.Version, error) {
	h, err := s.load(ctx, resumeID)
	if err != nil {
		return resume.Version{}, err
	}

	v, ok := h.CurrentVersion()
	if !ok {
		return resume.Version{}, apperr.NotFound("resume version", resumeID)
	}
	return v, nil
}

// Get returns the version with the given sequence number.
func (s *Store) Get(ctx context.Context, resumeID string, seq int) (resume.Version, error) {
	h, err := s.load(ctx, resumeID)
	if err != nil {
		return resume.Version{}, err
	}

	v, ok := h.Find(seq)
	if !ok {
		return resume.Version{}, versionNotFound(resumeID, seq)
	}
	return v, nil
}

// History returns every version oldest first together with the current sequence number.
func (s *Store) History(ctx context.Context, resumeID string) ([]resume.Version, int, error) {
	h, err := s.load(ctx, resumeID)
	if err != nil {
		return nil, 0, err
	}

	current, _ := h.CurrentVersion()
	return h.Entries(), current.Seq, nil
}

// Compare diffs two versions of the same resume section by section.
func (s *Store) Compare(ctx context.Context, resumeID string, a, b int) ([]resume.SectionDiff, error) {
	h, err := s.load(ctx, resumeID)
	if err != nil {
		return nil, err
	}

	va, ok := h.Find(a)
	if !ok {
		return nil, versionNotFound(resumeID, a)
	}
	vb, ok := h.Find(b)
	if !ok {
		return nil, versionNotFound(resumeID, b)
	}

	return resume.Compare(va.Content, vb.Content), nil
}

func (s *Store) load(ctx context.Context, resumeID string) (*resume.History, error) {
	h, err := s.backend.Load(ctx, resumeID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.NotFound("resume", resumeID)
		}
		return nil, apperr.Upstream("load resume history", err)
	}
	if err := h.Validate(); err != nil {
		return nil, apperr.Upstream("load resume history", err)
	}
	return h, nil
}

func versionNotFound(resumeID string, seq int) error {
	return apperr.NotFound("resume version", fmt.Sprintf("%s@%d", resumeID, seq))
}

func (s *Store) lock(resumeID string) func() {
	s.mu.Lock()
	l, ok := s.locks[resumeID]
	if !ok {
		l = &resumeLock{}
		s.locks[resumeID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, resumeID)
		}
		s.mu.Unlock()
	}
}
