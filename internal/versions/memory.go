package versions

import (
	"context"
	"sync"

	"github.com/bhanmrinal/cf-project/internal/apperr"
	"github.com/bhanmrinal/cf-project/internal/resume"
)

// MemoryBackend keeps histories in process memory. Histories are cloned on the
// way in and out, so callers never share state with the backend.
type MemoryBackend struct {
	mu        sync.RWMutex
	histories map[string]*resume.History
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{histories: make(map[string]*resume.History)}
}

func (m *MemoryBackend) Load(_ context.Context, resumeID string) (*resume.History, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	h, ok := m.histories[resumeID]
	if !ok {
		return nil, apperr.NotFound("resume", resumeID)
	}
	return h.Clone(), nil
}

func (m *MemoryBackend) Save(_ context.Context, h *resume.History) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.histories[h.ResumeID] = h.Clone()
	return nil
}
