package conversation

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/bhanmrinal/cf-project/internal/apperr"
)

type memoryEntry struct {
	conversation Conversation
	turns        []Turn
}

// MemoryStore keeps conversations in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*memoryEntry), now: time.Now}
}

func (m *MemoryStore) Create(_ context.Context, c Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c.CreatedAt.IsZero() {
		c.CreatedAt = m.now()
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}
	m.entries[c.ID] = &memoryEntry{conversation: c}
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[id]
	if !ok {
		return Conversation{}, apperr.NotFound("conversation", id)
	}
	return e.conversation, nil
}

func (m *MemoryStore) SetResume(_ context.Context, id, resumeID string) error {
	return m.update(id, func(c *Conversation) { c.ResumeID = resumeID })
}

func (m *MemoryStore) UpdateContext(_ context.Context, id string, cc Context) error {
	return m.update(id, func(c *Conversation) { c.Context = cc })
}

func (m *MemoryStore) AppendTurn(_ context.Context, id string, t Turn) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok {
		return apperr.NotFound("conversation", id)
	}

	t.Payload = maps.Clone(t.Payload)
	e.turns = append(e.turns, t)
	e.conversation.UpdatedAt = m.now()
	return nil
}

func (m *MemoryStore) RecentTurns(_ context.Context, id string, n int) ([]Turn, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[id]
	if !ok {
		return nil, apperr.NotFound("conversation", id)
	}

	return lastTurns(e.turns, n), nil
}

func (m *MemoryStore) update(id string, apply func(c *Conversation)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok {
		return apperr.NotFound("conversation", id)
	}

	apply(&e.conversation)
	e.conversation.UpdatedAt = m.now()
	return nil
}

func lastTurns(turns []Turn, n int) []Turn {
	if n <= 0 {
		return nil
	}
	if n > len(turns) {
		n = len(turns)
	}
	return append([]Turn(nil), turns[len(turns)-n:]...)
}
