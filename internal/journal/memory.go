// internal/journal/memory.go
package journal

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory keeps entries in process. Appends are serialised, so Append never
// conflicts; AppendAt still enforces the expected version.
type Memory struct {
	mu      sync.Mutex
	lastID  int64
	entries map[uuid.UUID][]Entry
	now     func() time.Time
}

var _ Journal = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{entries: make(map[uuid.UUID][]Entry), now: time.Now}
}

func (m *Memory) Append(ctx context.Context, e *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appendLocked(e)
	return nil
}

func (m *Memory) AppendAt(ctx context.Context, e *Entry, expectedVersion int) error {
	if expectedVersion < 0 {
		return ErrInvalidVersion
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.entries[e.EntityID]) != expectedVersion {
		return ErrConcurrencyConflict
	}
	m.appendLocked(e)
	return nil
}

func (m *Memory) appendLocked(e *Entry) {
	m.lastID++
	e.ID = m.lastID
	e.Version = len(m.entries[e.EntityID]) + 1
	e.CreatedAt = m.now().UTC()
	if len(e.Data) == 0 {
		e.Data = []byte("{}")
	}

	stored := *e
	stored.Data = append([]byte(nil), e.Data...)
	m.entries[e.EntityID] = append(m.entries[e.EntityID], stored)
}

func (m *Memory) History(ctx context.Context, entityID uuid.UUID) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Entry, len(m.entries[entityID]))
	copy(out, m.entries[entityID])
	return out, nil
}

func (m *Memory) CurrentVersion(ctx context.Context, entityID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries[entityID]), nil
}
