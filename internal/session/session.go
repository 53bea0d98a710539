// Package session keeps the per-owner conversation state that decides how the
// next free-form message is read.
package session

import (
	"context"
	"sync"
	"time"
)

// Session is loaded at the transport boundary for every inbound message.
// A non-zero EditTaskID means the next text replaces that task's fields.
type Session struct {
	Owner      int64
	EditTaskID int64
}

func (s Session) Editing() bool {
	return s.EditTaskID > 0
}

// Store persists sessions between messages. Saving a session that is not
// editing is the same as clearing it.
type Store interface {
	Load(ctx context.Context, owner int64) (Session, error)
	Save(ctx context.Context, s Session) error
	Clear(ctx context.Context, owner int64) error
}

type memoryEntry struct {
	editTaskID int64
	expires    time.Time
}

// MemoryStore is the default Store for a single process.
type MemoryStore struct {
	mu    sync.Mutex
	items map[int64]memoryEntry
	ttl   time.Duration
	now   func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns a store whose sessions lapse after ttl. A ttl of
// zero keeps them until cleared.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		items: make(map[int64]memoryEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (m *MemoryStore) Load(_ context.Context, owner int64) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.items[owner]
	if !ok {
		return Session{Owner: owner}, nil
	}
	if !entry.expires.IsZero() && !m.now().Before(entry.expires) {
		delete(m.items, owner)
		return Session{Owner: owner}, nil
	}
	return Session{Owner: owner, EditTaskID: entry.editTaskID}, nil
}

func (m *MemoryStore) Save(_ context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !s.Editing() {
		delete(m.items, s.Owner)
		return nil
	}
	entry := memoryEntry{editTaskID: s.EditTaskID}
	if m.ttl > 0 {
		entry.expires = m.now().Add(m.ttl)
	}
	m.items[s.Owner] = entry
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, owner int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, owner)
	return nil
}
