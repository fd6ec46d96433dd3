package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/imrishuroy/bonzicart-checkout/internal/checkout"
)

type memoryEntry struct {
	session   *checkout.Session
	expiresAt time.Time
}

// MemoryStore keeps sessions in process. Entries expire ttl after their
// last write; a zero ttl keeps them forever.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]memoryEntry
	ttl      time.Duration
	nowFunc  func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: map[string]memoryEntry{},
		ttl:      ttl,
		nowFunc:  time.Now,
	}
}

func (m *MemoryStore) Create(ctx context.Context, s *checkout.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.nowFunc()
	if e, ok := m.sessions[s.ID]; ok && !m.expired(e, now) {
		return ErrAlreadyExists
	}
	m.put(s, now)
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*checkout.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if m.expired(e, m.nowFunc()) {
		delete(m.sessions, id)
		return nil, ErrNotFound
	}
	return e.session.Clone(), nil
}

func (m *MemoryStore) Save(ctx context.Context, s *checkout.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.nowFunc()
	e, ok := m.sessions[s.ID]
	if !ok || m.expired(e, now) {
		return ErrNotFound
	}
	if e.session.Version != s.Version {
		return ErrVersionConflict
	}
	s.Version++
	s.UpdatedAt = now
	m.put(s, now)
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) put(s *checkout.Session, now time.Time) {
	e := memoryEntry{session: s.Clone()}
	if m.ttl > 0 {
		e.expiresAt = now.Add(m.ttl)
	}
	m.sessions[s.ID] = e
}

func (m *MemoryStore) expired(e memoryEntry, now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}
