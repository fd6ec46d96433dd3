package idempotency

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore is the single-process Store used when no table is configured.
type MemoryStore struct {
	mu        sync.Mutex
	records   map[string]Record
	ttlWindow time.Duration
	nowFunc   func() time.Time
}

func NewMemoryStore(ttlWindow time.Duration) *MemoryStore {
	return &MemoryStore{
		records:   map[string]Record{},
		ttlWindow: ttlWindow,
		nowFunc:   time.Now,
	}
}

func (s *MemoryStore) CreateIfNotExists(ctx context.Context, key, sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.nowFunc()
	if rec, ok := s.records[key]; ok && !s.expired(rec, now) {
		return false, nil
	}
	s.records[key] = Record{
		IdempotencyKey: key,
		Status:         StatusInProgress,
		SessionID:      sessionID,
		CreatedAt:      now,
		UpdatedAt:      now,
		ExpiresAt:      now.Add(s.ttlWindow).Unix(),
	}
	return true, nil
}

func (s *MemoryStore) Get(ctx context.Context, key string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[key]
	if !ok || s.expired(rec, s.nowFunc()) {
		return nil, nil
	}
	return &rec, nil
}

func (s *MemoryStore) MarkDone(ctx context.Context, key, orderID, responseBody string, responseStatus int) error {
	return s.update(key, func(rec *Record) {
		rec.Status = StatusDone
		rec.OrderID = orderID
		rec.ResponseBody = responseBody
		rec.ResponseStatus = responseStatus
	})
}

func (s *MemoryStore) MarkFailed(ctx context.Context, key, note string) error {
	return s.update(key, func(rec *Record) {
		rec.Status = StatusFailed
		rec.Note = note
	})
}

func (s *MemoryStore) Reclaim(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.nowFunc()
	rec, ok := s.records[key]
	if !ok || s.expired(rec, now) || rec.Status != StatusFailed {
		return false, nil
	}
	rec.Status = StatusInProgress
	rec.Note = ""
	rec.UpdatedAt = now
	rec.ExpiresAt = now.Add(s.ttlWindow).Unix()
	s.records[key] = rec
	return true, nil
}

func (s *MemoryStore) update(key string, fn func(*Record)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[key]
	if !ok {
		return fmt.Errorf("idempotency key %q not found", key)
	}
	fn(&rec)
	rec.UpdatedAt = s.nowFunc()
	s.records[key] = rec
	return nil
}

func (s *MemoryStore) expired(rec Record, now time.Time) bool {
	return s.ttlWindow > 0 && now.Unix() >= rec.ExpiresAt
}
