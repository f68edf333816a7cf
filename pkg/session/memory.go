package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory. Expired entries are purged
// on write.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]*memoryItem
	ttl   time.Duration
	now   func() time.Time
}

type memoryItem struct {
	session    Session
	expireTime time.Time
}

// NewMemoryStore creates an in-memory store. A non-positive ttl uses
// DefaultTTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		items: make(map[string]*memoryItem),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Save stores a copy of s.
func (ms *MemoryStore) Save(ctx context.Context, s *Session) error {
	if err := checkID(s.ID); err != nil {
		return err
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := ms.now()
	for id, item := range ms.items {
		if now.After(item.expireTime) {
			delete(ms.items, id)
		}
	}
	ms.items[s.ID] = &memoryItem{session: copySession(s), expireTime: now.Add(ms.ttl)}
	return nil
}

// Get returns a copy of the session.
func (ms *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	item, ok := ms.items[id]
	if !ok || ms.now().After(item.expireTime) {
		return nil, notFound(id)
	}
	s := copySession(&item.session)
	return &s, nil
}

// Delete removes the session.
func (ms *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()

	item, ok := ms.items[id]
	if !ok || ms.now().After(item.expireTime) {
		return notFound(id)
	}
	delete(ms.items, id)
	return nil
}

// Len reports the number of stored sessions, expired ones included.
func (ms *MemoryStore) Len() int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return len(ms.items)
}

func (ms *MemoryStore) Close() error { return nil }

func copySession(s *Session) Session {
	out := *s
	if s.Record != nil {
		out.Record = s.Record.Clone()
	}
	return out
}
