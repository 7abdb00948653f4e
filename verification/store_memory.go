package verification

import (
	"context"
	"sync"
	"time"
)

var _ CodeStore = &MemoryStore{}

// MemoryStore keeps codes in process memory. Used by tests and local
// development; production uses the Redis store.
type MemoryStore struct {
	mu    sync.Mutex
	codes map[string]memoryEntry
	// now is swappable for expiry tests.
	now func() time.Time
}

type memoryEntry struct {
	code      string
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		codes: map[string]memoryEntry{},
		now:   time.Now,
	}
}

func (s *MemoryStore) Put(ctx context.Context, email string, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.codes[email] = memoryEntry{
		code:      code,
		expiresAt: s.now().Add(ttl),
	}
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, email string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.codes[email]
	if !ok || s.now().After(entry.expiresAt) {
		delete(s.codes, email)
		return "", NewCodeNotFoundError(email)
	}
	return entry.code, nil
}

func (s *MemoryStore) Delete(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.codes, email)
	return nil
}
