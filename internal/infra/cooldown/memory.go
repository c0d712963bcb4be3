package cooldown

import (
	"context"
	"sync"
	"time"

	"github.com/Changwoon-overview/Socialtalk/internal/domain/notification"
)

var _ notification.CooldownStore = (*MemoryStore)(nil)

// MemoryStore is a process-local cooldown store, used when Redis is not
// configured. Flags do not survive a restart.
type MemoryStore struct {
	mu      sync.Mutex
	expires map[string]time.Time
	now     func() time.Time
}

// NewMemoryStore creates a new in-memory cooldown store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		expires: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Active reports whether the flag is set and not yet expired.
func (s *MemoryStore) Active(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeLocked(key), nil
}

// Acquire sets the flag for ttl unless it is already set.
func (s *MemoryStore) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeLocked(key) {
		return false, nil
	}
	s.expires[key] = s.now().Add(ttl)
	return true, nil
}

func (s *MemoryStore) activeLocked(key string) bool {
	exp, ok := s.expires[key]
	if !ok {
		return false
	}
	if !s.now().Before(exp) {
		delete(s.expires, key)
		return false
	}
	return true
}
