package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Petrenko-Anton/HW-13-REST/internal/domain/repository"
)

// UsedTokenStore is an in-process used-token marker for single-instance
// deployments without redis. Markers are lost on restart, which is bounded by
// the verification token TTL.
type UsedTokenStore struct {
	mu   sync.Mutex
	seen map[string]time.Time
}

// NewUsedTokenStore creates an in-memory used-token store.
func NewUsedTokenStore() *UsedTokenStore {
	return &UsedTokenStore{seen: make(map[string]time.Time)}
}

// MarkUsed burns a token ID, returning false if it was already burned and has
// not expired yet.
func (s *UsedTokenStore) MarkUsed(_ context.Context, tokenID string, ttl time.Duration) (bool, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if expires, ok := s.seen[tokenID]; ok && now.Before(expires) {
		return false, nil
	}

	// Sweep expired markers opportunistically.
	for id, expires := range s.seen {
		if !now.Before(expires) {
			delete(s.seen, id)
		}
	}

	s.seen[tokenID] = now.Add(ttl)
	return true, nil
}

var _ repository.UsedTokenStore = (*UsedTokenStore)(nil)
