package staging

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bimakw/identity-prism/internal/domain/entities"
)

// ErrAlreadyStaged is returned when a request id is reused
var ErrAlreadyStaged = errors.New("mint request already staged")

// MemoryStore is a process-local pending mint registry.
// Expired entries are pruned on every Stage and Finalize call rather than by a timer,
// so an idle store may hold expired entries until it is next touched.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*entities.PendingMint
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore creates an empty store whose entries live for ttl
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*entities.PendingMint),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Stage inserts a pending mint when its request id is not already present
func (s *MemoryStore) Stage(_ context.Context, mint *entities.PendingMint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked()

	if _, ok := s.entries[mint.RequestID]; ok {
		return ErrAlreadyStaged
	}
	if mint.CreatedAt.IsZero() {
		mint.CreatedAt = s.now()
	}
	s.entries[mint.RequestID] = mint
	return nil
}

// Finalize removes and returns the pending mint in a single critical section
func (s *MemoryStore) Finalize(_ context.Context, requestID string) (*entities.PendingMint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked()

	mint, ok := s.entries[requestID]
	if !ok {
		return nil, entities.ErrMintNotFound
	}
	delete(s.entries, requestID)
	return mint, nil
}

// Len returns the number of entries currently held, expired or not
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *MemoryStore) pruneLocked() {
	now := s.now()
	for id, m := range s.entries {
		if m.Expired(now, s.ttl) {
			delete(s.entries, id)
		}
	}
}
