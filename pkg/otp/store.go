package otp

import (
	"fmt"
	"sync"
	"time"

	"github.com/planmaster/planmaster/internal/apperrors"
)

// Store holds one-time reset codes keyed by email. Implementations must
// overwrite any existing code for the same key (last request wins) and
// reject codes past their TTL.
type Store interface {
	Set(key, code string)
	Verify(key, code string) error
	Delete(key string)
}

type entry struct {
	code      string
	expiresAt time.Time
}

// MemoryStore is a process-local Store backed by a mutex-guarded map.
// Expired entries are evicted lazily on Verify.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Set(key, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{code: code, expiresAt: s.now().Add(s.ttl)}
}

// Verify checks the code for the key. An expired or missing code fails
// validation; the code stays usable until Delete is called so that a
// mistyped password retry does not burn it.
func (s *MemoryStore) Verify(key, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return fmt.Errorf("%w: no OTP requested for this email", apperrors.ErrValidation)
	}
	if s.now().After(e.expiresAt) {
		delete(s.entries, key)
		return fmt.Errorf("%w: OTP has expired", apperrors.ErrValidation)
	}
	if e.code != code {
		return fmt.Errorf("%w: incorrect OTP", apperrors.ErrValidation)
	}
	return nil
}

func (s *MemoryStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}
