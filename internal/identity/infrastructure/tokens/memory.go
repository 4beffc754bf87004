package tokens

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/felixgeelhaar/consulta/internal/identity/application"
	"github.com/felixgeelhaar/consulta/internal/identity/domain"
	"github.com/google/uuid"
)

type memoryEntry struct {
	accountID uuid.UUID
	expiresAt time.Time
}

// MemoryStore keeps tokens in process. Tokens do not survive the process,
// so it only backs unit tests.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), now: time.Now}
}

// WithClock replaces the store's clock.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

// Issue stores a new random token for the account.
func (s *MemoryStore) Issue(_ context.Context, purpose application.TokenPurpose, accountID uuid.UUID, ttl time.Duration) (string, error) {
	token := rand.Text()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep()
	s.entries[string(purpose)+":"+token] = memoryEntry{accountID: accountID, expiresAt: s.now().Add(ttl)}
	return token, nil
}

// Consume returns the account for a live token and forgets it.
func (s *MemoryStore) Consume(_ context.Context, purpose application.TokenPurpose, token string) (uuid.UUID, error) {
	key := string(purpose) + ":" + token

	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok {
		return uuid.Nil, domain.ErrInvalidToken
	}
	delete(s.entries, key)
	if !s.now().Before(entry.expiresAt) {
		return uuid.Nil, domain.ErrInvalidToken
	}
	return entry.accountID, nil
}

// sweep drops expired entries. Caller holds mu.
func (s *MemoryStore) sweep() {
	now := s.now()
	for k, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, k)
		}
	}
}

var _ application.TokenStore = (*MemoryStore)(nil)
