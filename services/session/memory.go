package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"concierge/models"
)

// MemoryStore is an in-process Store used for local development and
// tests. Entries round-trip through JSON so behavior matches the Redis
// store.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry)}
}

func memoryKey(userID string, domain models.Domain) string {
	return string(domain) + ":user:" + userID
}

func (s *MemoryStore) Get(_ context.Context, userID string, domain models.Domain) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[memoryKey(userID, domain)]
	if !ok {
		return nil, nil
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		delete(s.entries, memoryKey(userID, domain))
		return nil, nil
	}
	var sess models.Session
	if err := json.Unmarshal(entry.data, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *MemoryStore) Set(_ context.Context, userID string, domain models.Domain, sess *models.Session, ttl time.Duration) error {
	b, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	var expires time.Time
	if ttl > 0 {
		expires = time.Now().Add(ttl)
	}
	s.mu.Lock()
	s.entries[memoryKey(userID, domain)] = memoryEntry{data: b, expiresAt: expires}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, userID string, domain models.Domain) error {
	s.mu.Lock()
	delete(s.entries, memoryKey(userID, domain))
	s.mu.Unlock()
	return nil
}
