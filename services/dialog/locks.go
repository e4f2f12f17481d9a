package dialog

import (
	"sync"

	"concierge/models"
)

type conversationLock struct {
	mu   sync.Mutex
	refs int
}

// conversationLocks serializes turns per (user, domain). The session
// is a single-writer resource per conversation; the lock spans
// get → pipeline → set. Entries are refcounted and dropped on the
// last release so the map stays proportional to in-flight turns.
type conversationLocks struct {
	mu    sync.Mutex
	locks map[string]*conversationLock
}

func (c *conversationLocks) acquire(userID string, domain models.Domain) func() {
	key := string(domain) + ":" + userID

	c.mu.Lock()
	if c.locks == nil {
		c.locks = make(map[string]*conversationLock)
	}
	lock, ok := c.locks[key]
	if !ok {
		lock = &conversationLock{}
		c.locks[key] = lock
	}
	lock.refs++
	c.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		c.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(c.locks, key)
		}
		c.mu.Unlock()
	}
}
