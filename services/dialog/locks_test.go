package dialog

import (
	"sync"
	"testing"

	"concierge/models"

	"github.com/stretchr/testify/assert"
)

func TestConversationLocksSerializeSameConversation(t *testing.T) {
	var locks conversationLocks
	var active, maxActive int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release := locks.acquire("u1", models.DomainService)
			mu.Lock()
			active++
			if active > maxActive {
				maxActive = active
			}
			mu.Unlock()

			mu.Lock()
			active--
			mu.Unlock()
			release()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxActive, "turns for one conversation must not overlap")
}

func TestConversationLocksReleaseDropsIdleEntries(t *testing.T) {
	var locks conversationLocks

	r1 := locks.acquire("u1", models.DomainService)
	r2 := locks.acquire("u2", models.DomainReservation)
	r1()
	r2()

	locks.mu.Lock()
	defer locks.mu.Unlock()
	assert.Empty(t, locks.locks, "released conversations must not pin map entries")
}

func TestConversationLocksContendedEntrySurvivesUntilLastRelease(t *testing.T) {
	var locks conversationLocks

	r1 := locks.acquire("u1", models.DomainService)

	done := make(chan func(), 1)
	go func() {
		done <- locks.acquire("u1", models.DomainService)
	}()

	locks.mu.Lock()
	assert.Len(t, locks.locks, 1)
	locks.mu.Unlock()

	r1()
	r2 := <-done
	r2()

	locks.mu.Lock()
	defer locks.mu.Unlock()
	assert.Empty(t, locks.locks)
}
