package infrastructure

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusinessLockerMutualExclusion(t *testing.T) {
	bl := NewBusinessLocker()

	const goroutines = 50
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bl.Lock("biz1")
			defer bl.Unlock("biz1")
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines, counter)
}

func TestBusinessLockerIndependentKeys(t *testing.T) {
	bl := NewBusinessLocker()

	bl.Lock("biz1")

	done := make(chan struct{})
	go func() {
		bl.Lock("biz2")
		bl.Unlock("biz2")
		close(done)
	}()

	// A lock on biz1 must not block biz2.
	<-done
	bl.Unlock("biz1")
}

func TestBusinessLockerDropsIdleEntries(t *testing.T) {
	bl := NewBusinessLocker()

	bl.Lock("biz1")
	bl.Unlock("biz1")

	bl.mu.Lock()
	defer bl.mu.Unlock()
	assert.Empty(t, bl.locks, "released locks must not accumulate")
}

func TestBusinessLockerUnlockUnknownKey(t *testing.T) {
	bl := NewBusinessLocker()

	// Must not panic.
	bl.Unlock("never-locked")
}
