package infrastructure

import "sync"

// BusinessLocker serializes agent sync operations per business. Two concurrent
// settings updates for the same business would otherwise both read the same
// prior record, merge independently, and silently lose the earlier write.
type BusinessLocker struct {
	mu    sync.Mutex
	locks map[string]*businessLock
}

type businessLock struct {
	mu   sync.Mutex
	refs int
}

func NewBusinessLocker() *BusinessLocker {
	return &BusinessLocker{
		locks: make(map[string]*businessLock),
	}
}

// Lock acquires the advisory lock for a business, blocking until available.
func (bl *BusinessLocker) Lock(businessID string) {
	bl.mu.Lock()
	lock, exists := bl.locks[businessID]
	if !exists {
		lock = &businessLock{}
		bl.locks[businessID] = lock
	}
	lock.refs++
	bl.mu.Unlock()

	lock.mu.Lock()
}

// Unlock releases the lock and drops its entry once no caller is waiting.
func (bl *BusinessLocker) Unlock(businessID string) {
	bl.mu.Lock()
	lock, exists := bl.locks[businessID]
	if exists {
		lock.refs--
		if lock.refs == 0 {
			delete(bl.locks, businessID)
		}
	}
	bl.mu.Unlock()

	if exists {
		lock.mu.Unlock()
	}
}
