// ABOUTME: Per-thread keyed mutex serializing turns on the same thread
// ABOUTME: Refcounted entries so idle threads don't leak lock state

package orchestrator

import "sync"

// threadLocks hands out one mutex per thread id. Entries are refcounted and
// removed once no turn holds or waits on them.
type threadLocks struct {
	mu    sync.Mutex
	locks map[string]*threadLock
}

type threadLock struct {
	mu   sync.Mutex
	refs int
}

func newThreadLocks() *threadLocks {
	return &threadLocks{locks: make(map[string]*threadLock)}
}

// acquire blocks until the caller holds the lock for threadID.
func (t *threadLocks) acquire(threadID string) {
	t.mu.Lock()
	l, ok := t.locks[threadID]
	if !ok {
		l = &threadLock{}
		t.locks[threadID] = l
	}
	l.refs++
	t.mu.Unlock()

	l.mu.Lock()
}

// release unlocks threadID and drops the entry when nobody else wants it.
func (t *threadLocks) release(threadID string) {
	t.mu.Lock()
	l := t.locks[threadID]
	l.refs--
	if l.refs == 0 {
		delete(t.locks, threadID)
	}
	t.mu.Unlock()

	l.mu.Unlock()
}
