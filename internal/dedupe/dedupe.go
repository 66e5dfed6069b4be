// ABOUTME: TTL guard against duplicate turn delivery
// ABOUTME: Keys on caller, thread, and message text so retries don't double-append

package dedupe

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// Guard rejects repeated deliveries of the same turn within a TTL window.
// Clients that retry on timeouts can hit the gateway twice with the same
// message; without the guard both deliveries would append to the thread.
//
// Entries live in a size-capped map with a linked list preserving insertion
// order for O(1) eviction of the oldest key.
type Guard struct {
	mu      sync.Mutex
	entries map[string]*entry
	order   *list.List
	ttl     time.Duration
	maxSize int
	done    chan struct{}
	closed  bool
}

type entry struct {
	seenAt  time.Time
	element *list.Element
}

// NewGuard creates a guard with the given TTL and entry cap, and starts a
// background sweep of expired entries.
func NewGuard(ttl time.Duration, maxSize int) *Guard {
	g := &Guard{
		entries: make(map[string]*entry),
		order:   list.New(),
		ttl:     ttl,
		maxSize: maxSize,
		done:    make(chan struct{}),
	}
	go g.sweep()
	return g
}

// Duplicate atomically checks whether this exact turn was delivered within
// the TTL, recording it if not. Returns true when the delivery is a repeat.
func (g *Guard) Duplicate(ownerID, threadID, message string) bool {
	key := turnKey(ownerID, threadID, message)

	g.mu.Lock()
	defer g.mu.Unlock()

	if e, ok := g.entries[key]; ok && time.Since(e.seenAt) < g.ttl {
		return true
	}
	g.record(key)
	return false
}

// Forget drops a recorded delivery. The gateway records a delivery before the
// turn's outcome is known; forgetting it on failure lets the client retry
// without tripping the duplicate check.
func (g *Guard) Forget(ownerID, threadID, message string) {
	key := turnKey(ownerID, threadID, message)

	g.mu.Lock()
	defer g.mu.Unlock()

	if e, ok := g.entries[key]; ok {
		g.order.Remove(e.element)
		delete(g.entries, key)
	}
}

// record inserts or refreshes a key. Must be called with mu held.
func (g *Guard) record(key string) {
	now := time.Now()

	if e, ok := g.entries[key]; ok {
		e.seenAt = now
		g.order.MoveToBack(e.element)
		return
	}

	if len(g.entries) >= g.maxSize {
		if front := g.order.Front(); front != nil {
			oldest, _ := front.Value.(string)
			g.order.Remove(front)
			delete(g.entries, oldest)
		}
	}

	g.entries[key] = &entry{
		seenAt:  now,
		element: g.order.PushBack(key),
	}
}

// sweep periodically drops expired entries.
func (g *Guard) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			g.mu.Lock()
			now := time.Now()
			for key, e := range g.entries {
				if now.Sub(e.seenAt) > g.ttl {
					g.order.Remove(e.element)
					delete(g.entries, key)
				}
			}
			g.mu.Unlock()
		case <-g.done:
			return
		}
	}
}

// Close stops the background sweep. Safe to call more than once.
func (g *Guard) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.closed {
		close(g.done)
		g.closed = true
	}
}

// turnKey hashes the identifying parts of a delivery into a fixed-size key.
func turnKey(ownerID, threadID, message string) string {
	h := sha256.New()
	h.Write([]byte(ownerID))
	h.Write([]byte{0})
	h.Write([]byte(threadID))
	h.Write([]byte{0})
	h.Write([]byte(message))
	return hex.EncodeToString(h.Sum(nil))
}
