package msgbus

import (
	"sync"

	"github.com/dshills/msgbus/key"
)

// registry is the subscriber table: buckets of entries addressed by
// (type, kind, scope), plus an ID index for removal. It is safe for
// concurrent use.
//
// Insertion order is preserved per bucket; that order is the delivery
// order. The same (owner, handler) pair may be registered twice - each
// registration is a distinct entry with its own handle.
type registry struct {
	mu      sync.RWMutex
	buckets map[key.Bucket][]*Entry
	byID    map[string]*Entry
}

// newRegistry creates an empty subscriber table.
func newRegistry() *registry {
	return &registry{
		buckets: make(map[key.Bucket][]*Entry),
		byID:    make(map[string]*Entry),
	}
}

// add appends an entry to its bucket.
func (r *registry) add(e *Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.buckets[e.bucket] = append(r.buckets[e.bucket], e)
	r.byID[e.id] = e
}

// remove deletes an entry by ID. Removing an unknown or already-removed
// ID returns false and is otherwise a no-op.
func (r *registry) remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, exists := r.byID[id]
	if !exists {
		return false
	}

	entries := r.buckets[e.bucket]
	for i, cur := range entries {
		if cur.id == id {
			r.buckets[e.bucket] = append(entries[:i], entries[i+1:]...)
			break
		}
	}
	if len(r.buckets[e.bucket]) == 0 {
		delete(r.buckets, e.bucket)
	}

	delete(r.byID, id)
	return true
}

// get returns an entry by ID.
func (r *registry) get(id string) (*Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, exists := r.byID[id]
	return e, exists
}

// snapshot returns a copy of the bucket's entries in insertion order.
// The copy is mandatory: handlers invoked during dispatch may register
// or unregister entries, and those mutations must not affect the
// iteration of the emit in flight.
func (r *registry) snapshot(b key.Bucket) []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := r.buckets[b]
	if len(entries) == 0 {
		return nil
	}

	snap := make([]*Entry, len(entries))
	copy(snap, entries)
	return snap
}

// len returns the total number of entries in the table.
func (r *registry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.byID)
}

// lenBucket returns the number of entries in one bucket.
func (r *registry) lenBucket(b key.Bucket) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.buckets[b])
}

// lenActive returns the number of active entries.
func (r *registry) lenActive() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, e := range r.byID {
		if e.IsActive() {
			count++
		}
	}
	return count
}

// clear removes every entry.
func (r *registry) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.buckets = make(map[key.Bucket][]*Entry)
	r.byID = make(map[string]*Entry)
}
