package msgbus

import (
	"sync/atomic"

	"github.com/dshills/msgbus/key"
)

// EntryState represents the state of a subscriber entry.
type EntryState int32

const (
	// EntryActive means the entry is receiving messages.
	EntryActive EntryState = iota

	// EntryPaused means the entry is temporarily not receiving messages.
	EntryPaused

	// EntryCancelled means the entry has been permanently removed.
	EntryCancelled
)

// String returns a human-readable state name.
func (s EntryState) String() string {
	switch s {
	case EntryActive:
		return "active"
	case EntryPaused:
		return "paused"
	case EntryCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Entry is one subscriber registration: a handler bound to a bucket and
// an owner identity. It is the handle returned by registration and
// aggregated by a Token.
//
// State changes are safe from any goroutine. Existence is re-checked at
// invocation time, so an entry cancelled between the dispatch snapshot
// and its turn in the snapshot is skipped.
type Entry struct {
	id      string
	bucket  key.Bucket
	owner   string
	handler Handler
	state   atomic.Int32
}

// newEntry creates an active entry.
func newEntry(id string, bucket key.Bucket, owner string, h Handler) *Entry {
	e := &Entry{
		id:      id,
		bucket:  bucket,
		owner:   owner,
		handler: h,
	}
	e.state.Store(int32(EntryActive))
	return e
}

// ID returns the unique entry identifier.
func (e *Entry) ID() string {
	return e.id
}

// Bucket returns the bucket the entry is registered in.
func (e *Entry) Bucket() key.Bucket {
	return e.bucket
}

// Owner returns the owner identity the entry was registered under.
func (e *Entry) Owner() string {
	return e.owner
}

// State returns the current entry state.
func (e *Entry) State() EntryState {
	return EntryState(e.state.Load())
}

// IsActive returns true if the entry can receive messages.
func (e *Entry) IsActive() bool {
	return e.State() == EntryActive
}

// Pause temporarily stops delivery to this entry.
// Only an active entry can be paused.
func (e *Entry) Pause() {
	e.state.CompareAndSwap(int32(EntryActive), int32(EntryPaused))
}

// Resume restarts delivery after a pause.
// Only a paused entry can be resumed; a cancelled entry stays cancelled.
func (e *Entry) Resume() {
	e.state.CompareAndSwap(int32(EntryPaused), int32(EntryActive))
}

// Cancel permanently stops delivery. Cancellation is one-way.
func (e *Entry) Cancel() {
	e.state.Store(int32(EntryCancelled))
}

// deliverable is the invocation-time existence check.
func (e *Entry) deliverable() bool {
	return e.IsActive()
}
