package msgbus

import (
	"sync"

	"github.com/dshills/msgbus/key"
)

// Token binds the lifetime of a set of registrations to one owner.
//
// Every registration made through the token (or tracked onto it) is
// revoked in one Dispose call, which the host's teardown path is
// expected to invoke when the owning component detaches. Dispose is
// idempotent, and the token is reusable: after Dispose it holds nothing
// and later registrations start a fresh tracking session.
type Token struct {
	bus   Bus
	owner string

	mu      sync.Mutex
	entries []*Entry
}

// Owner returns the owner identity the token registers under.
func (t *Token) Owner() string {
	return t.owner
}

// Track records an entry for later bulk revocation.
// Tracking nil is a no-op.
func (t *Token) Track(e *Entry) {
	if e == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, e)
}

// Dispose unregisters every tracked entry and clears the tracked set.
// Disposing twice is a no-op, never an error.
func (t *Token) Dispose() {
	t.mu.Lock()
	entries := t.entries
	t.entries = nil
	t.mu.Unlock()

	for _, e := range entries {
		t.bus.Unregister(e)
	}
}

// Len returns the number of tracked entries.
func (t *Token) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// SubscribeUntargeted registers a handler under the token's owner and
// tracks the entry.
func (t *Token) SubscribeUntargeted(typ key.Type, h Handler) (*Entry, error) {
	e, err := t.bus.RegisterUntargeted(typ, t.owner, h)
	if err != nil {
		return nil, err
	}
	t.Track(e)
	return e, nil
}

// SubscribeTargeted registers a targeted handler under the token's
// owner and tracks the entry.
func (t *Token) SubscribeTargeted(typ key.Type, target key.EntityID, h Handler) (*Entry, error) {
	e, err := t.bus.RegisterTargeted(typ, target, t.owner, h)
	if err != nil {
		return nil, err
	}
	t.Track(e)
	return e, nil
}

// SubscribeBroadcast registers a broadcast handler under the token's
// owner and tracks the entry.
func (t *Token) SubscribeBroadcast(typ key.Type, source key.EntityID, h Handler) (*Entry, error) {
	e, err := t.bus.RegisterBroadcast(typ, source, t.owner, h)
	if err != nil {
		return nil, err
	}
	t.Track(e)
	return e, nil
}

// TokenSubscribeUntargeted is the typed form of Token.SubscribeUntargeted.
func TokenSubscribeUntargeted[T Message](t *Token, fn TypedHandlerFunc[T]) (*Entry, error) {
	e, err := SubscribeUntargeted(t.bus, t.owner, fn)
	if err != nil {
		return nil, err
	}
	t.Track(e)
	return e, nil
}

// TokenSubscribeTargeted is the typed form of Token.SubscribeTargeted.
func TokenSubscribeTargeted[T Message](t *Token, target key.EntityID, fn TypedHandlerFunc[T]) (*Entry, error) {
	e, err := SubscribeTargeted(t.bus, target, t.owner, fn)
	if err != nil {
		return nil, err
	}
	t.Track(e)
	return e, nil
}

// TokenSubscribeBroadcast is the typed form of Token.SubscribeBroadcast.
func TokenSubscribeBroadcast[T Message](t *Token, source key.EntityID, fn TypedHandlerFunc[T]) (*Entry, error) {
	e, err := SubscribeBroadcast(t.bus, source, t.owner, fn)
	if err != nil {
		return nil, err
	}
	t.Track(e)
	return e, nil
}
