package msgbus

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dshills/msgbus/dispatch"
	"github.com/dshills/msgbus/key"
)

// Bus is the public entry point for registration and emission.
//
// Emission is synchronous and must come from the goroutine that owns the
// bus (use a Queue for cross-goroutine admission). Registration and
// unregistration are safe from any goroutine.
type Bus interface {
	// RegisterUntargeted adds a subscriber for every message of type t.
	RegisterUntargeted(t key.Type, owner string, h Handler) (*Entry, error)

	// RegisterTargeted adds a subscriber for messages of type t addressed
	// to target.
	RegisterTargeted(t key.Type, target key.EntityID, owner string, h Handler) (*Entry, error)

	// RegisterBroadcast adds a subscriber observing messages of type t
	// from source.
	RegisterBroadcast(t key.Type, source key.EntityID, owner string, h Handler) (*Entry, error)

	// Unregister removes an entry. Unregistering a nil, cancelled or
	// already-removed entry is a no-op, never an error; end-of-lifetime
	// races are expected in component hosts.
	Unregister(e *Entry)

	// EmitUntargeted delivers msg to every subscriber of its type.
	EmitUntargeted(ctx context.Context, msg Message) error

	// EmitTargeted delivers msg to subscribers registered against target.
	// No subscriber for that target means zero handlers run, not an error.
	EmitTargeted(ctx context.Context, msg Message, target key.EntityID) error

	// EmitBroadcast delivers msg to subscribers observing source.
	EmitBroadcast(ctx context.Context, msg Message, source key.EntityID) error

	// NewToken creates an empty subscription token for owner.
	NewToken(owner string) *Token

	// Len returns the number of registered entries.
	Len() int

	// Stats returns cumulative bus statistics.
	Stats() Stats
}

// Stats contains cumulative bus statistics.
type Stats struct {
	// Emitted is the number of emit calls that passed validation.
	Emitted uint64

	// Delivered is the number of handler executions that completed
	// without fault.
	Delivered uint64

	// HandlerFaults is the number of handlers that returned errors.
	HandlerFaults uint64

	// HandlerPanics is the number of handlers that panicked.
	HandlerPanics uint64

	// ActiveEntries is the current number of active subscriber entries.
	ActiveEntries int
}

// bus is the default Bus implementation.
type bus struct {
	table   *registry
	exec    *dispatch.Executor
	config  busConfig
	emitted atomic.Uint64
}

// New creates a message bus with the given options. Each bus is an
// independent instance with caller-controlled lifetime; there is no
// process-wide bus.
func New(opts ...BusOption) Bus {
	config := defaultBusConfig()
	for _, opt := range opts {
		opt(&config)
	}

	b := &bus{
		table:  newRegistry(),
		config: config,
	}
	b.exec = dispatch.NewExecutor(dispatch.WithPanicHandler(b.onPanic))
	return b
}

// onPanic forwards handler panics to the optional configured callback.
// Logging happens in the emit loop where the entry identity is known.
func (b *bus) onPanic(msg any, panicValue any, stack []byte) {
	if b.config.panicHandler != nil {
		b.config.panicHandler(msg, panicValue, stack)
	}
}

// register adds one entry to the table.
func (b *bus) register(bucket key.Bucket, owner string, h Handler) (*Entry, error) {
	if h == nil {
		return nil, ErrNilHandler
	}
	if !bucket.Type.Valid() {
		return nil, ErrUnknownMessageType
	}

	e := newEntry(uuid.NewString(), bucket, owner, h)
	b.table.add(e)
	return e, nil
}

// RegisterUntargeted implements Bus.
func (b *bus) RegisterUntargeted(t key.Type, owner string, h Handler) (*Entry, error) {
	return b.register(key.UntargetedBucket(t), owner, h)
}

// RegisterTargeted implements Bus.
func (b *bus) RegisterTargeted(t key.Type, target key.EntityID, owner string, h Handler) (*Entry, error) {
	return b.register(key.TargetedBucket(t, target), owner, h)
}

// RegisterBroadcast implements Bus.
func (b *bus) RegisterBroadcast(t key.Type, source key.EntityID, owner string, h Handler) (*Entry, error) {
	return b.register(key.BroadcastBucket(t, source), owner, h)
}

// Unregister implements Bus.
func (b *bus) Unregister(e *Entry) {
	if e == nil {
		return
	}
	e.Cancel()
	b.table.remove(e.id)
}

// EmitUntargeted implements Bus.
func (b *bus) EmitUntargeted(ctx context.Context, msg Message) error {
	return b.emit(ctx, msg, key.KindUntargeted, key.None)
}

// EmitTargeted implements Bus.
func (b *bus) EmitTargeted(ctx context.Context, msg Message, target key.EntityID) error {
	return b.emit(ctx, msg, key.KindTargeted, target)
}

// EmitBroadcast implements Bus.
func (b *bus) EmitBroadcast(ctx context.Context, msg Message, source key.EntityID) error {
	return b.emit(ctx, msg, key.KindBroadcast, source)
}

// emit resolves the bucket for msg, snapshots it and invokes each entry
// in registration order. The snapshot makes handler-driven registration
// and unregistration safe; entries cancelled after the snapshot are
// skipped by the invocation-time existence check.
func (b *bus) emit(ctx context.Context, msg Message, kind key.Kind, scope key.EntityID) error {
	if msg == nil {
		return ErrNilMessage
	}
	t := msg.MessageType()
	if !t.Valid() {
		return ErrUnknownMessageType
	}
	if msg.MessageKind() != kind {
		return fmt.Errorf("%w: %s declared %s, emitted as %s",
			ErrKindMismatch, t, msg.MessageKind(), kind)
	}

	b.emitted.Add(1)

	snap := b.table.snapshot(key.Bucket{Type: t, Kind: kind, Scope: scope})
	if len(snap) == 0 {
		return nil
	}

	var faults []error
	for _, e := range snap {
		if !e.deliverable() {
			continue
		}

		result := b.exec.Execute(ctx, msg, execAdapter{e.handler})
		if result.Skipped {
			// Context cancelled; the remainder of the snapshot would be
			// skipped the same way, so stop here.
			faults = append(faults, result.Err)
			break
		}

		switch {
		case result.Panicked:
			fault := &PanicError{
				EntryID: e.id,
				Owner:   e.owner,
				Type:    t,
				Value:   result.PanicValue,
				Stack:   result.PanicStack,
			}
			b.config.logger.WithFields(logrus.Fields{
				"type":  t.String(),
				"entry": e.id,
				"owner": e.owner,
				"stack": string(result.PanicStack),
			}).Error("msgbus: handler panic")
			faults = append(faults, fault)
			if b.config.faultPolicy == FaultAbort {
				return fault
			}
		case result.Err != nil:
			fault := &HandlerError{
				EntryID: e.id,
				Owner:   e.owner,
				Type:    t,
				Err:     result.Err,
			}
			b.config.logger.WithFields(logrus.Fields{
				"type":  t.String(),
				"entry": e.id,
				"owner": e.owner,
			}).WithError(result.Err).Error("msgbus: handler fault")
			faults = append(faults, fault)
			if b.config.faultPolicy == FaultAbort {
				return fault
			}
		}
	}

	return errors.Join(faults...)
}

// NewToken implements Bus.
func (b *bus) NewToken(owner string) *Token {
	return &Token{bus: b, owner: owner}
}

// Len implements Bus.
func (b *bus) Len() int {
	return b.table.len()
}

// Stats implements Bus.
func (b *bus) Stats() Stats {
	es := b.exec.Stats()
	return Stats{
		Emitted:       b.emitted.Load(),
		Delivered:     es.Delivered,
		HandlerFaults: es.Failed,
		HandlerPanics: es.Panicked,
		ActiveEntries: b.table.lenActive(),
	}
}

// execAdapter bridges the typed Handler to the dispatch executor.
type execAdapter struct {
	h Handler
}

// Handle implements dispatch.Handler.
func (a execAdapter) Handle(ctx context.Context, msg any) error {
	m, ok := msg.(Message)
	if !ok {
		return nil
	}
	return a.h.Handle(ctx, m)
}

// SubscribeUntargeted registers a typed handler for every message of
// type T. The type identity and kind come from T's declaration, so a
// mismatched entry point is caught before anything is registered.
func SubscribeUntargeted[T Message](b Bus, owner string, fn TypedHandlerFunc[T]) (*Entry, error) {
	if KindOf[T]() != key.KindUntargeted {
		return nil, fmt.Errorf("%w: %s declared %s, subscribed untargeted",
			ErrKindMismatch, TypeOf[T](), KindOf[T]())
	}
	return b.RegisterUntargeted(TypeOf[T](), owner, AsHandler(fn))
}

// SubscribeTargeted registers a typed handler for messages of type T
// addressed to target.
func SubscribeTargeted[T Message](b Bus, target key.EntityID, owner string, fn TypedHandlerFunc[T]) (*Entry, error) {
	if KindOf[T]() != key.KindTargeted {
		return nil, fmt.Errorf("%w: %s declared %s, subscribed targeted",
			ErrKindMismatch, TypeOf[T](), KindOf[T]())
	}
	return b.RegisterTargeted(TypeOf[T](), target, owner, AsHandler(fn))
}

// SubscribeBroadcast registers a typed handler observing messages of
// type T from source.
func SubscribeBroadcast[T Message](b Bus, source key.EntityID, owner string, fn TypedHandlerFunc[T]) (*Entry, error) {
	if KindOf[T]() != key.KindBroadcast {
		return nil, fmt.Errorf("%w: %s declared %s, subscribed broadcast",
			ErrKindMismatch, TypeOf[T](), KindOf[T]())
	}
	return b.RegisterBroadcast(TypeOf[T](), source, owner, AsHandler(fn))
}
