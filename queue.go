package msgbus

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/dshills/msgbus/key"
)

// DefaultQueueCapacity is the queue capacity when none is given.
const DefaultQueueCapacity = 1024

// Queue is the cross-goroutine admission path for a bus.
//
// The bus itself is owned by one goroutine; a Queue lets any goroutine
// hand a message to that owner. Enqueue never dispatches: it only admits
// the message. The owning goroutine calls Drain at a defined point
// (typically once per tick), which performs the normal synchronous
// emits. Dispatch semantics are unchanged; only admission moves across
// the thread boundary.
//
// Admission is bounded: a full queue drops the message and reports
// ErrQueueFull rather than blocking the producer.
type Queue struct {
	bus Bus
	ch  chan queued

	closed   atomic.Bool
	enqueued atomic.Uint64
	dropped  atomic.Uint64
	drained  atomic.Uint64
}

// queued is one admitted emission awaiting drain.
type queued struct {
	msg   Message
	kind  key.Kind
	scope key.EntityID
}

// NewQueue creates a queue feeding the given bus.
// A capacity of zero or less uses DefaultQueueCapacity.
func NewQueue(b Bus, capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	return &Queue{
		bus: b,
		ch:  make(chan queued, capacity),
	}
}

// EnqueueUntargeted admits an untargeted message from any goroutine.
func (q *Queue) EnqueueUntargeted(msg Message) error {
	return q.enqueue(msg, key.KindUntargeted, key.None)
}

// EnqueueTargeted admits a targeted message from any goroutine.
func (q *Queue) EnqueueTargeted(msg Message, target key.EntityID) error {
	return q.enqueue(msg, key.KindTargeted, target)
}

// EnqueueBroadcast admits a broadcast message from any goroutine.
func (q *Queue) EnqueueBroadcast(msg Message, source key.EntityID) error {
	return q.enqueue(msg, key.KindBroadcast, source)
}

// enqueue validates at admission time, so producers learn about bad
// messages immediately instead of finding the error folded into a later
// Drain result.
func (q *Queue) enqueue(msg Message, kind key.Kind, scope key.EntityID) error {
	if q.closed.Load() {
		return ErrQueueClosed
	}
	if msg == nil {
		return ErrNilMessage
	}
	if !msg.MessageType().Valid() {
		return ErrUnknownMessageType
	}
	if msg.MessageKind() != kind {
		return ErrKindMismatch
	}

	select {
	case q.ch <- queued{msg: msg, kind: kind, scope: scope}:
		q.enqueued.Add(1)
		return nil
	default:
		q.dropped.Add(1)
		return ErrQueueFull
	}
}

// Drain emits every pending message on the calling goroutine, which
// must be the bus owner. It returns when the queue is empty or the
// context is cancelled, with any emit faults joined.
func (q *Queue) Drain(ctx context.Context) error {
	var faults []error

	for {
		select {
		case <-ctx.Done():
			faults = append(faults, ctx.Err())
			return errors.Join(faults...)
		case p := <-q.ch:
			q.drained.Add(1)
			if err := q.emit(ctx, p); err != nil {
				faults = append(faults, err)
			}
		default:
			return errors.Join(faults...)
		}
	}
}

// emit performs the synchronous dispatch for one drained message.
func (q *Queue) emit(ctx context.Context, p queued) error {
	switch p.kind {
	case key.KindTargeted:
		return q.bus.EmitTargeted(ctx, p.msg, p.scope)
	case key.KindBroadcast:
		return q.bus.EmitBroadcast(ctx, p.msg, p.scope)
	default:
		return q.bus.EmitUntargeted(ctx, p.msg)
	}
}

// Close stops admission. Messages already admitted can still be
// drained; the channel itself is never closed so racing producers get
// ErrQueueClosed instead of a panic.
func (q *Queue) Close() {
	q.closed.Store(true)
}

// Len returns the number of pending messages.
func (q *Queue) Len() int {
	return len(q.ch)
}

// Stats returns cumulative queue statistics.
func (q *Queue) Stats() QueueStats {
	return QueueStats{
		Enqueued: q.enqueued.Load(),
		Drained:  q.drained.Load(),
		Dropped:  q.dropped.Load(),
		Depth:    len(q.ch),
	}
}

// QueueStats contains cumulative statistics for a Queue.
type QueueStats struct {
	// Enqueued is the number of messages admitted.
	Enqueued uint64

	// Drained is the number of messages dispatched by Drain.
	Drained uint64

	// Dropped is the number of messages rejected by a full queue.
	Dropped uint64

	// Depth is the current number of pending messages.
	Depth int
}
