package msgbus

import (
	"context"

	"github.com/dshills/msgbus/key"
)

// Message is implemented by every value emitted on the bus.
//
// Both methods must use value receivers and return constants: the type
// identity and kind are fixed when the message type is declared, never
// chosen per emit. Message types should be plain structs emitted by
// value; they are transient, created immediately before emission and
// never retained past the end of the dispatch call.
type Message interface {
	// MessageType returns the stable identity of the message type.
	MessageType() key.Type

	// MessageKind returns the routing kind fixed at declaration.
	MessageKind() key.Kind
}

// Handler is the interface for message handlers.
type Handler interface {
	// Handle processes a message. The message is delivered by value;
	// retaining it past the call is safe but mutation is invisible to
	// other handlers.
	Handle(ctx context.Context, msg Message) error
}

// HandlerFunc is a function adapter for Handler.
type HandlerFunc func(ctx context.Context, msg Message) error

// Handle implements the Handler interface.
func (f HandlerFunc) Handle(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}

// TypedHandlerFunc is a handler for one concrete message type.
type TypedHandlerFunc[T Message] func(ctx context.Context, msg T) error

// AsHandler converts a TypedHandlerFunc to a generic Handler.
// Messages of any other concrete type are skipped silently; the bucket
// keying makes that case unreachable in practice.
func AsHandler[T Message](fn TypedHandlerFunc[T]) Handler {
	return HandlerFunc(func(ctx context.Context, msg Message) error {
		if m, ok := msg.(T); ok {
			return fn(ctx, m)
		}
		return nil
	})
}

// TypeOf returns the declared type identity of T.
func TypeOf[T Message]() key.Type {
	var zero T
	return zero.MessageType()
}

// KindOf returns the declared kind of T.
func KindOf[T Message]() key.Kind {
	var zero T
	return zero.MessageKind()
}
