package msgbus

import (
	"errors"
	"fmt"

	"github.com/dshills/msgbus/key"
)

// Sentinel errors for the message bus.
var (
	// ErrNilHandler is returned when a nil handler is registered.
	ErrNilHandler = errors.New("handler cannot be nil")

	// ErrNilMessage is returned when a nil message is emitted.
	ErrNilMessage = errors.New("message cannot be nil")

	// ErrUnknownMessageType is returned when registering or emitting a
	// message whose type identity is undeclared (empty). It never fails
	// silently: a silent miss here hides integration bugs.
	ErrUnknownMessageType = errors.New("unknown message type")

	// ErrKindMismatch is returned when a message reaches an emit or
	// subscribe entry point that does not match its declared kind.
	ErrKindMismatch = errors.New("message kind does not match entry point")

	// ErrQueueFull is returned when the emit queue cannot accept another
	// message. The message is dropped, not blocked on.
	ErrQueueFull = errors.New("emit queue is full")

	// ErrQueueClosed is returned when enqueueing on a closed queue.
	ErrQueueClosed = errors.New("emit queue is closed")

	// ErrHandlerPanic matches any PanicError via errors.Is.
	ErrHandlerPanic = errors.New("handler panicked")
)

// HandlerError wraps an error returned by a subscriber handler with the
// identity of the failing entry.
type HandlerError struct {
	// EntryID is the ID of the subscriber entry whose handler failed.
	EntryID string

	// Owner is the owner identity the entry was registered under.
	Owner string

	// Type is the identity of the message being dispatched.
	Type key.Type

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler fault for entry %s (owner %s) on %s: %v",
		e.EntryID, e.Owner, e.Type, e.Err)
}

// Unwrap returns the underlying error.
func (e *HandlerError) Unwrap() error {
	return e.Err
}

// PanicError wraps a recovered handler panic as an error.
type PanicError struct {
	// EntryID is the ID of the subscriber entry whose handler panicked.
	EntryID string

	// Owner is the owner identity the entry was registered under.
	Owner string

	// Type is the identity of the message being dispatched.
	Type key.Type

	// Value is the value passed to panic().
	Value any

	// Stack is the stack trace captured at the point of panic.
	Stack []byte
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("handler panic for entry %s (owner %s) on %s: %v",
		e.EntryID, e.Owner, e.Type, e.Value)
}

// Is allows errors.Is to match PanicError with ErrHandlerPanic.
func (e *PanicError) Is(target error) bool {
	return target == ErrHandlerPanic
}
