package dispatch

import (
	"context"
	"time"
)

// Handler is the interface for message handlers.
// This mirrors the root package's handler to avoid circular imports;
// the bus adapts its typed handlers to this shape before dispatch.
type Handler interface {
	Handle(ctx context.Context, msg any) error
}

// HandlerFunc is a function adapter for Handler.
type HandlerFunc func(ctx context.Context, msg any) error

// Handle implements the Handler interface.
func (f HandlerFunc) Handle(ctx context.Context, msg any) error {
	return f(ctx, msg)
}

// Result represents the outcome of one handler execution.
type Result struct {
	// Err is the error returned by the handler, if any.
	Err error

	// Panicked is true if the handler panicked.
	Panicked bool

	// PanicValue is the value passed to panic(), if Panicked is true.
	PanicValue any

	// PanicStack is the stack trace captured at the point of panic.
	PanicStack []byte

	// Duration is how long the handler took to execute.
	Duration time.Duration

	// Skipped is true if the handler was not executed
	// (context cancelled before invocation).
	Skipped bool
}

// Delivered returns true if the handler ran to completion without
// error or panic.
func (r Result) Delivered() bool {
	return !r.Skipped && !r.Panicked && r.Err == nil
}

// Faulted returns true if the handler ran and failed, by error or panic.
func (r Result) Faulted() bool {
	return r.Panicked || (r.Err != nil && !r.Skipped)
}

// PanicHandler is called when a handler panics during execution.
// It receives the message being dispatched, the panic value and the
// stack trace.
type PanicHandler func(msg any, panicValue any, stack []byte)

// defaultPanicHandler is a no-op. The bus installs its own handler that
// reports through the configured logger.
func defaultPanicHandler(msg any, panicValue any, stack []byte) {
}
