// Package dispatch executes subscriber handlers with panic isolation.
//
// The bus resolves an emitted message to a snapshot of subscriber entries
// and hands each handler to an Executor. The Executor runs the handler in
// the caller's goroutine, recovers panics with a full stack trace, honors
// context cancellation between handlers and reports the outcome as a
// Result value. It never decides policy: whether a fault aborts the rest
// of the snapshot or is collected and surfaced afterwards belongs to the
// bus, not here.
//
// Handlers always run synchronously. Cross-thread admission is handled by
// the bus's queue front door, which still drains into this executor on the
// owning goroutine.
package dispatch
