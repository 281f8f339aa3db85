package dispatch

import (
	"context"
	"runtime/debug"
	"sync/atomic"
	"time"
)

// Executor runs handlers with panic recovery and timing.
// It is safe for concurrent use, though the bus only ever drives it from
// the owning goroutine.
type Executor struct {
	panicHandler PanicHandler

	executed  atomic.Uint64
	delivered atomic.Uint64
	failed    atomic.Uint64
	panicked  atomic.Uint64
	skipped   atomic.Uint64
	totalNs   atomic.Int64
}

// NewExecutor creates an executor with the given options.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{
		panicHandler: defaultPanicHandler,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithPanicHandler sets the callback invoked when a handler panics.
func WithPanicHandler(h PanicHandler) ExecutorOption {
	return func(e *Executor) {
		if h != nil {
			e.panicHandler = h
		}
	}
}

// Execute runs one handler with the given message and returns the result.
// Panics are recovered with a full stack trace; a cancelled context skips
// the handler entirely.
func (e *Executor) Execute(ctx context.Context, msg any, handler Handler) (result Result) {
	select {
	case <-ctx.Done():
		e.skipped.Add(1)
		return Result{Err: ctx.Err(), Skipped: true}
	default:
	}

	e.executed.Add(1)
	start := time.Now()

	defer func() {
		result.Duration = time.Since(start)
		e.totalNs.Add(result.Duration.Nanoseconds())

		if r := recover(); r != nil {
			stack := debug.Stack()

			result.Panicked = true
			result.PanicValue = r
			result.PanicStack = stack
			e.panicked.Add(1)

			// A panicking panic handler must not take the process down.
			func() {
				defer func() { _ = recover() }()
				e.panicHandler(msg, r, stack)
			}()
		}
	}()

	if err := handler.Handle(ctx, msg); err != nil {
		e.failed.Add(1)
		result.Err = err
	} else {
		e.delivered.Add(1)
	}

	return result
}

// ExecuteAll runs handlers sequentially and returns all results in order.
// If the context is cancelled between handlers, the remainder is marked
// skipped rather than silently dropped.
func (e *Executor) ExecuteAll(ctx context.Context, msg any, handlers []Handler) []Result {
	results := make([]Result, len(handlers))

	for i, handler := range handlers {
		select {
		case <-ctx.Done():
			for j := i; j < len(handlers); j++ {
				e.skipped.Add(1)
				results[j] = Result{Err: ctx.Err(), Skipped: true}
			}
			return results
		default:
		}

		results[i] = e.Execute(ctx, msg, handler)
	}

	return results
}

// Stats returns cumulative execution statistics.
// Values are read without a lock and may be slightly inconsistent while
// handlers are executing.
func (e *Executor) Stats() ExecutorStats {
	executed := e.executed.Load()
	totalNs := e.totalNs.Load()

	var avgNs int64
	if executed > 0 {
		avgNs = totalNs / int64(executed)
	}

	return ExecutorStats{
		Executed:      executed,
		Delivered:     e.delivered.Load(),
		Failed:        e.failed.Load(),
		Panicked:      e.panicked.Load(),
		Skipped:       e.skipped.Load(),
		TotalDuration: time.Duration(totalNs),
		AvgDuration:   time.Duration(avgNs),
	}
}

// ExecutorStats contains cumulative statistics for an Executor.
type ExecutorStats struct {
	// Executed is the number of handlers invoked.
	Executed uint64

	// Delivered is the number of handlers that completed without fault.
	Delivered uint64

	// Failed is the number of handlers that returned errors.
	Failed uint64

	// Panicked is the number of handlers that panicked.
	Panicked uint64

	// Skipped is the number of handlers not run due to cancellation.
	Skipped uint64

	// TotalDuration is the cumulative time spent in handlers.
	TotalDuration time.Duration

	// AvgDuration is the average handler execution time.
	AvgDuration time.Duration
}
