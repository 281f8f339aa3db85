// Package msgbus provides an in-process, type-safe publish/subscribe
// message bus.
//
// The bus lets independent components exchange strongly-typed messages
// without holding references to each other, and guarantees that a
// component's subscriptions are revoked in bulk when its lifetime ends.
// Subscriptions aggregate into a Token; disposing the Token removes every
// entry the owner registered, closing the dangling-subscriber leak class
// that naive event systems suffer from.
//
// # Message Kinds
//
// Every message type declares a stable identity (key.Type) and a routing
// kind (key.Kind), both fixed at declaration:
//
//   - Untargeted: delivered to every subscriber of the type.
//   - Targeted: delivered only to subscribers registered against one
//     specific recipient identity ("route this command to entity 42").
//   - Broadcast: delivered only to subscribers observing one specific
//     source identity ("entity 7's state changed").
//
// # Declaring Messages
//
//	const TakeDamage = key.Type("combat.take_damage")
//
//	type TakeDamageMsg struct {
//	    Amount int
//	}
//
//	func (TakeDamageMsg) MessageType() key.Type { return TakeDamage }
//	func (TakeDamageMsg) MessageKind() key.Kind { return key.KindTargeted }
//
// Messages travel by value. A handler receives its own copy and cannot
// mutate what later handlers in the same dispatch observe.
//
// # Basic Usage
//
//	bus := msgbus.New()
//
//	tok := bus.NewToken("health-system")
//	msgbus.TokenSubscribeTargeted(tok, key.EntityID(42),
//	    func(ctx context.Context, m TakeDamageMsg) error {
//	        applyDamage(m.Amount)
//	        return nil
//	    })
//
//	err := bus.EmitTargeted(ctx, TakeDamageMsg{Amount: 10}, key.EntityID(42))
//
//	// On component teardown:
//	tok.Dispose()
//
// # Dispatch Semantics
//
// Emission is synchronous: the emit call returns once every matching
// handler has been attempted. Before any handler runs, the bus takes a
// snapshot of the matching bucket, so a handler may register or
// unregister entries (including its own) without affecting the current
// emit's iteration; new registrations become eligible starting with the
// next emit. Within one bucket, delivery order is registration order.
//
// A faulting handler (error or panic) does not suppress delivery to the
// rest of the snapshot by default: all entries are attempted and the
// collected faults are returned joined after the pass. Configure
// WithFaultPolicy(FaultAbort) to stop at the first fault instead.
//
// # Threading
//
// One goroutine owns a Bus and performs all emits. Registration and
// unregistration are safe from any goroutine. To emit from a non-owning
// goroutine, use a Queue: any goroutine enqueues, and the owning
// goroutine drains at a defined point (typically once per tick), which
// performs the normal synchronous dispatch.
//
// # Subpackages
//
//   - key: message type identity, kinds and bucket addressing
//   - dispatch: panic-isolating handler execution
//   - host: component attach/detach lifecycle bound to Tokens
//   - metrics: Prometheus export of bus statistics
package msgbus
