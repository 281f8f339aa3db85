// Package key defines the addressing vocabulary for the message bus.
//
// Every subscriber bucket is addressed by a Bucket value combining three
// parts:
//
//   - Type: the stable, declaration-time identity of a message type
//     (e.g. "combat.take_damage"). Hosts declare these as package constants.
//   - Kind: how the message is routed - Untargeted (all subscribers of the
//     type), Targeted (subscribers addressing one recipient) or Broadcast
//     (subscribers observing one source).
//   - Scope: the recipient or source EntityID for the scoped kinds, and
//     None for Untargeted.
//
// Bucket is a comparable value, so the subscriber table resolves an emitted
// message with a single map access - no reflection, no pattern matching.
//
// Example:
//
//	const TakeDamage = key.Type("combat.take_damage")
//
//	b := key.TargetedBucket(TakeDamage, key.EntityID(42))
package key
