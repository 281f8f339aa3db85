package key

import "strconv"

// Kind determines how an emitted message is routed to subscribers.
// A message type's kind is fixed at declaration, never chosen per emit.
type Kind uint8

const (
	// KindUntargeted delivers to every subscriber of the message type.
	KindUntargeted Kind = iota

	// KindTargeted delivers only to subscribers registered against one
	// specific recipient identity.
	KindTargeted

	// KindBroadcast delivers only to subscribers observing one specific
	// source identity ("this instance's state changed").
	KindBroadcast
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindUntargeted:
		return "untargeted"
	case KindTargeted:
		return "targeted"
	case KindBroadcast:
		return "broadcast"
	default:
		return "unknown"
	}
}

// Valid reports whether k is one of the three declared kinds.
func (k Kind) Valid() bool {
	return k <= KindBroadcast
}

// Scoped reports whether the kind routes on an EntityID.
func (k Kind) Scoped() bool {
	return k == KindTargeted || k == KindBroadcast
}

// Type is the stable identity of a message type.
// Hosts declare one constant per message type, conventionally namespaced
// with dots: "combat.take_damage", "player.died".
type Type string

// String returns the type as a string.
func (t Type) String() string {
	return string(t)
}

// Valid reports whether the type identity is declared (non-empty).
// An empty Type is the "unknown message type" case.
func (t Type) Valid() bool {
	return t != ""
}

// EntityID identifies a message target or source within the host.
type EntityID uint64

// None is the zero EntityID, used as the scope of untargeted buckets.
const None EntityID = 0

// String returns the id in decimal form.
func (id EntityID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// Bucket addresses one subscriber collection in the table.
// It is comparable and used directly as a map key.
type Bucket struct {
	// Type is the message type identity.
	Type Type

	// Kind is the routing kind.
	Kind Kind

	// Scope is the target (Targeted) or source (Broadcast) identity.
	// Always None for Untargeted buckets.
	Scope EntityID
}

// UntargetedBucket returns the bucket for all subscribers of t.
func UntargetedBucket(t Type) Bucket {
	return Bucket{Type: t, Kind: KindUntargeted, Scope: None}
}

// TargetedBucket returns the bucket for subscribers addressing target.
func TargetedBucket(t Type, target EntityID) Bucket {
	return Bucket{Type: t, Kind: KindTargeted, Scope: target}
}

// BroadcastBucket returns the bucket for subscribers observing source.
func BroadcastBucket(t Type, source EntityID) Bucket {
	return Bucket{Type: t, Kind: KindBroadcast, Scope: source}
}

// String returns a diagnostic form of the bucket key.
//
// Examples: "player.died[untargeted]", "combat.take_damage[targeted:42]"
func (b Bucket) String() string {
	s := string(b.Type) + "[" + b.Kind.String()
	if b.Kind.Scoped() {
		s += ":" + b.Scope.String()
	}
	return s + "]"
}
