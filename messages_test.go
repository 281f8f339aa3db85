package msgbus

import "github.com/dshills/msgbus/key"

// Message types used across the package tests. Declared the way a host
// would declare them: one constant identity and one kind per type.
const (
	typePlayerDied    = key.Type("player.died")
	typeTakeDamage    = key.Type("combat.take_damage")
	typeHealthChanged = key.Type("player.health_changed")
)

// playerDied is untargeted: everyone who cares hears about it.
type playerDied struct {
	PlayerID key.EntityID
}

func (playerDied) MessageType() key.Type { return typePlayerDied }
func (playerDied) MessageKind() key.Kind { return key.KindUntargeted }

// takeDamage is targeted: routed to one recipient entity.
type takeDamage struct {
	Amount int
}

func (takeDamage) MessageType() key.Type { return typeTakeDamage }
func (takeDamage) MessageKind() key.Kind { return key.KindTargeted }

// healthChanged is broadcast: observed per source entity.
type healthChanged struct {
	HP int
}

func (healthChanged) MessageType() key.Type { return typeHealthChanged }
func (healthChanged) MessageKind() key.Kind { return key.KindBroadcast }

// undeclared has an empty type identity, the unknown-type case.
type undeclared struct{}

func (undeclared) MessageType() key.Type { return "" }
func (undeclared) MessageKind() key.Kind { return key.KindUntargeted }
