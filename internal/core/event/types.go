package event

import (
	"fmt"

	"github.com/creaturepen/simcore/internal/core/ecs"
	"github.com/creaturepen/simcore/internal/world"
)

// Kind identifies what an Event records.
type Kind uint8

const (
	Spawned Kind = iota + 1
	Removed
	EmoteChanged
	EmoteCleared
)

var kindNames = map[Kind]string{
	Spawned:      "spawned",
	Removed:      "removed",
	EmoteChanged: "emote_changed",
	EmoteCleared: "emote_cleared",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Event is one discrete, tick-stamped simulation occurrence.
type Event struct {
	Seq      uint64 // assigned by the Queue, strictly increasing from 1
	Kind     Kind
	Tick     uint64 // tick count at which the event was produced
	EntityID ecs.EntityID
	Payload  Payload
}

// Payload carries kind-specific data. Unused fields stay zero.
type Payload struct {
	EntityKind string
	Position   world.Vec2
	Emote      world.Emote
}
