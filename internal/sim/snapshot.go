package sim

import (
	"github.com/creaturepen/simcore/internal/core/ecs"
	"github.com/creaturepen/simcore/internal/world"
)

// Snapshot is a read-only copy of every entity's observable state.
type Snapshot struct {
	Tick     uint64
	Entities []world.View // registration order
}

// Find returns the view for id.
func (s Snapshot) Find(id ecs.EntityID) (world.View, bool) {
	for _, v := range s.Entities {
		if v.ID == id {
			return v, true
		}
	}
	return world.View{}, false
}

// Snapshot copies the current state of every registered entity.
func (c *Clock) Snapshot() Snapshot {
	return Snapshot{Tick: c.tickCount, Entities: c.world.Views()}
}

// Entity returns a copy of one entity's observable state.
func (c *Clock) Entity(id ecs.EntityID) (world.View, bool) {
	cr := c.world.GetCreature(id)
	if cr == nil {
		return world.View{}, false
	}
	return cr.View(), true
}

// EntityCount returns the number of registered entities.
func (c *Clock) EntityCount() int { return c.world.CreatureCount() }
