package world

import (
	"math/rand"

	"github.com/creaturepen/simcore/internal/core/ecs"
)

// State is the creature registry. It owns id allocation and keeps creatures
// in registration order. Accessed only from the simulation goroutine.
type State struct {
	pool      *ecs.EntityPool
	creatures *ecs.OrderedStore[Creature]
}

func NewState() *State {
	return &State{
		pool:      ecs.NewEntityPool(),
		creatures: ecs.NewOrderedStore[Creature](),
	}
}

// AddCreature allocates a fresh id and inserts a creature seeded from spec.
// spec must already be defaulted and validated.
func (s *State) AddCreature(spec Spec, rng *rand.Rand) *Creature {
	id := s.pool.Create()
	c := newCreature(id, spec, rng)
	s.creatures.Set(id, c)
	return c
}

// RemoveCreature deletes a creature and releases its id. Returns nil if absent.
func (s *State) RemoveCreature(id ecs.EntityID) *Creature {
	c, ok := s.creatures.Remove(id)
	if !ok {
		return nil
	}
	s.pool.Destroy(id)
	return c
}

func (s *State) GetCreature(id ecs.EntityID) *Creature {
	c, _ := s.creatures.Get(id)
	return c
}

// CreatureCount returns the number of live creature ids.
func (s *State) CreatureCount() int {
	return s.pool.Live()
}

// EachCreature visits creatures in registration order.
func (s *State) EachCreature(fn func(*Creature)) {
	s.creatures.Each(func(_ ecs.EntityID, c *Creature) { fn(c) })
}

// Views copies every creature's observable state, in registration order.
func (s *State) Views() []View {
	out := make([]View, 0, s.creatures.Len())
	s.creatures.Each(func(_ ecs.EntityID, c *Creature) {
		out = append(out, c.View())
	})
	return out
}
