package system

import (
	"math/rand"
	"time"

	"github.com/creaturepen/simcore/internal/core/ecs"
	coresys "github.com/creaturepen/simcore/internal/core/system"
	"github.com/creaturepen/simcore/internal/world"
)

// Change is one creature's observable delta recorded during a tick.
type Change struct {
	ID       ecs.EntityID
	Kind     string
	Position world.Vec2
	Emote    world.Emote
	Changes  world.Changes
}

// ChangeLog carries changes from the update phase to the output phase of
// the same tick.
type ChangeLog struct {
	entries []Change
}

func (l *ChangeLog) Record(c Change) {
	l.entries = append(l.entries, c)
}

// Drain returns the recorded changes and empties the log. The returned
// slice is only valid until the next Record.
func (l *ChangeLog) Drain() []Change {
	out := l.entries
	l.entries = l.entries[:0]
	return out
}

func (l *ChangeLog) Len() int { return len(l.entries) }

// MotionSystem steps every creature once per tick, in registration order:
// AI state machine, movement, bounds and emote timers. Phase 0 (Update).
type MotionSystem struct {
	world   *world.State
	rng     *rand.Rand
	emotes  []world.Emote
	changes *ChangeLog
}

func NewMotionSystem(ws *world.State, rng *rand.Rand, emotes []world.Emote, changes *ChangeLog) *MotionSystem {
	return &MotionSystem{world: ws, rng: rng, emotes: emotes, changes: changes}
}

func (s *MotionSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *MotionSystem) Update(dt time.Duration) {
	secs := dt.Seconds()
	s.world.EachCreature(func(c *world.Creature) {
		ch := c.Step(secs, s.rng, s.emotes)
		if !ch.EmoteSet && !ch.EmoteCleared {
			return
		}
		s.changes.Record(Change{
			ID:       c.ID,
			Kind:     c.Kind,
			Position: c.Position,
			Emote:    c.Emote,
			Changes:  ch,
		})
	})
}
