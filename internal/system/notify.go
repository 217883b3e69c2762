package system

import (
	"time"

	"github.com/creaturepen/simcore/internal/core/event"
	coresys "github.com/creaturepen/simcore/internal/core/system"
	"go.uber.org/zap"
)

// NotifySystem appends EmoteChanged / EmoteCleared events for the changes
// recorded earlier in the tick. Phase 1 (Output).
type NotifySystem struct {
	changes *ChangeLog
	queue   *event.Queue
	tick    func() uint64
	log     *zap.Logger
}

func NewNotifySystem(changes *ChangeLog, queue *event.Queue, tick func() uint64, log *zap.Logger) *NotifySystem {
	return &NotifySystem{changes: changes, queue: queue, tick: tick, log: log}
}

func (s *NotifySystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *NotifySystem) Update(_ time.Duration) {
	tick := s.tick()
	for _, c := range s.changes.Drain() {
		kind := event.EmoteChanged
		if c.Changes.EmoteCleared {
			kind = event.EmoteCleared
		}
		ev := s.queue.Append(event.Event{
			Kind:     kind,
			Tick:     tick,
			EntityID: c.ID,
			Payload: event.Payload{
				EntityKind: c.Kind,
				Position:   c.Position,
				Emote:      c.Emote,
			},
		})
		if ce := s.log.Check(zap.DebugLevel, "creature emote"); ce != nil {
			ce.Write(
				zap.Stringer("id", c.ID),
				zap.Stringer("kind", ev.Kind),
				zap.String("emote", string(c.Emote)),
				zap.Uint64("tick", tick),
			)
		}
	}
}
