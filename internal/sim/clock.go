// Package sim owns the fixed-timestep simulation clock: the entity registry,
// the tick loop and the event queue observers read from.
package sim

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/creaturepen/simcore/internal/core/ecs"
	"github.com/creaturepen/simcore/internal/core/event"
	coresys "github.com/creaturepen/simcore/internal/core/system"
	"github.com/creaturepen/simcore/internal/system"
	"github.com/creaturepen/simcore/internal/world"
	"go.uber.org/zap"
)

// DefaultTickRate is the number of fixed ticks per simulated second.
const DefaultTickRate = 30

var (
	// ErrEntityNotFound is returned by Unregister for ids that are not registered.
	ErrEntityNotFound = errors.New("entity not found")
	// ErrInvalidSpec wraps validation failures at Register.
	ErrInvalidSpec = errors.New("invalid entity spec")
	// ErrReentrant is returned when a control call arrives while Advance is
	// still running, typically from inside an observer callback.
	ErrReentrant = errors.New("clock is advancing")
)

// Recorder receives clock metrics. *metrics.SimCollector implements it.
type Recorder interface {
	ObserveTick(d time.Duration)
	AddDroppedTicks(n int)
	SetEntities(n int)
	IncEvent(kind string)
}

type noopRecorder struct{}

func (noopRecorder) ObserveTick(time.Duration) {}
func (noopRecorder) AddDroppedTicks(int)       {}
func (noopRecorder) SetEntities(int)           {}
func (noopRecorder) IncEvent(string)           {}

// Options configures a Clock.
type Options struct {
	TickRate           int // ticks per simulated second; 0 means DefaultTickRate
	MaxTicksPerAdvance int // catch-up cap per Advance call; 0 means uncapped
	Seed               int64
	Emotes             []world.Emote // emote roster; empty means world.DefaultEmotes
	EventRetention     int           // events kept for pull reads; 0 keeps all
	Metrics            Recorder
}

// AdvanceResult reports what one Advance call did.
type AdvanceResult struct {
	Ticks   int // ticks executed
	Dropped int // whole ticks discarded because of MaxTicksPerAdvance
}

// Clock is the simulation scheduler. It advances simulated time in fixed
// ticks independent of how real time is fed to it. It is single-threaded:
// callers must serialize every call on one goroutine.
type Clock struct {
	tickDuration time.Duration
	maxTicks     int
	accumulator  time.Duration
	tickCount    uint64
	running      bool
	advancing    bool

	world   *world.State
	rng     *rand.Rand
	queue   *event.Queue
	runner  *coresys.Runner
	changes *system.ChangeLog

	tickListeners []tickListener
	nextListener  int

	metrics Recorder
	log     *zap.Logger
}

type tickListener struct {
	id int
	fn func(tick uint64)
}

// New builds a stopped clock with an empty registry.
func New(opts Options, log *zap.Logger) (*Clock, error) {
	if opts.TickRate == 0 {
		opts.TickRate = DefaultTickRate
	}
	if opts.TickRate < 0 || time.Duration(opts.TickRate) > time.Second {
		return nil, fmt.Errorf("tick rate %d out of range", opts.TickRate)
	}
	if opts.MaxTicksPerAdvance < 0 {
		return nil, fmt.Errorf("max ticks per advance %d is negative", opts.MaxTicksPerAdvance)
	}
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = noopRecorder{}
	}

	c := &Clock{
		tickDuration: time.Second / time.Duration(opts.TickRate),
		maxTicks:     opts.MaxTicksPerAdvance,
		world:        world.NewState(),
		rng:          rand.New(rand.NewSource(opts.Seed)),
		queue:        event.NewQueue(opts.EventRetention),
		runner:       coresys.NewRunner(),
		changes:      &system.ChangeLog{},
		metrics:      opts.Metrics,
		log:          log,
	}
	c.runner.Register(system.NewMotionSystem(c.world, c.rng, opts.Emotes, c.changes))
	c.runner.Register(system.NewNotifySystem(c.changes, c.queue, c.TickCount, log))
	c.queue.Subscribe(func(ev event.Event) { c.metrics.IncEvent(ev.Kind.String()) })
	return c, nil
}

// Start lets Advance produce ticks.
func (c *Clock) Start() {
	if c.running {
		return
	}
	c.running = true
	c.log.Info("simulation clock started", zap.Uint64("tick", c.tickCount), zap.Duration("tick_duration", c.tickDuration))
}

// Stop freezes the tick count; entities stay as they are. Takes effect
// between ticks, never inside one.
func (c *Clock) Stop() {
	if !c.running {
		return
	}
	c.running = false
	c.log.Info("simulation clock stopped", zap.Uint64("tick", c.tickCount))
}

func (c *Clock) Running() bool               { return c.running }
func (c *Clock) TickCount() uint64           { return c.tickCount }
func (c *Clock) TickDuration() time.Duration { return c.tickDuration }

// Advance feeds realDelta of elapsed real time into the clock and runs every
// whole tick it covers. The number of ticks for a given total is independent
// of how that total is split across calls. A stopped clock ignores the call.
func (c *Clock) Advance(realDelta time.Duration) (AdvanceResult, error) {
	var res AdvanceResult
	if c.advancing {
		return res, ErrReentrant
	}
	if !c.running {
		return res, nil
	}
	c.advancing = true
	defer func() { c.advancing = false }()

	if realDelta > 0 {
		c.accumulator += realDelta
	}
	for c.running && c.accumulator >= c.tickDuration {
		if c.maxTicks > 0 && res.Ticks >= c.maxTicks {
			res.Dropped = int(c.accumulator / c.tickDuration)
			c.accumulator -= time.Duration(res.Dropped) * c.tickDuration
			c.metrics.AddDroppedTicks(res.Dropped)
			c.log.Warn("dropped catch-up ticks",
				zap.Int("dropped", res.Dropped),
				zap.Int("cap", c.maxTicks),
				zap.Uint64("tick", c.tickCount),
			)
			break
		}
		c.step()
		c.accumulator -= c.tickDuration
		res.Ticks++
	}
	return res, nil
}

// step runs one tick: update every entity, emit events for what changed,
// bump the tick count, then notify tick listeners.
func (c *Clock) step() {
	start := time.Now()
	c.runner.Tick(c.tickDuration)
	c.tickCount++
	c.metrics.ObserveTick(time.Since(start))
	for _, l := range c.tickListeners {
		l.fn(c.tickCount)
	}
}

// Register validates spec, inserts a new entity seeded in the idle state and
// appends a Spawned event. The returned id is never reused by this clock.
func (c *Clock) Register(spec world.Spec) (ecs.EntityID, error) {
	if c.advancing {
		return 0, ErrReentrant
	}
	spec = spec.WithDefaults()
	if err := spec.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidSpec, err)
	}
	cr := c.world.AddCreature(spec, c.rng)
	c.queue.Append(event.Event{
		Kind:     event.Spawned,
		Tick:     c.tickCount,
		EntityID: cr.ID,
		Payload:  event.Payload{EntityKind: cr.Kind, Position: cr.Position},
	})
	c.metrics.SetEntities(c.world.CreatureCount())
	c.log.Debug("entity registered",
		zap.Stringer("id", cr.ID),
		zap.String("kind", cr.Kind),
		zap.Float64("x", cr.Position.X),
		zap.Float64("y", cr.Position.Y),
	)
	return cr.ID, nil
}

// Unregister removes id and appends exactly one Removed event. Unknown ids
// return ErrEntityNotFound and leave the queue untouched.
func (c *Clock) Unregister(id ecs.EntityID) error {
	if c.advancing {
		return ErrReentrant
	}
	cr := c.world.RemoveCreature(id)
	if cr == nil {
		return fmt.Errorf("unregister %s: %w", id, ErrEntityNotFound)
	}
	c.queue.Append(event.Event{
		Kind:     event.Removed,
		Tick:     c.tickCount,
		EntityID: id,
		Payload:  event.Payload{EntityKind: cr.Kind, Position: cr.Position},
	})
	c.metrics.SetEntities(c.world.CreatureCount())
	c.log.Debug("entity unregistered", zap.Stringer("id", id), zap.String("kind", cr.Kind))
	return nil
}

// Subscribe registers fn to receive every future event once, synchronously
// and in production order. fn runs on the simulation goroutine and must not
// block for long.
func (c *Clock) Subscribe(fn func(event.Event)) (cancel func()) {
	return c.queue.Subscribe(fn)
}

// OnTick registers fn to run after every completed tick with the new tick count.
func (c *Clock) OnTick(fn func(tick uint64)) (cancel func()) {
	c.nextListener++
	id := c.nextListener
	c.tickListeners = append(c.tickListeners, tickListener{id: id, fn: fn})
	return func() {
		for i, l := range c.tickListeners {
			if l.id == id {
				c.tickListeners = append(c.tickListeners[:i:i], c.tickListeners[i+1:]...)
				return
			}
		}
	}
}

// Events returns a copy of the retained event history, oldest first.
func (c *Clock) Events() []event.Event { return c.queue.Events() }

// EventsSince returns retained events with a sequence number above seq.
func (c *Clock) EventsSince(seq uint64) []event.Event { return c.queue.Since(seq) }

// LastEventSeq returns the sequence number of the newest event ever appended.
func (c *Clock) LastEventSeq() uint64 { return c.queue.LastSeq() }

// TrimEvents drops the oldest retained events until at most keep remain.
func (c *Clock) TrimEvents(keep int) { c.queue.Trim(keep) }
