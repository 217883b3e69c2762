package world

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/creaturepen/simcore/internal/core/ecs"
)

// Movement and timing defaults, in simulation units and seconds.
const (
	DefaultWanderSpeed = 50.0
	DefaultMinWalkTime = 2.0
	DefaultMaxWalkTime = 4.0
	DefaultMinIdleTime = 1.0
	DefaultMaxIdleTime = 3.0

	WanderMargin   = 50.0 // wander targets stay this far inside bounds
	ArriveDistance = 5.0  // walking ends once the target is closer than this

	EmoteVisibleFor  = 2.5
	MinEmoteInterval = 5.0
	MaxEmoteInterval = 15.0
)

// AIState is the behavior state of a creature.
type AIState uint8

const (
	Idle AIState = iota
	Walking
)

func (s AIState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Walking:
		return "walking"
	default:
		return fmt.Sprintf("AIState(%d)", uint8(s))
	}
}

// Facing is the sprite direction: four walking and four idle variants.
type Facing uint8

const (
	WalkRight Facing = iota
	WalkDown
	WalkLeft
	WalkUp
	IdleRight
	IdleDown
	IdleLeft
	IdleUp
)

var facingNames = [...]string{
	"walk_right", "walk_down", "walk_left", "walk_up",
	"idle_right", "idle_down", "idle_left", "idle_up",
}

func (f Facing) String() string {
	if int(f) < len(facingNames) {
		return facingNames[f]
	}
	return fmt.Sprintf("Facing(%d)", uint8(f))
}

// Idle returns the idle variant of f.
func (f Facing) Idle() Facing { return f%4 + IdleRight }

// Walk returns the walking variant of f.
func (f Facing) Walk() Facing { return f % 4 }

// FacingFor buckets a movement direction into four 90 degree quadrants:
// right [-45,45), down [45,135), left [135,225), up [225,315).
func FacingFor(dir Vec2) Facing {
	deg := math.Atan2(dir.Y, dir.X) * 180 / math.Pi
	if deg < -45 {
		deg += 360
	}
	switch {
	case deg < 45:
		return WalkRight
	case deg < 135:
		return WalkDown
	case deg < 225:
		return WalkLeft
	default:
		return WalkUp
	}
}

// Emote is a short-lived mood icon. The empty string means none.
type Emote string

// DefaultEmotes is used when no roster is configured.
var DefaultEmotes = []Emote{"heart", "happy", "music", "sleepy", "angry", "question", "exclamation"}

// Spec is the construction record handed in by game-rule code when a
// creature is spawned. Zero tunables take the package defaults.
type Spec struct {
	Kind     string // opaque label, e.g. a species key
	Position Vec2
	Bounds   Rect

	// Zero speed means DefaultWanderSpeed; creatures always move while walking.
	WanderSpeed float64
	// A range left at [0, 0] takes the package default. Min may be 0.
	MinWalkTime float64
	MaxWalkTime float64
	MinIdleTime float64
	MaxIdleTime float64
}

var (
	errEmptyBounds    = errors.New("bounds have zero area")
	errOutOfBounds    = errors.New("position outside bounds")
	errNegativeSpeed  = errors.New("negative wander speed")
	errWalkTimeRange  = errors.New("walk time range invalid")
	errIdleTimeRange  = errors.New("idle time range invalid")
	errNonFiniteValue = errors.New("non-finite value")
)

// WithDefaults fills zero tunables with the package defaults.
func (s Spec) WithDefaults() Spec {
	if s.WanderSpeed == 0 {
		s.WanderSpeed = DefaultWanderSpeed
	}
	if s.MinWalkTime == 0 && s.MaxWalkTime == 0 {
		s.MinWalkTime, s.MaxWalkTime = DefaultMinWalkTime, DefaultMaxWalkTime
	}
	if s.MinIdleTime == 0 && s.MaxIdleTime == 0 {
		s.MinIdleTime, s.MaxIdleTime = DefaultMinIdleTime, DefaultMaxIdleTime
	}
	return s
}

// Validate checks a spec after defaults have been applied.
func (s Spec) Validate() error {
	for _, v := range []float64{s.Position.X, s.Position.Y, s.Bounds.X, s.Bounds.Y, s.Bounds.W, s.Bounds.H,
		s.WanderSpeed, s.MinWalkTime, s.MaxWalkTime, s.MinIdleTime, s.MaxIdleTime} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errNonFiniteValue
		}
	}
	if s.Bounds.W <= 0 || s.Bounds.H <= 0 {
		return errEmptyBounds
	}
	if !s.Bounds.Contains(s.Position) {
		return fmt.Errorf("%w: (%.1f, %.1f)", errOutOfBounds, s.Position.X, s.Position.Y)
	}
	if s.WanderSpeed < 0 {
		return errNegativeSpeed
	}
	if s.MinWalkTime < 0 || s.MaxWalkTime <= 0 || s.MaxWalkTime < s.MinWalkTime {
		return fmt.Errorf("%w: [%g, %g]", errWalkTimeRange, s.MinWalkTime, s.MaxWalkTime)
	}
	if s.MinIdleTime < 0 || s.MaxIdleTime <= 0 || s.MaxIdleTime < s.MinIdleTime {
		return fmt.Errorf("%w: [%g, %g]", errIdleTimeRange, s.MinIdleTime, s.MaxIdleTime)
	}
	return nil
}

// Creature holds the transient simulation state of one entity.
// Accessed only from the simulation goroutine; no locks.
type Creature struct {
	ID       ecs.EntityID
	Kind     string
	Position Vec2
	Velocity Vec2
	Bounds   Rect

	State         AIState
	StateElapsed  float64
	StateDuration float64
	WanderTarget  Vec2
	Facing        Facing

	Emote        Emote
	EmoteElapsed float64
	NextEmoteAt  float64

	spec Spec
}

// newCreature seeds a creature in the idle state. spec must be validated.
func newCreature(id ecs.EntityID, spec Spec, rng *rand.Rand) *Creature {
	c := &Creature{
		ID:       id,
		Kind:     spec.Kind,
		Position: spec.Position,
		Bounds:   spec.Bounds,
		Facing:   IdleDown,
		spec:     spec,
	}
	c.enterIdle(rng)
	c.NextEmoteAt = uniform(rng, MinEmoteInterval, MaxEmoteInterval)
	return c
}

// View is a read-only copy of a creature's observable state.
type View struct {
	ID       ecs.EntityID
	Kind     string
	Position Vec2
	Velocity Vec2
	State    AIState
	Facing   Facing
	Emote    Emote
}

func (c *Creature) View() View {
	return View{
		ID:       c.ID,
		Kind:     c.Kind,
		Position: c.Position,
		Velocity: c.Velocity,
		State:    c.State,
		Facing:   c.Facing,
		Emote:    c.Emote,
	}
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
