package world

import "math/rand"

// Changes reports what a single Step altered that observers may care about.
type Changes struct {
	StateChanged bool
	EmoteSet     bool
	EmoteCleared bool
}

// Any reports whether anything observable changed.
func (ch Changes) Any() bool {
	return ch.StateChanged || ch.EmoteSet || ch.EmoteCleared
}

// Step advances the creature by dt seconds: AI state machine, movement,
// bounds clamping, then the emote timer. emotes is the roster to draw from.
func (c *Creature) Step(dt float64, rng *rand.Rand, emotes []Emote) Changes {
	var ch Changes

	c.StateElapsed += dt
	switch c.State {
	case Idle:
		if c.StateElapsed >= c.StateDuration {
			c.enterWalking(rng)
			ch.StateChanged = true
		}
	case Walking:
		if c.StateElapsed >= c.StateDuration || c.Position.DistanceTo(c.WanderTarget) < ArriveDistance {
			c.enterIdle(rng)
			ch.StateChanged = true
		} else {
			c.walk(dt)
		}
	}

	// Bounds hold even if something moved the creature from outside the state machine.
	c.Position = c.Bounds.Clamp(c.Position)

	c.EmoteElapsed += dt
	switch {
	case c.Emote == "" && c.EmoteElapsed >= c.NextEmoteAt:
		if len(emotes) == 0 {
			emotes = DefaultEmotes
		}
		c.Emote = emotes[rng.Intn(len(emotes))]
		c.EmoteElapsed = 0
		c.NextEmoteAt = uniform(rng, MinEmoteInterval, MaxEmoteInterval)
		ch.EmoteSet = true
	case c.Emote != "" && c.EmoteElapsed > EmoteVisibleFor:
		c.Emote = ""
		ch.EmoteCleared = true
	}
	return ch
}

func (c *Creature) enterIdle(rng *rand.Rand) {
	c.State = Idle
	c.StateElapsed = 0
	c.StateDuration = uniform(rng, c.spec.MinIdleTime, c.spec.MaxIdleTime)
	c.Velocity = Vec2{}
	c.Facing = c.Facing.Idle()
}

func (c *Creature) enterWalking(rng *rand.Rand) {
	c.State = Walking
	c.StateElapsed = 0
	c.StateDuration = uniform(rng, c.spec.MinWalkTime, c.spec.MaxWalkTime)
	area := c.Bounds.Inset(WanderMargin)
	c.WanderTarget = Vec2{
		X: uniform(rng, area.X, area.MaxX()),
		Y: uniform(rng, area.Y, area.MaxY()),
	}
}

func (c *Creature) walk(dt float64) {
	offset := c.WanderTarget.Sub(c.Position)
	dir := offset.Normalized()
	if dir.IsZero() {
		c.Velocity = Vec2{}
		return
	}
	c.Velocity = dir.Scale(c.spec.WanderSpeed)
	step := c.Velocity.Scale(dt)
	if step.Len() >= offset.Len() {
		// Land on the target instead of overshooting it.
		step = offset
	}
	c.Position = c.Position.Add(step)
	c.Facing = FacingFor(dir)
}
