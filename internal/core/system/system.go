package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseUpdate Phase = iota // 0: per-entity AI, movement and timers
	PhaseOutput              // 1: turn recorded changes into events
)

// System is the interface every tick system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
