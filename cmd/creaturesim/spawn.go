package main

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/creaturepen/simcore/internal/core/ecs"
	"github.com/creaturepen/simcore/internal/data"
	"github.com/creaturepen/simcore/internal/sim"
	"github.com/creaturepen/simcore/internal/world"
)

// spawnCreatures registers n creatures at random positions inside the
// wander area of bounds, cycling through the species table in key order.
// An empty table spawns untagged creatures with default tunables.
func spawnCreatures(clock *sim.Clock, species *data.SpeciesTable, n int, bounds world.Rect, rng *rand.Rand) ([]ecs.EntityID, error) {
	keys := species.Keys()
	area := bounds.Inset(world.WanderMargin)
	ids := make([]ecs.EntityID, 0, n)

	for i := 0; i < n; i++ {
		pos := world.Vec2{
			X: area.X + rng.Float64()*area.W,
			Y: area.Y + rng.Float64()*area.H,
		}
		spec := world.Spec{Position: pos, Bounds: bounds}
		if len(keys) > 0 {
			spec = species.Get(keys[i%len(keys)]).Spec(pos, bounds)
		}
		id, err := clock.Register(spec)
		if err != nil {
			return ids, fmt.Errorf("creature %d: %w", i, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// censusLine is one species row of the startup census.
type censusLine struct {
	Name  string
	Count int
}

// speciesCensus counts views per species display name, sorted by name.
// Untagged or unknown kinds are counted under their raw kind, or "untagged".
func speciesCensus(views []world.View, species *data.SpeciesTable) []censusLine {
	counts := make(map[string]int)
	for _, v := range views {
		name := v.Kind
		if sp := species.Get(v.Kind); sp != nil {
			name = sp.DisplayName
		}
		if name == "" {
			name = "untagged"
		}
		counts[name]++
	}
	out := make([]censusLine, 0, len(counts))
	for name, n := range counts {
		out = append(out, censusLine{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
