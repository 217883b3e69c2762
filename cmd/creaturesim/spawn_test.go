package main

import (
	"math/rand"
	"testing"

	"github.com/creaturepen/simcore/internal/data"
	"github.com/creaturepen/simcore/internal/sim"
	"github.com/creaturepen/simcore/internal/world"
	"go.uber.org/zap/zaptest"
)

const testSpecies = `
species:
  - key: neon_bat
    wander_speed: 80
  - key: hedgehog
    wander_speed: 30
emotes: [heart, music]
`

func TestSpawnCreaturesRoundRobin(t *testing.T) {
	table, err := data.ParseSpeciesTable([]byte(testSpecies))
	if err != nil {
		t.Fatalf("ParseSpeciesTable: %v", err)
	}
	clock, err := sim.New(sim.Options{Seed: 1}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("sim.New: %v", err)
	}

	bounds := world.Rect{W: 400, H: 300}
	ids, err := spawnCreatures(clock, table, 5, bounds, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("spawnCreatures: %v", err)
	}
	if len(ids) != 5 || clock.EntityCount() != 5 {
		t.Fatalf("spawned %d, registry has %d", len(ids), clock.EntityCount())
	}

	// Keys are sorted: hedgehog, neon_bat.
	want := []string{"hedgehog", "neon_bat", "hedgehog", "neon_bat", "hedgehog"}
	for i, id := range ids {
		v, ok := clock.Entity(id)
		if !ok {
			t.Fatalf("entity %s missing", id)
		}
		if v.Kind != want[i] {
			t.Errorf("entity %d kind = %q, want %q", i, v.Kind, want[i])
		}
		if !bounds.Contains(v.Position) {
			t.Errorf("entity %d spawned outside bounds at %+v", i, v.Position)
		}
	}
}

func TestSpawnCreaturesWithoutSpecies(t *testing.T) {
	table, err := data.ParseSpeciesTable([]byte("species: []\n"))
	if err != nil {
		t.Fatalf("ParseSpeciesTable: %v", err)
	}
	clock, err := sim.New(sim.Options{Seed: 1}, nil)
	if err != nil {
		t.Fatal(err)
	}

	ids, err := spawnCreatures(clock, table, 3, world.Rect{W: 200, H: 200}, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("spawnCreatures: %v", err)
	}
	for _, id := range ids {
		v, _ := clock.Entity(id)
		if v.Kind != "" {
			t.Errorf("kind = %q, want empty", v.Kind)
		}
	}
}

func TestSpeciesCensusUsesDisplayNames(t *testing.T) {
	table, err := data.ParseSpeciesTable([]byte(`
species:
  - key: neon_bat
  - key: hedgehog
    display_name: Spiky
`))
	if err != nil {
		t.Fatalf("ParseSpeciesTable: %v", err)
	}
	views := []world.View{
		{Kind: "neon_bat"}, {Kind: "hedgehog"}, {Kind: "neon_bat"}, {Kind: "ghost"}, {},
	}

	got := speciesCensus(views, table)
	want := []censusLine{
		{Name: "Neon Bat", Count: 2},
		{Name: "Spiky", Count: 1},
		{Name: "ghost", Count: 1},
		{Name: "untagged", Count: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("census = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("census[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}
