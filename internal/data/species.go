package data

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/creaturepen/simcore/internal/world"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Species holds the movement tunables for one creature type loaded from YAML.
// Zero tunables fall back to the world defaults at registration.
type Species struct {
	Key         string  `yaml:"key"`
	DisplayName string  `yaml:"display_name"`
	WanderSpeed float64 `yaml:"wander_speed"`
	MinWalkTime float64 `yaml:"min_walk_time"`
	MaxWalkTime float64 `yaml:"max_walk_time"`
	MinIdleTime float64 `yaml:"min_idle_time"`
	MaxIdleTime float64 `yaml:"max_idle_time"`
}

// Spec builds the construction record for one creature of this species.
func (s *Species) Spec(pos world.Vec2, bounds world.Rect) world.Spec {
	return world.Spec{
		Kind:        s.Key,
		Position:    pos,
		Bounds:      bounds,
		WanderSpeed: s.WanderSpeed,
		MinWalkTime: s.MinWalkTime,
		MaxWalkTime: s.MaxWalkTime,
		MinIdleTime: s.MinIdleTime,
		MaxIdleTime: s.MaxIdleTime,
	}
}

type speciesFile struct {
	Species []Species `yaml:"species"`
	Emotes  []string  `yaml:"emotes"`
}

// SpeciesTable holds all species indexed by key, plus the emote roster.
type SpeciesTable struct {
	species map[string]*Species
	emotes  []world.Emote
}

// LoadSpeciesTable loads species definitions from a YAML file.
func LoadSpeciesTable(path string) (*SpeciesTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read species list: %w", err)
	}
	return ParseSpeciesTable(raw)
}

// ParseSpeciesTable decodes a species YAML document.
func ParseSpeciesTable(raw []byte) (*SpeciesTable, error) {
	var f speciesFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse species list: %w", err)
	}
	title := cases.Title(language.English)
	t := &SpeciesTable{species: make(map[string]*Species, len(f.Species))}
	for i := range f.Species {
		sp := &f.Species[i]
		if sp.Key == "" {
			return nil, fmt.Errorf("species #%d has no key", i)
		}
		if _, dup := t.species[sp.Key]; dup {
			return nil, fmt.Errorf("duplicate species %q", sp.Key)
		}
		if sp.DisplayName == "" {
			sp.DisplayName = title.String(strings.ReplaceAll(sp.Key, "_", " "))
		}
		t.species[sp.Key] = sp
	}
	for _, e := range f.Emotes {
		if e = strings.TrimSpace(e); e != "" {
			t.emotes = append(t.emotes, world.Emote(e))
		}
	}
	return t, nil
}

// Get returns a species by key, or nil if not found.
func (t *SpeciesTable) Get(key string) *Species {
	return t.species[key]
}

// Count returns the number of loaded species.
func (t *SpeciesTable) Count() int {
	return len(t.species)
}

// Keys returns every species key in sorted order.
func (t *SpeciesTable) Keys() []string {
	keys := make([]string, 0, len(t.species))
	for k := range t.species {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Emotes returns the configured emote roster; nil when the file lists none.
func (t *SpeciesTable) Emotes() []world.Emote {
	return t.emotes
}
