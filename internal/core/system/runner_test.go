package system

import (
	"testing"
	"time"
)

type recordingSystem struct {
	name  string
	phase Phase
	log   *[]string
}

func (s *recordingSystem) Phase() Phase { return s.phase }

func (s *recordingSystem) Update(time.Duration) {
	*s.log = append(*s.log, s.name)
}

func TestRunnerOrdersByPhaseThenRegistration(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(&recordingSystem{name: "notify", phase: PhaseOutput, log: &log})
	r.Register(&recordingSystem{name: "motion", phase: PhaseUpdate, log: &log})
	r.Register(&recordingSystem{name: "audit", phase: PhaseOutput, log: &log})
	r.Register(&recordingSystem{name: "emote", phase: PhaseUpdate, log: &log})

	r.Tick(time.Second / 30)

	want := []string{"motion", "emote", "notify", "audit"}
	if len(log) != len(want) {
		t.Fatalf("ran %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("ran %v, want %v", log, want)
		}
	}
}
