package event

import (
	"testing"

	"github.com/creaturepen/simcore/internal/core/ecs"
)

func kinds(evs []Event) []Kind {
	out := make([]Kind, len(evs))
	for i, ev := range evs {
		out[i] = ev.Kind
	}
	return out
}

func TestQueuePushAndPull(t *testing.T) {
	q := NewQueue(0)
	var pushed []Event
	q.Subscribe(func(ev Event) { pushed = append(pushed, ev) })

	q.Append(Event{Kind: Spawned, EntityID: ecs.EntityID(1)})
	q.Append(Event{Kind: EmoteChanged, Tick: 3, EntityID: ecs.EntityID(1)})
	q.Append(Event{Kind: Removed, Tick: 4, EntityID: ecs.EntityID(1)})

	all := q.Events()
	if len(pushed) != 3 || len(all) != 3 {
		t.Fatalf("pushed %d, pulled %d; want 3 each", len(pushed), len(all))
	}
	for i := range all {
		if all[i] != pushed[i] {
			t.Fatalf("event %d: pulled %+v, pushed %+v", i, all[i], pushed[i])
		}
		if all[i].Seq != uint64(i+1) {
			t.Fatalf("event %d has seq %d", i, all[i].Seq)
		}
	}
	all[0].Kind = Removed
	if q.Events()[0].Kind != Spawned {
		t.Fatal("Events() returned a live slice")
	}
}

func TestQueueUnsubscribe(t *testing.T) {
	q := NewQueue(0)
	var a, b int
	cancelA := q.Subscribe(func(Event) { a++ })
	q.Subscribe(func(Event) { b++ })

	q.Append(Event{Kind: Spawned})
	cancelA()
	cancelA()
	q.Append(Event{Kind: Removed})

	if a != 1 || b != 2 {
		t.Fatalf("deliveries a=%d b=%d, want 1 and 2", a, b)
	}
}

func TestQueueRetentionAndSince(t *testing.T) {
	q := NewQueue(3)
	for i := 0; i < 5; i++ {
		q.Append(Event{Kind: EmoteChanged, Tick: uint64(i)})
	}
	if q.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", q.Len())
	}
	if got := q.Events()[0].Seq; got != 3 {
		t.Fatalf("oldest retained seq = %d, want 3", got)
	}
	if got := q.Since(4); len(got) != 1 || got[0].Seq != 5 {
		t.Fatalf("Since(4) = %+v", got)
	}
	if got := q.Since(0); len(got) != 3 {
		t.Fatalf("Since(0) returned %d events, want 3", len(got))
	}
	if q.LastSeq() != 5 {
		t.Fatalf("LastSeq() = %d, want 5", q.LastSeq())
	}

	q.Trim(0)
	if q.Len() != 0 || q.LastSeq() != 5 {
		t.Fatalf("after Trim(0): Len=%d LastSeq=%d", q.Len(), q.LastSeq())
	}
	ev := q.Append(Event{Kind: Spawned})
	if ev.Seq != 6 {
		t.Fatalf("seq after trim = %d, want 6", ev.Seq)
	}
	if got := kinds(q.Events()); len(got) != 1 || got[0] != Spawned {
		t.Fatalf("events after trim = %v", got)
	}
}

func TestKindString(t *testing.T) {
	if EmoteCleared.String() != "emote_cleared" || Kind(99).String() != "Kind(99)" {
		t.Fatalf("unexpected kind names %q %q", EmoteCleared, Kind(99))
	}
}

func TestQueueCompactsInBatches(t *testing.T) {
	const retention = 4
	q := NewQueue(retention)
	for i := 0; i < 3*retention+1; i++ {
		q.Append(Event{Kind: EmoteChanged})
		if len(q.events) >= 2*retention {
			t.Fatalf("after %d appends backing store holds %d events, want < %d", i+1, len(q.events), 2*retention)
		}
		if q.Len() > retention {
			t.Fatalf("after %d appends Len() = %d, want <= %d", i+1, q.Len(), retention)
		}
	}

	got := q.Events()
	if len(got) != retention {
		t.Fatalf("Events() returned %d, want %d", len(got), retention)
	}
	for i, ev := range got {
		if want := uint64(3*retention+1-retention+1+i); ev.Seq != want {
			t.Fatalf("Events()[%d].Seq = %d, want %d", i, ev.Seq, want)
		}
	}
	// Seqs older than the window are not visible even if still stored.
	if since := q.Since(0); len(since) != retention {
		t.Fatalf("Since(0) returned %d, want %d", len(since), retention)
	}
}
