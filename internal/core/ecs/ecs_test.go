package ecs

import "testing"

func TestEntityPoolNeverReusesIDs(t *testing.T) {
	p := NewEntityPool()
	seen := make(map[EntityID]bool)
	for round := 0; round < 5; round++ {
		a := p.Create()
		b := p.Create()
		for _, id := range []EntityID{a, b} {
			if id.IsZero() {
				t.Fatalf("round %d: got zero id", round)
			}
			if seen[id] {
				t.Fatalf("round %d: id %s handed out twice", round, id)
			}
			seen[id] = true
		}
		if !p.Destroy(a) || !p.Destroy(b) {
			t.Fatalf("round %d: destroy of live ids failed", round)
		}
	}
	if p.Live() != 0 {
		t.Fatalf("Live() = %d, want 0", p.Live())
	}
}

func TestEntityPoolDestroyStale(t *testing.T) {
	p := NewEntityPool()
	id := p.Create()
	if !p.Alive(id) {
		t.Fatal("fresh id not alive")
	}
	if !p.Destroy(id) {
		t.Fatal("first destroy failed")
	}
	if p.Destroy(id) {
		t.Fatal("second destroy of the same id succeeded")
	}
	if p.Alive(id) {
		t.Fatal("destroyed id still alive")
	}
	if p.Alive(0) {
		t.Fatal("zero id reported alive")
	}
}

func TestOrderedStoreKeepsInsertionOrder(t *testing.T) {
	s := NewOrderedStore[int]()
	vals := []int{10, 20, 30, 40}
	for i := range vals {
		s.Set(EntityID(i+1), &vals[i])
	}
	s.Remove(2)
	replacement := 99
	s.Set(3, &replacement)

	var got []int
	s.Each(func(_ EntityID, v *int) { got = append(got, *v) })
	want := []int{10, 99, 40}
	if len(got) != len(want) {
		t.Fatalf("Each visited %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Each visited %v, want %v", got, want)
		}
	}
	if _, ok := s.Remove(2); ok {
		t.Fatal("removing an absent id reported success")
	}
	if s.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", s.Len())
	}
}
