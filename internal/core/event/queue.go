package event

// Queue is an append-only event log with one writer and any number of
// readers. Subscribers are called synchronously, in production order, from
// Append. Not safe for concurrent use; the owner serializes access.
type Queue struct {
	events    []Event
	nextSeq   uint64
	retention int

	subs   []subscriber
	nextID int
}

type subscriber struct {
	id int
	fn func(Event)
}

// NewQueue creates a queue that keeps at most retention events.
// retention <= 0 keeps every event.
func NewQueue(retention int) *Queue {
	return &Queue{
		events:    make([]Event, 0, 256),
		nextSeq:   1,
		retention: retention,
	}
}

// Subscribe registers fn for every event appended from now on. The returned
// func removes the subscription.
func (q *Queue) Subscribe(fn func(Event)) (cancel func()) {
	q.nextID++
	id := q.nextID
	q.subs = append(q.subs, subscriber{id: id, fn: fn})
	return func() {
		for i, s := range q.subs {
			if s.id == id {
				q.subs = append(q.subs[:i:i], q.subs[i+1:]...)
				return
			}
		}
	}
}

// Append stamps ev with the next sequence number, stores it and notifies
// subscribers. It returns the stored event.
func (q *Queue) Append(ev Event) Event {
	ev.Seq = q.nextSeq
	q.nextSeq++
	q.events = append(q.events, ev)
	// Compact in batches; readers only ever see the newest retention events.
	if q.retention > 0 && len(q.events) >= 2*q.retention {
		q.Trim(q.retention)
	}
	for _, s := range q.subs {
		s.fn(ev)
	}
	return ev
}

// retained is the window of events visible to readers.
func (q *Queue) retained() []Event {
	if q.retention > 0 && len(q.events) > q.retention {
		return q.events[len(q.events)-q.retention:]
	}
	return q.events
}

// Events returns a copy of every retained event, oldest first.
func (q *Queue) Events() []Event {
	win := q.retained()
	out := make([]Event, len(win))
	copy(out, win)
	return out
}

// Since returns a copy of the retained events with Seq greater than seq.
func (q *Queue) Since(seq uint64) []Event {
	win := q.retained()
	i := len(win)
	for i > 0 && win[i-1].Seq > seq {
		i--
	}
	out := make([]Event, len(win)-i)
	copy(out, win[i:])
	return out
}

// Trim drops the oldest events until at most keep remain.
func (q *Queue) Trim(keep int) {
	if keep < 0 {
		keep = 0
	}
	drop := len(q.events) - keep
	if drop <= 0 {
		return
	}
	n := copy(q.events, q.events[drop:])
	clear(q.events[n:])
	q.events = q.events[:n]
}

// Len returns the number of retained events.
func (q *Queue) Len() int { return len(q.retained()) }

// LastSeq returns the sequence number of the newest event, or 0.
func (q *Queue) LastSeq() uint64 { return q.nextSeq - 1 }
