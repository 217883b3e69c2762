package persist

import (
	"context"
	"time"

	"github.com/creaturepen/simcore/internal/core/event"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventWriter persists a batch of events. *EventRepo implements it.
type EventWriter interface {
	WriteEvents(ctx context.Context, runID uuid.UUID, events []event.Event) error
}

// Journal is an event observer that buffers events and writes them out in
// batches every flushInterval ticks. A failed flush keeps the batch for the
// next attempt; past maxBuffered the oldest events are dropped.
type Journal struct {
	runID         uuid.UUID
	writer        EventWriter
	log           *zap.Logger
	flushInterval uint64
	maxBuffered   int

	buf     []event.Event
	dropped int
	written int
}

func NewJournal(writer EventWriter, flushIntervalTicks uint64, maxBuffered int, log *zap.Logger) *Journal {
	if log == nil {
		log = zap.NewNop()
	}
	if flushIntervalTicks == 0 {
		flushIntervalTicks = 1
	}
	runID := uuid.New()
	return &Journal{
		runID:         runID,
		writer:        writer,
		log:           log.With(zap.Stringer("run_id", runID)),
		flushInterval: flushIntervalTicks,
		maxBuffered:   maxBuffered,
		buf:           make([]event.Event, 0, 256),
	}
}

// RunID identifies this simulation run in the journal table.
func (j *Journal) RunID() uuid.UUID { return j.runID }

// Record buffers ev. Register it with Clock.Subscribe.
func (j *Journal) Record(ev event.Event) {
	j.buf = append(j.buf, ev)
	if j.maxBuffered > 0 && len(j.buf) > j.maxBuffered {
		over := len(j.buf) - j.maxBuffered
		j.buf = append(j.buf[:0], j.buf[over:]...)
		j.dropped += over
	}
}

// OnTick flushes every flushInterval ticks. Register it with Clock.OnTick.
func (j *Journal) OnTick(tick uint64) {
	if tick%j.flushInterval != 0 || len(j.buf) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := j.Flush(ctx); err != nil {
		j.log.Warn("journal flush failed", zap.Uint64("tick", tick), zap.Int("buffered", len(j.buf)), zap.Error(err))
	}
}

// Flush writes every buffered event. On error the buffer is kept.
func (j *Journal) Flush(ctx context.Context) error {
	if len(j.buf) == 0 {
		return nil
	}
	if err := j.writer.WriteEvents(ctx, j.runID, j.buf); err != nil {
		return err
	}
	j.written += len(j.buf)
	j.log.Debug("journal flushed", zap.Int("events", len(j.buf)), zap.Int("total", j.written))
	j.buf = j.buf[:0]
	return nil
}

// Buffered returns the number of events waiting to be written.
func (j *Journal) Buffered() int { return len(j.buf) }

// Dropped returns how many events were discarded on buffer overflow.
func (j *Journal) Dropped() int { return j.dropped }

// Written returns how many events were written successfully.
func (j *Journal) Written() int { return j.written }
