package persist

import (
	"context"
	"fmt"

	"github.com/creaturepen/simcore/internal/core/event"
	"github.com/google/uuid"
)

// EventRepo stores journaled simulation events in PostgreSQL.
type EventRepo struct {
	db *DB
}

func NewEventRepo(db *DB) *EventRepo {
	return &EventRepo{db: db}
}

// WriteEvents inserts a batch of events for one run in a single transaction.
func (r *EventRepo) WriteEvents(ctx context.Context, runID uuid.UUID, events []event.Event) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("events begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, ev := range events {
		if _, err := tx.Exec(ctx,
			`INSERT INTO sim_events (run_id, seq, tick, kind, entity_id, entity_kind, x, y, emote)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 ON CONFLICT (run_id, seq) DO NOTHING`,
			runID, int64(ev.Seq), int64(ev.Tick), ev.Kind.String(), int64(ev.EntityID),
			ev.Payload.EntityKind, ev.Payload.Position.X, ev.Payload.Position.Y, string(ev.Payload.Emote),
		); err != nil {
			return fmt.Errorf("events insert: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// CountEvents returns how many events were journaled for runID.
func (r *EventRepo) CountEvents(ctx context.Context, runID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM sim_events WHERE run_id = $1`, runID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}
