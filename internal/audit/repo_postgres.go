package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PostgresRepo appends events to the reconcile_events table.
// The table is created by the migrations in this package.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	const q = `
INSERT INTO reconcile_events (id, type, phone, direction, case_id, call_sid, message, metadata, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, '')::jsonb, $9)
`
	if _, err := r.db.ExecContext(ctx, q,
		e.ID,
		string(e.Type),
		e.Phone,
		e.Direction,
		e.CaseID,
		e.CallSid,
		e.Message,
		e.Metadata,
		e.CreatedAt,
	); err != nil {
		return fmt.Errorf("audit: insert event: %w", err)
	}
	return nil
}

// ListEvents returns events created in [from, to), oldest first.
func (r *PostgresRepo) ListEvents(ctx context.Context, from, to time.Time) ([]Event, error) {
	const q = `
SELECT id, type, phone, direction, case_id, call_sid, message, COALESCE(metadata::text, ''), created_at
FROM reconcile_events
WHERE created_at >= $1 AND created_at < $2
ORDER BY created_at ASC
`
	rows, err := r.db.QueryContext(ctx, q, from, to)
	if err != nil {
		return nil, fmt.Errorf("audit: list events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var (
			e  Event
			et string
		)
		if err := rows.Scan(&e.ID, &et, &e.Phone, &e.Direction, &e.CaseID, &e.CallSid, &e.Message, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("audit: scan event: %w", err)
		}
		e.Type = EventType(et)
		out = append(out, e)
	}
	return out, rows.Err()
}
