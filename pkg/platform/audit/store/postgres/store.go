// Package postgres persists audit events in PostgreSQL. Persistence of
// resolution outcomes is a deployment concern layered outside the pipeline
// core; the core itself never writes.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	audit "veridoc/pkg/platform/audit"
)

// Schema:
//
//	CREATE TABLE resolution_audit (
//	    id           UUID PRIMARY KEY,
//	    category     TEXT        NOT NULL,
//	    ts           TIMESTAMPTZ NOT NULL,
//	    session_id   TEXT        NOT NULL,
//	    image_digest TEXT        NOT NULL DEFAULT '',
//	    action       TEXT        NOT NULL,
//	    outcome      TEXT        NOT NULL DEFAULT '',
//	    source       TEXT        NOT NULL DEFAULT '',
//	    iso_code     TEXT        NOT NULL DEFAULT '',
//	    confidence   DOUBLE PRECISION NOT NULL DEFAULT 0,
//	    request_id   TEXT        NOT NULL DEFAULT ''
//	);
//	CREATE INDEX resolution_audit_session_idx ON resolution_audit (session_id, ts);

// Store implements audit.Store on PostgreSQL.
type Store struct {
	db    *sql.DB
	clock func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock function for testability.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// New creates a PostgreSQL-backed audit store.
func New(db *sql.DB, opts ...Option) *Store {
	s := &Store{db: db, clock: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append writes one audit event.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = s.clock()
	}
	category := event.Category
	if category == "" {
		category = audit.AuditEvent(event.Action).Category()
	}

	query := `
		INSERT INTO resolution_audit
			(id, category, ts, session_id, image_digest, action, outcome, source, iso_code, confidence, request_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.New(), string(category), event.Timestamp, event.SessionID,
		event.ImageDigest, event.Action, event.Outcome, event.Source,
		event.ISOCode, event.Confidence, event.RequestID,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

// ListBySession returns events for one session in timestamp order.
func (s *Store) ListBySession(ctx context.Context, sessionID string) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category, ts, session_id, image_digest, action, outcome, source, iso_code, confidence, request_id
		FROM resolution_audit
		WHERE session_id = $1
		ORDER BY ts
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var e audit.Event
		var category string
		if err := rows.Scan(&category, &e.Timestamp, &e.SessionID, &e.ImageDigest,
			&e.Action, &e.Outcome, &e.Source, &e.ISOCode, &e.Confidence, &e.RequestID); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Category = audit.EventCategory(category)
		events = append(events, e)
	}
	return events, rows.Err()
}
