// Package ports defines the interfaces the resolution module consumes.
// Interfaces live here so the service, coordinator, and handler can share
// them without import cycles.
package ports

import (
	"context"

	"veridoc/pkg/platform/audit"
)

// AuditPublisher emits audit events for resolution lifecycle transitions.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// SessionRecord is the serializable form of a terminal session snapshot, as
// persisted by a SessionStore for later status queries.
type SessionRecord struct {
	ID          string  `json:"id"`
	State       string  `json:"state"`
	ISOCode     *string `json:"iso_code,omitempty"`
	DisplayName *string `json:"display_name,omitempty"`
	Confidence  float64 `json:"confidence"`
	Source      string  `json:"source,omitempty"`
	CreatedAt   int64   `json:"created_at_unix_ms"`
	ResolvedAt  int64   `json:"resolved_at_unix_ms"`
}

// SessionStore persists terminal session records. The resolution core itself
// never persists; the coordinator writes here so status queries survive the
// in-memory session being superseded.
type SessionStore interface {
	// Save stores a terminal record.
	Save(ctx context.Context, record SessionRecord) error

	// Get retrieves a record by session ID. Returns (nil, nil) when the
	// record is unknown.
	Get(ctx context.Context, id string) (*SessionRecord, error)
}
