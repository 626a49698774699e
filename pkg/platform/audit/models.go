// Package audit defines the audit event model for the document-resolution
// pipeline. Events are emitted from domain logic and kept transport-agnostic
// so stores and sinks can fan out.
package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose. This
// enables different retention policies and storage backends.
type EventCategory string

const (
	// CategoryCompliance covers events with regulatory significance: every
	// terminal verdict about an identity document lands here.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers events useful for debugging and operational
	// visibility, such as superseded in-flight resolutions.
	CategoryOperations EventCategory = "operations"
)

// Event captures one step of a resolution session. The raw document image is
// never stored; ImageDigest is a SHA-256 hash of the submitted bytes, which
// preserves traceability without retaining PII-bearing pixels.
type Event struct {
	Category    EventCategory `json:"category"`
	Timestamp   time.Time     `json:"timestamp"`
	SessionID   string        `json:"session_id"`
	ImageDigest string        `json:"image_digest,omitempty"`
	Action      string        `json:"action"`
	// Outcome is the terminal session state for completion events.
	Outcome string `json:"outcome,omitempty"`
	// Source records which signal won precedence, when one did.
	Source string `json:"source,omitempty"`
	// ISOCode is the resolved issuing country, when one was determined.
	ISOCode string `json:"iso_code,omitempty"`
	// Confidence carried by the winning signal.
	Confidence float64 `json:"confidence,omitempty"`
	// RequestID correlates the event with the HTTP request that caused it.
	RequestID string `json:"request_id,omitempty"`
}

// AuditEvent names the actions emitted by the resolution pipeline.
type AuditEvent string

const (
	EventResolutionStarted      AuditEvent = "resolution_started"
	EventResolutionResolved     AuditEvent = "resolution_resolved"
	EventResolutionUndetermined AuditEvent = "resolution_undetermined"
	EventResolutionSuperseded   AuditEvent = "resolution_superseded"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventResolutionStarted:      CategoryOperations,
	EventResolutionResolved:     CategoryCompliance,
	EventResolutionUndetermined: CategoryCompliance,
	EventResolutionSuperseded:   CategoryOperations,
}

// Category returns the category for this action, defaulting to operations
// for unrecognized actions.
func (e AuditEvent) Category() EventCategory {
	if c, ok := eventCategories[e]; ok {
		return c
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}
