// Package resolution merges the three independent extraction signals for one
// document image into a single authoritative verdict under a fixed-order
// precedence policy.
package resolution

import (
	"time"

	"github.com/google/uuid"

	"veridoc/internal/inference"
	"veridoc/internal/textextract"
)

// State is the lifecycle of one resolution session.
type State string

const (
	// StatePending means all three extraction paths are still in flight.
	StatePending State = "pending"
	// StatePartiallyResolved means some paths have completed but precedence
	// cannot be evaluated yet: a higher-precedence path is still pending.
	StatePartiallyResolved State = "partially_resolved"
	// StateResolved is terminal: a country (or the generic other-country
	// outcome) was determined.
	StateResolved State = "resolved"
	// StateUndetermined is terminal: no signal produced a country. This is a
	// failure to resolve, not an error.
	StateUndetermined State = "undetermined"
)

// IsTerminal reports whether no further path completion may alter the result.
func (s State) IsTerminal() bool {
	return s == StateResolved || s == StateUndetermined
}

// Signal sources recorded on the final result, for auditability.
const (
	SourceOriginClassifier = "origin-classifier"
	SourceTextExtraction   = "text-extraction"
	SourceOriginGeneric    = "origin-classifier-generic"
)

// PassportOriginResult is the merged verdict for one image. Immutable once
// returned. Nil ISOCode with a Resolved-state session means the generic
// other-country outcome; nil ISOCode with Undetermined means no signal.
// Invariant: ISOCode present implies DisplayName present.
type PassportOriginResult struct {
	ISOCode     *string `json:"iso_code,omitempty"`
	DisplayName *string `json:"display_name,omitempty"`
	Confidence  float64 `json:"confidence"`
	Source      string  `json:"source,omitempty"`
}

// Snapshot is a point-in-time view of a session, exposed so callers can
// render progressive feedback while paths are still in flight.
type Snapshot struct {
	ID        uuid.UUID                       `json:"id"`
	State     State                           `json:"state"`
	Document  *inference.ClassificationResult `json:"document,omitempty"`
	Origin    *inference.ClassificationResult `json:"origin,omitempty"`
	Text      *textextract.Result             `json:"text,omitempty"`
	Result    *PassportOriginResult           `json:"result,omitempty"`
	CreatedAt time.Time                       `json:"created_at"`
	// ResolvedAt is set once the session reaches a terminal state.
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}
