package resolution

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"veridoc/internal/inference"
	"veridoc/internal/textextract"
	dErrors "veridoc/pkg/domain-errors"
)

// ErrSuperseded is returned by Wait when a newer image submission cancelled
// this session before it reached a terminal state.
var ErrSuperseded = dErrors.New(dErrors.CodeConflict, "resolution superseded by a newer submission")

// Session owns the mutable state for one image submission. The three
// extraction results are exclusive to this session; concurrent submissions
// never share or race on the same slots. A session transitions
// Pending → PartiallyResolved → Resolved|Undetermined, and snapshots are safe
// to read from any goroutine at any point.
type Session struct {
	id        uuid.UUID
	createdAt time.Time
	cancel    context.CancelFunc

	mu         sync.Mutex
	document   *inference.ClassificationResult
	origin     *inference.ClassificationResult
	text       *textextract.Result
	result     *PassportOriginResult
	state      State
	resolvedAt *time.Time
	superseded bool

	done chan struct{}
}

func newSession(cancel context.CancelFunc) *Session {
	return &Session{
		id:        uuid.New(),
		createdAt: time.Now().UTC(),
		cancel:    cancel,
		state:     StatePending,
		done:      make(chan struct{}),
	}
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Wait blocks until the session reaches a terminal state, the session is
// superseded, or ctx is done.
func (s *Session) Wait(ctx context.Context) (*PassportOriginResult, error) {
	select {
	case <-ctx.Done():
		return nil, dErrors.Wrap(ctx.Err(), dErrors.CodeTimeout, "waiting for resolution")
	case <-s.done:
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.superseded {
		return nil, ErrSuperseded
	}
	result := *s.result
	return &result, nil
}

// Snapshot returns a point-in-time copy of the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:        s.id,
		State:     s.state,
		CreatedAt: s.createdAt,
	}
	if s.document != nil {
		d := *s.document
		snap.Document = &d
	}
	if s.origin != nil {
		o := *s.origin
		snap.Origin = &o
	}
	if s.text != nil {
		t := *s.text
		snap.Text = &t
	}
	if s.result != nil {
		r := *s.result
		snap.Result = &r
	}
	if s.resolvedAt != nil {
		at := *s.resolvedAt
		snap.ResolvedAt = &at
	}
	return snap
}

// supersede cancels the in-flight paths and marks the session so it never
// reaches a terminal state. A session that already reached a terminal state
// keeps its result. Idempotent.
func (s *Session) supersede() {
	s.mu.Lock()
	if !s.state.IsTerminal() {
		s.superseded = true
	}
	s.mu.Unlock()
	s.cancel()
}

func (s *Session) isSuperseded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.superseded
}

func (s *Session) setDocument(result inference.ClassificationResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.document = &result
	s.markPartial()
}

func (s *Session) setOrigin(result inference.ClassificationResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.origin = &result
	s.markPartial()
}

func (s *Session) setText(result textextract.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.text = &result
	s.markPartial()
}

// markPartial is called with mu held. Precedence is never applied here:
// evaluating rules against incomplete inputs could let an early text result
// win while a higher-precedence origin result is still pending.
func (s *Session) markPartial() {
	if s.state == StatePending {
		s.state = StatePartiallyResolved
	}
}

// finalize records the terminal outcome and wakes waiters. The caller
// guarantees all three paths have completed. A superseded session discards
// the outcome and never turns terminal.
func (s *Session) finalize(result PassportOriginResult) {
	s.mu.Lock()
	if !s.superseded {
		s.result = &result
		if result.ISOCode != nil || result.Source != "" {
			s.state = StateResolved
		} else {
			s.state = StateUndetermined
		}
		now := time.Now().UTC()
		s.resolvedAt = &now
	}
	s.mu.Unlock()
	close(s.done)
}
