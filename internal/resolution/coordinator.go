package resolution

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"veridoc/internal/resolution/metrics"
	"veridoc/internal/resolution/ports"
	dErrors "veridoc/pkg/domain-errors"
	"veridoc/pkg/platform/audit"
)

// Coordinator layers latest-wins stream semantics over the Service: each new
// frame submitted on a stream supersedes the stream's in-flight session, and
// terminal sessions are persisted so callers can fetch verdicts after the
// session object is gone.
type Coordinator struct {
	service *Service
	store   ports.SessionStore

	logger  *slog.Logger
	metrics *metrics.Metrics
	audit   ports.AuditPublisher

	mu     sync.Mutex
	active map[string]*Session
	byID   map[uuid.UUID]*Session
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithCoordinatorLogger sets the structured logger.
func WithCoordinatorLogger(logger *slog.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// WithCoordinatorMetrics sets the Prometheus instruments.
func WithCoordinatorMetrics(m *metrics.Metrics) CoordinatorOption {
	return func(c *Coordinator) {
		c.metrics = m
	}
}

// WithCoordinatorAuditPublisher sets the audit sink for supersession events.
func WithCoordinatorAuditPublisher(publisher ports.AuditPublisher) CoordinatorOption {
	return func(c *Coordinator) {
		c.audit = publisher
	}
}

// NewCoordinator constructs a Coordinator.
func NewCoordinator(service *Service, store ports.SessionStore, opts ...CoordinatorOption) (*Coordinator, error) {
	if service == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "resolution service is required")
	}
	if store == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "session store is required")
	}

	c := &Coordinator{
		service: service,
		store:   store,
		active:  make(map[string]*Session),
		byID:    make(map[uuid.UUID]*Session),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Submit starts resolution of a new frame on the stream. Any session still
// in flight for the same stream is superseded: its verdict is discarded and
// its in-progress work cancelled. The new session is returned immediately.
func (c *Coordinator) Submit(ctx context.Context, streamKey string, image []byte) *Session {
	sess := c.service.Begin(ctx, image)

	c.mu.Lock()
	prev := c.active[streamKey]
	c.active[streamKey] = sess
	c.byID[sess.ID()] = sess
	c.mu.Unlock()

	if prev != nil {
		prev.supersede()
		c.metrics.IncrementSuperseded()
		if c.audit != nil {
			event := audit.Event{
				SessionID: prev.ID().String(),
				Action:    string(audit.EventResolutionSuperseded),
			}
			if err := c.audit.Emit(ctx, event); err != nil && c.logger != nil {
				c.logger.WarnContext(ctx, "failed to emit supersession audit event", "error", err)
			}
		}
		if c.logger != nil {
			c.logger.InfoContext(ctx, "superseded in-flight resolution",
				"stream_key", streamKey,
				"superseded_session_id", prev.ID(),
				"session_id", sess.ID(),
			)
		}
	}

	go c.await(streamKey, sess)
	return sess
}

// await persists the terminal snapshot and releases the session from the
// active maps once it settles.
func (c *Coordinator) await(streamKey string, sess *Session) {
	_, err := sess.Wait(context.Background())

	c.mu.Lock()
	if c.active[streamKey] == sess {
		delete(c.active, streamKey)
	}
	delete(c.byID, sess.ID())
	c.mu.Unlock()

	if err != nil {
		// Superseded sessions leave no record.
		return
	}

	record := recordFromSnapshot(sess.Snapshot())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.store.Save(ctx, record); err != nil && c.logger != nil {
		c.logger.ErrorContext(ctx, "failed to persist resolution record",
			"session_id", sess.ID(),
			"error", err,
		)
	}
}

// Get returns the current snapshot for a session, consulting in-flight
// sessions first and the store for settled ones.
func (c *Coordinator) Get(ctx context.Context, id uuid.UUID) (*Snapshot, error) {
	c.mu.Lock()
	sess, ok := c.byID[id]
	c.mu.Unlock()

	if ok {
		snap := sess.Snapshot()
		return &snap, nil
	}

	record, err := c.store.Get(ctx, id.String())
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load resolution record")
	}
	if record == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "resolution session not found")
	}
	snap, err := snapshotFromRecord(*record)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "corrupt resolution record")
	}
	return snap, nil
}

// recordFromSnapshot flattens a terminal snapshot into its persisted form.
func recordFromSnapshot(snap Snapshot) ports.SessionRecord {
	record := ports.SessionRecord{
		ID:        snap.ID.String(),
		State:     string(snap.State),
		CreatedAt: snap.CreatedAt.UnixMilli(),
	}
	if snap.ResolvedAt != nil {
		record.ResolvedAt = snap.ResolvedAt.UnixMilli()
	}
	if snap.Result != nil {
		record.ISOCode = snap.Result.ISOCode
		record.DisplayName = snap.Result.DisplayName
		record.Confidence = snap.Result.Confidence
		record.Source = snap.Result.Source
	}
	return record
}

func snapshotFromRecord(record ports.SessionRecord) (*Snapshot, error) {
	id, err := uuid.Parse(record.ID)
	if err != nil {
		return nil, err
	}
	snap := &Snapshot{
		ID:        id,
		State:     State(record.State),
		CreatedAt: time.UnixMilli(record.CreatedAt),
		Result: &PassportOriginResult{
			ISOCode:     record.ISOCode,
			DisplayName: record.DisplayName,
			Confidence:  record.Confidence,
			Source:      record.Source,
		},
	}
	if record.ResolvedAt != 0 {
		resolvedAt := time.UnixMilli(record.ResolvedAt)
		snap.ResolvedAt = &resolvedAt
	}
	return snap, nil
}
