package resolution

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"veridoc/internal/classify"
	"veridoc/internal/inference"
	"veridoc/internal/registry"
	"veridoc/internal/resolution/metrics"
	"veridoc/internal/resolution/ports"
	"veridoc/internal/textextract"
	"veridoc/pkg/platform/audit"
	"veridoc/pkg/requestcontext"
)

const defaultPathTimeout = 10 * time.Second

// Service orchestrates the three extraction paths for one image and merges
// their results under the precedence policy. All dependencies are injected;
// there is no global classifier state.
type Service struct {
	documents *classify.DocumentService
	origin    *classify.OriginService
	text      *textextract.Service
	registry  *registry.Registry

	logger      *slog.Logger
	metrics     *metrics.Metrics
	audit       ports.AuditPublisher
	tracer      trace.Tracer
	pathTimeout time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics sets the Prometheus instruments.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithAuditPublisher sets the audit sink.
func WithAuditPublisher(publisher ports.AuditPublisher) Option {
	return func(s *Service) {
		s.audit = publisher
	}
}

// WithPathTimeout bounds the wait for each extraction path. Expiry is
// treated as that path's failure so the merger always reaches a terminal
// state.
func WithPathTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.pathTimeout = d
		}
	}
}

// New constructs the resolution service.
func New(
	documents *classify.DocumentService,
	origin *classify.OriginService,
	text *textextract.Service,
	reg *registry.Registry,
	opts ...Option,
) (*Service, error) {
	if documents == nil {
		return nil, fmt.Errorf("document classifier is required")
	}
	if origin == nil {
		return nil, fmt.Errorf("origin classifier is required")
	}
	if text == nil {
		return nil, fmt.Errorf("text extraction service is required")
	}
	if reg == nil {
		return nil, fmt.Errorf("country registry is required")
	}

	s := &Service{
		documents:   documents,
		origin:      origin,
		text:        text,
		registry:    reg,
		tracer:      otel.Tracer("veridoc/internal/resolution"),
		pathTimeout: defaultPathTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Resolve runs the full pipeline for one image and blocks until the verdict.
func (s *Service) Resolve(ctx context.Context, image []byte) (*PassportOriginResult, error) {
	return s.Begin(ctx, image).Wait(ctx)
}

// Begin launches the three extraction paths for the image and returns the
// session immediately. The session outlives ctx: progressive callers poll
// Snapshot or block on Wait with their own deadline.
func (s *Service) Begin(ctx context.Context, image []byte) *Session {
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	sess := newSession(cancel)
	go s.run(runCtx, sess, image)
	return sess
}

// run gathers the three signals concurrently and applies precedence once all
// of them have landed. Paths never report errors into the group: every
// failure mode is folded into sentinel data by the path services, so the
// precedence evaluation is total.
func (s *Service) run(ctx context.Context, sess *Session, image []byte) {
	start := time.Now()
	digest := imageDigest(image)

	ctx, span := s.tracer.Start(ctx, "resolution.resolve",
		trace.WithAttributes(attribute.String("resolution.session_id", sess.ID().String())),
	)
	defer span.End()

	requestID := requestcontext.RequestID(ctx)
	s.emitAudit(ctx, audit.Event{
		SessionID:   sess.ID().String(),
		ImageDigest: digest,
		Action:      string(audit.EventResolutionStarted),
		RequestID:   requestID,
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		pathStart := time.Now()
		result := resolvePath(gctx, s.pathTimeout,
			inference.ClassificationResult{Label: inference.LabelError, Confidence: 0.0},
			func(ctx context.Context) inference.ClassificationResult {
				return s.documents.Classify(ctx, image)
			})
		s.metrics.ObservePathLatency("document", time.Since(pathStart))
		sess.setDocument(result)
		return nil
	})

	g.Go(func() error {
		pathStart := time.Now()
		result := resolvePath(gctx, s.pathTimeout,
			inference.ClassificationResult{Label: inference.LabelError, Confidence: 0.0},
			func(ctx context.Context) inference.ClassificationResult {
				return s.origin.Classify(ctx, image)
			})
		s.metrics.ObservePathLatency("origin", time.Since(pathStart))
		sess.setOrigin(result)
		return nil
	})

	g.Go(func() error {
		pathStart := time.Now()
		result := resolvePath(gctx, s.pathTimeout, textextract.Result{},
			func(ctx context.Context) textextract.Result {
				return s.text.Extract(ctx, image)
			})
		s.metrics.ObservePathLatency("text", time.Since(pathStart))
		sess.setText(result)
		return nil
	})

	// Paths always return nil; Wait is the join point that guarantees no
	// terminal state is emitted while any path is still pending.
	_ = g.Wait()

	snap := sess.Snapshot()
	outcome := EvaluatePrecedence(*snap.Origin, *snap.Text, s.registry)
	sess.finalize(outcome)

	if sess.isSuperseded() {
		span.SetAttributes(attribute.Bool("resolution.superseded", true))
		return
	}

	final := sess.Snapshot()
	s.metrics.ObserveResolveLatency(time.Since(start))
	s.metrics.IncrementOutcome(string(final.State), outcome.Source)
	span.SetAttributes(
		attribute.String("resolution.state", string(final.State)),
		attribute.String("resolution.source", outcome.Source),
	)

	action := audit.EventResolutionResolved
	if final.State == StateUndetermined {
		action = audit.EventResolutionUndetermined
	}
	event := audit.Event{
		SessionID:   sess.ID().String(),
		ImageDigest: digest,
		Action:      string(action),
		Outcome:     string(final.State),
		Source:      outcome.Source,
		Confidence:  outcome.Confidence,
		RequestID:   requestID,
	}
	if outcome.ISOCode != nil {
		event.ISOCode = *outcome.ISOCode
	}
	s.emitAudit(ctx, event)

	if s.logger != nil {
		s.logger.InfoContext(ctx, "resolution completed",
			"session_id", sess.ID(),
			"state", final.State,
			"source", outcome.Source,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

// resolvePath runs one extraction path with a bounded wait. Backends that
// ignore cancellation (blocking cgo calls in the ONNX and Tesseract adapters)
// must not hold the join: on expiry the path's failure value is recorded and
// the stale completion is discarded.
func resolvePath[T any](ctx context.Context, timeout time.Duration, expired T, call func(context.Context) T) T {
	pathCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan T, 1)
	go func() {
		done <- call(pathCtx)
	}()

	select {
	case result := <-done:
		return result
	case <-pathCtx.Done():
		return expired
	}
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"error", err,
		)
	}
}

func imageDigest(image []byte) string {
	sum := sha256.Sum256(image)
	return hex.EncodeToString(sum[:])
}
