// Package publisher connects domain logic to an audit store, optionally
// decoupling emit latency from storage latency with an async buffer.
package publisher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	audit "veridoc/pkg/platform/audit"
)

// Lister is implemented by stores that support per-session reads.
type Lister interface {
	ListBySession(ctx context.Context, sessionID string) ([]audit.Event, error)
}

// Publisher writes audit events to a store, synchronously by default or
// through a buffered worker when configured with WithAsyncBuffer.
type Publisher struct {
	store  audit.Store
	logger *slog.Logger

	buffer chan audit.Event
	wg     sync.WaitGroup
	once   sync.Once
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithAsyncBuffer enables asynchronous publishing with the given buffer size.
// When the buffer is full events are dropped rather than blocking the
// resolution path; audit must never stall a verdict.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		if size > 0 {
			p.buffer = make(chan audit.Event, size)
		}
	}
}

// WithLogger sets the structured logger used for drop/store failures.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// NewPublisher constructs a publisher over the given store.
func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.buffer != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit records an event, stamping the timestamp and category when unset.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}

	if p.buffer == nil {
		return p.store.Append(ctx, event)
	}

	select {
	case p.buffer <- event:
	default:
		if p.logger != nil {
			p.logger.Warn("audit buffer full, dropping event",
				"action", event.Action,
				"session_id", event.SessionID,
			)
		}
	}
	return nil
}

// List returns the events recorded for a session when the store supports it.
func (p *Publisher) List(ctx context.Context, sessionID string) ([]audit.Event, error) {
	if l, ok := p.store.(Lister); ok {
		return l.ListBySession(ctx, sessionID)
	}
	return nil, nil
}

// Close stops the async worker, draining any buffered events first.
func (p *Publisher) Close() {
	p.once.Do(func() {
		if p.buffer != nil {
			close(p.buffer)
			p.wg.Wait()
		}
	})
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for event := range p.buffer {
		if err := p.store.Append(context.Background(), event); err != nil && p.logger != nil {
			p.logger.Warn("audit store append failed", "action", event.Action, "error", err)
		}
	}
}
