// Package classify wraps inference backends into the two document-analysis
// questions the pipeline asks: what kind of document is this, and which
// country issued this passport. Both services fold every backend failure into
// sentinel results so no fault ever crosses into the resolution merger.
package classify

import (
	"context"
	"log/slog"
	"strings"

	"veridoc/internal/inference"
	"veridoc/pkg/platform/circuit"
)

// DefaultDocumentFallback is returned when no document model is bound.
// Policy: assume the most common document type when no model is available.
var DefaultDocumentFallback = inference.ClassificationResult{Label: "INE", Confidence: 1.0}

// DocumentService answers "what kind of document is this".
type DocumentService struct {
	backend  inference.Classifier
	fallback inference.ClassificationResult
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

// DocumentOption configures a DocumentService.
type DocumentOption func(*DocumentService)

// WithDocumentLogger sets the structured logger.
func WithDocumentLogger(logger *slog.Logger) DocumentOption {
	return func(s *DocumentService) {
		s.logger = logger
	}
}

// WithDocumentFallback overrides the unbound-model fallback result.
func WithDocumentFallback(fallback inference.ClassificationResult) DocumentOption {
	return func(s *DocumentService) {
		s.fallback = fallback
	}
}

// WithDocumentBreaker guards the backend with a circuit breaker: while open,
// classification skips the backend entirely and reports the error sentinel.
func WithDocumentBreaker(breaker *circuit.Breaker) DocumentOption {
	return func(s *DocumentService) {
		s.breaker = breaker
	}
}

// NewDocumentService constructs the document classifier. A nil backend is a
// legitimate state meaning the model is not loaded; classification then
// returns the configured fallback.
func NewDocumentService(backend inference.Classifier, opts ...DocumentOption) *DocumentService {
	s := &DocumentService{
		backend:  backend,
		fallback: DefaultDocumentFallback,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Classify returns the document type for the image. It is total: backend
// faults and undecodable images surface as the "error" sentinel, never as a
// returned error.
func (s *DocumentService) Classify(ctx context.Context, image []byte) inference.ClassificationResult {
	if s.backend == nil {
		if s.logger != nil {
			s.logger.DebugContext(ctx, "document model not loaded, using fallback",
				"fallback_label", s.fallback.Label,
			)
		}
		return s.fallback
	}

	if s.breaker != nil && s.breaker.IsOpen() {
		return inference.ClassificationResult{Label: inference.LabelError, Confidence: 0.0}
	}

	result, err := s.backend.Classify(ctx, image)
	if err != nil {
		if s.breaker != nil {
			if _, change := s.breaker.RecordFailure(); change.Opened && s.logger != nil {
				s.logger.WarnContext(ctx, "circuit opened", "breaker", s.breaker.Name())
			}
		}
		if s.logger != nil {
			s.logger.WarnContext(ctx, "document classification failed", "error", err)
		}
		return inference.ClassificationResult{Label: inference.LabelError, Confidence: 0.0}
	}
	if s.breaker != nil {
		if _, change := s.breaker.RecordSuccess(); change.Closed && s.logger != nil {
			s.logger.InfoContext(ctx, "circuit closed", "breaker", s.breaker.Name())
		}
	}
	return result
}

// OriginService predicts the issuing country directly from image features,
// bypassing text. It is specialized for the dominant-case country.
type OriginService struct {
	backend inference.Classifier
	breaker *circuit.Breaker
	logger  *slog.Logger
}

// OriginOption configures an OriginService.
type OriginOption func(*OriginService)

// WithOriginLogger sets the structured logger.
func WithOriginLogger(logger *slog.Logger) OriginOption {
	return func(s *OriginService) {
		s.logger = logger
	}
}

// WithOriginBreaker guards the backend with a circuit breaker.
func WithOriginBreaker(breaker *circuit.Breaker) OriginOption {
	return func(s *OriginService) {
		s.breaker = breaker
	}
}

// NewOriginService constructs the passport-origin classifier. A nil backend
// means the model is not loaded; classification then reports "unknown".
func NewOriginService(backend inference.Classifier, opts ...OriginOption) *OriginService {
	s := &OriginService{backend: backend}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Classify returns the predicted issuing-country label, upper-cased so the
// merger can compare it against ISO3 codes. Total for the same reasons as
// the document classifier.
func (s *OriginService) Classify(ctx context.Context, image []byte) inference.ClassificationResult {
	if s.backend == nil {
		return inference.ClassificationResult{Label: inference.LabelUnknown, Confidence: 0.0}
	}
	if s.breaker != nil && s.breaker.IsOpen() {
		return inference.ClassificationResult{Label: inference.LabelError, Confidence: 0.0}
	}

	result, err := s.backend.Classify(ctx, image)
	if err != nil {
		if s.breaker != nil {
			if _, change := s.breaker.RecordFailure(); change.Opened && s.logger != nil {
				s.logger.WarnContext(ctx, "circuit opened", "breaker", s.breaker.Name())
			}
		}
		if s.logger != nil {
			s.logger.WarnContext(ctx, "origin classification failed", "error", err)
		}
		return inference.ClassificationResult{Label: inference.LabelError, Confidence: 0.0}
	}
	if s.breaker != nil {
		if _, change := s.breaker.RecordSuccess(); change.Closed && s.logger != nil {
			s.logger.InfoContext(ctx, "circuit closed", "breaker", s.breaker.Name())
		}
	}

	result.Label = strings.ToUpper(result.Label)
	return result
}
