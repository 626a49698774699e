package textextract

import (
	"context"
	"log/slog"

	"veridoc/internal/inference"
)

// Service runs text recognition against an image and extracts the country
// signal from the recognized lines. Recognizer faults and absent recognizers
// fold into the empty result; this path never reports an error upward.
type Service struct {
	recognizer inference.TextRecognizer
	extractor  *Extractor
	logger     *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New constructs the extraction service. A nil recognizer is a legitimate
// state meaning no OCR backend is bound; extraction then always comes back
// empty.
func New(recognizer inference.TextRecognizer, extractor *Extractor, opts ...Option) *Service {
	s := &Service{
		recognizer: recognizer,
		extractor:  extractor,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Extract recognizes text in the image and matches a country. Total: every
// failure mode is represented as the empty result.
func (s *Service) Extract(ctx context.Context, image []byte) Result {
	if s.recognizer == nil {
		return Result{}
	}

	lines, err := s.recognizer.RecognizeText(ctx, image)
	if err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "text recognition failed", "error", err)
		}
		return Result{}
	}
	if len(lines) == 0 {
		return Result{}
	}

	return s.extractor.ExtractFromLines(lines)
}
