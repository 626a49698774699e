package classify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"veridoc/internal/inference"
	"veridoc/internal/inference/mocks"
	"veridoc/pkg/platform/circuit"
)

// =============================================================================
// Classifier Service Test Suite
// =============================================================================
// Justification for unit tests: the wrapper services implement the fallback
// policy for unbound models and the fault-to-sentinel conversion. Both are
// load-bearing for merger totality and cannot be exercised with real models.

type ClassifySuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	backend *mocks.MockClassifier
}

func TestClassifySuite(t *testing.T) {
	suite.Run(t, new(ClassifySuite))
}

func (s *ClassifySuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.backend = mocks.NewMockClassifier(s.ctrl)
}

func (s *ClassifySuite) TearDownTest() {
	s.ctrl.Finish()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// =============================================================================
// Document Classifier
// =============================================================================

func (s *ClassifySuite) TestDocumentClassify() {
	ctx := context.Background()
	image := []byte("jpeg-bytes")

	s.Run("nil backend returns INE fallback", func() {
		svc := NewDocumentService(nil, WithDocumentLogger(discardLogger()))

		result := svc.Classify(ctx, image)
		s.Equal("INE", result.Label)
		s.Equal(1.0, result.Confidence)
	})

	s.Run("custom fallback is honored", func() {
		svc := NewDocumentService(nil, WithDocumentFallback(
			inference.ClassificationResult{Label: "passport", Confidence: 0.5},
		))

		result := svc.Classify(ctx, image)
		s.Equal("passport", result.Label)
		s.Equal(0.5, result.Confidence)
	})

	s.Run("backend result passes through", func() {
		s.backend.EXPECT().
			Classify(gomock.Any(), image).
			Return(inference.ClassificationResult{Label: "passport", Confidence: 0.92}, nil)

		svc := NewDocumentService(s.backend)
		result := svc.Classify(ctx, image)
		s.Equal("passport", result.Label)
		s.Equal(0.92, result.Confidence)
	})

	s.Run("backend fault becomes error sentinel", func() {
		s.backend.EXPECT().
			Classify(gomock.Any(), image).
			Return(inference.ClassificationResult{}, errors.New("decode image: bad header"))

		svc := NewDocumentService(s.backend, WithDocumentLogger(discardLogger()))
		result := svc.Classify(ctx, image)
		s.Equal(inference.LabelError, result.Label)
		s.Zero(result.Confidence)
	})
}

// =============================================================================
// Origin Classifier
// =============================================================================

func (s *ClassifySuite) TestOriginClassify() {
	ctx := context.Background()
	image := []byte("jpeg-bytes")

	s.Run("nil backend returns unknown", func() {
		svc := NewOriginService(nil)

		result := svc.Classify(ctx, image)
		s.Equal(inference.LabelUnknown, result.Label)
		s.Zero(result.Confidence)
	})

	s.Run("backend label is upper-cased", func() {
		s.backend.EXPECT().
			Classify(gomock.Any(), image).
			Return(inference.ClassificationResult{Label: "mex", Confidence: 0.87}, nil)

		svc := NewOriginService(s.backend)
		result := svc.Classify(ctx, image)
		s.Equal("MEX", result.Label)
		s.Equal(0.87, result.Confidence)
	})

	s.Run("backend fault becomes error sentinel", func() {
		s.backend.EXPECT().
			Classify(gomock.Any(), image).
			Return(inference.ClassificationResult{}, errors.New("run model: session closed"))

		svc := NewOriginService(s.backend, WithOriginLogger(discardLogger()))
		result := svc.Classify(ctx, image)
		s.Equal(inference.LabelError, result.Label)
		s.Zero(result.Confidence)
	})
}

func (s *ClassifySuite) TestBreakerShortCircuitsWedgedBackend() {
	ctx := context.Background()
	image := []byte("jpeg-bytes")

	// Two failures trip the breaker; afterwards the backend is not called
	// again until the cooldown elapses.
	s.backend.EXPECT().
		Classify(gomock.Any(), image).
		Return(inference.ClassificationResult{}, errors.New("run model: timeout")).
		Times(2)

	svc := NewDocumentService(s.backend,
		WithDocumentLogger(discardLogger()),
		WithDocumentBreaker(circuit.New("document-model", circuit.WithFailureThreshold(2))),
	)

	for range 3 {
		result := svc.Classify(ctx, image)
		s.Equal(inference.LabelError, result.Label)
	}
}

func (s *ClassifySuite) TestBreakerRecoversAfterCooldown() {
	ctx := context.Background()
	image := []byte("jpeg-bytes")

	fault := s.backend.EXPECT().
		Classify(gomock.Any(), image).
		Return(inference.ClassificationResult{}, errors.New("run model: timeout"))
	s.backend.EXPECT().
		Classify(gomock.Any(), image).
		Return(inference.ClassificationResult{Label: "PASSPORT", Confidence: 0.9}, nil).
		After(fault)

	breaker := circuit.New("document-model",
		circuit.WithFailureThreshold(1),
		circuit.WithSuccessThreshold(1),
		circuit.WithCooldown(10*time.Millisecond),
	)
	svc := NewDocumentService(s.backend,
		WithDocumentLogger(discardLogger()),
		WithDocumentBreaker(breaker),
	)

	s.Equal(inference.LabelError, svc.Classify(ctx, image).Label)
	s.Require().True(breaker.IsOpen())

	time.Sleep(20 * time.Millisecond)

	result := svc.Classify(ctx, image)
	s.Equal("PASSPORT", result.Label)
	s.False(breaker.IsOpen())
}
