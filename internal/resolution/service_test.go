package resolution_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"veridoc/internal/classify"
	"veridoc/internal/inference"
	"veridoc/internal/inference/mocks"
	"veridoc/internal/registry"
	"veridoc/internal/resolution"
	"veridoc/internal/textextract"
)

type ServiceSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	docBackend *mocks.MockClassifier
	oriBackend *mocks.MockClassifier
	recognizer *mocks.MockTextRecognizer
	service    *resolution.Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.docBackend = mocks.NewMockClassifier(s.ctrl)
	s.oriBackend = mocks.NewMockClassifier(s.ctrl)
	s.recognizer = mocks.NewMockTextRecognizer(s.ctrl)

	reg := registry.New()
	svc, err := resolution.New(
		classify.NewDocumentService(s.docBackend),
		classify.NewOriginService(s.oriBackend),
		textextract.New(s.recognizer, textextract.NewExtractor(reg)),
		reg,
	)
	s.Require().NoError(err)
	s.service = svc
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ServiceSuite) expectDocument(result inference.ClassificationResult) {
	s.docBackend.EXPECT().
		Classify(gomock.Any(), gomock.Any()).
		Return(result, nil)
}

// ====== Construction ======

func (s *ServiceSuite) TestNewRejectsNilDependencies() {
	reg := registry.New()
	documents := classify.NewDocumentService(s.docBackend)
	origin := classify.NewOriginService(s.oriBackend)
	text := textextract.New(s.recognizer, textextract.NewExtractor(reg))

	_, err := resolution.New(nil, origin, text, reg)
	s.Error(err)

	_, err = resolution.New(documents, nil, text, reg)
	s.Error(err)

	_, err = resolution.New(documents, origin, nil, reg)
	s.Error(err)

	_, err = resolution.New(documents, origin, text, nil)
	s.Error(err)
}

// ====== End-to-end resolve ======

func (s *ServiceSuite) TestResolveOriginFastPath() {
	s.expectDocument(inference.ClassificationResult{Label: "PASSPORT", Confidence: 0.97})
	s.oriBackend.EXPECT().
		Classify(gomock.Any(), gomock.Any()).
		Return(inference.ClassificationResult{Label: "mex", Confidence: 0.91}, nil)
	s.recognizer.EXPECT().
		RecognizeText(gomock.Any(), gomock.Any()).
		Return([]string{"REPUBLIQUE FRANCAISE", "P<FRAMARTIN<<CLAIRE<<<"}, nil)

	result, err := s.service.Resolve(context.Background(), []byte("frame"))
	s.Require().NoError(err)

	s.Require().NotNil(result.ISOCode)
	s.Equal("MEX", *result.ISOCode)
	s.Equal(resolution.SourceOriginClassifier, result.Source)
	s.Equal(0.91, result.Confidence)
}

func (s *ServiceSuite) TestLateOriginResultStillOverridesText() {
	// Text finishes immediately; the origin classifier is slow. The merger
	// must hold the verdict until the slow path lands and then let it win.
	s.expectDocument(inference.ClassificationResult{Label: "PASSPORT", Confidence: 0.95})
	s.oriBackend.EXPECT().
		Classify(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ []byte) (inference.ClassificationResult, error) {
			select {
			case <-time.After(400 * time.Millisecond):
			case <-ctx.Done():
			}
			return inference.ClassificationResult{Label: "MEX", Confidence: 0.89}, nil
		})
	s.recognizer.EXPECT().
		RecognizeText(gomock.Any(), gomock.Any()).
		Return([]string{"P<ESPGARCIA<<MARIA<<<"}, nil)

	sess := s.service.Begin(context.Background(), []byte("frame"))

	s.Eventually(func() bool {
		snap := sess.Snapshot()
		return snap.Text != nil && snap.Text.ISOCode == "ESP"
	}, 2*time.Second, 10*time.Millisecond)

	// Text landed but the session must not be terminal yet.
	snap := sess.Snapshot()
	s.False(snap.State.IsTerminal())
	s.Nil(snap.Result)

	result, err := sess.Wait(context.Background())
	s.Require().NoError(err)
	s.Require().NotNil(result.ISOCode)
	s.Equal("MEX", *result.ISOCode)
	s.Equal(resolution.SourceOriginClassifier, result.Source)
}

func (s *ServiceSuite) TestResolveTextWins() {
	s.expectDocument(inference.ClassificationResult{Label: "PASSPORT", Confidence: 0.96})
	s.oriBackend.EXPECT().
		Classify(gomock.Any(), gomock.Any()).
		Return(inference.ClassificationResult{Label: inference.LabelUnknown, Confidence: 0.0}, nil)
	s.recognizer.EXPECT().
		RecognizeText(gomock.Any(), gomock.Any()).
		Return([]string{"PASAPORTE", "P<DEUSCHMIDT<<ANNA<<<"}, nil)

	result, err := s.service.Resolve(context.Background(), []byte("frame"))
	s.Require().NoError(err)

	s.Require().NotNil(result.ISOCode)
	s.Equal("DEU", *result.ISOCode)
	s.Require().NotNil(result.DisplayName)
	s.Equal("Alemania", *result.DisplayName)
	s.Equal(textextract.ConfidenceMRZ, result.Confidence)
	s.Equal(resolution.SourceTextExtraction, result.Source)
}

func (s *ServiceSuite) TestAllPathsFailingIsUndeterminedNotError() {
	s.docBackend.EXPECT().
		Classify(gomock.Any(), gomock.Any()).
		Return(inference.ClassificationResult{}, errors.New("model crashed"))
	s.oriBackend.EXPECT().
		Classify(gomock.Any(), gomock.Any()).
		Return(inference.ClassificationResult{}, errors.New("model crashed"))
	s.recognizer.EXPECT().
		RecognizeText(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("ocr crashed"))

	sess := s.service.Begin(context.Background(), []byte("frame"))
	result, err := sess.Wait(context.Background())
	s.Require().NoError(err)

	s.Nil(result.ISOCode)
	s.Nil(result.DisplayName)
	s.Empty(result.Source)

	snap := sess.Snapshot()
	s.Equal(resolution.StateUndetermined, snap.State)
	s.Require().NotNil(snap.Document)
	s.Equal(inference.LabelError, snap.Document.Label)
	s.Require().NotNil(snap.Origin)
	s.Equal(inference.LabelError, snap.Origin.Label)
	s.Require().NotNil(snap.ResolvedAt)
}

func (s *ServiceSuite) TestUnboundBackendsFallBackToDefaults() {
	// Services built without backends must still drive the pipeline to a
	// terminal state using their fallbacks.
	reg := registry.New()
	svc, err := resolution.New(
		classify.NewDocumentService(nil),
		classify.NewOriginService(nil),
		textextract.New(nil, textextract.NewExtractor(reg)),
		reg,
	)
	s.Require().NoError(err)

	sess := svc.Begin(context.Background(), []byte("frame"))
	result, err := sess.Wait(context.Background())
	s.Require().NoError(err)
	s.Nil(result.ISOCode)

	snap := sess.Snapshot()
	s.Equal(resolution.StateUndetermined, snap.State)
	s.Require().NotNil(snap.Document)
	s.Equal("INE", snap.Document.Label)
	s.Equal(1.0, snap.Document.Confidence)
	s.Require().NotNil(snap.Origin)
	s.Equal(inference.LabelUnknown, snap.Origin.Label)
}

func (s *ServiceSuite) TestWaitIsIdempotent() {
	s.expectDocument(inference.ClassificationResult{Label: "PASSPORT", Confidence: 0.9})
	s.oriBackend.EXPECT().
		Classify(gomock.Any(), gomock.Any()).
		Return(inference.ClassificationResult{Label: "MEX", Confidence: 0.9}, nil)
	s.recognizer.EXPECT().
		RecognizeText(gomock.Any(), gomock.Any()).
		Return(nil, nil)

	sess := s.service.Begin(context.Background(), []byte("frame"))

	first, err := sess.Wait(context.Background())
	s.Require().NoError(err)
	second, err := sess.Wait(context.Background())
	s.Require().NoError(err)

	s.Equal(first, second)

	// The returned results are copies; mutating one does not leak into the
	// session.
	first.Source = "mutated"
	third, err := sess.Wait(context.Background())
	s.Require().NoError(err)
	s.Equal(resolution.SourceOriginClassifier, third.Source)
}

func (s *ServiceSuite) TestWaitHonorsCallerDeadline() {
	s.expectDocument(inference.ClassificationResult{Label: "PASSPORT", Confidence: 0.9})
	s.oriBackend.EXPECT().
		Classify(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ []byte) (inference.ClassificationResult, error) {
			select {
			case <-time.After(2 * time.Second):
			case <-ctx.Done():
			}
			return inference.ClassificationResult{Label: "MEX", Confidence: 0.9}, nil
		})
	s.recognizer.EXPECT().
		RecognizeText(gomock.Any(), gomock.Any()).
		Return(nil, nil)

	sess := s.service.Begin(context.Background(), []byte("frame"))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := sess.Wait(ctx)
	s.Error(err)

	// The session itself still settles.
	result, err := sess.Wait(context.Background())
	s.Require().NoError(err)
	s.NotNil(result.ISOCode)
}

func (s *ServiceSuite) TestPathTimeoutBoundsNonCooperativeBackend() {
	s.expectDocument(inference.ClassificationResult{Label: "PASSPORT", Confidence: 0.9})
	// A backend that never checks its context (blocking cgo calls behave
	// like this) must not keep the session open past the path timeout.
	s.oriBackend.EXPECT().
		Classify(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, []byte) (inference.ClassificationResult, error) {
			time.Sleep(2 * time.Second)
			return inference.ClassificationResult{Label: "MEX", Confidence: 0.9}, nil
		})
	s.recognizer.EXPECT().
		RecognizeText(gomock.Any(), gomock.Any()).
		Return(nil, nil)

	reg := registry.New()
	svc, err := resolution.New(
		classify.NewDocumentService(s.docBackend),
		classify.NewOriginService(s.oriBackend),
		textextract.New(s.recognizer, textextract.NewExtractor(reg)),
		reg,
		resolution.WithPathTimeout(50*time.Millisecond),
	)
	s.Require().NoError(err)

	sess := svc.Begin(context.Background(), []byte("frame"))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	result, err := sess.Wait(ctx)
	s.Require().NoError(err)
	s.Nil(result.ISOCode)

	// The wedged path settles as a failure; the late completion is discarded.
	snap := sess.Snapshot()
	s.Equal(resolution.StateUndetermined, snap.State)
	s.Require().NotNil(snap.Origin)
	s.Equal(inference.LabelError, snap.Origin.Label)
	s.Equal(0.0, snap.Origin.Confidence)
}
