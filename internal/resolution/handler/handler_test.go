package handler_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"veridoc/internal/classify"
	"veridoc/internal/inference"
	"veridoc/internal/inference/mocks"
	"veridoc/internal/registry"
	"veridoc/internal/resolution"
	"veridoc/internal/resolution/handler"
	"veridoc/internal/resolution/store/session"
	"veridoc/internal/textextract"
)

type HandlerSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	docBackend *mocks.MockClassifier
	oriBackend *mocks.MockClassifier
	recognizer *mocks.MockTextRecognizer
	root       string
	router     chi.Router
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.docBackend = mocks.NewMockClassifier(s.ctrl)
	s.oriBackend = mocks.NewMockClassifier(s.ctrl)
	s.recognizer = mocks.NewMockTextRecognizer(s.ctrl)
	s.root = s.T().TempDir()

	reg := registry.New()
	svc, err := resolution.New(
		classify.NewDocumentService(s.docBackend),
		classify.NewOriginService(s.oriBackend),
		textextract.New(s.recognizer, textextract.NewExtractor(reg)),
		reg,
	)
	s.Require().NoError(err)

	coordinator, err := resolution.NewCoordinator(svc, session.NewInMemoryStore())
	s.Require().NoError(err)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	h := handler.New(coordinator, s.root, logger)

	s.router = chi.NewRouter()
	s.router.Route("/v1", h.Register)
}

func (s *HandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *HandlerSuite) writeImage(name string) {
	s.Require().NoError(os.WriteFile(filepath.Join(s.root, name), []byte("image-bytes"), 0o600))
}

func (s *HandlerSuite) postResolution(body map[string]any) *httptest.ResponseRecorder {
	payload, err := json.Marshal(body)
	s.Require().NoError(err)

	req := httptest.NewRequest(http.MethodPost, "/v1/resolutions", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) expectAllPaths(originLabel string) {
	s.docBackend.EXPECT().
		Classify(gomock.Any(), gomock.Any()).
		Return(inference.ClassificationResult{Label: "PASSPORT", Confidence: 0.95}, nil)
	s.oriBackend.EXPECT().
		Classify(gomock.Any(), gomock.Any()).
		Return(inference.ClassificationResult{Label: originLabel, Confidence: 0.9}, nil)
	s.recognizer.EXPECT().
		RecognizeText(gomock.Any(), gomock.Any()).
		Return(nil, nil)
}

func (s *HandlerSuite) TestCreateWaitReturnsVerdict() {
	s.writeImage("passport.jpg")
	s.expectAllPaths("MEX")

	rec := s.postResolution(map[string]any{"image_path": "passport.jpg", "wait": true})
	s.Require().Equal(http.StatusOK, rec.Code)

	var resp handler.ResolutionResponse
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&resp))
	s.Equal("resolved", resp.State)
	s.Require().NotNil(resp.Result)
	s.Require().NotNil(resp.Result.ISOCode)
	s.Equal("MEX", *resp.Result.ISOCode)
	s.Equal("México", *resp.Result.DisplayName)
	s.NotNil(resp.ResolvedAt)
}

func (s *HandlerSuite) TestCreateAsyncReturnsAccepted() {
	s.writeImage("passport.jpg")
	s.expectAllPaths("MEX")

	rec := s.postResolution(map[string]any{"image_path": "passport.jpg"})
	s.Require().Equal(http.StatusAccepted, rec.Code)

	var resp handler.ResolutionResponse
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&resp))
	s.NotEmpty(resp.ID)

	// The session settles in the background and stays queryable by ID.
	s.Eventually(func() bool {
		req := httptest.NewRequest(http.MethodGet, "/v1/resolutions/"+resp.ID, nil)
		getRec := httptest.NewRecorder()
		s.router.ServeHTTP(getRec, req)
		if getRec.Code != http.StatusOK {
			return false
		}
		var got handler.ResolutionResponse
		if err := json.NewDecoder(getRec.Body).Decode(&got); err != nil {
			return false
		}
		return got.State == "resolved"
	}, 2*time.Second, 10*time.Millisecond)
}

func (s *HandlerSuite) TestCreateMissingImageIs404() {
	rec := s.postResolution(map[string]any{"image_path": "nope.jpg", "wait": true})
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *HandlerSuite) TestCreateRejectsPathEscape() {
	rec := s.postResolution(map[string]any{"image_path": "../etc/passwd"})
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestCreateRejectsAbsolutePath() {
	rec := s.postResolution(map[string]any{"image_path": "/etc/passwd"})
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestCreateRejectsMissingPath() {
	rec := s.postResolution(map[string]any{})
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestGetInvalidIDIsBadRequest() {
	req := httptest.NewRequest(http.MethodGet, "/v1/resolutions/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestGetUnknownIDIsNotFound() {
	req := httptest.NewRequest(http.MethodGet, "/v1/resolutions/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusNotFound, rec.Code)
}
