package textextract

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"veridoc/internal/inference/mocks"
	"veridoc/internal/registry"
)

// =============================================================================
// Text Extractor Test Suite
// =============================================================================
// Justification for unit tests: the extractor implements a strict step order
// (MRZ → token → name → folded retry) where a wrong step winning silently
// produces a wrong country. Each step boundary is pinned here.

type ExtractorSuite struct {
	suite.Suite
	extractor *Extractor
}

func TestExtractorSuite(t *testing.T) {
	suite.Run(t, new(ExtractorSuite))
}

func (s *ExtractorSuite) SetupSuite() {
	s.extractor = NewExtractor(registry.New())
}

func (s *ExtractorSuite) TestMRZMarker() {
	s.Run("extracts code after P< marker", func() {
		r := s.extractor.ExtractFromLines([]string{"P<MEXGARCIA<<MARIA<<<<<<"})
		s.Equal("MEX", r.ISOCode)
		s.Equal("México", r.DisplayName)
		s.Equal(ConfidenceMRZ, r.Confidence)
		s.Equal(MatchMRZ, r.Match)
	})

	s.Run("MRZ code outside the registry is still trusted", func() {
		r := s.extractor.ExtractFromLines([]string{"P<XKXDOE<<JOHN<<<<<<"})
		s.Equal("XKX", r.ISOCode)
		// Unknown code: display name falls back to the code so the pair is
		// never inconsistent.
		s.Equal("XKX", r.DisplayName)
		s.Equal(MatchMRZ, r.Match)
	})

	s.Run("lower case input is upper-cased before matching", func() {
		r := s.extractor.ExtractFromLines([]string{"p<fragonzalez<<ana"})
		s.Equal("FRA", r.ISOCode)
	})

	s.Run("MRZ wins over a conflicting display name", func() {
		r := s.extractor.ExtractFromLines([]string{"Francia", "P<ESPLOPEZ<<JUAN"})
		s.Equal("ESP", r.ISOCode)
		s.Equal(MatchMRZ, r.Match)
	})
}

func (s *ExtractorSuite) TestStandaloneToken() {
	s.Run("registry member token matches", func() {
		r := s.extractor.ExtractFromLines([]string{"PASSPORT", "FRA", "NO 123456"})
		s.Equal("FRA", r.ISOCode)
		s.Equal("Francia", r.DisplayName)
		s.Equal(ConfidenceToken, r.Confidence)
		s.Equal(MatchToken, r.Match)
	})

	s.Run("first registry member wins left to right", func() {
		r := s.extractor.ExtractFromLines([]string{"ABC DEU FRA"})
		s.Equal("DEU", r.ISOCode)
	})

	s.Run("non-member tokens are skipped", func() {
		r := s.extractor.ExtractFromLines([]string{"XYZ QQQ"})
		s.False(r.Found())
	})

	s.Run("token embedded in a longer word does not match", func() {
		r := s.extractor.ExtractFromLines([]string{"FRAGMENT"})
		s.False(r.Found())
	})
}

func (s *ExtractorSuite) TestDisplayName() {
	s.Run("spelled-out name matches case-insensitively", func() {
		r := s.extractor.ExtractFromLines([]string{"REPUBLIQUE FRANCAISE", "Francia"})
		s.Equal("FRA", r.ISOCode)
		s.Equal("Francia", r.DisplayName)
		s.Equal(MatchName, r.Match)
	})

	s.Run("accent-free spelling resolves on the folded retry", func() {
		r := s.extractor.ExtractFromLines([]string{"PASAPORTE MEXICO"})
		s.Equal("MEX", r.ISOCode)
		s.Equal("México", r.DisplayName)
		s.Equal(ConfidenceNameFolded, r.Confidence)
		s.Equal(MatchNameFolded, r.Match)
	})

	s.Run("registry order breaks ties between names", func() {
		// Both names present: México is declared before España.
		r := s.extractor.ExtractFromLines([]string{"ESPAÑA MÉXICO"})
		s.Equal("MEX", r.ISOCode)
	})
}

func (s *ExtractorSuite) TestNoSignal() {
	s.Run("empty input", func() {
		s.False(s.extractor.ExtractFromLines(nil).Found())
		s.False(s.extractor.ExtractFromLines([]string{"", "  "}).Found())
	})

	s.Run("text without any country signal", func() {
		r := s.extractor.ExtractFromLines([]string{"HELLO WORLD", "1234"})
		s.False(r.Found())
		s.Zero(r.Confidence)
		s.Equal(MatchNone, r.Match)
	})
}

func (s *ExtractorSuite) TestResultSerializesSnakeCase() {
	r := s.extractor.ExtractFromLines([]string{"P<DEUSCHMIDT<<ANNA"})
	data, err := json.Marshal(r)
	s.Require().NoError(err)
	s.JSONEq(`{"iso_code":"DEU","display_name":"Alemania","confidence":0.98,"match":"mrz"}`, string(data))

	empty, err := json.Marshal(Result{})
	s.Require().NoError(err)
	s.JSONEq(`{"confidence":0}`, string(empty))
}

// =============================================================================
// Service (recognizer seam)
// =============================================================================

func TestServiceExtract(t *testing.T) {
	ctx := context.Background()
	image := []byte("jpeg-bytes")
	extractor := NewExtractor(registry.New())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("nil recognizer yields empty result", func(t *testing.T) {
		svc := New(nil, extractor)
		r := svc.Extract(ctx, image)
		if r.Found() {
			t.Fatalf("expected empty result, got %+v", r)
		}
	})

	t.Run("recognizer lines flow into the extractor", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		recognizer := mocks.NewMockTextRecognizer(ctrl)
		recognizer.EXPECT().
			RecognizeText(gomock.Any(), image).
			Return([]string{"P<CANSMITH<<JANE"}, nil)

		svc := New(recognizer, extractor)
		r := svc.Extract(ctx, image)
		if r.ISOCode != "CAN" {
			t.Fatalf("expected CAN, got %q", r.ISOCode)
		}
	})

	t.Run("recognizer fault folds into empty result", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		recognizer := mocks.NewMockTextRecognizer(ctrl)
		recognizer.EXPECT().
			RecognizeText(gomock.Any(), image).
			Return(nil, errors.New("tesseract: no text"))

		svc := New(recognizer, extractor, WithLogger(logger))
		r := svc.Extract(ctx, image)
		if r.Found() {
			t.Fatalf("expected empty result, got %+v", r)
		}
	})
}
