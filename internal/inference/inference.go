// Package inference defines the capability contracts for ML classification
// and text-recognition backends. The pipeline depends only on these shapes;
// concrete adapters (ONNX Runtime, Tesseract) live in subpackages so a model
// runtime can be swapped or absent without touching the resolution logic.
package inference

//go:generate mockgen -source=inference.go -destination=mocks/mocks.go -package=mocks Classifier,TextRecognizer

import "context"

// Sentinel labels used when a backend cannot produce a ranked result.
// These are data, not errors: the merger treats them as first-class inputs.
const (
	LabelUnknown = "unknown"
	LabelError   = "error"
)

// ClassificationResult is the top-ranked answer from a classifier backend.
// Confidence is in [0,1].
type ClassificationResult struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Classifier answers "what is in this image" with a single ranked label.
// Image bytes are the raw encoded form (JPEG, PNG, ...); decoding to the
// backend-native raster form is the adapter's concern.
type Classifier interface {
	Classify(ctx context.Context, image []byte) (ClassificationResult, error)
}

// TextRecognizer extracts printed text lines from an image.
type TextRecognizer interface {
	RecognizeText(ctx context.Context, image []byte) ([]string, error)
}
