// Package tesseract implements the inference.TextRecognizer port using the
// gosseract binding. Tesseract is the external OCR capability; this adapter
// only shapes its output into the line sequence the extractor consumes.
package tesseract

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	platformstrings "veridoc/pkg/platform/strings"
)

// Config tunes the underlying Tesseract client.
type Config struct {
	// Languages are Tesseract language hints, e.g. "spa", "eng". Empty means
	// the engine default.
	Languages []string
	// TessdataPrefix overrides the trained-data directory when set.
	TessdataPrefix string
}

// Recognizer runs OCR over document images. A fresh client is created per
// call; gosseract clients are not safe for concurrent use.
type Recognizer struct {
	cfg           Config
	clientFactory func() *gosseract.Client
}

// NewRecognizer constructs a Tesseract-backed text recognizer.
func NewRecognizer(cfg Config) *Recognizer {
	return &Recognizer{cfg: cfg, clientFactory: gosseract.NewClient}
}

// RecognizeText extracts text lines from the image. Lines come back trimmed
// and deduplicated, in reading order.
func (r *Recognizer) RecognizeText(ctx context.Context, image []byte) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := r.clientFactory()
	defer c.Close()

	if r.cfg.TessdataPrefix != "" {
		if err := c.SetTessdataPrefix(r.cfg.TessdataPrefix); err != nil {
			return nil, fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	if len(r.cfg.Languages) > 0 {
		if err := c.SetLanguage(r.cfg.Languages...); err != nil {
			return nil, fmt.Errorf("set languages: %w", err)
		}
	}
	if err := c.SetImageFromBytes(image); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}

	text, err := c.Text()
	if err != nil {
		return nil, fmt.Errorf("recognize text: %w", err)
	}

	return platformstrings.DedupeAndTrim(strings.Split(text, "\n")), nil
}
