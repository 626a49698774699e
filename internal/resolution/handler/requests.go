package handler

import (
	"path/filepath"
	"strings"

	dErrors "veridoc/pkg/domain-errors"
)

// defaultStreamKey groups submissions that carry no explicit stream into a
// single latest-wins sequence.
const defaultStreamKey = "default"

// CreateResolutionRequest is the HTTP request body for POST /v1/resolutions.
// Documents are never transmitted over the API: the body references an image
// already present on the server's document volume.
type CreateResolutionRequest struct {
	// ImagePath is relative to the configured document root.
	ImagePath string `json:"image_path"`
	// StreamKey identifies the capture stream. Submissions on the same
	// stream supersede each other.
	StreamKey string `json:"stream_key"`
	// Wait makes the request block until the session reaches a terminal
	// state instead of returning 202 immediately.
	Wait bool `json:"wait"`
}

// Validate validates and normalizes the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *CreateResolutionRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	r.ImagePath = strings.TrimSpace(r.ImagePath)
	if r.ImagePath == "" {
		return dErrors.New(dErrors.CodeValidation, "image_path is required")
	}
	if !filepath.IsLocal(r.ImagePath) {
		return dErrors.New(dErrors.CodeValidation, "image_path must stay within the document root")
	}

	r.StreamKey = strings.TrimSpace(r.StreamKey)
	if r.StreamKey == "" {
		r.StreamKey = defaultStreamKey
	}
	if len(r.StreamKey) > 128 {
		return dErrors.New(dErrors.CodeValidation, "stream_key must be at most 128 characters")
	}

	return nil
}
