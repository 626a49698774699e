package handler

import (
	"time"

	"veridoc/internal/resolution"
)

// ResolutionResponse is the HTTP representation of a session snapshot.
type ResolutionResponse struct {
	ID         string                `json:"id"`
	State      string                `json:"state"`
	Document   *PathResultResponse   `json:"document,omitempty"`
	Origin     *PathResultResponse   `json:"origin,omitempty"`
	Text       *TextResultResponse   `json:"text,omitempty"`
	Result     *OriginResultResponse `json:"result,omitempty"`
	CreatedAt  time.Time             `json:"created_at"`
	ResolvedAt *time.Time            `json:"resolved_at,omitempty"`
}

// PathResultResponse is one raw classifier signal.
type PathResultResponse struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// TextResultResponse is the text extraction signal.
type TextResultResponse struct {
	ISOCode     string  `json:"iso_code,omitempty"`
	DisplayName string  `json:"display_name,omitempty"`
	Confidence  float64 `json:"confidence"`
	Match       string  `json:"match,omitempty"`
}

// OriginResultResponse is the merged verdict.
type OriginResultResponse struct {
	ISOCode     *string `json:"iso_code,omitempty"`
	DisplayName *string `json:"display_name,omitempty"`
	Confidence  float64 `json:"confidence"`
	Source      string  `json:"source,omitempty"`
}

// FromSnapshot converts a session snapshot to its HTTP representation.
func FromSnapshot(snap *resolution.Snapshot) *ResolutionResponse {
	resp := &ResolutionResponse{
		ID:         snap.ID.String(),
		State:      string(snap.State),
		CreatedAt:  snap.CreatedAt,
		ResolvedAt: snap.ResolvedAt,
	}
	if snap.Document != nil {
		resp.Document = &PathResultResponse{
			Label:      snap.Document.Label,
			Confidence: snap.Document.Confidence,
		}
	}
	if snap.Origin != nil {
		resp.Origin = &PathResultResponse{
			Label:      snap.Origin.Label,
			Confidence: snap.Origin.Confidence,
		}
	}
	if snap.Text != nil {
		resp.Text = &TextResultResponse{
			ISOCode:     snap.Text.ISOCode,
			DisplayName: snap.Text.DisplayName,
			Confidence:  snap.Text.Confidence,
			Match:       string(snap.Text.Match),
		}
	}
	if snap.Result != nil {
		resp.Result = &OriginResultResponse{
			ISOCode:     snap.Result.ISOCode,
			DisplayName: snap.Result.DisplayName,
			Confidence:  snap.Result.Confidence,
			Source:      snap.Result.Source,
		}
	}
	return resp
}
