// Package handler exposes the country registry over HTTP for diagnostics
// and client-side pickers.
package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"veridoc/internal/registry"
	dErrors "veridoc/pkg/domain-errors"
	"veridoc/pkg/platform/httputil"
)

// Handler serves the country registry endpoints.
type Handler struct {
	registry *registry.Registry
}

// New constructs a registry handler.
func New(reg *registry.Registry) *Handler {
	return &Handler{registry: reg}
}

// Register mounts registry endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/countries", h.HandleList)
	r.Get("/countries/reverse", h.HandleReverse)
	r.Get("/countries/{iso3}", h.HandleGet)
}

// CountryResponse is one registry entry.
type CountryResponse struct {
	ISOCode     string `json:"iso_code"`
	DisplayName string `json:"display_name"`
}

// HandleList handles GET /v1/countries requests.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	records := h.registry.Records()
	out := make([]CountryResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, CountryResponse{ISOCode: rec.ISO3, DisplayName: rec.DisplayName})
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

// HandleGet handles GET /v1/countries/{iso3} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "iso3")))
	if len(code) != 3 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "iso3 must be a three-letter code"))
		return
	}
	if !h.registry.Contains(code) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "country not found"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, CountryResponse{
		ISOCode:     code,
		DisplayName: h.registry.Lookup(code),
	})
}

// HandleReverse handles GET /v1/countries/reverse?name= requests.
func (h *Handler) HandleReverse(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "name query parameter is required"))
		return
	}
	code, ok := h.registry.ReverseLookup(name)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "no country matches that name"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, CountryResponse{
		ISOCode:     code,
		DisplayName: h.registry.Lookup(code),
	})
}
