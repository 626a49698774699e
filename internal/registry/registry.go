// Package registry holds the static ISO3 country table used to render
// user-facing country names and to match country names found in recognized
// document text. The registry is built once at startup and is read-only, so
// it is safe to share across concurrent extraction paths without locking.
package registry

import (
	"strings"

	platformstrings "veridoc/pkg/platform/strings"
)

// CountryRecord pairs an ISO 3166-1 alpha-3 code with its display name.
type CountryRecord struct {
	ISO3        string `json:"iso3"`
	DisplayName string `json:"display_name"`
}

// Registry is an immutable lookup table over the built-in country set.
type Registry struct {
	records      []CountryRecord
	nameByCode   map[string]string
	codeByFolded map[string]string
}

// New builds the registry from the built-in country table.
func New() *Registry {
	r := &Registry{
		records:      countryTable,
		nameByCode:   make(map[string]string, len(countryTable)),
		codeByFolded: make(map[string]string, len(countryTable)),
	}
	for _, rec := range countryTable {
		r.nameByCode[rec.ISO3] = rec.DisplayName
		r.codeByFolded[platformstrings.UpperFold(rec.DisplayName)] = rec.ISO3
	}
	return r
}

// Lookup returns the display name for an ISO3 code. Unknown codes are valid,
// just unlabeled: the code itself comes back so callers never end up with a
// code but no name.
func (r *Registry) Lookup(iso3 string) string {
	if name, ok := r.nameByCode[strings.ToUpper(iso3)]; ok {
		return name
	}
	return iso3
}

// ReverseLookup resolves a spelled-out country name to its ISO3 code.
// Matching is case-insensitive and diacritic-folded to tolerate OCR noise.
func (r *Registry) ReverseLookup(displayName string) (string, bool) {
	code, ok := r.codeByFolded[platformstrings.UpperFold(displayName)]
	return code, ok
}

// Contains reports whether the ISO3 code is a member of the registry.
func (r *Registry) Contains(iso3 string) bool {
	_, ok := r.nameByCode[strings.ToUpper(iso3)]
	return ok
}

// Records returns the country set in declaration order. The slice is a copy;
// mutating it does not affect the registry.
func (r *Registry) Records() []CountryRecord {
	out := make([]CountryRecord, len(r.records))
	copy(out, r.records)
	return out
}

// Len returns the number of registered countries.
func (r *Registry) Len() int {
	return len(r.records)
}
