// Package textextract locates a country signal in recognized document text.
// The primary signal is the passport Machine-Readable Zone marker; fallbacks
// scan for standalone ISO3 tokens and spelled-out country names, with a
// diacritic-folded retry to tolerate OCR artifacts on accented names.
package textextract

import (
	"regexp"
	"strings"

	"veridoc/internal/registry"
	platformstrings "veridoc/pkg/platform/strings"
)

// MatchKind records which extraction step produced the result, for
// auditability and confidence assignment.
type MatchKind string

const (
	MatchNone       MatchKind = ""
	MatchMRZ        MatchKind = "mrz"
	MatchToken      MatchKind = "token"
	MatchName       MatchKind = "name"
	MatchNameFolded MatchKind = "name_folded"
)

// Confidence constants per match kind. The MRZ band is highly structured so a
// marker match is treated as near-certain; substring matches are weaker. These
// are policy values, not model outputs.
const (
	ConfidenceMRZ        = 0.98
	ConfidenceToken      = 0.90
	ConfidenceName       = 0.75
	ConfidenceNameFolded = 0.70
)

// Result is the outcome of a text extraction pass. A zero Result means no
// country token was found, which is an expected, non-exceptional outcome.
type Result struct {
	ISOCode     string  `json:"iso_code,omitempty"`
	DisplayName string  `json:"display_name,omitempty"`
	Confidence  float64   `json:"confidence"`
	Match       MatchKind `json:"match,omitempty"`
}

// Found reports whether a country signal was located.
func (r Result) Found() bool {
	return r.ISOCode != ""
}

var (
	// The MRZ document-type marker: literal P< immediately followed by the
	// 3-letter issuing-country code.
	mrzPattern = regexp.MustCompile(`P<([A-Z]{3})`)
	// Any word-boundary-bounded 3-letter uppercase token.
	tokenPattern = regexp.MustCompile(`\b[A-Z]{3}\b`)
)

// Extractor matches country signals against the registry. Stateless and safe
// for concurrent use.
type Extractor struct {
	registry *registry.Registry
}

// NewExtractor builds an extractor over the given registry.
func NewExtractor(reg *registry.Registry) *Extractor {
	return &Extractor{registry: reg}
}

// ExtractFromLines runs the matching steps in strict order over the
// recognized lines. Each step is attempted only when the previous one found
// nothing.
func (e *Extractor) ExtractFromLines(lines []string) Result {
	joined := strings.ToUpper(strings.Join(platformstrings.DedupeAndTrim(lines), " "))
	if joined == "" {
		return Result{}
	}

	// Step 1: MRZ marker. The raw code is trusted without a registry
	// membership check; the band format is structured enough on its own.
	if m := mrzPattern.FindStringSubmatch(joined); m != nil {
		code := m[1]
		return Result{
			ISOCode:     code,
			DisplayName: e.registry.Lookup(code),
			Confidence:  ConfidenceMRZ,
			Match:       MatchMRZ,
		}
	}

	// Step 2: first standalone ISO3 token that is a registry member.
	if r := e.matchToken(joined); r.Found() {
		return r
	}

	// Step 3: registry display names as substrings, in registry order.
	if r := e.matchName(joined, false); r.Found() {
		return r
	}

	// Step 4: one diacritic-folded retry of the token and name scans.
	folded := platformstrings.FoldDiacritics(joined)
	if folded != joined {
		if r := e.matchToken(folded); r.Found() {
			return r
		}
		if r := e.matchName(folded, true); r.Found() {
			return r
		}
	} else if r := e.matchName(joined, true); r.Found() {
		// Folding the text was a no-op, but registry names still need the
		// folded comparison so "FRANCIA" matches "Francia" etc.
		return r
	}

	return Result{}
}

func (e *Extractor) matchToken(text string) Result {
	for _, token := range tokenPattern.FindAllString(text, -1) {
		if e.registry.Contains(token) {
			return Result{
				ISOCode:     token,
				DisplayName: e.registry.Lookup(token),
				Confidence:  ConfidenceToken,
				Match:       MatchToken,
			}
		}
	}
	return Result{}
}

func (e *Extractor) matchName(text string, folded bool) Result {
	for _, rec := range e.registry.Records() {
		name := strings.ToUpper(rec.DisplayName)
		confidence := ConfidenceName
		match := MatchName
		if folded {
			name = platformstrings.UpperFold(rec.DisplayName)
			confidence = ConfidenceNameFolded
			match = MatchNameFolded
		}
		if strings.Contains(text, name) {
			return Result{
				ISOCode:     rec.ISO3,
				DisplayName: rec.DisplayName,
				Confidence:  confidence,
				Match:       match,
			}
		}
	}
	return Result{}
}
