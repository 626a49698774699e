package resolution

import (
	"strings"

	"veridoc/internal/inference"
	"veridoc/internal/registry"
	"veridoc/internal/textextract"
)

// originFastPathLabel is the one label for which the origin classifier is
// authoritative. The model is purpose-trained for the dominant-case country,
// so its verdict overrides any conflicting text extraction.
const originFastPathLabel = "MEX"

// EvaluatePrecedence applies the fixed-order precedence rules to the two
// country signals. Pure domain logic with no I/O; it produces an outcome for
// every combination of path successes and failures. The document
// classification is informational only and takes no part in country
// resolution.
//
// Rule order:
//  1. Origin classifier says MEX: authoritative, overrides text.
//  2. Text extraction found a non-MEX code: text wins the long tail.
//  3. Origin produced some other real label: generic other-country outcome.
//  4. Undetermined.
func EvaluatePrecedence(origin inference.ClassificationResult, text textextract.Result, reg *registry.Registry) PassportOriginResult {
	// Rule 1: dedicated fast path for the dominant-case country.
	if origin.Label == originFastPathLabel {
		code := originFastPathLabel
		name := reg.Lookup(code)
		return PassportOriginResult{
			ISOCode:     &code,
			DisplayName: &name,
			Confidence:  origin.Confidence,
			Source:      SourceOriginClassifier,
		}
	}

	// Rule 2: text extraction carries the long tail of other countries.
	if text.Found() && text.ISOCode != originFastPathLabel {
		code := text.ISOCode
		name := text.DisplayName
		if name == "" {
			name = reg.Lookup(code)
		}
		return PassportOriginResult{
			ISOCode:     &code,
			DisplayName: &name,
			Confidence:  text.Confidence,
			Source:      SourceTextExtraction,
		}
	}

	// Rule 3: the origin classifier saw "some other country" without text
	// corroboration.
	if isRealOriginLabel(origin.Label) {
		return PassportOriginResult{
			Confidence: origin.Confidence,
			Source:     SourceOriginGeneric,
		}
	}

	// Rule 4: nothing to go on.
	return PassportOriginResult{}
}

// isRealOriginLabel reports whether the label is an actual prediction rather
// than empty or a sentinel. Sentinels compare case-insensitively because the
// origin service upper-cases backend labels.
func isRealOriginLabel(label string) bool {
	if label == "" || label == originFastPathLabel {
		return false
	}
	if strings.EqualFold(label, inference.LabelUnknown) || strings.EqualFold(label, inference.LabelError) {
		return false
	}
	return true
}
