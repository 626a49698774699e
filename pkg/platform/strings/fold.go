package strings

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldDiacritics removes combining marks so accented and unaccented spellings
// compare equal. OCR output frequently drops or garbles accents, so matching
// happens on the folded form.
func FoldDiacritics(s string) string {
	folded, _, err := transform.String(diacriticStripper, s)
	if err != nil {
		return s
	}
	return folded
}

// UpperFold upper-cases and strips diacritics in one step.
func UpperFold(s string) string {
	return strings.ToUpper(FoldDiacritics(s))
}
