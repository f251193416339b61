// =============================================================================
// Receipt Checker - Text Normalization
// =============================================================================
//
// Shared normalization for Persian/Arabic banking text. Every other module
// funnels its digit handling and string comparison through this package so
// the two sides of a reconciliation are judged on the same footing:
//   - Digits:    fold Persian (۰-۹) and Arabic-Indic (٠-٩) digit scripts
//                into ASCII before any regex runs
//   - ToAmount:  parse a possibly-Persian, possibly-grouped number string
//   - Normalize: canonical form for name/description comparison (ZWNJ,
//                Arabic letter variants, whitespace, case)
//
// =============================================================================

package textnorm

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// digitFold maps the Persian and Arabic-Indic digit blocks onto ASCII.
var digitFold = strings.NewReplacer(
	"۰", "0", "۱", "1", "۲", "2", "۳", "3", "۴", "4",
	"۵", "5", "۶", "6", "۷", "7", "۸", "8", "۹", "9",
	"٠", "0", "١", "1", "٢", "2", "٣", "3", "٤", "4",
	"٥", "5", "٦", "6", "٧", "7", "٨", "8", "٩", "9",
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Digits returns s with every Persian/Arabic-Indic digit replaced by its
// ASCII equivalent. All extraction regexes run on this form.
func Digits(s string) string {
	return digitFold.Replace(s)
}

// Clean trims surrounding whitespace. Nil-safe counterpart of the cell
// accessors used by the spreadsheet parser.
func Clean(s string) string {
	return strings.TrimSpace(s)
}

// ToAmount converts a possibly-Persian number string to a decimal amount.
// Grouping separators (Latin and Persian comma) and stray spaces are
// stripped first. The second return is false when nothing numeric remains.
func ToAmount(s string) (decimal.Decimal, bool) {
	cleaned := Digits(s)
	cleaned = strings.NewReplacer(",", "", "،", "", " ", "").Replace(cleaned)
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Normalize produces the canonical comparison form used by the sender index:
// zero-width joiners become spaces, Arabic ك/ي fold to Persian ک/ی,
// whitespace collapses to single spaces, and the result is trimmed and
// lower-cased.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = strings.NewReplacer(
		"\u200c", " ",
		"\u200d", " ",
		"ك", "ک",
		"ي", "ی",
	).Replace(s)
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.ToLower(strings.TrimSpace(s))
}

// StripNonDigits removes every non-digit rune. Used to derive the digit form
// of reference cells and raw amounts.
func StripNonDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
