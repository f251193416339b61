// =============================================================================
// Receipt Checker - Owner Code Filter
// =============================================================================
//
// Some numeric identifiers in a statement belong to the account itself — a
// branch code printed in the page header, an internal account suffix — and
// would poison tracking-code matching if treated as transaction codes. Two
// detectors feed one set:
//
//   - Header seed: a 4-5 digit number wrapped in parentheses on the first
//     page. The renderer often reverses the RTL bracket pair, so both
//     ")8181(" and "(8181)" forms are recognized.
//   - Frequency pass: any code appearing in more than 10% of extracted rows
//     is structural, not transactional. Frequency is only knowable after
//     full extraction, so this is a necessary second pass that scrubs the
//     already-extracted rows.
//
// The set is request-scoped: every parse invocation constructs its own so
// concurrent requests cannot contaminate each other's detection.
//
// =============================================================================

package ledger

import (
	"regexp"

	"github.com/rs/zerolog/log"

	"github.com/checkhesab/receipt-checker/internal/types"
)

var (
	reHeaderCodeReversed = regexp.MustCompile(`^\)(\d{4,5})\($`)
	reHeaderCodeNormal   = regexp.MustCompile(`^\((\d{4,5})\)$`)
)

// ownerFrequencyThreshold: codes present in more than this share of rows are
// judged structural.
const ownerFrequencyThreshold = 0.10

// OwnerCodes is the request-scoped set of structural (non-transaction)
// codes.
type OwnerCodes struct {
	set map[string]struct{}
}

// NewOwnerCodes returns an empty set.
func NewOwnerCodes() *OwnerCodes {
	return &OwnerCodes{set: make(map[string]struct{})}
}

// Add records a structural code.
func (o *OwnerCodes) Add(code string) {
	o.set[code] = struct{}{}
}

// Contains reports whether code is structural.
func (o *OwnerCodes) Contains(code string) bool {
	_, ok := o.set[code]
	return ok
}

// Len returns the number of recorded codes.
func (o *OwnerCodes) Len() int { return len(o.set) }

// SeedFromHeaderToken inspects a single first-page token for the
// parenthesized account-holder code, in either bracket orientation, and
// records it when found.
func (o *OwnerCodes) SeedFromHeaderToken(text string) bool {
	m := reHeaderCodeReversed.FindStringSubmatch(text)
	if m == nil {
		m = reHeaderCodeNormal.FindStringSubmatch(text)
	}
	if m == nil {
		return false
	}
	o.Add(m[1])
	log.Debug().Str("code", m[1]).Msg("account holder code detected in header")
	return true
}

// ApplyFrequencyFilter enlarges the set with every code occurring in more
// than 10% of the given rows, then strips all owner codes from each row's
// code list in place. Call once, after the whole document is extracted.
func (o *OwnerCodes) ApplyFrequencyFilter(rows []*types.LedgerRow) {
	if len(rows) == 0 {
		return
	}

	freq := make(map[string]int)
	for _, r := range rows {
		for _, c := range r.Codes {
			freq[c]++
		}
	}
	threshold := float64(len(rows)) * ownerFrequencyThreshold
	var auto []string
	for c, n := range freq {
		if float64(n) > threshold {
			o.Add(c)
			auto = append(auto, c)
		}
	}
	if len(auto) > 0 {
		log.Info().Strs("codes", auto).Msg("auto-detected owner codes, scrubbing from rows")
	}
	if o.Len() == 0 {
		return
	}

	for _, r := range rows {
		kept := r.Codes[:0]
		for _, c := range r.Codes {
			if !o.Contains(c) {
				kept = append(kept, c)
			}
		}
		if len(kept) == 0 {
			r.Codes = nil
		} else {
			r.Codes = kept
		}
	}
}
