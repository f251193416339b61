// =============================================================================
// Receipt Checker - Amount Extraction
// =============================================================================
//
// Finds and repairs candidate monetary values in an assembled statement
// line. Two quirks of the Tahesab renderer are isolated behind the
// Heuristic interface so that other statement formats can supply different
// behavior without touching the extraction loop:
//
//   - Glyph repair: the renderer substitutes the zero glyph with a "2" glyph
//     in trailing positions, so 123,456,700 is extracted as "123456722".
//     A trailing run of two or more 2s on a run longer than six digits is
//     reinterpreted as zeros.
//   - Selection: the running balance bleeds into the same visual line as the
//     transaction amount and is almost always the largest number, so with
//     two or more candidates the second largest wins.
//
// =============================================================================

package ledger

import (
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/checkhesab/receipt-checker/internal/textnorm"
)

// amountRun matches thousand-grouped digit runs (comma, Persian comma,
// period or slash as separator) or bare runs of five or more digits. The
// input is digit-normalized before this runs.
var amountRun = regexp.MustCompile(`\b(\d{1,3}(?:[,،./]\d{3})+|\d{5,})\b`)

var amountSeparators = strings.NewReplacer(",", "", "،", "", ".", "", "/", "")

// Candidate bounds: amounts below this are page furniture (row numbers,
// counters), runs longer than nine digits are account or reference numbers.
var minAmount = decimal.NewFromInt(1000)

const maxAmountDigits = 9

// Heuristic bundles the renderer-specific amount behavior.
type Heuristic interface {
	// RepairDigits fixes font-encoding damage in a raw digit run.
	RepairDigits(raw string) string

	// Pick selects the transaction amount from a non-empty candidate list
	// sorted in descending order.
	Pick(sorted []decimal.Decimal) decimal.Decimal
}

// TahesabHeuristic implements the repairs observed on Tahesab statements.
type TahesabHeuristic struct{}

// RepairDigits rewrites a trailing run of two or more literal "2"s as zeros,
// but only on runs longer than six digits: short runs ending in 22 are real
// values, long ones are the zero-glyph substitution.
func (TahesabHeuristic) RepairDigits(raw string) string {
	if len(raw) <= 6 || !strings.HasSuffix(raw, "22") {
		return raw
	}
	trimmed := strings.TrimRight(raw, "2")
	trailer := len(raw) - len(trimmed)
	if trailer < 2 {
		return raw
	}
	return trimmed + strings.Repeat("0", trailer)
}

// Pick returns the second-largest candidate when there are at least two —
// the largest is typically the running balance — and the only candidate
// otherwise.
func (TahesabHeuristic) Pick(sorted []decimal.Decimal) decimal.Decimal {
	if len(sorted) >= 2 {
		return sorted[1]
	}
	return sorted[0]
}

// AmountExtractor scans assembled lines for monetary values.
type AmountExtractor struct {
	Heuristic Heuristic
}

// NewAmountExtractor returns an extractor with the Tahesab heuristics.
func NewAmountExtractor() *AmountExtractor {
	return &AmountExtractor{Heuristic: TahesabHeuristic{}}
}

// Candidates returns every surviving amount candidate in the line, sorted
// descending. An empty result means the line is not a transaction row.
func (e *AmountExtractor) Candidates(line string) []decimal.Decimal {
	norm := textnorm.Digits(line)

	var out []decimal.Decimal
	for _, m := range amountRun.FindAllStringSubmatch(norm, -1) {
		raw := amountSeparators.Replace(m[1])
		fixed := e.Heuristic.RepairDigits(raw)
		if len(fixed) > maxAmountDigits {
			continue
		}
		amt, ok := textnorm.ToAmount(fixed)
		if !ok || !amt.GreaterThan(minAmount) {
			continue
		}
		out = append(out, amt)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].GreaterThan(out[j]) })
	return out
}

// TransactionAmount applies the selection heuristic to the line's
// candidates. ok is false when the line has no surviving candidate and
// should be skipped as non-transactional.
func (e *AmountExtractor) TransactionAmount(line string) (decimal.Decimal, bool) {
	cands := e.Candidates(line)
	if len(cands) == 0 {
		return decimal.Zero, false
	}
	return e.Heuristic.Pick(cands), true
}
