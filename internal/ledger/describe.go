// =============================================================================
// Receipt Checker - Description Annotator
// =============================================================================
//
// Extracts tracking codes and the sender name from the free-text شرح
// (description) field. The field is loosely structured and the statement
// renderer introduces bidirectional-text artifacts, so extraction is a set
// of independent rules that all run unconditionally against a
// digit-normalized copy of the text; their results are unioned. Each rule is
// a named object sharing one contract, which keeps rules independently
// testable and lets new layouts be added without touching the others.
//
// Observed layouts:
//   "واریز نقد به بانک (از مشتری) [صادرات منشادی،24454] خدمتی/2452"
//   "واریز نقد به بانک (از مشتری) [100617] واحدشه/1264"
//   "[97830/3882] دادور/2951"
//
// Sender resolution is single-shot: the first matching pattern wins.
//
// =============================================================================

package ledger

import (
	"regexp"
	"sort"
	"strings"

	"github.com/checkhesab/receipt-checker/internal/textnorm"
)

// CodeRule extracts candidate tracking codes from a digit-normalized
// description. Rules never reject each other's results; the annotator unions
// everything.
type CodeRule struct {
	Name    string
	Extract func(desc string) []string
}

var (
	reNameSlashCode = regexp.MustCompile(`[\x{0600}-\x{06FF}]+\s*/\s*(\d{4,8})\b`)
	reCodeSlashName = regexp.MustCompile(`\b(\d{4})\s*/\s*[\x{0600}-\x{06FF}]`)
	// leading (^|non-digit) stands in for the lookbehind: the four digits
	// must not extend a longer run
	reCodeBeforeBracket = regexp.MustCompile(`(?:^|[^0-9])(\d{4})\s*\[`)
	reBracketGroup      = regexp.MustCompile(`\[([^\]]+)\]`)
	reDigitRun          = regexp.MustCompile(`\d+`)
	reAfterLongBracket  = regexp.MustCompile(`\[([^\]]{8,})\]\s*(\d{4,8})\b`)
	reIsolatedCell      = regexp.MustCompile(`^\d{4,8}$`)
	reCodeChain         = regexp.MustCompile(`\b\d{4,8}(?:\s*[/,-]\s*\d{4,8})+\b`)
	reChainMember       = regexp.MustCompile(`\d{4,8}`)
	reDateShaped        = regexp.MustCompile(`\b\d{4}/\d{1,2}/\d{1,2}\b`)
)

// codeRules is the ordered rule set. Order only affects log readability;
// results are unioned.
var codeRules = []CodeRule{
	{
		// sender name, slash, code: "خدمتی/2452"
		Name: "name-slash-code",
		Extract: func(desc string) []string {
			return submatches(reNameSlashCode, desc, 1)
		},
	},
	{
		// code, slash, sender name: "1102/برهام"
		Name: "code-slash-name",
		Extract: func(desc string) []string {
			return submatches(reCodeSlashName, desc, 1)
		},
	},
	{
		// four digits immediately before a bracket group: "8842[غفاری]"
		Name: "code-before-bracket",
		Extract: func(desc string) []string {
			return submatches(reCodeBeforeBracket, desc, 1)
		},
	},
	{
		// digit runs of length >= 4 anywhere inside brackets, kept at full
		// length: "[صادرات منشادی،24454]"
		Name: "bracket-contents",
		Extract: func(desc string) []string {
			var out []string
			for _, g := range reBracketGroup.FindAllStringSubmatch(desc, -1) {
				for _, n := range reDigitRun.FindAllString(g[1], -1) {
					if len(n) >= 4 {
						out = append(out, n)
					}
				}
			}
			return out
		},
	},
	{
		// code after a long bracket group. The renderer reverses RTL bracket
		// pairs, pushing the code outside: "[ بانک منشادی ، ]3030". Long
		// content only, so short person-name brackets do not false-positive.
		Name: "code-after-bracket",
		Extract: func(desc string) []string {
			return submatches(reAfterLongBracket, desc, 2)
		},
	},
	{
		// code alone between two pipe separators
		Name: "pipe-cell",
		Extract: func(desc string) []string {
			segs := strings.Split(desc, "|")
			var out []string
			for i := 1; i < len(segs)-1; i++ {
				if v := strings.TrimSpace(segs[i]); reIsolatedCell.MatchString(v) {
					out = append(out, v)
				}
			}
			return out
		},
	},
	{
		// code alone in the final pipe cell
		Name: "pipe-tail",
		Extract: func(desc string) []string {
			segs := strings.Split(desc, "|")
			if len(segs) < 2 {
				return nil
			}
			if v := strings.TrimSpace(segs[len(segs)-1]); reIsolatedCell.MatchString(v) {
				return []string{v}
			}
			return nil
		},
	},
	{
		// chained codes joined by slash/comma/dash: "0260/2502". Date-shaped
		// triples (1404/12/04) are not code chains.
		Name: "code-chain",
		Extract: func(desc string) []string {
			var out []string
			for _, chain := range reCodeChain.FindAllString(desc, -1) {
				if reDateShaped.MatchString(chain) {
					continue
				}
				out = append(out, reChainMember.FindAllString(chain, -1)...)
			}
			return out
		},
	},
}

func submatches(re *regexp.Regexp, s string, group int) []string {
	var out []string
	for _, m := range re.FindAllStringSubmatch(s, -1) {
		out = append(out, m[group])
	}
	return out
}

// =============================================================================
// SENDER RESOLUTION
// =============================================================================
//
// Bounded character classes only; RE2 keeps these linear on adversarial
// input.

var (
	reSenderBeforeSlash = regexp.MustCompile(`([\x{0600}-\x{06FF}\s]+)\s*/\s*\d{4}`)
	reSenderAfterSlash  = regexp.MustCompile(`\d{4}\s*/\s*([\x{0600}-\x{06FF}\s]+)`)
	reSenderAfterBrack  = regexp.MustCompile(`\]\s*([\x{0600}-\x{06FF}\s]+)`)
	reSenderTransfer    = regexp.MustCompile(`حواله\s*به:\s*\d*\s*([\x{0600}-\x{06FF}\s]+)`)
	reSenderBeforeXfer  = regexp.MustCompile(`\|\s*([^|]+?)\s*\(حواله\s*به:`)
	reTrailNonPersian   = regexp.MustCompile(`[^\x{0600}-\x{06FF}\s]+$`)
	reNonPersian        = regexp.MustCompile(`[^\x{0600}-\x{06FF}\s]+`)
)

// resolveSender applies the sender patterns in priority order. Input must be
// digit-normalized: the patterns use ASCII \d, so Persian digits have to be
// folded for a name/code pair like "خدمتی/۲۴۵۲" to resolve.
func resolveSender(desc string) string {
	if m := reSenderBeforeSlash.FindStringSubmatch(desc); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := reSenderAfterSlash.FindStringSubmatch(desc); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := reSenderAfterBrack.FindStringSubmatch(desc); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := reSenderTransfer.FindStringSubmatch(desc); m != nil {
		recipient := strings.TrimSpace(reTrailNonPersian.ReplaceAllString(strings.TrimSpace(m[1]), ""))
		// A wire row may also carry the payer before the "(حواله به:" marker;
		// keep both when present.
		if b := reSenderBeforeXfer.FindStringSubmatch(desc); b != nil {
			payer := strings.TrimSpace(reNonPersian.ReplaceAllString(b[1], ""))
			if payer != "" {
				return payer + " " + recipient
			}
		}
		return recipient
	}
	return ""
}

// =============================================================================
// ANNOTATOR
// =============================================================================

// AnnotateDescription runs every code rule against the digit-normalized
// description, unions the results, resolves the sender, and subtracts the
// account-holder code set. The returned code list is sorted and unique.
func AnnotateDescription(desc string, owner *OwnerCodes) ([]string, string) {
	if desc == "" {
		return nil, ""
	}

	norm := textnorm.Digits(desc)

	set := make(map[string]struct{})
	for _, rule := range codeRules {
		for _, c := range rule.Extract(norm) {
			set[c] = struct{}{}
		}
	}

	sender := resolveSender(norm)

	codes := make([]string, 0, len(set))
	for c := range set {
		if owner != nil && owner.Contains(c) {
			continue
		}
		codes = append(codes, c)
	}
	sort.Strings(codes)
	if len(codes) == 0 {
		codes = nil
	}
	return codes, sender
}
