// =============================================================================
// Receipt Checker - Bank Statement Parser
// =============================================================================
//
// Every bank formats its statement spreadsheet differently, so the parser
// infers the column layout instead of assuming one:
//
//   1. Header detection: the first 20 grid rows are scanned; each cell is
//      tested against six keyword categories (credit, debit, generic amount,
//      date, description, reference). A category claims at most one column,
//      first hit wins. The first row scoring at least three category hits
//      becomes the header row.
//   2. Per-row extraction resolves amount and direction by priority —
//      explicit credit column, explicit debit column, then a generic amount
//      column disambiguated by deposit/withdrawal vocabulary in the
//      description.
//   3. When no header is found at all, a degraded scan picks the longest
//      long digit run as the reference and the largest big number as the
//      amount, per row.
//
// Rows already matched in a prior reconciliation pass carry the «تطبیق شده»
// marker in some cell; they are flagged locked and their marker text is
// preserved verbatim so the write-back does not lose it.
//
// row_num is the 1-based position of the row in the source grid. It is the
// join key for the highlighting collaborator and is never recomputed.
//
// =============================================================================

package bankstmt

import (
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/checkhesab/receipt-checker/internal/textnorm"
	"github.com/checkhesab/receipt-checker/internal/types"
)

// headerScanRows bounds the header search; real statements put the header in
// the first few rows, after logo and account-info banners.
const headerScanRows = 20

// minHeaderHits is the category-hit score a row needs to be accepted as the
// header row.
const minHeaderHits = 3

// LockMarker is the literal phrase a prior reconciliation pass writes into a
// row it has matched.
const LockMarker = "تطبیق شده"

// headerCategory pairs a column role with the header keywords that identify
// it, across the bank layouts seen in production (Melli uses واریز for the
// amount column and شماره سند for the reference).
type headerCategory struct {
	key string
	re  *regexp.Regexp
}

var headerCategories = []headerCategory{
	{"credit", regexp.MustCompile(`(?i)بستانکار|واریز|credit|دریافتی`)},
	{"debit", regexp.MustCompile(`(?i)بدهکار|برداشت|debit|پرداختی`)},
	{"amount", regexp.MustCompile(`(?i)مبلغ|amount`)},
	{"date", regexp.MustCompile(`(?i)تاریخ|date`)},
	{"desc", regexp.MustCompile(`(?i)شرح|توضیح|description|بابت|نوع`)},
	{"ref", regexp.MustCompile(`(?i)شماره\s*سند|مرجع|پیگیری|reference|شناسه|ارجاع|trace`)},
}

var (
	reRefSuffixCode = regexp.MustCompile(`(\d{4,})[A-Za-z]`)
	reLongDigitRun = regexp.MustCompile(`\d{10,}`)
	// \b is ASCII-aware: a code glued to Persian letters still matches
	reShortCode = regexp.MustCompile(`\b(\d{4,8})\b`)
	// description sender: trailing run of hyphen/space joined non-digit
	// tokens, each at least three runes (Melli writes
	// "-0412060171037205-ملي-حسن-زارع نريماني")
	reDescSender = regexp.MustCompile(`[-\s]([^-\s\d]{3,}(?:[\s-][^-\s\d]{3,})*)$`)

	reDepositKw    = regexp.MustCompile(`واریز|بستانکار|دریافت|اعتبار`)
	reWithdrawalKw = regexp.MustCompile(`برداشت|بدهکار|پرداخت|خرید`)

	// no-header fallback patterns
	reFallbackRef       = regexp.MustCompile(`\b(\d{10,24})\b`)
	reFallbackAmount    = regexp.MustCompile(`\b(\d{6,})\b`)
	reFallbackSender    = regexp.MustCompile(`[\x{0600}-\x{06FF}]{4,}(?:\s[\x{0600}-\x{06FF}]{3,})*`)
	reFallbackDeposit   = regexp.MustCompile(`واریز|بستانکار|دریافت`)
	reFallbackWithdraw  = regexp.MustCompile(`برداشت|بدهکار|پرداخت`)
	fallbackAmountFloor = decimal.NewFromInt(10000)
)

// ParseGrid turns the raw grid into normalized bank transactions.
func ParseGrid(grid [][]string) []types.BankTransaction {
	headerIdx, colMap := detectHeader(grid)
	if headerIdx < 0 {
		log.Warn().Msg("no header row found, falling back to per-row auto-detection")
		return parseWithoutHeader(grid)
	}
	log.Info().Int("row", headerIdx).Interface("columns", colMap).Msg("bank statement header detected")
	return parseWithHeader(grid, headerIdx, colMap)
}

// detectHeader scans the top of the grid for a row naming enough statement
// columns. Returns -1 when none qualifies.
func detectHeader(grid [][]string) (int, map[string]int) {
	limit := len(grid)
	if limit > headerScanRows {
		limit = headerScanRows
	}
	for ri := 0; ri < limit; ri++ {
		hits := 0
		tmp := make(map[string]int)
		for ci, cell := range grid[ri] {
			c := textnorm.Clean(cell)
			for _, cat := range headerCategories {
				if _, claimed := tmp[cat.key]; claimed {
					continue
				}
				if cat.re.MatchString(c) {
					tmp[cat.key] = ci
					hits++
					break
				}
			}
		}
		if hits >= minHeaderHits {
			return ri, tmp
		}
	}
	return -1, nil
}

// parseWithHeader extracts one transaction per data row below the header.
func parseWithHeader(grid [][]string, headerIdx int, colMap map[string]int) []types.BankTransaction {
	var txns []types.BankTransaction

	for ri := headerIdx + 1; ri < len(grid); ri++ {
		row := grid[ri]
		get := func(key string) string {
			ci, ok := colMap[key]
			if !ok || ci >= len(row) {
				return ""
			}
			return textnorm.Clean(row[ci])
		}

		ref := get("ref")
		date := get("date")
		desc := get("desc")

		sender := desc
		if m := reDescSender.FindStringSubmatch(desc); m != nil {
			sender = strings.TrimSpace(strings.ReplaceAll(m[1], "-", " "))
		}

		creditAmt := cellAmount(get("credit"))
		debitAmt := cellAmount(get("debit"))
		generalAmt := cellAmount(get("amount"))
		amtRaw := firstNonEmpty(get("amount"), get("credit"), get("debit"))

		amt := decimal.Zero
		txType := types.TxUnknown
		switch {
		case creditAmt.IsPositive():
			amt, txType = creditAmt, types.TxDeposit
		case debitAmt.IsPositive():
			amt, txType = debitAmt, types.TxWithdrawal
		case generalAmt.IsPositive():
			amt = generalAmt
			// a generic amount column carries both directions; the
			// description vocabulary decides
			if reDepositKw.MatchString(desc) {
				txType = types.TxDeposit
			} else if reWithdrawalKw.MatchString(desc) {
				txType = types.TxWithdrawal
			}
		}

		if ref == "" && amt.IsZero() && date == "" {
			continue
		}

		refDigits := textnorm.StripNonDigits(textnorm.Digits(ref))

		codes := make(map[string]struct{})
		if len(refDigits) >= 4 {
			codes[refDigits] = struct{}{}
		}
		// bank suffix convention: digits immediately before a Latin run,
		// e.g. "2337GPPC"
		for _, m := range reRefSuffixCode.FindAllStringSubmatch(ref, -1) {
			codes[m[1]] = struct{}{}
		}
		descN := textnorm.Digits(desc)
		for _, m := range reLongDigitRun.FindAllString(descN, -1) {
			codes[m] = struct{}{}
		}
		amtDigits := textnorm.Digits(amtRaw)
		for _, m := range reShortCode.FindAllStringSubmatch(descN, -1) {
			if m[1] != amtDigits {
				codes[m[1]] = struct{}{}
			}
		}

		primary := refDigits
		if m := reRefSuffixCode.FindStringSubmatch(ref); m != nil {
			primary = m[1]
		}

		raw, locked, lockText := rowMeta(row)

		txns = append(txns, types.BankTransaction{
			RowNum:   ri + 1,
			Ref:      ref,
			Primary:  primary,
			AllCodes: sortedKeys(codes),
			Amount:   amt,
			TxType:   txType,
			Date:     date,
			Desc:     desc,
			Sender:   sender,
			Raw:      raw,
			IsLocked: locked,
			LockText: lockText,
		})
	}

	log.Info().Int("transactions", len(txns)).Msg("bank statement parsed")
	return txns
}

// parseWithoutHeader is the degraded mode: every row is scanned for long
// digit runs (references) and large numbers (amounts).
func parseWithoutHeader(grid [][]string) []types.BankTransaction {
	var txns []types.BankTransaction

	for ri, row := range grid {
		joined := strings.Join(row, " ")
		joinedN := textnorm.Digits(joined)

		var ref string
		for _, m := range reFallbackRef.FindAllStringSubmatch(joinedN, -1) {
			if len(m[1]) > len(ref) {
				ref = m[1]
			}
		}

		amt := decimal.Zero
		for _, m := range reFallbackAmount.FindAllStringSubmatch(joinedN, -1) {
			if v, ok := textnorm.ToAmount(m[1]); ok && v.GreaterThan(fallbackAmountFloor) && v.GreaterThan(amt) {
				amt = v
			}
		}

		if ref == "" && amt.IsZero() {
			continue
		}

		sender := ""
		for _, m := range reFallbackSender.FindAllString(joined, -1) {
			if len([]rune(m)) > len([]rune(sender)) {
				sender = m
			}
		}

		txType := types.TxUnknown
		if reFallbackDeposit.MatchString(joinedN) {
			txType = types.TxDeposit
		} else if reFallbackWithdraw.MatchString(joinedN) {
			txType = types.TxWithdrawal
		}

		_, locked, lockText := rowMeta(row)

		primary := ref
		if len(ref) >= 4 {
			primary = ref[len(ref)-4:]
		}
		var allCodes []string
		if ref != "" {
			allCodes = []string{ref}
		}

		txns = append(txns, types.BankTransaction{
			RowNum:   ri + 1,
			Ref:      ref,
			Primary:  primary,
			AllCodes: allCodes,
			Amount:   amt,
			TxType:   txType,
			Desc:     truncateRunes(joined, 80),
			Sender:   sender,
			Raw:      truncateRunes(joined, 120),
			IsLocked: locked,
			LockText: lockText,
		})
	}

	log.Info().Int("transactions", len(txns)).Msg("bank statement parsed (no header)")
	return txns
}

// =============================================================================
// ROW HELPERS
// =============================================================================

// rowMeta joins the row's non-empty cells and detects the reconciliation
// lock marker.
func rowMeta(row []string) (raw string, locked bool, lockText string) {
	var parts []string
	for _, cell := range row {
		c := textnorm.Clean(cell)
		if c == "" {
			continue
		}
		parts = append(parts, c)
		if !locked && strings.Contains(cell, LockMarker) {
			locked = true
			lockText = c
		}
	}
	return strings.Join(parts, " | "), locked, lockText
}

func cellAmount(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	v, ok := textnorm.ToAmount(s)
	if !ok {
		return decimal.Zero
	}
	return v
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n]))
}
