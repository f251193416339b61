// =============================================================================
// Receipt Checker - Matching Engine
// =============================================================================
//
// Resolves each ledger row to at most one bank transaction through ordered
// tiers, first success wins:
//
//   Tier 1 (exact)  — tracking code lookup, full code preferred over its
//                     last-4 suffix, multiple candidates narrowed by a 10%
//                     amount tolerance.
//   Tier 2 (review) — normalized sender name plus a strict 5% amount
//                     tolerance; exact bucket first, then partial
//                     containment between names.
//   Tier 3          — deliberately absent. A pure amount fallback produced
//                     false positives from coincidental equal amounts.
//
// A locked bank transaction (matched in a prior pass) always reports as
// duplicate, whichever tier found it; within a candidate set a locked
// transaction is preferred so duplicates are flagged even when an unlocked
// twin exists.
//
// All indices are built per invocation; nothing is shared between requests.
//
// =============================================================================

package matcher

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/checkhesab/receipt-checker/internal/textnorm"
	"github.com/checkhesab/receipt-checker/internal/types"
)

// bankVocabulary recognizes banking-type ledger rows: transfer and
// deposit/withdrawal terms, instrument words, interbank networks
// (پایا/ساتنا/شبا), bank names after an opening bracket, cheque/receipt
// prefixes followed by a serial, and the Latin interbank tokens.
var bankVocabulary = regexp.MustCompile(`(?i)` +
	`واریز|برداشت|خروج|بانک|حواله|آبشده|انتقال|متفرقه|پایا|ساتنا|شبا|اینترنت` +
	`|دستور|دریافت|پرداخت|نقد|فیش|رمزدار|چک|صادرات|اي.ران زمین` +
	`|چ\s+\d{10}|پ\s+\d{10}|ش\s+\d{10}|س\s+\d{10}|د\s+\d{10}|ي\s+\d{10}` +
	`|\[\s*(?:صادرات|ملي|ملت|تجارت|سامان|پارسيان|پاسارگاد|رسالت|قرض|اي.ران)` +
	`|\bGPPC\b|\bDRPA\b|\bGPAC\b|\bIMPT\b|\bSPAC\b`)

// bareCode keeps rows that carry an isolated tracking-code-like number even
// without banking vocabulary. \b here is ASCII-aware, so a digit run flush
// against Persian letters also counts; that only widens the kept set.
var bareCode = regexp.MustCompile(`\b\d{4,}\b`)

// Relative amount tolerances. Tier 1 only disambiguates with the looser
// bound; Tier 2 requires the tighter one because the name alone is weak
// evidence. Comparisons are strict (<).
var (
	codeAmountTolerance = decimal.NewFromFloat(0.10)
	nameAmountTolerance = decimal.NewFromFloat(0.05)
)

const minSenderKeyLen = 3

// index holds the per-invocation lookup structures over the bank side.
type index struct {
	byCode   map[string][]*types.BankTransaction
	byAmount map[string][]*types.BankTransaction
	bySender map[string][]*types.BankTransaction

	// senderKeys is bySender's key set in sorted order; the partial-name
	// scan iterates it so identical inputs yield identical results.
	senderKeys []string
}

// Match resolves ledger rows against bank transactions and returns one
// result per surviving ledger row. It never fails for data reasons;
// "not_found" is a normal terminal outcome.
func Match(rows []types.LedgerRow, txns []types.BankTransaction, opts types.MatchOptions) []types.MatchResult {
	filtered := filterLedgerRows(rows, opts)
	log.Info().
		Int("ledger_rows", len(rows)).
		Int("banking_rows", len(filtered)).
		Int("bank_txns", len(txns)).
		Msg("matching started")

	idx := buildIndex(txns, opts)

	results := make([]types.MatchResult, 0, len(filtered))
	for _, row := range filtered {
		results = append(results, resolveRow(row, idx, opts, len(results)+1))
	}
	return results
}

// filterLedgerRows applies the credit-only option and drops rows judged
// non-banking: pure purchase/sale lines with neither banking vocabulary nor
// an isolated 4+ digit number.
func filterLedgerRows(rows []types.LedgerRow, opts types.MatchOptions) []types.LedgerRow {
	var out []types.LedgerRow
	for _, r := range rows {
		if opts.CreditOnly && !r.Credit.IsPositive() {
			continue
		}
		if !bankVocabulary.MatchString(r.Desc) && !bareCode.MatchString(textnorm.Digits(r.Desc)) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// buildIndex constructs the code, amount and sender indices, applying the
// transaction-direction filter. Transactions of unknown direction are kept
// unconditionally — the filter must never hide rows the parser could not
// classify.
func buildIndex(txns []types.BankTransaction, opts types.MatchOptions) *index {
	idx := &index{
		byCode:   make(map[string][]*types.BankTransaction),
		byAmount: make(map[string][]*types.BankTransaction),
		bySender: make(map[string][]*types.BankTransaction),
	}

	for i := range txns {
		tx := &txns[i]
		if opts.TxTypeFilter != "" && opts.TxTypeFilter != "all" &&
			tx.TxType != types.TxUnknown && tx.TxType != opts.TxTypeFilter {
			continue
		}

		codes := make(map[string]struct{}, len(tx.AllCodes)+1)
		for _, c := range tx.AllCodes {
			codes[c] = struct{}{}
		}
		if tx.Primary != "" {
			codes[tx.Primary] = struct{}{}
		}
		for c := range codes {
			idx.byCode[c] = append(idx.byCode[c], tx)
			if len(c) > 4 {
				suffix := c[len(c)-4:]
				idx.byCode[suffix] = append(idx.byCode[suffix], tx)
			}
		}

		if tx.Amount.IsPositive() {
			k := tx.Amount.Truncate(0).String()
			idx.byAmount[k] = append(idx.byAmount[k], tx)
		}

		for _, src := range []string{tx.Sender, tx.Desc} {
			k := textnorm.Normalize(src)
			if len([]rune(k)) >= minSenderKeyLen {
				idx.bySender[k] = append(idx.bySender[k], tx)
			}
		}
	}

	idx.senderKeys = make([]string, 0, len(idx.bySender))
	for k := range idx.bySender {
		idx.senderKeys = append(idx.senderKeys, k)
	}
	sort.Strings(idx.senderKeys)

	return idx
}

// =============================================================================
// PER-ROW RESOLUTION
// =============================================================================

func resolveRow(row types.LedgerRow, idx *index, opts types.MatchOptions, seq int) types.MatchResult {
	amount := row.Amount

	var matched *types.BankTransaction
	status := types.StatusNotFound
	method := ""

	if opts.UseTracking {
		matched, method, status = matchByCode(row.Codes, amount, idx)
	}

	// Tier 2 requires the row to have produced at least one tracking code:
	// receipts without any code are not matched on name alone. UseAmount
	// gates the tier because the amount check is what makes a name match
	// safe.
	if matched == nil && opts.UseName && opts.UseAmount &&
		row.Sender != "" && amount.IsPositive() && len(row.Codes) > 0 {
		matched, method, status = matchBySenderAmount(row.Sender, amount, idx)
	}

	// A locked transaction is a duplicate no matter how it was found.
	if matched != nil && matched.IsLocked {
		status = types.StatusDuplicate
		method = "تکراری (قبلاً تطبیق شده)"
	}

	res := types.MatchResult{
		Index:       seq,
		Date:        row.Date,
		DocNum:      row.DocNum,
		DocType:     row.DocType,
		Amount:      amount.IntPart(),
		Codes:       strings.Join(row.Codes, ", "),
		Sender:      row.Sender,
		Desc:        row.Desc,
		Found:       matched != nil,
		Status:      status,
		MatchMethod: method,
	}
	if matched != nil {
		res.BankRef = matched.Ref
		res.BankDate = matched.Date
		res.BankRow = matched.RowNum
	}
	return res
}

// matchByCode is Tier 1: for each extracted code try the full code, then its
// last-4 suffix, against the code index; the first code yielding any
// candidate decides.
func matchByCode(codes []string, amount decimal.Decimal, idx *index) (*types.BankTransaction, string, string) {
	for _, code := range codes {
		if len(code) < 4 {
			continue
		}

		lookups := []string{code}
		if len(code) > 4 {
			lookups = append(lookups, code[len(code)-4:])
		}

		for _, key := range lookups {
			cands := idx.byCode[key]
			if len(cands) == 0 {
				continue
			}
			if len(cands) == 1 {
				return cands[0], fmt.Sprintf("کد: %s", key), types.StatusExact
			}

			// Narrow by amount; an empty narrowing keeps the full set so a
			// row with no usable amount still matches something.
			working := withinTolerance(cands, amount, codeAmountTolerance)
			if len(working) == 0 {
				working = cands
			}
			if locked := firstLocked(working); locked != nil {
				return locked, fmt.Sprintf("کد %s + مبلغ (تکراری)", key), types.StatusExact
			}
			return working[0], fmt.Sprintf("کد %s (چندگانه)", key), types.StatusExact
		}
	}
	return nil, "", types.StatusNotFound
}

// matchBySenderAmount is Tier 2: exact normalized-name bucket first, then
// partial containment across all sender keys, both under the strict 5%
// amount tolerance.
func matchBySenderAmount(sender string, amount decimal.Decimal, idx *index) (*types.BankTransaction, string, string) {
	skey := textnorm.Normalize(sender)

	if cands := withinTolerance(idx.bySender[skey], amount, nameAmountTolerance); len(cands) > 0 {
		if locked := firstLocked(cands); locked != nil {
			return locked, "نام مشابه + مبلغ یکسان", types.StatusReview
		}
		return cands[0], "نام مشابه + مبلغ یکسان", types.StatusReview
	}

	if len([]rune(skey)) >= minSenderKeyLen {
		for _, k := range idx.senderKeys {
			if !strings.Contains(k, skey) && !strings.Contains(skey, k) {
				continue
			}
			cands := withinTolerance(idx.bySender[k], amount, nameAmountTolerance)
			if len(cands) == 0 {
				continue
			}
			if locked := firstLocked(cands); locked != nil {
				return locked, "نام جزئی مشابه + مبلغ یکسان", types.StatusReview
			}
			return cands[0], "نام جزئی مشابه + مبلغ یکسان", types.StatusReview
		}
	}

	return nil, "", types.StatusNotFound
}

// withinTolerance keeps candidates whose amount differs from amount by
// strictly less than the given relative tolerance. Rows or candidates
// without an amount never qualify.
func withinTolerance(cands []*types.BankTransaction, amount decimal.Decimal, tol decimal.Decimal) []*types.BankTransaction {
	if !amount.IsPositive() {
		return nil
	}
	bound := amount.Mul(tol)
	var out []*types.BankTransaction
	for _, c := range cands {
		if !c.Amount.IsPositive() {
			continue
		}
		if c.Amount.Sub(amount).Abs().LessThan(bound) {
			out = append(out, c)
		}
	}
	return out
}

func firstLocked(cands []*types.BankTransaction) *types.BankTransaction {
	for _, c := range cands {
		if c.IsLocked {
			return c
		}
	}
	return nil
}
