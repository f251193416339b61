// =============================================================================
// Receipt Checker - Shared Types
// =============================================================================
//
// This package contains the record types shared across the parsing and
// matching modules to avoid import cycles. Types defined here are used by:
//   - ledger    (PDF/HTML account-statement parsing)
//   - bankstmt  (bank spreadsheet parsing)
//   - matcher   (tiered reconciliation)
//   - reconcile (pipeline), server, cmd
//
// All records are fixed-shape structs with every optional field modeled
// explicitly.
//
// =============================================================================

package types

import "github.com/shopspring/decimal"

// =============================================================================
// DIRECTION TAGS
// =============================================================================

// Ledger document types, as printed by the accounting system.
const (
	DocTypeCredit = "بستانکار" // money received
	DocTypeDebit  = "بدهکار"   // money paid out
)

// Bank transaction directions.
const (
	TxDeposit    = "deposit"
	TxWithdrawal = "withdrawal"
	TxUnknown    = "unknown"
)

// Match result statuses. Exactly one of these is set on every MatchResult.
const (
	StatusExact     = "exact"
	StatusReview    = "review"
	StatusDuplicate = "duplicate"
	StatusNotFound  = "not_found"
)

// =============================================================================
// LEDGER ROW
// =============================================================================

// LedgerRow is one transaction line recovered from the accounting-system
// export (PDF or HTML). It is created once by the owning parser and is
// immutable afterwards, with one exception: the owner-code filter scrubs
// Codes retroactively after the whole document has been extracted.
type LedgerRow struct {
	// Page is the 1-based page the row was assembled from (always 1 for HTML).
	Page int `json:"page"`

	// Date is a best-effort Solar Hijri date string; may be empty because the
	// statement renderer garbles date glyphs.
	Date string `json:"date"`

	// DocNum is the accounting document number; may be empty.
	DocNum string `json:"doc_num"`

	// Desc is the assembled description line, truncated to 200 runes.
	Desc string `json:"desc"`

	Credit decimal.Decimal `json:"credit"`
	Debit  decimal.Decimal `json:"debit"`

	// CreditRaw/DebitRaw keep the cell text the amounts were parsed from.
	CreditRaw string `json:"credit_raw"`
	DebitRaw  string `json:"debit_raw"`

	// Codes are the tracking codes extracted from Desc, sorted and unique.
	Codes []string `json:"codes"`

	// Sender is the counterparty name extracted from Desc; may be empty.
	Sender string `json:"sender"`

	// DocType is DocTypeCredit or DocTypeDebit.
	DocType string `json:"doc_type"`

	// Amount is the resolved amount: Credit when Credit > 0, else Debit.
	// Always non-negative.
	Amount decimal.Decimal `json:"amount"`
}

// =============================================================================
// BANK TRANSACTION
// =============================================================================

// BankTransaction is one parsed row of the bank-issued spreadsheet, the
// reconciliation ground truth. Immutable once created.
type BankTransaction struct {
	// RowNum is the 1-based position of the row in the source grid. It is the
	// join key consumed by the highlighting write-back and must never be
	// recomputed or reordered.
	RowNum int `json:"row_num"`

	// Ref is the reference cell verbatim.
	Ref string `json:"ref"`

	// Primary is the primary derived code: the digits preceding the bank's
	// Latin-letter suffix when present (e.g. "2337" from "2337GPPC"),
	// otherwise the full digit run of Ref.
	Primary string `json:"last4"`

	// AllCodes is every digit-sequence code found in the row, sorted.
	AllCodes []string `json:"all_codes"`

	Amount decimal.Decimal `json:"amount"`

	// TxType is TxDeposit, TxWithdrawal or TxUnknown.
	TxType string `json:"tx_type"`

	Date   string `json:"date"`
	Desc   string `json:"desc"`
	Sender string `json:"sender"`

	// Raw is the full row text, cells joined with " | ".
	Raw string `json:"raw"`

	// IsLocked is set when any cell carries the reconciliation marker from a
	// prior pass; LockText preserves that cell verbatim so re-highlighting
	// does not lose it.
	IsLocked bool   `json:"is_locked"`
	LockText string `json:"lock_text"`
}

// =============================================================================
// MATCH RESULT
// =============================================================================

// MatchResult is the per-ledger-row outcome of the matching engine. JSON
// field names mirror the analyze API contract.
type MatchResult struct {
	// Index is the 1-based sequence number of the result.
	Index int `json:"idx"`

	Date    string `json:"date"`
	DocNum  string `json:"doc_num"`
	DocType string `json:"doc_type"`

	// Amount is the resolved ledger amount truncated to an integer.
	Amount int64 `json:"amount"`

	// Codes is the row's code set joined with ", ".
	Codes  string `json:"codes"`
	Sender string `json:"sender"`
	Desc   string `json:"desc"`

	Found bool `json:"found"`

	// Status is exactly one of StatusExact, StatusReview, StatusDuplicate,
	// StatusNotFound. A locked bank transaction always yields
	// StatusDuplicate regardless of the tier that matched it.
	Status string `json:"status"`

	// MatchMethod is the human-readable explanation of the match.
	MatchMethod string `json:"match_method"`

	// Matched bank transaction identity; zero values when unmatched.
	BankRef  string `json:"bank_ref"`
	BankDate string `json:"bank_date"`
	BankRow  int    `json:"bank_row"`
}

// =============================================================================
// MATCH OPTIONS & SUMMARY
// =============================================================================

// MatchOptions controls the matching engine.
type MatchOptions struct {
	// CreditOnly drops ledger rows without a positive credit before matching.
	CreditOnly bool

	// UseTracking enables Tier 1 (tracking-code lookup).
	UseTracking bool

	// UseName enables Tier 2 (sender name + amount).
	UseName bool

	// UseAmount gates Tier 2's amount-tolerance check. Amount agreement is
	// what makes a bare name match safe, so disabling it disables Tier 2
	// entirely; there is deliberately no amount-only tier.
	UseAmount bool

	// TxTypeFilter restricts the bank side to one direction: "all",
	// TxDeposit or TxWithdrawal. Transactions of unknown direction are kept
	// unconditionally.
	TxTypeFilter string
}

// DefaultMatchOptions mirrors the analyze API defaults.
func DefaultMatchOptions() MatchOptions {
	return MatchOptions{
		CreditOnly:   true,
		UseTracking:  true,
		UseName:      true,
		UseAmount:    true,
		TxTypeFilter: "all",
	}
}

// Summary carries the counts presented alongside the per-row results.
type Summary struct {
	Total       int `json:"total"`
	Found       int `json:"found"`
	Review      int `json:"review"`
	Duplicate   int `json:"duplicate"`
	NotFound    int `json:"not_found"`
	BankTotal   int `json:"bank_total"`
	LedgerTotal int `json:"pdf_total"`
}

// Summarize tallies results into a Summary.
func Summarize(results []MatchResult, ledgerRows, bankRows int) Summary {
	s := Summary{
		Total:       len(results),
		BankTotal:   bankRows,
		LedgerTotal: ledgerRows,
	}
	for _, r := range results {
		switch r.Status {
		case StatusExact:
			s.Found++
		case StatusReview:
			s.Review++
		case StatusDuplicate:
			s.Duplicate++
		}
	}
	s.NotFound = s.Total - s.Found - s.Review - s.Duplicate
	return s
}
