// =============================================================================
// Receipt Checker - Reconciliation Pipeline
// =============================================================================
//
// End-to-end orchestration shared by the CLI and the HTTP server: parse the
// ledger export (PDF or HTML, chosen by file name), parse the bank
// spreadsheet, run the matching engine, and derive the lock plan for the
// highlighting write-back.
//
// One invocation is fully self-contained — parsers and the matcher build
// all their state per call — so concurrent requests share nothing mutable.
//
// =============================================================================

package reconcile

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/checkhesab/receipt-checker/internal/bankstmt"
	"github.com/checkhesab/receipt-checker/internal/ledger"
	"github.com/checkhesab/receipt-checker/internal/matcher"
	"github.com/checkhesab/receipt-checker/internal/types"
)

// Outcome is the full result of one reconciliation run.
type Outcome struct {
	Results    []types.MatchResult
	Summary    types.Summary
	LedgerRows []types.LedgerRow
	BankTxns   []types.BankTransaction

	// BankGrid is the raw spreadsheet grid, kept for the write-back.
	BankGrid [][]string
}

// Run executes one reconciliation over in-memory uploads.
func Run(ledgerData []byte, ledgerName string, bankData []byte, bankName string, opts types.MatchOptions) (*Outcome, error) {
	rows, err := parseLedger(ledgerData, ledgerName)
	if err != nil {
		return nil, fmt.Errorf("ledger parse failed: %w", err)
	}

	grid, err := bankstmt.LoadGrid(bankData, bankName)
	if err != nil {
		return nil, fmt.Errorf("bank statement parse failed: %w", err)
	}
	txns := bankstmt.ParseGrid(grid)

	results := matcher.Match(rows, txns, opts)
	summary := types.Summarize(results, len(rows), len(txns))

	log.Info().
		Int("exact", summary.Found).
		Int("review", summary.Review).
		Int("duplicate", summary.Duplicate).
		Int("not_found", summary.NotFound).
		Msg("reconciliation finished")

	return &Outcome{
		Results:    results,
		Summary:    summary,
		LedgerRows: rows,
		BankTxns:   txns,
		BankGrid:   grid,
	}, nil
}

// parseLedger picks the ledger parser from the file name: .html/.htm go to
// the table parser, everything else is treated as the statement PDF.
func parseLedger(data []byte, name string) ([]types.LedgerRow, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm":
		return ledger.ParseHTML(data)
	default:
		return ledger.ParsePDF(data)
	}
}

// LockPlan derives the write-back plan from an outcome: every newly matched
// row (exact or review) gets the fresh marker naming the ledger file, and
// every previously locked row keeps its original marker text so earlier
// passes stay visible.
func (o *Outcome) LockPlan(ledgerName string) bankstmt.LockPlan {
	base := strings.TrimSuffix(filepath.Base(ledgerName), filepath.Ext(ledgerName))
	if base == "" {
		base = "ناشناس"
	}
	newMarker := fmt.Sprintf("%s - %s", bankstmt.LockMarker, base)

	plan := make(bankstmt.LockPlan)
	for _, r := range o.Results {
		if r.BankRow == 0 {
			continue
		}
		if r.Status == types.StatusExact || r.Status == types.StatusReview {
			plan[r.BankRow] = newMarker
		}
	}
	for _, tx := range o.BankTxns {
		if !tx.IsLocked || tx.RowNum == 0 {
			continue
		}
		if tx.LockText != "" {
			plan[tx.RowNum] = tx.LockText
		} else if _, ok := plan[tx.RowNum]; !ok {
			plan[tx.RowNum] = newMarker
		}
	}
	return plan
}
