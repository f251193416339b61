// =============================================================================
// Receipt Checker - Reconcile Command
// =============================================================================
//
// One-shot reconciliation from the command line:
//
//   receipt-checker reconcile --ledger statement.pdf --bank melli.xls
//
// FLAGS:
//   --ledger       : path to the accounting export (PDF or HTML)
//   --bank         : path to the bank spreadsheet (.xlsx/.xls/.csv)
//   --deposits     : restrict the bank side to deposits
//   --withdrawals  : restrict the bank side to withdrawals
//   --no-lock      : skip the highlighted workbook write-back
//
// PIPELINE:
//   1. Load configuration
//   2. Parse both uploads and run the matching engine
//   3. Print the summary, write the JSON report
//   4. Write the highlighted workbook copy (unless --no-lock)
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/checkhesab/receipt-checker/internal/bankstmt"
	"github.com/checkhesab/receipt-checker/internal/reconcile"
	"github.com/checkhesab/receipt-checker/internal/types"
	"github.com/checkhesab/receipt-checker/pkg/utils"
)

var (
	ledgerPath      string
	bankPath        string
	depositsOnly    bool
	withdrawalsOnly bool
	noLock          bool
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile a ledger export against a bank spreadsheet",
	Long: `The reconcile command parses the accounting export and the bank
spreadsheet, matches every ledger row to at most one bank transaction, and
prints the result summary. A JSON report and a highlighted copy of the bank
spreadsheet are written to the configured output directory.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runReconcile()
	},
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	reconcileCmd.Flags().StringVar(&ledgerPath, "ledger", "", "Path to the accounting export (PDF or HTML)")
	reconcileCmd.Flags().StringVar(&bankPath, "bank", "", "Path to the bank spreadsheet (.xlsx/.xls/.csv)")
	reconcileCmd.Flags().BoolVar(&depositsOnly, "deposits", false, "Restrict the bank side to deposits")
	reconcileCmd.Flags().BoolVar(&withdrawalsOnly, "withdrawals", false, "Restrict the bank side to withdrawals")
	reconcileCmd.Flags().BoolVar(&noLock, "no-lock", false, "Skip the highlighted workbook write-back")

	reconcileCmd.MarkFlagRequired("ledger")
	reconcileCmd.MarkFlagRequired("bank")
}

func runReconcile() error {
	start := time.Now()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	opts := cfg.MatchOptions()
	switch {
	case depositsOnly && withdrawalsOnly:
		return fmt.Errorf("--deposits and --withdrawals are mutually exclusive")
	case depositsOnly:
		opts.TxTypeFilter = types.TxDeposit
	case withdrawalsOnly:
		opts.TxTypeFilter = types.TxWithdrawal
	}

	ledgerData, err := os.ReadFile(ledgerPath)
	if err != nil {
		return fmt.Errorf("failed to read ledger file: %w", err)
	}
	bankData, err := os.ReadFile(bankPath)
	if err != nil {
		return fmt.Errorf("failed to read bank file: %w", err)
	}

	outcome, err := reconcile.Run(ledgerData, ledgerPath, bankData, bankPath, opts)
	if err != nil {
		return err
	}

	if err := utils.EnsureDir(cfg.Locking.OutputDir); err != nil {
		return err
	}

	base := strings.TrimSuffix(filepath.Base(ledgerPath), filepath.Ext(ledgerPath))
	reportPath := filepath.Join(cfg.Locking.OutputDir, utils.UniqueName(base, ".json"))
	if err := utils.WriteJSON(reportPath, outcome.Results); err != nil {
		return err
	}

	if !noLock && cfg.Locking.Enabled {
		plan := outcome.LockPlan(ledgerPath)
		if len(plan) > 0 {
			lockedPath := filepath.Join(cfg.Locking.OutputDir, utils.WorkbookName(bankPath))
			if err := bankstmt.WriteLockedWorkbook(outcome.BankGrid, plan, cfg.Locking.LockColumn, lockedPath); err != nil {
				// report is already on disk; the write-back is best-effort
				fmt.Fprintf(os.Stderr, "warning: locked workbook not written: %v\n", err)
			} else {
				fmt.Printf("Locked workbook:  %s\n", lockedPath)
			}
		}
	}

	s := outcome.Summary
	fmt.Println("\n=== Reconciliation Complete ===")
	fmt.Printf("Ledger rows:      %d\n", s.LedgerTotal)
	fmt.Printf("Bank rows:        %d\n", s.BankTotal)
	fmt.Printf("Matched exact:    %d\n", s.Found)
	fmt.Printf("Needs review:     %d\n", s.Review)
	fmt.Printf("Duplicates:       %d\n", s.Duplicate)
	fmt.Printf("Not found:        %d\n", s.NotFound)
	fmt.Printf("Report:           %s\n", reportPath)
	fmt.Printf("Time elapsed:     %s\n", time.Since(start))

	return nil
}
