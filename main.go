// =============================================================================
// Receipt Checker - Main Entry Point
// =============================================================================
//
// USAGE:
//   receipt-checker reconcile  - One-shot reconciliation of two files
//   receipt-checker serve      - Run the analyze HTTP API
//   receipt-checker version    - Display the application version
//
// ARCHITECTURE:
//   cmd/       : CLI command definitions (Cobra)
//   internal/  : core business logic (parsing, matching, pipeline, server)
//   pkg/       : shared utilities
//
// =============================================================================

package main

import (
	"github.com/checkhesab/receipt-checker/cmd"
)

func main() {
	cmd.Execute()
}
