// =============================================================================
// Receipt Checker - Version Command
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the application version, overridable at build time with
// -ldflags "-X github.com/checkhesab/receipt-checker/cmd.Version=...".
var Version = "1.2.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the application version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("receipt-checker %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
