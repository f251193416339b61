// =============================================================================
// Receipt Checker - Serve Command
// =============================================================================
//
// Runs the analyze HTTP API until interrupted. Shutdown drains in-flight
// reconciliations before exiting.
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/checkhesab/receipt-checker/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the analyze HTTP API",
	Long: `The serve command starts the HTTP server that accepts statement uploads
on POST /analyze and returns the reconciliation results as JSON. Each
request is processed independently with no shared mutable state.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	srv := server.New(cfg)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
