package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sakya146/termscan/internal/config"
	"github.com/sakya146/termscan/internal/log"
)

// NewSuppressCmd creates the suppress command.
func NewSuppressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suppress <host>",
		Short: "Turn detection notices on or off for a host",
		Long: `Suppress marks a host so that detecting its legal documents no longer
produces a notice. Scans still run on request; only the banner is
silenced. Use --undo to re-enable notices.

Suppression does not reset the once-per-host notice: a host whose notice
was already shown stays seen after --undo.

Examples:
  # Silence notices for a host
  termscan suppress shop.example.com

  # Re-enable notices
  termscan suppress --undo shop.example.com`,
		Args: cobra.ExactArgs(1),
		RunE: runSuppressCmd,
	}

	cmd.Flags().Bool("undo", false, "Re-enable notices for the host")

	return cmd
}

// runSuppressCmd executes the suppress command.
func runSuppressCmd(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)
	logger := log.NewSecureLogger(os.Stderr, verbose)
	slog.SetDefault(logger)

	undo, err := cmd.Flags().GetBool("undo")
	if err != nil {
		return err
	}

	cfg := config.NewConfig()
	cfg.DBDir = config.XDGDataDir()

	st := openStore(cfg, logger)
	defer func() {
		if err := st.Close(); err != nil {
			logger.Warn("failed to close store", "error", err)
		}
	}()

	host := args[0]
	ctx := cmd.Context()

	if undo {
		st.Unsuppress(ctx, host)
		fmt.Printf("Notices re-enabled for %s\n", host)
		return nil
	}

	st.Suppress(ctx, host)
	fmt.Printf("Notices suppressed for %s\n", host)
	return nil
}
