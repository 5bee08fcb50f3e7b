package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for termscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "termscan",
		Short: "Legal document scanner for web pages",
		Long: `Termscan finds the Terms & Conditions and Privacy Policy links on a web
page, sends the documents to a remote analysis service, and reports the
legal risk it finds: hidden fees, data sharing, strict cancellation terms.

Detection works without credentials. To run the remote analysis, provide
an API key and analyzer ID via the config file or the TERMSCAN_API_KEY
and TERMSCAN_ANALYZER_ID environment variables.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewWatchCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewSuppressCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
