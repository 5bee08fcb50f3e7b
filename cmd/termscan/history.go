package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sakya146/termscan/internal/analysis"
	"github.com/sakya146/termscan/internal/config"
	"github.com/sakya146/termscan/internal/log"
	"github.com/sakya146/termscan/internal/model"
	"github.com/sakya146/termscan/internal/report"
	"github.com/sakya146/termscan/internal/store"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [host]",
		Short: "Show stored detection and scan state",
		Long: `History lists every host termscan has seen, with its detection and
scan status. Given a host, it renders the stored scan report for that
host.

Stored reports keep the raw service payloads; they are re-normalized at
display time, so old reports stay readable.

Examples:
  # List all known hosts
  termscan history

  # Show the stored report for one host
  termscan history shop.example.com

  # Stored report as JSON
  termscan history --json shop.example.com`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("json", "j", false, "Output JSON")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)
	logger := log.NewSecureLogger(os.Stderr, verbose)
	slog.SetDefault(logger)

	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	cfg := config.NewConfig()
	cfg.Verbose = verbose
	cfg.DBDir = config.XDGDataDir()

	st := openStore(cfg, logger)
	defer func() {
		if err := st.Close(); err != nil {
			logger.Warn("failed to close store", "error", err)
		}
	}()

	ctx := context.Background()

	if len(args) == 0 {
		return listHosts(ctx, st, asJSON)
	}
	return showHostReport(ctx, st, args[0], asJSON)
}

// listHosts prints a summary line per known host.
func listHosts(ctx context.Context, st *store.Store, asJSON bool) error {
	hosts := st.Hosts(ctx)
	if len(hosts) == 0 {
		fmt.Println("No hosts recorded yet. Run 'termscan scan <url>' first.")
		return nil
	}

	if asJSON {
		states := make(map[string]*model.HostState, len(hosts))
		for _, host := range hosts {
			if state, ok := st.Host(ctx, host); ok {
				states[host] = state
			}
		}
		return printJSON(states)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "HOST\tDETECTED\tRISK\tLAST SCAN\tSUPPRESSED")
	for _, host := range hosts {
		state, ok := st.Host(ctx, host)
		if !ok {
			continue
		}

		detected := "-"
		if !state.Detected.Empty() {
			detected = joinLabels(state.Detected)
		}
		risk := "-"
		lastScan := "never"
		if state.LastScan != nil {
			risk = report.DisplayRisk(state.LastScan.OverallRisk)
			lastScan = state.LastScan.UpdatedAt.Format("2006-01-02 15:04")
		}
		suppressed := ""
		if state.Suppressed {
			suppressed = "yes"
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", host, detected, risk, lastScan, suppressed)
	}
	return tw.Flush()
}

// joinLabels renders which document kinds were detected for a host.
func joinLabels(detection model.DetectionResult) string {
	labels := detection.Labels()
	switch len(labels) {
	case 0:
		return "-"
	case 1:
		return labels[0]
	default:
		return "both"
	}
}

// showHostReport renders the stored report for a single host.
func showHostReport(ctx context.Context, st *store.Store, host string, asJSON bool) error {
	state, ok := st.Host(ctx, host)
	if !ok {
		return fmt.Errorf("unknown host %q", host)
	}
	if state.Report == nil {
		fmt.Printf("Host %s has no stored scan report.\n", host)
		if !state.Detected.Empty() {
			fmt.Println("Detected links:")
			for _, t := range state.Detected.Targets() {
				fmt.Printf("  %-20s %s\n", t.Label+":", t.URL)
			}
		}
		return nil
	}

	scanReport := reportFromState(host, state)

	var writer report.Writer
	if asJSON {
		writer = report.NewJSONWriter(os.Stdout, report.WithPrettyPrint())
	} else {
		writer = report.NewSimpleWriter(os.Stdout, report.WithVerbose(true))
	}
	_, err := writer.Write(scanReport)
	return err
}

// reportFromState reconstructs a renderable scan report from stored state.
func reportFromState(host string, state *model.HostState) *model.ScanReport {
	scanReport := &model.ScanReport{
		Host:        host,
		DateScanned: state.Report.UpdatedAt,
		Detection:   state.Detected,
		Results:     state.Report.Results,
		Snapshots:   state.Report.Snapshots,
		Overall:     model.RiskUnknown,
	}
	if state.LastScan != nil {
		scanReport.URL = state.LastScan.URL
		scanReport.Overall = state.LastScan.OverallRisk
	}

	for _, result := range state.Report.Results {
		doc := analysis.Normalize(result.Label, result.Data)
		scanReport.Documents = append(scanReport.Documents, doc)
	}
	if len(scanReport.Documents) > 0 && scanReport.Overall == model.RiskUnknown {
		scanReport.Overall = model.AggregateRisk(scanReport.DocumentRisks())
	}

	return scanReport
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
