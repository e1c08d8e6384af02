// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paperdash/internal/claimstore"
	"github.com/pdiddy/paperdash/pkg/types"
)

var claimsCmd = &cobra.Command{
	Use:   "claims",
	Short: "Work with extracted claims (list, pull, query, export)",
	Long: `Claims reads a paper's extracted claims from the backend and manages a
local SQLite snapshot of them. "list" always asks the backend; "pull"
copies claims into the snapshot; "query" and "export" read the snapshot
offline. The snapshot is never consulted by any other command.`,
}

// --- list subcommand ---

var claimsListCmd = &cobra.Command{
	Use:   "list [paper-id]",
	Short: "List a paper's extracted claims from the backend",
	Args:  cobra.ExactArgs(1),
	RunE:  runClaimsList,
}

func runClaimsList(cmd *cobra.Command, args []string) error {
	svc, err := newPaperService(cmd)
	if err != nil {
		return err
	}

	claims, err := svc.Claims(context.Background(), args[0])
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(claims)
	}

	if len(claims) == 0 {
		fmt.Println("No claims extracted.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-16s  %10s  %-16s  %-10s  %5s\n",
		"Metric", "Value", "Dataset", "Split", "Conf")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 65))

	for _, c := range claims {
		fmt.Fprintf(os.Stdout, "%-16s  %10s  %-16s  %-10s  %5.2f\n",
			c.MetricName, formatValue(c.MetricValue, c.Units), c.Dataset, c.Split, c.Confidence)
	}

	fmt.Fprintf(os.Stdout, "\n%d claims\n", len(claims))
	return nil
}

// --- pull subcommand ---

var claimsPullCmd = &cobra.Command{
	Use:   "pull [paper-ids...]",
	Short: "Snapshot claims from the backend into the local store",
	Long: `Pull fetches papers and their claims from the backend and replaces each
paper's rows in the local snapshot. With no arguments every listed paper
is pulled. Per-paper failures are reported and counted but do not stop
the pull.`,
	RunE: runClaimsPull,
}

func runClaimsPull(cmd *cobra.Command, args []string) error {
	svc, err := newPaperService(cmd)
	if err != nil {
		return err
	}

	store, err := claimstore.NewStore(snapshotConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Pull(context.Background(), svc, args, os.Stdout)
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d paper(s) failed pull", summary.Failed)
	}
	return nil
}

// --- query subcommand ---

var claimsQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query the local claims snapshot with filters",
	Long: `Query reads the local snapshot without touching the backend. Filter by
paper, dataset, metric name, or minimum confidence; results are sorted
by paper, metric, dataset.`,
	RunE: runClaimsQuery,
}

func runClaimsQuery(cmd *cobra.Command, args []string) error {
	opts := queryOptsFromFlags(cmd)
	if opts.IsEmpty() {
		return fmt.Errorf("filter required: provide --paper, --dataset, --metric, or --min-confidence")
	}

	store, err := claimstore.NewStore(snapshotConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := store.Query(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatQueryOutput(results, jsonOutput)
}

func formatQueryOutput(results []claimstore.QueryResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-20s  %-16s  %10s  %-16s  %5s\n",
		"Paper", "Metric", "Value", "Dataset", "Conf")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 75))

	for _, r := range results {
		paper := r.PaperID
		if len(paper) > 20 {
			paper = paper[:17] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-20s  %-16s  %10s  %-16s  %5.2f\n",
			paper, r.MetricName, formatValue(r.MetricValue, r.Units), r.Dataset, r.Confidence)
	}

	fmt.Fprintf(os.Stdout, "\n%d claims\n", len(results))
	return nil
}

// --- export subcommand ---

var claimsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the claims snapshot to YAML or JSON",
	Long: `Export writes the snapshot (or a filtered subset) to export.yaml or
export.json in the snapshot directory. Supports the same filter flags
as query for partial exports.`,
	RunE: runClaimsExport,
}

func runClaimsExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	cfg := snapshotConfig(cmd)
	store, err := claimstore.NewStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd)

	switch format {
	case "yaml", "":
		if err := store.ExportYAML(context.Background(), opts); err != nil {
			return err
		}
		fmt.Printf("Exported to %s/export.yaml\n", cfg.Dir)
	case "json":
		if err := store.ExportJSON(context.Background(), opts); err != nil {
			return err
		}
		fmt.Printf("Exported to %s/export.json\n", cfg.Dir)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	return nil
}

// --- shared helpers ---

func snapshotConfig(cmd *cobra.Command) types.SnapshotConfig {
	dir, _ := cmd.Flags().GetString("snapshot-dir")
	if dir == "" {
		dir = viper.GetString("snapshot.dir")
	}
	maxResults, _ := cmd.Flags().GetInt("max-results")
	if maxResults == 0 {
		maxResults = viper.GetInt("snapshot.max_results")
	}

	return types.SnapshotConfig{
		Dir:        dir,
		MaxResults: maxResults,
	}
}

func queryOptsFromFlags(cmd *cobra.Command) claimstore.QueryOptions {
	paperID, _ := cmd.Flags().GetString("paper")
	dataset, _ := cmd.Flags().GetString("dataset")
	metric, _ := cmd.Flags().GetString("metric")
	minConf, _ := cmd.Flags().GetFloat64("min-confidence")
	limit, _ := cmd.Flags().GetInt("limit")

	return claimstore.QueryOptions{
		PaperID:       paperID,
		Dataset:       dataset,
		MetricName:    metric,
		MinConfidence: minConf,
		MaxResults:    limit,
	}
}

// formatValue renders a metric value with its units attached.
func formatValue(value float64, units string) string {
	if units == "" {
		return fmt.Sprintf("%g", value)
	}
	return fmt.Sprintf("%g%s", value, units)
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	claimsCmd.PersistentFlags().String("snapshot-dir", "", "directory for the claims snapshot (default from config)")
	claimsCmd.PersistentFlags().Int("max-results", 0, "maximum query results (default from config)")

	// List flags.
	claimsListCmd.Flags().Bool("json", false, "output claims as JSON")

	// Query flags.
	claimsQueryCmd.Flags().String("paper", "", "filter by paper ID")
	claimsQueryCmd.Flags().String("dataset", "", "filter by dataset")
	claimsQueryCmd.Flags().String("metric", "", "filter by metric name")
	claimsQueryCmd.Flags().Float64("min-confidence", 0, "minimum extraction confidence")
	claimsQueryCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	claimsQueryCmd.Flags().Bool("json", false, "output results as JSON")

	// Export flags.
	claimsExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	claimsExportCmd.Flags().String("paper", "", "filter by paper ID for partial export")
	claimsExportCmd.Flags().String("dataset", "", "filter by dataset for partial export")
	claimsExportCmd.Flags().String("metric", "", "filter by metric name for partial export")
	claimsExportCmd.Flags().Float64("min-confidence", 0, "minimum confidence for partial export")
	claimsExportCmd.Flags().Int("limit", 0, "maximum claims to export (0 = all)")

	// Wire subcommands.
	claimsCmd.AddCommand(claimsListCmd)
	claimsCmd.AddCommand(claimsPullCmd)
	claimsCmd.AddCommand(claimsQueryCmd)
	claimsCmd.AddCommand(claimsExportCmd)

	rootCmd.AddCommand(claimsCmd)
}
