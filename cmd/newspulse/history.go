// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/newspulse/internal/archive"
	"github.com/pdiddy/newspulse/internal/report"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse archived analysis runs (list, search, show, export)",
	Long: `History reads the local SQLite archive of past runs. Every successful
analyze, serve or invoke run is recorded with its report and the
classification of each headline.`,
}

// --- list subcommand ---

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs, newest first",
	RunE:  runHistoryList,
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := openArchive(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.List(cmd.Context(), limit)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		if runs == nil {
			runs = []archive.Run{}
		}
		return writeJSON(os.Stdout, runs)
	}
	formatRunList(os.Stdout, runs)
	return nil
}

func formatRunList(w io.Writer, runs []archive.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs archived.")
		return
	}

	fmt.Fprintf(w, "%-36s  %-20s  %-30s  %5s  %5s  %5s  %5s\n",
		"ID", "Created", "Query", "Total", "Pos", "Neg", "Neu")
	fmt.Fprintln(w, strings.Repeat("-", 120))
	for _, r := range runs {
		fmt.Fprintf(w, "%-36s  %-20s  %-30s  %5d  %5d  %5d  %5d\n",
			r.ID, r.CreatedAt.Local().Format(time.DateTime), truncate(r.Query, 30),
			r.Report.Total, r.Report.Positive, r.Report.Negative, r.Report.Neutral)
	}
	fmt.Fprintf(w, "\n%d runs\n", len(runs))
}

// --- search subcommand ---

var historySearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search over archived headlines",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runHistorySearch,
}

func runHistorySearch(cmd *cobra.Command, args []string) error {
	store, err := openArchive(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	hits, err := store.Search(cmd.Context(), strings.Join(args, " "), limit)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		if hits == nil {
			hits = []archive.Hit{}
		}
		return writeJSON(os.Stdout, hits)
	}
	formatHits(os.Stdout, hits)
	return nil
}

func formatHits(w io.Writer, hits []archive.Hit) {
	if len(hits) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-9s  %-60s  %-20s  %s\n", "Rank", "Label", "Headline", "Query", "Run")
	fmt.Fprintln(w, strings.Repeat("-", 130))
	for i, h := range hits {
		fmt.Fprintf(w, "%-4d  %-9s  %-60s  %-20s  %s\n",
			i+1, h.Result.Label, truncate(h.Title, 60), truncate(h.Query, 20), h.RunID)
	}
	fmt.Fprintf(w, "\n%d results\n", len(hits))
}

// --- show subcommand ---

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one archived run with every classified headline",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	store, err := openArchive(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return writeJSON(os.Stdout, run)
	}
	formatRun(os.Stdout, run)
	return nil
}

func formatRun(w io.Writer, run archive.Run) {
	fmt.Fprintf(w, "Run:      %s\n", run.ID)
	fmt.Fprintf(w, "Created:  %s\n", run.CreatedAt.Local().Format(time.DateTime))
	report.FormatText(run.Report, run.Query, w)

	if len(run.Articles) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Articles:")
		for i, a := range run.Articles {
			fmt.Fprintf(w, "  %2d. [%-8s %.2f] %s\n", i+1, a.Result.Label, a.Result.Score, a.Title)
		}
	}
}

// --- export subcommand ---

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export archived runs to YAML or JSON",
	Long: `Export writes archived runs and their articles to export.yaml or
export.json in the archive data directory.`,
	RunE: runHistoryExport,
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := openArchive(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	var path string
	switch format {
	case "yaml", "":
		path, err = store.ExportYAML(cmd.Context(), limit)
	case "json":
		path, err = store.ExportJSON(cmd.Context(), limit)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}
	fmt.Printf("Exported to %s\n", path)
	return nil
}

// --- shared helpers ---

func openArchive(cmd *cobra.Command) (*archive.Store, error) {
	cfg, err := currentConfig()
	if err != nil {
		return nil, err
	}
	if dir, _ := cmd.Flags().GetString("data-dir"); dir != "" {
		cfg.Archive.DataDir = dir
	}
	return archive.NewStore(cfg.Archive)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	historyCmd.PersistentFlags().String("data-dir", "", "archive data directory (default from config, data)")

	historyListCmd.Flags().Int("limit", 0, "maximum runs to list (0 = use default)")
	historyListCmd.Flags().Bool("json", false, "output runs as JSON")

	historySearchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	historySearchCmd.Flags().Bool("json", false, "output results as JSON")

	historyShowCmd.Flags().Bool("json", false, "output the run as JSON")

	historyExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	historyExportCmd.Flags().Int("limit", 0, "maximum runs to export (0 = all)")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historySearchCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyExportCmd)

	rootCmd.AddCommand(historyCmd)
}
