// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/newspulse/internal/report"
	"github.com/pdiddy/newspulse/pkg/types"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [query]",
	Short: "Fetch articles for a query and report their sentiment",
	Long: `Analyze fetches up to --max-articles recent English articles matching
the query, classifies each headline, and prints the aggregate report.
Without a query the configured default ("stock market") is used.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().Int("max-articles", 0, "maximum articles to fetch and classify (default from config, 20)")
	analyzeCmd.Flags().Bool("json", false, "output the response envelope as JSON")
	analyzeCmd.Flags().Bool("no-archive", false, "do not record this run in the archive")
	analyzeCmd.Flags().Bool("no-cache", false, "bypass the report cache")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := currentConfig()
	if err != nil {
		return err
	}
	if noArchive, _ := cmd.Flags().GetBool("no-archive"); noArchive {
		cfg.Archive.Enabled = false
	}
	if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
		cfg.Cache.Addr = ""
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	a, err := buildApp(cmd.Context(), cfg, newLogger(verbose))
	if err != nil {
		return err
	}
	defer a.Close()

	maxArticles, _ := cmd.Flags().GetInt("max-articles")
	req := types.AnalysisRequest{
		Query:       strings.Join(args, " "),
		MaxArticles: maxArticles,
	}

	resp, err := a.pipeline.Run(cmd.Context(), req)
	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		if encErr := writeJSON(os.Stdout, resp); encErr != nil {
			return encErr
		}
		return err
	}
	if err != nil {
		return err
	}
	return writeResponseText(os.Stdout, resp)
}

func writeResponseText(w io.Writer, resp types.AnalysisResponse) error {
	if resp.Message != "" {
		fmt.Fprintln(w, resp.Message)
	}
	if resp.Report != nil && resp.Report.Total > 0 {
		report.FormatText(*resp.Report, resp.Query, w)
	}
	if resp.RunID != "" {
		fmt.Fprintf(w, "\nArchived as run %s\n", resp.RunID)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
