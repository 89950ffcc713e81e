// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/newspulse/internal/server"
)

var invokeCmd = &cobra.Command{
	Use:   "invoke [event-file]",
	Short: "Run the serverless event handler on a JSON event",
	Long: `Invoke reads a serverless event from a file (or stdin when the file is
omitted or "-") and prints the handler's response. The request is taken from
the event's "body" string when present and from the event itself otherwise,
e.g. {"query": "Tesla stock", "max_articles": 5}.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInvoke,
}

func init() {
	rootCmd.AddCommand(invokeCmd)
}

func runInvoke(cmd *cobra.Command, args []string) error {
	raw, err := readEvent(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	cfg, err := currentConfig()
	if err != nil {
		return err
	}
	verbose, _ := cmd.Flags().GetBool("verbose")
	a, err := buildApp(cmd.Context(), cfg, newLogger(verbose))
	if err != nil {
		return err
	}
	defer a.Close()

	resp := server.HandleEvent(cmd.Context(), a.pipeline, raw)
	if err := writeJSON(cmd.OutOrStdout(), resp); err != nil {
		return err
	}
	if resp.StatusCode != 200 {
		return fmt.Errorf("handler returned status %d", resp.StatusCode)
	}
	return nil
}

func readEvent(args []string, stdin io.Reader) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading event from stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("reading event file: %w", err)
	}
	return data, nil
}
