package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of newspulse",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("newspulse %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
