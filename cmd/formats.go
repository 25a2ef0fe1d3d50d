package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Molly166/LogParser/internal/export"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List supported output formats",
	Run: func(cmd *cobra.Command, args []string) {
		for _, f := range export.Formats {
			fmt.Fprintln(cmd.OutOrStdout(), f)
		}
	},
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}
