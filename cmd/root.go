package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Molly166/LogParser/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "logparser",
	Short: "Extract query, billing info, and reply fields from application logs",
	Long:  "Parses log lines that embed a JSON payload, recovers fields from malformed payloads by pattern matching, and writes the extracted records as JSON, CSV, or TXT.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
