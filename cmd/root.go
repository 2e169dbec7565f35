package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harborview/insights-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "insights",
	Short: "Portfolio analytics engine for project workspaces",
	Long:  "Computes portfolio health, delivery, risk, and ROI analytics from workspace snapshots and serves executive and stakeholder dashboard reports.",
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
