package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/lease-abstract-cli/internal/config"
	anthropicpkg "github.com/sells-group/lease-abstract-cli/pkg/anthropic"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "leaseabs",
	Short: "Commercial lease abstraction pipeline",
	Long:  "Renders lease PDFs to page text, classifies the expense structure, extracts a 27-field abstract via Claude models, then auto-corrects and validates the numbers before human review.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		for model, pricing := range cfg.Pricing.Anthropic {
			anthropicpkg.RegisterPricing(model, pricing.Input, pricing.Output)
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
