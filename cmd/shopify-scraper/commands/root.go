package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var verbose *bool

func init() {
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging/instrumentation.")
}

var rootCmd = &cobra.Command{
	Use:   "shopify-scraper",
	Short: "shopify-scraper extracts a storefront's product catalog into one flat table.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initTelemetry(cmd.Context(), *verbose)
	},
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
