// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/georgepearse/github-metrics/internal/config"
	"github.com/georgepearse/github-metrics/internal/gateway"
	"github.com/georgepearse/github-metrics/internal/graph"
	"github.com/georgepearse/github-metrics/internal/storage"
	"github.com/georgepearse/github-metrics/internal/usecase"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collects current GitHub metrics, updates the CSV series, and renders charts",
	Long: `Fetches the configured account's follower count and total public-repo
stars, appends them to the CSV time series (replacing today's row on a
same-day rerun), regenerates the SVG charts, and prints a JSON summary.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		// Get the verbose flag from the root command to set up the logger.
		verbose, _ := cmd.InheritedFlags().GetBool("verbose")
		logger := zap.NewNop() // Default: discard all logs.
		if verbose {
			logger = zap.Must(zap.NewDevelopment())
		}
		defer logger.Sync()

		backfill, _ := cmd.Flags().GetBool("backfill")
		daysBack, _ := cmd.Flags().GetInt("days")

		cfg := config.Load()
		if cfg.Token == "" {
			fmt.Fprintln(os.Stderr, "Warning: GITHUB_TOKEN is not set, using unauthenticated rate limits.")
		}

		// Inject dependencies and run the pipeline.
		githubGateway, err := gateway.NewGitHubGateway(cfg.Username, cfg.Token, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create GitHub gateway: %v\n", err)
			os.Exit(1)
		}
		store := storage.NewStore(cfg.CSVPath, logger)
		generator := graph.NewGenerator(cfg.OutputDir, logger)
		collector := usecase.NewCollector(cfg.Username, githubGateway, store, generator, logger)

		result, err := collector.Run(ctx, backfill, daysBack)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to collect metrics: %v\n", err)
			os.Exit(1)
		}

		// Marshal the result into a pretty-printed JSON string.
		jsonData, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to marshal result to JSON: %v\n", err)
			os.Exit(1)
		}

		fmt.Println(string(jsonData))
	},
}

func init() {
	rootCmd.AddCommand(collectCmd)
	collectCmd.Flags().Bool("backfill", true, "Backfill synthetic history when the store is empty")
	collectCmd.Flags().Int("days", 30, "Number of days to backfill")
}
