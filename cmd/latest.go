// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/georgepearse/github-metrics/internal/config"
	"github.com/georgepearse/github-metrics/internal/domain"
	"github.com/georgepearse/github-metrics/internal/storage"
	"github.com/georgepearse/github-metrics/internal/usecase"
)

var latestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Prints the latest stored record and recent trends without fetching",
	Long: `Reads the CSV time series and prints the most recent record plus
min/max/mean/delta trend summaries over the requested window. Makes no
network calls.`,
	Run: func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.InheritedFlags().GetBool("verbose")
		logger := zap.NewNop()
		if verbose {
			logger = zap.Must(zap.NewDevelopment())
		}
		defer logger.Sync()

		since, _ := cmd.Flags().GetInt("since")

		cfg := config.Load()
		store := storage.NewStore(cfg.CSVPath, logger)

		latest, err := store.LatestRecord()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read metrics store: %v\n", err)
			os.Exit(1)
		}
		if latest == nil {
			fmt.Fprintln(os.Stderr, "No records stored yet. Run 'github-metrics collect' first.")
			os.Exit(1)
		}

		recent, err := store.RecordsSince(since)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read metrics store: %v\n", err)
			os.Exit(1)
		}
		followerTrend, starTrend := usecase.Trends(recent)

		output := struct {
			Latest        domain.MetricsRecord  `json:"latest"`
			WindowDays    int                   `json:"window_days"`
			FollowerTrend *usecase.TrendSummary `json:"follower_trend,omitempty"`
			StarTrend     *usecase.TrendSummary `json:"star_trend,omitempty"`
		}{
			Latest:        *latest,
			WindowDays:    since,
			FollowerTrend: followerTrend,
			StarTrend:     starTrend,
		}

		jsonData, err := json.MarshalIndent(output, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to marshal output to JSON: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(jsonData))
	},
}

func init() {
	rootCmd.AddCommand(latestCmd)
	latestCmd.Flags().Int("since", 30, "Window in days for the trend summaries")
}
