// Package config loads process configuration from environment variables.
package config

import (
	"path/filepath"

	"github.com/spf13/viper"
)

// DefaultUsername is the account collected when GITHUB_USERNAME is unset.
const DefaultUsername = "GeorgePearse"

// Config holds all process-wide settings. It is built once at startup
// and passed down; nothing reads the environment after that.
type Config struct {
	Username  string // GITHUB_USERNAME
	Token     string // GITHUB_TOKEN, optional
	CSVPath   string // METRICS_CSV_PATH
	OutputDir string // METRICS_OUTPUT_DIR
}

// Load builds a Config from the environment, applying defaults for
// anything unset.
func Load() *Config {
	v := viper.New()
	v.SetDefault("github_username", DefaultUsername)
	v.SetDefault("github_token", "")
	v.SetDefault("metrics_csv_path", filepath.Join("data", "metrics.csv"))
	v.SetDefault("metrics_output_dir", "assets")
	v.AutomaticEnv()

	return &Config{
		Username:  v.GetString("github_username"),
		Token:     v.GetString("github_token"),
		CSVPath:   v.GetString("metrics_csv_path"),
		OutputDir: v.GetString("metrics_output_dir"),
	}
}
