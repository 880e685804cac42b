// freebucket is a local S3-compatible object storage server and CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"freebucket/internal/freebucket"
	"freebucket/internal/storage"
)

var (
	dataDirFlag string
	configFlag  string
)

func main() {
	root := &cobra.Command{
		Use:   "freebucket",
		Short: "Local S3-compatible object storage",
		Long: `FreeBucket stores buckets and objects as plain files on the local
filesystem and serves them over an S3-compatible HTTP API.

Examples:
  # Start the server
  freebucket serve

  # Create a bucket and upload a file
  freebucket mb photos
  freebucket put photos ./cat.jpg vacations/cat.jpg

  # List keys under a prefix
  freebucket ls photos --prefix vacations/`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "directory holding bucket data (defaults to FREEBUCKET_DATA_DIR or ./freebucket_data)")
	root.PersistentFlags().StringVar(&configFlag, "config", "", "path to a YAML config file")

	root.AddCommand(
		newServeCmd(),
		newMakeBucketCmd(),
		newRemoveBucketCmd(),
		newListCmd(),
		newInfoCmd(),
		newPutCmd(),
		newGetCmd(),
		newRemoveCmd(),
		newStatsCmd(),
	)

	setupLogging()

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func setupLogging() {
	handler := log.NewWithOptions(os.Stderr, log.Options{
		Level:           log.InfoLevel,
		TimeFormat:      time.RFC3339,
		ReportTimestamp: true,
		TimeFunction:    log.NowUTC,
	})

	slog.SetDefault(slog.New(handler))
}

// loadConfig resolves the effective configuration for a CLI invocation:
// file and environment first, then the --data-dir flag on top.
func loadConfig() (freebucket.Config, error) {
	cfg, err := freebucket.LoadConfig(configFlag)
	if err != nil {
		return freebucket.Config{}, err
	}
	if dataDirFlag != "" {
		cfg.DataDir = dataDirFlag
	}
	return cfg, nil
}

// openEngine opens the storage engine for direct CLI access.
func openEngine() (*storage.Engine, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return storage.NewEngine(cfg.DataDir)
}
