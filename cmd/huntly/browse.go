package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/constadinisio/huntly/internal/browse"
	"github.com/constadinisio/huntly/internal/store"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse tracked jobs interactively",
	Long:  "Opens a terminal UI over the tracked jobs: status-colored list, detail view and drafted proposals.",
	RunE:  runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	sqlStore, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer sqlStore.Close()

	jobs, err := sqlStore.List()
	if err != nil {
		logger.Error("failed to list jobs", "error", err)
		os.Exit(1)
	}

	return browse.Run(jobs)
}
