package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/constadinisio/huntly/internal/store"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List tracked jobs",
	Long:  "Prints every tracked job with its review status, newest first.",
	RunE:  runJobs,
}

func init() {
	rootCmd.AddCommand(jobsCmd)
}

func runJobs(cmd *cobra.Command, args []string) error {
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
	if len(jobs) == 0 {
		fmt.Println("no jobs tracked yet")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tBUDGET\tTITLE")
	for _, j := range jobs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", j.ID, j.Status, j.Budget, j.Title)
	}
	return w.Flush()
}
