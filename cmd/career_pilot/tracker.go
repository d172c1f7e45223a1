package main

import (
	"context"
	"fmt"
	"io"

	"github.com/jonathan/career-pilot/internal/config"
	"github.com/jonathan/career-pilot/internal/observability"
	"github.com/jonathan/career-pilot/internal/tracker"
	"github.com/jonathan/career-pilot/internal/types"
	"github.com/spf13/cobra"
)

var trackerCmd = &cobra.Command{
	Use:   "tracker",
	Short: "Inspect and update tracked jobs in the persistent tracker",
	Long:  `Works against the configured tracker backend (postgres or sqlite). The in-memory backend keeps nothing between runs.`,
}

var trackerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked jobs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withTrackerStore(cmd.Context(), func(store *tracker.Store) error {
			return listTracked(cmd.OutOrStdout(), store)
		})
	},
}

var trackerSetStatusCmd = &cobra.Command{
	Use:   "set-status <job-id> <status>",
	Short: "Change the status of a tracked job (Interested, Applied, Interviewing, Rejected)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTrackerStore(cmd.Context(), func(store *tracker.Store) error {
			return setTrackedStatus(cmd.Context(), cmd.OutOrStdout(), store, args[0], args[1])
		})
	},
}

func init() {
	trackerCmd.AddCommand(trackerListCmd, trackerSetStatusCmd)
	rootCmd.AddCommand(trackerCmd)
}

// withTrackerStore opens the persistent tracker, loads it and runs fn
func withTrackerStore(ctx context.Context, fn func(*tracker.Store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Tracker == config.TrackerMemory {
		return fmt.Errorf("tracker backend is %q; set tracker to postgres or sqlite", cfg.Tracker)
	}

	repo, err := openRepository(ctx, cfg)
	if err != nil {
		return err
	}
	store := tracker.NewStore(tracker.WithRepository(repo))
	defer store.Close() //nolint:errcheck

	if err := store.Load(ctx); err != nil {
		return fmt.Errorf("failed to load tracked jobs: %w", err)
	}
	return fn(store)
}

func listTracked(out io.Writer, store *tracker.Store) error {
	observability.NewPrinter(out).PrintTracked(store.List())
	return nil
}

func setTrackedStatus(ctx context.Context, out io.Writer, store *tracker.Store, id, rawStatus string) error {
	status, err := types.ParseTrackingStatus(rawStatus)
	if err != nil {
		return err
	}
	tracked, err := store.SetStatus(ctx, id, status)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", id, err)
	}
	fmt.Fprintf(out, "%s status: %s.\n", tracked.Company, tracked.Status)
	return nil
}
