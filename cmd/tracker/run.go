package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/spf13/cobra"

	"scantrack/internal/adapter"
	"scantrack/internal/browse"
	"scantrack/internal/tracking"
	"scantrack/pkg/database"
	"scantrack/pkg/utils"
)

var (
	flagItem    string
	flagAdapter string
	flagLimit   int
	flagWorkers int
)

func init() {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Check all verified, active pairs for new chapters",
		RunE:  runTracking,
	}

	runCmd.Flags().StringVar(&flagItem, "item", "", "only check pairs of this item")
	runCmd.Flags().StringVar(&flagAdapter, "adapter", "", "only check pairs of this adapter")
	runCmd.Flags().IntVar(&flagLimit, "limit", 0, "cap the number of pairs checked")
	runCmd.Flags().IntVar(&flagWorkers, "workers", 0, "override worker count")

	rootCmd.AddCommand(runCmd)
}

func runTracking(cmd *cobra.Command, _ []string) error {
	cfg, err := utils.LoadTrackerConfig()
	if err != nil {
		return err
	}
	if !flagDebug {
		log.SetOutput(io.Discard)
	}

	db, err := database.Open(database.DefaultConfig())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return err
	}

	store := tracking.NewSQLStore(db)
	engine := tracking.NewEngine(adapter.Default(), store, browse.NewFactory(browse.Options{
		Timeout:   cfg.HTTPTimeout,
		UserAgent: cfg.UserAgent,
	}))
	engine.Workers = cfg.Workers
	if cmd.Flags().Changed("workers") && flagWorkers > 0 {
		engine.Workers = flagWorkers
	}
	engine.PairTimeout = cfg.PairTimeout

	pairs, err := store.FindTrackedPairs(cmd.Context(), tracking.PairFilter{
		ItemID:  flagItem,
		Adapter: flagAdapter,
		Limit:   flagLimit,
	})
	if err != nil {
		return err
	}
	if len(pairs) == 0 {
		fmt.Println("No tracked pairs match.")
		return nil
	}

	result := engine.RunTracking(context.Background(), pairs)

	fmt.Printf("Checked %d pairs (%d skipped) in %s\n",
		result.PairsAttempted, result.PairsSkipped,
		result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond))
	fmt.Printf("New chapters: %d\n", result.NewChapters)

	for _, ch := range result.Discovered {
		fmt.Printf("  %s/%s chapter %s  %s\n", ch.ItemID, ch.Adapter, ch.Key, ch.URL)
	}
	for _, re := range result.Errors {
		fmt.Printf("  FAILED %s/%s (%s): %s\n", re.ItemID, re.Adapter, re.Kind, re.Message)
	}
	return nil
}
