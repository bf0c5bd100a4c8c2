package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"outagemonitor/internal/logging"
	"outagemonitor/internal/monitor"
	"outagemonitor/internal/source"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch the outage page once and store it in the cache",
	Long: `Fetch the outage page a single time and replace the cached snapshot.
Use this from cron or another external scheduler when refresh.policy is none.`,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}
	store, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	refresher := monitor.New(source.NewHTTPFetcher(cfg.Source, nil), store, monitor.Options{
		Timeout:     cfg.FetchTimeout(),
		HistorySize: 1,
		Logger:      logging.Component(logger, "refresher"),
	})
	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.FetchTimeout()*2)
	defer cancel()

	status, err := refresher.RunOnce(ctx)
	if err != nil {
		return fmt.Errorf("refresh outage page: %w", err)
	}
	logger.Info().Int("bytes", status.Bytes).Int64("duration_ms", status.DurationMS).Msg("outage page stored")
	return nil
}
