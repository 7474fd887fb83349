package main

import (
	"encoding/json"
	"fmt"

	"github.com/Sternrassler/property-listings/pkg/cache"
	"github.com/Sternrassler/property-listings/pkg/logging"
	"github.com/Sternrassler/property-listings/pkg/metrics"
	"github.com/spf13/cobra"
)

func newMetricsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Print one cache metrics snapshot as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			redisClient, err := newRedisClient(cfg)
			if err != nil {
				return err
			}
			defer redisClient.Close()

			reporter := metrics.NewReporter(cache.NewRedisStore(redisClient), logging.NewLogger("metrics-reporter"))

			snap, err := reporter.Snapshot(cmd.Context())
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(snap, "", "  ")
			if err != nil {
				return fmt.Errorf("encode snapshot: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}
