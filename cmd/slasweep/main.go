package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nebuladesk/helpdesk/internal/config"
	"github.com/nebuladesk/helpdesk/internal/events"
	"github.com/nebuladesk/helpdesk/internal/observability"
	"github.com/nebuladesk/helpdesk/internal/persistence"
	"github.com/nebuladesk/helpdesk/internal/repository"
	"github.com/nebuladesk/helpdesk/internal/worker"
)

var rootCmd = &cobra.Command{
	Use:   "slasweep",
	Short: "SLA breach sweep tooling",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single breach sweep",
	Long:  `Scan active tickets past their SLA due date, mark them breached and publish breach events, then exit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger, err := observability.NewLogger(cfg.Logger)
		if err != nil {
			return fmt.Errorf("failed to init logger: %w", err)
		}
		defer logger.Sync() //nolint:errcheck

		ctx := cmd.Context()

		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return fmt.Errorf("failed to connect postgres: %w", err)
		}
		defer pg.Close()

		redis := persistence.NewRedis(cfg.Redis, logger)
		defer redis.Close()

		sweeper := worker.NewBreachSweeper(worker.SweeperOptions{
			Store:      repository.NewTicketRepository(pg.PoolHandle()),
			Dispatcher: events.NewInMemoryDispatcher(),
			Logger:     logger,
			Metrics:    observability.NewMetrics(),
			Locker:     redis,
			BatchSize:  cfg.SLA.SweepBatchSize,
			LockTTL:    cfg.SLA.SweepLockTTL(),
		})

		result, err := sweeper.RunOnce(ctx)
		if err != nil {
			return fmt.Errorf("sweep failed: %w", err)
		}

		logger.Info("sweep complete",
			zap.Int("processed", result.Processed),
			zap.Int("errors", result.Errors),
		)
		fmt.Printf("sweep complete: %d tickets marked breached, %d errors\n", result.Processed, result.Errors)
		if result.Errors > 0 {
			return fmt.Errorf("sweep finished with %d errors", result.Errors)
		}
		return nil
	},
}

func main() {
	rootCmd.AddCommand(runCmd)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
