package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ride_notifier/internal/infra/config"
	"ride_notifier/internal/infra/logger"
	"ride_notifier/internal/infra/scheduler"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the batch on CRON_SPEC until interrupted",
	RunE:  serve,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(envFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.Init(cfg)
	log := logger.Get()

	svc, closeFn, err := buildRunService(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	runScheduler := scheduler.NewRunScheduler(svc.Run, log, cfg.CronSpec, cfg.Timezone)
	if err := runScheduler.Start(); err != nil {
		return fmt.Errorf("invalid CRON_SPEC %q: %w", cfg.CronSpec, err)
	}

	<-ctx.Done() // Block until a signal is received
	log.Info("Shutting down ride notifier...")
	runScheduler.Stop()
	return nil
}
