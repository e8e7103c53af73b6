package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ride_notifier/internal/app"
	"ride_notifier/internal/domain/archive"
	"ride_notifier/internal/domain/ride"
	infraarchive "ride_notifier/internal/infra/archive"
	"ride_notifier/internal/infra/checkpoint"
	"ride_notifier/internal/infra/config"
	idb "ride_notifier/internal/infra/database"
	"ride_notifier/internal/infra/logger"
	"ride_notifier/internal/infra/mailer"
	"ride_notifier/internal/infra/sheets"

	"github.com/spf13/cobra"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:           "ridenotify",
	Short:         "Email ride participants before the ride and archive them after it starts",
	RunE:          runOnce,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process the time slice since the last run, then exit",
	RunE:  runOnce,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with configuration")
	rootCmd.AddCommand(runCmd)
}

func runOnce(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(envFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.Init(cfg)

	svc, closeFn, err := buildRunService(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	return svc.Run(ctx, time.Now())
}

// buildRunService wires the run from configuration. The returned func releases the archive sink.
func buildRunService(ctx context.Context, cfg *config.AppConfig) (*app.RunService, func(), error) {
	log := logger.Get()
	state := checkpoint.NewFileStore()

	sink, err := openSink(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := sink.Close(); err != nil {
			log.Warnf("Failed to close archive: %v", err)
		}
	}

	transport := mailer.NewSMTPTransport(mailer.Config{
		Addr:       cfg.SMTPAddr,
		Username:   cfg.SMTPUsername,
		Password:   cfg.SMTPPassword,
		SenderName: cfg.SMTPSenderName,
		StartTLS:   cfg.SMTPStartTLS,
	})
	notifier := app.NewNotificationService(transport, state, app.NotificationConfig{
		ReplyTo:           cfg.MailReplyTo,
		OperatorEmail:     cfg.OperatorEmail,
		LastSentPath:      cfg.LastSentPath,
		HeartbeatInterval: cfg.HeartbeatInterval,
	}, log)

	sheetsCfg := sheets.Config{
		SpreadsheetID:     cfg.SpreadsheetID,
		CredentialsPath:   cfg.GoogleCredentialsPath,
		RegistrationSheet: cfg.RegistrationSheet,
		SubmissionSheet:   cfg.SubmissionSheet,
		RidesSheet:        cfg.RidesSheet,
		Location:          cfg.Timezone,
		TimestampLayout:   cfg.TimestampLayout,
	}
	openSource := func(ctx context.Context) (ride.Source, error) {
		return sheets.Open(ctx, sheetsCfg)
	}

	svc := app.NewRunService(openSource, notifier, sink, state, cfg.CheckpointPath, cfg.LeadTime, log)
	return svc, closeFn, nil
}

func openSink(ctx context.Context, cfg *config.AppConfig) (archive.Sink, error) {
	if cfg.ArchiveDriver != config.ArchiveDriverPostgres {
		return infraarchive.NewCSVSink(cfg.ArchiveCSVPath), nil
	}
	db, err := idb.NewPostgresConnection(ctx, cfg.ArchiveDatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("archive database: %w", err)
	}
	sink, err := infraarchive.NewPostgresSink(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return sink, nil
}
