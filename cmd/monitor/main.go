package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"exchange-rate-monitor/internal/adapter/mail"
	"exchange-rate-monitor/internal/adapter/source"
	"exchange-rate-monitor/internal/adapter/store"
	"exchange-rate-monitor/internal/config"
	"exchange-rate-monitor/internal/metrics"
	"exchange-rate-monitor/internal/service"
	"exchange-rate-monitor/pkg/logger"
)

// app holds everything one run needs, wired once in setup and shared by the
// subcommands.
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	metrics *metrics.Metrics
	monitor *service.MonitorService
	ingest  *service.IngestService
}

func setup(configPath string) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	log := logger.NewLogger(cfg.LogLevel)
	appMetrics := metrics.NewMetrics()

	docStore := store.NewGitStore(cfg.Store.Dir, cfg.Store.File, log)
	rateSource := source.NewBankPage(cfg.Monitoring.URL, cfg.Monitoring.Timeout(), log)
	mailer := mail.NewSMTPMailer(
		cfg.Email.SMTPServer,
		cfg.Email.SMTPPort,
		cfg.Email.Sender,
		cfg.Email.Password,
		cfg.Email.Recipient,
		log,
	)
	receiver := mail.NewIMAPReceiver(
		cfg.Email.IMAPServer,
		cfg.Email.IMAPPort,
		cfg.Email.Sender,
		cfg.Email.Password,
		cfg.Email.Mailbox,
		cfg.Email.Recipient,
		log,
	)

	return &app{
		cfg:     cfg,
		log:     log,
		metrics: appMetrics,
		monitor: service.NewMonitorService(rateSource, mailer, docStore, log, appMetrics),
		ingest:  service.NewIngestService(receiver, mailer, docStore, log, appMetrics),
	}, nil
}

// pushMetrics is best-effort; a missing Pushgateway never fails the run.
func (a *app) pushMetrics() {
	if err := a.metrics.Push(a.cfg.Metrics.PushgatewayURL); err != nil {
		a.log.Error("Failed to push metrics", "error", err)
	}
}

func main() {
	var configPath string

	root := &cobra.Command{
		Use:           "monitor",
		Short:         "Exchange rate monitor with an email reply command channel",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAll(configPath)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to configuration file")

	root.AddCommand(
		&cobra.Command{
			Use:          "run",
			Short:        "Check rates and ingest reply commands (the default)",
			SilenceUsage: true,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runAll(configPath)
			},
		},
		&cobra.Command{
			Use:          "check",
			Short:        "Fetch published rates and send threshold alerts",
			SilenceUsage: true,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := setup(configPath)
				if err != nil {
					return err
				}
				defer a.pushMetrics()
				return a.monitor.Run(context.Background())
			},
		},
		&cobra.Command{
			Use:          "ingest",
			Short:        "Process reply commands from the mailbox",
			SilenceUsage: true,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := setup(configPath)
				if err != nil {
					return err
				}
				defer a.pushMetrics()
				return a.ingest.Run(context.Background())
			},
		},
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// runAll runs the rate check and then reply ingestion. A failed rate check
// does not block ingestion, but the run still exits non-zero.
func runAll(configPath string) error {
	a, err := setup(configPath)
	if err != nil {
		return err
	}
	defer a.pushMetrics()

	ctx := context.Background()

	checkErr := a.monitor.Run(ctx)
	if checkErr != nil {
		a.log.Error("Rate check failed", "error", checkErr)
	}
	if err := a.ingest.Run(ctx); err != nil {
		return err
	}
	return checkErr
}
