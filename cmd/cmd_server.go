package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Kyz7/storefront/internal/mail"
	"github.com/Kyz7/storefront/internal/metrics"
	"github.com/Kyz7/storefront/internal/server"
	"github.com/spf13/cobra"
)

const mailQueueSize = 100

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server (default command)",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, log, db, err := bootstrap(ctx)
	if err != nil {
		return err
	}

	m := metrics.New()

	var notifier mail.Notifier = mail.LogNotifier{Log: log}
	var dispatcher *mail.Dispatcher
	if cfg.Mail.Enabled() {
		dispatcher = mail.NewDispatcher(mail.NewMailer(cfg.Mail), log, m, mailQueueSize)
		dispatcher.Start()
		notifier = mail.NewOrderMailer(dispatcher)
		log.WithField("host", cfg.Mail.Host).Info("order mail enabled")
	} else {
		log.Info("MAIL_HOST not set, order notifications are logged only")
	}

	app := server.New(server.Deps{
		Config:   cfg,
		DB:       db,
		Log:      log,
		Metrics:  m,
		Notifier: notifier,
	})

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.ServerAddr).Info("storefront server starting")
		errCh <- app.Listen(cfg.ServerAddr)
	}()

	select {
	case err = <-errCh:
	case <-ctx.Done():
		log.Info("shutting down")
		err = app.ShutdownWithTimeout(10 * time.Second)
	}

	if dispatcher != nil {
		dispatcher.Stop()
	}
	if sqlDB, dbErr := db.DB(); dbErr == nil {
		sqlDB.Close()
	}
	return err
}
