package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/groblegark/kofid/internal/config"
	"github.com/groblegark/kofid/internal/events"
	"github.com/groblegark/kofid/internal/server"
	kofisync "github.com/groblegark/kofid/internal/sync"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the relay HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		slog.SetDefault(logger)

		// Load configuration.
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cfg.KofiToken == "" {
			logger.Warn("KOFID_KOFI_TOKEN not set; webhook requests will be refused")
		}
		if !config.ValidSinkURL(cfg.WebhookURL) {
			logger.Warn("KOFID_WEBHOOK_URL missing or invalid; webhook requests will be refused")
		}

		// Open the ledger store.
		ledgerStore, err := openStore(cfg, logger)
		if err != nil {
			return err
		}

		// Create event publisher.
		var publisher events.Publisher
		if cfg.NATSURL != "" {
			pub, err := events.NewNATSPublisher(cfg.NATSURL)
			if err != nil {
				if ledgerStore != nil {
					ledgerStore.Close()
				}
				return err
			}
			publisher = pub
			logger.Info("events enabled", "nats_url", cfg.NATSURL)
		} else {
			publisher = &events.NoopPublisher{}
			logger.Info("events disabled (KOFID_NATS_URL not set)")
		}

		relay := server.NewRelayServer(cfg, ledgerStore, publisher)

		httpServer := &http.Server{
			Addr:    cfg.HTTPAddr,
			Handler: relay.NewHTTPHandler(),
		}

		go func() {
			logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("HTTP server error", "err", err)
			}
		}()

		// Start the snapshot scheduler if a destination is configured.
		var scheduler *kofisync.Scheduler
		if cfg.SnapshotInterval > 0 && ledgerStore != nil && cfg.SnapshotS3Bucket != "" {
			s3Dest, err := kofisync.NewS3Destination(
				context.Background(),
				cfg.SnapshotS3Bucket,
				cfg.SnapshotS3Key,
				cfg.SnapshotS3Region,
				cfg.SnapshotS3Endpoint,
			)
			if err != nil {
				logger.Error("failed to create S3 snapshot destination", "err", err)
			} else {
				scheduler = kofisync.NewScheduler(ledgerStore, []kofisync.Destination{s3Dest}, cfg.SnapshotInterval, logger)
				scheduler.Start()
				logger.Info("snapshot scheduler started", "interval", cfg.SnapshotInterval, "bucket", cfg.SnapshotS3Bucket)
			}
		}

		// Wait for shutdown signal.
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		logger.Info("shutting down")

		if scheduler != nil {
			scheduler.Stop()
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP shutdown error", "err", err)
		}

		publisher.Close()
		if ledgerStore != nil {
			ledgerStore.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
