package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/groblegark/kofid/internal/config"
	"github.com/groblegark/kofid/internal/events"
	"github.com/groblegark/kofid/internal/server"
	"github.com/spf13/cobra"
)

var summaryTimeout time.Duration

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Post a supporter summary to Discord and exit",
	Long: `Loads the ledger, renders the supporter summary, and posts it to the
summary webhook. Intended for cron jobs that run next to the server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		slog.SetDefault(logger)

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		ledgerStore, err := openStore(cfg, logger)
		if err != nil {
			return err
		}
		if ledgerStore == nil {
			return fmt.Errorf("ledger store required: set KOFID_GIST_TOKEN and KOFID_GIST_ID/URL, or KOFID_DATABASE_URL")
		}
		defer ledgerStore.Close()

		relay := server.NewRelayServer(cfg, ledgerStore, &events.NoopPublisher{})

		ctx, cancel := context.WithTimeout(context.Background(), summaryTimeout)
		defer cancel()
		if err := relay.SendSummary(ctx); err != nil {
			return err
		}
		logger.Info("summary sent")
		return nil
	},
}

func init() {
	summaryCmd.Flags().DurationVar(&summaryTimeout, "timeout", 30*time.Second, "overall timeout for the summary post")
	rootCmd.AddCommand(summaryCmd)
}
