package main

import (
	"log/slog"

	"github.com/groblegark/kofid/internal/config"
	"github.com/groblegark/kofid/internal/store"
	"github.com/groblegark/kofid/internal/store/gist"
	"github.com/groblegark/kofid/internal/store/postgres"
)

// openStore builds the ledger store from configuration: Postgres when a
// database URL is set, the gist backend when gist credentials are present,
// nil when neither is configured (notifications only, no ledger).
func openStore(cfg *config.Config, logger *slog.Logger) (store.Store, error) {
	if cfg.DatabaseURL != "" {
		s, err := postgres.New(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		logger.Info("ledger store: postgres")
		return s, nil
	}

	if cfg.GistToken != "" && (cfg.GistURL != "" || cfg.GistID != "") {
		id, err := gist.ExtractID(cfg.GistURL, cfg.GistID)
		if err != nil {
			return nil, err
		}
		logger.Info("ledger store: gist", "gist_id", id)
		return gist.New(cfg.GistToken, id), nil
	}

	logger.Warn("no ledger store configured; supporter state will not be persisted")
	return nil, nil
}
