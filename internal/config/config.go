package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all service configuration. Values come from an optional TOML
// file (KOFID_CONFIG_FILE) overridden by KOFID_* environment variables.
type Config struct {
	HTTPAddr string `toml:"http_addr"` // KOFID_HTTP_ADDR (default ":8080")

	// Ko-fi webhook verification
	KofiToken    string `toml:"kofi_token"`    // KOFID_KOFI_TOKEN (required for the webhook path)
	KofiUsername string `toml:"kofi_username"` // KOFID_KOFI_USERNAME (optional profile handle)

	// Discord sinks. WebhookURL is the mandatory default; the rest are
	// optional per-kind overrides.
	WebhookURL           string `toml:"webhook_url"`           // KOFID_WEBHOOK_URL
	WebhookSubscriptions string `toml:"webhook_subscriptions"` // KOFID_WEBHOOK_SUBSCRIPTIONS
	WebhookDonations     string `toml:"webhook_donations"`     // KOFID_WEBHOOK_DONATIONS
	WebhookAlerts        string `toml:"webhook_alerts"`        // KOFID_WEBHOOK_ALERTS
	WebhookSummary       string `toml:"webhook_summary"`       // KOFID_WEBHOOK_SUMMARY (falls back to WebhookURL)

	// Summary endpoint auth
	SummaryToken string `toml:"summary_token"` // KOFID_SUMMARY_TOKEN
	CronSecret   string `toml:"cron_secret"`   // KOFID_CRON_SECRET

	// Ledger store. DatabaseURL selects the Postgres backend; otherwise the
	// gist backend is used when a token and an id or URL are present.
	GistURL     string `toml:"gist_url"`     // KOFID_GIST_URL
	GistID      string `toml:"gist_id"`      // KOFID_GIST_ID
	GistToken   string `toml:"gist_token"`   // KOFID_GIST_TOKEN
	DatabaseURL string `toml:"database_url"` // KOFID_DATABASE_URL

	NATSURL string `toml:"nats_url"` // KOFID_NATS_URL (optional, empty = no events)

	DeliveryTimeout time.Duration `toml:"-"` // KOFID_DELIVERY_TIMEOUT (default 10s)

	// Snapshot settings
	SnapshotInterval   time.Duration `toml:"-"`                    // KOFID_SNAPSHOT_INTERVAL (default 0 = disabled)
	SnapshotS3Bucket   string        `toml:"snapshot_s3_bucket"`   // KOFID_SNAPSHOT_S3_BUCKET (enables S3 when set)
	SnapshotS3Endpoint string        `toml:"snapshot_s3_endpoint"` // KOFID_SNAPSHOT_S3_ENDPOINT (custom endpoint for MinIO)
	SnapshotS3Region   string        `toml:"snapshot_s3_region"`   // KOFID_SNAPSHOT_S3_REGION (default "us-east-1")
	SnapshotS3Key      string        `toml:"snapshot_s3_key"`      // KOFID_SNAPSHOT_S3_KEY (default "kofid/ledger.json")
}

func Load() (*Config, error) {
	c := &Config{}

	if path := os.Getenv("KOFID_CONFIG_FILE"); path != "" {
		if _, err := toml.DecodeFile(path, c); err != nil {
			return nil, fmt.Errorf("KOFID_CONFIG_FILE: %w", err)
		}
	}

	setEnv(&c.HTTPAddr, "KOFID_HTTP_ADDR")
	setEnv(&c.KofiToken, "KOFID_KOFI_TOKEN")
	setEnv(&c.KofiUsername, "KOFID_KOFI_USERNAME")
	setEnv(&c.WebhookURL, "KOFID_WEBHOOK_URL")
	setEnv(&c.WebhookSubscriptions, "KOFID_WEBHOOK_SUBSCRIPTIONS")
	setEnv(&c.WebhookDonations, "KOFID_WEBHOOK_DONATIONS")
	setEnv(&c.WebhookAlerts, "KOFID_WEBHOOK_ALERTS")
	setEnv(&c.WebhookSummary, "KOFID_WEBHOOK_SUMMARY")
	setEnv(&c.SummaryToken, "KOFID_SUMMARY_TOKEN")
	setEnv(&c.CronSecret, "KOFID_CRON_SECRET")
	setEnv(&c.GistURL, "KOFID_GIST_URL")
	setEnv(&c.GistID, "KOFID_GIST_ID")
	setEnv(&c.GistToken, "KOFID_GIST_TOKEN")
	setEnv(&c.DatabaseURL, "KOFID_DATABASE_URL")
	setEnv(&c.NATSURL, "KOFID_NATS_URL")
	setEnv(&c.SnapshotS3Bucket, "KOFID_SNAPSHOT_S3_BUCKET")
	setEnv(&c.SnapshotS3Endpoint, "KOFID_SNAPSHOT_S3_ENDPOINT")
	setEnv(&c.SnapshotS3Region, "KOFID_SNAPSHOT_S3_REGION")
	setEnv(&c.SnapshotS3Key, "KOFID_SNAPSHOT_S3_KEY")

	if c.HTTPAddr == "" {
		c.HTTPAddr = ":8080"
	}
	if c.SnapshotS3Region == "" {
		c.SnapshotS3Region = "us-east-1"
	}
	if c.SnapshotS3Key == "" {
		c.SnapshotS3Key = "kofid/ledger.json"
	}

	var err error
	if c.DeliveryTimeout, err = envDuration("KOFID_DELIVERY_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if c.SnapshotInterval, err = envDuration("KOFID_SNAPSHOT_INTERVAL", 0); err != nil {
		return nil, err
	}

	return c, nil
}

// SummarySink returns the sink summaries are delivered to: the dedicated
// summary webhook when configured, otherwise the default sink.
func (c *Config) SummarySink() string {
	if c.WebhookSummary != "" {
		return c.WebhookSummary
	}
	return c.WebhookURL
}

// StoreConfigured reports whether any ledger store backend can be built
// from the configuration.
func (c *Config) StoreConfigured() bool {
	if c.DatabaseURL != "" {
		return true
	}
	return c.GistToken != "" && (c.GistURL != "" || c.GistID != "")
}

// ValidSinkURL reports whether s parses as an absolute http(s) URL.
func ValidSinkURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func setEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
