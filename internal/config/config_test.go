package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// clearEnv blanks every KOFID_ variable the loader reads so ambient
// environment never leaks into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"KOFID_CONFIG_FILE", "KOFID_HTTP_ADDR", "KOFID_KOFI_TOKEN",
		"KOFID_KOFI_USERNAME", "KOFID_WEBHOOK_URL", "KOFID_WEBHOOK_SUBSCRIPTIONS",
		"KOFID_WEBHOOK_DONATIONS", "KOFID_WEBHOOK_ALERTS", "KOFID_WEBHOOK_SUMMARY",
		"KOFID_SUMMARY_TOKEN", "KOFID_CRON_SECRET", "KOFID_GIST_URL",
		"KOFID_GIST_ID", "KOFID_GIST_TOKEN", "KOFID_DATABASE_URL",
		"KOFID_NATS_URL", "KOFID_DELIVERY_TIMEOUT", "KOFID_SNAPSHOT_INTERVAL",
		"KOFID_SNAPSHOT_S3_BUCKET", "KOFID_SNAPSHOT_S3_ENDPOINT",
		"KOFID_SNAPSHOT_S3_REGION", "KOFID_SNAPSHOT_S3_KEY",
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	c, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if c.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q", c.HTTPAddr)
	}
	if c.DeliveryTimeout != 10*time.Second {
		t.Errorf("DeliveryTimeout = %v", c.DeliveryTimeout)
	}
	if c.SnapshotInterval != 0 {
		t.Errorf("SnapshotInterval = %v", c.SnapshotInterval)
	}
	if c.SnapshotS3Region != "us-east-1" {
		t.Errorf("SnapshotS3Region = %q", c.SnapshotS3Region)
	}
	if c.SnapshotS3Key != "kofid/ledger.json" {
		t.Errorf("SnapshotS3Key = %q", c.SnapshotS3Key)
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("KOFID_HTTP_ADDR", ":9999")
	t.Setenv("KOFID_KOFI_TOKEN", "tok")
	t.Setenv("KOFID_WEBHOOK_URL", "https://discord.example/hook")
	t.Setenv("KOFID_DELIVERY_TIMEOUT", "3s")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if c.HTTPAddr != ":9999" || c.KofiToken != "tok" {
		t.Errorf("config = %+v", c)
	}
	if c.WebhookURL != "https://discord.example/hook" {
		t.Errorf("WebhookURL = %q", c.WebhookURL)
	}
	if c.DeliveryTimeout != 3*time.Second {
		t.Errorf("DeliveryTimeout = %v", c.DeliveryTimeout)
	}
}

func TestLoadTOMLFileWithEnvOverride(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "kofid.toml")
	content := `
kofi_token = "file-token"
webhook_url = "https://discord.example/from-file"
summary_token = "file-summary"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	t.Setenv("KOFID_CONFIG_FILE", path)
	t.Setenv("KOFID_KOFI_TOKEN", "env-token")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if c.KofiToken != "env-token" {
		t.Errorf("env should override file, KofiToken = %q", c.KofiToken)
	}
	if c.WebhookURL != "https://discord.example/from-file" {
		t.Errorf("WebhookURL = %q", c.WebhookURL)
	}
	if c.SummaryToken != "file-summary" {
		t.Errorf("SummaryToken = %q", c.SummaryToken)
	}
}

func TestLoadBadDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("KOFID_DELIVERY_TIMEOUT", "not-a-duration")

	if _, err := Load(); err == nil {
		t.Error("Load with malformed duration = nil error, want error")
	}
}

func TestSummarySink(t *testing.T) {
	c := &Config{WebhookURL: "https://discord.example/default"}
	if got := c.SummarySink(); got != c.WebhookURL {
		t.Errorf("SummarySink = %q, want default sink", got)
	}

	c.WebhookSummary = "https://discord.example/summary"
	if got := c.SummarySink(); got != c.WebhookSummary {
		t.Errorf("SummarySink = %q, want dedicated sink", got)
	}
}

func TestStoreConfigured(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want bool
	}{
		{"empty", Config{}, false},
		{"database url", Config{DatabaseURL: "postgres://localhost/kofid"}, true},
		{"gist token and id", Config{GistToken: "tok", GistID: "deadbeef"}, true},
		{"gist token and url", Config{GistToken: "tok", GistURL: "https://gist.github.com/u/deadbeef"}, true},
		{"gist token only", Config{GistToken: "tok"}, false},
		{"gist id only", Config{GistID: "deadbeef"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.StoreConfigured(); got != tt.want {
				t.Errorf("StoreConfigured() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidSinkURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://discord.com/api/webhooks/1/abc", true},
		{"http://localhost:8080/hook", true},
		{"", false},
		{"discord.com/api/webhooks/1/abc", false},
		{"ftp://discord.com/hook", false},
		{"https://", false},
	}
	for _, tt := range tests {
		if got := ValidSinkURL(tt.url); got != tt.want {
			t.Errorf("ValidSinkURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}
