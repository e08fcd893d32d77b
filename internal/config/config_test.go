package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// clearEnv blanks every setting the loader reads so ambient environment
// can't leak into tests.
func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"DB_DRIVER", "DB_SERVER", "DB_DATABASE", "DB_USERNAME", "DB_PASSWORD",
		"DB_VIEW", "DB_TABLE", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID",
		"TELEGRAM_RATE_PER_SEC", "POLL_INTERVAL", "LOG_LEVEL", "LOG_FILE",
		"REPORT_CRON",
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DB_SERVER", "db.internal:1433")
	t.Setenv("DB_DATABASE", "ops")
	t.Setenv("DB_USERNAME", "relay")
	t.Setenv("DB_PASSWORD", "hunter2")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", "-1001234567890")
}

func TestLoadMissingRequiredNamesEveryKey(t *testing.T) {
	clearEnv(t)

	_, err := Load("")
	if err == nil {
		t.Fatal("expected error for empty configuration")
	}
	var missing *MissingError
	if !errors.As(err, &missing) {
		t.Fatalf("expected *MissingError, got %T: %v", err, err)
	}
	want := []string{
		"DB_SERVER", "DB_DATABASE", "DB_USERNAME", "DB_PASSWORD",
		"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID",
	}
	if len(missing.Keys) != len(want) {
		t.Fatalf("missing keys = %v, want %v", missing.Keys, want)
	}
	for i, k := range want {
		if missing.Keys[i] != k {
			t.Fatalf("missing keys = %v, want %v", missing.Keys, want)
		}
	}
}

func TestLoadPartiallyMissing(t *testing.T) {
	clearEnv(t)
	setRequired(t)
	t.Setenv("DB_PASSWORD", "")
	t.Setenv("TELEGRAM_BOT_TOKEN", "")

	_, err := Load("")
	var missing *MissingError
	if !errors.As(err, &missing) {
		t.Fatalf("expected *MissingError, got %v", err)
	}
	got := strings.Join(missing.Keys, ",")
	if got != "DB_PASSWORD,TELEGRAM_BOT_TOKEN" {
		t.Fatalf("missing keys = %q", got)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	setRequired(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Driver != DriverSQLServer {
		t.Fatalf("driver = %q, want %q", cfg.Store.Driver, DriverSQLServer)
	}
	if cfg.Store.View != defaultView || cfg.Store.Table != defaultTable {
		t.Fatalf("view/table = %q/%q, want defaults", cfg.Store.View, cfg.Store.Table)
	}
	if cfg.Relay.PollInterval != 30*time.Second {
		t.Fatalf("poll interval = %v, want 30s", cfg.Relay.PollInterval)
	}
	if cfg.Telegram.ChatID != -1001234567890 {
		t.Fatalf("chat id = %d", cfg.Telegram.ChatID)
	}
	if cfg.Telegram.RatePerSec != 1 {
		t.Fatalf("rate per sec = %d, want 1", cfg.Telegram.RatePerSec)
	}
	if cfg.Logging.Level != "info" || !cfg.Logging.Console || cfg.Logging.File != defaultLogFile {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if cfg.Report.Cron != "" {
		t.Fatalf("report cron = %q, want disabled", cfg.Report.Cron)
	}
}

func TestLoadInvalidValues(t *testing.T) {
	cases := []struct {
		name string
		key  string
		val  string
	}{
		{name: "chat id", key: "TELEGRAM_CHAT_ID", val: "not-a-number"},
		{name: "poll interval", key: "POLL_INTERVAL", val: "zero"},
		{name: "negative interval", key: "POLL_INTERVAL", val: "-5"},
		{name: "driver", key: "DB_DRIVER", val: "oracle"},
		{name: "rate", key: "TELEGRAM_RATE_PER_SEC", val: "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			setRequired(t)
			t.Setenv(tc.key, tc.val)
			if _, err := Load(""); err == nil {
				t.Fatalf("expected error for %s=%q", tc.key, tc.val)
			}
		})
	}
}

func TestLoadPollIntervalSeconds(t *testing.T) {
	clearEnv(t)
	setRequired(t)
	t.Setenv("POLL_INTERVAL", "5")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Relay.PollInterval != 5*time.Second {
		t.Fatalf("poll interval = %v, want 5s", cfg.Relay.PollInterval)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "relaybot.yaml")
	body := `
store:
  driver: mysql
  server: file-host:3306
  database: file-db
  username: file-user
  password: file-pass
  view: file_view
telegram:
  token: file-token
  chat_id: "42"
relay:
  poll_interval: "60"
logging:
  console: false
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("DB_SERVER", "env-host:1433")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Server != "env-host:1433" {
		t.Fatalf("server = %q, want env value", cfg.Store.Server)
	}
	if cfg.Store.Database != "file-db" || cfg.Store.View != "file_view" {
		t.Fatalf("file values not applied: %+v", cfg.Store)
	}
	if cfg.Store.Driver != DriverMySQL {
		t.Fatalf("driver = %q, want mysql", cfg.Store.Driver)
	}
	if cfg.Telegram.ChatID != 42 {
		t.Fatalf("chat id = %d, want 42", cfg.Telegram.ChatID)
	}
	if cfg.Relay.PollInterval != time.Minute {
		t.Fatalf("poll interval = %v, want 1m", cfg.Relay.PollInterval)
	}
	if cfg.Logging.Console {
		t.Fatal("console = true, want disabled by file")
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	setRequired(t)
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
