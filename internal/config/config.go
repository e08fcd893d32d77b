// Package config loads and validates process configuration.
//
// Settings come from environment variables (names kept compatible with the
// original deployment: DB_SERVER, TELEGRAM_BOT_TOKEN, ...) layered over an
// optional YAML file. Environment always wins. The resulting Config is
// immutable for the process lifetime.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	yaml "go.yaml.in/yaml/v3"
)

const (
	DriverSQLServer = "sqlserver"
	DriverMySQL     = "mysql"

	defaultView         = "your_view_name"
	defaultTable        = "your_table_name"
	defaultPollInterval = 30 * time.Second
	defaultLogFile      = "relaybot.log"
)

// Config is the validated set of connection and operational parameters.
type Config struct {
	Store    StoreConfig
	Telegram TelegramConfig
	Relay    RelayConfig
	Logging  LoggingConfig
	Report   ReportConfig
}

type StoreConfig struct {
	Driver   string
	Server   string
	Database string
	Username string
	Password string
	View     string
	Table    string
}

type TelegramConfig struct {
	Token      string
	ChatID     int64
	RatePerSec int
}

type RelayConfig struct {
	PollInterval time.Duration
}

type LoggingConfig struct {
	Level   string
	Console bool
	File    string
}

// ReportConfig controls the optional operator summary.
// Spec is a robfig/cron expression; empty disables the report.
type ReportConfig struct {
	Cron string
}

// MissingError enumerates every required setting that was absent.
type MissingError struct {
	Keys []string
}

func (e *MissingError) Error() string {
	return "missing required configuration: " + strings.Join(e.Keys, ", ")
}

// fileConfig mirrors the optional YAML file. All scalar values are strings
// so the environment overlay can treat both sources uniformly.
type fileConfig struct {
	Store struct {
		Driver   string `yaml:"driver"`
		Server   string `yaml:"server"`
		Database string `yaml:"database"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		View     string `yaml:"view"`
		Table    string `yaml:"table"`
	} `yaml:"store"`
	Telegram struct {
		Token      string `yaml:"token"`
		ChatID     string `yaml:"chat_id"`
		RatePerSec string `yaml:"rate_per_sec"`
	} `yaml:"telegram"`
	Relay struct {
		PollInterval string `yaml:"poll_interval"`
	} `yaml:"relay"`
	Logging struct {
		Level   string `yaml:"level"`
		Console *bool  `yaml:"console"`
		File    string `yaml:"file"`
	} `yaml:"logging"`
	Report struct {
		Cron string `yaml:"cron"`
	} `yaml:"report"`
}

// Load reads the optional YAML file at path (empty string skips it),
// overlays environment variables, applies defaults and validates.
// All missing required settings are reported in a single *MissingError.
func Load(path string) (Config, error) {
	var fc fileConfig
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	pick := func(env, fileVal string) string {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return v
		}
		return strings.TrimSpace(fileVal)
	}

	cfg := Config{
		Store: StoreConfig{
			Driver:   pick("DB_DRIVER", fc.Store.Driver),
			Server:   pick("DB_SERVER", fc.Store.Server),
			Database: pick("DB_DATABASE", fc.Store.Database),
			Username: pick("DB_USERNAME", fc.Store.Username),
			Password: pick("DB_PASSWORD", fc.Store.Password),
			View:     pick("DB_VIEW", fc.Store.View),
			Table:    pick("DB_TABLE", fc.Store.Table),
		},
		Logging: LoggingConfig{
			Level:   pick("LOG_LEVEL", fc.Logging.Level),
			Console: true,
			File:    pick("LOG_FILE", fc.Logging.File),
		},
		Report: ReportConfig{
			Cron: pick("REPORT_CRON", fc.Report.Cron),
		},
	}

	token := pick("TELEGRAM_BOT_TOKEN", fc.Telegram.Token)
	chatID := pick("TELEGRAM_CHAT_ID", fc.Telegram.ChatID)
	ratePerSec := pick("TELEGRAM_RATE_PER_SEC", fc.Telegram.RatePerSec)
	pollInterval := pick("POLL_INTERVAL", fc.Relay.PollInterval)

	var missing []string
	requireds := []struct {
		key, val string
	}{
		{"DB_SERVER", cfg.Store.Server},
		{"DB_DATABASE", cfg.Store.Database},
		{"DB_USERNAME", cfg.Store.Username},
		{"DB_PASSWORD", cfg.Store.Password},
		{"TELEGRAM_BOT_TOKEN", token},
		{"TELEGRAM_CHAT_ID", chatID},
	}
	for _, r := range requireds {
		if r.val == "" {
			missing = append(missing, r.key)
		}
	}
	if len(missing) > 0 {
		return Config{}, &MissingError{Keys: missing}
	}

	cfg.Telegram.Token = token
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return Config{}, fmt.Errorf("TELEGRAM_CHAT_ID %q is not a valid chat id: %w", chatID, err)
	}
	cfg.Telegram.ChatID = id

	cfg.Telegram.RatePerSec = 1
	if ratePerSec != "" {
		n, err := strconv.Atoi(ratePerSec)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("TELEGRAM_RATE_PER_SEC %q must be a positive integer", ratePerSec)
		}
		cfg.Telegram.RatePerSec = n
	}

	cfg.Relay.PollInterval = defaultPollInterval
	if pollInterval != "" {
		secs, err := strconv.Atoi(pollInterval)
		if err != nil || secs <= 0 {
			return Config{}, fmt.Errorf("POLL_INTERVAL %q must be a positive number of seconds", pollInterval)
		}
		cfg.Relay.PollInterval = time.Duration(secs) * time.Second
	}

	if cfg.Store.Driver == "" {
		cfg.Store.Driver = DriverSQLServer
	}
	switch cfg.Store.Driver {
	case DriverSQLServer, DriverMySQL:
	default:
		return Config{}, fmt.Errorf("DB_DRIVER %q is not supported (want %s or %s)", cfg.Store.Driver, DriverSQLServer, DriverMySQL)
	}
	if cfg.Store.View == "" {
		cfg.Store.View = defaultView
	}
	if cfg.Store.Table == "" {
		cfg.Store.Table = defaultTable
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if fc.Logging.Console != nil {
		cfg.Logging.Console = *fc.Logging.Console
	}
	if cfg.Logging.File == "" {
		cfg.Logging.File = defaultLogFile
	}

	return cfg, nil
}
