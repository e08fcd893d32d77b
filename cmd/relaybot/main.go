package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/coreos/go-systemd/v22/daemon"

	"relaybot/internal/config"
	"relaybot/internal/relay"
	"relaybot/internal/store"
	"relaybot/internal/telegram"
	"relaybot/pkg/logx"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "path to optional yaml config (environment overrides it)")
	flag.Parse()

	if err := run(cfgPath); err != nil {
		fmt.Println("fatal:", err)
		os.Exit(1)
	}
}

func run(cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	log, logCloser, err := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File:    logx.FileConfig{Enabled: cfg.Logging.File != "", Path: cfg.Logging.File},
	})
	if err != nil {
		return err
	}
	defer logCloser.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	notifier, err := telegram.New(cfg.Telegram, log.With(logx.String("component", "telegram")))
	if err != nil {
		return fmt.Errorf("telegram setup: %w", err)
	}

	st := store.New(cfg.Store, log.With(logx.String("component", "store")))
	rel := relay.New(st, st, notifier,
		log.With(logx.String("component", "relay")),
		relay.Options{PollInterval: cfg.Relay.PollInterval})

	if cfg.Report.Cron != "" {
		rep := relay.NewReporter(rel, notifier, log.With(logx.String("component", "report")))
		if err := rep.Start(cfg.Report.Cron); err != nil {
			return fmt.Errorf("summary report setup: %w", err)
		}
		defer rep.Stop()
	}

	// Best-effort; no-ops when not running under systemd.
	_, _ = daemon.SdNotify(false, daemon.SdNotifyReady)
	defer func() { _, _ = daemon.SdNotify(false, daemon.SdNotifyStopping) }()

	return rel.Run(ctx)
}
