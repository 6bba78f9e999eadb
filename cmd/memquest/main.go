package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/dawnhollow/memquest/internal/config"
	"github.com/dawnhollow/memquest/internal/ingest"
	"github.com/dawnhollow/memquest/internal/progression"
	"github.com/dawnhollow/memquest/internal/session"
	"github.com/dawnhollow/memquest/internal/storage"
	"github.com/dawnhollow/memquest/internal/web"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	flags := flag.NewFlagSet("memquest", flag.ExitOnError)
	configPath := flags.String("config", "memquest.yaml", "Path to the YAML config file")
	flags.String("addr", "", "Listen address (overrides config)")
	flags.String("db_path", "", "Path to the SQLite database file (overrides config)")
	if err := flags.Parse(os.Args[1:]); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath, flags)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	sessions, err := session.NewCache(cfg.SessionSize)
	if err != nil {
		return fmt.Errorf("building session cache: %w", err)
	}

	ingestor := ingest.NewIngestor(db, cfg.MaxQuestLen)
	engine := progression.NewEngine(db, &progression.Config{
		AcquireXP:      cfg.Progression.AcquireXP,
		ReviewBaseXP:   cfg.Progression.ReviewBaseXP,
		ReviewLevelXP:  cfg.Progression.ReviewLevelXP,
		AbbrevCreateXP: cfg.Progression.AbbrevCreateXP,
		AbbrevRepeatXP: cfg.Progression.AbbrevRepeatXP,
		MnemonicLevel:  cfg.Progression.MnemonicLevel,
		LegendChance:   cfg.Progression.LegendChance,
		RareChance:     cfg.Progression.RareChance,
		RareLevel:      cfg.Progression.RareLevel,
		LegendLevel:    cfg.Progression.LegendLevel,
	}, nil)

	server := web.NewServer(db, ingestor, engine, sessions)
	slog.Info("listening", "addr", cfg.Addr)
	return http.ListenAndServe(cfg.Addr, server)
}
