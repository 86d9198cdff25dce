package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"guardians/internal/config"
	"guardians/internal/db"
	"guardians/internal/game"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadSimFromEnv()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	content, err := game.LoadContent(cfg.ContentPath)
	if err != nil {
		logger.Error("load content failed", "err", err)
		os.Exit(1)
	}
	results, err := db.Open(ctx, cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		logger.Error("results store open failed", "err", err)
		os.Exit(1)
	}
	defer results.Close()

	rules := game.DefaultRules()
	rules.EndgameBadges = cfg.EndgameBadges
	seed := cfg.Seed

	run := func() {
		summary, err := runBatch(ctx, content, rules, seed, cfg.Games, cfg.Days, results)
		if err != nil {
			logger.Error("simulation batch failed", "err", err)
			return
		}
		logger.Info("simulation batch complete",
			"games", summary.Games,
			"finished", summary.Finished,
			"mean_value", summary.MeanValue,
			"median_value", summary.MedianValue,
			"best_value", summary.BestValue,
			"mean_days", summary.MeanDays,
		)
		if seed != 0 {
			seed += int64(cfg.Games)
		}
	}

	if cfg.RunOnce {
		run()
		return
	}

	ticker := time.NewTicker(cfg.Every)
	defer ticker.Stop()

	logger.Info("simulator started", "every", cfg.Every.String(), "games", cfg.Games, "days", cfg.Days)
	run()
	for {
		select {
		case <-ctx.Done():
			logger.Info("simulator shutdown")
			return
		case <-ticker.C:
			run()
		}
	}
}
