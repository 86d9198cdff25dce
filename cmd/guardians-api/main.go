package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"guardians/internal/advisor"
	"guardians/internal/api"
	"guardians/internal/config"
	"guardians/internal/db"
	"guardians/internal/game"

	"github.com/robfig/cron/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadAPIFromEnv()
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

	var adv game.Advisor = advisor.NewLocal(content)
	if cfg.AdvisorURL != "" {
		adv = advisor.NewHTTP(cfg.AdvisorURL, cfg.AdvisorKey, cfg.AdvisorTimeout)
	}

	rules := game.DefaultRules()
	rules.EndgameBadges = cfg.EndgameBadges
	gameSvc := game.NewService(content, logger, game.ServiceOptions{
		Rules:          rules,
		Seed:           cfg.Seed,
		SummaryDelay:   cfg.SummaryDelay,
		AdvisorTimeout: cfg.AdvisorTimeout,
		Advisor:        adv,
		Results:        results,
	})

	sweeper := cron.New()
	if _, err := sweeper.AddFunc(cfg.SweepSchedule, func() {
		gameSvc.Sweep(cfg.SessionTTL)
	}); err != nil {
		logger.Error("register session sweeper failed", "schedule", cfg.SweepSchedule, "err", err)
		os.Exit(1)
	}
	sweeper.Start()
	defer sweeper.Stop()

	server := api.New(logger, gameSvc, results)
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("guardians api listening", "addr", cfg.Addr, "session_ttl", cfg.SessionTTL.String())
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}
