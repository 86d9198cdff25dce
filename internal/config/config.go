package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type APIConfig struct {
	Addr           string
	DatabaseURL    string
	SQLitePath     string
	ContentPath    string
	Seed           int64
	SummaryDelay   time.Duration
	SessionTTL     time.Duration
	SweepSchedule  string
	AdvisorURL     string
	AdvisorKey     string
	AdvisorTimeout time.Duration
	EndgameBadges  int
	LogLevel       slog.Level
}

type CLIConfig struct {
	APIBaseURL string
}

type SimConfig struct {
	APIConfig
	Games   int
	Days    int
	RunOnce bool
	Every   time.Duration
}

// loadDotEnv pulls a local .env into the process environment when one exists.
func loadDotEnv() {
	_ = godotenv.Load()
}

func LoadAPIFromEnv() (APIConfig, error) {
	loadDotEnv()

	addr := os.Getenv("PORT")
	if addr != "" {
		if !strings.HasPrefix(addr, ":") {
			addr = ":" + addr
		}
	} else {
		addr = envDefault("GUARDIANS_API_ADDR", ":8080")
	}

	cfg := APIConfig{
		Addr:           addr,
		DatabaseURL:    strings.TrimSpace(os.Getenv("DATABASE_URL")),
		SQLitePath:     strings.TrimSpace(os.Getenv("GUARDIANS_SQLITE_PATH")),
		ContentPath:    strings.TrimSpace(os.Getenv("GUARDIANS_CONTENT_PATH")),
		Seed:           envInt64Default("GUARDIANS_SEED", 0),
		SummaryDelay:   envDurationDefault("GUARDIANS_SUMMARY_DELAY", 2500*time.Millisecond),
		SessionTTL:     envDurationDefault("GUARDIANS_SESSION_TTL", 2*time.Hour),
		SweepSchedule:  envDefault("GUARDIANS_SWEEP_CRON", "@every 10m"),
		AdvisorURL:     strings.TrimSpace(os.Getenv("GUARDIANS_ADVISOR_URL")),
		AdvisorKey:     strings.TrimSpace(os.Getenv("GUARDIANS_ADVISOR_KEY")),
		AdvisorTimeout: envDurationDefault("GUARDIANS_ADVISOR_TIMEOUT", 20*time.Second),
		EndgameBadges:  int(envInt64Default("GUARDIANS_ENDGAME_BADGES", 0)),
		LogLevel:       envLevelDefault("GUARDIANS_LOG_LEVEL", slog.LevelInfo),
	}
	if cfg.SessionTTL <= 0 {
		return cfg, fmt.Errorf("GUARDIANS_SESSION_TTL must be positive")
	}
	if cfg.EndgameBadges < 0 {
		return cfg, fmt.Errorf("GUARDIANS_ENDGAME_BADGES must not be negative")
	}
	return cfg, nil
}

func LoadCLIFromEnv() CLIConfig {
	loadDotEnv()
	return CLIConfig{
		APIBaseURL: strings.TrimRight(envDefault("GUARDIANS_API_BASE_URL", "http://localhost:8080"), "/"),
	}
}

func LoadSimFromEnv() (SimConfig, error) {
	api, err := LoadAPIFromEnv()
	if err != nil {
		return SimConfig{}, err
	}
	cfg := SimConfig{
		APIConfig: api,
		Games:     int(envInt64Default("GUARDIANS_SIM_GAMES", 20)),
		Days:      int(envInt64Default("GUARDIANS_SIM_DAYS", 60)),
		RunOnce:   envBoolDefault("GUARDIANS_SIM_RUN_ONCE", true),
		Every:     envDurationDefault("GUARDIANS_SIM_EVERY", time.Hour),
	}
	if cfg.Games <= 0 || cfg.Days <= 0 {
		return cfg, fmt.Errorf("GUARDIANS_SIM_GAMES and GUARDIANS_SIM_DAYS must be positive")
	}
	return cfg, nil
}

func envDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envDurationDefault(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envInt64Default(key string, fallback int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func envBoolDefault(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envLevelDefault(key string, fallback slog.Level) slog.Level {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(v)); err != nil {
		return fallback
	}
	return level
}
