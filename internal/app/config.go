package app

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/yungbote/studybuddy-backend/internal/data/db"
	"github.com/yungbote/studybuddy-backend/internal/platform/envutil"
	"github.com/yungbote/studybuddy-backend/internal/platform/openai"
)

const (
	envDevelopment = "development"

	// defaultJWTSecret is only accepted when APP_ENV is development.
	defaultJWTSecret = "defaultsecret"
)

var errMissingJWTSecret = errors.New("JWT_SECRET_KEY must be set outside development")

type Config struct {
	Port        string
	LogMode     string
	Environment string
	FrontendURL string

	DatabaseURL string

	JWTSecretKey   string
	AccessTokenTTL time.Duration

	OpenAI openai.Config

	LeaderboardCacheTTL time.Duration

	ChatRatePerSecond float64
	ChatRateBurst     int

	ChatRetentionDays   int
	ChatCleanupSchedule string
}

// LoadEnv preloads a .env file when one exists. Real environment variables win.
func LoadEnv() {
	path := envutil.String("ENV_FILE", ".env")
	if _, err := os.Stat(path); err != nil {
		return
	}
	_ = godotenv.Load(path)
}

// LoadConfig reads the process environment. It fails when a non-development
// deploy would sign tokens with the built-in secret.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:        envutil.String("PORT", "3000"),
		LogMode:     envutil.String("LOG_MODE", envDevelopment),
		Environment: strings.ToLower(envutil.String("APP_ENV", envDevelopment)),
		FrontendURL: envutil.String("FRONTEND_URL", "http://localhost:3001"),

		DatabaseURL: db.DSNFromEnv(),

		JWTSecretKey:   envutil.String("JWT_SECRET_KEY", defaultJWTSecret),
		AccessTokenTTL: envutil.Seconds("ACCESS_TOKEN_TTL", 24*time.Hour),

		OpenAI: openai.ConfigFromEnv(),

		LeaderboardCacheTTL: envutil.Seconds("LEADERBOARD_CACHE_TTL_SECONDS", time.Minute),

		ChatRatePerSecond: envutil.Float("CHAT_RATE_PER_SECOND", 1),
		ChatRateBurst:     envutil.Int("CHAT_RATE_BURST", 5),

		ChatRetentionDays:   envutil.Int("CHAT_RETENTION_DAYS", 0),
		ChatCleanupSchedule: envutil.String("CHAT_CLEANUP_SCHEDULE", "0 3 * * *"),
	}
	if cfg.UsesDefaultJWTSecret() && cfg.Environment != envDevelopment {
		return Config{}, errMissingJWTSecret
	}
	return cfg, nil
}

func (c Config) UsesDefaultJWTSecret() bool {
	return c.JWTSecretKey == defaultJWTSecret
}
