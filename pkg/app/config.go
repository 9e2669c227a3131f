package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-pg/pg/v10"
)

type Config struct {
	Database *pg.Options
	Server   struct {
		Host    string
		Port    int
		IsDevel bool
	}
	Telegram struct {
		Token string
		Debug bool
	}
	Gemini struct {
		APIKey     string
		TextModel  string
		ImageModel string
	}
	Bot struct {
		Admins          []int64
		AllowedChatID   int64
		DefaultCurrency string
		WeekStart       int // time.Weekday, 0 = Sunday
		TimeZone        string
	}
	Sentry struct {
		Environment string
		DSN         string
	}
	Prometheus struct {
		URL string
	}
}

// LoadConfig reads the configuration from environment variables.
func LoadConfig() (Config, error) {
	var cfg Config

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return cfg, fmt.Errorf("DATABASE_URL is required")
	}
	opts, err := pg.ParseURL(dbURL)
	if err != nil {
		return cfg, fmt.Errorf("invalid DATABASE_URL: %w", err)
	}
	cfg.Database = opts

	cfg.Server.Host = getEnv("SERVER_HOST", "0.0.0.0")
	cfg.Server.Port, err = getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return cfg, err
	}
	cfg.Server.IsDevel = getEnvBool("DEVEL")

	cfg.Telegram.Token = os.Getenv("TELEGRAM_TOKEN")
	cfg.Telegram.Debug = getEnvBool("TELEGRAM_DEBUG")

	cfg.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	cfg.Gemini.TextModel = os.Getenv("GEMINI_TEXT_MODEL")
	cfg.Gemini.ImageModel = os.Getenv("GEMINI_IMAGE_MODEL")

	cfg.Bot.Admins, err = parseIDList(os.Getenv("BOT_ADMINS"))
	if err != nil {
		return cfg, fmt.Errorf("invalid BOT_ADMINS: %w", err)
	}
	cfg.Bot.AllowedChatID, err = getEnvInt64("BOT_ALLOWED_CHAT_ID", 0)
	if err != nil {
		return cfg, err
	}
	cfg.Bot.DefaultCurrency = getEnv("BOT_CURRENCY", "₽")
	cfg.Bot.WeekStart, err = getEnvInt("BOT_WEEK_START", 1) // Monday
	if err != nil {
		return cfg, err
	}
	cfg.Bot.TimeZone = getEnv("BOT_TIMEZONE", "Europe/Moscow")

	cfg.Sentry.DSN = os.Getenv("SENTRY_DSN")
	cfg.Sentry.Environment = getEnv("SENTRY_ENVIRONMENT", "production")

	cfg.Prometheus.URL = os.Getenv("PROMETHEUS_URL")

	return cfg, cfg.Validate()
}

// Validate checks that the configuration is internally consistent.
func (c Config) Validate() error {
	if c.Database == nil {
		return fmt.Errorf("database configuration is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Bot.WeekStart < 0 || c.Bot.WeekStart > 6 {
		return fmt.Errorf("BOT_WEEK_START must be 0..6, got %d", c.Bot.WeekStart)
	}
	if c.Bot.DefaultCurrency == "" {
		return fmt.Errorf("BOT_CURRENCY must not be empty")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvInt64(key string, def int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// parseIDList parses a comma-separated list of telegram ids.
func parseIDList(s string) ([]int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, nil
}
