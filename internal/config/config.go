package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures the runtime configuration for the application.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Content   ContentConfig
	Nutrition NutritionConfig
	Log       LogConfig
}

// ServerConfig configures the HTTP server runtime behavior.
type ServerConfig struct {
	Addr            string
	SessionLifetime time.Duration
	SessionCookie   string
	CookieDomain    string
	CookieSecure    bool
}

// DatabaseConfig contains the database connection settings.
type DatabaseConfig struct {
	URL             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// RedisConfig configures the cache-invalidation broadcast. An empty
// Addr disables the redis publisher.
type RedisConfig struct {
	Addr    string
	Channel string
}

// ContentConfig points at the headless content service serving the blog.
type ContentConfig struct {
	BaseURL  string
	Key      string
	CacheTTL time.Duration
}

// NutritionConfig points at the external nutrition facts API.
type NutritionConfig struct {
	BaseURL  string
	APIKey   string
	CacheTTL time.Duration
}

// LogConfig controls logging verbosity.
type LogConfig struct {
	Level string
}

// Load inspects the environment and builds a Config value.
func Load() (Config, error) {
	cfg := Config{}

	cfg.Server = ServerConfig{
		Addr: firstNonEmpty(
			os.Getenv("SERVER_ADDR"),
			os.Getenv("ADDR"),
			":8080",
		),
		SessionLifetime: parseDurationWithDefault(os.Getenv("SESSION_LIFETIME"), 12*time.Hour),
		SessionCookie:   firstNonEmpty(os.Getenv("SESSION_COOKIE"), "bakesub_session"),
		CookieDomain:    os.Getenv("SESSION_COOKIE_DOMAIN"),
		CookieSecure:    parseBoolWithDefault(os.Getenv("SESSION_COOKIE_SECURE"), false),
	}

	cfg.Database = DatabaseConfig{
		URL: firstNonEmpty(
			os.Getenv("DATABASE_URL"),
			os.Getenv("DB_URL"),
			"",
		),
		MaxIdleConns:    parseIntWithDefault(os.Getenv("DB_MAX_IDLE_CONNS"), 2),
		MaxOpenConns:    parseIntWithDefault(os.Getenv("DB_MAX_OPEN_CONNS"), 10),
		ConnMaxLifetime: parseDurationWithDefault(os.Getenv("DB_CONN_MAX_LIFETIME"), time.Hour),
		ConnMaxIdleTime: parseDurationWithDefault(os.Getenv("DB_CONN_MAX_IDLE_TIME"), 10*time.Minute),
	}

	cfg.Redis = RedisConfig{
		Addr:    os.Getenv("REDIS_ADDR"),
		Channel: firstNonEmpty(os.Getenv("REDIS_CHANNEL"), "bakesub:invalidate"),
	}

	cfg.Content = ContentConfig{
		BaseURL:  os.Getenv("CONTENT_API_URL"),
		Key:      os.Getenv("CONTENT_API_KEY"),
		CacheTTL: parseDurationWithDefault(os.Getenv("CONTENT_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Nutrition = NutritionConfig{
		BaseURL:  os.Getenv("NUTRITION_API_URL"),
		APIKey:   os.Getenv("NUTRITION_API_KEY"),
		CacheTTL: parseDurationWithDefault(os.Getenv("NUTRITION_CACHE_TTL"), 24*time.Hour),
	}

	cfg.Log = LogConfig{
		Level: firstNonEmpty(os.Getenv("LOG_LEVEL"), "info"),
	}

	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return Config{}, fmt.Errorf("server address must not be empty")
	}

	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func parseIntWithDefault(value string, def int) int {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return def
	}
	parsed, err := strconv.Atoi(trimmed)
	if err != nil {
		return def
	}
	return parsed
}

func parseDurationWithDefault(value string, def time.Duration) time.Duration {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return def
	}
	parsed, err := time.ParseDuration(trimmed)
	if err != nil {
		return def
	}
	return parsed
}

func parseBoolWithDefault(value string, def bool) bool {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return def
	}
	parsed, err := strconv.ParseBool(trimmed)
	if err != nil {
		return def
	}
	return parsed
}
