package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"nfl-pickem-go/logging"
	"nfl-pickem-go/models"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig `json:"server"`

	// Database configuration
	Database DatabaseConfig `json:"database"`

	// Logging configuration
	Logging LoggingConfig `json:"logging"`

	// Scoreboard API configuration
	Scoreboard ScoreboardConfig `json:"scoreboard"`

	// Application configuration
	App AppConfig `json:"app"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port string `json:"port"`
	Host string `json:"host"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string        `json:"host"`
	Port     string        `json:"port"`
	Username string        `json:"username"`
	Password string        `json:"password"`
	Database string        `json:"database"`
	Timeout  time.Duration `json:"timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level       string `json:"level"`
	Prefix      string `json:"prefix"`
	EnableColor bool   `json:"enable_color"`
}

// ScoreboardConfig holds scoreboard API configuration
type ScoreboardConfig struct {
	BaseURL string        `json:"base_url"`
	Timeout time.Duration `json:"timeout"`
	LiveTTL time.Duration `json:"live_ttl"` // cache TTL while games are in progress
	IdleTTL time.Duration `json:"idle_ttl"` // cache TTL while no games are live
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	DefaultYear      int    `json:"default_year"`
	DefaultSeason    string `json:"default_season"` // "pre" | "reg" | "post"
	DefaultWeek      int    `json:"default_week"`
	MaxWeeks         int    `json:"max_weeks"`
	SchedulerEnabled bool   `json:"scheduler_enabled"`
	CronSpec         string `json:"cron_spec"`
	CronTimezone     string `json:"cron_timezone"`
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Don't treat missing .env as an error
		logging.Debugf("Could not load .env file: %v", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "27017"),
			Username: getEnv("DB_USERNAME", "pickem"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "pickem"),
			Timeout:  getDurationEnv("DB_TIMEOUT", 10*time.Second),
		},
		Logging: LoggingConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Prefix:      getEnv("LOG_PREFIX", "pickem"),
			EnableColor: getBoolEnv("LOG_COLOR", true),
		},
		Scoreboard: ScoreboardConfig{
			BaseURL: getEnv("SCOREBOARD_URL", "https://site.api.espn.com/apis/site/v2/sports/football/nfl/scoreboard"),
			Timeout: getDurationEnv("SCOREBOARD_TIMEOUT", 10*time.Second),
			LiveTTL: getDurationEnv("SCOREBOARD_LIVE_TTL", 30*time.Second),
			IdleTTL: getDurationEnv("SCOREBOARD_IDLE_TTL", 10*time.Minute),
		},
		App: AppConfig{
			DefaultYear:      getIntEnv("DEFAULT_YEAR", 2025),
			DefaultSeason:    strings.ToLower(getEnv("DEFAULT_SEASON", models.SeasonReg)),
			DefaultWeek:      getIntEnv("DEFAULT_WEEK", 1),
			MaxWeeks:         getIntEnv("MAX_WEEKS", 18),
			SchedulerEnabled: getBoolEnv("SCHEDULER_ENABLED", true),
			CronSpec:         getEnv("SCHEDULER_CRON", "0 2 * * TUE"),
			CronTimezone:     getEnv("SCHEDULER_TIMEZONE", "America/New_York"),
		},
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration for required fields and sensible values
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.Port == "" {
		return fmt.Errorf("database port is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Scoreboard.BaseURL == "" {
		return fmt.Errorf("scoreboard base URL is required")
	}

	switch c.App.DefaultSeason {
	case models.SeasonPre, models.SeasonReg, models.SeasonPost:
	default:
		return fmt.Errorf("default season must be one of pre/reg/post, got: %s", c.App.DefaultSeason)
	}

	if c.App.DefaultYear < 2020 || c.App.DefaultYear > 2030 {
		return fmt.Errorf("default year must be between 2020 and 2030, got: %d", c.App.DefaultYear)
	}

	if c.App.MaxWeeks < 1 {
		return fmt.Errorf("max weeks must be positive, got: %d", c.App.MaxWeeks)
	}

	return nil
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return c.Server.Host + ":" + c.Server.Port
}

// GetMongoURI returns the MongoDB connection URI
func (c *Config) GetMongoURI() string {
	if c.Database.Username != "" && c.Database.Password != "" {
		return fmt.Sprintf("mongodb://%s:%s@%s:%s/%s?authSource=%s",
			c.Database.Username, c.Database.Password,
			c.Database.Host, c.Database.Port,
			c.Database.Database, c.Database.Database)
	}
	return fmt.Sprintf("mongodb://%s:%s/%s",
		c.Database.Host, c.Database.Port, c.Database.Database)
}

// LogConfiguration logs the current configuration (without sensitive data)
func (c *Config) LogConfiguration() {
	logging.Info("=== Application Configuration ===")
	logging.Infof("Server: %s", c.GetServerAddress())
	logging.Infof("Database: %s:%s/%s (Username: %s, Auth: %t)",
		c.Database.Host, c.Database.Port, c.Database.Database,
		c.Database.Username, c.Database.Password != "")
	logging.Infof("Logging: Level=%s, Prefix=%s, Color=%t",
		c.Logging.Level, c.Logging.Prefix, c.Logging.EnableColor)
	logging.Infof("Scoreboard: URL=%s, Timeout=%v, LiveTTL=%v, IdleTTL=%v",
		c.Scoreboard.BaseURL, c.Scoreboard.Timeout, c.Scoreboard.LiveTTL, c.Scoreboard.IdleTTL)
	logging.Infof("App: Year=%d, Season=%s, MaxWeeks=%d, Scheduler=%t (%s %s)",
		c.App.DefaultYear, c.App.DefaultSeason, c.App.MaxWeeks,
		c.App.SchedulerEnabled, c.App.CronSpec, c.App.CronTimezone)
	logging.Info("================================")
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
