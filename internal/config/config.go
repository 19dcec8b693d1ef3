package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/irail-collector/internal/pkg/validator"
	"github.com/spf13/viper"
)

type Config struct {
	Database  DatabaseConfig
	Redis     RedisConfig
	Collector CollectorConfig
	Log       LogConfig
}

type DatabaseConfig struct {
	Host            string `validate:"required"`
	Port            int    `validate:"required,min=1,max=65535"`
	User            string `validate:"required"`
	Password        string
	DBName          string `validate:"required"`
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CollectorConfig struct {
	BaseURL        string        `validate:"required,url"`
	UserAgent      string        `validate:"required"`
	RequestTimeout time.Duration `validate:"required"`
	StationTimeout time.Duration `validate:"required"`
	Concurrency    int           `validate:"min=1"`
	Stations       []string
	LockEnabled    bool
	LockTTL        time.Duration
}

type LogConfig struct {
	Level string
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	// .env is optional: a cron deployment usually configures the
	// collector through plain environment variables.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			DBName:          viper.GetString("DB_NAME"),
			SSLMode:         viper.GetString("DB_SSLMODE"),
			MaxConns:        viper.GetInt("DB_MAX_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(viper.GetInt("DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(viper.GetInt("DB_CONN_MAX_IDLE_TIME")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetInt("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Collector: CollectorConfig{
			BaseURL:        viper.GetString("IRAIL_BASE_URL"),
			UserAgent:      viper.GetString("IRAIL_USER_AGENT"),
			RequestTimeout: time.Duration(viper.GetInt("IRAIL_REQUEST_TIMEOUT")) * time.Second,
			StationTimeout: time.Duration(viper.GetInt("COLLECTOR_STATION_TIMEOUT")) * time.Second,
			Concurrency:    viper.GetInt("COLLECTOR_CONCURRENCY"),
			Stations:       parseStations(viper.GetString("COLLECTOR_STATIONS")),
			LockEnabled:    viper.GetBool("COLLECTOR_LOCK_ENABLED"),
			LockTTL:        time.Duration(viper.GetInt("COLLECTOR_LOCK_TTL")) * time.Second,
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
	}

	// Set default values if not provided
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "require"
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Collector.BaseURL == "" {
		cfg.Collector.BaseURL = "https://api.irail.be"
	}
	if cfg.Collector.UserAgent == "" {
		cfg.Collector.UserAgent = "irail-collector/1.0 (departure data pipeline)"
	}
	if cfg.Collector.RequestTimeout == 0 {
		cfg.Collector.RequestTimeout = 10 * time.Second
	}
	if cfg.Collector.StationTimeout == 0 {
		cfg.Collector.StationTimeout = 2 * time.Minute
	}
	if cfg.Collector.Concurrency == 0 {
		cfg.Collector.Concurrency = 4
	}
	if cfg.Collector.LockTTL == 0 {
		cfg.Collector.LockTTL = 5 * time.Minute
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	if err := validator.Validate(cfg.Collector); err != nil {
		return nil, fmt.Errorf("invalid collector config: %w", err)
	}
	if err := validator.Validate(cfg.Database); err != nil {
		return nil, fmt.Errorf("invalid database config: %w", err)
	}

	return cfg, nil
}

// parseStations разбирает список станций из COLLECTOR_STATIONS
// ("Brussels-Central,Antwerp-Central"). Пустая строка - пустой список,
// вызывающая сторона подставляет реестр по умолчанию.
func parseStations(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
