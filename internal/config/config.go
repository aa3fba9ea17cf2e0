package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

type Config struct {
	Port    string
	Storage string
	DBDSN   string
	LogFile string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	ReportCron string
	ReportDir  string
	Timezone   string
}

// Load reads the environment, optionally seeded from a .env file in the
// working directory. A missing .env file is fine.
func Load() (Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getenv("REDIS_DB", "0"))
	if err != nil {
		return Config{}, fmt.Errorf("REDIS_DB: %w", err)
	}

	cfg := Config{
		Port:          getenv("PORT", "8080"),
		Storage:       getenv("STORAGE", StorageSQLite),
		DBDSN:         getenv("DB_DSN", "goldengate.db"), // sqlite file in project root
		LogFile:       os.Getenv("LOG_FILE"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,
		RedisPrefix:   getenv("REDIS_PREFIX", "goldengate"),
		ReportCron:    os.Getenv("REPORT_CRON"),
		ReportDir:     getenv("REPORT_DIR", "./reports"),
		Timezone:      getenv("TIMEZONE", "America/Bogota"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT must not be empty")
	}
	switch c.Storage {
	case StorageSQLite:
		if c.DBDSN == "" {
			return errors.New("DB_DSN must be provided for sqlite storage")
		}
	case StorageRedis:
		if c.RedisAddr == "" {
			return errors.New("REDIS_ADDR must be provided for redis storage")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown STORAGE %q", c.Storage)
	}
	if c.ReportCron != "" && c.ReportDir == "" {
		return errors.New("REPORT_DIR must be provided when REPORT_CRON is set")
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
