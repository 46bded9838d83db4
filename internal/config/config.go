package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all environment-driven settings. Domain data (categories,
// sectors, users, column names) lives in the YAML file at DomainPath.
type Config struct {
	HTTPPort      string
	DBPath        string
	DomainPath    string
	InboxDir      string
	EnableWatcher bool
	Environment   string

	Domain Domain
}

// Load reads configuration from environment and optional .env file, then
// overlays the domain YAML file when one exists.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		HTTPPort:      getenv("PORT", "8000"),
		DBPath:        getenv("DB_PATH", "./coverage.db"),
		DomainPath:    getenv("DOMAIN_CONFIG", "./domain.yaml"),
		InboxDir:      getenv("INBOX_DIR", "./inbox"),
		EnableWatcher: getenvBool("ENABLE_WATCHER", false),
		Environment:   getenv("ENVIRONMENT", "local"),
		Domain:        DefaultDomain(),
	}

	if domain, err := LoadDomain(cfg.DomainPath); err == nil {
		cfg.Domain = domain
	} else if !os.IsNotExist(err) {
		log.Printf("config: domain file %s: %v (using defaults)", cfg.DomainPath, err)
	}

	log.Printf("config: db=%s domain=%s env=%s", cfg.DBPath, cfg.DomainPath, cfg.Environment)
	return cfg
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// Now returns utc time helper for deterministic timestamps.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}
