package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultDBPath            = "./dev.db"
	defaultPort              = "8080"
	defaultAppEnv            = "dev"
	defaultInterestRate      = 10.0
	defaultProjectLife       = 10
	defaultGeminiModel       = "gemini-2.0-flash"
	defaultNarrativeCacheTTL = 24 * time.Hour
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	AdminEmail    string
	AdminPassword string
	SessionSecret string
	DBPath        string
	Port          string
	AppEnv        string

	// CatalogPath optionally points at a YAML factor catalog replacing the built-in one.
	CatalogPath string
	// DefaultInterestRate prefills rate fields, in percent.
	DefaultInterestRate float64
	DefaultProjectLife  int

	GeminiAPIKey      string
	GeminiModel       string
	RedisAddr         string
	NarrativeCacheTTL time.Duration
}

// IsDev reports whether the server runs in development mode.
func (c Config) IsDev() bool {
	return strings.EqualFold(c.AppEnv, "dev") || strings.EqualFold(c.AppEnv, "development")
}

// Load reads environment variables and returns a populated Config.
func Load() Config {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit dotenv path. Variables already present
// in the environment win over the file.
func LoadFile(path string) Config {
	// A missing file is normal outside local development.
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("warning: read %s: %v", path, err)
	}

	cfg := Config{
		AdminEmail:          os.Getenv("ADMIN_EMAIL"),
		AdminPassword:       os.Getenv("ADMIN_PASSWORD"),
		SessionSecret:       os.Getenv("SESSION_SECRET"),
		DBPath:              envString("DB_PATH", defaultDBPath),
		Port:                envString("PORT", defaultPort),
		AppEnv:              envString("APP_ENV", defaultAppEnv),
		CatalogPath:         os.Getenv("CATALOG_PATH"),
		DefaultInterestRate: envFloat("DEFAULT_INTEREST_RATE", defaultInterestRate),
		DefaultProjectLife:  envInt("DEFAULT_PROJECT_LIFE", defaultProjectLife),
		GeminiAPIKey:        os.Getenv("GEMINI_API_KEY"),
		GeminiModel:         envString("GEMINI_MODEL", defaultGeminiModel),
		RedisAddr:           os.Getenv("REDIS_ADDR"),
		NarrativeCacheTTL:   envDuration("NARRATIVE_CACHE_TTL", defaultNarrativeCacheTTL),
	}

	if cfg.AdminEmail == "" {
		log.Print("warning: ADMIN_EMAIL is not set")
	}
	if cfg.AdminPassword == "" {
		log.Print("warning: ADMIN_PASSWORD is not set")
	}
	if cfg.SessionSecret == "" {
		log.Print("warning: SESSION_SECRET is not set")
	}
	if cfg.GeminiAPIKey == "" {
		log.Print("GEMINI_API_KEY is not set, explanations use built-in text")
	}

	return cfg
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		log.Printf("warning: %s=%q is not a non-negative number, using %v", key, raw, def)
		return def
	}
	return v
}

func envInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		log.Printf("warning: %s=%q is not a positive integer, using %d", key, raw, def)
		return def
	}
	return v
}

func envDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v < 0 {
		log.Printf("warning: %s=%q is not a duration, using %s", key, raw, def)
		return def
	}
	return v
}
