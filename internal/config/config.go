package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config captures the catalog server's runtime configuration derived from
// environment variables.
type Config struct {
	Port               string
	DBURL              string
	MigrationsDir      string
	ReadTimeoutSecs    int
	WriteTimeoutSecs   int
	IdleTimeoutSecs    int
	DBMaxConns         int
	DBMinConns         int
	DBMaxIdleSecs      int
	DBMaxLifeSecs      int
	DBConnTimeoutSecs  int
	DBStatementCache   int
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	CacheTTLSecs       int
	TagsMinOccurrences int
	DefaultK           int
}

// BrowserConfig captures the interactive browser's configuration.
type BrowserConfig struct {
	BackendURL    string
	Strategy      string
	TimeoutSecs   int
	HistoryFile   string
	SlidesPerView int
	TagBatch      int
	Layout        string
}

// Load reads the catalog server configuration, applying defaults and validation.
// A .env file in the working directory is honoured when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:               getEnv("PORT", "8000"),
		DBURL:              os.Getenv("DB_URL"),
		MigrationsDir:      getEnv("MIGRATIONS_DIR", "db/migrations"),
		ReadTimeoutSecs:    getEnvInt("SERVER_READ_TIMEOUT", 15),
		WriteTimeoutSecs:   getEnvInt("SERVER_WRITE_TIMEOUT", 15),
		IdleTimeoutSecs:    getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		DBMaxConns:         getEnvInt("DB_MAX_CONNS", 20),
		DBMinConns:         getEnvInt("DB_MIN_CONNS", 2),
		DBMaxIdleSecs:      getEnvInt("DB_MAX_CONN_IDLE_SECS", 300),
		DBMaxLifeSecs:      getEnvInt("DB_MAX_CONN_LIFETIME_SECS", 3600),
		DBConnTimeoutSecs:  getEnvInt("DB_CONN_TIMEOUT_SECS", 10),
		DBStatementCache:   getEnvInt("DB_STATEMENT_CACHE_CAPACITY", 256),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		CacheTTLSecs:       getEnvInt("CACHE_TTL_SECS", 300),
		TagsMinOccurrences: getEnvInt("TAGS_MIN_OCCURRENCES", 5),
		DefaultK:           getEnvInt("DEFAULT_K", 0),
	}

	if cfg.DBURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required")
	}
	if cfg.DBMaxConns <= 0 {
		return Config{}, fmt.Errorf("DB_MAX_CONNS must be positive")
	}
	if cfg.DBMinConns < 0 {
		return Config{}, fmt.Errorf("DB_MIN_CONNS must be non-negative")
	}
	if cfg.DBMaxConns > 0 && cfg.DBMinConns > cfg.DBMaxConns {
		return Config{}, fmt.Errorf("DB_MIN_CONNS cannot exceed DB_MAX_CONNS")
	}
	if cfg.DBStatementCache < 0 {
		return Config{}, fmt.Errorf("DB_STATEMENT_CACHE_CAPACITY must be non-negative")
	}
	if cfg.RedisDB < 0 {
		return Config{}, fmt.Errorf("REDIS_DB must be non-negative")
	}
	if cfg.RedisAddr != "" && cfg.CacheTTLSecs <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL_SECS must be positive when REDIS_ADDR is set")
	}
	if cfg.TagsMinOccurrences < 1 {
		return Config{}, fmt.Errorf("TAGS_MIN_OCCURRENCES must be at least 1")
	}
	if cfg.DefaultK < 0 {
		return Config{}, fmt.Errorf("DEFAULT_K must be non-negative")
	}

	return cfg, nil
}

// LoadBrowser reads the browser configuration. Every field has a default.
func LoadBrowser() (BrowserConfig, error) {
	_ = godotenv.Load()

	cfg := BrowserConfig{
		BackendURL:    strings.TrimRight(getEnv("BROWSER_BACKEND_URL", "http://localhost:8000"), "/"),
		Strategy:      getEnv("BROWSER_STRATEGY", "relevancy"),
		TimeoutSecs:   getEnvInt("BROWSER_TIMEOUT_SECS", 10),
		HistoryFile:   getEnv("BROWSER_HISTORY_FILE", defaultHistoryFile()),
		SlidesPerView: getEnvInt("BROWSER_SLIDES_PER_VIEW", 5),
		TagBatch:      getEnvInt("BROWSER_TAG_BATCH", 6),
		Layout:        getEnv("BROWSER_LAYOUT", "cards"),
	}

	u, err := url.Parse(cfg.BackendURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return BrowserConfig{}, fmt.Errorf("BROWSER_BACKEND_URL must be an http(s) URL, got %q", cfg.BackendURL)
	}
	switch cfg.Strategy {
	case "classic", "relevancy":
	default:
		return BrowserConfig{}, fmt.Errorf("BROWSER_STRATEGY must be classic or relevancy, got %q", cfg.Strategy)
	}
	if cfg.TimeoutSecs < 0 {
		return BrowserConfig{}, fmt.Errorf("BROWSER_TIMEOUT_SECS must be non-negative")
	}
	if cfg.SlidesPerView <= 0 {
		return BrowserConfig{}, fmt.Errorf("BROWSER_SLIDES_PER_VIEW must be positive")
	}
	if cfg.TagBatch <= 0 {
		return BrowserConfig{}, fmt.Errorf("BROWSER_TAG_BATCH must be positive")
	}

	return cfg, nil
}

func defaultHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".movie-browser_history"
	}
	return home + string(os.PathSeparator) + ".movie-browser_history"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}
