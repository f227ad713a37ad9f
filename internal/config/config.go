package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all app configuration
type Config struct {
	// Server
	Port       string
	AppEnv     string
	LogLevel   string
	CORSOrigin string

	// Quotes and transactions
	QuoteProvider   string
	OneInchBase     string
	OneInchAPIKey   string
	UpstreamTimeout time.Duration

	// Price feed
	CoinGeckoBase   string
	CoinGeckoAPIKey string

	// Pool subgraphs
	SubgraphEthereumURL string
	SubgraphBaseURL     string

	// Block explorers
	EtherscanBase   string
	EtherscanAPIKey string
	BasescanBase    string
	BasescanAPIKey  string

	// Cache
	CacheShards   int
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SnapshotTTL   time.Duration

	MetricsEnabled bool
}

// Environments accepted by APP_ENV
const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// Load reads configuration from environment variables, with an optional .env file
func Load() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env file", slog.String("error", err.Error()))
	}

	cfg := &Config{
		Port:       getEnv("PORT", "8787"),
		AppEnv:     getEnv("APP_ENV", EnvProd),
		LogLevel:   getEnv("LOG_LEVEL", ""),
		CORSOrigin: getEnv("CORS_ORIGIN", "*"),

		QuoteProvider:   getEnv("QUOTE_PROVIDER", "mock"),
		OneInchBase:     getEnv("ONEINCH_BASE", "https://api.1inch.dev"),
		OneInchAPIKey:   getEnv("ONEINCH_API_KEY", ""),
		UpstreamTimeout: getEnvAsDuration("UPSTREAM_TIMEOUT", 5*time.Second),

		CoinGeckoBase:   getEnv("COINGECKO_BASE", "https://api.coingecko.com/api/v3"),
		CoinGeckoAPIKey: getEnv("COINGECKO_API_KEY", ""),

		SubgraphEthereumURL: getEnv("SUBGRAPH_ETHEREUM_URL", ""),
		SubgraphBaseURL:     getEnv("SUBGRAPH_BASE_URL", ""),

		EtherscanBase:   getEnv("ETHERSCAN_BASE", "https://api.etherscan.io/api"),
		EtherscanAPIKey: getEnv("ETHERSCAN_API_KEY", ""),
		BasescanBase:    getEnv("BASESCAN_BASE", "https://api.basescan.org/api"),
		BasescanAPIKey:  getEnv("BASESCAN_API_KEY", ""),

		CacheShards:   getEnvAsInt("CACHE_SHARDS", 16),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
		SnapshotTTL:   getEnvAsDuration("SNAPSHOT_TTL", 24*time.Hour),

		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
	}

	cfg.Validate()
	return cfg
}

// Validate normalises values in place. Nothing here is fatal: a bad value is
// replaced by its default and logged.
func (c *Config) Validate() {
	c.QuoteProvider = strings.ToLower(strings.TrimSpace(c.QuoteProvider))
	switch c.QuoteProvider {
	case "mock", "1inch":
	default:
		slog.Warn("unknown quote provider, using mock", slog.String("provider", c.QuoteProvider))
		c.QuoteProvider = "mock"
	}

	c.AppEnv = strings.ToLower(strings.TrimSpace(c.AppEnv))
	switch c.AppEnv {
	case EnvLocal, EnvDev, EnvProd:
	default:
		c.AppEnv = EnvProd
	}

	if c.CacheShards <= 0 {
		c.CacheShards = 16
	}
	if c.UpstreamTimeout <= 0 {
		c.UpstreamTimeout = 5 * time.Second
	}
	if c.SnapshotTTL <= 0 {
		c.SnapshotTTL = 24 * time.Hour
	}
}

// Level returns the log level for the configured environment. LOG_LEVEL wins when set.
func (c *Config) Level() slog.Level {
	var level slog.Level
	if c.LogLevel != "" {
		if err := level.UnmarshalText([]byte(c.LogLevel)); err == nil {
			return level
		}
	}
	if c.AppEnv == EnvProd {
		return slog.LevelInfo
	}
	return slog.LevelDebug
}

// Helper functions for parsing environment variables
func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	valStr := getEnv(key, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}
	return defaultVal
}

// getEnvAsDuration accepts Go durations ("5s") or plain seconds ("5")
func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(valStr); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(valStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultVal
}
