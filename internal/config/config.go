package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port     string `validate:"required,numeric"`
	LogLevel string `validate:"oneof=debug info warn error"`
	LogFile  string // optional, logs are also appended here

	// Geolocation API
	APIKey        string
	GeoAPIURL     string        `validate:"required,url"`
	SelfAPIURL    string        `validate:"required,url"`
	LookupTimeout time.Duration `validate:"gte=0"` // 0 means no timeout

	// Tracker
	DefaultLat   float64 `validate:"gte=-90,lte=90"`
	DefaultLng   float64 `validate:"gte=-180,lte=180"`
	MapZoom      int     `validate:"gte=0,lte=19"`
	Breakpoint   int     `validate:"gt=0"` // viewport width (px) at which the desktop layout starts
	DiscardStale bool    // drop responses that are not from the latest issued lookup

	// Lookup history
	HistoryType  string `validate:"oneof=memory csv redis mysql"`
	HistoryPath  string // path to the CSV history file
	HistoryLimit int    `validate:"gt=0"`

	// MySQL configuration
	MySQLDSN string `validate:"required_if=HistoryType mysql"`

	// Redis configuration
	RedisAddr     string
	RedisPassword string
	RedisDB       int `validate:"gte=0,lte=15"`

	// Rate limiting
	RateLimitType   string `validate:"oneof=memory redis"`
	RateLimit       int    `validate:"gt=0"` // number of lookups allowed
	RateLimitWindow int    `validate:"gt=0"` // time window in seconds
}

// Load reads configuration from environment variables
// with sensible defaults
func Load() *Config {
	// Load .env file if it exists (for local development)
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using environment variables or defaults")
	}

	return &Config{
		Port:     getEnv("PORT", "3000"),
		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFile:  getEnv("LOG_FILE", ""),

		APIKey:        getEnv("API_KEY", ""),
		GeoAPIURL:     getEnv("GEO_API_URL", "https://geo.ipify.org/api/v2/country,city"),
		SelfAPIURL:    getEnv("SELF_API_URL", "http://ip-api.com/json/"),
		LookupTimeout: time.Duration(getEnvAsInt("LOOKUP_TIMEOUT_MS", 0)) * time.Millisecond,

		// Default center is London, shown until the first lookup completes
		DefaultLat:   getEnvAsFloat("DEFAULT_LAT", 51.505),
		DefaultLng:   getEnvAsFloat("DEFAULT_LNG", -0.09),
		MapZoom:      getEnvAsInt("MAP_ZOOM", 13),
		Breakpoint:   getEnvAsInt("BREAKPOINT", 768),
		DiscardStale: getEnvAsBool("DISCARD_STALE", false),

		HistoryType:  getEnv("HISTORY_TYPE", "memory"),
		HistoryPath:  getEnv("HISTORY_PATH", "./data/history.csv"),
		HistoryLimit: getEnvAsInt("HISTORY_LIMIT", 20),

		MySQLDSN: getEnv("MYSQL_DSN", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// Default: 10 lookups per minute per client, the free API tier is small
		RateLimitType:   getEnv("RATE_LIMITER_TYPE", "memory"),
		RateLimit:       getEnvAsInt("RATE_LIMIT", 10),
		RateLimitWindow: getEnvAsInt("RATE_LIMIT_WINDOW", 60),
	}
}

// Validate checks the loaded values against the struct tags
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt reads an environment variable as an integer
// Returns default if not set or invalid
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsFloat reads an environment variable as a float64
// Returns default if not set or invalid
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsBool accepts anything strconv.ParseBool does ("1", "true", "F", ...)
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}
