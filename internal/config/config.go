// Package config provides configuration management for the complaint console.
//
// Configuration is loaded once at startup and remains immutable during
// runtime.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (highest priority)
//  2. External .env file in the working directory
//  3. YAML overlay named by CONFIG_FILE
//  4. Embedded .env file (fallback, included in binary)
//  5. Hard-coded defaults (lowest priority)
package config

import (
	_ "embed"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// embeddedEnv contains the .env file embedded at build time. It only carries
// non-secret defaults; credentials come from the environment.
//
//go:embed .env
var embeddedEnv string

// Transport names.
const (
	TransportHTTP    = "http"
	TransportBrowser = "browser"
)

// Config holds all application configuration.
type Config struct {
	// Remote authority
	RemoteBaseURL   string // Base URL of the complaint/feedback API
	RemoteAuthToken string // Bearer token for the HTTP transport
	Transport       string // "http" or "browser"

	// Browser transport only
	ConsoleURL      string // Authenticated console page the fetches run in
	LoginURL        string // Login page the gate redirects to
	ConsoleUsername string
	ConsolePassword string

	// HTTP client
	HTTPTimeout  time.Duration
	HTTPMaxConns int

	// Store and view
	WorkerPoolSize int           // Bulk status fan-out workers
	PageSize       int           // Rows per view page
	MaxLoadRetries int           // Load attempts on network failure
	LoadRetryDelay time.Duration // Delay between load attempts

	// serve command
	RefreshInterval time.Duration // Periodic reload interval
	ListenPort      string
	GateSecret      string   // HS256 secret; gate disabled when empty
	GateRedirectURL string   // Where rejected requests are redirected
	AllowedOrigins  []string // CORS origins

	// Shared probe cache (optional)
	RedisURL      string
	ProbeCacheTTL time.Duration

	// Telegram configuration (optional)
	TelegramBotToken string
	TelegramChatID   string

	// Debug mode - status updates are logged instead of sent
	DebugMode bool
}

// LoadConfig loads configuration from all sources and validates it.
func LoadConfig() (*Config, error) {
	// godotenv.Load never overrides variables that are already set, so each
	// source below only fills what the ones before it left empty.
	_ = godotenv.Load()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := applyYAMLOverlay(path); err != nil {
			return nil, err
		}
	}

	if envMap, err := godotenv.Unmarshal(embeddedEnv); err == nil {
		setMissing(envMap)
	} else {
		log.Printf("⚠️  Embedded .env could not be parsed: %v", err)
	}

	cfg := fromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// fromEnv builds a config from the process environment and defaults.
func fromEnv() *Config {
	return &Config{
		RemoteBaseURL:   strings.TrimRight(os.Getenv("REMOTE_BASE_URL"), "/"),
		RemoteAuthToken: os.Getenv("REMOTE_AUTH_TOKEN"),
		Transport:       strings.ToLower(getEnvOrDefault("TRANSPORT", TransportHTTP)),

		ConsoleURL:      os.Getenv("CONSOLE_URL"),
		LoginURL:        os.Getenv("LOGIN_URL"),
		ConsoleUsername: os.Getenv("CONSOLE_USERNAME"),
		ConsolePassword: os.Getenv("CONSOLE_PASSWORD"),

		HTTPTimeout:  getEnvDuration("HTTP_TIMEOUT", 30*time.Second),
		HTTPMaxConns: getEnvInt("HTTP_MAX_CONNS", 100),

		WorkerPoolSize: getEnvInt("WORKER_POOL_SIZE", 10),
		PageSize:       getEnvInt("PAGE_SIZE", 10),
		MaxLoadRetries: getEnvInt("MAX_LOAD_RETRIES", 3),
		LoadRetryDelay: getEnvDuration("LOAD_RETRY_DELAY", 5*time.Second),

		RefreshInterval: getEnvDuration("REFRESH_INTERVAL", 15*time.Minute),
		ListenPort:      getEnvOrDefault("LISTEN_PORT", "8080"),
		GateSecret:      os.Getenv("GATE_SECRET"),
		GateRedirectURL: os.Getenv("GATE_REDIRECT_URL"),
		AllowedOrigins:  getEnvList("ALLOWED_ORIGINS", []string{"http://localhost:5173"}),

		RedisURL:      os.Getenv("REDIS_URL"),
		ProbeCacheTTL: getEnvDuration("PROBE_CACHE_TTL", 10*time.Minute),

		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   os.Getenv("TELEGRAM_CHAT_ID"),

		DebugMode: getEnvBool("DEBUG_MODE", false),
	}
}

// Validate checks that required configuration is present and values are sensible.
func (c *Config) Validate() error {
	if c.RemoteBaseURL == "" {
		return fmt.Errorf("REMOTE_BASE_URL environment variable is required")
	}

	switch c.Transport {
	case TransportHTTP:
	case TransportBrowser:
		if c.ConsoleURL == "" {
			return fmt.Errorf("CONSOLE_URL is required for the browser transport")
		}
	default:
		return fmt.Errorf("TRANSPORT must be %q or %q, got %q", TransportHTTP, TransportBrowser, c.Transport)
	}

	if c.WorkerPoolSize < 1 {
		return fmt.Errorf("WORKER_POOL_SIZE must be at least 1, got %d", c.WorkerPoolSize)
	}
	if c.PageSize < 1 {
		return fmt.Errorf("PAGE_SIZE must be at least 1, got %d", c.PageSize)
	}
	if c.MaxLoadRetries < 1 {
		return fmt.Errorf("MAX_LOAD_RETRIES must be at least 1, got %d", c.MaxLoadRetries)
	}

	return nil
}

// applyYAMLOverlay reads a flat KEY: value YAML file and sets every key that
// the environment does not already define. Sequences are joined with commas.
func applyYAMLOverlay(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	values := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case nil:
			continue
		case []any:
			parts := make([]string, len(val))
			for i, p := range val {
				parts[i] = fmt.Sprint(p)
			}
			values[k] = strings.Join(parts, ",")
		default:
			values[k] = fmt.Sprint(val)
		}
	}
	setMissing(values)
	return nil
}

// setMissing sets each variable that is not already set.
func setMissing(values map[string]string) {
	for k, v := range values {
		if os.Getenv(k) == "" {
			os.Setenv(k, v)
		}
	}
}

// Helper functions for environment variable parsing

// getEnvOrDefault returns the environment variable value or a default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as an integer or a default if not set/invalid
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns the environment variable as a duration or a default if not set/invalid.
//
// Accepts standard Go duration strings like "5s", "10m", "1h30m"
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvBool accepts anything strconv.ParseBool does.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvList splits a comma-separated variable, dropping empty entries.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
