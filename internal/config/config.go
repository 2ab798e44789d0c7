package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the process configuration, read once at startup.
type Config struct {
	Email        string
	Password     string
	ScheduleID   string
	Facilities   []string
	Locale       string
	PortalURL    string
	SignInCommit string
	RefreshDelay time.Duration
	LeadTimeDays int
	BookAsync    bool
	MimicTLS     bool
	ProxyURL     string
	HistoryFile  string
	LogLevel     string
	LogFormat    string
}

// Load reads configuration from environment variables, after loading a
// .env file when one exists, and validates it.
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	refresh, err := getSeconds("REFRESH_DELAY", 3)
	if err != nil {
		return nil, err
	}
	lead, err := getInt("LEAD_TIME_DAYS", 2)
	if err != nil {
		return nil, err
	}
	bookAsync, err := getBool("BOOK_ASYNC", false)
	if err != nil {
		return nil, err
	}
	mimicTLS, err := getBool("MIMIC_TLS", true)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Email:        os.Getenv("EMAIL"),
		Password:     os.Getenv("PASSWORD"),
		ScheduleID:   os.Getenv("SCHEDULE_ID"),
		Facilities:   splitList(os.Getenv("FACILITY_ID")),
		Locale:       getEnv("LOCALE", "en-ca"),
		PortalURL:    getEnv("PORTAL_URL", "https://ais.usvisa-info.com"),
		SignInCommit: getEnv("SIGN_IN_COMMIT", "Sign In"),
		RefreshDelay: refresh,
		LeadTimeDays: lead,
		BookAsync:    bookAsync,
		MimicTLS:     mimicTLS,
		ProxyURL:     os.Getenv("PROXY_URL"),
		HistoryFile:  os.Getenv("HISTORY_FILE"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "console"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations that cannot possibly run.
func (c *Config) Validate() error {
	if c.Email == "" {
		return fmt.Errorf("EMAIL is required")
	}
	if c.Password == "" {
		return fmt.Errorf("PASSWORD is required")
	}
	if c.ScheduleID == "" {
		return fmt.Errorf("SCHEDULE_ID is required")
	}
	if len(c.Facilities) == 0 {
		return fmt.Errorf("FACILITY_ID is required, a single id or a comma-separated list")
	}
	if c.RefreshDelay <= 0 {
		return fmt.Errorf("REFRESH_DELAY must be positive")
	}
	if c.LeadTimeDays < 0 {
		return fmt.Errorf("LEAD_TIME_DAYS must not be negative")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, value)
	}
	return n, nil
}

func getSeconds(key string, defaultValue int) (time.Duration, error) {
	n, err := getInt(key, defaultValue)
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * time.Second, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got %q", key, value)
	}
	return b, nil
}

// splitList parses a comma-separated list, trimming whitespace and dropping
// empty items.
func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
