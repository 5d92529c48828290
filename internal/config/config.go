package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for one KPI sync process
type Config struct {
	DataDir       string
	ActivityFile  string
	CloseFile     string
	SupportFile   string
	OperatorsFile string
	// ShiftSchedulePattern is relative to DataDir; %s is replaced with YYYYMM.
	ShiftSchedulePattern string

	ReporterURL        string
	ReporterID         string
	ReporterMaxRetries int

	SyncMaxRetries int
	SyncRetryDelay time.Duration
	FetchTimeout   time.Duration

	Location         *time.Location
	Port             string
	MetricsPushURL   string
	ClampNegativeIVR bool
	RunOnce          bool
	// OutputFormat is the run-once report format: text, json or csv.
	OutputFormat     string
	LogLevel         string
	Environment      string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	dataDir := getEnv("DATA_DIR", "data")
	cfg := &Config{
		DataDir:              dataDir,
		ActivityFile:         filepath.Join(dataDir, getEnv("ACTIVITY_FILE", "TS_todays_activity.xlsx")),
		CloseFile:            filepath.Join(dataDir, getEnv("CLOSE_FILE", "TS_todays_close.xlsx")),
		SupportFile:          filepath.Join(dataDir, getEnv("SUPPORT_FILE", "TS_todays_support.xlsx")),
		OperatorsFile:        filepath.Join(dataDir, getEnv("OPERATORS_FILE", "operators.xlsx")),
		ShiftSchedulePattern: getEnv("SHIFT_SCHEDULE_PATTERN", filepath.Join("shift_schedule", "%s_Campaign_ScheduleList.csv")),
		ReporterURL:          os.Getenv("REPORTER_URL"),
		ReporterID:           os.Getenv("REPORTER_ID"),
		Port:                 getEnv("PORT", "8080"),
		MetricsPushURL:       os.Getenv("METRICS_PUSH_URL"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		Environment:          getEnv("ENVIRONMENT", "local"),
	}

	var err error
	if cfg.ReporterMaxRetries, err = getInt("REPORTER_MAX_RETRIES", 5); err != nil {
		return nil, err
	}
	if cfg.SyncMaxRetries, err = getInt("SYNC_MAX_RETRIES", 5); err != nil {
		return nil, err
	}
	delay, err := getInt("SYNC_RETRY_DELAY", 2)
	if err != nil {
		return nil, err
	}
	cfg.SyncRetryDelay = time.Duration(delay) * time.Second

	timeout, err := getInt("FETCH_TIMEOUT", 60)
	if err != nil {
		return nil, err
	}
	cfg.FetchTimeout = time.Duration(timeout) * time.Second

	if cfg.ClampNegativeIVR, err = getBool("CLAMP_NEGATIVE_IVR", false); err != nil {
		return nil, err
	}
	if cfg.RunOnce, err = getBool("RUN_ONCE", false); err != nil {
		return nil, err
	}
	cfg.OutputFormat = getEnv("OUTPUT_FORMAT", "text")
	switch cfg.OutputFormat {
	case "text", "json", "csv":
	default:
		return nil, fmt.Errorf("invalid OUTPUT_FORMAT: %q", cfg.OutputFormat)
	}

	tz := getEnv("TIMEZONE", "Asia/Tokyo")
	cfg.Location, err = time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	return cfg, nil
}

// ShiftSchedulePath is the schedule file for the month containing now.
func (c *Config) ShiftSchedulePath(now time.Time) string {
	return filepath.Join(c.DataDir, fmt.Sprintf(c.ShiftSchedulePattern, now.In(c.Location).Format("200601")))
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	n, err := strconv.Atoi(getEnv(key, strconv.Itoa(defaultValue)))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", key)
	}
	return n, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	b, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(defaultValue)))
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
