package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultReportDelaySeconds   = 8
	defaultDailyReportLimit     = 50
	defaultPendingTTLSeconds    = 600
	defaultReportTimeoutSeconds = 15
	defaultPollTimeoutSeconds   = 30
)

var (
	ErrMissingAdminIDs    = errors.New("ADMIN_IDS is required")
	ErrMissingCredentials = errors.New("REPORT_API_URL and REPORT_API_TOKEN are required")
)

type Config struct {
	BotToken           string
	AdminIDs           []int64
	LogLevel           string
	PollTimeoutSeconds int

	ReportAPIURL         string
	ReportAPIToken       string
	ReportTimeoutSeconds int
	ReportDelaySeconds   int
	DailyReportLimit     int
	PendingTTLSeconds    int
	StatsTimezone        string

	DatabaseURL string
	RedisAddr   string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3UseSSL    bool
	S3Bucket    string
	HTTPAddr    string
}

func Load() (Config, error) {
	adminIDs, err := parseIDList("ADMIN_IDS", getString("ADMIN_IDS", ""))
	if err != nil {
		return Config{}, err
	}

	pollTimeout, err := getInt([]string{"POLL_TIMEOUT_SECONDS"}, defaultPollTimeoutSeconds)
	if err != nil {
		return Config{}, err
	}
	reportTimeout, err := getInt([]string{"REPORT_HTTP_TIMEOUT_SECONDS"}, defaultReportTimeoutSeconds)
	if err != nil {
		return Config{}, err
	}
	reportDelay, err := getInt([]string{"REPORT_DELAY_SECONDS"}, defaultReportDelaySeconds)
	if err != nil {
		return Config{}, err
	}
	dailyLimit, err := getInt([]string{"DAILY_REPORT_LIMIT"}, defaultDailyReportLimit)
	if err != nil {
		return Config{}, err
	}
	pendingTTL, err := getInt([]string{"BULK_PENDING_TTL_SECONDS"}, defaultPendingTTLSeconds)
	if err != nil {
		return Config{}, err
	}
	s3UseSSL, err := getBool([]string{"S3_USE_SSL"}, false)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		BotToken:             strings.TrimSpace(os.Getenv("BOT_TOKEN")),
		AdminIDs:             adminIDs,
		LogLevel:             getString("LOG_LEVEL", "info"),
		PollTimeoutSeconds:   pollTimeout,
		ReportAPIURL:         getString("REPORT_API_URL", ""),
		ReportAPIToken:       getString("REPORT_API_TOKEN", ""),
		ReportTimeoutSeconds: reportTimeout,
		ReportDelaySeconds:   reportDelay,
		DailyReportLimit:     dailyLimit,
		PendingTTLSeconds:    pendingTTL,
		StatsTimezone:        getString("STATS_TIMEZONE", "UTC"),
		DatabaseURL:          strings.TrimSpace(os.Getenv("DATABASE_URL")),
		RedisAddr:            getString("REDIS_ADDR", ""),
		S3Endpoint:           getString("S3_ENDPOINT", ""),
		S3AccessKey:          getString("S3_ACCESS_KEY", ""),
		S3SecretKey:          getString("S3_SECRET_KEY", ""),
		S3UseSSL:             s3UseSSL,
		S3Bucket:             getString("S3_BUCKET", ""),
		HTTPAddr:             getStringAllowEmpty("HTTP_ADDR", ":8080"),
	}

	if cfg.PollTimeoutSeconds <= 0 {
		cfg.PollTimeoutSeconds = defaultPollTimeoutSeconds
	}
	if cfg.ReportTimeoutSeconds <= 0 {
		cfg.ReportTimeoutSeconds = defaultReportTimeoutSeconds
	}
	if cfg.ReportDelaySeconds < 1 {
		cfg.ReportDelaySeconds = 1
	}
	if cfg.DailyReportLimit < 0 {
		cfg.DailyReportLimit = 0
	}
	if cfg.PendingTTLSeconds <= 0 {
		cfg.PendingTTLSeconds = defaultPendingTTLSeconds
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports configuration the bot cannot start without.
func (c Config) Validate() error {
	if len(c.AdminIDs) == 0 {
		return ErrMissingAdminIDs
	}
	if strings.TrimSpace(c.ReportAPIURL) == "" || strings.TrimSpace(c.ReportAPIToken) == "" {
		return ErrMissingCredentials
	}
	return nil
}

func (c Config) ReportDelay() time.Duration {
	return time.Duration(c.ReportDelaySeconds) * time.Second
}

func (c Config) ReportTimeout() time.Duration {
	return time.Duration(c.ReportTimeoutSeconds) * time.Second
}

func (c Config) PendingTTL() time.Duration {
	return time.Duration(c.PendingTTLSeconds) * time.Second
}

func (c Config) IsS3Enabled() bool {
	return strings.TrimSpace(c.S3Endpoint) != "" && strings.TrimSpace(c.S3Bucket) != ""
}

func parseIDList(key, raw string) ([]int64, error) {
	ids := make([]int64, 0)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		value, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", key, err)
		}
		ids = append(ids, value)
	}
	return ids, nil
}

func getString(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

// getStringAllowEmpty keeps an explicitly empty value so a feature can be switched off.
func getStringAllowEmpty(key, fallback string) string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	return strings.TrimSpace(value)
}

func getInt(keys []string, fallback int) (int, error) {
	raw, key := getFirstDefined(keys)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return value, nil
}

func getBool(keys []string, fallback bool) (bool, error) {
	raw, key := getFirstDefined(keys)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return value, nil
}

func getFirstDefined(keys []string) (string, string) {
	for _, key := range keys {
		value := strings.TrimSpace(os.Getenv(key))
		if value != "" {
			return value, key
		}
	}
	if len(keys) == 0 {
		return "", ""
	}
	return "", keys[0]
}
