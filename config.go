package querybase

import (
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dracory/env"
	"github.com/samber/lo"

	"github.com/dracory/querybase/executor"
	"github.com/dracory/querybase/shared"
	"github.com/dracory/querybase/shared/driver"
)

// Config holds all configuration for a querybase instance.
type Config struct {
	// Server settings
	HTTPPort    int
	BasePath    string
	ActionParam string

	// Store database (connection profiles, templates, results)
	StoreDriver string
	StoreDSN    string

	// Target backends that connection profiles may use
	EnabledDrivers []string
	MaxResultRows  int

	// Background execution
	Workers int
	Retry   executor.Config

	// Notifications
	SMTPHost        string
	SMTPPort        int
	SMTPUsername    string
	SMTPPassword    string
	MailFrom        string
	MailTo          []string
	WebhookURL      string
	NotifyOnSuccess bool
	NotifyOnFailure bool

	// Logging
	LogLevel  string
	LogFormat string
}

// LoadConfig reads env (and .env) then flags from args. Flags take
// precedence over env.
func LoadConfig(args []string) (Config, error) {
	var cfg Config

	// missing files are ignored inside the lib
	env.Load(".env")

	retry := executor.DefaultConfig()

	cfg.HTTPPort = env.GetIntOrDefault("HTTP_PORT", 8080)
	cfg.BasePath = env.GetStringOrDefault("BASE_URL", "/")
	cfg.ActionParam = env.GetStringOrDefault("ACTION_PARAM", "action")
	cfg.StoreDriver = env.GetStringOrDefault("STORE_DRIVER", "sqlite")
	cfg.StoreDSN = env.GetStringOrDefault("STORE_DSN", "querybase.db")
	cfg.EnabledDrivers = shared.SplitCSV(env.GetStringOrDefault("ENABLED_DRIVERS", strings.Join(driver.DefaultKinds(), ",")))
	cfg.MaxResultRows = env.GetIntOrDefault("MAX_RESULT_ROWS", 10000)
	cfg.Workers = env.GetIntOrDefault("WORKERS", 4)
	cfg.Retry.MaxRetries = env.GetIntOrDefault("MAX_RETRIES", retry.MaxRetries)
	cfg.SMTPHost = env.GetStringOrDefault("SMTP_HOST", "")
	cfg.SMTPPort = env.GetIntOrDefault("SMTP_PORT", 587)
	cfg.SMTPUsername = env.GetStringOrDefault("SMTP_USERNAME", "")
	cfg.SMTPPassword = env.GetStringOrDefault("SMTP_PASSWORD", "")
	cfg.MailFrom = env.GetStringOrDefault("MAIL_FROM", "")
	cfg.MailTo = shared.SplitCSV(env.GetStringOrDefault("MAIL_TO", ""))
	cfg.WebhookURL = env.GetStringOrDefault("WEBHOOK_URL", "")
	cfg.NotifyOnSuccess = env.GetBoolOrDefault("NOTIFY_ON_SUCCESS", true)
	cfg.NotifyOnFailure = env.GetBoolOrDefault("NOTIFY_ON_FAILURE", false)
	cfg.LogLevel = env.GetStringOrDefault("LOG_LEVEL", "info")
	cfg.LogFormat = env.GetStringOrDefault("LOG_FORMAT", "text")

	var err error
	if cfg.Retry.BackoffMin, err = envDuration("RETRY_BACKOFF_MIN", retry.BackoffMin); err != nil {
		return cfg, err
	}
	if cfg.Retry.BackoffMax, err = envDuration("RETRY_BACKOFF_MAX", retry.BackoffMax); err != nil {
		return cfg, err
	}
	if cfg.Retry.BackoffFactor, err = envFloat("RETRY_BACKOFF_FACTOR", retry.BackoffFactor); err != nil {
		return cfg, err
	}

	// Flags
	fs := flag.NewFlagSet("querybase", flag.ContinueOnError)
	fs.IntVar(&cfg.HTTPPort, "port", cfg.HTTPPort, "HTTP port to listen on")
	fs.StringVar(&cfg.BasePath, "base", cfg.BasePath, "Base path to mount handler under (e.g. /qb)")
	fs.StringVar(&cfg.StoreDriver, "store-driver", cfg.StoreDriver, "Store database driver (sqlite, postgres, mysql)")
	fs.StringVar(&cfg.StoreDSN, "store-dsn", cfg.StoreDSN, "Store database DSN")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "Number of concurrent query executions")
	fs.IntVar(&cfg.Retry.MaxRetries, "max-retries", cfg.Retry.MaxRetries, "Retries after a failed execution")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	drivers := fs.String("drivers", strings.Join(cfg.EnabledDrivers, ","), "Comma separated list of enabled target backends")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	cfg.EnabledDrivers = shared.SplitCSV(*drivers)

	cfg = cfg.withDefaults()
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP_PORT: %d", c.HTTPPort)
	}
	if c.StoreDSN == "" {
		return fmt.Errorf("STORE_DSN is required")
	}
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("MAX_RETRIES must not be negative")
	}
	for _, d := range c.EnabledDrivers {
		if !lo.Contains(driver.AllKinds(), driver.Normalize(d)) {
			return fmt.Errorf("unknown driver in ENABLED_DRIVERS: %s", d)
		}
	}
	return nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	raw := env.GetStringOrDefault(key, "")
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func envFloat(key string, def float64) (float64, error) {
	raw := env.GetStringOrDefault(key, "")
	if raw == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}
