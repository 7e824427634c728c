package querybase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dracory/querybase/executor"
	"github.com/dracory/querybase/shared/driver"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "action", cfg.ActionParam)
	assert.Equal(t, "sqlite", cfg.StoreDriver)
	assert.Equal(t, driver.DefaultKinds(), cfg.EnabledDrivers)
	assert.NotContains(t, cfg.EnabledDrivers, "sqlite")
	assert.Equal(t, 3, cfg.Retry.MaxRetries)
	assert.Equal(t, time.Minute, cfg.Retry.BackoffMin)
	assert.Equal(t, 30*time.Minute, cfg.Retry.BackoffMax)
	assert.Equal(t, 2.0, cfg.Retry.BackoffFactor)
	assert.True(t, cfg.NotifyOnSuccess)
	assert.False(t, cfg.NotifyOnFailure)
}

func TestLoadConfig_EnvAndFlags(t *testing.T) {
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("MAX_RETRIES", "5")
	t.Setenv("RETRY_BACKOFF_MIN", "10s")
	t.Setenv("RETRY_BACKOFF_FACTOR", "1.5")
	t.Setenv("ENABLED_DRIVERS", "postgres, mysql")
	t.Setenv("MAIL_TO", "a@example.com,b@example.com")

	cfg, err := LoadConfig([]string{"-port", "9100", "-max-retries", "1"})
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.HTTPPort, "flags win over env")
	assert.Equal(t, 1, cfg.Retry.MaxRetries)
	assert.Equal(t, 10*time.Second, cfg.Retry.BackoffMin)
	assert.Equal(t, 1.5, cfg.Retry.BackoffFactor)
	assert.Equal(t, []string{"postgres", "mysql"}, cfg.EnabledDrivers)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, cfg.MailTo)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("RETRY_BACKOFF_MAX", "soon")
	_, err := LoadConfig(nil)
	assert.ErrorContains(t, err, "RETRY_BACKOFF_MAX")
}

func TestLoadConfig_UnknownDriver(t *testing.T) {
	_, err := LoadConfig([]string{"-drivers", "postgres,db2"})
	assert.ErrorContains(t, err, "db2")
}

func TestBuildNotifier(t *testing.T) {
	assert.Nil(t, buildNotifier(Config{}))
	assert.NotNil(t, buildNotifier(Config{WebhookURL: "http://hooks.local/x"}))
	assert.NotNil(t, buildNotifier(Config{SMTPHost: "smtp.local", MailFrom: "qb@local"}))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", parseLevel("debug").String())
	assert.Equal(t, "WARN", parseLevel("Warning").String())
	assert.Equal(t, "INFO", parseLevel("").String())
}

func TestWithDefaults_KeepsZeroRetries(t *testing.T) {
	cfg := Config{Retry: executor.Config{MaxRetries: 0}}.withDefaults()

	assert.Equal(t, 0, cfg.Retry.MaxRetries)
	assert.Equal(t, time.Minute, cfg.Retry.BackoffMin)
	assert.Equal(t, 30*time.Minute, cfg.Retry.BackoffMax)
	assert.Equal(t, 2.0, cfg.Retry.BackoffFactor)

	cfg = Config{Retry: executor.Config{MaxRetries: 2, BackoffMin: time.Second}}.withDefaults()
	assert.Equal(t, 2, cfg.Retry.MaxRetries)
	assert.Equal(t, time.Second, cfg.Retry.BackoffMin)
	assert.Equal(t, 30*time.Minute, cfg.Retry.BackoffMax)
}
