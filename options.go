package querybase

import (
	"github.com/dracory/querybase/executor"
	"github.com/dracory/querybase/shared/driver"
)

// withDefaults fills zero values so a hand-built Config works too.
func (c Config) withDefaults() Config {
	if c.ActionParam == "" {
		c.ActionParam = "action"
	}
	if c.BasePath == "" {
		c.BasePath = "/"
	}
	if c.StoreDriver == "" {
		c.StoreDriver = "sqlite"
	}
	if len(c.EnabledDrivers) == 0 {
		c.EnabledDrivers = driver.DefaultKinds()
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	// MaxRetries zero means no retries, so only the backoff fields default
	retry := executor.DefaultConfig()
	if c.Retry.BackoffMin <= 0 {
		c.Retry.BackoffMin = retry.BackoffMin
	}
	if c.Retry.BackoffMax <= 0 {
		c.Retry.BackoffMax = retry.BackoffMax
	}
	if c.Retry.BackoffFactor <= 0 {
		c.Retry.BackoffFactor = retry.BackoffFactor
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	return c
}
