package config

import (
	"fmt"
	"strings"
	"time"
)

// APIConfig points the client at a record store instance.
type APIConfig struct {
	BaseURL string        `koanf:"baseUrl"`
	Timeout time.Duration `koanf:"timeout"`
}

func (c *APIConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("api base URL is not configured")
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("api base URL must be http(s): %s", c.BaseURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("api timeout is not configured")
	}
	return nil
}

// CacheConfig tunes the entity cache.
type CacheConfig struct {
	TTL time.Duration `koanf:"ttl"`
}

func (c *CacheConfig) Validate() error {
	if c.TTL < 0 {
		return fmt.Errorf("cache ttl must not be negative: %v", c.TTL)
	}
	return nil
}

// RetryConfig bounds fetch retries. Attempts counts retries after the first
// failure.
type RetryConfig struct {
	Attempts int `koanf:"attempts"`
}

func (c *RetryConfig) Validate() error {
	if c.Attempts < 0 {
		return fmt.Errorf("retry attempts must not be negative: %d", c.Attempts)
	}
	return nil
}

// MutationConfig tunes the stock mutation coordinator.
type MutationConfig struct {
	ConfirmThreshold int `koanf:"confirmThreshold"`
}

func (c *MutationConfig) Validate() error {
	if c.ConfirmThreshold < 0 {
		return fmt.Errorf("mutation confirm threshold must not be negative: %d", c.ConfirmThreshold)
	}
	return nil
}

// NotifyConfig tunes the notification queue.
type NotifyConfig struct {
	Capacity int           `koanf:"capacity"`
	TTL      time.Duration `koanf:"ttl"`
}

func (c *NotifyConfig) Validate() error {
	if c.Capacity < 0 {
		return fmt.Errorf("notify capacity must not be negative: %d", c.Capacity)
	}
	return nil
}
