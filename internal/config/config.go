// Package config defines the configuration of the two binaries.
package config

import (
	"fmt"
	"strings"

	"github.com/caraseli02/inventory-app-sub002/pkg/config"
	"github.com/caraseli02/inventory-app-sub002/pkg/config/configloader"
)

var (
	_ configloader.Validator = (*ClientConfig)(nil)
	_ configloader.Validator = (*ServerConfig)(nil)
)

// ClientConfig configures the POS client.
type ClientConfig struct {
	API      config.APIConfig      `koanf:"api"`
	Cache    config.CacheConfig    `koanf:"cache"`
	Retry    config.RetryConfig    `koanf:"retry"`
	Mutation config.MutationConfig `koanf:"mutation"`
	Notify   config.NotifyConfig   `koanf:"notify"`
	Log      config.LogConfig      `koanf:"log"`
	Prefs    struct {
		Path string `koanf:"path"`
	} `koanf:"prefs"`
}

func (c *ClientConfig) String() string {
	var b strings.Builder

	b.WriteString("\n--- API Configuration ---\n")
	b.WriteString(fmt.Sprintf("  api.baseUrl: %s\n", c.API.BaseURL))
	b.WriteString(fmt.Sprintf("  api.timeout: %v\n", c.API.Timeout))

	b.WriteString("\n--- Client Behavior ---\n")
	b.WriteString(fmt.Sprintf("  cache.ttl: %v\n", c.Cache.TTL))
	b.WriteString(fmt.Sprintf("  retry.attempts: %d\n", c.Retry.Attempts))
	b.WriteString(fmt.Sprintf("  mutation.confirmThreshold: %d\n", c.Mutation.ConfirmThreshold))
	b.WriteString(fmt.Sprintf("  notify.capacity: %d\n", c.Notify.Capacity))
	b.WriteString(fmt.Sprintf("  notify.ttl: %v\n", c.Notify.TTL))

	b.WriteString("\n--- Logging ---\n")
	b.WriteString(fmt.Sprintf("  log.level: %s\n", c.Log.Level))

	return b.String()
}

func (c *ClientConfig) Validate() error {
	if err := c.API.Validate(); err != nil {
		return err
	}
	if err := c.Cache.Validate(); err != nil {
		return err
	}
	if err := c.Retry.Validate(); err != nil {
		return err
	}
	if err := c.Mutation.Validate(); err != nil {
		return err
	}
	if err := c.Notify.Validate(); err != nil {
		return err
	}
	return c.Log.Validate()
}

// ServerConfig configures the record store.
type ServerConfig struct {
	HTTPServer config.HTTPConfig     `koanf:"server"`
	Database   config.DatabaseConfig `koanf:"database"`
	Log        config.LogConfig      `koanf:"log"`
	PProf      config.PProfConfig    `koanf:"pprof"`
	Shutdown   config.ShutdownConfig `koanf:"shutdown"`
	Seed       bool                  `koanf:"seed"`
}

func (c *ServerConfig) String() string {
	var b strings.Builder

	b.WriteString("\n--- Server Configuration ---\n")
	b.WriteString(fmt.Sprintf("  server.port: %d\n", c.HTTPServer.Port))
	b.WriteString(fmt.Sprintf("  server.timeout.read: %v\n", c.HTTPServer.Timeout.Read))
	b.WriteString(fmt.Sprintf("  server.timeout.write: %v\n", c.HTTPServer.Timeout.Write))
	b.WriteString(fmt.Sprintf("  server.timeout.idle: %v\n", c.HTTPServer.Timeout.Idle))

	b.WriteString("\n--- Storage ---\n")
	b.WriteString(fmt.Sprintf("  database.url: %s\n", config.MaskURL(c.Database.URL)))
	b.WriteString(fmt.Sprintf("  database.timeout: %v\n", c.Database.Timeout))
	b.WriteString(fmt.Sprintf("  seed: %t\n", c.Seed))

	b.WriteString("\n--- Observability & Logging ---\n")
	b.WriteString(fmt.Sprintf("  log.level: %s\n", c.Log.Level))
	b.WriteString(fmt.Sprintf("  pprof.enabled: %t\n", c.PProf.Enabled))
	b.WriteString(fmt.Sprintf("  pprof.address: %s\n", c.PProf.Addr))

	b.WriteString("\n--- Application Behavior ---\n")
	b.WriteString(fmt.Sprintf("  shutdown.timeout: %s\n", c.Shutdown.Timeout))

	return b.String()
}

func (c *ServerConfig) Validate() error {
	if err := c.HTTPServer.Validate(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.PProf.Validate(); err != nil {
		return err
	}
	return c.Shutdown.Validate()
}
