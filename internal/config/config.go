// Package config loads YAML configuration and provides defaults.
// Delegates validation to normalize package for domain-specific rules.
package config

import (
	"fmt"
	"os"

	"github.com/sudo-tiz/dnshealth-go/internal/normalize"
	"gopkg.in/yaml.v3"
)

// APIConfig is the root configuration structure.
type APIConfig struct {
	RateLimiting RateLimitConfig `yaml:"rate_limiting,omitempty"`
	Server       ServerConfig    `yaml:"server,omitempty"`
	Worker       WorkerConfig    `yaml:"worker,omitempty"`
	Engine       EngineConfig    `yaml:"engine,omitempty"`
}

// RateLimitConfig controls tollbooth rate limiting.
type RateLimitConfig struct {
	RequestsPerSecond int `yaml:"requests_per_second,omitempty"`
	BurstSize         int `yaml:"burst_size,omitempty"`
}

// ServerConfig controls HTTP server timeouts and binding.
type ServerConfig struct {
	Host         string `yaml:"host,omitempty"`
	Port         string `yaml:"port,omitempty"`
	ReadTimeout  int    `yaml:"read_timeout,omitempty"`
	WriteTimeout int    `yaml:"write_timeout,omitempty"`
	IdleTimeout  int    `yaml:"idle_timeout,omitempty"`
}

// WorkerConfig controls Asynq worker concurrency.
type WorkerConfig struct {
	MaxWorkers      int `yaml:"max_workers,omitempty"`
	CleanupInterval int `yaml:"cleanup_interval,omitempty"`
}

// EngineConfig controls the DNS health analysis engine: which recursive
// resolver to query through, how long a full report and a single check
// may run, retry behavior, and where the TLD authority snapshot lives.
// MaxConcurrentChecks is stored here but not passed to the engine, whose
// per-checker fan-out is fixed at 8.
type EngineConfig struct {
	RecursiveResolver   string `yaml:"recursive_resolver,omitempty"`
	ReportDeadline      int    `yaml:"report_deadline,omitempty"`
	CheckDeadline       int    `yaml:"check_deadline,omitempty"`
	QueryTimeout        int    `yaml:"query_timeout,omitempty"`
	MaxRetries          int    `yaml:"max_retries,omitempty"`
	MaxConcurrentChecks int    `yaml:"max_concurrent_checks,omitempty"`
	TLDDataPath         string `yaml:"tld_data_path,omitempty"`
}

// LoadConfig reads YAML and returns default config if the file is
// missing - optional config approach.
func LoadConfig(filePath string) (*APIConfig, error) {
	// #nosec G304 -- filePath is user-controlled via CLI flag by design
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &APIConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config APIConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if config.Engine.RecursiveResolver != "" {
		if _, err := normalize.Target(config.Engine.RecursiveResolver); err != nil {
			return nil, fmt.Errorf("invalid engine.recursive_resolver: %w", err)
		}
	}

	return &config, nil
}

// GetRateLimitRequestsPerSecond provides default fallback.
// Returns 0 if explicitly set to 0 (disables rate limiting).
func (c *APIConfig) GetRateLimitRequestsPerSecond() int {
	if c.RateLimiting.RequestsPerSecond >= 0 {
		return c.RateLimiting.RequestsPerSecond
	}
	return 10
}

// GetRateLimitBurstSize provides default fallback.
func (c *APIConfig) GetRateLimitBurstSize() int {
	if c.RateLimiting.BurstSize > 0 {
		return c.RateLimiting.BurstSize
	}
	return 20
}

// GetServerHost provides default fallback.
func (c *APIConfig) GetServerHost() string {
	if c.Server.Host != "" {
		return c.Server.Host
	}
	return "0.0.0.0"
}

// GetServerPort provides default fallback.
func (c *APIConfig) GetServerPort() string {
	if c.Server.Port != "" {
		return c.Server.Port
	}
	return "5000"
}

// GetServerReadTimeout provides default fallback (seconds).
func (c *APIConfig) GetServerReadTimeout() int {
	if c.Server.ReadTimeout > 0 {
		return c.Server.ReadTimeout
	}
	return 15
}

// GetServerWriteTimeout provides default fallback (seconds).
func (c *APIConfig) GetServerWriteTimeout() int {
	if c.Server.WriteTimeout > 0 {
		return c.Server.WriteTimeout
	}
	return 15
}

// GetServerIdleTimeout provides default fallback (seconds).
func (c *APIConfig) GetServerIdleTimeout() int {
	if c.Server.IdleTimeout > 0 {
		return c.Server.IdleTimeout
	}
	return 60
}

// GetMaxWorkers provides default fallback.
func (c *APIConfig) GetMaxWorkers() int {
	if c.Worker.MaxWorkers > 0 {
		return c.Worker.MaxWorkers
	}
	return 4
}

// GetWorkerCleanupInterval provides default fallback (minutes).
func (c *APIConfig) GetWorkerCleanupInterval() int {
	if c.Worker.CleanupInterval > 0 {
		return c.Worker.CleanupInterval
	}
	return 10
}

// GetRecursiveResolver provides default fallback: Quad9, matching the
// teacher's choice of a privacy-respecting public resolver as the
// project default.
func (c *APIConfig) GetRecursiveResolver() string {
	if c.Engine.RecursiveResolver != "" {
		return c.Engine.RecursiveResolver
	}
	return "udp://9.9.9.9:53"
}

// GetReportDeadline provides default fallback (seconds).
func (c *APIConfig) GetReportDeadline() int {
	if c.Engine.ReportDeadline > 0 {
		return c.Engine.ReportDeadline
	}
	return 120
}

// GetCheckDeadline provides default fallback (seconds).
func (c *APIConfig) GetCheckDeadline() int {
	if c.Engine.CheckDeadline > 0 {
		return c.Engine.CheckDeadline
	}
	return 30
}

// GetQueryTimeout provides default fallback (seconds).
func (c *APIConfig) GetQueryTimeout() int {
	if c.Engine.QueryTimeout > 0 {
		return c.Engine.QueryTimeout
	}
	return 5
}

// GetMaxRetries provides default fallback.
func (c *APIConfig) GetMaxRetries() int {
	if c.Engine.MaxRetries > 0 {
		return c.Engine.MaxRetries
	}
	return 3
}

// GetMaxConcurrentChecks provides default fallback.
func (c *APIConfig) GetMaxConcurrentChecks() int {
	if c.Engine.MaxConcurrentChecks > 0 {
		return c.Engine.MaxConcurrentChecks
	}
	return 8
}

// GetTLDDataPath provides default fallback.
func (c *APIConfig) GetTLDDataPath() string {
	if c.Engine.TLDDataPath != "" {
		return c.Engine.TLDDataPath
	}
	return "conf/tld_servers.json"
}

// ApplyIntOverride applies a CLI flag override to a config int field with default fallback.
// If the CLI flag was changed and the value is positive, it overrides the config value.
// Otherwise, if the config value is zero, the default value is applied.
func ApplyIntOverride(flagChanged bool, flagValue int, target *int, defaultVal int) {
	if flagChanged && flagValue > 0 {
		*target = flagValue
	} else if *target == 0 {
		*target = defaultVal
	}
}

// ApplyStringOverride applies a CLI flag override to a config string field with default fallback.
// If the CLI value is non-empty, it overrides the config value.
// Otherwise, if the config value is empty, the default value is applied.
func ApplyStringOverride(cliValue string, target *string, defaultVal string) {
	if cliValue != "" {
		*target = cliValue
	} else if *target == "" {
		*target = defaultVal
	}
}
