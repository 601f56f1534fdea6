package dto

import (
	"fmt"
	"time"
)

// ApplicationConfig is the root configuration structure
type ApplicationConfig struct {
	Application   ApplicationInfo     `mapstructure:"application"`
	Buffer        BufferConfig        `mapstructure:"buffer"`
	Workload      WorkloadConfig      `mapstructure:"workload"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Shutdown      ShutdownConfig      `mapstructure:"shutdown"`
}

// ApplicationInfo contains application metadata
type ApplicationInfo struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// BufferConfig selects the shared buffer
type BufferConfig struct {
	Capacity int    `mapstructure:"capacity"`
	Strategy string `mapstructure:"strategy"`
}

// WorkloadConfig describes the producer/consumer run
type WorkloadConfig struct {
	Producers        int    `mapstructure:"producers"`
	Consumers        int    `mapstructure:"consumers"`
	ItemsPerProducer int    `mapstructure:"items_per_producer"`
	Mode             string `mapstructure:"mode"`
	TimeoutMS        int    `mapstructure:"timeout_ms"`
	RetryBackoffMS   int    `mapstructure:"retry_backoff_ms"`
	ProducerPeriodMS int    `mapstructure:"producer_period_ms"`
	ConsumerPeriodMS int    `mapstructure:"consumer_period_ms"`
}

// Timeout returns the timed mode deadline offset.
func (c WorkloadConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// RetryBackoff returns the pause between two failed try attempts.
func (c WorkloadConfig) RetryBackoff() time.Duration {
	return time.Duration(c.RetryBackoffMS) * time.Millisecond
}

// ProducerPeriod returns the pause between two productions.
func (c WorkloadConfig) ProducerPeriod() time.Duration {
	return time.Duration(c.ProducerPeriodMS) * time.Millisecond
}

// ConsumerPeriod returns the pause between two consumptions.
func (c WorkloadConfig) ConsumerPeriod() time.Duration {
	return time.Duration(c.ConsumerPeriodMS) * time.Millisecond
}

// TotalItems returns the number of items the run transfers.
func (c WorkloadConfig) TotalItems() int {
	return c.Producers * c.ItemsPerProducer
}

// ObservabilityConfig contains observability settings
type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Health  HealthConfig  `mapstructure:"health"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// MetricsConfig contains metrics settings
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port"`
	Path    string `mapstructure:"path"`
}

// HealthConfig contains health check settings
type HealthConfig struct {
	Port          int    `mapstructure:"port"`
	LivenessPath  string `mapstructure:"liveness_path"`
	ReadinessPath string `mapstructure:"readiness_path"`
}

// ShutdownConfig contains shutdown settings
type ShutdownConfig struct {
	GracePeriodSeconds int `mapstructure:"grace_period_seconds"`
}

// GracePeriod returns the time allowed for the HTTP servers to drain.
func (c ShutdownConfig) GracePeriod() time.Duration {
	return time.Duration(c.GracePeriodSeconds) * time.Second
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if c.Application.Name == "" {
		return fmt.Errorf("application name is required")
	}
	if err := c.Buffer.Validate(); err != nil {
		return err
	}
	return c.Workload.Validate()
}

// Validate validates buffer configuration.
func (c *BufferConfig) Validate() error {
	if c.Capacity < 1 {
		return fmt.Errorf("buffer capacity must be at least 1, got %d", c.Capacity)
	}
	if c.Strategy == "" {
		return fmt.Errorf("buffer strategy is required")
	}
	return nil
}

// Validate validates workload configuration.
func (c *WorkloadConfig) Validate() error {
	if c.Producers < 1 {
		return fmt.Errorf("workload producers must be at least 1, got %d", c.Producers)
	}
	if c.Consumers < 1 {
		return fmt.Errorf("workload consumers must be at least 1, got %d", c.Consumers)
	}
	if c.ItemsPerProducer < 0 {
		return fmt.Errorf("workload items per producer must not be negative, got %d", c.ItemsPerProducer)
	}
	if c.TimeoutMS < 0 || c.RetryBackoffMS < 0 || c.ProducerPeriodMS < 0 || c.ConsumerPeriodMS < 0 {
		return fmt.Errorf("workload durations must not be negative")
	}
	return nil
}
