package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jittakal/boundedbuffer/internal/config/dto"
	"github.com/jittakal/boundedbuffer/internal/worker"
	"github.com/jittakal/boundedbuffer/pkg/buffer"
)

// EnvPrefix prefixes every environment override, e.g. BBUF_BUFFER_CAPACITY.
const EnvPrefix = "BBUF"

// Loader handles configuration loading and validation
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return &Loader{v: v}
}

// BindFlags binds command-line flags to configuration keys. A flag that was
// set on the command line takes precedence over the file and the environment.
func (l *Loader) BindFlags(flags *pflag.FlagSet, keys map[string]string) error {
	for name, key := range keys {
		f := flags.Lookup(name)
		if f == nil {
			return fmt.Errorf("unknown flag %q for key %q", name, key)
		}
		if err := l.v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag %q: %w", name, err)
		}
	}
	return nil
}

// Load loads configuration from file and environment variables
func (l *Loader) Load(path string) (*dto.ApplicationConfig, error) {
	l.setDefaults()

	if path != "" {
		l.v.SetConfigFile(path)
		if err := l.v.ReadInConfig(); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	// Expand environment variables in config values
	for _, key := range l.v.AllKeys() {
		value := l.v.GetString(key)
		if strings.Contains(value, "${") {
			l.v.Set(key, os.ExpandEnv(value))
		}
	}

	var config dto.ApplicationConfig
	if err := l.v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := l.Validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func (l *Loader) setDefaults() {
	// Application defaults
	l.v.SetDefault("application.name", "boundedbuffer")
	l.v.SetDefault("application.version", "1.0.0")
	l.v.SetDefault("application.environment", "development")

	// Buffer defaults
	l.v.SetDefault("buffer.capacity", 8)
	l.v.SetDefault("buffer.strategy", string(buffer.StrategyMonitor))

	// Workload defaults
	l.v.SetDefault("workload.producers", 4)
	l.v.SetDefault("workload.consumers", 4)
	l.v.SetDefault("workload.items_per_producer", 1000)
	l.v.SetDefault("workload.mode", string(worker.ModeBlocking))
	l.v.SetDefault("workload.timeout_ms", 100)
	l.v.SetDefault("workload.retry_backoff_ms", 1)
	l.v.SetDefault("workload.producer_period_ms", 0)
	l.v.SetDefault("workload.consumer_period_ms", 0)

	// Observability defaults
	l.v.SetDefault("observability.logging.level", "info")
	l.v.SetDefault("observability.logging.format", "json")
	l.v.SetDefault("observability.logging.output", "stdout")
	l.v.SetDefault("observability.metrics.enabled", false)
	l.v.SetDefault("observability.metrics.port", 9090)
	l.v.SetDefault("observability.metrics.path", "/metrics")
	l.v.SetDefault("observability.health.port", 8080)
	l.v.SetDefault("observability.health.liveness_path", "/health/live")
	l.v.SetDefault("observability.health.readiness_path", "/health/ready")

	// Shutdown defaults
	l.v.SetDefault("shutdown.grace_period_seconds", 5)
}

// Validate validates the configuration
func (l *Loader) Validate(config *dto.ApplicationConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}

	if _, err := buffer.ParseStrategy(config.Buffer.Strategy); err != nil {
		return err
	}
	if err := worker.ValidateWorkload(config.Workload); err != nil {
		return err
	}

	switch config.Observability.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("unsupported logging format: %s", config.Observability.Logging.Format)
	}

	if config.Observability.Metrics.Enabled {
		if config.Observability.Metrics.Port < 1 || config.Observability.Metrics.Port > 65535 {
			return fmt.Errorf("invalid metrics port: %d", config.Observability.Metrics.Port)
		}
		if config.Observability.Health.Port < 1 || config.Observability.Health.Port > 65535 {
			return fmt.Errorf("invalid health port: %d", config.Observability.Health.Port)
		}
	}

	return nil
}
