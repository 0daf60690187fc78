// Package config loads portal settings from the environment.
// File: config/config.go
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Metrics backends understood by the portal.
const (
	MetricsPrometheus = "prometheus"
	MetricsCloudWatch = "cloudwatch"
	MetricsNone       = "none"
)

const devSessionSecret = "dev-secret"

// Config holds every setting the portal reads at start-up.
type Config struct {
	Port                string
	ActivitiesAPIURL    string
	ApplicationURL      string
	SessionSecret       string
	RequestTimeout      time.Duration
	MetricsBackend      string
	CloudWatchNamespace string
	AWSRegion           string
	TracingEnabled      bool
	Environment         string
	LogDir              string
}

// IsProduction reports whether APP_ENV is "production".
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Load reads an optional .env file, then the process environment.
func Load() (*Config, error) {
	loadEnvFile(".env")
	return FromViper(newViper())
}

// loadEnvFile loads path into the environment when it exists. Variables that are
// already set keep their values.
func loadEnvFile(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	if err := godotenv.Load(path); err != nil {
		fmt.Fprintf(os.Stderr, "config: failed to load %s: %v\n", path, err)
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ACTIVITIES_API_URL", "http://localhost:8000")
	v.SetDefault("APPLICATION_URL", "http://localhost:8080")
	v.SetDefault("SESSION_SECRET", devSessionSecret)
	v.SetDefault("REQUEST_TIMEOUT", "10s")
	v.SetDefault("METRICS_BACKEND", MetricsPrometheus)
	v.SetDefault("CLOUDWATCH_NAMESPACE", "SchoolActivities")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("TRACING_ENABLED", false)
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_DIR", "")
	return v
}

// FromViper builds and validates a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:                v.GetString("PORT"),
		ActivitiesAPIURL:    strings.TrimRight(v.GetString("ACTIVITIES_API_URL"), "/"),
		ApplicationURL:      v.GetString("APPLICATION_URL"),
		SessionSecret:       v.GetString("SESSION_SECRET"),
		RequestTimeout:      v.GetDuration("REQUEST_TIMEOUT"),
		MetricsBackend:      strings.ToLower(v.GetString("METRICS_BACKEND")),
		CloudWatchNamespace: v.GetString("CLOUDWATCH_NAMESPACE"),
		AWSRegion:           v.GetString("AWS_REGION"),
		TracingEnabled:      v.GetBool("TRACING_ENABLED"),
		Environment:         v.GetString("APP_ENV"),
		LogDir:              v.GetString("LOG_DIR"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings that would otherwise fail at request time.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT must not be empty")
	}
	if err := validateURL("ACTIVITIES_API_URL", c.ActivitiesAPIURL); err != nil {
		return err
	}
	if err := validateURL("APPLICATION_URL", c.ApplicationURL); err != nil {
		return err
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}

	switch c.MetricsBackend {
	case MetricsPrometheus, MetricsCloudWatch, MetricsNone:
	default:
		return fmt.Errorf("METRICS_BACKEND %q is not one of prometheus, cloudwatch, none", c.MetricsBackend)
	}

	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET must not be empty")
	}
	if c.IsProduction() && c.SessionSecret == devSessionSecret {
		return errors.New("SESSION_SECRET must be set in production")
	}
	return nil
}

func validateURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s must be an absolute http(s) URL, got %q", key, raw)
	}
	return nil
}
