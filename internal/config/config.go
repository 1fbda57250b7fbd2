// Package config resolves the cluster connection and runtime settings from
// environment variables, with sane defaults for a local RAPI endpoint.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Settings is the resolved runtime configuration.
type Settings struct {
	// Address is the host the cluster RAPI listens on.
	Address string `mapstructure:"address"`

	// Port is the RAPI port.
	Port int `mapstructure:"port"`

	// Username and Password enable HTTP basic authentication. RAPI write
	// access always requires credentials.
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`

	// VerifyTLS enables certificate verification against the system trust
	// store. Off by default: clusters commonly run self-signed certificates.
	VerifyTLS bool `mapstructure:"verify_tls"`

	// Wait blocks lifecycle commands until the submitted job completes.
	Wait bool `mapstructure:"wait"`

	// JobTimeout bounds the wait for a single job.
	JobTimeout time.Duration `mapstructure:"job_timeout"`

	// PollInterval is the fixed delay between job status polls.
	PollInterval time.Duration `mapstructure:"poll_interval"`

	// HTTPTimeout bounds a single RAPI request.
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`

	// LogLevel is the zerolog level name (trace, debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`
}

// Load resolves settings from GANETI_* environment variables.
// GANETI_ADDRESS, GANETI_PORT, GANETI_USERNAME and so on.
func Load() (*Settings, error) {
	v := viper.New()

	v.SetDefault("address", "localhost")
	v.SetDefault("port", 5080)
	v.SetDefault("username", "")
	v.SetDefault("password", "")
	v.SetDefault("verify_tls", false)
	v.SetDefault("wait", true)
	v.SetDefault("job_timeout", 300*time.Second)
	v.SetDefault("poll_interval", 2*time.Second)
	v.SetDefault("http_timeout", 30*time.Second)
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix("GANETI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	return &s, nil
}

// Validate checks the settings for consistency.
func (s *Settings) Validate() error {
	if s.Address == "" {
		return fmt.Errorf("address is required")
	}
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", s.Port)
	}
	if s.JobTimeout <= 0 {
		return fmt.Errorf("job_timeout must be positive, got %s", s.JobTimeout)
	}
	if s.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %s", s.PollInterval)
	}
	if s.HTTPTimeout <= 0 {
		return fmt.Errorf("http_timeout must be positive, got %s", s.HTTPTimeout)
	}
	if (s.Username == "") != (s.Password == "") {
		return fmt.Errorf("username and password must be set together")
	}
	return nil
}
