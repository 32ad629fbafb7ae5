package config

import "time"

// MetricsConfig controls the Prometheus endpoint served by `solarion serve`
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Route on the HTTP API (default: /metrics)
	Path string `mapstructure:"path" yaml:"path" validate:"omitempty,startswith=/"`

	// How often the pending-records gauge is refreshed from the database
	PendingPollInterval time.Duration `mapstructure:"pending_poll_interval" yaml:"pending_poll_interval" validate:"omitempty,min=1s"`
}
