package config

import "time"

// CompletionConfig controls the batch sweeper
type CompletionConfig struct {
	// How often `serve` runs the sweeper
	SweepInterval time.Duration `mapstructure:"sweep_interval" yaml:"sweep_interval" validate:"required"`

	// Lifetime of the sweep lock; a crashed holder blocks sweeps at most this long
	LockTTL time.Duration `mapstructure:"lock_ttl" yaml:"lock_ttl" validate:"required"`

	// Name of the sweep lock row
	LockKey string `mapstructure:"lock_key" yaml:"lock_key" validate:"required,lockkey"`

	// Rows fetched per page while sweeping one kind
	BatchSize int `mapstructure:"batch_size" yaml:"batch_size" validate:"min=1"`
}

// QueueConfig selects how deferred completion jobs run
type QueueConfig struct {
	// sync runs jobs inline and ignores the delay; timer delays them in-process
	Driver string `mapstructure:"driver" yaml:"driver" validate:"required,oneof=sync timer"`
}

// HTTPConfig holds the HTTP API configuration
type HTTPConfig struct {
	// Listen address (host:port)
	Address string `mapstructure:"address" yaml:"address" validate:"required"`

	// Shared secret for GET /cron/tick; empty disables the endpoint
	CronToken string `mapstructure:"cron_token" yaml:"cron_token"`

	// Allowed cron trigger requests per second
	CronRate float64 `mapstructure:"cron_rate" yaml:"cron_rate" validate:"gt=0"`

	// Burst size for the cron trigger limiter
	CronBurst int `mapstructure:"cron_burst" yaml:"cron_burst" validate:"min=1"`
}
