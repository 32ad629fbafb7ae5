package config

import "time"

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "postgres"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "solarion"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "solarion"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 25
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 5
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// Completion defaults
	if cfg.Completion.SweepInterval == 0 {
		cfg.Completion.SweepInterval = time.Minute
	}
	if cfg.Completion.LockTTL == 0 {
		cfg.Completion.LockTTL = 60 * time.Second
	}
	if cfg.Completion.LockKey == "" {
		cfg.Completion.LockKey = "completion:sweep"
	}
	if cfg.Completion.BatchSize == 0 {
		cfg.Completion.BatchSize = 100
	}

	// Queue defaults
	if cfg.Queue.Driver == "" {
		cfg.Queue.Driver = "timer"
	}

	// HTTP defaults
	if cfg.HTTP.Address == "" {
		cfg.HTTP.Address = "localhost:8080"
	}
	if cfg.HTTP.CronRate == 0 {
		cfg.HTTP.CronRate = 1
	}
	if cfg.HTTP.CronBurst == 0 {
		cfg.HTTP.CronBurst = 1
	}

	// Daemon defaults
	if cfg.Daemon.SocketPath == "" {
		cfg.Daemon.SocketPath = "/tmp/solarion.sock"
	}
	if cfg.Daemon.PIDFile == "" {
		cfg.Daemon.PIDFile = "/tmp/solarion.pid"
	}
	if cfg.Daemon.ShutdownTimeout == 0 {
		cfg.Daemon.ShutdownTimeout = 30 * time.Second
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	// Metrics defaults
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	if cfg.Metrics.PendingPollInterval == 0 {
		cfg.Metrics.PendingPollInterval = 30 * time.Second
	}
}
