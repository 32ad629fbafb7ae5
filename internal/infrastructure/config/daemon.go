package config

import "time"

// DaemonConfig holds configuration for the long-running `serve` process
type DaemonConfig struct {
	// PID file location
	PIDFile string `mapstructure:"pid_file" yaml:"pid_file" validate:"required"`

	// Unix socket path for the gRPC health service
	SocketPath string `mapstructure:"socket_path" yaml:"socket_path" validate:"required"`

	// Graceful shutdown timeout
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" validate:"required"`
}
