package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	daemon "github.com/andrescamacho/solarion-go/internal/adapters/grpc"
	"github.com/andrescamacho/solarion-go/internal/infrastructure/pidfile"
)

// NewHealthCommand creates the health command
func NewHealthCommand() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check daemon health status",
		Long:  `Verify that "solarion serve" is running and its completion engine is serving.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			pid, running := pidfile.New(cfg.Daemon.PIDFile).Running()
			if !running {
				return fmt.Errorf("daemon is not running (no live process in %s)", cfg.Daemon.PIDFile)
			}

			client, err := daemon.NewHealthClient(cfg.Daemon.SocketPath)
			if err != nil {
				return fmt.Errorf("failed to connect to daemon: %w", err)
			}
			defer client.Close()

			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			status, err := client.Check(ctx, daemon.CompletionService)
			if err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}
			if status != healthpb.HealthCheckResponse_SERVING {
				return fmt.Errorf("daemon (pid %d) is %s", pid, status)
			}

			fmt.Println("✓ Daemon is healthy")
			fmt.Printf("  PID:     %d\n", pid)
			fmt.Printf("  Socket:  %s\n", cfg.Daemon.SocketPath)
			fmt.Printf("  Status:  %s\n", status)

			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "Health check timeout")

	return cmd
}
