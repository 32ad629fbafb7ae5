package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/andrescamacho/solarion-go/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration settings",
		Long: `Inspect Solarion configuration settings.

Configuration is loaded from multiple sources with priority:
1. Environment variables (SOLARION_* prefix, .env honoured)
2. Config file (config.yaml)
3. Default values

Examples:
  solarion config show
  solarion config show --format yaml`,
	}

	cmd.AddCommand(newConfigShowCommand())

	return cmd
}

// newConfigShowCommand creates the config show subcommand
func newConfigShowCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long: `Display the effective configuration after defaults and environment
overrides. Secrets are masked.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: Failed to load config: %v\n", err)
				fmt.Fprintln(os.Stderr, "Using default configuration.")
				cfg = config.LoadConfigOrDefault("")
			}
			masked := maskConfig(*cfg)

			switch format {
			case "yaml":
				enc := yaml.NewEncoder(os.Stdout)
				enc.SetIndent(2)
				defer enc.Close()
				return enc.Encode(masked)
			case "text":
				printConfig(&masked)
				return nil
			default:
				return fmt.Errorf("unsupported format %q (use text or yaml)", format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or yaml")

	return cmd
}

// maskConfig hides credentials before display
func maskConfig(cfg config.Config) config.Config {
	if cfg.Database.Password != "" {
		cfg.Database.Password = "****"
	}
	cfg.Database.URL = maskPassword(cfg.Database.URL)
	if cfg.HTTP.CronToken != "" {
		cfg.HTTP.CronToken = "****"
	}
	return cfg
}

func printConfig(cfg *config.Config) {
	fmt.Println("Solarion Configuration")
	fmt.Println("======================")

	fmt.Println("\nDatabase:")
	fmt.Printf("  Type:             %s\n", cfg.Database.Type)
	switch {
	case cfg.Database.URL != "":
		fmt.Printf("  URL:              %s\n", cfg.Database.URL)
	case cfg.Database.Type == "sqlite":
		fmt.Printf("  Path:             %s\n", cfg.Database.Path)
	default:
		fmt.Printf("  Host:             %s\n", cfg.Database.Host)
		fmt.Printf("  Port:             %d\n", cfg.Database.Port)
		fmt.Printf("  Database:         %s\n", cfg.Database.Name)
		fmt.Printf("  User:             %s\n", cfg.Database.User)
	}
	fmt.Printf("  Max Connections:  %d\n", cfg.Database.Pool.MaxOpen)

	fmt.Println("\nCompletion:")
	fmt.Printf("  Sweep Interval:   %s\n", cfg.Completion.SweepInterval)
	fmt.Printf("  Lock:             %s (ttl %s)\n", cfg.Completion.LockKey, cfg.Completion.LockTTL)
	fmt.Printf("  Batch Size:       %d\n", cfg.Completion.BatchSize)
	fmt.Printf("  Queue Driver:     %s\n", cfg.Queue.Driver)

	fmt.Println("\nHTTP:")
	fmt.Printf("  Address:          %s\n", cfg.HTTP.Address)
	if cfg.HTTP.CronToken == "" {
		fmt.Printf("  Cron Trigger:     disabled\n")
	} else {
		fmt.Printf("  Cron Trigger:     %.2f req/s (burst: %d)\n", cfg.HTTP.CronRate, cfg.HTTP.CronBurst)
	}

	fmt.Println("\nDaemon:")
	fmt.Printf("  PID File:         %s\n", cfg.Daemon.PIDFile)
	fmt.Printf("  Socket Path:      %s\n", cfg.Daemon.SocketPath)
	fmt.Printf("  Shutdown Timeout: %s\n", cfg.Daemon.ShutdownTimeout)

	fmt.Println("\nLogging:")
	fmt.Printf("  Level:            %s\n", cfg.Logging.Level)
	fmt.Printf("  Format:           %s\n", cfg.Logging.Format)
	fmt.Printf("  Output:           %s\n", cfg.Logging.Output)
	fmt.Printf("  Persist:          %t\n", cfg.Logging.Persist)

	fmt.Println("\nMetrics:")
	fmt.Printf("  Enabled:          %t\n", cfg.Metrics.Enabled)
	fmt.Printf("  Path:             %s\n", cfg.Metrics.Path)
	fmt.Printf("  Pending poll:     %s\n", cfg.Metrics.PendingPollInterval)
}
