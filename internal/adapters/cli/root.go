package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	verbose    bool
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "solarion",
		Short: "Solarion - timed-event completion engine",
		Long: `Solarion finishes the constructions, upgrades, trainings, research jobs
and fleet movements of the game once their end time has passed.

Schedule "solarion tick" every minute from cron, or run "solarion serve" to
get the HTTP API together with an in-process sweeper.

Examples:
  solarion migrate && solarion seed
  solarion tick
  solarion tick --kind movement
  solarion serve
  solarion pending list
  solarion prune --kind research
  solarion health`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("SOLARION_CONFIG"),
		"Path to config file (default: search ./config.yaml, ./configs, /etc/solarion)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")

	// Add command groups
	rootCmd.AddCommand(NewTickCommand())
	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewMigrateCommand())
	rootCmd.AddCommand(NewSeedCommand())
	rootCmd.AddCommand(NewPruneCommand())
	rootCmd.AddCommand(NewPendingCommand())
	rootCmd.AddCommand(NewLogsCommand())
	rootCmd.AddCommand(NewHealthCommand())
	rootCmd.AddCommand(NewConfigCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
