package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// NewLogsCommand creates the logs command: persisted engine warnings and errors
func NewLogsCommand() *cobra.Command {
	var (
		level string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show persisted engine warnings and errors",
		Long: `Show the newest engine log entries persisted when logging.persist is
enabled: failed completions, failed on-read finalization, dispatch failures.

Examples:
  solarion logs
  solarion logs --level error --limit 100
  solarion logs prune --older-than 720h`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(nil)
			if err != nil {
				return err
			}
			defer rt.Close()

			var filter *string
			if level != "" {
				normalized := strings.ToUpper(level)
				if normalized == "WARN" {
					normalized = "WARNING"
				}
				filter = &normalized
			}

			entries, err := rt.logs.Recent(context.Background(), limit, filter)
			if err != nil {
				return fmt.Errorf("failed to read logs: %w", err)
			}
			if len(entries) == 0 {
				fmt.Println("No log entries")
				return nil
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"Time", "Level", "Message", "Metadata"})
			for _, e := range entries {
				meta := ""
				if len(e.Metadata) > 0 {
					if raw, err := json.Marshal(e.Metadata); err == nil {
						meta = string(raw)
					}
				}
				tw.AppendRow(table.Row{e.Timestamp.Format(time.RFC3339), e.Level, e.Message, meta})
			}
			tw.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&level, "level", "", "Only show entries of this level (warning, error)")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum entries shown")

	cmd.AddCommand(newLogsPruneCommand())

	return cmd
}

func newLogsPruneCommand() *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete persisted engine log entries older than a duration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return fmt.Errorf("--older-than must be positive")
			}

			rt, err := openRuntime(nil)
			if err != nil {
				return err
			}
			defer rt.Close()

			deleted, err := rt.logs.PruneBefore(context.Background(), rt.clock.Now().Add(-olderThan))
			if err != nil {
				return fmt.Errorf("failed to prune logs: %w", err)
			}
			fmt.Printf("✓ Deleted %d log entries older than %s\n", deleted, olderThan)
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "Age cutoff")

	return cmd
}
