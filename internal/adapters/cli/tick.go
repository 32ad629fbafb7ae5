package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	adminCommands "github.com/andrescamacho/solarion-go/internal/application/admin/commands"
)

// NewTickCommand creates the tick command: one guarded sweep, meant for cron
func NewTickCommand() *cobra.Command {
	var (
		kinds   []string
		noColor bool
	)

	cmd := &cobra.Command{
		Use:   "tick",
		Short: "Finish every expired timed event once",
		Long: `Run a single sweep over the pending tables, finishing every record whose
end time has passed. A run that finds the sweep lock held exits quietly.

The command exits non-zero when any record failed to complete.

Examples:
  solarion tick
  solarion tick --kind construction,upgrade`,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseKinds(kinds)
			if err != nil {
				return err
			}

			rt, err := openRuntime(nil)
			if err != nil {
				return err
			}
			defer rt.Close()

			m, err := rt.mediator(nil)
			if err != nil {
				return err
			}

			ctx := rt.context(context.Background())
			resp, err := m.Send(ctx, &adminCommands.RunSweepCommand{Kinds: parsed})
			if err != nil {
				return fmt.Errorf("sweep failed: %w", err)
			}
			report := resp.(*adminCommands.RunSweepResponse).Report

			tty := isTerminal()
			formatter := NewTreeFormatter(tty && !noColor, tty)
			fmt.Print(formatter.FormatReport(report))
			fmt.Println(formatter.FormatSummary(report))

			if report.Errored > 0 {
				return fmt.Errorf("%d records failed to complete", report.Errored)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&kinds, "kind", nil,
		"Restrict the sweep to these kinds (construction, upgrade, training, research, movement)")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	return cmd
}

// isTerminal reports whether stdout is attached to a character device
func isTerminal() bool {
	info, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
