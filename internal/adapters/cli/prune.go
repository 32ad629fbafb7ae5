package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	adminCommands "github.com/andrescamacho/solarion-go/internal/application/admin/commands"
	"github.com/andrescamacho/solarion-go/internal/domain/timer"
)

// NewPruneCommand creates the prune command
func NewPruneCommand() *cobra.Command {
	var (
		kinds []string
		yes   bool
	)

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete expired pending records without applying them",
		Long: `Delete pending records whose end time has passed WITHOUT running their
finishers. Players lose the buildings, units, research levels and fleets
those records would have produced. Use only for abandoned data.

Examples:
  solarion prune --yes
  solarion prune --kind research --yes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseKinds(kinds)
			if err != nil {
				return err
			}
			if !yes {
				return fmt.Errorf("prune discards game state; pass --yes to confirm")
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
			resp, err := m.Send(ctx, &adminCommands.PruneExpiredCommand{Kinds: parsed})
			if err != nil {
				return fmt.Errorf("prune failed: %w", err)
			}
			result := resp.(*adminCommands.PruneExpiredResponse)

			fmt.Printf("✓ Pruned %d expired records\n", result.Total)
			for _, kind := range timer.Kinds {
				if n, ok := result.Deleted[kind]; ok {
					fmt.Printf("  %-12s %d\n", kind, n)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&kinds, "kind", nil, "Restrict the prune to these kinds")
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the deletion")

	return cmd
}
