package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	adminQueries "github.com/andrescamacho/solarion-go/internal/application/admin/queries"
)

// NewPendingCommand creates the pending command with subcommands
func NewPendingCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pending",
		Short: "Inspect pending timed events",
	}

	cmd.AddCommand(newPendingListCommand())

	return cmd
}

func newPendingListCommand() *cobra.Command {
	var (
		kinds []string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Summarise the pending tables and list overdue records",
		Long: `Show how many records each pending table holds, followed by the
overdue ones (end time passed, not yet completed) in sweep order.

Examples:
  solarion pending list
  solarion pending list --kind movement --limit 50`,
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
			resp, err := m.Send(ctx, &adminQueries.ListPendingQuery{Kinds: parsed, Limit: limit})
			if err != nil {
				return err
			}
			result := resp.(*adminQueries.ListPendingResponse)
			now := rt.clock.Now()

			summary := table.NewWriter()
			summary.SetOutputMirror(os.Stdout)
			summary.AppendHeader(table.Row{"Kind", "Pending", "Overdue"})
			overdue := table.NewWriter()
			overdue.SetOutputMirror(os.Stdout)
			overdue.AppendHeader(table.Row{"Kind", "ID", "Ended At", "Overdue By"})

			rows := 0
			for _, k := range result.Kinds {
				summary.AppendRow(table.Row{k.Kind, k.Total, len(k.Overdue)})
				for _, e := range k.Overdue {
					ended := "unscheduled"
					late := "-"
					if end := e.EndsAt(); !end.IsZero() {
						ended = end.Format(time.RFC3339)
						late = now.Sub(end).Round(time.Second).String()
					}
					overdue.AppendRow(table.Row{k.Kind, e.PendingID(), ended, late})
					rows++
				}
			}

			summary.Render()
			if rows == 0 {
				fmt.Println("\nNo overdue records")
				return nil
			}
			fmt.Println()
			overdue.Render()
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&kinds, "kind", nil, "Restrict the listing to these kinds")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum overdue records listed per kind")

	return cmd
}
