package cmd

import (
	"fmt"

	cr "github.com/eliran89c/cloudkeeper/pkg/cloudresource"
	"github.com/eliran89c/cloudkeeper/pkg/inventory"
	"github.com/spf13/cobra"
)

var (
	workers     int
	stopOnError bool
)

var (
	listCmd = &cobra.Command{
		Use:   "list KIND",
		Short: "List all items of a kind",
		Long:  fmt.Sprintf("List all items of a kind. KIND is one of %v.", cr.Kinds),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := newSession(ctx)
			if err != nil {
				return err
			}

			m, err := s.manager(args[0])
			if err != nil {
				return err
			}

			items, err := m.GetAll(ctx)
			if err != nil {
				return fmt.Errorf("error listing %s items: %w", m.ItemType(), err)
			}
			printItems(cmd.OutOrStdout(), m.ItemType(), items)
			return nil
		},
	}

	inventoryCmd = &cobra.Command{
		Use:   "inventory [KIND...]",
		Short: "List the items of several kinds at once",
		Long:  "List the items of the given kinds concurrently, all kinds when none is given, and print a summary.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := newSession(ctx)
			if err != nil {
				return err
			}

			kinds := make([]cr.Kind, 0, len(args))
			for _, arg := range args {
				kind, err := cr.ParseKind(arg)
				if err != nil {
					return err
				}
				kinds = append(kinds, kind)
			}

			inv := inventory.New(s.factory, &inventory.Options{ConcurrentWorkers: workers, StopOnError: stopOnError})
			results, err := inv.Run(ctx, s.conn, kinds)
			if err != nil {
				return fmt.Errorf("error executing inventory: %w", err)
			}

			out := cmd.OutOrStdout()
			for _, result := range results {
				if result.Error != nil {
					fmt.Fprintf(out, "Error listing %s: %v\n", result.Kind, result.Error)
					continue
				}
				fmt.Fprintf(out, "\n%s (%d)\n", result.Kind, len(result.Items))
				printItems(out, result.Kind, result.Items)
			}
			fmt.Fprintln(out)
			fmt.Fprint(out, inventory.Summary(results))
			return nil
		},
	}
)

func init() {
	inventoryCmd.Flags().IntVar(&workers, "workers", inventory.DefaultOptions().ConcurrentWorkers, "The number of kinds listed concurrently.")
	inventoryCmd.Flags().BoolVar(&stopOnError, "stop-on-error", false, "Stop at the first kind that cannot be listed.")
}
