package cmd

import (
	"fmt"

	cr "github.com/eliran89c/cloudkeeper/pkg/cloudresource"
	"github.com/spf13/cobra"
)

var (
	getCmd = &cobra.Command{
		Use:   "get KIND NAME_OR_ID",
		Short: "Show one item",
		Long:  "Show the item addressed by an identifier or by a name that matches exactly one item.",
		Args:  cobra.ExactArgs(2),
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

			id, err := cr.Resolve(ctx, args[1], m)
			if err != nil {
				return err
			}
			item, ok, err := m.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if !ok {
				return &cr.NotFoundError{Kind: m.ItemType(), Value: args[1]}
			}

			printItems(cmd.OutOrStdout(), m.ItemType(), []cr.Item{item})
			return nil
		},
	}

	resolveCmd = &cobra.Command{
		Use:   "resolve KIND NAME_OR_ID",
		Short: "Print the identifier of an item",
		Args:  cobra.ExactArgs(2),
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

			id, err := cr.Resolve(ctx, args[1], m)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
)
