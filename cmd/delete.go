package cmd

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	cr "github.com/eliran89c/cloudkeeper/pkg/cloudresource"
	"github.com/spf13/cobra"
)

var assumeYes bool

var (
	deleteCmd = &cobra.Command{
		Use:   "delete KIND NAME_OR_ID",
		Short: "Delete an item",
		Long:  "Delete the item addressed by an identifier or by a name that matches exactly one item. Asks for confirmation unless --yes is set.",
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

			if !assumeYes {
				confirmed := false
				prompt := &survey.Confirm{Message: fmt.Sprintf("Delete %s %s (%s)?", m.ItemType(), args[1], id)}
				if err := survey.AskOne(prompt, &confirmed); err != nil {
					return err
				}
				if !confirmed {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
					return nil
				}
			}

			if err := m.Delete(ctx, cr.ByID(id)); err != nil {
				return fmt.Errorf("error deleting %s %q: %w", m.ItemType(), id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %s\n", m.ItemType(), id)
			return nil
		},
	}
)

func init() {
	deleteCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Delete without asking for confirmation.")
}
