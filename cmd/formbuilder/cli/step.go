package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formbuilder/pkg/document"
	"github.com/goliatone/go-formbuilder/pkg/steps"
)

func stepCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "step",
		Short: "Manage the steps of the live form",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Print the step sequence",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				doc, err := a.live(cmd.Context(), cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				seq := steps.Compute(doc.Fields)
				for _, step := range seq {
					position, total := steps.Position(seq, step)
					fmt.Fprintf(cmd.OutOrStdout(), "%d\t(%d of %d, %d fields)\n",
						step, position, total, len(steps.Filter(doc.Fields, step)))
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "add",
			Short: "Print the next step number to place controls on",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				doc, err := a.live(cmd.Context(), cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				seq := document.New(doc).AddStep()
				fmt.Fprintln(cmd.OutOrStdout(), steps.Last(seq))
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete <step>",
			Short: "Delete a step and every control on it",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				step, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid step %q", args[0])
				}
				return a.edit(cmd, func(store *document.Store) error {
					active, err := store.DeleteStep(step)
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), active)
					return nil
				})
			},
		},
	)
	return cmd
}
