package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formbuilder/pkg/theme"
)

func themeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [light|dark|toggle]",
		Short:     "Show or change the preview theme",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"light", "dark", "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if len(args) == 0 {
				current, err := a.repo.Theme(ctx)
				if err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), "warning:", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), current)
				return nil
			}
			next := args[0]
			if next == "toggle" {
				var err error
				if next, err = theme.Toggle(ctx, a.repo); err != nil {
					return err
				}
			} else if err := a.repo.SetTheme(ctx, next); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), next)
			return nil
		},
	}
}
