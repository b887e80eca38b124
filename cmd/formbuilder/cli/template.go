package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formbuilder/pkg/document"
	"github.com/goliatone/go-formbuilder/pkg/persistence"
)

func templateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Save the live form as a named template and reopen it later",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "save [name]",
			Short: "Save the live form under name, or its current name",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.edit(cmd, func(store *document.Store) error {
					if len(args) == 1 {
						store.Rename(args[0])
					}
					doc := store.Document()
					if err := warnCorrupt(cmd.ErrOrStderr(), a.repo.SaveTemplate(cmd.Context(), doc)); err != nil {
						if errors.Is(err, persistence.ErrUnnamed) {
							return fmt.Errorf("%w: pass a name or run `formbuilder new <name>`", err)
						}
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "saved %q\n", doc.Name)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "open <name>",
			Short: "Replace the live form with a template",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				doc, err := a.repo.OpenTemplate(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "opened %q (%d fields)\n", doc.Name, len(doc.Fields))
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List saved templates",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				names, err := a.repo.TemplateNames(cmd.Context())
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete <name>",
			Short: "Delete a template",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return warnCorrupt(cmd.ErrOrStderr(), a.repo.DeleteTemplate(cmd.Context(), args[0]))
			},
		},
	)
	return cmd
}

func shareCmd(a *app) *cobra.Command {
	var origin string
	cmd := &cobra.Command{
		Use:   "share",
		Short: "Publish a snapshot of the live form and print its link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.live(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			id, err := a.repo.Share(cmd.Context(), doc)
			if err := warnCorrupt(cmd.ErrOrStderr(), err); err != nil {
				return err
			}
			if origin == "" {
				origin = a.cfg.Server.Origin
			}
			fmt.Fprintln(cmd.OutOrStdout(), persistence.ShareURL(origin, id))
			return nil
		},
	}
	cmd.Flags().StringVar(&origin, "origin", "", "origin of the share link (default from server.origin)")
	return cmd
}

func openSharedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "open-shared <id|link>",
		Short: "Copy a shared form into the live form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.repo.OpenShared(cmd.Context(), shareIDFrom(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "opened %q (%d fields)\n", doc.Name, len(doc.Fields))
			return nil
		},
	}
}
