package cli

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formbuilder/pkg/document"
	"github.com/goliatone/go-formbuilder/pkg/model"
)

func newCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "new [name]",
		Short: "Start a new, empty live form",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return a.edit(cmd, func(store *document.Store) error {
				store.Replace(model.Document{Name: name, Fields: []model.Field{}})
				return nil
			})
		},
	}
}

func fieldCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "field",
		Short: "Add, edit and arrange the controls of the live form",
	}
	cmd.AddCommand(
		fieldAddCmd(a),
		fieldUpdateCmd(a),
		fieldDeleteCmd(a),
		fieldMoveCmd(a),
		fieldListCmd(a),
		fieldOptionCmd(a),
		paletteCmd(),
	)
	return cmd
}

func addPatchFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("label", "", "label shown above the control")
	flags.String("placeholder", "", "placeholder text")
	flags.String("help", "", "help text shown under the control")
	flags.Bool("required", false, "require a value")
	flags.String("min-length", "", "minimum number of characters")
	flags.String("max-length", "", "maximum number of characters")
	flags.String("pattern", "", "regular expression the value must match")
	flags.StringSlice("options", nil, "replace the options of a dropdown, checkbox or radio group")
	flags.Int("step", 1, "step the control belongs to")
}

// patchFromFlags builds a patch from the flags the user actually set.
func patchFromFlags(cmd *cobra.Command) document.Patch {
	flags := cmd.Flags()
	var p document.Patch
	if flags.Changed("label") {
		v, _ := flags.GetString("label")
		p.Label = document.String(v)
	}
	if flags.Changed("placeholder") {
		v, _ := flags.GetString("placeholder")
		p.Placeholder = document.String(v)
	}
	if flags.Changed("help") {
		v, _ := flags.GetString("help")
		p.HelpText = document.String(v)
	}
	if flags.Changed("required") {
		v, _ := flags.GetBool("required")
		p.Required = document.Bool(v)
	}
	if flags.Changed("min-length") {
		v, _ := flags.GetString("min-length")
		p.MinLength = document.Len(model.Length(v))
	}
	if flags.Changed("max-length") {
		v, _ := flags.GetString("max-length")
		p.MaxLength = document.Len(model.Length(v))
	}
	if flags.Changed("pattern") {
		v, _ := flags.GetString("pattern")
		p.Pattern = document.String(v)
	}
	if flags.Changed("options") {
		v, _ := flags.GetStringSlice("options")
		p.Options = v
		p.SetOptions = true
	}
	if flags.Changed("step") {
		v, _ := flags.GetInt("step")
		p.Step = document.Int(v)
	}
	return p
}

func fieldAddCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <type>",
		Short: "Append a control from the palette",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fieldType, err := model.ParseFieldType(args[0])
			if err != nil {
				return err
			}
			step, _ := cmd.Flags().GetInt("step")
			patch := patchFromFlags(cmd)
			patch.Step = nil
			if err := patch.Check(); err != nil {
				return err
			}
			return a.edit(cmd, func(store *document.Store) error {
				field, err := store.AddField(fieldType, step)
				if err != nil {
					return err
				}
				if !patch.IsZero() {
					if _, err := store.ValidateAndUpdate(field.ID, patch); err != nil {
						return err
					}
				}
				fmt.Fprintln(cmd.OutOrStdout(), field.ID)
				return nil
			})
		},
	}
	addPatchFlags(cmd)
	return cmd
}

func fieldUpdateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change the configuration of a control",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := patchFromFlags(cmd)
			return a.edit(cmd, func(store *document.Store) error {
				if _, ok := store.Field(args[0]); !ok {
					return fmt.Errorf("no field with id %q", args[0])
				}
				_, err := store.ValidateAndUpdate(args[0], patch)
				return err
			})
		},
	}
	addPatchFlags(cmd)
	return cmd
}

func fieldDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a control",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.edit(cmd, func(store *document.Store) error {
				if !store.DeleteField(args[0]) {
					return fmt.Errorf("no field with id %q", args[0])
				}
				return nil
			})
		},
	}
}

func fieldMoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <index>",
		Short: "Move a control to a zero based position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid index %q", args[1])
			}
			return a.edit(cmd, func(store *document.Store) error {
				if _, ok := store.Field(args[0]); !ok {
					return fmt.Errorf("no field with id %q", args[0])
				}
				store.Reorder(args[0], index)
				return nil
			})
		},
	}
}

func fieldListCmd(a *app) *cobra.Command {
	var step int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the controls of the live form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.live(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			store := document.New(doc)
			fields := store.Fields()
			if step > 0 {
				fields = store.FieldsInStep(step)
			}
			if doc.Name != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n", doc.Name)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTYPE\tSTEP\tLABEL\tREQUIRED\tOPTIONS")
			for _, f := range fields {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%t\t%s\n",
					f.ID, f.Type, f.Step, f.Label, f.Required, strings.Join(f.Options, ", "))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&step, "step", 0, "only list the controls of this step")
	return cmd
}

func fieldOptionCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "option",
		Short: "Edit the options of a dropdown, checkbox or radio group",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <id>",
			Short: "Append a \"New Option\" entry",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.edit(cmd, func(store *document.Store) error {
					if !store.AddOption(args[0]) {
						return fmt.Errorf("field %q has no options", args[0])
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "set <id> <index> <value>",
			Short: "Rename an option",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				index, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("invalid index %q", args[1])
				}
				return a.edit(cmd, func(store *document.Store) error {
					if !store.SetOption(args[0], index, args[2]) {
						return fmt.Errorf("field %q has no option %d", args[0], index)
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "remove <id> <index>",
			Short: "Remove an option",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				index, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("invalid index %q", args[1])
				}
				return a.edit(cmd, func(store *document.Store) error {
					if !store.RemoveOption(args[0], index) {
						return fmt.Errorf("field %q has no option %d", args[0], index)
					}
					return nil
				})
			},
		},
	)
	return cmd
}

func paletteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "palette",
		Short: "List the available control types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, item := range model.Palette() {
				fmt.Fprintf(tw, "%s\t%s\n", item.Type, item.Label)
			}
			return tw.Flush()
		},
	}
}
