package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/navigation"
	"github.com/goliatone/go-formbuilder/pkg/openapi"
	"github.com/goliatone/go-formbuilder/pkg/orchestrator"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/renderers/html"
	"github.com/goliatone/go-formbuilder/pkg/renderers/tui"
	"github.com/goliatone/go-formbuilder/pkg/theme"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

func previewCmd(a *app) *cobra.Command {
	var (
		shareID string
		format  string
	)
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Fill the form step by step in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.form(cmd, shareID)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			validator := validation.New(
				validation.WithPatternPolicy(a.cfg.PatternPolicy()),
				validation.WithLogger(a.log),
			)
			renderer, err := tui.New(
				tui.WithPromptDriver(tui.NewSurveyDriver(cmd.ErrOrStderr())),
				tui.WithOutputFormat(tui.OutputFormat(format)),
				tui.WithLogger(a.log),
				tui.WithMachineOptions(
					navigation.WithDelay(a.cfg.Preview.Delay),
					navigation.WithValidator(validator),
				),
			)
			if err != nil {
				return err
			}

			orch := orchestrator.New(
				orchestrator.WithRegistry(registryOf(renderer)),
				orchestrator.WithDefaultRenderer(renderer.Name()),
				orchestrator.WithLogger(a.log),
			)
			out, err := orch.Generate(ctx, orchestrator.Request{Document: doc})
			switch {
			case errors.Is(err, tui.ErrEmptyForm), errors.Is(err, tui.ErrAborted):
				return nil
			case err != nil:
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	cmd.Flags().StringVar(&shareID, "shared", "", "preview a shared form instead of the live form")
	cmd.Flags().StringVar(&format, "format", string(tui.OutputFormatJSON), "submission output: json, form or pretty")
	return cmd
}

func renderCmd(a *app) *cobra.Command {
	var (
		shareID string
		step    int
		output  string
		variant string
		preset  string
		title   string
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render one step of the form as an HTML page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.form(cmd, shareID)
			if err != nil {
				return err
			}
			selector, err := theme.NewSelector()
			if err != nil {
				return err
			}
			if variant == "" {
				if variant, err = a.repo.Theme(cmd.Context()); err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), "warning:", err)
				}
			}
			selection, err := selector.Select("", variant)
			if err != nil {
				return err
			}

			renderer, err := html.New(html.WithLogger(a.log))
			if err != nil {
				return err
			}
			options := []orchestrator.Option{
				orchestrator.WithRegistry(registryOf(renderer)),
				orchestrator.WithDecorators(model.WithTitle(title)),
				orchestrator.WithLogger(a.log),
			}
			if preset != "" {
				transformer, err := orchestrator.NewPresetTransformerFromFS(os.DirFS(filepath.Dir(preset)), filepath.Base(preset))
				if err != nil {
					return err
				}
				options = append(options, orchestrator.WithTransformer(transformer))
			}
			page, err := orchestrator.New(options...).Generate(cmd.Context(), orchestrator.Request{
				Document:   doc,
				Standalone: true,
				RenderOptions: render.RenderOptions{
					Step:  step,
					Theme: theme.RendererConfig(selection),
				},
			})
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, page)
		},
	}
	cmd.Flags().StringVar(&shareID, "shared", "", "render a shared form instead of the live form")
	cmd.Flags().IntVar(&step, "step", 0, "step to render (default first)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&variant, "theme", "", "light or dark (default stored theme)")
	cmd.Flags().StringVar(&preset, "preset", "", "YAML or JSON file with field overrides")
	cmd.Flags().StringVar(&title, "title", "", "heading to use instead of the form name")
	return cmd
}

func schemaCmd(a *app) *cobra.Command {
	var (
		shareID    string
		submission bool
		output     string
	)
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Export the submission contract as OpenAPI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.form(cmd, shareID)
			if err != nil {
				return err
			}
			var payload any = openapi.Document(doc, shareIDFrom(shareID))
			if submission {
				payload = openapi.SubmissionSchema(doc)
			}
			raw, err := json.MarshalIndent(payload, "", "  ")
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, append(raw, '\n'))
		},
	}
	cmd.Flags().StringVar(&shareID, "shared", "", "describe a shared form instead of the live form")
	cmd.Flags().BoolVar(&submission, "submission", false, "print only the submission schema")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	return cmd
}

func registryOf(renderers ...render.Renderer) *render.Registry {
	reg := render.NewRegistry()
	for _, r := range renderers {
		reg.MustRegister(r)
	}
	return reg
}

func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "written to %s\n", path)
	return nil
}
