// Package tui previews a form in the terminal. It walks the respondent
// through the steps with the navigation machine, prompting per field type,
// and serializes the submitted values.
package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/navigation"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/steps"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

// Navigation choices offered after each step.
const (
	ActionBack   = "Back"
	ActionNext   = "Next"
	ActionSubmit = "Submit"
)

// Renderer implements render.Renderer as an interactive terminal session.
type Renderer struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
	theme             Theme
	machineOptions    []navigation.Option
	logger            *zap.Logger
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a renderer with the survey driver and JSON output.
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
		theme:        Theme{InfoPrefix: "", ErrorPrefix: "! "},
		logger:       zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Render runs a session until the form is submitted and returns the values.
// options.Values pre-fills the prompts.
func (r *Renderer) Render(ctx context.Context, doc model.Document, options render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(doc.Fields) == 0 {
		if err := r.info(ctx, render.EmptyMessage); err != nil {
			return nil, err
		}
		return nil, ErrEmptyForm
	}

	machineOptions := append([]navigation.Option{
		navigation.WithValues(options.Values),
		navigation.WithLogger(r.logger),
	}, r.machineOptions...)
	machine := navigation.New(navigation.StaticFields(doc.Fields), machineOptions...)

	if title := strings.TrimSpace(options.Title); title != "" {
		doc.Name = title
	}
	if doc.Name != "" {
		if err := r.info(ctx, doc.Name); err != nil {
			return nil, err
		}
	}

	for {
		state := machine.State()
		position, total := steps.Position(state.Steps, state.CurrentStep)
		if err := r.info(ctx, fmt.Sprintf("Step %d of %d", position, total)); err != nil {
			return nil, err
		}

		if err := r.promptStep(ctx, machine, doc, state); err != nil {
			return nil, err
		}

		action, err := r.chooseAction(ctx, state)
		if err != nil {
			return nil, err
		}

		switch action {
		case ActionBack:
			if err := machine.Back(); err != nil {
				return nil, err
			}
		case ActionNext:
			ok, err := machine.Next()
			if err != nil {
				return nil, err
			}
			if !ok {
				if err := r.reportErrors(ctx, doc, machine.State().Errors); err != nil {
					return nil, err
				}
				continue
			}
			if err := r.info(ctx, render.WaitingMessage); err != nil {
				return nil, err
			}
			if err := machine.Wait(ctx); err != nil {
				return nil, err
			}
		case ActionSubmit:
			submission, err := machine.Submit()
			var failed *navigation.ValidationFailedError
			if errors.As(err, &failed) {
				if err := r.reportErrors(ctx, doc, failed.Errors); err != nil {
					return nil, err
				}
				continue
			}
			if err != nil {
				return nil, err
			}
			if err := r.info(ctx, render.SubmittedMessage); err != nil {
				return nil, err
			}
			return r.finish(doc, submission.Values)
		}
	}
}

func (r *Renderer) promptStep(ctx context.Context, machine *navigation.Machine, doc model.Document, state navigation.State) error {
	for _, field := range steps.Filter(doc.Fields, state.CurrentStep) {
		if field.Type.HasOptions() && len(field.Options) == 0 {
			r.logger.Debug("skipping option field without options", zap.String("id", field.ID))
			continue
		}
		ask, err := model.Visit[prompt](field, prompter{driver: r.driver})
		if err != nil {
			return err
		}
		value, err := ask(ctx, state.Values[field.ID])
		if err != nil {
			return err
		}
		if err := machine.SetValue(field.ID, value); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) chooseAction(ctx context.Context, state navigation.State) (string, error) {
	var actions []string
	if !state.IsFirst() {
		actions = append(actions, ActionBack)
	}
	if state.IsLast() {
		actions = append(actions, ActionSubmit)
	} else {
		actions = append(actions, ActionNext)
	}
	idx, err := r.driver.Select(ctx, SelectConfig{
		Message:      "Continue",
		Options:      actions,
		DefaultIndex: len(actions) - 1,
	})
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(actions) {
		return "", fmt.Errorf("tui: invalid action index %d", idx)
	}
	return actions[idx], nil
}

func (r *Renderer) reportErrors(ctx context.Context, doc model.Document, errs validation.ErrorMap) error {
	for _, field := range doc.Fields {
		msg, ok := errs[field.ID]
		if !ok {
			continue
		}
		if err := r.driver.Info(ctx, r.theme.ErrorPrefix+message(field)+": "+msg); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) info(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, r.theme.InfoPrefix+msg)
}

func (r *Renderer) finish(doc model.Document, values validation.Values) ([]byte, error) {
	if r.submitTransformer != nil {
		var err error
		values, err = r.submitTransformer(values)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}
	return r.serialize(doc, values)
}

func (r *Renderer) serialize(doc model.Document, values validation.Values) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		form := url.Values{}
		for _, field := range doc.Fields {
			switch v := values[field.ID].(type) {
			case nil:
			case []string:
				for _, item := range v {
					form.Add(field.ID, item)
				}
			case bool:
				form.Set(field.ID, strconv.FormatBool(v))
			default:
				form.Set(field.ID, fmt.Sprint(v))
			}
		}
		return []byte(form.Encode()), nil
	case OutputFormatPrettyText:
		var b strings.Builder
		for _, field := range doc.Fields {
			value, ok := values[field.ID]
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "%s: %s\n", message(field), pretty(value))
		}
		return []byte(b.String()), nil
	default:
		if values == nil {
			values = validation.Values{}
		}
		return json.MarshalIndent(values, "", "  ")
	}
}

func pretty(value any) string {
	switch v := value.(type) {
	case []string:
		return strings.Join(v, ", ")
	case bool:
		if v {
			return "yes"
		}
		return "no"
	default:
		return fmt.Sprint(v)
	}
}
