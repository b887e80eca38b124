package tui

import (
	"context"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// prompt asks for one field given its current value.
type prompt func(ctx context.Context, current any) (any, error)

// prompter maps every field type to a driver interaction.
type prompter struct {
	driver PromptDriver
}

var _ model.Visitor[prompt] = prompter{}

func message(field model.Field) string {
	label := strings.TrimSpace(field.Label)
	if label == "" {
		label = field.Type.Label()
	}
	if field.Required {
		label += " *"
	}
	return label
}

func help(field model.Field) string {
	parts := make([]string, 0, 2)
	if h := strings.TrimSpace(field.HelpText); h != "" {
		parts = append(parts, h)
	}
	if p := strings.TrimSpace(field.Placeholder); p != "" {
		parts = append(parts, "e.g. "+p)
	}
	return strings.Join(parts, " | ")
}

func (p prompter) input(field model.Field) prompt {
	return func(ctx context.Context, current any) (any, error) {
		def, _ := current.(string)
		return p.driver.Input(ctx, InputConfig{
			Message: message(field),
			Default: def,
			Help:    help(field),
		})
	}
}

func (p prompter) single(field model.Field) prompt {
	return func(ctx context.Context, current any) (any, error) {
		def, _ := current.(string)
		idx, err := p.driver.Select(ctx, SelectConfig{
			Message:      message(field),
			Options:      field.Options,
			DefaultIndex: indexOf(field.Options, def),
			Help:         help(field),
		})
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(field.Options) {
			return "", nil
		}
		return field.Options[idx], nil
	}
}

func (p prompter) Text(f model.Field) prompt   { return p.input(f) }
func (p prompter) Email(f model.Field) prompt  { return p.input(f) }
func (p prompter) Number(f model.Field) prompt { return p.input(f) }
func (p prompter) Phone(f model.Field) prompt  { return p.input(f) }
func (p prompter) Date(f model.Field) prompt   { return p.input(f) }
func (p prompter) Time(f model.Field) prompt   { return p.input(f) }

func (p prompter) File(f model.Field) prompt {
	f.HelpText = strings.TrimSpace(f.HelpText + " (path to file)")
	return p.input(f)
}

func (p prompter) Textarea(f model.Field) prompt {
	return func(ctx context.Context, current any) (any, error) {
		def, _ := current.(string)
		return p.driver.TextArea(ctx, TextAreaConfig{
			Message: message(f),
			Default: def,
			Help:    help(f),
		})
	}
}

func (p prompter) Dropdown(f model.Field) prompt { return p.single(f) }
func (p prompter) Radio(f model.Field) prompt    { return p.single(f) }

func (p prompter) Checkbox(f model.Field) prompt {
	return func(ctx context.Context, current any) (any, error) {
		selected, _ := current.([]string)
		idx, err := p.driver.MultiSelect(ctx, SelectConfig{
			Message:  message(f),
			Options:  f.Options,
			Defaults: indicesOf(f.Options, selected),
			Help:     help(f),
		})
		if err != nil {
			return nil, err
		}
		out := make([]string, 0, len(idx))
		for _, i := range idx {
			if i >= 0 && i < len(f.Options) {
				out = append(out, f.Options[i])
			}
		}
		return out, nil
	}
}

func (p prompter) Toggle(f model.Field) prompt {
	return func(ctx context.Context, current any) (any, error) {
		def, _ := current.(bool)
		return p.driver.Confirm(ctx, ConfirmConfig{
			Message: message(f),
			Default: def,
			Help:    help(f),
		})
	}
}
