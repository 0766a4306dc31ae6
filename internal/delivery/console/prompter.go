package console

import (
	"context"

	"github.com/charmbracelet/huh"
)

// Choice is one selectable option.
type Choice struct {
	Label string
	Value string
}

// Prompter asks the operator for input.
type Prompter interface {
	Select(ctx context.Context, title, description string, choices []Choice) (string, error)
	Input(ctx context.Context, title, placeholder string) (string, error)
}

// HuhPrompter renders prompts as huh forms.
type HuhPrompter struct {
	theme *huh.Theme
}

func NewHuhPrompter() *HuhPrompter {
	return &HuhPrompter{theme: huh.ThemeCharm()}
}

func (p *HuhPrompter) Select(ctx context.Context, title, description string, choices []Choice) (string, error) {
	options := make([]huh.Option[string], len(choices))
	for i, c := range choices {
		options[i] = huh.NewOption(c.Label, c.Value)
	}

	var value string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(title).
				Description(description).
				Options(options...).
				Value(&value),
		),
	).WithShowHelp(false).WithTheme(p.theme)

	if err := form.RunWithContext(ctx); err != nil {
		return "", err
	}
	return value, nil
}

func (p *HuhPrompter) Input(ctx context.Context, title, placeholder string) (string, error) {
	var value string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Placeholder(placeholder).
				Value(&value),
		),
	).WithShowHelp(false).WithTheme(p.theme)

	if err := form.RunWithContext(ctx); err != nil {
		return "", err
	}
	return value, nil
}
