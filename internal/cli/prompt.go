// Package cli holds the interactive prompts and terminal output of
// legaldocs-cli.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/goliatone/go-legaldocs/pkg/records"
)

// ErrAborted signals the user aborted input (e.g., Ctrl+C).
var ErrAborted = errors.New("cli: aborted")

// SelectConfig configures a multi-select prompt.
type SelectConfig struct {
	Message  string
	Options  []string
	Defaults []int // indices into Options
	Help     string
	PageSize int
}

// Prompter abstracts the terminal so selection logic can be tested without a
// real TTY.
type Prompter interface {
	MultiSelect(ctx context.Context, cfg SelectConfig) ([]int, error)
}

// SurveyPrompter asks through AlecAivazis/survey.
type SurveyPrompter struct{}

// MultiSelect implements Prompter.
func (SurveyPrompter) MultiSelect(ctx context.Context, cfg SelectConfig) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []string
	prompt := &survey.MultiSelect{
		Message: cfg.Message,
		Options: cfg.Options,
		Help:    cfg.Help,
	}
	if cfg.PageSize > 0 {
		prompt.PageSize = cfg.PageSize
	}
	if len(cfg.Defaults) > 0 {
		prompt.Default = defaultsFromIndices(cfg.Options, cfg.Defaults)
	}
	if err := survey.AskOne(prompt, &out, survey.WithValidator(survey.MinItems(1))); err != nil {
		return nil, translateSurveyErr(err)
	}
	return indicesOf(cfg.Options, out), nil
}

// SelectKinds lets the user pick document kinds, preselecting current.
func SelectKinds(ctx context.Context, p Prompter, current []records.DocumentKind) ([]records.DocumentKind, error) {
	all := records.AllKinds()
	options := make([]string, len(all))
	var defaults []int
	for i, k := range all {
		options[i] = fmt.Sprintf("%s (%s)", k.Label(), k)
		if containsKind(current, k) {
			defaults = append(defaults, i)
		}
	}
	picked, err := p.MultiSelect(ctx, SelectConfig{
		Message:  "Documents à générer",
		Options:  options,
		Defaults: defaults,
		PageSize: len(options),
	})
	if err != nil {
		return nil, err
	}
	out := make([]records.DocumentKind, 0, len(picked))
	for _, idx := range picked {
		if idx >= 0 && idx < len(all) {
			out = append(out, all[idx])
		}
	}
	return out, nil
}

// SelectFormats lets the user pick output formats, preselecting current.
func SelectFormats(ctx context.Context, p Prompter, current []records.Format) ([]records.Format, error) {
	all := []records.Format{records.FormatPDF, records.FormatDOCX, records.FormatTXT, records.FormatXLSX}
	options := make([]string, len(all))
	var defaults []int
	for i, f := range all {
		options[i] = string(f)
		for _, c := range current {
			if c == f {
				defaults = append(defaults, i)
			}
		}
	}
	picked, err := p.MultiSelect(ctx, SelectConfig{
		Message:  "Formats",
		Options:  options,
		Defaults: defaults,
	})
	if err != nil {
		return nil, err
	}
	out := make([]records.Format, 0, len(picked))
	for _, idx := range picked {
		if idx >= 0 && idx < len(all) {
			out = append(out, all[idx])
		}
	}
	return out, nil
}

func containsKind(list []records.DocumentKind, k records.DocumentKind) bool {
	for _, item := range list {
		if item == k {
			return true
		}
	}
	return false
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}

func indicesOf(options, values []string) []int {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	var out []int
	for i, option := range options {
		if _, ok := seen[option]; ok {
			out = append(out, i)
		}
	}
	return out
}

func defaultsFromIndices(options []string, indices []int) []string {
	var out []string
	for _, idx := range indices {
		if idx >= 0 && idx < len(options) {
			out = append(out, options[idx])
		}
	}
	return out
}
