package scaffold

import (
	"ts-backend-starter/pkg/prompt"
	"ts-backend-starter/pkg/variant"
)

type terminalPrompter struct {
	p *prompt.Prompter
}

// NewTerminalPrompter asks through the arrow-key selector and a line-level
// yes/no question on p.
func NewTerminalPrompter(p *prompt.Prompter) Prompter {
	return &terminalPrompter{p: p}
}

func (t *terminalPrompter) SelectVariant(specs []variant.Spec) (variant.Variant, error) {
	options := make([]prompt.Option[variant.Variant], 0, len(specs))
	for _, s := range specs {
		options = append(options, prompt.Option[variant.Variant]{
			Label: s.Label,
			Hint:  s.Description,
			Value: s.Variant,
		})
	}
	return prompt.Select(t.p, "Which database do you want to use?", options)
}

func (t *terminalPrompter) DiscardTypeahead() int {
	return t.p.DiscardBuffered()
}

func (t *terminalPrompter) Confirm(question string, def bool) (bool, error) {
	return t.p.Confirm(question, def)
}
