// Package prompt implements the interactive terminal prompts: a single-choice
// menu driven by raw keypresses and a line-level yes/no question.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/morikuni/aec"
)

var (
	// ErrInterrupted is returned when the operator presses Ctrl-C in a menu.
	ErrInterrupted = errors.New("selection interrupted")
	// ErrNoOptions is returned by Select for an empty option list.
	ErrNoOptions = errors.New("no options to choose from")
)

// Prompter owns the input stream for the whole session. Raw keypress reads
// and line reads share one buffered reader so nothing typed ahead is lost when
// the mode changes.
type Prompter struct {
	in    *bufio.Reader
	out   io.Writer
	term  Terminal
	color bool
}

// New builds a prompter over in and out. t may be nil, in which case menus
// fall back to numbered line input.
func New(in io.Reader, out io.Writer, t Terminal) *Prompter {
	return &Prompter{
		in:    bufio.NewReader(in),
		out:   out,
		term:  t,
		color: true,
	}
}

// NewFor builds a prompter over in and out. Menus read raw keypresses only
// when in is a terminal. Colour is disabled when NO_COLOR is set.
func NewFor(in io.Reader, out io.Writer) *Prompter {
	var t Terminal
	if f, ok := in.(*os.File); ok {
		t = NewTerminal(f)
	}
	p := New(in, out, t)
	_, noColor := os.LookupEnv("NO_COLOR")
	p.color = !noColor
	return p
}

// SetColor toggles ANSI styling of menus.
func (p *Prompter) SetColor(on bool) { p.color = on }

// Interactive reports whether menus will read raw keypresses.
func (p *Prompter) Interactive() bool {
	return p.term != nil && p.term.IsTerminal()
}

// Select shows options and returns the value of the one the operator
// confirms. On a terminal the list is navigated with the arrow keys (or j/k)
// and confirmed with Enter; Ctrl-C returns ErrInterrupted. Otherwise the
// options are numbered and one line is read.
func Select[T any](p *Prompter, title string, options []Option[T]) (T, error) {
	var zero T
	if len(options) == 0 {
		return zero, ErrNoOptions
	}
	if !p.Interactive() {
		return selectByNumber(p, title, options)
	}

	restore, err := p.term.MakeRaw()
	if err != nil {
		return zero, fmt.Errorf("failed to enable raw mode: %w", err)
	}
	defer restore()

	menu := NewMenu(title, options)
	r := newRenderer(p.out, p.color)
	keys := NewKeyReader(p.in)

	if err := renderMenu(r, menu); err != nil {
		return zero, err
	}

	for {
		k, err := keys.ReadKey()
		if err != nil {
			io.WriteString(p.out, aec.Show.String())
			if errors.Is(err, io.EOF) {
				return zero, fmt.Errorf("input closed before a choice was made: %w", err)
			}
			return zero, fmt.Errorf("failed to read keypress: %w", err)
		}

		before := menu.Index()
		state := menu.Handle(k)
		if state == Active && menu.Index() == before {
			continue
		}
		if err := renderMenu(r, menu); err != nil {
			return zero, err
		}

		switch state {
		case Resolved:
			return menu.Selected().Value, nil
		case Aborted:
			return zero, ErrInterrupted
		}
	}
}

func selectByNumber[T any](p *Prompter, title string, options []Option[T]) (T, error) {
	var zero T
	if err := writeNumbered(p.out, title, options); err != nil {
		return zero, err
	}

	for {
		fmt.Fprintf(p.out, "Enter a number [1-%d] (default 1): ", len(options))

		line, err := p.readLine()
		if err != nil && line == "" {
			return zero, fmt.Errorf("input closed before a choice was made: %w", err)
		}
		if line == "" {
			return options[0].Value, nil
		}

		n, convErr := strconv.Atoi(line)
		if convErr == nil && n >= 1 && n <= len(options) {
			return options[n-1].Value, nil
		}
		fmt.Fprintf(p.out, "Invalid choice %q\n", line)
		if err != nil {
			return zero, fmt.Errorf("input closed before a choice was made: %w", err)
		}
	}
}

// Confirm asks a yes/no question on one line. An empty answer, or closed
// input, yields def.
func (p *Prompter) Confirm(question string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	if _, err := fmt.Fprintf(p.out, "%s (%s) ", question, hint); err != nil {
		return def, err
	}

	line, err := p.readLine()
	if err != nil && !errors.Is(err, io.EOF) {
		return def, fmt.Errorf("failed to read answer: %w", err)
	}

	switch strings.ToLower(line) {
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	}
	return def, nil
}

// DiscardBuffered drops input that was read from the terminal but not yet
// consumed by a prompt and returns how many bytes were dropped. Child
// processes read the terminal directly and never see these bytes.
func (p *Prompter) DiscardBuffered() int {
	n, _ := p.in.Discard(p.in.Buffered())
	return n
}

// readLine returns the next line without its terminator. A final line
// without a newline is returned together with io.EOF.
func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	return strings.TrimSpace(line), err
}
