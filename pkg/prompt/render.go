package prompt

import (
	"fmt"
	"io"
	"strings"

	"github.com/morikuni/aec"
)

// Marker prefixes the highlighted option.
const Marker = "❯"

var (
	highlightStyle = aec.CyanF.With(aec.Bold)
	hintStyle      = aec.Faint
	titleStyle     = aec.Bold
)

// renderer draws a menu in place. Lines end in CRLF because the terminal
// does no output translation in raw mode.
type renderer struct {
	w     io.Writer
	color bool
	drawn bool
}

const crlf = "\r\n"

func newRenderer(w io.Writer, color bool) *renderer {
	return &renderer{w: w, color: color}
}

func renderMenu[T any](r *renderer, m *Menu[T]) error {
	var b strings.Builder

	if !r.drawn {
		b.WriteString(aec.Hide.String())
		b.WriteString(r.style(titleStyle, m.Title()))
		b.WriteString(crlf)
	} else {
		b.WriteString(aec.Up(uint(len(m.Options()))).String())
	}

	for i, opt := range m.Options() {
		b.WriteString("\r")
		b.WriteString(aec.EraseLine(aec.EraseModes.All).String())
		b.WriteString(r.line(opt.Label, opt.Hint, i == m.Index()))
		b.WriteString(crlf)
	}

	if m.State() != Active {
		b.WriteString(aec.Show.String())
	}

	r.drawn = true
	_, err := io.WriteString(r.w, b.String())
	return err
}

func (r *renderer) line(label, hint string, highlighted bool) string {
	var suffix string
	if hint != "" {
		suffix = " " + r.style(hintStyle, "("+hint+")")
	}
	if highlighted {
		return r.style(highlightStyle, Marker+" "+label) + suffix
	}
	return "  " + label + suffix
}

func (r *renderer) style(a aec.ANSI, s string) string {
	if !r.color {
		return s
	}
	return a.Apply(s)
}

// writeNumbered prints the line-mode fallback list.
func writeNumbered[T any](w io.Writer, title string, options []Option[T]) error {
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	for i, opt := range options {
		line := fmt.Sprintf("  %d) %s", i+1, opt.Label)
		if opt.Hint != "" {
			line += " (" + opt.Hint + ")"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
