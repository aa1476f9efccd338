package prompt

import (
	"os"

	"golang.org/x/term"
)

// Terminal switches an input stream between line and raw mode.
type Terminal interface {
	IsTerminal() bool
	// MakeRaw puts the terminal in raw mode and returns a function that
	// restores the previous mode.
	MakeRaw() (restore func() error, err error)
}

type fileTerminal struct {
	f *os.File
}

// NewTerminal wraps f, usually os.Stdin.
func NewTerminal(f *os.File) Terminal {
	return &fileTerminal{f: f}
}

func (t *fileTerminal) IsTerminal() bool {
	return term.IsTerminal(int(t.f.Fd()))
}

func (t *fileTerminal) MakeRaw() (func() error, error) {
	fd := int(t.f.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	return func() error { return term.Restore(fd, state) }, nil
}
