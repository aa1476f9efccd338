package scaffold

import (
	"errors"

	"ts-backend-starter/pkg/history"
	"ts-backend-starter/pkg/variant"
)

var (
	// ErrTargetNotEmpty is returned before anything is written when the
	// target directory already has entries.
	ErrTargetNotEmpty = errors.New("target directory is not empty")
	// ErrTemplateMissing is returned when no usable template tree is found.
	ErrTemplateMissing = errors.New("template directory not found")
)

// DevMode decides whether the dev server is started after scaffolding.
type DevMode int

const (
	DevAsk DevMode = iota
	DevStart
	DevSkip
)

type Options struct {
	// Target is the directory as the operator typed it. Empty means the
	// working directory.
	Target string
	// Variant skips the selector when set.
	Variant     variant.Variant
	SkipInstall bool
	Dev         DevMode
	// DryRun resolves and copies into memory only and never starts a child.
	DryRun bool
}

type Result struct {
	// ExitCode is the process exit code: 0, or the dev server's own code.
	ExitCode int
	Target   string
	Variant  variant.Variant
	// Files are the written paths relative to Target, the manifest included.
	Files      []string
	InstallOK  bool
	SchemaOK   bool
	DevStarted bool
	DryRun     bool
}

// Prompter asks the operator for the choices a run cannot make alone.
type Prompter interface {
	SelectVariant(specs []variant.Spec) (variant.Variant, error)
	Confirm(question string, def bool) (bool, error)
}

// typeahead is implemented by prompters that buffer terminal input. Child
// processes inherit the terminal itself, so buffered bytes are dropped before
// each child starts.
type typeahead interface {
	DiscardTypeahead() int
}

// Recorder stores the outcome of a run.
type Recorder interface {
	Save(r history.Run) (history.Run, error)
}
