// Package scaffold sequences a project generation run: template checks,
// variant choice, copy, manifest, package manager and dev-server handoff.
package scaffold

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"ts-backend-starter/pkg/config"
	"ts-backend-starter/pkg/history"
	"ts-backend-starter/pkg/manifest"
	"ts-backend-starter/pkg/materialize"
	"ts-backend-starter/pkg/prompt"
	"ts-backend-starter/pkg/runner"
	"ts-backend-starter/pkg/template"
	"ts-backend-starter/pkg/variant"
)

const devQuestion = "Start the development server now?"

// Scaffolder holds the collaborators of a run. Engine, Runner and Prompter
// are required; the rest fall back to the process defaults.
type Scaffolder struct {
	Config   *config.Config
	Engine   template.TemplateEngine
	Fs       afero.Fs
	Runner   runner.Runner
	Prompter Prompter
	Recorder Recorder
	Out      io.Writer
	Log      logrus.FieldLogger

	// Handoff runs the dev server in the foreground.
	Handoff func(ctx context.Context, r runner.Runner, cmd runner.Command) (int, error)
}

func (s *Scaffolder) withDefaults() {
	if s.Config == nil {
		s.Config = config.DefaultConfig()
	}
	if s.Fs == nil {
		s.Fs = afero.NewOsFs()
	}
	if s.Out == nil {
		s.Out = os.Stdout
	}
	if s.Log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		s.Log = l
	}
	if s.Handoff == nil {
		s.Handoff = runner.Handoff
	}
}

// Run generates a project as described by opts. Precondition failures
// return before the target is modified; a copy or manifest failure leaves
// what was already written in place.
func (s *Scaffolder) Run(ctx context.Context, opts Options) (res Result, err error) {
	s.withDefaults()
	started := time.Now()
	res.DryRun = opts.DryRun

	defer func() {
		s.record(opts, res, err, time.Since(started))
	}()

	targetArg := opts.Target
	if targetArg == "" {
		targetArg = "."
	}
	target, err := filepath.Abs(targetArg)
	if err != nil {
		return res, fmt.Errorf("failed to resolve target directory: %w", err)
	}
	res.Target = target
	log := s.Log.WithField("target", target)

	tmpl, err := s.Engine.LoadTemplate()
	if err != nil {
		return res, fmt.Errorf("%w: %v", ErrTemplateMissing, err)
	}
	log.WithField("template", tmpl.Name).Debug("template loaded")

	dst := s.Fs
	if opts.DryRun {
		dst = afero.NewCopyOnWriteFs(afero.NewReadOnlyFs(s.Fs), afero.NewMemMapFs())
	}

	if err := dst.MkdirAll(target, 0o755); err != nil {
		return res, fmt.Errorf("failed to create target directory: %w", err)
	}
	if !materialize.IsEmptyDir(dst, target) {
		return res, fmt.Errorf("%w: %s. Please specify an empty directory or a new name", ErrTargetNotEmpty, target)
	}

	v, err := s.chooseVariant(opts)
	if err != nil {
		return res, err
	}
	res.Variant = v
	spec := v.Spec()
	log = log.WithField("variant", v)

	skip := materialize.Any(
		materialize.NewPatternSkipper(tmpl.Root, "/"+template.ManifestName),
		materialize.NewPatternSkipper(tmpl.Root, spec.Exclude...),
	)
	copied, err := materialize.CopyTree(tmpl.Fs, tmpl.Root, dst, target, skip)
	if err != nil {
		return res, fmt.Errorf("failed to copy template: %w", err)
	}

	manifestPath := filepath.Join(target, template.ManifestName)
	if err := manifest.Generate(tmpl.Fs, tmpl.ManifestPath(), dst, manifestPath, filepath.Base(target), v); err != nil {
		return res, err
	}

	res.Files = append(copied.Files, template.ManifestName)
	sort.Strings(res.Files)
	log.WithField("files", len(res.Files)).Debug("template materialized")

	if opts.DryRun {
		s.printPlan(res)
		return res, nil
	}

	s.printSuccess(target)

	if !opts.SkipInstall {
		res.InstallOK = s.runStep(ctx, log, "Installing dependencies", s.installCommand(target))
	}
	if cmd, ok := s.schemaCommand(spec, target); ok {
		res.SchemaOK = s.runStep(ctx, log, "Initializing the database schema", cmd)
	}

	start, err := s.wantDevServer(opts)
	if err != nil {
		return res, err
	}
	if !start {
		s.printNextSteps(targetArg, spec, opts, res)
		return res, nil
	}

	cmd := s.devCommand(target)
	fmt.Fprintf(s.Out, "\nStarting development server (%s)...\n\n", cmd)
	s.dropTypeahead(log)
	code, err := s.Handoff(ctx, s.Runner, cmd)
	if err != nil {
		return res, fmt.Errorf("failed to start development server: %w", err)
	}
	log.WithFields(logrus.Fields{"command": cmd.String(), "exit_code": code}).Debug("development server exited")
	res.DevStarted = true
	res.ExitCode = code
	return res, nil
}

func (s *Scaffolder) chooseVariant(opts Options) (variant.Variant, error) {
	if opts.Variant != "" {
		if _, ok := variant.Lookup(opts.Variant); !ok {
			return "", fmt.Errorf("unknown database %q", opts.Variant)
		}
		return opts.Variant, nil
	}
	if s.Config.DefaultVariant != "" {
		return variant.Parse(s.Config.DefaultVariant)
	}

	v, err := s.Prompter.SelectVariant(variant.All())
	if err != nil {
		if errors.Is(err, prompt.ErrInterrupted) {
			return "", err
		}
		return "", fmt.Errorf("failed to select database: %w", err)
	}
	return v, nil
}

func (s *Scaffolder) wantDevServer(opts Options) (bool, error) {
	switch opts.Dev {
	case DevStart:
		return true, nil
	case DevSkip:
		return false, nil
	}
	ok, err := s.Prompter.Confirm(devQuestion, false)
	if err != nil {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	return ok, nil
}

// runStep runs a best-effort child. Failures are reported and swallowed.
func (s *Scaffolder) runStep(ctx context.Context, log logrus.FieldLogger, title string, cmd runner.Command) bool {
	fmt.Fprintf(s.Out, "\n%s (%s)...\n", title, cmd)
	s.dropTypeahead(log)

	code, err := s.Runner.Run(ctx, cmd)
	log = log.WithField("command", cmd.String())
	switch {
	case err != nil:
		log.WithError(err).Debug("child process failed to start")
		fmt.Fprintf(s.Out, "⚠ %s failed: %v\n", cmd, err)
		return false
	case code != 0:
		log.WithField("exit_code", code).Debug("child process failed")
		fmt.Fprintf(s.Out, "⚠ %s exited with code %d\n", cmd, code)
		return false
	}
	return true
}

func (s *Scaffolder) dropTypeahead(log logrus.FieldLogger) {
	t, ok := s.Prompter.(typeahead)
	if !ok {
		return
	}
	if n := t.DiscardTypeahead(); n > 0 {
		log.WithField("bytes", n).Debug("dropped unread terminal input")
	}
}

func (s *Scaffolder) installCommand(dir string) runner.Command {
	return runner.Command{Name: s.Config.PackageManager, Args: s.Config.InstallArgs, Dir: dir}
}

func (s *Scaffolder) devCommand(dir string) runner.Command {
	return runner.Command{Name: s.Config.PackageManager, Args: s.Config.DevArgs, Dir: dir}
}

// schemaCommand returns the variant's schema tool invocation. The config
// may replace the command but cannot add one to a variant without it.
func (s *Scaffolder) schemaCommand(spec variant.Spec, dir string) (runner.Command, bool) {
	if len(spec.SchemaCommand) == 0 {
		return runner.Command{}, false
	}
	argv := spec.SchemaCommand
	if len(s.Config.SchemaCommand) > 0 {
		argv = s.Config.SchemaCommand
	}
	return runner.Command{Name: argv[0], Args: argv[1:], Dir: dir}, true
}

func (s *Scaffolder) record(opts Options, res Result, runErr error, elapsed time.Duration) {
	if s.Recorder == nil {
		return
	}

	run := history.Run{
		Target:      res.Target,
		ProjectName: filepath.Base(res.Target),
		Variant:     string(res.Variant),
		Status:      history.StatusSuccess,
		InstallOK:   res.InstallOK,
		SchemaOK:    res.SchemaOK,
		DryRun:      opts.DryRun,
		Files:       len(res.Files),
		Duration:    elapsed,
	}
	switch {
	case errors.Is(runErr, prompt.ErrInterrupted):
		run.Status = history.StatusAborted
	case runErr != nil:
		run.Status = history.StatusFailed
		run.Error = runErr.Error()
	}

	if _, err := s.Recorder.Save(run); err != nil {
		s.Log.WithError(err).Debug("failed to record run")
	}
}
