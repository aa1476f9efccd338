package scaffold

import (
	"fmt"
	"strings"

	"ts-backend-starter/pkg/variant"
)

func (s *Scaffolder) printSuccess(target string) {
	fmt.Fprintln(s.Out, "\n✔ Project scaffolded successfully!")
	fmt.Fprintf(s.Out, "→ Location: %s\n", target)
}

func (s *Scaffolder) printPlan(res Result) {
	fmt.Fprintf(s.Out, "\nDry run: %d files would be written to %s (%s)\n", len(res.Files), res.Target, res.Variant)
	for _, f := range res.Files {
		fmt.Fprintf(s.Out, "  %s\n", f)
	}
	fmt.Fprintln(s.Out, "No files were written and no commands were run.")
}

// printNextSteps lists what the operator still has to do by hand. Install
// and schema steps only appear when they were skipped or failed.
func (s *Scaffolder) printNextSteps(targetArg string, spec variant.Spec, opts Options, res Result) {
	steps := []string{"cd " + targetArg}
	if opts.SkipInstall || !res.InstallOK {
		steps = append(steps, s.installCommand("").String())
	}
	if cmd, ok := s.schemaCommand(spec, ""); ok && !res.SchemaOK {
		steps = append(steps, cmd.String())
	}
	steps = append(steps,
		"Create .env from example.env and update values",
		s.devCommand("").String(),
	)

	var b strings.Builder
	b.WriteString("\nNext steps:\n")
	for i, step := range steps {
		fmt.Fprintf(&b, "%d) %s\n", i+1, step)
	}
	fmt.Fprint(s.Out, b.String())
}
