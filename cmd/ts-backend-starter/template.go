package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ts-backend-starter/pkg/config"
	"ts-backend-starter/pkg/materialize"
	"ts-backend-starter/pkg/template"
	"ts-backend-starter/pkg/variant"
)

var templateShowDir string

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Show the project template",
	Long: `Show the template new projects are scaffolded from, with the files
each database variant receives.

Examples:
  ts-backend-starter template
  ts-backend-starter template --template ./my-template`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		engine := newEngine(cfg, templateShowDir)
		tmpl, err := engine.LoadTemplate()
		if err != nil {
			return err
		}
		info, err := engine.Info(tmpl)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "📦 Template")
		fmt.Fprintln(out, "────────────────────────────────────────────────")
		fmt.Fprintf(out, "  %-20s %s\n", info.Name, info.Description)
		fmt.Fprintf(out, "    Files: %d\n", len(info.Files))
		for _, spec := range variant.All() {
			skip := materialize.NewPatternSkipper("/", spec.Exclude...)
			n := 0
			for _, f := range info.Files {
				if !skip.ShouldSkip("/" + f) {
					n++
				}
			}
			line := fmt.Sprintf("  %-20s %d files", spec.Variant, n)
			if len(spec.Exclude) > 0 {
				line += " (without " + strings.Join(spec.Exclude, ", ") + ")"
			}
			fmt.Fprintln(out, line)
		}
		fmt.Fprintln(out, "────────────────────────────────────────────────")
		return nil
	},
}

// newEngine prefers dir, then the configured template directory, then the
// bundled template.
func newEngine(cfg *config.Config, dir string) *template.FileSystemEngine {
	if dir == "" {
		dir = cfg.TemplateDir
	}
	if dir == "" {
		return template.NewEngine()
	}
	return template.NewFileSystemEngine(dir)
}

func init() {
	templateCmd.Flags().StringVar(&templateShowDir, "template", "", "use the template tree in this directory")
	rootCmd.AddCommand(templateCmd)
}
