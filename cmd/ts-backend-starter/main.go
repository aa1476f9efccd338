package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"ts-backend-starter/internal/scaffold"
	"ts-backend-starter/pkg/prompt"
	"ts-backend-starter/pkg/runner"
	"ts-backend-starter/pkg/variant"
)

const exitInterrupted = 130

var (
	dbFlag      string
	skipInstall bool
	devFlag     bool
	noDevFlag   bool
	dryRun      bool
	templateDir string
	configPath  string
	verbose     bool

	// exitCode carries the dev server's exit code out of RunE.
	exitCode int
)

var rootCmd = &cobra.Command{
	Use:   "ts-backend-starter [target-directory]",
	Short: "Scaffold a TypeScript Express backend",
	Long: `Copies the bundled Express + TypeScript template into target-directory,
generates package.json for the chosen database, installs dependencies and
optionally starts the dev server.

If target-directory is omitted, the current directory is used. The target
must be empty or absent.

A target named history, config, template or version runs that subcommand
instead. Use ./config to scaffold into a directory named config.`,
	Example: `  ts-backend-starter my-api
  ts-backend-starter my-api --db postgresql --no-dev
  ts-backend-starter my-api --dry-run`,
	Args:          cobra.MaximumNArgs(1),
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runScaffold,
}

func init() {
	rootCmd.Flags().StringVarP(&dbFlag, "db", "d", "", "database to use: "+joinNames()+" (skips the selector)")
	rootCmd.Flags().BoolVar(&skipInstall, "skip-install", false, "do not run the package manager install")
	rootCmd.Flags().BoolVar(&devFlag, "dev", false, "start the dev server without asking")
	rootCmd.Flags().BoolVar(&noDevFlag, "no-dev", false, "do not start the dev server and do not ask")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be written without touching the disk")
	rootCmd.Flags().StringVar(&templateDir, "template", "", "use the template tree in this directory")
	rootCmd.MarkFlagsMutuallyExclusive("dev", "no-dev")

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.ts-backend-starter/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func runScaffold(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cmd)

	opts := scaffold.Options{
		SkipInstall: skipInstall,
		DryRun:      dryRun,
	}
	if len(args) > 0 {
		opts.Target = args[0]
	}
	if dbFlag != "" {
		if opts.Variant, err = variant.Parse(dbFlag); err != nil {
			return err
		}
	}
	switch {
	case devFlag:
		opts.Dev = scaffold.DevStart
	case noDevFlag:
		opts.Dev = scaffold.DevSkip
	}

	engine := newEngine(cfg, templateDir)

	s := &scaffold.Scaffolder{
		Config: cfg,
		Engine: engine,
		Fs:     afero.NewOsFs(),
		Runner: &runner.ExecRunner{
			Stdout: cmd.OutOrStdout(),
			Stderr: cmd.ErrOrStderr(),
			Log:    log,
		},
		Prompter: scaffold.NewTerminalPrompter(prompt.NewFor(cmd.InOrStdin(), cmd.OutOrStdout())),
		Out:      cmd.OutOrStdout(),
		Log:      log,
	}

	if store := openHistory(cfg, log); store != nil {
		defer store.Close()
		s.Recorder = store
	}

	res, err := s.Run(cmd.Context(), opts)
	if err != nil {
		return err
	}
	exitCode = res.ExitCode
	return nil
}

// execute runs the CLI with args and returns the process exit code.
func execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	exitCode = 0
	rootCmd.SetArgs(args)
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if errors.Is(err, prompt.ErrInterrupted) {
			return exitInterrupted
		}
		return 1
	}
	return exitCode
}

func main() {
	os.Exit(execute(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
