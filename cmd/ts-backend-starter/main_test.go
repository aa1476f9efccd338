package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags restores every flag to its default between executions of the
// package-level command tree.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

type cliResult struct {
	code   int
	stdout string
	stderr string
}

// isolate points config and history at a per-test home.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("TSBS_HISTORY_PATH", filepath.Join(home, "history.db"))
	t.Setenv("TSBS_HISTORY_ENABLED", "true")
	return home
}

func run(t *testing.T, home, stdin string, args ...string) cliResult {
	t.Helper()
	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })

	args = append(args, "--config", filepath.Join(home, "config.yaml"))

	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return cliResult{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestCommandsRegistered(t *testing.T) {
	tests := []struct {
		parent *cobra.Command
		names  []string
	}{
		{rootCmd, []string{"history", "config", "template", "version"}},
		{historyCmd, []string{"list", "stats", "clear"}},
		{configCmd, []string{"init", "show", "path"}},
	}

	for _, tt := range tests {
		for _, name := range tt.names {
			t.Run(tt.parent.Name()+" "+name, func(t *testing.T) {
				found := false
				for _, c := range tt.parent.Commands() {
					if c.Name() == name {
						found = true
						break
					}
				}
				assert.True(t, found, "%s %s command not registered", tt.parent.Name(), name)
			})
		}
	}
}

func TestRootFlags(t *testing.T) {
	for _, name := range []string{"db", "skip-install", "dev", "no-dev", "dry-run", "template"} {
		assert.NotNil(t, rootCmd.Flags().Lookup(name), "missing --%s", name)
	}
	assert.Equal(t, "d", rootCmd.Flags().Lookup("db").Shorthand)
	assert.Equal(t, "v", rootCmd.PersistentFlags().Lookup("verbose").Shorthand)
}

func TestScaffold_EndToEnd(t *testing.T) {
	home := isolate(t)
	target := filepath.Join(t.TempDir(), "my-api")

	res := run(t, home, "", target, "--db", "postgres", "--skip-install", "--no-dev")
	require.Equal(t, 0, res.code, res.stderr)

	assert.Contains(t, res.stdout, "✔ Project scaffolded successfully!")
	assert.Contains(t, res.stdout, "→ Location: "+target)
	assert.FileExists(t, filepath.Join(target, "package.json"))
	assert.NoDirExists(t, filepath.Join(target, "database"))

	data, err := os.ReadFile(filepath.Join(target, "package.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name": "my-api"`)
	assert.Contains(t, string(data), "@prisma/client")
	assert.NotContains(t, string(data), "mongoose")

	hist := run(t, home, "", "history", "--limit", "5")
	require.Equal(t, 0, hist.code, hist.stderr)
	assert.Contains(t, hist.stdout, "postgresql")
	assert.Contains(t, hist.stdout, target)
}

func TestScaffold_NonEmptyTarget(t *testing.T) {
	home := isolate(t)
	target := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(target, "keep.txt"), []byte("x"), 0o644))

	res := run(t, home, "", target, "--db", "mongodb", "--no-dev")
	assert.Equal(t, 1, res.code)
	assert.True(t, strings.HasPrefix(res.stderr, "Error: "), res.stderr)
	assert.Contains(t, res.stderr, "not empty")

	entries, err := os.ReadDir(target)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestScaffold_NumberedSelectionFromPipe(t *testing.T) {
	home := isolate(t)
	target := filepath.Join(t.TempDir(), "svc")

	res := run(t, home, "1\n", target, "--skip-install", "--no-dev")
	require.Equal(t, 0, res.code, res.stderr)

	assert.Contains(t, res.stdout, "1) MongoDB")
	assert.DirExists(t, filepath.Join(target, "database"))
}

func TestScaffold_UnknownDatabase(t *testing.T) {
	home := isolate(t)

	res := run(t, home, "", filepath.Join(t.TempDir(), "x"), "--db", "sqlite")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, `unknown database "sqlite"`)
}

func TestScaffold_DevFlagsAreExclusive(t *testing.T) {
	home := isolate(t)

	res := run(t, home, "", filepath.Join(t.TempDir(), "x"), "--dev", "--no-dev")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "Error: ")
}

func TestScaffold_TooManyArgs(t *testing.T) {
	home := isolate(t)

	res := run(t, home, "", "a", "b")
	assert.Equal(t, 1, res.code)
}

func TestScaffold_DryRun(t *testing.T) {
	home := isolate(t)
	target := filepath.Join(t.TempDir(), "preview")

	res := run(t, home, "", target, "--db", "mongodb", "--dry-run")
	require.Equal(t, 0, res.code, res.stderr)

	assert.Contains(t, res.stdout, "Dry run:")
	assert.NoDirExists(t, target)
}

func TestScaffold_InvalidConfig(t *testing.T) {
	home := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte("package_manager: \"\"\n"), 0o644))

	res := run(t, home, "", filepath.Join(t.TempDir(), "x"), "--db", "mongodb")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "invalid config")
}

func TestHistoryStatsAndClear(t *testing.T) {
	home := isolate(t)
	target := filepath.Join(t.TempDir(), "api")

	require.Equal(t, 0, run(t, home, "", target, "--db", "mongodb", "--skip-install", "--no-dev").code)

	stats := run(t, home, "", "history", "stats", "--days", "7")
	require.Equal(t, 0, stats.code, stats.stderr)
	assert.Contains(t, stats.stdout, "Runs: 1")
	assert.Contains(t, stats.stdout, "mongodb: 1")

	cleared := run(t, home, "", "history", "clear")
	require.Equal(t, 0, cleared.code, cleared.stderr)
	assert.Contains(t, cleared.stdout, "Removed 1 runs")

	list := run(t, home, "", "history", "list")
	assert.Contains(t, list.stdout, "No scaffold runs recorded yet.")
}

func TestHistoryDisabled(t *testing.T) {
	home := isolate(t)
	t.Setenv("TSBS_HISTORY_ENABLED", "false")

	res := run(t, home, "", "history")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "history is disabled")
}

func TestConfigCommands(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, "config.yaml")

	res := run(t, home, "", "config", "path")
	assert.Equal(t, path+"\n", res.stdout)

	res = run(t, home, "", "config", "init")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Wrote default config")
	assert.FileExists(t, path)

	res = run(t, home, "", "config", "init")
	assert.Contains(t, res.stdout, "already exists")

	t.Setenv("TSBS_PACKAGE_MANAGER", "pnpm")
	res = run(t, home, "", "config", "show")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "package_manager: pnpm")
}

func TestVersion(t *testing.T) {
	res := run(t, isolate(t), "", "version")
	assert.Equal(t, "ts-backend-starter dev\n", res.stdout)
}

func TestTemplateCommand(t *testing.T) {
	res := run(t, isolate(t), "", "template")
	require.Equal(t, 0, res.code, res.stderr)

	assert.Contains(t, res.stdout, "📦 Template")
	assert.Contains(t, res.stdout, "mongodb")
	assert.Contains(t, res.stdout, "postgresql")
	assert.Contains(t, res.stdout, "(without /database/)")
}

func TestTemplateCommand_MissingDirectory(t *testing.T) {
	home := isolate(t)

	res := run(t, home, "", "template", "--template", filepath.Join(home, "nope"))
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "Error: ")
}

func TestRootHelp_ExplainsSubcommandNames(t *testing.T) {
	res := run(t, isolate(t), "", "--help")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Use ./config to scaffold into a directory named config.")
}

func TestScaffold_DotSlashTargetNamedLikeSubcommand(t *testing.T) {
	home := isolate(t)
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	res := run(t, home, "", "./config", "--db", "mongodb", "--skip-install", "--no-dev")
	require.Equal(t, 0, res.code, res.stderr)
	assert.FileExists(t, filepath.Join(dir, "config", "package.json"))
}
