package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"ts-backend-starter/pkg/config"
	"ts-backend-starter/pkg/history"
)

var (
	historyLimit int
	historyDays  int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past scaffold runs",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent scaffold runs",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarise scaffold runs",
	Example: `  ts-backend-starter history stats           # Last 30 days
  ts-backend-starter history stats --days 7`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistoryStrict()
		if err != nil {
			return err
		}
		defer store.Close()

		stats, err := store.Stats(historyDays)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "📈 Scaffold Statistics (Last %d Days)\n", stats.Days)
		fmt.Fprintln(out, "=====================================")
		fmt.Fprintf(out, "Runs: %d\n", stats.Total)
		fmt.Fprintf(out, "Succeeded: %d  Failed: %d  Aborted: %d\n", stats.Succeeded, stats.Failed, stats.Aborted)
		fmt.Fprintf(out, "Success rate: %.1f%%\n", stats.SuccessRate)
		fmt.Fprintf(out, "Avg run time: %v\n", stats.AvgDuration.Round(time.Millisecond))

		if len(stats.Variants) > 0 {
			fmt.Fprintln(out, "\nDatabases:")
			for _, v := range stats.Variants {
				fmt.Fprintf(out, "  %s: %d (%.0f%% successful)\n", v.Variant, v.Count, v.SuccessRate)
			}
		}

		if len(stats.CommonErrors) > 0 {
			fmt.Fprintln(out, "\nCommon Errors:")
			for _, e := range stats.CommonErrors {
				fmt.Fprintf(out, "  %s: %d occurrences\n", e.Error, e.Count)
			}
		}
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all recorded runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistoryStrict()
		if err != nil {
			return err
		}
		defer store.Close()

		n, err := store.Clear()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d runs\n", n)
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of runs to show (0 for all)")
	historyListCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of runs to show (0 for all)")
	historyStatsCmd.Flags().IntVar(&historyDays, "days", 30, "Number of days to include")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyStatsCmd)
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := openHistoryStrict()
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.List(historyLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No scaffold runs recorded yet.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tSTATUS\tDATABASE\tFILES\tINSTALL\tTARGET")
	fmt.Fprintln(w, "----\t------\t--------\t-----\t-------\t------")
	for _, r := range runs {
		status := string(r.Status)
		if r.DryRun {
			status += " (dry run)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			r.Timestamp.Local().Format("2006-01-02 15:04"),
			status,
			dash(r.Variant),
			r.Files,
			yesNo(r.InstallOK),
			r.Target,
		)
	}
	return w.Flush()
}

// openHistoryStrict opens the history database for the history commands,
// where a missing or disabled store is an error.
func openHistoryStrict() (*history.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.History.Enabled {
		return nil, fmt.Errorf("history is disabled (set history.enabled in %s)", configFile())
	}
	return history.Open(cfg.History.Path)
}

func configFile() string {
	if configPath != "" {
		return config.ExpandHome(configPath)
	}
	return config.DefaultConfigPath()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
