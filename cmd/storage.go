package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/school1992-cyber/website/internal/config"
	"github.com/school1992-cyber/website/internal/history"
	"github.com/spf13/cobra"
)

var (
	flagPruneOlderThan string
	flagHistoryTab     string
	flagHistorySince   string
	flagHistoryFailed  bool
	flagHistoryLimit   int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent sheet fetches",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := history.QueryOpts{
			Tab:        flagHistoryTab,
			FailedOnly: flagHistoryFailed,
			Limit:      flagHistoryLimit,
		}
		if flagHistorySince != "" {
			d, err := config.ParseDuration(flagHistorySince)
			if err != nil {
				return fmt.Errorf("invalid --since value: %w", err)
			}
			opts.Since = time.Now().Add(-d)
		}

		db, err := history.Open(config.HistoryPath())
		if err != nil {
			return fmt.Errorf("opening history: %w", err)
		}
		defer db.Close()

		entries, err := db.Recent(opts)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No fetches recorded.")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderEntries(entries))
		return nil
	},
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old entries from the fetch log",
	Long: `Delete fetch log entries older than the retention period and reclaim disk space.

Uses the retention value from config (default: 30d) unless overridden with --older-than.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		db, err := history.Open(config.HistoryPath())
		if err != nil {
			return fmt.Errorf("opening history: %w", err)
		}
		defer db.Close()

		retention := cfg.RetentionDuration()
		if flagPruneOlderThan != "" {
			d, err := config.ParseDuration(flagPruneOlderThan)
			if err != nil {
				return fmt.Errorf("invalid --older-than value: %w", err)
			}
			retention = d
		}

		deleted, err := db.Prune(retention)
		if err != nil {
			return fmt.Errorf("pruning: %w", err)
		}

		if deleted == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing to prune.")
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d fetch(es) older than %s.\n", deleted, formatDuration(retention))
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show fetch log statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath := config.HistoryPath()
		db, err := history.Open(dbPath)
		if err != nil {
			return fmt.Errorf("opening history: %w", err)
		}
		defer db.Close()

		count, size, err := db.Stats(dbPath)
		if err != nil {
			return fmt.Errorf("reading stats: %w", err)
		}
		sums, err := db.Summaries()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "History: %s\n", dbPath)
		fmt.Fprintf(out, "Fetches: %d\n", count)
		fmt.Fprintf(out, "Size: %s\n", formatBytes(size))
		if len(sums) > 0 {
			fmt.Fprintln(out, renderSummaries(sums))
		}
		return nil
	},
}

func init() {
	pruneCmd.Flags().StringVar(&flagPruneOlderThan, "older-than", "", "override retention period (e.g., 30d, 720h)")

	historyCmd.Flags().StringVar(&flagHistoryTab, "tab", "", "only this tab id")
	historyCmd.Flags().StringVar(&flagHistorySince, "since", "", "only fetches from the last duration (e.g., 7d, 24h)")
	historyCmd.Flags().BoolVar(&flagHistoryFailed, "failed", false, "only failed fetches")
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 50, "maximum entries")
}

func renderEntries(entries []history.Entry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		outcome := "ok"
		switch {
		case e.Failed():
			outcome = e.Err
		case !e.Applied:
			outcome = "stale"
		}
		rows = append(rows, []string{
			e.FetchedAt.Local().Format("Jan 2 15:04:05"),
			e.Tab,
			strconv.Itoa(e.Rows),
			e.Duration.Round(time.Millisecond).String(),
			outcome,
		})
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("WHEN", "TAB", "ROWS", "TOOK", "OUTCOME").
		Rows(rows...).
		String()
}

func renderSummaries(sums []history.Summary) string {
	rows := make([][]string, 0, len(sums))
	for _, s := range sums {
		rows = append(rows, []string{
			s.Tab,
			strconv.Itoa(s.Fetches),
			strconv.Itoa(s.Failures),
			strconv.Itoa(s.Stale),
			s.AvgDuration.Round(time.Millisecond).String(),
			s.LastFetch.Local().Format("Jan 2 15:04"),
		})
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("TAB", "FETCHES", "FAILED", "STALE", "AVG", "LAST").
		Rows(rows...).
		String()
}

func formatDuration(d time.Duration) string {
	h := d.Hours()
	days := int(h / 24)
	if days > 0 {
		return fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%dh", int(h))
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
