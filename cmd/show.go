package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/school1992-cyber/website/internal/filter"
	"github.com/school1992-cyber/website/internal/history"
	"github.com/school1992-cyber/website/internal/reshape"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var (
	flagQuery  string
	flagFormat string
)

var showCmd = &cobra.Command{
	Use:   "show <tab>",
	Short: "Print one tab's records",
	Long: `Fetch a tab's sheet, reshape it the way the console shows it and print the
result. --query applies the same filter as the search box.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagFormat != "yaml" && flagFormat != "json" {
			return fmt.Errorf("invalid --format %q (want yaml or json)", flagFormat)
		}

		e, err := setup()
		if err != nil {
			return err
		}
		defer e.Close()

		tab, err := e.tab(args[0])
		if err != nil {
			return err
		}
		kind, err := reshape.ParseKind(tab.View)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), e.cfg.TimeoutDuration())
		defer cancel()

		start := time.Now()
		t, err := e.client.Fetch(ctx, tab.Sheet)
		entry := history.Entry{Tab: tab.ID, Sheet: tab.Sheet, Rows: t.Len(), Duration: time.Since(start), Applied: true}
		if err != nil {
			entry.Err = err.Error()
			e.reportLastGood(cmd.ErrOrStderr(), tab.ID)
			e.record(entry)
			return fmt.Errorf("fetching %s: %w", tab.Sheet, err)
		}
		e.record(entry)

		view, err := reshape.Reshape(kind, t)
		if err != nil {
			return err
		}
		view = filter.View(view, filter.New(flagQuery))
		e.logger.Debug("show",
			zap.String("tab", tab.ID),
			zap.String("query", flagQuery),
			zap.Int("shown", view.Len()))

		return writeView(cmd.OutOrStdout(), view, flagFormat)
	},
}

func init() {
	showCmd.Flags().StringVarP(&flagQuery, "query", "q", "", "case-insensitive filter")
	showCmd.Flags().StringVarP(&flagFormat, "format", "f", "yaml", "output format: yaml or json")
}

func writeView(w io.Writer, v reshape.View, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
