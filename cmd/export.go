package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/school1992-cyber/website/internal/config"
	"github.com/school1992-cyber/website/internal/history"
	"github.com/school1992-cyber/website/internal/source"
	"github.com/school1992-cyber/website/internal/workbook"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var flagExportTabs []string

var exportCmd = &cobra.Command{
	Use:   "export <file.xlsx>",
	Short: "Save sheets to an Excel workbook",
	Long: `Fetch the configured tabs concurrently and write one worksheet per tab.
Reserved metadata columns are left out and links become hyperlinks.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.Close()

		tabs := e.cfg.Tabs
		if len(flagExportTabs) > 0 {
			tabs = nil
			for _, name := range flagExportTabs {
				t, err := e.tab(name)
				if err != nil {
					return err
				}
				tabs = append(tabs, t)
			}
		}

		sheets := make([]string, 0, len(tabs))
		for _, t := range tabs {
			sheets = append(sheets, t.Sheet)
		}

		// Each fetch carries its own timeout; the limiter may queue them.
		ctx, cancel := context.WithTimeout(cmd.Context(), e.cfg.TimeoutDuration()*time.Duration(len(sheets)))
		defer cancel()

		start := time.Now()
		result := source.FetchAll(ctx, e.client, sheets)
		elapsed := time.Since(start)

		for _, err := range result.Errors {
			fmt.Fprintf(cmd.ErrOrStderr(), "  [warn] %v\n", err)
		}

		out := exportSheets(tabs, result)
		for _, t := range tabs {
			entry := history.Entry{Tab: t.ID, Sheet: t.Sheet, Duration: elapsed, Applied: true}
			if tbl, ok := result.Tables[t.Sheet]; ok {
				entry.Rows = tbl.Len()
			} else if err, ok := result.Failed[t.Sheet]; ok {
				entry.Err = err.Error()
			}
			e.record(entry)
		}
		if len(out) == 0 {
			return errNothingFetched
		}

		if err := workbook.Save(args[0], out); err != nil {
			return err
		}
		e.logger.Info("exported workbook", zap.String("path", args[0]), zap.Int("sheets", len(out)))
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d sheet(s) to %s.\n", len(out), args[0])
		return nil
	},
}

func init() {
	exportCmd.Flags().StringSliceVar(&flagExportTabs, "tab", nil, "tabs to export (default: all)")
}

// exportSheets keeps tab order and skips sheets that failed to fetch.
func exportSheets(tabs []config.Tab, result source.FetchResult) []workbook.Sheet {
	var out []workbook.Sheet
	for _, t := range tabs {
		tbl, ok := result.Tables[t.Sheet]
		if !ok {
			continue
		}
		out = append(out, workbook.Sheet{Name: t.Label, Table: tbl})
	}
	return out
}
