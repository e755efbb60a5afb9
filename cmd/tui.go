package cmd

import (
	"fmt"

	"github.com/school1992-cyber/website/internal/tui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func runTUI(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	var start string
	if flagTab != "" {
		t, err := e.tab(flagTab)
		if err != nil {
			return err
		}
		start = t.ID
	}

	// Auto-prune the fetch log on launch
	if n, err := e.history.Prune(e.cfg.RetentionDuration()); err != nil {
		e.logger.Warn("pruning history", zap.Error(err))
	} else if n > 0 {
		e.logger.Info("pruned history", zap.Int64("deleted", n))
	}

	e.logger.Info("starting tui", zap.String("version", version), zap.String("tab", start))
	if err := tui.Run(tui.RunOpts{
		Cfg:         e.cfg,
		Fetcher:     e.client,
		History:     e.history,
		Logger:      e.logger.Named("tui"),
		StartTab:    start,
		Version:     version,
		CheckUpdate: true,
	}); err != nil {
		return fmt.Errorf("running tui: %w", err)
	}
	return nil
}
