package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/school1992-cyber/website/internal/config"
	"github.com/school1992-cyber/website/internal/history"
	"github.com/school1992-cyber/website/internal/logging"
	"github.com/school1992-cyber/website/internal/source"
	"go.uber.org/zap"
)

// env bundles what every command needs: config, logger, record source
// client and the fetch log.
type env struct {
	cfg     *config.Config
	logger  *zap.Logger
	client  *source.Client
	history *history.Log
}

func setup() (*env, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.New(config.LogPath(), flagVerbose)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	client, err := source.NewClient(cfg.Endpoint, source.Options{
		Timeout:   cfg.TimeoutDuration(),
		RateLimit: cfg.RateLimit,
		Burst:     cfg.Burst,
		Reserved:  cfg.ReservedColumns,
		Logger:    logger.Named("source"),
	})
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("creating client: %w", err)
	}

	db, err := history.Open(config.HistoryPath())
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("opening history: %w", err)
	}

	return &env{cfg: cfg, logger: logger, client: client, history: db}, nil
}

func (e *env) Close() error {
	err := e.history.Close()
	// Sync on a regular file only fails for real I/O errors.
	_ = e.logger.Sync()
	return err
}

// tab resolves a tab by id or label.
func (e *env) tab(name string) (config.Tab, error) {
	t, ok := e.cfg.TabByID(name)
	if !ok {
		return config.Tab{}, fmt.Errorf("unknown tab %q (have: %s)", name, strings.Join(e.cfg.TabIDs(), ", "))
	}
	return t, nil
}

// record writes one fetch outcome to the log; failures only get logged.
func (e *env) record(entry history.Entry) {
	if _, err := e.history.Record(entry); err != nil {
		e.logger.Warn("recording fetch", zap.String("tab", entry.Tab), zap.Error(err))
	}
}

// reportLastGood prints when tab last loaded successfully, if it ever did.
func (e *env) reportLastGood(w io.Writer, tab string) {
	last, ok, err := e.history.LastSuccess(tab)
	if err != nil {
		e.logger.Warn("reading fetch log", zap.String("tab", tab), zap.Error(err))
		return
	}
	if !ok {
		return
	}
	fmt.Fprintf(w, "Last successful fetch of %s: %s (%d rows)\n",
		tab, last.FetchedAt.Format("2006-01-02 15:04"), last.Rows)
}

var errNothingFetched = errors.New("no sheet could be fetched")
