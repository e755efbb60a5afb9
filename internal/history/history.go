// Package history keeps a local sqlite log of sheet fetches. It stores
// outcomes only (row counts, timings, errors), never sheet contents.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

type Log struct {
	readDB  *sql.DB
	writeDB *sql.DB
}

func Open(dbPath string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	readDB, err := sql.Open("sqlite", dbPath+"?mode=ro")
	if err != nil {
		writeDB.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}

	l := &Log{readDB: readDB, writeDB: writeDB}
	if err := l.init(); err != nil {
		l.Close()
		return nil, err
	}
	return l, nil
}

func (l *Log) init() error {
	_, err := l.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS fetches (
			id          TEXT PRIMARY KEY,
			tab         TEXT NOT NULL,
			sheet       TEXT NOT NULL,
			generation  INTEGER NOT NULL DEFAULT 0,
			rows        INTEGER NOT NULL DEFAULT 0,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			error       TEXT NOT NULL DEFAULT '',
			applied     INTEGER NOT NULL DEFAULT 1,
			fetched_at  INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_fetches_fetched_at ON fetches(fetched_at DESC);
		CREATE INDEX IF NOT EXISTS idx_fetches_tab ON fetches(tab);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (l *Log) Close() error {
	var errs []error
	if l.readDB != nil {
		errs = append(errs, l.readDB.Close())
	}
	if l.writeDB != nil {
		errs = append(errs, l.writeDB.Close())
	}
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}

// Record appends e, assigning an ID and timestamp when unset. It returns the
// stored entry.
func (l *Log) Record(e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.FetchedAt.IsZero() {
		e.FetchedAt = time.Now()
	}

	_, err := l.writeDB.Exec(`
		INSERT INTO fetches (id, tab, sheet, generation, rows, duration_ms, error, applied, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Tab, e.Sheet, int64(e.Generation), e.Rows, e.Duration.Milliseconds(), e.Err, boolInt(e.Applied), e.FetchedAt.UnixMilli())
	if err != nil {
		return Entry{}, fmt.Errorf("recording fetch %s: %w", e.ID, err)
	}
	return e, nil
}

func (l *Log) Recent(opts QueryOpts) ([]Entry, error) {
	var (
		where []string
		args  []interface{}
	)

	if !opts.Since.IsZero() {
		where = append(where, "fetched_at >= ?")
		args = append(args, opts.Since.UnixMilli())
	}
	if opts.Tab != "" {
		where = append(where, "tab = ?")
		args = append(args, opts.Tab)
	}
	if opts.FailedOnly {
		where = append(where, "error != ''")
	}

	query := "SELECT id, tab, sheet, generation, rows, duration_ms, error, applied, fetched_at FROM fetches"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY fetched_at DESC, rowid DESC"

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	query += fmt.Sprintf(" LIMIT %d", limit)

	rows, err := l.readDB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying fetches: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			gen        int64
			durationMS int64
			applied    int
			fetchedAt  int64
		)
		if err := rows.Scan(&e.ID, &e.Tab, &e.Sheet, &gen, &e.Rows, &durationMS, &e.Err, &applied, &fetchedAt); err != nil {
			return nil, fmt.Errorf("scanning fetch: %w", err)
		}
		e.Generation = uint64(gen)
		e.Duration = time.Duration(durationMS) * time.Millisecond
		e.Applied = applied != 0
		e.FetchedAt = time.UnixMilli(fetchedAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// LastSuccess returns the newest successful, applied fetch for tab.
func (l *Log) LastSuccess(tab string) (Entry, bool, error) {
	entries, err := l.Recent(QueryOpts{Tab: tab, Limit: 20})
	if err != nil {
		return Entry{}, false, err
	}
	for _, e := range entries {
		if !e.Failed() && e.Applied {
			return e, true, nil
		}
	}
	return Entry{}, false, nil
}

// Summaries aggregates the log per tab, ordered by tab.
func (l *Log) Summaries() ([]Summary, error) {
	rows, err := l.readDB.Query(`
		SELECT tab,
		       COUNT(*),
		       SUM(CASE WHEN error != '' THEN 1 ELSE 0 END),
		       SUM(CASE WHEN applied = 0 THEN 1 ELSE 0 END),
		       CAST(AVG(duration_ms) AS INTEGER),
		       MAX(fetched_at)
		FROM fetches
		GROUP BY tab
		ORDER BY tab
	`)
	if err != nil {
		return nil, fmt.Errorf("summarizing fetches: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			s         Summary
			avgMS     int64
			lastFetch int64
		)
		if err := rows.Scan(&s.Tab, &s.Fetches, &s.Failures, &s.Stale, &avgMS, &lastFetch); err != nil {
			return nil, fmt.Errorf("scanning summary: %w", err)
		}
		s.AvgDuration = time.Duration(avgMS) * time.Millisecond
		s.LastFetch = time.UnixMilli(lastFetch)
		out = append(out, s)
	}
	return out, rows.Err()
}

// Prune deletes entries older than retention and returns how many went.
func (l *Log) Prune(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention).UnixMilli()
	res, err := l.writeDB.Exec("DELETE FROM fetches WHERE fetched_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning fetches: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		// Reclaim space; failure here is not worth surfacing.
		_, _ = l.writeDB.Exec("VACUUM")
	}
	return n, nil
}

// Stats returns the entry count and the database file size.
func (l *Log) Stats(dbPath string) (int, int64, error) {
	var count int
	if err := l.readDB.QueryRow("SELECT COUNT(*) FROM fetches").Scan(&count); err != nil {
		return 0, 0, fmt.Errorf("counting fetches: %w", err)
	}
	info, err := os.Stat(dbPath)
	if err != nil {
		return count, 0, fmt.Errorf("stat %s: %w", dbPath, err)
	}
	return count, info.Size(), nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
