package history

import "time"

// Entry records one fetch issued by the dashboard or a headless command.
type Entry struct {
	ID         string
	Tab        string
	Sheet      string
	Generation uint64
	Rows       int
	Duration   time.Duration
	Err        string
	// Applied is false when a newer fetch superseded this one.
	Applied   bool
	FetchedAt time.Time
}

func (e Entry) Failed() bool { return e.Err != "" }

type QueryOpts struct {
	Since      time.Time
	Tab        string
	FailedOnly bool
	Limit      int
}

// Summary aggregates the log per tab.
type Summary struct {
	Tab         string
	Fetches     int
	Failures    int
	Stale       int
	AvgDuration time.Duration
	LastFetch   time.Time
}
