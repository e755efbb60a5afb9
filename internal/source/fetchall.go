package source

import (
	"context"
	"sync"

	"github.com/school1992-cyber/website/internal/sheet"
	"golang.org/x/sync/errgroup"
)

// FetchResult holds the tables that arrived and the errors of those that did
// not. One failing sheet does not cancel the others.
type FetchResult struct {
	Tables map[string]sheet.Table
	Failed map[string]error
	Errors []error
}

// FetchAll fetches sheets concurrently.
func FetchAll(ctx context.Context, f Fetcher, sheets []string) FetchResult {
	var (
		mu     sync.Mutex
		result = FetchResult{
			Tables: make(map[string]sheet.Table, len(sheets)),
			Failed: make(map[string]error),
		}
		g      errgroup.Group
	)

	for _, name := range sheets {
		g.Go(func() error {
			t, err := f.Fetch(ctx, name)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed[name] = err
				result.Errors = append(result.Errors, err)
				return nil
			}
			result.Tables[name] = t
			return nil
		})
	}

	_ = g.Wait()
	return result
}
