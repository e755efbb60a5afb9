// Package source fetches sheets from the spreadsheet script endpoint.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/school1992-cyber/website/internal/sheet"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Sheet identifiers served by the endpoint.
const (
	SheetSociety = "Society"
	SheetMaster  = "Master"
	SheetZones   = "CBSE & Zone"
)

// DefaultMaxBytes caps a response body.
const DefaultMaxBytes = 8 << 20

var ErrNoSheet = errors.New("sheet name is required")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Sheet      string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetching %q: unexpected status %s", e.Sheet, e.Status)
}

// Fetcher returns the current contents of one sheet.
type Fetcher interface {
	Fetch(ctx context.Context, sheetName string) (sheet.Table, error)
}

type Options struct {
	Timeout time.Duration
	// RateLimit is requests per second; zero disables limiting.
	RateLimit float64
	Burst     int
	// Reserved names the metadata columns present in every sheet.
	Reserved   []string
	MaxBytes   int64
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client issues a single GET per fetch: endpoint?tab=<sheet>.
type Client struct {
	endpoint   *url.URL
	httpClient *http.Client
	limiter    *rate.Limiter
	reserved   []string
	maxBytes   int64
	logger     *zap.Logger
}

func NewClient(endpoint string, opts Options) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parsing endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("endpoint scheme must be http or https, got %q", u.Scheme)
	}

	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}

	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		endpoint:   u,
		httpClient: hc,
		limiter:    rate.NewLimiter(limit, burst),
		reserved:   slices.Clone(opts.Reserved),
		maxBytes:   maxBytes,
		logger:     logger,
	}, nil
}

// URL returns the request URL for sheetName. Spaces go out as %20, not '+';
// a literal '+' is already escaped to %2B by Encode.
func (c *Client) URL(sheetName string) string {
	u := *c.endpoint
	q := u.Query()
	q.Set("tab", sheetName)
	u.RawQuery = strings.ReplaceAll(q.Encode(), "+", "%20")
	return u.String()
}

func (c *Client) Fetch(ctx context.Context, sheetName string) (sheet.Table, error) {
	if sheetName == "" {
		return sheet.Table{}, ErrNoSheet
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return sheet.Table{}, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	start := time.Now()
	log := c.logger.With(zap.String("sheet", sheetName))
	log.Debug("fetching sheet")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(sheetName), nil)
	if err != nil {
		return sheet.Table{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("fetch failed", zap.Error(err))
		return sheet.Table{}, fmt.Errorf("fetching %q: %w", sheetName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warn("unexpected status", zap.Int("status", resp.StatusCode))
		return sheet.Table{}, &StatusError{Sheet: sheetName, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	t, err := sheet.DecodeTable(io.LimitReader(resp.Body, c.maxBytes), c.reserved)
	if err != nil {
		log.Warn("decode failed", zap.Error(err))
		return sheet.Table{}, fmt.Errorf("decoding %q: %w", sheetName, err)
	}

	if err := t.Validate(); err != nil {
		// Reshaping tolerates this; missing cells read as empty.
		log.Warn("inconsistent rows", zap.Error(err))
	}
	log.Debug("fetched sheet",
		zap.Int("rows", t.Len()),
		zap.Int("columns", len(t.Columns)),
		zap.Duration("took", time.Since(start)))
	return t, nil
}
