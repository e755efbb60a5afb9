package update

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// ReleaseURL is the GitHub "latest release" endpoint for portal.
const ReleaseURL = "https://api.github.com/repos/school1992-cyber/website/releases/latest"

// Result holds the outcome of a version check.
type Result struct {
	LatestVersion string
}

type ghRelease struct {
	TagName string `json:"tag_name"`
}

// Checker queries a releases endpoint.
type Checker struct {
	URL    string
	Client *http.Client
}

// Check queries the GitHub Releases API to see if a newer version is available.
// Returns nil on any error (non-fatal) and for development builds.
func Check(ctx context.Context, currentVersion string) *Result {
	return (&Checker{URL: ReleaseURL}).Check(ctx, currentVersion)
}

func (c *Checker) Check(ctx context.Context, currentVersion string) *Result {
	current := strings.TrimPrefix(currentVersion, "v")
	if current == "" || current == "dev" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	var release ghRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil
	}

	latest := strings.TrimPrefix(release.TagName, "v")
	if latest == "" || latest == current {
		return nil
	}

	return &Result{LatestVersion: latest}
}
