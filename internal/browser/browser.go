// Package browser opens document links in the system browser.
package browser

import (
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"

	"github.com/school1992-cyber/website/internal/sheet"
)

var ErrNotLink = errors.New("cell is not a link")

// launch starts the platform opener; tests replace it.
var launch = func(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// Open validates rawURL and hands it to the platform opener. Only http and
// https URLs are accepted.
func Open(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("refusing to open URL with scheme %q (only http/https allowed)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("refusing to open URL without host: %q", rawURL)
	}

	name, args := command(runtime.GOOS, rawURL)
	if err := launch(name, args...); err != nil {
		return fmt.Errorf("launching %s: %w", name, err)
	}
	return nil
}

// OpenCell opens a link cell. Text and empty cells are rejected.
func OpenCell(c sheet.Cell) error {
	if !c.IsLink() {
		return ErrNotLink
	}
	return Open(c.URL())
}

func command(goos, rawURL string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{rawURL}
	case "windows":
		// rundll32 avoids cmd /c start and its shell parsing.
		return "rundll32", []string{"url.dll,FileProtocolHandler", rawURL}
	default:
		return "xdg-open", []string{rawURL}
	}
}
