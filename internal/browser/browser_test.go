package browser

import (
	"errors"
	"testing"

	"github.com/school1992-cyber/website/internal/sheet"
)

func stubLaunch(t *testing.T) *[]string {
	t.Helper()
	var opened []string
	orig := launch
	launch = func(name string, args ...string) error {
		opened = append(opened, args[len(args)-1])
		return nil
	}
	t.Cleanup(func() { launch = orig })
	return &opened
}

func TestOpenRejectsNonHTTP(t *testing.T) {
	opened := stubLaunch(t)

	tests := []struct {
		url     string
		wantErr bool
	}{
		{"https://example.com", false},
		{"http://example.com/doc.pdf", false},
		{"file:///etc/passwd", true},
		{"javascript:alert(1)", true},
		{"ftp://example.com", true},
		{"http:/nohost", true},
		{"", true},
	}

	for _, tt := range tests {
		err := Open(tt.url)
		if tt.wantErr && err == nil {
			t.Errorf("Open(%q): expected error, got nil", tt.url)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("Open(%q): unexpected error: %v", tt.url, err)
		}
	}
	if len(*opened) != 2 {
		t.Errorf("expected 2 launches, got %v", *opened)
	}
}

func TestOpenCell(t *testing.T) {
	opened := stubLaunch(t)

	if err := OpenCell(sheet.NewCell("https://drive.example.com/d/1")); err != nil {
		t.Fatalf("OpenCell(link): %v", err)
	}
	for _, text := range []string{"", "Pending"} {
		if err := OpenCell(sheet.NewCell(text)); !errors.Is(err, ErrNotLink) {
			t.Errorf("OpenCell(%q) = %v, want ErrNotLink", text, err)
		}
	}
	// "httpx" classifies as a link but is not a valid URL scheme.
	if err := OpenCell(sheet.NewCell("httpx://odd")); err == nil {
		t.Error("expected scheme rejection")
	}
	if len(*opened) != 1 {
		t.Errorf("expected 1 launch, got %v", *opened)
	}
}

func TestCommand(t *testing.T) {
	tests := []struct {
		goos string
		want string
	}{
		{"darwin", "open"},
		{"linux", "xdg-open"},
		{"windows", "rundll32"},
		{"freebsd", "xdg-open"},
	}
	for _, tt := range tests {
		name, args := command(tt.goos, "https://x")
		if name != tt.want {
			t.Errorf("command(%s) = %s, want %s", tt.goos, name, tt.want)
		}
		if args[len(args)-1] != "https://x" {
			t.Errorf("command(%s) does not pass the URL last: %v", tt.goos, args)
		}
	}
}
