package sheet

import "strings"

// LinkPrefix marks a cell as a hyperlink. The check is case-sensitive.
const LinkPrefix = "http"

// Kind classifies a cell once, at decode time.
type Kind int

const (
	KindEmpty Kind = iota
	KindText
	KindLink
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindLink:
		return "link"
	default:
		return "empty"
	}
}

// Cell is a single spreadsheet value. Value always holds the text the
// record source sent, so filters and exports see it unchanged.
type Cell struct {
	Kind  Kind
	Value string
}

// NewCell classifies s.
func NewCell(s string) Cell {
	switch {
	case s == "":
		return Cell{Kind: KindEmpty}
	case strings.HasPrefix(s, LinkPrefix):
		return Cell{Kind: KindLink, Value: s}
	default:
		return Cell{Kind: KindText, Value: s}
	}
}

func (c Cell) String() string { return c.Value }

func (c Cell) IsLink() bool { return c.Kind == KindLink }

func (c Cell) IsEmpty() bool { return c.Kind == KindEmpty }

// URL returns the link target, or "" for non-link cells.
func (c Cell) URL() string {
	if c.Kind != KindLink {
		return ""
	}
	return c.Value
}

// MarshalText lets json and yaml encoders emit cells as plain strings.
func (c Cell) MarshalText() ([]byte, error) {
	return []byte(c.Value), nil
}
