// Package filter implements the dashboard search box: a case-insensitive
// substring match applied to whichever view is on screen.
package filter

import (
	"strings"

	"github.com/school1992-cyber/website/internal/reshape"
	"github.com/school1992-cyber/website/internal/sheet"
)

// Predicate matches entries against a lower-cased query. The query is not
// trimmed and punctuation is kept.
type Predicate struct {
	query string
}

func New(query string) Predicate {
	return Predicate{query: strings.ToLower(query)}
}

// Empty reports whether the predicate accepts everything.
func (p Predicate) Empty() bool { return p.query == "" }

func (p Predicate) MatchText(s string) bool {
	if p.query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), p.query)
}

// MatchEntity matches a society matrix entry by entity name.
func (p Predicate) MatchEntity(e reshape.EntityProfile) bool {
	return p.MatchText(e.Name)
}

// MatchGroup matches a session group by year.
func (p Predicate) MatchGroup(g reshape.SessionGroup) bool {
	return p.MatchText(g.Year)
}

// MatchRow matches when any cell of the row contains the query, metadata
// columns included.
func (p Predicate) MatchRow(r sheet.Row) bool {
	if p.query == "" {
		return true
	}
	for _, c := range r.Values {
		if p.MatchText(c.String()) {
			return true
		}
	}
	return false
}

// Apply keeps the items accepted by keep, preserving order.
func Apply[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

// View narrows v to the entries p accepts. v itself is not modified.
func View(v reshape.View, p Predicate) reshape.View {
	if p.Empty() {
		return v
	}
	out := reshape.View{Kind: v.Kind}
	switch v.Kind {
	case reshape.KindSociety:
		out.Society = reshape.SocietyMatrix{Entities: Apply(v.Society.Entities, p.MatchEntity)}
	case reshape.KindSessions:
		out.Sessions = Apply(v.Sessions, p.MatchGroup)
	case reshape.KindTable:
		out.Table = v.Table
		out.Table.Rows = Apply(v.Table.Rows, p.MatchRow)
	}
	return out
}
