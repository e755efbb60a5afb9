package reshape

import (
	"errors"
	"fmt"

	"github.com/school1992-cyber/website/internal/sheet"
)

// Kind names a view shape.
type Kind string

const (
	KindSociety  Kind = "society"
	KindSessions Kind = "sessions"
	KindTable    Kind = "table"
)

var ErrUnknownKind = errors.New("unknown view kind")

// View is the result of reshaping a table. Only the field matching Kind is
// populated, and it is always encoded, even when it holds no entries.
type View struct {
	Kind     Kind           `json:"kind" yaml:"kind"`
	Society  SocietyMatrix  `json:"society,omitzero" yaml:"society,omitempty"`
	Sessions []SessionGroup `json:"sessions,omitzero" yaml:"sessions,omitempty"`
	Table    sheet.Table    `json:"table,omitzero" yaml:"table,omitempty"`
}

// MarshalYAML writes the kind and its payload only. yaml.v3 has no omitzero,
// so an empty payload would otherwise vanish.
func (v View) MarshalYAML() (interface{}, error) {
	switch v.Kind {
	case KindSociety:
		entities := v.Society.Entities
		if entities == nil {
			entities = []EntityProfile{}
		}
		return struct {
			Kind    Kind          `yaml:"kind"`
			Society SocietyMatrix `yaml:"society"`
		}{v.Kind, SocietyMatrix{Entities: entities}}, nil
	case KindSessions:
		groups := v.Sessions
		if groups == nil {
			groups = []SessionGroup{}
		}
		return struct {
			Kind     Kind           `yaml:"kind"`
			Sessions []SessionGroup `yaml:"sessions"`
		}{v.Kind, groups}, nil
	case KindTable:
		return struct {
			Kind  Kind        `yaml:"kind"`
			Table sheet.Table `yaml:"table"`
		}{v.Kind, v.Table}, nil
	}
	return struct {
		Kind Kind `yaml:"kind"`
	}{v.Kind}, nil
}

// Len is the number of top-level entries: entities, sessions or rows.
func (v View) Len() int {
	switch v.Kind {
	case KindSociety:
		return v.Society.Len()
	case KindSessions:
		return len(v.Sessions)
	case KindTable:
		return v.Table.Len()
	}
	return 0
}

// Func turns a table into a view.
type Func func(sheet.Table) View

var registry = map[Kind]Func{
	KindSociety: func(t sheet.Table) View {
		return View{Kind: KindSociety, Society: BuildSocietyMatrix(t)}
	},
	KindSessions: func(t sheet.Table) View {
		return View{Kind: KindSessions, Sessions: BuildSessionGroups(t)}
	},
	KindTable: func(t sheet.Table) View {
		return View{Kind: KindTable, Table: Passthrough(t)}
	},
}

// Kinds lists the registered view kinds.
func Kinds() []Kind {
	return []Kind{KindSociety, KindSessions, KindTable}
}

// ParseKind maps a config value to a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if _, ok := registry[k]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

// Lookup returns the reshaper registered for kind.
func Lookup(kind Kind) (Func, error) {
	fn, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return fn, nil
}

// Reshape applies the reshaper registered for kind.
func Reshape(kind Kind, t sheet.Table) (View, error) {
	fn, err := Lookup(kind)
	if err != nil {
		return View{}, err
	}
	return fn(t), nil
}
