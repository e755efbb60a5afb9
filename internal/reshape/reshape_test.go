package reshape

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/school1992-cyber/website/internal/sheet"
)

func decode(t *testing.T, body string) sheet.Table {
	t.Helper()
	tbl, err := sheet.DecodeTable(strings.NewReader(body), []string{sheet.DefaultReserved})
	if err != nil {
		t.Fatalf("decoding fixture: %v", err)
	}
	return tbl
}

func societyFixture(t *testing.T) sheet.Table {
	return decode(t, `[
		{"Label":"Certificate","rowNumber":1,"ABC Society":"http://x/1","XYZ Society":""},
		{"Label":"License","rowNumber":2,"ABC Society":"","XYZ Society":"http://y/2"}
	]`)
}

func sessionFixture(t *testing.T) sheet.Table {
	return decode(t, `[
		{"Label":"Form A","rowNumber":1,"2023":"http://a","2024":""},
		{"Label":"Form B","rowNumber":2,"2023":"","2024":"http://b"}
	]`)
}

func TestBuildSocietyMatrix(t *testing.T) {
	got := BuildSocietyMatrix(societyFixture(t))
	want := SocietyMatrix{Entities: []EntityProfile{
		{Name: "ABC Society", Entries: []Entry{
			{Label: "Certificate", Cell: sheet.NewCell("http://x/1")},
			{Label: "License", Cell: sheet.NewCell("")},
		}},
		{Name: "XYZ Society", Entries: []Entry{
			{Label: "Certificate", Cell: sheet.NewCell("")},
			{Label: "License", Cell: sheet.NewCell("http://y/2")},
		}},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("matrix mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildSocietyMatrixTransposeProperty(t *testing.T) {
	tbl := decode(t, `[
		{"Doc":"Deed","rowNumber":1,"North":"http://n/deed","South":"pending","East":""},
		{"Doc":"PAN","rowNumber":2,"North":"","South":"http://s/pan","East":"http://e/pan"},
		{"Doc":"Bylaws","rowNumber":3,"North":"n/a","South":"","East":"http://e/by"}
	]`)
	m := BuildSocietyMatrix(tbl)

	if diff := cmp.Diff([]string{"North", "South", "East"}, m.Names()); diff != "" {
		t.Errorf("entity order mismatch (-want +got):\n%s", diff)
	}
	for _, e := range tbl.DataColumns() {
		for _, row := range tbl.Rows {
			label := row.Cell("Doc").String()
			got, ok := m.Lookup(e, label)
			if !ok {
				t.Errorf("missing entry (%s, %s)", e, label)
				continue
			}
			if got != row.Cell(e) {
				t.Errorf("(%s, %s) = %v, want %v", e, label, got, row.Cell(e))
			}
		}
	}
	for _, p := range m.Entities {
		if len(p.Entries) != tbl.Len() {
			t.Errorf("%s: %d entries, want %d", p.Name, len(p.Entries), tbl.Len())
		}
	}
}

func TestBuildSocietyMatrixDuplicateLabel(t *testing.T) {
	tbl := sheet.NewTable([]string{"Label", "A"}, nil,
		[]string{"Deed", "http://old"},
		[]string{"PAN", "x"},
		[]string{"Deed", "http://new"},
	)
	m := BuildSocietyMatrix(tbl)
	want := []Entry{
		{Label: "Deed", Cell: sheet.NewCell("http://new")},
		{Label: "PAN", Cell: sheet.NewCell("x")},
	}
	if diff := cmp.Diff(want, m.Entities[0].Entries); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildSocietyMatrixMissingColumnIsEmpty(t *testing.T) {
	tbl := decode(t, `[
		{"Label":"Deed","A":"http://a","B":"http://b"},
		{"Label":"PAN","A":"http://a2"}
	]`)
	got, ok := BuildSocietyMatrix(tbl).Lookup("B", "PAN")
	if !ok || !got.IsEmpty() {
		t.Errorf("Lookup(B, PAN) = %v, %v; want empty entry", got, ok)
	}
}

func TestBuildSessionGroups(t *testing.T) {
	got := BuildSessionGroups(sessionFixture(t))
	want := []SessionGroup{
		{Year: "2023", Documents: []Document{{Name: "Form A", Link: "http://a"}}},
		{Year: "2024", Documents: []Document{{Name: "Form B", Link: "http://b"}}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("groups mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildSessionGroupsLinkFilter(t *testing.T) {
	tbl := decode(t, `[
		{"Item":"Calendar","2022":"https://a/cal","2023":"HTTP://upper","2024":"see office"},
		{"Item":"Fees","2022":"","2023":"http://b/fees","2024":"ftp://old"},
		{"Item":"Circular","2022":"http://c","2023":" http://space","2024":"https://d"}
	]`)
	groups := BuildSessionGroups(tbl)
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	wantCounts := map[string]int{"2022": 2, "2023": 1, "2024": 1}
	for _, g := range groups {
		if len(g.Documents) != wantCounts[g.Year] {
			t.Errorf("%s: %d documents, want %d", g.Year, len(g.Documents), wantCounts[g.Year])
		}
		if len(g.Documents) > tbl.Len() {
			t.Errorf("%s: more documents than rows", g.Year)
		}
		for _, d := range g.Documents {
			if !strings.HasPrefix(d.Link, "http") {
				t.Errorf("%s: kept non-link %q", g.Year, d.Link)
			}
		}
	}
}

func TestReservedColumnFirst(t *testing.T) {
	tbl := decode(t, `[
		{"rowNumber":2,"Document":"Form A","2023":"http://a","2024":"pending"},
		{"rowNumber":3,"Document":"Form B","2023":"","2024":"http://b"}
	]`)

	groups := BuildSessionGroups(tbl)
	wantGroups := []SessionGroup{
		{Year: "2023", Documents: []Document{{Name: "Form A", Link: "http://a"}}},
		{Year: "2024", Documents: []Document{{Name: "Form B", Link: "http://b"}}},
	}
	if diff := cmp.Diff(wantGroups, groups); diff != "" {
		t.Errorf("groups mismatch (-want +got):\n%s", diff)
	}

	m := BuildSocietyMatrix(tbl)
	if diff := cmp.Diff([]string{"2023", "2024"}, m.Names()); diff != "" {
		t.Errorf("entity mismatch (-want +got):\n%s", diff)
	}
	for _, e := range m.Entities {
		for _, en := range e.Entries {
			if en.Label != "Form A" && en.Label != "Form B" {
				t.Errorf("%s: unexpected entry label %q", e.Name, en.Label)
			}
		}
	}
}

func TestEmptyTable(t *testing.T) {
	tbl := decode(t, `[]`)

	m := BuildSocietyMatrix(tbl)
	if m.Len() != 0 {
		t.Errorf("matrix: expected empty, got %d entities", m.Len())
	}
	groups := BuildSessionGroups(tbl)
	if groups == nil || len(groups) != 0 {
		t.Errorf("groups: expected empty non-nil slice, got %#v", groups)
	}
	if Passthrough(tbl).Len() != 0 {
		t.Error("passthrough: expected empty table")
	}
}

func TestDeterminism(t *testing.T) {
	tbl := societyFixture(t)
	if diff := cmp.Diff(BuildSocietyMatrix(tbl), BuildSocietyMatrix(tbl)); diff != "" {
		t.Errorf("matrix differs between calls:\n%s", diff)
	}
	// A separately decoded copy of the same value must give the same result.
	if diff := cmp.Diff(BuildSocietyMatrix(tbl), BuildSocietyMatrix(societyFixture(t))); diff != "" {
		t.Errorf("matrix differs between equal tables:\n%s", diff)
	}
	sess := sessionFixture(t)
	if diff := cmp.Diff(BuildSessionGroups(sess), BuildSessionGroups(sess)); diff != "" {
		t.Errorf("groups differ between calls:\n%s", diff)
	}
}

func TestPassthroughIsIdentity(t *testing.T) {
	tbl := societyFixture(t)
	if diff := cmp.Diff(tbl, Passthrough(tbl)); diff != "" {
		t.Errorf("passthrough changed the table:\n%s", diff)
	}
}

func TestReshapeRegistry(t *testing.T) {
	tbl := sessionFixture(t)
	tests := []struct {
		kind Kind
		len  int
	}{
		{KindSociety, 2},
		{KindSessions, 2},
		{KindTable, 2},
	}
	for _, tt := range tests {
		v, err := Reshape(tt.kind, tbl)
		if err != nil {
			t.Fatalf("Reshape(%s): %v", tt.kind, err)
		}
		if v.Kind != tt.kind {
			t.Errorf("Reshape(%s).Kind = %s", tt.kind, v.Kind)
		}
		if v.Len() != tt.len {
			t.Errorf("Reshape(%s).Len() = %d, want %d", tt.kind, v.Len(), tt.len)
		}
	}

	if _, err := Reshape("chart", tbl); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("unknown kind: got %v", err)
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseKind(string(k))
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %q, %v", k, got, err)
		}
	}
	if _, err := ParseKind("Society"); err == nil {
		t.Error("ParseKind is case-sensitive; expected error")
	}
}
