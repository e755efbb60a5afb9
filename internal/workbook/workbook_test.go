package workbook

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/school1992-cyber/website/internal/sheet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func testSheets() []Sheet {
	reserved := []string{sheet.DefaultReserved}
	return []Sheet{
		{
			Name: "Society",
			Table: sheet.NewTable([]string{"rowNumber", "Document", "Alpha Trust"}, reserved,
				[]string{"2", "Registration", "https://drive.example.com/a"},
				[]string{"3", "PAN", ""},
			),
		},
		{
			Name: "CBSE & Zone",
			Table: sheet.NewTable([]string{"rowNumber", "Zone", "Letter"}, reserved,
				[]string{"2", "North", "https://drive.example.com/n"},
			),
		},
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portal.xlsx")
	require.NoError(t, Save(path, testSheets()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Society", "CBSE & Zone"}, f.GetSheetList())

	rows, err := f.GetRows("Society")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Document", "Alpha Trust"}, rows[0])
	assert.Equal(t, []string{"Registration", "https://drive.example.com/a"}, rows[1])
	assert.Equal(t, []string{"PAN"}, rows[2])

	ok, link, err := f.GetCellHyperLink("Society", "B2")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://drive.example.com/a", link)

	ok, _, err = f.GetCellHyperLink("Society", "B3")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBuildEmpty(t *testing.T) {
	_, err := Build(nil)
	assert.ErrorIs(t, err, ErrNoSheets)
}

func TestBuildEmptyTable(t *testing.T) {
	f, err := Build([]Sheet{{Name: "Master", Table: sheet.Table{}}})
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Master"}, f.GetSheetList())
	rows, err := f.GetRows("Master")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestBuildKeepsSheet1Name(t *testing.T) {
	f, err := Build([]Sheet{{Name: "Sheet1", Table: sheet.Table{}}})
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Sheet1"}, f.GetSheetList())
}

func TestSheetName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Society", "Society"},
		{"CBSE & Zone", "CBSE & Zone"},
		{"a/b:c", "a-b-c"},
		{"  ", "Sheet"},
		{"'quoted'", "quoted"},
		{strings.Repeat("x", 40), strings.Repeat("x", 31)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SheetName(tt.in), "SheetName(%q)", tt.in)
	}
}

func TestUniqueName(t *testing.T) {
	used := map[string]bool{}
	assert.Equal(t, "Zone", uniqueName("Zone", used))
	assert.Equal(t, "Zone (2)", uniqueName("Zone", used))
	assert.Equal(t, "zone (3)", uniqueName("zone", used))

	long := strings.Repeat("y", 31)
	used = map[string]bool{}
	uniqueName(long, used)
	got := uniqueName(long, used)
	assert.Len(t, got, 31)
	assert.True(t, strings.HasSuffix(got, " (2)"))
}
