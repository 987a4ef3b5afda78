package export

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/property-cli/internal/model"
	"github.com/sells-group/property-cli/internal/portfolio"
)

func fixture() ([]model.ScoredProperty, []model.PropertyRecord) {
	recs := []model.PropertyRecord{
		{
			ID: "a", Address: "1 A St", Postcode: "SE9 3JD", Borough: "Greenwich",
			Price: 400000, PropertyType: model.PropertyTypeHouse, Bedrooms: 3,
			SquareFeet: model.Float64(1000), OutdoorSpace: model.OutdoorGarden,
			SchoolRating: model.SchoolGood, CommuteMinutes: model.Float64(35),
		},
		{
			ID: "b", Address: "2 B St", Price: 300000, PropertyType: model.PropertyTypeFlat,
			Bedrooms: 1, OutdoorSpace: model.OutdoorNone, SchoolRating: model.SchoolUnknown,
		},
	}
	ranked := []model.ScoredProperty{
		{
			PropertyID: "a", CompositeScore: 81.5, Band: "strong", SettingsVersion: 3,
			Flags:          model.Flags{model.FlagWithinBudget, model.FlagAcceptableCommute},
			CategoryScores: map[model.Category]float64{model.CategoryPrice: 13.333333},
		},
		{PropertyID: "b", CompositeScore: 40, Band: "weak", SettingsVersion: 3, Flags: model.Flags{}},
		{PropertyID: "orphan", CompositeScore: 10},
	}
	return ranked, recs
}

func TestColumns(t *testing.T) {
	cols := Columns()
	assert.Equal(t, len(baseColumns)+len(model.Categories)+len(tailColumns), len(cols))
	assert.Contains(t, cols, "Property Type Points")
	assert.Contains(t, cols, "Grammar Bonus Points")
	assert.Equal(t, "Rank", cols[0])
}

func TestWriteCSV(t *testing.T) {
	ranked, recs := fixture()
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, ranked, recs))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus two joined rows")

	header := rows[0]
	col := func(row []string, name string) string {
		for i, h := range header {
			if h == name {
				return row[i]
			}
		}
		t.Fatalf("no column %q", name)
		return ""
	}

	a := rows[1]
	assert.Equal(t, "1", col(a, "Rank"))
	assert.Equal(t, "a", col(a, "Property ID"))
	assert.Equal(t, "400", col(a, "Price per Sq Ft"))
	assert.Equal(t, "35", col(a, "Commute Minutes"))
	assert.Equal(t, "", col(a, "Grammar School km"), "unresolved stays blank")
	assert.Equal(t, "13.33", col(a, "Price Points"))
	assert.Equal(t, "81.5", col(a, "Composite Score"))
	assert.Equal(t, "within_budget;acceptable_commute", col(a, "Flags"))
	assert.Equal(t, "3", col(a, "Settings Version"))

	b := rows[2]
	assert.Equal(t, "2", col(b, "Rank"))
	assert.Equal(t, "", col(b, "Price per Sq Ft"))
	assert.Equal(t, "0", col(b, "Price Points"))
	assert.Equal(t, "", col(b, "Flags"))
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil, nil))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestWriteXLSX(t *testing.T) {
	ranked, recs := fixture()
	summary := portfolio.Aggregate(recs, ranked)
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, WriteXLSX(path, ranked, recs, summary))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	for _, name := range []string{SheetProperties, SheetSummary, SheetPropertyTypes, SheetBoroughs} {
		require.Contains(t, f.Sheet, name)
	}

	props := f.Sheet[SheetProperties]
	require.Len(t, props.Rows, 3)
	assert.Equal(t, "a", props.Rows[1].Cells[1].String())

	sum := f.Sheet[SheetSummary]
	assert.Equal(t, "Total Properties", sum.Rows[1].Cells[0].String())
	assert.Equal(t, "2", sum.Rows[1].Cells[1].String())
	assert.Equal(t, "Average Price", sum.Rows[2].Cells[0].String())
	assert.Equal(t, "350000", sum.Rows[2].Cells[1].String())

	types := f.Sheet[SheetPropertyTypes]
	require.Len(t, types.Rows, 3)
	assert.Equal(t, "House", types.Rows[1].Cells[0].String())
	assert.Equal(t, "Flat", types.Rows[2].Cells[0].String())

	boroughs := f.Sheet[SheetBoroughs]
	require.Len(t, boroughs.Rows, 3)
	assert.Equal(t, "Greenwich", boroughs.Rows[1].Cells[0].String())
}

func TestWriteXLSXTo(t *testing.T) {
	ranked, recs := fixture()
	var buf bytes.Buffer
	require.NoError(t, WriteXLSXTo(&buf, ranked, recs, portfolio.Aggregate(recs, ranked)))

	f, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	assert.Len(t, f.Sheets, 4)
}
