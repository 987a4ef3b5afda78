package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/property-cli/internal/model"
)

func createTestXLSX(t *testing.T, sheets map[string][][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	for name, rows := range sheets {
		sheet, err := f.AddSheet(name)
		require.NoError(t, err)
		for _, rowData := range rows {
			row := sheet.AddRow()
			for _, cellData := range rowData {
				cell := row.AddCell()
				cell.SetString(cellData)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "test.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestFromRows_Aliases(t *testing.T) {
	rows := [][]string{
		{"Property ID", "URL", "Address", "Price", "Property Type", "Beds", "Commute Time", "Grammar School Distance", "Nearest School Ofsted", "Notes"},
		{"p1", "https://example.com/1", "1 Test St, London SE9 3JD", "£400,000", "House", "3", "35", "4.5", "Good", "ignored"},
	}
	raws, err := FromRows(rows)
	require.NoError(t, err)
	require.Len(t, raws, 1)

	r := raws[0]
	assert.Equal(t, "p1", r.ID.String())
	assert.Equal(t, "https://example.com/1", r.SourceURL.String())
	assert.Equal(t, "£400,000", r.Price.String())
	assert.Equal(t, "3", r.Bedrooms.String())
	assert.Equal(t, "35", r.CommuteMinutes.String())
	assert.Equal(t, "4.5", r.GrammarSchoolDistanceKM.String())
	assert.Equal(t, "Good", r.SchoolRating.String())
	assert.Equal(t, 2, r.Row)
	assert.True(t, r.Postcode.Missing())
}

func TestFromRows_MissingRequired(t *testing.T) {
	_, err := FromRows([][]string{{"address", "bedrooms"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required columns: price, property_type")

	_, err = FromRows(nil)
	assert.Error(t, err)
}

func TestFromRows_BlankAndRaggedRows(t *testing.T) {
	rows := [][]string{
		{"address", "price", "property_type", "borough"},
		{"1 A St", "300000", "Flat"},
		{"", " ", ""},
		{"2 B St", "", "House", "Camden"},
	}
	raws, err := FromRows(rows)
	require.NoError(t, err)
	require.Len(t, raws, 2)
	assert.True(t, raws[0].Borough.Missing())
	assert.Equal(t, 4, raws[1].Row)
	assert.True(t, raws[1].Price.Missing(), "blank cells stay absent")
	assert.Equal(t, "Camden", raws[1].Borough.String())
}

func TestReadCSV(t *testing.T) {
	in := "\ufeffaddress,price,property_type,bedrooms\n" +
		"\"1 Test St, London\",\"425,000\",Flat,2\n" +
		"\"2 Test St, London\",350000,House,studio\n"
	raws, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, raws, 2)
	assert.Equal(t, "1 Test St, London", raws[0].Address.String())
	assert.Equal(t, "425,000", raws[0].Price.String())
	assert.Equal(t, "studio", raws[1].Bedrooms.String())
}

func TestReadXLSX(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{
		"Listings": {
			{"address", "property_type", "price", "square_feet"},
			{"9 Well Hall Rd, SE9 3JD", "Semi-detached house", "395000", "1100"},
		},
	})

	raws, err := ReadXLSX(path, "")
	require.NoError(t, err)
	require.Len(t, raws, 1)
	assert.Equal(t, "Semi-detached house", raws[0].PropertyType.String())
	assert.Equal(t, "1100", raws[0].SquareFeet.String())

	raws, err = ReadXLSX(path, "Listings")
	require.NoError(t, err)
	assert.Len(t, raws, 1)

	_, err = ReadXLSX(path, "Missing")
	assert.Error(t, err)
}

func TestReadJSON(t *testing.T) {
	in := `[{"address": "1 A St", "price": 300000, "property_type": "Flat", "bedrooms": null}]`
	raws, err := ReadJSON(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, raws, 1)
	assert.Equal(t, "300000", raws[0].Price.String())
	assert.True(t, raws[0].Bedrooms.Missing())
	assert.Equal(t, 1, raws[0].Row)

	_, err = ReadJSON(strings.NewReader(`{"address": 1}`))
	assert.Error(t, err)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "listings.CSV")
	require.NoError(t, os.WriteFile(csvPath, []byte("address,price,property_type\n1 A St,1,Flat\n"), 0o644))
	raws, err := ReadFile(csvPath)
	require.NoError(t, err)
	assert.Len(t, raws, 1)

	jsonPath := filepath.Join(dir, "listings.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`[{"address":"1 A St"}]`), 0o644))
	raws, err = ReadFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, []model.RawProperty{{Address: model.Raw("1 A St"), Row: 1}}, raws)

	_, err = ReadFile(filepath.Join(dir, "listings.txt"))
	assert.Error(t, err)

	_, err = ReadFile(filepath.Join(dir, "absent.csv"))
	assert.Error(t, err)
}
