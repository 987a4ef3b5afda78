package ingest

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/property-cli/internal/model"
)

// ReadCSV reads a CSV listing file with a header row.
func ReadCSV(r io.Reader) ([]model.RawProperty, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // allow ragged rows
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "ingest: read csv")
	}
	return FromRows(rows)
}

// ReadXLSX reads the named sheet of a workbook, or the first sheet when
// sheet is empty.
func ReadXLSX(path, sheet string) ([]model.RawProperty, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: open xlsx")
	}

	sh, err := getSheet(f, sheet)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(sh.Rows))
	for _, row := range sh.Rows {
		rows = append(rows, rowToStrings(row))
	}
	return FromRows(rows)
}

// ReadJSON reads a JSON array of raw listings. Values may be strings,
// numbers or null.
func ReadJSON(r io.Reader) ([]model.RawProperty, error) {
	var raws []model.RawProperty
	if err := json.NewDecoder(r).Decode(&raws); err != nil {
		return nil, eris.Wrap(err, "ingest: decode json")
	}
	for i := range raws {
		raws[i].Row = i + 1
	}
	return raws, nil
}

// ReadFile dispatches on the file extension: .csv, .xlsx or .json.
func ReadFile(path string) ([]model.RawProperty, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx":
		return ReadXLSX(path, "")
	case ".csv", ".json":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "ingest: open %s", path)
		}
		defer f.Close() //nolint:errcheck
		if ext == ".json" {
			return ReadJSON(f)
		}
		return ReadCSV(f)
	default:
		return nil, eris.Errorf("ingest: unsupported file type %q", ext)
	}
}

func getSheet(f *xlsx.File, name string) (*xlsx.Sheet, error) {
	if name != "" {
		sheet, ok := f.Sheet[name]
		if !ok {
			return nil, eris.Errorf("ingest: sheet %q not found", name)
		}
		return sheet, nil
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("ingest: workbook has no sheets")
	}
	return f.Sheets[0], nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
