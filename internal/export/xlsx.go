package export

import (
	"io"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/property-cli/internal/model"
	"github.com/sells-group/property-cli/internal/portfolio"
	"github.com/sells-group/property-cli/internal/scorer"
)

// Sheet names of the exported workbook.
const (
	SheetProperties    = "Properties"
	SheetSummary       = "Summary"
	SheetPropertyTypes = "Property Types"
	SheetBoroughs      = "Boroughs"
)

// Workbook builds the export workbook in memory.
func Workbook(ranked []model.ScoredProperty, records []model.PropertyRecord, summary portfolio.Summary) (*xlsx.File, error) {
	f := xlsx.NewFile()

	props, err := f.AddSheet(SheetProperties)
	if err != nil {
		return nil, eris.Wrap(err, "export: add properties sheet")
	}
	addRow(props, Columns()...)
	sps, recs := joined(ranked, records)
	for i := range sps {
		addRow(props, row(i+1, sps[i], recs[i])...)
	}

	sum, err := f.AddSheet(SheetSummary)
	if err != nil {
		return nil, eris.Wrap(err, "export: add summary sheet")
	}
	addRow(sum, "Metric", "Value")
	metric := func(name string, v float64) { addRow(sum, name, formatFloat(v, 2)) }
	metric("Total Properties", float64(summary.Count))
	metric("Average Price", summary.Price.Mean)
	metric("Median Price", summary.Price.Median)
	metric("Min Price", summary.Price.Min)
	metric("Max Price", summary.Price.Max)
	metric("Average Price per Sq Ft", summary.MeanPricePerSqFt)
	metric("Average Composite Score", summary.CompositeScore.Mean)
	metric("Median Composite Score", summary.CompositeScore.Median)
	metric("Priority Properties", float64(summary.PriorityCount))
	for _, band := range []string{scorer.BandStrong, scorer.BandFair, scorer.BandWeak} {
		metric("Band "+band, float64(summary.Bands[band]))
	}
	for _, cat := range model.Categories {
		metric("Average "+categoryLabel(cat)+" Points", summary.CategoryMeans[cat])
	}

	types, err := f.AddSheet(SheetPropertyTypes)
	if err != nil {
		return nil, eris.Wrap(err, "export: add property types sheet")
	}
	addRow(types, "Property Type", "Count")
	for _, t := range model.PropertyTypes {
		if n := summary.PropertyTypes[t]; n > 0 {
			addRow(types, t.String(), strconv.Itoa(n))
		}
	}

	boroughs, err := f.AddSheet(SheetBoroughs)
	if err != nil {
		return nil, eris.Wrap(err, "export: add boroughs sheet")
	}
	addRow(boroughs, "Borough", "Count", "Average Price", "Average Composite Score")
	for _, b := range summary.Boroughs {
		addRow(boroughs, b.Borough, strconv.Itoa(b.Count), formatFloat(b.MeanPrice, 2), formatFloat(b.MeanComposite, 2))
	}

	return f, nil
}

// WriteXLSX saves the export workbook to path.
func WriteXLSX(path string, ranked []model.ScoredProperty, records []model.PropertyRecord, summary portfolio.Summary) error {
	f, err := Workbook(ranked, records, summary)
	if err != nil {
		return err
	}
	return eris.Wrapf(f.Save(path), "export: save %s", path)
}

// WriteXLSXTo streams the export workbook to w.
func WriteXLSXTo(w io.Writer, ranked []model.ScoredProperty, records []model.PropertyRecord, summary portfolio.Summary) error {
	f, err := Workbook(ranked, records, summary)
	if err != nil {
		return err
	}
	return eris.Wrap(f.Write(w), "export: write xlsx")
}

func addRow(sheet *xlsx.Sheet, values ...string) {
	r := sheet.AddRow()
	for _, v := range values {
		r.AddCell().SetString(v)
	}
}
