package export

import (
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"

	"github.com/sells-group/property-cli/internal/model"
)

// WriteCSV writes ranked properties, best first, with their records.
func WriteCSV(w io.Writer, ranked []model.ScoredProperty, records []model.PropertyRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns()); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}

	sps, recs := joined(ranked, records)
	for i := range sps {
		if err := cw.Write(row(i+1, sps[i], recs[i])); err != nil {
			return eris.Wrap(err, "export: write csv row")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush csv")
}
