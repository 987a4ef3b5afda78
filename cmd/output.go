package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/property-cli/internal/export"
	"github.com/sells-group/property-cli/internal/model"
	"github.com/sells-group/property-cli/internal/normalize"
	"github.com/sells-group/property-cli/internal/pipeline"
	"github.com/sells-group/property-cli/internal/portfolio"
	"github.com/sells-group/property-cli/internal/ranking"
)

// openOutput returns def when path is empty.
func openOutput(def io.Writer, path string) (io.Writer, func(), error) {
	if path == "" {
		return def, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "create output file %s", path)
	}
	return f, func() { _ = f.Close() }, nil
}

func writeRanking(w io.Writer, res *pipeline.Results, k int, format string) error {
	ranked := res.Ranked
	if k > 0 {
		ranked = ranking.TopN(ranked, k)
	}

	switch format {
	case "csv":
		return export.WriteCSV(w, ranked, res.Records)
	case "table":
		return writeTable(w, res, ranked)
	default:
		return eris.Errorf("unsupported format %q", format)
	}
}

func writeTable(w io.Writer, res *pipeline.Results, ranked []model.ScoredProperty) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tID\tADDRESS\tPRICE\tTYPE\tBEDS\tCOMMUTE\tSCORE\tBAND\tFLAGS")
	for i, sp := range ranked {
		rec, _ := res.Record(sp.PropertyID)
		commute := "-"
		if rec.CommuteMinutes != nil {
			commute = fmt.Sprintf("%.0f min", *rec.CommuteMinutes)
		}
		flags := make([]string, len(sp.Flags))
		for j, f := range sp.Flags {
			flags[j] = string(f)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t£%s\t%s\t%d\t%s\t%.2f\t%s\t%s\n",
			i+1, rec.ID, truncate(rec.Address, 40), formatMoney(rec.Price),
			rec.PropertyType, rec.Bedrooms, commute, sp.CompositeScore, sp.Band,
			strings.Join(flags, ","))
	}
	if err := tw.Flush(); err != nil {
		return eris.Wrap(err, "write table")
	}
	return nil
}

func printSummary(w io.Writer, s portfolio.Summary) {
	if s.Count == 0 {
		fmt.Fprintln(w, "No properties.")
		return
	}
	fmt.Fprintf(w, "\n--- Summary ---\n")
	fmt.Fprintf(w, "Properties:    %d (%d priority)\n", s.Count, s.PriorityCount)
	fmt.Fprintf(w, "Price range:   £%s - £%s (median £%s)\n",
		formatMoney(int64(s.Price.Min)), formatMoney(int64(s.Price.Max)), formatMoney(int64(s.Price.Median)))
	fmt.Fprintf(w, "Score range:   %.2f - %.2f\n", s.CompositeScore.Min, s.CompositeScore.Max)
	fmt.Fprintf(w, "Average score: %.2f\n", s.CompositeScore.Mean)
}

func printFailures(w io.Writer, failures []*normalize.ValidationError) {
	for _, f := range failures {
		fmt.Fprintf(w, "rejected: %v\n", f)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

var gbPrinter = message.NewPrinter(language.BritishEnglish)

// formatMoney renders v with thousands separators.
func formatMoney(v int64) string {
	return gbPrinter.Sprintf("%d", v)
}
