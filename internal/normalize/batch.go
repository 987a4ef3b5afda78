package normalize

import "github.com/sells-group/property-cli/internal/model"

// BatchItem is the outcome for one raw record of a batch. Exactly one of
// Result and Err is set.
type BatchItem struct {
	Index  int
	Result *Result
	Err    *ValidationError
}

// BatchReport summarizes a batch. Failures never abort the batch.
type BatchReport struct {
	Items    []BatchItem
	Accepted int
	Rejected int
}

// Records returns the accepted records in input order.
func (r *BatchReport) Records() []model.PropertyRecord {
	out := make([]model.PropertyRecord, 0, r.Accepted)
	for _, it := range r.Items {
		if it.Result != nil {
			out = append(out, it.Result.Record)
		}
	}
	return out
}

// Failures returns the rejected records' errors in input order.
func (r *BatchReport) Failures() []*ValidationError {
	var out []*ValidationError
	for _, it := range r.Items {
		if it.Err != nil {
			out = append(out, it.Err)
		}
	}
	return out
}

// NormalizeBatch normalizes raws with the default Normalizer.
func NormalizeBatch(raws []model.RawProperty) *BatchReport {
	return defaultNormalizer.NormalizeBatch(raws)
}

// NormalizeBatch normalizes every raw record. A record whose id repeats an
// earlier accepted record of the same batch is rejected.
func (n *Normalizer) NormalizeBatch(raws []model.RawProperty) *BatchReport {
	report := &BatchReport{Items: make([]BatchItem, 0, len(raws))}
	seen := make(map[string]bool, len(raws))

	for i, raw := range raws {
		item := BatchItem{Index: i}
		res, err := n.Normalize(raw)
		switch {
		case err != nil:
			item.Err = err.(*ValidationError)
		case seen[res.Record.ID]:
			verr := &ValidationError{ID: res.Record.ID, Row: raw.Row}
			verr.add("id", "duplicate id")
			item.Err = verr
		default:
			seen[res.Record.ID] = true
			item.Result = res
		}
		if item.Err != nil {
			report.Rejected++
		} else {
			report.Accepted++
		}
		report.Items = append(report.Items, item)
	}
	return report
}
