package normalize

import (
	"fmt"
	"strings"
)

// FieldError describes one offending field of a raw record.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationError collects every field failure of a single record. The
// record is excluded from scoring; the rest of a batch proceeds.
type ValidationError struct {
	ID     string       `json:"id,omitempty"`
	Row    int          `json:"row,omitempty"`
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Error()
	}
	var where string
	switch {
	case e.Row > 0 && e.ID != "":
		where = fmt.Sprintf(" (row %d, id %s)", e.Row, e.ID)
	case e.Row > 0:
		where = fmt.Sprintf(" (row %d)", e.Row)
	case e.ID != "":
		where = fmt.Sprintf(" (id %s)", e.ID)
	}
	return "normalize: invalid record" + where + ": " + strings.Join(parts, "; ")
}

// Has reports whether field is among the failures.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

func (e *ValidationError) add(field, msg string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: msg})
}

// Warning is a non-fatal finding; the record stays usable for scoring.
type Warning struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	return w.Field + ": " + w.Message
}
