// Package records holds the canonical in-memory representation of a table
// row. Records are constructed once per run from loaded rows and never
// mutated afterwards.
package records

import (
	"maps"

	"github.com/tablematch/tablematch/pkg/schema"
)

// Row is a raw input row as supplied by an external loader: a mapping of
// source column header to cell value.
type Row map[string]string

// Value is a single canonical cell value. Null is true when the source
// column was unbound, absent from the row, or blank after trimming.
type Value struct {
	Raw  string
	Null bool
}

// Record is one row of either input table translated into canonical fields.
// The raw row is preserved for reporting.
type Record struct {
	role   schema.TableRole
	index  int // original 0-based row index
	fields map[string]Value
	raw    Row
}

// New constructs a record. The fields and raw maps are captured as-is; the
// column mapper is the only intended constructor call site.
func New(role schema.TableRole, index int, fields map[string]Value, raw Row) *Record {
	return &Record{role: role, index: index, fields: fields, raw: raw}
}

// Role returns which table the record came from.
func (r *Record) Role() schema.TableRole {
	return r.role
}

// Index returns the record's original 0-based row index, stable for
// traceability.
func (r *Record) Index() int {
	return r.index
}

// Value returns the canonical field value. Unknown fields report null.
func (r *Record) Value(field string) Value {
	if v, ok := r.fields[field]; ok {
		return v
	}
	return Value{Null: true}
}

// Raw returns a copy of the original row for reporting.
func (r *Record) Raw() Row {
	return maps.Clone(r.raw)
}
