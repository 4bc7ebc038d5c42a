package records

import (
	"strings"

	"github.com/tablematch/tablematch/pkg/errors"
	"github.com/tablematch/tablematch/pkg/schema"
)

// MapRows translates raw rows into canonical records for one table role.
// It is a pure transform: one record per input row, values looked up through
// the mapping, missing optional fields becoming null. It fails fast when a
// declared source column is absent from the input header set.
//
// An empty input produces an empty record set without touching the header
// check, so an empty table is never a configuration error.
func MapRows(rows []Row, m *schema.Mapping, role schema.TableRole) ([]*Record, error) {
	columns := m.Columns(role)

	if len(rows) > 0 {
		if err := checkHeaders(rows, columns, role); err != nil {
			return nil, err
		}
	}

	fieldNames := m.FieldNames()
	out := make([]*Record, len(rows))
	for i, row := range rows {
		fields := make(map[string]Value, len(fieldNames))
		for _, name := range fieldNames {
			column := columns[name]
			if column == "" {
				fields[name] = Value{Null: true}
				continue
			}
			cell, ok := row[column]
			cell = strings.TrimSpace(cell)
			if !ok || cell == "" {
				// Blank values are a data-quality condition, not an error;
				// the record simply cannot contribute this field to a key.
				fields[name] = Value{Null: true}
				continue
			}
			fields[name] = Value{Raw: cell}
		}
		out[i] = New(role, i, fields, row)
	}
	return out, nil
}

// checkHeaders verifies every declared source column appears in at least one
// row's header set.
func checkHeaders(rows []Row, columns map[string]string, role schema.TableRole) error {
	headers := make(map[string]bool)
	for _, row := range rows {
		for h := range row {
			headers[h] = true
		}
	}
	for field, column := range columns {
		if column == "" {
			continue
		}
		if !headers[column] {
			return &errors.MissingColumnError{Table: string(role), Field: field, Column: column}
		}
	}
	return nil
}
