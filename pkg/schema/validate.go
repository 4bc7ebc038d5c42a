package schema

import (
	"sort"

	"github.com/tablematch/tablematch/pkg/errors"
)

// Validate checks the mapping for configuration errors and fills threshold
// defaults. It must pass before any row is processed; every failure here is
// fatal and non-retryable without fixing the mapping.
func (m *Mapping) Validate() error {
	if len(m.Fields) == 0 {
		return &errors.ValidationError{Field: "fields", Message: "at least one canonical field must be declared"}
	}

	declared := make(map[string]bool, len(m.Fields))
	for _, f := range m.Fields {
		if f.Name == "" {
			return &errors.ValidationError{Field: "fields", Message: "canonical field name cannot be empty"}
		}
		if declared[f.Name] {
			return &errors.ValidationError{Field: "fields", Message: "canonical field " + f.Name + " declared more than once"}
		}
		declared[f.Name] = true
	}

	if len(m.Keys) == 0 {
		return &errors.ValidationError{Field: "keys", Message: "at least one key field must be declared"}
	}
	for _, name := range m.Keys {
		if !declared[name] {
			return &errors.KeyFieldError{Field: name, Role: "key"}
		}
	}
	for _, name := range m.FallbackKeys {
		if !declared[name] {
			return &errors.KeyFieldError{Field: name, Role: "fallback_key"}
		}
	}
	for _, name := range m.Signature {
		if !declared[name] {
			return &errors.KeyFieldError{Field: name, Role: "signature"}
		}
	}

	for _, role := range []TableRole{RolePosition, RoleCandidate} {
		if err := m.validateTable(role, declared); err != nil {
			return err
		}
	}

	m.Thresholds.normalize()
	if m.Thresholds.Fuzzy <= 0 || m.Thresholds.Fuzzy > 1 {
		return &errors.ValidationError{Field: "thresholds.fuzzy", Message: "must be in (0, 1]"}
	}
	if m.Thresholds.TieEpsilon < 0 || m.Thresholds.TieEpsilon >= 1 {
		return &errors.ValidationError{Field: "thresholds.tie_epsilon", Message: "must be in [0, 1)"}
	}

	return nil
}

// validateTable checks one table's column bindings: bound fields must be
// declared, required and key-bearing fields must be bound, and no source
// column may serve two canonical fields.
func (m *Mapping) validateTable(role TableRole, declared map[string]bool) error {
	columns := m.Columns(role)

	for name := range columns {
		if !declared[name] {
			return &errors.ValidationError{
				Field:   string(role),
				Message: "binding references undeclared canonical field " + name,
			}
		}
	}

	// A required field or any field feeding a key or signature must have a
	// source column in both tables.
	needed := make(map[string]bool)
	for _, f := range m.Fields {
		if f.Required {
			needed[f.Name] = true
		}
	}
	for _, name := range m.ExtendedKeys() {
		needed[name] = true
	}
	for _, name := range m.Signature {
		needed[name] = true
	}
	for name := range needed {
		if columns[name] == "" {
			return &errors.MissingColumnError{Table: string(role), Field: name}
		}
	}

	// Detect one source column claimed by multiple canonical fields.
	bySource := make(map[string][]string)
	for name, column := range columns {
		bySource[column] = append(bySource[column], name)
	}
	for column, fields := range bySource {
		if len(fields) > 1 {
			sort.Strings(fields)
			return &errors.AmbiguousMappingError{Table: string(role), Column: column, Fields: fields}
		}
	}

	return nil
}

// normalize fills unset thresholds with their defaults.
func (t *Thresholds) normalize() {
	if t.Fuzzy == 0 {
		t.Fuzzy = DefaultFuzzyThreshold
	}
	if t.TieEpsilon == 0 {
		t.TieEpsilon = DefaultTieEpsilon
	}
}
