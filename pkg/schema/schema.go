// Package schema defines the column-mapping configuration that drives a
// reconciliation run: the canonical field set, the per-table bindings from
// source columns to canonical fields, the key/fallback/signature field
// declarations, and the tunable match thresholds.
package schema

// TableRole identifies which of the two input tables a row belongs to.
type TableRole string

const (
	// RolePosition is the reference table side of the reconciliation.
	RolePosition TableRole = "position"
	// RoleCandidate is the probing table side of the reconciliation.
	RoleCandidate TableRole = "candidate"
)

// String returns the string representation of a table role.
func (r TableRole) String() string {
	return string(r)
}

// Field declares one canonical field of the schema.
type Field struct {
	// Name is the canonical field name, independent of either table's
	// original header text.
	Name string `yaml:"name"`

	// Required fields must resolve to exactly one source column per table.
	// Optional fields may be unbound; their values become null.
	Required bool `yaml:"required"`

	// NumericFold folds numeric-looking values ("007", "7.0") to a single
	// canonical form before key comparison. Off by default so identifiers
	// compare as normalized strings without silent precision coercion.
	NumericFold bool `yaml:"numeric_fold"`
}

// Thresholds holds the tunable knobs of the fuzzy engine and the resolver.
type Thresholds struct {
	// Fuzzy is the minimum similarity for the fuzzy engine to emit a
	// match candidate.
	Fuzzy float64 `yaml:"fuzzy"`

	// TieEpsilon is the maximum score gap within which two competing match
	// candidates are considered tied and resolved as ambiguous.
	TieEpsilon float64 `yaml:"tie_epsilon"`
}

// Default threshold values. Both are exposed as configuration because
// acceptable false-positive and false-negative rates are domain-specific.
const (
	DefaultFuzzyThreshold = 0.85
	DefaultTieEpsilon     = 0.01
)

// Mapping is the full column-mapping configuration for one reconciliation
// run. It is validated once up front; matching never starts on an invalid
// mapping.
type Mapping struct {
	// Fields is the canonical schema, in declaration order.
	Fields []Field `yaml:"fields"`

	// Keys names the canonical fields whose values form the primary match
	// key, in key-component order.
	Keys []string `yaml:"keys"`

	// FallbackKeys names additional discriminating fields appended to the
	// primary key by the multi-key fallback engine.
	FallbackKeys []string `yaml:"fallback_keys"`

	// Signature names the fields that feed the fuzzy signature.
	Signature []string `yaml:"signature"`

	// Position binds canonical field name to source column for the
	// position table.
	Position map[string]string `yaml:"position"`

	// Candidate binds canonical field name to source column for the
	// candidate table.
	Candidate map[string]string `yaml:"candidate"`

	// Thresholds are the fuzzy and tie tuning knobs. Zero values are
	// replaced by defaults during validation.
	Thresholds Thresholds `yaml:"thresholds"`
}

// Columns returns the canonical-field to source-column binding for a table
// role. The returned map is the mapping's own; callers must not modify it.
func (m *Mapping) Columns(role TableRole) map[string]string {
	if role == RolePosition {
		return m.Position
	}
	return m.Candidate
}

// Field looks up a canonical field declaration by name.
func (m *Mapping) Field(name string) (Field, bool) {
	for _, f := range m.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// FieldNames returns all canonical field names in declaration order.
func (m *Mapping) FieldNames() []string {
	names := make([]string, len(m.Fields))
	for i, f := range m.Fields {
		names[i] = f.Name
	}
	return names
}

// ExtendedKeys returns the primary key fields followed by the fallback
// discriminators, preserving declaration order and dropping repeats.
func (m *Mapping) ExtendedKeys() []string {
	extended := make([]string, 0, len(m.Keys)+len(m.FallbackKeys))
	seen := make(map[string]bool, len(m.Keys)+len(m.FallbackKeys))
	for _, name := range m.Keys {
		if !seen[name] {
			extended = append(extended, name)
			seen[name] = true
		}
	}
	for _, name := range m.FallbackKeys {
		if !seen[name] {
			extended = append(extended, name)
			seen[name] = true
		}
	}
	return extended
}

// HasFallback reports whether the mapping declares fallback discriminators
// beyond the primary key.
func (m *Mapping) HasFallback() bool {
	return len(m.ExtendedKeys()) > len(m.Keys)
}
