package keys

import (
	"strings"

	"github.com/tablematch/tablematch/pkg/errors"
	"github.com/tablematch/tablematch/pkg/records"
	"github.com/tablematch/tablematch/pkg/schema"
)

// componentSep joins key components. The unit separator does not occur in
// normal cell text, so joined keys do not collide across component
// boundaries.
const componentSep = "\x1f"

// MatchKey is an ordered tuple of normalized key components in joined form.
// Two keys are exact-equal iff all normalized components are identical.
type MatchKey string

// Zero reports whether every component of the key was null or empty. Zero
// keys never participate in exact matching.
func (k MatchKey) Zero() bool {
	return strings.Trim(string(k), componentSep) == ""
}

// Builder derives keys and signatures for one validated mapping.
type Builder struct {
	mapping  *schema.Mapping
	primary  []string
	extended []string
	sigField []string
}

// NewBuilder constructs a key builder. It re-checks the key, fallback, and
// signature declarations against the canonical schema: a dangling reference
// here is a configuration-level violation, not a data-quality condition.
func NewBuilder(m *schema.Mapping) (*Builder, error) {
	for role, fields := range map[string][]string{
		"key":          m.Keys,
		"fallback_key": m.FallbackKeys,
		"signature":    m.Signature,
	} {
		for _, name := range fields {
			if _, ok := m.Field(name); !ok {
				return nil, &errors.KeyFieldError{Field: name, Role: role}
			}
		}
	}
	return &Builder{
		mapping:  m,
		primary:  m.Keys,
		extended: m.ExtendedKeys(),
		sigField: m.Signature,
	}, nil
}

// Key derives the primary match key for a record.
func (b *Builder) Key(rec *records.Record) MatchKey {
	return b.derive(rec, b.primary)
}

// ExtendedKey derives the fallback key: the primary components followed by
// the declared secondary discriminators.
func (b *Builder) ExtendedKey(rec *records.Record) MatchKey {
	return b.derive(rec, b.extended)
}

// derive builds a key from the named fields. Null values contribute empty
// components so keys stay positionally comparable.
func (b *Builder) derive(rec *records.Record, fields []string) MatchKey {
	parts := make([]string, len(fields))
	for i, name := range fields {
		v := rec.Value(name)
		if v.Null {
			continue
		}
		part := Normalize(v.Raw)
		if f, ok := b.mapping.Field(name); ok && f.NumericFold {
			part = foldNumeric(part)
		}
		parts[i] = part
	}
	return MatchKey(strings.Join(parts, componentSep))
}
