// Package engine implements the match engines: exact-key, fuzzy-signature,
// and multi-key fallback, tried in that order per candidate record until one
// yields a decision. Engines are stateless functions of the two normalized
// record sets; the position-side index is built once and read-only.
package engine

import (
	"github.com/tablematch/tablematch/pkg/records"
)

// Method identifies which engine produced a match candidate.
type Method string

const (
	// MethodExact is a primary-key hash probe with score 1.0.
	MethodExact Method = "exact"
	// MethodFuzzy is a signature-similarity pairing carrying its score.
	MethodFuzzy Method = "fuzzy"
	// MethodMultiKey is an extended-key probe with score 1.0.
	MethodMultiKey Method = "multikey"
)

// String returns the string representation of a method.
func (m Method) String() string {
	return string(m)
}

// Candidate is a proposed pairing between a position record and a candidate
// record, produced before conflict resolution. Multiple candidates may
// reference the same record; the resolver arbitrates.
type Candidate struct {
	Position  *records.Record
	Candidate *records.Record
	Score     float64
	Method    Method
}
