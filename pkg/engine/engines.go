package engine

import (
	"github.com/tablematch/tablematch/pkg/keys"
	"github.com/tablematch/tablematch/pkg/records"
)

// Engine proposes pairings for a single candidate record. An empty result
// means the engine could not decide and the next engine in the pipeline
// runs. Engines never error on data quality; unmatched records surface as
// report dispositions, not failures.
type Engine interface {
	// Method returns the tag stamped on every candidate this engine emits.
	Method() Method

	// Match proposes pairings for one candidate-table record.
	Match(rec *records.Record) []Candidate
}

// ExactEngine probes the primary-key hash index. It emits at most one
// candidate per probe with score 1.0, and refuses to pair against a
// duplicate-key position group.
type ExactEngine struct {
	builder *keys.Builder
	index   *PositionIndex
}

// NewExactEngine returns the exact-key engine over a position index.
func NewExactEngine(b *keys.Builder, idx *PositionIndex) *ExactEngine {
	return &ExactEngine{builder: b, index: idx}
}

// Method returns MethodExact.
func (e *ExactEngine) Method() Method { return MethodExact }

// Match probes the primary index with the record's key.
func (e *ExactEngine) Match(rec *records.Record) []Candidate {
	key := e.builder.Key(rec)
	if key.Zero() {
		return nil
	}
	pos, ok, dup := e.index.Lookup(key)
	if dup || !ok {
		return nil
	}
	return []Candidate{{
		Position:  pos,
		Candidate: rec,
		Score:     1.0,
		Method:    MethodExact,
	}}
}

// FuzzyEngine compares the candidate's signature against position signatures
// in the same coarse bucket and emits every pairing at or above the
// similarity threshold. Ties and near-ties are surfaced, not resolved.
type FuzzyEngine struct {
	builder   *keys.Builder
	index     *PositionIndex
	threshold float64
}

// NewFuzzyEngine returns the fuzzy-signature engine with the given
// similarity threshold.
func NewFuzzyEngine(b *keys.Builder, idx *PositionIndex, threshold float64) *FuzzyEngine {
	return &FuzzyEngine{builder: b, index: idx, threshold: threshold}
}

// Method returns MethodFuzzy.
func (e *FuzzyEngine) Method() Method { return MethodFuzzy }

// Match scans the candidate's signature bucket.
func (e *FuzzyEngine) Match(rec *records.Record) []Candidate {
	sig := e.builder.Signature(rec)
	if sig.Empty() {
		return nil
	}
	var out []Candidate
	for _, entry := range e.index.Bucket(sig.Bucket) {
		score := keys.Similarity(sig, entry.sig)
		if score >= e.threshold {
			out = append(out, Candidate{
				Position:  entry.rec,
				Candidate: rec,
				Score:     score,
				Method:    MethodFuzzy,
			})
		}
	}
	return out
}

// MultiKeyEngine re-keys with the extended field set (primary key plus the
// declared secondary discriminators) and repeats exact matching. It handles
// duplicate-flagged records and records the fuzzy engine could not place.
// Multiple extended-key hits are all emitted with equal scores; the resolver
// classifies them as ambiguous.
type MultiKeyEngine struct {
	builder *keys.Builder
	index   *PositionIndex
}

// NewMultiKeyEngine returns the multi-key fallback engine.
func NewMultiKeyEngine(b *keys.Builder, idx *PositionIndex) *MultiKeyEngine {
	return &MultiKeyEngine{builder: b, index: idx}
}

// Method returns MethodMultiKey.
func (e *MultiKeyEngine) Method() Method { return MethodMultiKey }

// Match probes the extended index with the record's fallback key.
func (e *MultiKeyEngine) Match(rec *records.Record) []Candidate {
	key := e.builder.ExtendedKey(rec)
	if key.Zero() {
		return nil
	}
	group := e.index.LookupExtended(key)
	out := make([]Candidate, 0, len(group))
	for _, pos := range group {
		out = append(out, Candidate{
			Position:  pos,
			Candidate: rec,
			Score:     1.0,
			Method:    MethodMultiKey,
		})
	}
	return out
}
