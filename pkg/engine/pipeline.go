package engine

import (
	"github.com/tablematch/tablematch/pkg/keys"
	"github.com/tablematch/tablematch/pkg/records"
)

// Pipeline runs the engines in their fixed fallback order for each candidate
// record: exact, then fuzzy, then multi-key. Duplicate-key exclusion applies
// to the position side only; several candidate records sharing one key is
// ordinary one-to-many fan-in, each probes independently and the resolver
// arbitrates the contention.
//
// A Pipeline holds no per-call mutable state and is safe for concurrent use
// across partition workers.
type Pipeline struct {
	builder  *keys.Builder
	exact    Engine
	fuzzy    Engine
	multikey Engine
	candDups map[keys.MatchKey][]*records.Record
}

// NewPipeline wires the three engines over a shared position index. Colliding
// candidate-side keys are counted for run metadata but do not change routing.
func NewPipeline(b *keys.Builder, idx *PositionIndex, candidates []*records.Record, fuzzyThreshold float64) *Pipeline {
	return &Pipeline{
		builder:  b,
		exact:    NewExactEngine(b, idx),
		fuzzy:    NewFuzzyEngine(b, idx, fuzzyThreshold),
		multikey: NewMultiKeyEngine(b, idx),
		candDups: Duplicates(Detect(b, candidates)),
	}
}

// Match produces the pairing proposals for one candidate record. An empty
// result leaves the record undecided; the resolver will classify it as
// unmatched.
func (p *Pipeline) Match(rec *records.Record) []Candidate {
	if out := p.exact.Match(rec); len(out) > 0 {
		return out
	}
	if out := p.fuzzy.Match(rec); len(out) > 0 {
		return out
	}
	return p.multikey.Match(rec)
}

// CandidateDuplicateKeyCount reports how many primary keys collide within
// the candidate table. Fan-in like this is a data-quality signal worth
// surfacing, not a routing decision.
func (p *Pipeline) CandidateDuplicateKeyCount() int {
	return len(p.candDups)
}
