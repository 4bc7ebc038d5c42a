package engine

import (
	"github.com/tablematch/tablematch/pkg/keys"
	"github.com/tablematch/tablematch/pkg/records"
)

// posEntry pairs a position record with its precomputed signature so fuzzy
// scans never re-derive signatures inside the hot loop.
type posEntry struct {
	rec *records.Record
	sig keys.Signature
}

// PositionIndex is the position-side lookup structure shared by all workers.
// It is built once per run and read-only afterwards, so no locking is needed
// during matching.
type PositionIndex struct {
	builder *keys.Builder

	// exact maps primary key to the records carrying it, duplicates included.
	exact map[keys.MatchKey][]*records.Record

	// extended maps the fallback key over the full position set.
	extended map[keys.MatchKey][]*records.Record

	// buckets groups position signatures by their coarse discriminator.
	buckets map[string][]posEntry

	// duplicates holds primary-key groups of size > 1.
	duplicates map[keys.MatchKey][]*records.Record
}

// NewPositionIndex builds the exact and extended hash indexes and the fuzzy
// signature buckets over the position table. O(n) in the number of position
// rows.
func NewPositionIndex(b *keys.Builder, positions []*records.Record) *PositionIndex {
	idx := &PositionIndex{
		builder:  b,
		exact:    Detect(b, positions),
		extended: make(map[keys.MatchKey][]*records.Record),
		buckets:  make(map[string][]posEntry),
	}
	idx.duplicates = Duplicates(idx.exact)

	for _, rec := range positions {
		if ext := b.ExtendedKey(rec); !ext.Zero() {
			idx.extended[ext] = append(idx.extended[ext], rec)
		}
		if sig := b.Signature(rec); !sig.Empty() {
			idx.buckets[sig.Bucket] = append(idx.buckets[sig.Bucket], posEntry{rec: rec, sig: sig})
		}
	}
	return idx
}

// Lookup probes the primary index. dup reports a duplicate-key group, which
// exact matching must skip.
func (idx *PositionIndex) Lookup(key keys.MatchKey) (rec *records.Record, ok, dup bool) {
	group, found := idx.exact[key]
	if !found {
		return nil, false, false
	}
	if len(group) > 1 {
		return nil, false, true
	}
	return group[0], true, false
}

// LookupExtended probes the fallback index and returns the full group.
func (idx *PositionIndex) LookupExtended(key keys.MatchKey) []*records.Record {
	return idx.extended[key]
}

// Bucket returns the position signatures sharing a coarse discriminator.
func (idx *PositionIndex) Bucket(token string) []posEntry {
	return idx.buckets[token]
}

// DuplicateKeyCount reports how many primary keys collide on the position side.
func (idx *PositionIndex) DuplicateKeyCount() int {
	return len(idx.duplicates)
}
