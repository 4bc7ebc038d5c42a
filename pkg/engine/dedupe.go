package engine

import (
	"github.com/tablematch/tablematch/pkg/keys"
	"github.com/tablematch/tablematch/pkg/records"
)

// Detect groups records sharing an exact primary key within one table.
// Records with zero keys (all key components null) are ignored; they cannot
// collide because they cannot match.
func Detect(b *keys.Builder, recs []*records.Record) map[keys.MatchKey][]*records.Record {
	groups := make(map[keys.MatchKey][]*records.Record)
	for _, rec := range recs {
		key := b.Key(rec)
		if key.Zero() {
			continue
		}
		groups[key] = append(groups[key], rec)
	}
	return groups
}

// Duplicates filters Detect output down to colliding groups. On the position
// side every member of a group of size > 1 is excluded from exact-key
// matching and left to the multi-key fallback engine, so a collision never
// silently picks an arbitrary row. On the candidate side the groups are
// reported as a run statistic only.
func Duplicates(groups map[keys.MatchKey][]*records.Record) map[keys.MatchKey][]*records.Record {
	dups := make(map[keys.MatchKey][]*records.Record)
	for key, group := range groups {
		if len(group) > 1 {
			dups[key] = group
		}
	}
	return dups
}
