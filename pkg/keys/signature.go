package keys

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/tablematch/tablematch/pkg/records"
)

// Signature is a derived token-set fingerprint over the mapping's signature
// fields, used only when exact keys fail to decide a pairing.
type Signature struct {
	// Joined is the full normalized signature text.
	Joined string

	// Tokens are the sorted, de-duplicated normalized tokens.
	Tokens []string

	// Bucket is a cheap coarse discriminator (the first normalized token)
	// that keeps fuzzy comparison away from a full cross product.
	Bucket string
}

// Empty reports whether the signature carries no usable text.
func (s Signature) Empty() bool {
	return s.Joined == ""
}

// Signature derives the fuzzy signature for a record from the mapping's
// signature fields. Records without signature fields, or with only null
// values in them, produce an empty signature and are skipped by the fuzzy
// engine.
func (b *Builder) Signature(rec *records.Record) Signature {
	var parts []string
	for _, name := range b.sigField {
		v := rec.Value(name)
		if v.Null {
			continue
		}
		parts = append(parts, Normalize(v.Raw))
	}
	joined := strings.TrimSpace(strings.Join(parts, " "))
	if joined == "" {
		return Signature{}
	}

	fields := strings.Fields(joined)
	seen := make(map[string]bool, len(fields))
	tokens := make([]string, 0, len(fields))
	for _, tok := range fields {
		if !seen[tok] {
			tokens = append(tokens, tok)
			seen[tok] = true
		}
	}
	bucket := fields[0]
	sort.Strings(tokens)

	return Signature{Joined: joined, Tokens: tokens, Bucket: bucket}
}

// containmentScore is the floor score when one signature's text contains
// the other's.
const containmentScore = 0.8

// Similarity scores two signatures in [0, 1]. Identical normalized text
// scores 1.0; containment establishes a 0.8 floor; otherwise the score is
// the better of the Levenshtein ratio over the joined text and the Jaccard
// overlap of the token sets.
func Similarity(a, b Signature) float64 {
	if a.Empty() || b.Empty() {
		return 0
	}
	if a.Joined == b.Joined {
		return 1
	}

	var score float64
	if strings.Contains(a.Joined, b.Joined) || strings.Contains(b.Joined, a.Joined) {
		score = containmentScore
	}

	if r := levenshteinRatio(a.Joined, b.Joined); r > score {
		score = r
	}
	if j := jaccard(a.Tokens, b.Tokens); j > score {
		score = j
	}
	return score
}

// levenshteinRatio converts edit distance into a similarity in [0, 1].
func levenshteinRatio(a, b string) float64 {
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}

// jaccard computes token-set overlap for two sorted token slices.
func jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]bool, len(a))
	for _, tok := range a {
		set[tok] = true
	}
	shared := 0
	for _, tok := range b {
		if set[tok] {
			shared++
		}
	}
	union := len(a) + len(b) - shared
	if union == 0 {
		return 0
	}
	return float64(shared) / float64(union)
}
