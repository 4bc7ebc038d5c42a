// Package resolver converts many-candidate match graphs into a one-to-one
// assignment between position and candidate records. Resolution is a single
// sequential pass after all partitions report, and is deterministic: ranking
// is by score descending with the candidate row index as the documented
// tiebreak, so the outcome never depends on partition execution order.
package resolver

import (
	"sort"

	"github.com/tablematch/tablematch/pkg/engine"
	"github.com/tablematch/tablematch/pkg/records"
	"github.com/tablematch/tablematch/pkg/report"
)

// Unmatched reasons surfaced on the report.
const (
	// ReasonNoPairing marks records no engine could place.
	ReasonNoPairing = "no engine produced a pairing"

	// ReasonOutscored marks records that lost a position to a clearly
	// higher-scored competitor.
	ReasonOutscored = "outscored by a competing candidate for the same position"

	// ReasonEqualTiebreak marks records that lost an exact score tie on the
	// row-index tiebreak.
	ReasonEqualTiebreak = "position claimed by an equal-scored candidate at a lower row index"
)

// Resolver assigns pairings with global position uniqueness.
type Resolver struct {
	epsilon float64
}

// New creates a resolver with the given tie epsilon. Competing scores within
// epsilon of each other are ties the resolver refuses to break silently;
// exactly equal scores are broken deterministically by candidate row index.
func New(epsilon float64) *Resolver {
	return &Resolver{epsilon: epsilon}
}

// proposal is a candidate record's best pairing entering global resolution.
type proposal struct {
	rec  *records.Record
	pair engine.Candidate
}

// Resolve produces exactly one MatchResult per candidate record in cands.
// pairings may arrive in any order; only the documented sort determines the
// outcome.
func (r *Resolver) Resolve(cands []*records.Record, pairings []engine.Candidate) []report.MatchResult {
	byCandidate := make(map[int][]engine.Candidate)
	for _, p := range pairings {
		idx := p.Candidate.Index()
		byCandidate[idx] = append(byCandidate[idx], p)
	}

	results := make(map[int]*report.MatchResult, len(cands))
	var proposals []proposal

	for _, rec := range cands {
		own := byCandidate[rec.Index()]
		if len(own) == 0 {
			results[rec.Index()] = unmatched(rec, ReasonNoPairing)
			continue
		}

		sortPairings(own)

		// Two or more pairings to different positions with scores within
		// epsilon of the best cannot be safely disambiguated: there is no
		// documented tiebreak among positions.
		if len(own) > 1 && own[0].Score-own[1].Score <= r.epsilon {
			results[rec.Index()] = ambiguous(rec, tiedWithin(own, r.epsilon))
			continue
		}

		proposals = append(proposals, proposal{rec: rec, pair: own[0]})
	}

	r.assign(proposals, results)

	out := make([]report.MatchResult, 0, len(cands))
	for _, rec := range cands {
		out = append(out, *results[rec.Index()])
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CandidateIndex < out[j].CandidateIndex
	})
	return out
}

// assign runs the greedy maximum-score pass with global position
// uniqueness. A position claimed by a higher-ranked proposal cannot be
// reused; the conflicting lower-ranked proposal demotes to ambiguous when it
// ties the winner within epsilon, to unmatched otherwise. An exact score tie
// is broken by candidate row index, and the loser is unmatched rather than
// ambiguous because the tiebreak is deterministic.
func (r *Resolver) assign(proposals []proposal, results map[int]*report.MatchResult) {
	sort.Slice(proposals, func(i, j int) bool {
		a, b := proposals[i].pair, proposals[j].pair
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Candidate.Index() != b.Candidate.Index() {
			return a.Candidate.Index() < b.Candidate.Index()
		}
		return a.Position.Index() < b.Position.Index()
	})

	claimed := make(map[int]proposal) // position index -> winning proposal

	for _, p := range proposals {
		posIdx := p.pair.Position.Index()
		winner, taken := claimed[posIdx]
		if !taken {
			claimed[posIdx] = p
			results[p.rec.Index()] = matched(p.rec, p.pair)
			continue
		}

		gap := winner.pair.Score - p.pair.Score
		switch {
		case gap == 0:
			results[p.rec.Index()] = unmatched(p.rec, ReasonEqualTiebreak)
		case gap <= r.epsilon:
			// A near-tie the resolver cannot safely break: both sides of
			// the contention become ambiguous. The position stays claimed
			// so later proposals are judged against the same winner.
			tied := []report.TiedCandidate{tiedOf(winner.pair), tiedOf(p.pair)}
			demoteWinner(results, winner, tied)
			loserTied := make([]report.TiedCandidate, len(tied))
			copy(loserTied, tied)
			results[p.rec.Index()] = ambiguous(p.rec, loserTied)
		default:
			results[p.rec.Index()] = unmatched(p.rec, ReasonOutscored)
		}
	}
}

// demoteWinner rewrites an earlier tentative match as ambiguous, appending
// to its tied list if a prior contention already demoted it.
func demoteWinner(results map[int]*report.MatchResult, winner proposal, tied []report.TiedCandidate) {
	res := results[winner.rec.Index()]
	if res.Disposition == report.Ambiguous {
		res.Tied = append(res.Tied, tied[1])
		return
	}
	results[winner.rec.Index()] = ambiguous(winner.rec, tied)
}

// sortPairings orders one candidate's own pairings by score descending,
// breaking ties by position row index for determinism.
func sortPairings(pairings []engine.Candidate) {
	sort.Slice(pairings, func(i, j int) bool {
		if pairings[i].Score != pairings[j].Score {
			return pairings[i].Score > pairings[j].Score
		}
		return pairings[i].Position.Index() < pairings[j].Position.Index()
	})
}

// tiedWithin lists the pairings whose score is within epsilon of the best.
func tiedWithin(sorted []engine.Candidate, epsilon float64) []report.TiedCandidate {
	top := sorted[0].Score
	var tied []report.TiedCandidate
	for _, p := range sorted {
		if top-p.Score > epsilon {
			break
		}
		tied = append(tied, tiedOf(p))
	}
	return tied
}

func tiedOf(p engine.Candidate) report.TiedCandidate {
	return report.TiedCandidate{
		PositionIndex: p.Position.Index(),
		Score:         p.Score,
		Method:        p.Method,
	}
}

func matched(rec *records.Record, p engine.Candidate) *report.MatchResult {
	return &report.MatchResult{
		CandidateIndex: rec.Index(),
		CandidateRaw:   rec.Raw(),
		Disposition:    report.Matched,
		PositionIndex:  p.Position.Index(),
		PositionRaw:    p.Position.Raw(),
		Method:         p.Method,
		Score:          p.Score,
	}
}

func unmatched(rec *records.Record, reason string) *report.MatchResult {
	return &report.MatchResult{
		CandidateIndex: rec.Index(),
		CandidateRaw:   rec.Raw(),
		Disposition:    report.Unmatched,
		PositionIndex:  -1,
		Reason:         reason,
	}
}

func ambiguous(rec *records.Record, tied []report.TiedCandidate) *report.MatchResult {
	res := &report.MatchResult{
		CandidateIndex: rec.Index(),
		CandidateRaw:   rec.Raw(),
		Disposition:    report.Ambiguous,
		PositionIndex:  -1,
		Tied:           tied,
	}
	if len(tied) > 0 {
		res.Method = tied[0].Method
		res.Score = tied[0].Score
	}
	return res
}
