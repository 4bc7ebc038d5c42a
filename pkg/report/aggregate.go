package report

import (
	"sort"

	"github.com/tablematch/tablematch/pkg/errors"
)

// Aggregate partitions resolved outcomes into the final report and computes
// the summary statistics. It enforces the partition invariant for complete
// runs: exactly one result per candidate row, none omitted, none duplicated.
func Aggregate(results []MatchResult, meta Metadata, partitions []PartitionStatus, incomplete bool) (*Report, error) {
	sort.Slice(results, func(i, j int) bool {
		return results[i].CandidateIndex < results[j].CandidateIndex
	})

	rep := &Report{
		Results:    results,
		Incomplete: incomplete,
		Partitions: partitions,
		Metadata:   meta,
	}

	seen := make(map[int]bool, len(results))
	var scoreSum float64
	for _, res := range results {
		if seen[res.CandidateIndex] {
			return nil, &errors.ValidationError{
				Field:   "results",
				Message: "duplicate disposition for candidate row",
			}
		}
		seen[res.CandidateIndex] = true

		switch res.Disposition {
		case Matched:
			rep.MatchedCount++
			scoreSum += res.Score
			switch {
			case res.Score >= 0.9:
				rep.Metadata.Stats.HighConfidence++
			case res.Score >= 0.7:
				rep.Metadata.Stats.MediumConfidence++
			default:
				rep.Metadata.Stats.LowConfidence++
			}
		case Ambiguous:
			rep.AmbiguousCount++
		default:
			rep.UnmatchedCount++
		}
	}

	if !incomplete && rep.Total() != meta.CandidateRows {
		return nil, errors.ErrInvariantViolated
	}

	if meta.CandidateRows > 0 {
		rep.Metadata.Stats.MatchRate = float64(rep.MatchedCount) / float64(meta.CandidateRows)
	}
	if rep.MatchedCount > 0 {
		rep.Metadata.Stats.AverageMatchedScore = scoreSum / float64(rep.MatchedCount)
	}

	rep.Finalize()
	return rep, nil
}
