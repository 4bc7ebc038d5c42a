// Package report defines the final reconciliation artifact: one disposition
// per candidate record plus run-level counts and metadata. The report is the
// only value that outlives the engine call.
package report

import (
	"fmt"
	"time"

	"github.com/tablematch/tablematch/pkg/engine"
	"github.com/tablematch/tablematch/pkg/records"
)

// Disposition classifies a candidate record's outcome.
type Disposition string

const (
	// Matched records are linked to exactly one position record.
	Matched Disposition = "matched"
	// Unmatched records found no usable pairing.
	Unmatched Disposition = "unmatched"
	// Ambiguous records had tied best pairings the resolver could not
	// safely disambiguate.
	Ambiguous Disposition = "ambiguous"
)

// TiedCandidate describes one of the pairings an ambiguous record tied on.
type TiedCandidate struct {
	PositionIndex int
	Score         float64
	Method        engine.Method
}

// MatchResult is the final disposition of one candidate record.
type MatchResult struct {
	// CandidateIndex is the original 0-based row index in the candidate table.
	CandidateIndex int

	// CandidateRaw preserves the original row for reporting.
	CandidateRaw records.Row

	Disposition Disposition

	// PositionIndex links the matched position row; -1 when not matched.
	PositionIndex int

	// PositionRaw preserves the matched position row; nil when not matched.
	PositionRaw records.Row

	// Method and Score describe the winning pairing when matched.
	Method engine.Method
	Score  float64

	// Reason explains an unmatched disposition.
	Reason string

	// Tied lists the competing pairings of an ambiguous disposition.
	Tied []TiedCandidate
}

// PartitionStatus annotates the outcome of one candidate-table partition.
type PartitionStatus struct {
	Partition int
	Start     int // first candidate row index
	End       int // one past the last candidate row index
	Completed bool
	Error     string // non-empty when the partition failed in isolation
}

// Statistics summarizes match quality over the result set.
type Statistics struct {
	// MatchRate is matched count over total candidate rows.
	MatchRate float64

	// AverageMatchedScore averages the winning scores of matched records.
	AverageMatchedScore float64

	// Confidence bands over matched scores.
	HighConfidence   int // score >= 0.9
	MediumConfidence int // 0.7 <= score < 0.9
	LowConfidence    int // score < 0.7
}

// Metadata describes the run that produced a report.
type Metadata struct {
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	PositionRows  int
	CandidateRows int

	// DuplicatePositionKeys and DuplicateCandidateKeys count colliding
	// primary keys per table.
	DuplicatePositionKeys  int
	DuplicateCandidateKeys int

	Workers int

	Stats Statistics
}

// Report is the immutable output of a reconciliation run.
type Report struct {
	// Results holds one entry per processed candidate record, ordered by
	// candidate row index.
	Results []MatchResult

	MatchedCount   int
	UnmatchedCount int
	AmbiguousCount int

	// Incomplete marks a run cut short by cancellation: the results present
	// are valid, but not every candidate row was processed.
	Incomplete bool

	// Partitions annotates per-partition outcomes, including isolated
	// failures that did not abort the run.
	Partitions []PartitionStatus

	Metadata Metadata
}

// Total returns the number of candidate records the report covers.
func (r *Report) Total() int {
	return r.MatchedCount + r.UnmatchedCount + r.AmbiguousCount
}

// IsComplete reports whether every candidate row received a disposition.
func (r *Report) IsComplete() bool {
	return !r.Incomplete
}

// Summary returns a human-readable one-line summary of the report.
func (r *Report) Summary() string {
	state := "completed"
	if r.Incomplete {
		state = "incomplete (canceled)"
	}
	return fmt.Sprintf("reconciliation %s: %d matched, %d unmatched, %d ambiguous of %d candidate rows in %s",
		state, r.MatchedCount, r.UnmatchedCount, r.AmbiguousCount, r.Total(), r.Metadata.Duration.Round(time.Millisecond))
}

// Finalize stamps the end time and duration.
func (r *Report) Finalize() {
	r.Metadata.EndTime = time.Now()
	r.Metadata.Duration = r.Metadata.EndTime.Sub(r.Metadata.StartTime)
}
