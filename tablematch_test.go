package tablematch

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablematch/tablematch/pkg/errors"
	"github.com/tablematch/tablematch/pkg/logging"
	"github.com/tablematch/tablematch/pkg/records"
	"github.com/tablematch/tablematch/pkg/report"
	"github.com/tablematch/tablematch/pkg/schema"
)

func testMapping(t testing.TB) *schema.Mapping {
	t.Helper()
	m := &schema.Mapping{
		Fields: []schema.Field{
			{Name: "code", Required: true},
			{Name: "department"},
			{Name: "title"},
		},
		Keys:         []string{"code"},
		FallbackKeys: []string{"department"},
		Signature:    []string{"title"},
		Position: map[string]string{
			"code":       "Position Code",
			"department": "Department",
			"title":      "Job Title",
		},
		Candidate: map[string]string{
			"code":       "Applied Code",
			"department": "Dept",
			"title":      "Applied Title",
		},
	}
	require.NoError(t, m.Validate())
	return m
}

func position(code, department, title string) records.Row {
	return records.Row{"Position Code": code, "Department": department, "Job Title": title}
}

func candidate(code, department, title string) records.Row {
	return records.Row{"Applied Code": code, "Dept": department, "Applied Title": title}
}

func TestMatchMixedDispositions(t *testing.T) {
	positions := []records.Row{
		position("P1", "Audit", "Budget Analyst"),
		position("P2", "Legal", "Staff Attorney"),
		position("P3", "Audit", ""),
		position("P3", "Fiscal", ""), // duplicate primary key
	}
	candidates := []records.Row{
		candidate("p1", "Audit", "Budget Analyst"),        // exact, despite case
		candidate("X1", "", "Staff Atorney"),              // fuzzy via typo'd title
		candidate("P3", "Fiscal", ""),                     // multikey through the dup group
		candidate("Z9", "Nowhere", "Chief Kazoo Officer"), // nothing fits
	}

	rep, err := Match(context.Background(), positions, candidates, testMapping(t))
	require.NoError(t, err)
	require.Len(t, rep.Results, 4)
	assert.True(t, rep.IsComplete())

	assert.Equal(t, report.Matched, rep.Results[0].Disposition)
	assert.Equal(t, 0, rep.Results[0].PositionIndex)
	assert.Equal(t, "exact", string(rep.Results[0].Method))

	assert.Equal(t, report.Matched, rep.Results[1].Disposition)
	assert.Equal(t, 1, rep.Results[1].PositionIndex)
	assert.Equal(t, "fuzzy", string(rep.Results[1].Method))
	assert.Less(t, rep.Results[1].Score, 1.0)

	assert.Equal(t, report.Matched, rep.Results[2].Disposition)
	assert.Equal(t, 3, rep.Results[2].PositionIndex)
	assert.Equal(t, "multikey", string(rep.Results[2].Method))

	assert.Equal(t, report.Unmatched, rep.Results[3].Disposition)
	assert.Equal(t, -1, rep.Results[3].PositionIndex)

	assert.Equal(t, 3, rep.MatchedCount)
	assert.Equal(t, 1, rep.UnmatchedCount)
	assert.Equal(t, 0, rep.AmbiguousCount)
	assert.Equal(t, 1, rep.Metadata.DuplicatePositionKeys)
}

func TestMatchEqualScoreFanIn(t *testing.T) {
	// Two candidate rows carry the same key: ordinary one-to-many fan-in,
	// both probe exact, and the lower row index wins the deterministic
	// tiebreak.
	positions := []records.Row{
		position("P1", "", "Budget Analyst"),
	}
	candidates := []records.Row{
		candidate("P1", "", ""),
		candidate("P1", "", ""),
	}

	rep, err := Match(context.Background(), positions, candidates, testMapping(t))
	require.NoError(t, err)
	require.Len(t, rep.Results, 2)

	assert.Equal(t, report.Matched, rep.Results[0].Disposition)
	assert.Equal(t, 0, rep.Results[0].PositionIndex)
	assert.Equal(t, "exact", string(rep.Results[0].Method))
	assert.Equal(t, 1.0, rep.Results[0].Score)
	assert.Equal(t, report.Unmatched, rep.Results[1].Disposition)
	assert.Contains(t, rep.Results[1].Reason, "lower row index")
	assert.Equal(t, 1, rep.Metadata.DuplicateCandidateKeys)
}

func TestMatchAmbiguousNearTie(t *testing.T) {
	// Two positions carry near-identical signatures; a candidate title close
	// to both scores within the tie epsilon and cannot be placed.
	positions := []records.Row{
		position("P1", "", "Senior Budget Analyst I"),
		position("P2", "", "Senior Budget Analyst II"),
	}
	candidates := []records.Row{
		candidate("X1", "", "Senior Budget Analyst"),
	}

	m := testMapping(t)
	m.Thresholds.Fuzzy = 0.7
	m.Thresholds.TieEpsilon = 0.05

	rep, err := Match(context.Background(), positions, candidates, m)
	require.NoError(t, err)
	require.Len(t, rep.Results, 1)

	res := rep.Results[0]
	assert.Equal(t, report.Ambiguous, res.Disposition)
	assert.Equal(t, -1, res.PositionIndex)
	require.Len(t, res.Tied, 2)
	assert.Equal(t, 1, rep.AmbiguousCount)
}

func TestMatchDeterministicAcrossWorkerCounts(t *testing.T) {
	var positions, candidates []records.Row
	for i := 0; i < 500; i++ {
		positions = append(positions, position(fmt.Sprintf("P%d", i), "Audit", fmt.Sprintf("Role %d alpha", i)))
	}
	for i := 0; i < 500; i++ {
		switch i % 3 {
		case 0:
			candidates = append(candidates, candidate(fmt.Sprintf("P%d", i), "Audit", ""))
		case 1:
			candidates = append(candidates, candidate("", "", fmt.Sprintf("Role %d alpha", i)))
		default:
			candidates = append(candidates, candidate(fmt.Sprintf("Q%d", i), "Other", "unplaceable"))
		}
	}

	m := testMapping(t)
	sequential, err := Match(context.Background(), positions, candidates, m,
		WithWorkers(1), WithLogger(&logging.Nop))
	require.NoError(t, err)

	parallel, err := Match(context.Background(), positions, candidates, m,
		WithWorkers(8), WithPartitionSize(16), WithLogger(&logging.Nop))
	require.NoError(t, err)

	assert.Equal(t, sequential.Results, parallel.Results)
	assert.Equal(t, sequential.MatchedCount, parallel.MatchedCount)
	assert.Equal(t, sequential.UnmatchedCount, parallel.UnmatchedCount)
	assert.Equal(t, sequential.AmbiguousCount, parallel.AmbiguousCount)
}

func TestMatchCanceledContext(t *testing.T) {
	var positions, candidates []records.Row
	for i := 0; i < 300; i++ {
		positions = append(positions, position(fmt.Sprintf("P%d", i), "", ""))
		candidates = append(candidates, candidate(fmt.Sprintf("P%d", i), "", ""))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep, err := Match(ctx, positions, candidates, testMapping(t),
		WithWorkers(2), WithPartitionSize(50))
	require.NoError(t, err, "cancellation yields a partial report, not an error")

	assert.True(t, rep.Incomplete)
	assert.False(t, rep.IsComplete())
	assert.Less(t, rep.Total(), len(candidates))
	require.NotEmpty(t, rep.Partitions)
	for _, p := range rep.Partitions {
		assert.False(t, p.Completed)
	}
}

func TestMatchMissingRequiredColumn(t *testing.T) {
	positions := []records.Row{{"Wrong Header": "P1"}}
	candidates := []records.Row{candidate("P1", "", "")}

	rep, err := Match(context.Background(), positions, candidates, testMapping(t))
	require.Error(t, err)
	assert.Nil(t, rep)
	assert.ErrorIs(t, err, errors.ErrMissingRequiredColumn)
}

func TestMatchNilMapping(t *testing.T) {
	_, err := Match(context.Background(), nil, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
}

func TestMatchEmptyCandidateTable(t *testing.T) {
	positions := []records.Row{position("P1", "", "Engineer")}

	rep, err := Match(context.Background(), positions, nil, testMapping(t))
	require.NoError(t, err)

	assert.Empty(t, rep.Results)
	assert.Zero(t, rep.Total())
	assert.True(t, rep.IsComplete())
	assert.Zero(t, rep.Metadata.Stats.MatchRate)
}

func TestMatchThresholdOverrides(t *testing.T) {
	positions := []records.Row{position("P1", "", "Software Engineer")}
	candidates := []records.Row{candidate("X1", "", "Software Enginere")}

	// At the strict threshold the typo misses; loosened, it matches.
	strict, err := Match(context.Background(), positions, candidates, testMapping(t),
		WithFuzzyThreshold(0.99))
	require.NoError(t, err)
	assert.Equal(t, 1, strict.UnmatchedCount)

	loose, err := Match(context.Background(), positions, candidates, testMapping(t),
		WithFuzzyThreshold(0.8))
	require.NoError(t, err)
	assert.Equal(t, 1, loose.MatchedCount)
}

func TestMatchOptionValidation(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"zero workers", WithWorkers(0)},
		{"zero partition size", WithPartitionSize(0)},
		{"fuzzy threshold above one", WithFuzzyThreshold(1.5)},
		{"negative tie epsilon", WithTieEpsilon(-0.1)},
		{"nil logger", WithLogger(nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Match(context.Background(), nil, nil, testMapping(t), tt.opt)
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrInvalidInput)
		})
	}
}

func TestMatchLogsRunProgress(t *testing.T) {
	logger := logging.NewTestLogger(t)
	positions := []records.Row{position("P1", "", "")}
	candidates := []records.Row{candidate("P1", "", "")}

	_, err := Match(context.Background(), positions, candidates, testMapping(t),
		WithLogger(logger.Logger))
	require.NoError(t, err)

	assert.True(t, logger.Contains("Starting reconciliation"))
	assert.True(t, logger.Contains("Reconciliation finished"))
	assert.GreaterOrEqual(t, len(logger.Lines()), 2)
}
