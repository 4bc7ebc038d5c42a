package export

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/tablematch/tablematch/pkg/engine"
	"github.com/tablematch/tablematch/pkg/errors"
	"github.com/tablematch/tablematch/pkg/records"
	"github.com/tablematch/tablematch/pkg/report"
	"github.com/tablematch/tablematch/pkg/schema"
)

func sampleReport() *report.Report {
	return &report.Report{
		Results: []report.MatchResult{
			{
				CandidateIndex: 0,
				CandidateRaw:   records.Row{"Applied Code": "P1"},
				Disposition:    report.Matched,
				PositionIndex:  0,
				Method:         engine.MethodExact,
				Score:          1.0,
			},
			{
				CandidateIndex: 1,
				CandidateRaw:   records.Row{"Applied Code": "Z9", "Applied Title": "Nothing"},
				Disposition:    report.Unmatched,
				PositionIndex:  -1,
				Reason:         "no engine produced a pairing",
			},
			{
				CandidateIndex: 2,
				CandidateRaw:   records.Row{"Applied Code": "X1"},
				Disposition:    report.Ambiguous,
				PositionIndex:  -1,
				Method:         engine.MethodFuzzy,
				Score:          0.9,
				Tied: []report.TiedCandidate{
					{PositionIndex: 3, Score: 0.9, Method: engine.MethodFuzzy},
					{PositionIndex: 4, Score: 0.895, Method: engine.MethodFuzzy},
				},
			},
		},
		MatchedCount:   1,
		UnmatchedCount: 1,
		AmbiguousCount: 1,
		Metadata: report.Metadata{
			PositionRows:  5,
			CandidateRows: 3,
		},
	}
}

func sampleMapping() *schema.Mapping {
	return &schema.Mapping{
		Fields: []schema.Field{
			{Name: "code", Required: true},
			{Name: "title"},
		},
		Keys:      []string{"code"},
		Signature: []string{"title"},
		Position:  map[string]string{"code": "Position Code", "title": "Job Title"},
		Candidate: map[string]string{"code": "Applied Code", "title": "Applied Title"},
	}
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, WriteXLSX(sampleReport(), sampleMapping(), path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.ElementsMatch(t,
		[]string{SheetResults, SheetStatistics, SheetUnmatched, SheetMapping},
		f.GetSheetList())

	results, err := f.GetRows(SheetResults)
	require.NoError(t, err)
	require.Len(t, results, 4) // header plus one line per result
	assert.Equal(t, "Candidate Row", results[0][0])
	assert.Equal(t, "matched", results[1][1])
	assert.Equal(t, "unmatched", results[2][1])
	assert.Equal(t, "ambiguous", results[3][1])
	assert.Contains(t, results[3][6], "3 (0.900, fuzzy)")

	unmatched, err := f.GetRows(SheetUnmatched)
	require.NoError(t, err)
	require.Len(t, unmatched, 3) // header plus the two non-matched rows
	assert.Contains(t, unmatched[0], "Applied Code")
	assert.Contains(t, unmatched[1], "Z9")
	assert.Contains(t, unmatched[2], "X1")

	mapping, err := f.GetRows(SheetMapping)
	require.NoError(t, err)
	require.Len(t, mapping, 3)
	assert.Equal(t, "code", mapping[1][0])
	assert.Equal(t, "Position Code", mapping[1][1])
	assert.Equal(t, "Applied Code", mapping[1][2])
}

func TestWriteXLSXBadPath(t *testing.T) {
	err := WriteXLSX(sampleReport(), sampleMapping(), filepath.Join(t.TempDir(), "missing", "report.xlsx"))
	require.Error(t, err)

	var ee *errors.ExportError
	assert.ErrorAs(t, err, &ee)
}

func TestTiedList(t *testing.T) {
	assert.Empty(t, tiedList(nil))
	got := tiedList([]report.TiedCandidate{
		{PositionIndex: 1, Score: 0.91, Method: engine.MethodFuzzy},
		{PositionIndex: 2, Score: 0.905, Method: engine.MethodFuzzy},
	})
	assert.Equal(t, "1 (0.910, fuzzy); 2 (0.905, fuzzy)", got)
}
