// Package export renders a reconciliation report into an Excel workbook:
// a results sheet, a statistics sheet, an unmatched sheet, and the mapping
// that produced the run.
package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/tablematch/tablematch/pkg/errors"
	"github.com/tablematch/tablematch/pkg/report"
	"github.com/tablematch/tablematch/pkg/schema"
)

// Sheet names in the exported workbook.
const (
	SheetResults    = "Results"
	SheetStatistics = "Statistics"
	SheetUnmatched  = "Unmatched"
	SheetMapping    = "Mapping"
)

// WriteXLSX writes the report to an Excel workbook at path.
func WriteXLSX(rep *report.Report, m *schema.Mapping, path string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetResults); err != nil {
		return &errors.ExportError{Path: path, Err: err}
	}
	if err := writeResults(f, rep); err != nil {
		return &errors.ExportError{Path: path, Err: err}
	}
	if err := writeStatistics(f, rep); err != nil {
		return &errors.ExportError{Path: path, Err: err}
	}
	if err := writeUnmatched(f, rep); err != nil {
		return &errors.ExportError{Path: path, Err: err}
	}
	if err := writeMapping(f, m); err != nil {
		return &errors.ExportError{Path: path, Err: err}
	}

	if err := f.SaveAs(path); err != nil {
		return &errors.ExportError{Path: path, Err: err}
	}
	return nil
}

func writeResults(f *excelize.File, rep *report.Report) error {
	header := []any{"Candidate Row", "Disposition", "Position Row", "Method", "Score", "Reason", "Tied Positions"}
	if err := setRow(f, SheetResults, 1, header); err != nil {
		return err
	}
	for i, res := range rep.Results {
		posRow := any("")
		if res.Disposition == report.Matched {
			posRow = res.PositionIndex
		}
		row := []any{
			res.CandidateIndex,
			string(res.Disposition),
			posRow,
			res.Method.String(),
			res.Score,
			res.Reason,
			tiedList(res.Tied),
		}
		if err := setRow(f, SheetResults, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeStatistics(f *excelize.File, rep *report.Report) error {
	if _, err := f.NewSheet(SheetStatistics); err != nil {
		return err
	}
	stats := rep.Metadata.Stats
	rows := [][]any{
		{"Candidate Rows", rep.Metadata.CandidateRows},
		{"Position Rows", rep.Metadata.PositionRows},
		{"Matched", rep.MatchedCount},
		{"Unmatched", rep.UnmatchedCount},
		{"Ambiguous", rep.AmbiguousCount},
		{"Match Rate", stats.MatchRate},
		{"Average Matched Score", stats.AverageMatchedScore},
		{"High Confidence (>=0.9)", stats.HighConfidence},
		{"Medium Confidence (0.7-0.9)", stats.MediumConfidence},
		{"Low Confidence (<0.7)", stats.LowConfidence},
		{"Duplicate Position Keys", rep.Metadata.DuplicatePositionKeys},
		{"Duplicate Candidate Keys", rep.Metadata.DuplicateCandidateKeys},
		{"Incomplete", rep.Incomplete},
		{"Duration", rep.Metadata.Duration.String()},
	}
	for i, row := range rows {
		if err := setRow(f, SheetStatistics, i+1, row); err != nil {
			return err
		}
	}
	return nil
}

// writeUnmatched lists unmatched and ambiguous candidates with their raw
// field values so data problems can be fixed at the source.
func writeUnmatched(f *excelize.File, rep *report.Report) error {
	if _, err := f.NewSheet(SheetUnmatched); err != nil {
		return err
	}

	// Collect a stable header from the union of raw columns.
	columns := map[string]bool{}
	for _, res := range rep.Results {
		if res.Disposition == report.Matched {
			continue
		}
		for col := range res.CandidateRaw {
			columns[col] = true
		}
	}
	ordered := make([]string, 0, len(columns))
	for col := range columns {
		ordered = append(ordered, col)
	}
	sort.Strings(ordered)

	header := []any{"Candidate Row", "Disposition", "Reason"}
	for _, col := range ordered {
		header = append(header, col)
	}
	if err := setRow(f, SheetUnmatched, 1, header); err != nil {
		return err
	}

	line := 2
	for _, res := range rep.Results {
		if res.Disposition == report.Matched {
			continue
		}
		row := []any{res.CandidateIndex, string(res.Disposition), res.Reason}
		for _, col := range ordered {
			row = append(row, res.CandidateRaw[col])
		}
		if err := setRow(f, SheetUnmatched, line, row); err != nil {
			return err
		}
		line++
	}
	return nil
}

func writeMapping(f *excelize.File, m *schema.Mapping) error {
	if _, err := f.NewSheet(SheetMapping); err != nil {
		return err
	}
	header := []any{"Canonical Field", "Position Column", "Candidate Column", "Required", "Key", "Fallback Key", "Signature"}
	if err := setRow(f, SheetMapping, 1, header); err != nil {
		return err
	}
	inKeys := toSet(m.Keys)
	inFallback := toSet(m.FallbackKeys)
	inSignature := toSet(m.Signature)
	for i, field := range m.Fields {
		row := []any{
			field.Name,
			m.Position[field.Name],
			m.Candidate[field.Name],
			field.Required,
			inKeys[field.Name],
			inFallback[field.Name],
			inSignature[field.Name],
		}
		if err := setRow(f, SheetMapping, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, line int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, line)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func tiedList(tied []report.TiedCandidate) string {
	if len(tied) == 0 {
		return ""
	}
	parts := make([]string, len(tied))
	for i, t := range tied {
		parts[i] = fmt.Sprintf("%d (%.3f, %s)", t.PositionIndex, t.Score, t.Method)
	}
	return strings.Join(parts, "; ")
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	return set
}
