// Package tablematch reconciles two independently-authored tabular datasets,
// classifying every candidate row as matched, unmatched, or ambiguous against
// position rows under a declared column mapping. Matching runs three engines
// in a fixed fallback order (exact key, fuzzy signature, multi-key fallback)
// over partitions of the candidate table, then resolves conflicts into a
// deterministic one-to-one assignment.
//
// All I/O happens outside this package: callers supply already-loaded rows
// and a mapping, and consume the returned report.
package tablematch

import (
	"context"
	"time"

	"github.com/tablematch/tablematch/pkg/engine"
	"github.com/tablematch/tablematch/pkg/errors"
	"github.com/tablematch/tablematch/pkg/keys"
	"github.com/tablematch/tablematch/pkg/logging"
	"github.com/tablematch/tablematch/pkg/records"
	"github.com/tablematch/tablematch/pkg/report"
	"github.com/tablematch/tablematch/pkg/resolver"
	"github.com/tablematch/tablematch/pkg/schema"
)

// Match reconciles the candidate table against the position table and
// returns one report covering every processed candidate row.
//
// Configuration errors (invalid mapping, unresolved required columns,
// dangling key fields) fail before any row is processed. Data-quality
// conditions never fail: duplicates route through the fallback engine, zero
// matches become unmatched, ties become ambiguous. Cancellation through ctx
// is honored at partition boundaries and yields a partial report marked
// incomplete rather than an error.
func Match(ctx context.Context, positions, candidates []records.Row, mapping *schema.Mapping, opts ...Option) (*report.Report, error) {
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	if mapping == nil {
		return nil, &errors.ValidationError{Field: "mapping", Message: "cannot be nil"}
	}
	if err := mapping.Validate(); err != nil {
		return nil, err
	}

	thresholds := mapping.Thresholds
	if options.fuzzyThreshold > 0 {
		thresholds.Fuzzy = options.fuzzyThreshold
	}
	if options.tieEpsilon >= 0 {
		thresholds.TieEpsilon = options.tieEpsilon
	}

	logger := options.logger
	if logger == nil {
		logger = logging.FromContext(ctx)
	}
	ctx = logging.WithLogger(ctx, logger)

	meta := report.Metadata{
		PositionRows:  len(positions),
		CandidateRows: len(candidates),
		Workers:       options.workers,
	}
	meta.StartTime = time.Now()

	posRecs, err := records.MapRows(positions, mapping, schema.RolePosition)
	if err != nil {
		return nil, err
	}
	logging.Ctx(logging.WithTable(ctx, schema.RolePosition.String())).Debug().
		Int("rows", len(posRecs)).Msg("Mapped table")

	candRecs, err := records.MapRows(candidates, mapping, schema.RoleCandidate)
	if err != nil {
		return nil, err
	}
	logging.Ctx(logging.WithTable(ctx, schema.RoleCandidate.String())).Debug().
		Int("rows", len(candRecs)).Msg("Mapped table")

	builder, err := keys.NewBuilder(mapping)
	if err != nil {
		return nil, err
	}

	index := engine.NewPositionIndex(builder, posRecs)
	pipeline := engine.NewPipeline(builder, index, candRecs, thresholds.Fuzzy)

	meta.DuplicatePositionKeys = index.DuplicateKeyCount()
	meta.DuplicateCandidateKeys = pipeline.CandidateDuplicateKeyCount()

	logger.Info().
		Int("position_rows", len(positions)).
		Int("candidate_rows", len(candidates)).
		Int("duplicate_position_keys", meta.DuplicatePositionKeys).
		Int("duplicate_candidate_keys", meta.DuplicateCandidateKeys).
		Int("workers", options.workers).
		Msg("Starting reconciliation")

	run := newRunner(pipeline, candRecs, options.workers, options.partitionSize)
	outcome := run.execute(ctx)

	results := resolver.New(thresholds.TieEpsilon).Resolve(outcome.processed, outcome.pairings)

	rep, err := report.Aggregate(results, meta, outcome.partitions, outcome.incomplete)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Int("matched", rep.MatchedCount).
		Int("unmatched", rep.UnmatchedCount).
		Int("ambiguous", rep.AmbiguousCount).
		Bool("incomplete", rep.Incomplete).
		Dur("duration", rep.Metadata.Duration).
		Msg("Reconciliation finished")

	return rep, nil
}
