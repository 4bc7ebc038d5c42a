package tablematch

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tablematch/tablematch/pkg/engine"
	"github.com/tablematch/tablematch/pkg/errors"
	"github.com/tablematch/tablematch/pkg/logging"
	"github.com/tablematch/tablematch/pkg/records"
	"github.com/tablematch/tablematch/pkg/report"
)

// minPartitionSize keeps partitions large enough that scheduling overhead
// stays negligible on small tables.
const minPartitionSize = 64

// span is one contiguous candidate-row range assigned to a worker.
type span struct {
	id    int
	start int
	end   int // exclusive
}

// partitionOutcome is what one worker reports for one span.
type partitionOutcome struct {
	status   report.PartitionStatus
	pairings []engine.Candidate
	// processed holds the records that received engine decisions; empty for
	// skipped or failed partitions.
	processed []*records.Record
}

// runOutcome is the merged result of all partitions at the join point.
type runOutcome struct {
	pairings   []engine.Candidate
	processed  []*records.Record
	partitions []report.PartitionStatus
	incomplete bool
}

// runner fans candidate partitions out over a fixed worker pool. The
// position-side index inside the pipeline is read-only, so workers share it
// without locking; the only mutable shared state is the buffered outcome
// channel merged at the join point.
type runner struct {
	pipeline      *engine.Pipeline
	cands         []*records.Record
	workers       int
	partitionSize int
}

func newRunner(pipeline *engine.Pipeline, cands []*records.Record, workers, partitionSize int) *runner {
	if workers < 1 {
		workers = 1
	}
	return &runner{
		pipeline:      pipeline,
		cands:         cands,
		workers:       workers,
		partitionSize: partitionSize,
	}
}

// execute matches every candidate partition and merges the results. The
// context is checked at partition boundaries only: a cancellation never
// corrupts pairings already produced, it just leaves later partitions
// unprocessed and the outcome flagged incomplete.
func (r *runner) execute(ctx context.Context) runOutcome {
	spans := r.split()
	if len(spans) == 0 {
		return runOutcome{}
	}

	jobs := make(chan span, len(spans))
	for _, sp := range spans {
		jobs <- sp
	}
	close(jobs)

	outcomes := make(chan partitionOutcome, len(spans))
	var wg sync.WaitGroup
	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sp := range jobs {
				if ctx.Err() != nil {
					outcomes <- partitionOutcome{status: report.PartitionStatus{
						Partition: sp.id,
						Start:     sp.start,
						End:       sp.end,
					}}
					continue
				}
				outcomes <- r.runPartition(ctx, sp)
			}
		}()
	}
	wg.Wait()
	close(outcomes)

	merged := make([]partitionOutcome, 0, len(spans))
	for out := range outcomes {
		merged = append(merged, out)
	}
	// Merge in partition order so the outcome is independent of worker
	// scheduling.
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].status.Partition < merged[j].status.Partition
	})

	var run runOutcome
	for _, out := range merged {
		run.partitions = append(run.partitions, out.status)
		run.pairings = append(run.pairings, out.pairings...)
		run.processed = append(run.processed, out.processed...)
		if !out.status.Completed {
			run.incomplete = true
		}
	}
	return run
}

// runPartition matches one contiguous row range. A panic inside a partition
// is isolated: it fails that partition's annotation and leaves every other
// partition untouched.
func (r *runner) runPartition(ctx context.Context, sp span) (out partitionOutcome) {
	ctx = logging.WithPartition(ctx, sp.id)

	out.status = report.PartitionStatus{
		Partition: sp.id,
		Start:     sp.start,
		End:       sp.end,
	}

	defer func() {
		if rec := recover(); rec != nil {
			perr := &errors.PartitionError{
				Partition: sp.id,
				Start:     sp.start,
				End:       sp.end,
				Err:       fmt.Errorf("panic: %v", rec),
			}
			out = partitionOutcome{status: report.PartitionStatus{
				Partition: sp.id,
				Start:     sp.start,
				End:       sp.end,
				Error:     perr.Error(),
			}}
			logging.FromContext(ctx).Error().
				Str("error", perr.Error()).
				Msg("Partition failed")
		}
	}()

	for _, rec := range r.cands[sp.start:sp.end] {
		out.pairings = append(out.pairings, r.pipeline.Match(rec)...)
		out.processed = append(out.processed, rec)
	}
	out.status.Completed = true

	logging.FromContext(ctx).Debug().
		Int("rows", sp.end-sp.start).
		Int("pairings", len(out.pairings)).
		Msg("Partition matched")
	return out
}

// split partitions the candidate table into contiguous row ranges sized for
// the worker count.
func (r *runner) split() []span {
	n := len(r.cands)
	if n == 0 {
		return nil
	}
	size := r.partitionSize
	if size <= 0 {
		size = (n + r.workers - 1) / r.workers
		if size < minPartitionSize {
			size = minPartitionSize
		}
	}
	spans := make([]span, 0, n/size+1)
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		spans = append(spans, span{id: len(spans), start: start, end: end})
	}
	return spans
}
