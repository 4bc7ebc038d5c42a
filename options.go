package tablematch

import (
	"runtime"

	"github.com/rs/zerolog"

	"github.com/tablematch/tablematch/pkg/errors"
)

// options configures a single Match invocation.
type options struct {
	workers        int
	partitionSize  int
	fuzzyThreshold float64 // <= 0 means use the mapping's threshold
	tieEpsilon     float64 // < 0 means use the mapping's epsilon
	logger         *zerolog.Logger
}

func defaultOptions() *options {
	return &options{
		workers:        runtime.GOMAXPROCS(0),
		fuzzyThreshold: 0,
		tieEpsilon:     -1,
	}
}

// Option is a function that configures a Match invocation.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// newOptions returns match options with default values.
func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithWorkers sets how many goroutines process candidate partitions.
func WithWorkers(n int) Option {
	return func(o *options) error {
		if n < 1 {
			return &errors.ValidationError{Field: "workers", Message: "must be at least 1"}
		}
		o.workers = n
		return nil
	}
}

// WithPartitionSize overrides the candidate rows per partition. Smaller
// partitions tighten cancellation latency at the cost of more scheduling.
func WithPartitionSize(n int) Option {
	return func(o *options) error {
		if n < 1 {
			return &errors.ValidationError{Field: "partition_size", Message: "must be at least 1"}
		}
		o.partitionSize = n
		return nil
	}
}

// WithFuzzyThreshold overrides the mapping's fuzzy similarity threshold.
func WithFuzzyThreshold(v float64) Option {
	return func(o *options) error {
		if v <= 0 || v > 1 {
			return &errors.ValidationError{Field: "fuzzy_threshold", Message: "must be in (0, 1]"}
		}
		o.fuzzyThreshold = v
		return nil
	}
}

// WithTieEpsilon overrides the mapping's tie epsilon.
func WithTieEpsilon(v float64) Option {
	return func(o *options) error {
		if v < 0 || v >= 1 {
			return &errors.ValidationError{Field: "tie_epsilon", Message: "must be in [0, 1)"}
		}
		o.tieEpsilon = v
		return nil
	}
}

// WithLogger sets the logger used for run progress.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			return &errors.ValidationError{Field: "logger", Message: "cannot be nil"}
		}
		o.logger = logger
		return nil
	}
}
