package graphbuild

import (
	"fmt"
	"log/slog"

	"github.com/hupe1980/graphbuild/codec"
	"github.com/hupe1980/graphbuild/ingest"
	"github.com/hupe1980/graphbuild/ingest/nquads"
	"github.com/hupe1980/graphbuild/internal/edgesplit"
	"github.com/hupe1980/graphbuild/internal/hash"
)

// Defaults for a build.
const (
	DefaultPartitions = 5
	DefaultBuckets    = 5
	DefaultWorkers    = 1
)

// SelfLoopPolicy decides whether an edge (v, v) lists v as its own neighbor.
type SelfLoopPolicy = edgesplit.SelfLoopPolicy

const (
	// KeepSelfLoops lists v once in its own neighbor list.
	KeepSelfLoops = edgesplit.KeepSelfLoops
	// DropSelfLoops removes self-loops from the output.
	DropSelfLoops = edgesplit.DropSelfLoops
)

type options struct {
	partitions        int
	buckets           int
	hash              string
	compression       string
	workers           int
	memoryLimit       int64
	ioLimit           int64
	selfLoops         SelfLoopPolicy
	keepIntermediates bool
	emitLabels        bool
	metricsCollector  MetricsCollector
	logger            *Logger
	ingester          ingest.Ingester
}

// Option configures a build.
type Option func(*options)

// WithPartitions sets the number of label partitions K. Each dictionary holds
// roughly 1/K of the distinct labels, and resolution makes K passes over the
// edge stream.
func WithPartitions(k int) Option {
	return func(o *options) {
		o.partitions = k
	}
}

// WithBuckets sets the number of vertex buckets E used by the merge.
func WithBuckets(e int) Option {
	return func(o *options) {
		o.buckets = e
	}
}

// WithHash selects the label partition hash by name ("elf", "xxhash",
// "murmur3", "crc32c"). Changing the hash changes ID assignment.
func WithHash(name string) Option {
	return func(o *options) {
		o.hash = name
	}
}

// WithCompression selects the codec for intermediate artifacts ("none",
// "lz4", "zstd"). Outputs are never compressed.
func WithCompression(name string) Option {
	return func(o *options) {
		o.compression = name
	}
}

// WithWorkers sets how many partitions or buckets are processed at once.
// Output is identical for any value.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithMemoryLimit bounds the memory reserved by in-flight dictionaries and
// bucket merges. 0 means unlimited.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithIOLimit throttles artifact IO to bytesPerSec. 0 means unlimited.
func WithIOLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.ioLimit = bytesPerSec
	}
}

// WithSelfLoopPolicy configures how self-loops are emitted.
func WithSelfLoopPolicy(p SelfLoopPolicy) Option {
	return func(o *options) {
		o.selfLoops = p
	}
}

// WithKeepIntermediates retains partition, staging, bucket and part
// artifacts after the build.
func WithKeepIntermediates() Option {
	return func(o *options) {
		o.keepIntermediates = true
	}
}

// WithEmitLabels writes the "<base>_labels" map of vertex IDs to labels.
func WithEmitLabels() Option {
	return func(o *options) {
		o.emitLabels = true
	}
}

// WithMetricsCollector configures a metrics collector for pipeline stages.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &graphbuild.BasicMetricsCollector{}
//	res, _ := graphbuild.Build(ctx, store, "btc", graphbuild.WithMetricsCollector(metrics))
//	fmt.Println(metrics.GetStats().Passes)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := graphbuild.NewJSONLogger(slog.LevelInfo)
//	res, _ := graphbuild.Build(ctx, store, "btc", graphbuild.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithIngester replaces the N-Quads parser used for the raw input.
func WithIngester(ing ingest.Ingester) Option {
	return func(o *options) {
		o.ingester = ing
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		partitions:  DefaultPartitions,
		buckets:     DefaultBuckets,
		hash:        hash.Default,
		compression: codec.Default.Name(),
		workers:     DefaultWorkers,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.ingester == nil {
		o.ingester = nquads.New()
	}
	return o
}

func (o options) validate() error {
	switch {
	case o.partitions < 1:
		return fmt.Errorf("%w: partitions must be positive, got %d", ErrInvalidConfig, o.partitions)
	case o.buckets < 1:
		return fmt.Errorf("%w: buckets must be positive, got %d", ErrInvalidConfig, o.buckets)
	case o.workers < 1:
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, o.workers)
	case o.memoryLimit < 0:
		return fmt.Errorf("%w: memory limit must not be negative", ErrInvalidConfig)
	case o.ioLimit < 0:
		return fmt.Errorf("%w: io limit must not be negative", ErrInvalidConfig)
	case o.selfLoops != KeepSelfLoops && o.selfLoops != DropSelfLoops:
		return fmt.Errorf("%w: unknown self-loop policy %v", ErrInvalidConfig, o.selfLoops)
	}
	if _, err := hash.ByName(o.hash); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := codec.ByName(o.compression); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
