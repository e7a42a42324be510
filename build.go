package graphbuild

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/graphbuild/blobstore"
	"github.com/hupe1980/graphbuild/codec"
	"github.com/hupe1980/graphbuild/internal/artifact"
	"github.com/hupe1980/graphbuild/internal/dictionary"
	"github.com/hupe1980/graphbuild/internal/edgesplit"
	"github.com/hupe1980/graphbuild/internal/hash"
	"github.com/hupe1980/graphbuild/internal/merge"
	"github.com/hupe1980/graphbuild/internal/partition"
	"github.com/hupe1980/graphbuild/internal/resolve"
	"github.com/hupe1980/graphbuild/internal/staging"
	"github.com/hupe1980/graphbuild/resource"
)

// Result describes a completed build.
type Result struct {
	// N is the number of distinct labels, and so of vertices.
	N uint64
	// M is the sum of all emitted degrees.
	M int64
	// Edges is the number of input records.
	Edges int64
	// Vertices counts vertices with at least one neighbor.
	Vertices int64
	// SelfLoops counts input records whose endpoints are the same vertex.
	SelfLoops int64
	// Distinct holds the distinct label count of each partition.
	Distinct []uint64
	// Adjacency names the adjacency list artifact.
	Adjacency string
	// Labels names the label map artifact, or is empty.
	Labels string
	// PeakMemory is the highest memory reservation observed.
	PeakMemory int64
	Duration   time.Duration
}

// Build converts the raw dump stored under base into an adjacency list
// written to "<base>_adj".
//
// Configuration errors are reported before any artifact is touched. When a
// build fails, no adjacency list is published and intermediates are removed
// unless WithKeepIntermediates is set.
func Build(ctx context.Context, store blobstore.BlobStore, base string, optFns ...Option) (*Result, error) {
	o := applyOptions(optFns)
	if err := o.validate(); err != nil {
		return nil, err
	}
	if base == "" {
		return nil, fmt.Errorf("%w: empty base name", ErrInvalidConfig)
	}

	p, err := newPipeline(store, base, o)
	if err != nil {
		return nil, err
	}
	res, err := p.run(ctx)
	return res, translateError(err)
}

// pipeline carries the state one stage hands to the next.
type pipeline struct {
	opts    options
	names   artifact.Names
	store   *artifact.Store
	rc      *resource.Controller
	part    *partition.Partitioner
	alt     staging.Alternator
	dicts   *dictionary.Builder
	logger  *Logger
	metrics MetricsCollector

	pstats partition.Stats
	layout dictionary.Layout
	split  edgesplit.Stats
	bucket edgesplit.Layout
}

func newPipeline(store blobstore.BlobStore, base string, o options) (*pipeline, error) {
	hashFn, err := hash.ByName(o.hash)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	c, err := codec.ByName(o.compression)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	part, err := partition.New(o.partitions, hashFn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	names := artifact.Names{Base: base}
	alt, err := staging.New(o.partitions, names.Tmp(0), names.Tmp(1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	rc := resource.NewController(resource.Config{
		MemoryLimitBytes:   o.memoryLimit,
		MaxWorkers:         int64(o.workers),
		IOLimitBytesPerSec: o.ioLimit,
	})
	as := artifact.NewStore(store,
		artifact.WithCodec(c),
		artifact.WithController(rc),
		artifact.WithKeep(o.keepIntermediates),
	)

	return &pipeline{
		opts:    o,
		names:   names,
		store:   as,
		rc:      rc,
		part:    part,
		alt:     alt,
		dicts:   dictionary.NewBuilder(as, names, rc),
		logger:  o.logger.WithBase(base),
		metrics: o.metricsCollector,
	}, nil
}

func (p *pipeline) run(ctx context.Context) (res *Result, err error) {
	start := time.Now()
	defer func() {
		// Intermediates left by a failed stage or not consumed by any stage.
		if cerr := p.cleanup(context.WithoutCancel(ctx)); err == nil && cerr != nil {
			err = cerr
		}
	}()

	stages := []struct {
		name string
		fn   func(context.Context) error
	}{
		{StagePartition, p.partitionInput},
		{StageDictionary, p.buildDictionaries},
		{StageResolve, p.resolveLabels},
		{StageSplit, p.splitEdges},
	}
	for _, s := range stages {
		if err := p.stage(ctx, s.name, s.fn); err != nil {
			return nil, err
		}
	}

	var out merge.Result
	if err := p.stage(ctx, StageMerge, func(ctx context.Context) error {
		var err error
		out, err = p.mergeBuckets(ctx)
		return err
	}); err != nil {
		return nil, err
	}

	res = &Result{
		N:         out.N,
		M:         out.M,
		Edges:     p.pstats.Edges,
		Vertices:  out.Vertices,
		SelfLoops: p.split.SelfLoops,
		Distinct:  p.layout.Distinct,
		Adjacency: p.names.Adj(),
	}

	if p.opts.emitLabels {
		if err := p.stage(ctx, StageLabels, p.writeLabels); err != nil {
			_ = p.store.Delete(context.WithoutCancel(ctx), p.names.Adj())
			return nil, err
		}
		res.Labels = p.names.Labels()
	}

	res.PeakMemory = p.rc.PeakMemoryUsage()
	res.Duration = time.Since(start)
	p.metrics.RecordResult(res.N, res.M)
	p.logger.LogResult(ctx, res.N, res.M)
	return res, nil
}

func (p *pipeline) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start)

	p.metrics.RecordStage(name, duration, err)
	p.logger.LogStage(ctx, name, duration, err)
	if err != nil {
		return &ErrStage{Stage: name, cause: err}
	}
	return nil
}

func (p *pipeline) partitionInput(ctx context.Context) error {
	stats, err := partition.Run(ctx, p.store, p.names, p.alt.Initial(), p.part, p.opts.ingester)
	if err != nil {
		return err
	}
	p.pstats = stats
	return nil
}

func (p *pipeline) buildDictionaries(ctx context.Context) error {
	layout, err := p.dicts.Build(ctx, p.pstats)
	if err != nil {
		return err
	}
	p.layout = layout
	return p.dicts.Discard(ctx, p.part.K(), true, false)
}

func (p *pipeline) resolveLabels(ctx context.Context) error {
	r := resolve.New(p.store, p.dicts, p.alt, func(ps resolve.PassStats) {
		p.metrics.RecordPass(ps.Pass, ps.Resolved, ps.Duration)
		p.logger.LogPass(ctx, ps.Pass, ps.Resolved, ps.Edges)
	})
	_, err := r.Run(ctx, p.layout, p.pstats)
	return err
}

func (p *pipeline) splitEdges(ctx context.Context) error {
	p.bucket = edgesplit.NewLayout(p.layout.N, p.opts.buckets)
	stats, err := edgesplit.Split(ctx, p.store, p.names, p.alt.Final(), p.bucket, p.opts.selfLoops)
	if err != nil {
		return err
	}
	p.split = stats
	return p.store.Discard(ctx, p.alt.Final())
}

func (p *pipeline) mergeBuckets(ctx context.Context) (merge.Result, error) {
	m := merge.New(p.store, p.names, p.rc, func(bs merge.BucketStats) {
		p.metrics.RecordBucket(bs.Bucket, bs.Vertices, bs.DegreeSum, bs.Duration)
		p.logger.LogBucket(ctx, bs.Bucket, bs.Vertices, bs.DegreeSum)
	})
	return m.Run(ctx, p.bucket, p.split.Records, p.names.Adj())
}

func (p *pipeline) writeLabels(ctx context.Context) error {
	w, err := p.store.CreateRaw(ctx, p.names.Labels())
	if err != nil {
		return err
	}
	if err := p.dicts.ExportLabels(ctx, p.layout, w); err != nil {
		_ = w.Abort()
		return err
	}
	return w.Commit()
}

// cleanup removes every intermediate artifact a build may create.
func (p *pipeline) cleanup(ctx context.Context) error {
	var names []string
	for i := 0; i < p.part.K(); i++ {
		names = append(names, p.names.Label(i), p.names.Dict(i))
	}
	names = append(names, p.names.Tmp(0), p.names.Tmp(1))
	for b := 0; b < p.opts.buckets; b++ {
		names = append(names, p.names.Split(b), p.names.Part(b))
	}
	return p.store.Discard(ctx, names...)
}
