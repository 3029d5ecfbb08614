package build

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/pohlang/plhub/internal/errors"
	"github.com/pohlang/plhub/internal/graph"
	"github.com/pohlang/plhub/internal/watch"
)

// Failure describes one file that failed to compile.
type Failure struct {
	Path        string
	Diagnostics []string
}

// Result aggregates one build cycle.
type Result struct {
	Succeeded []string
	Failed    []Failure
}

// OK reports whether the cycle had no failures.
func (r Result) OK() bool {
	return len(r.Failed) == 0
}

// Empty reports whether the cycle had nothing to do.
func (r Result) Empty() bool {
	return len(r.Succeeded) == 0 && len(r.Failed) == 0
}

// Options configures the orchestrator.
type Options struct {
	// ProjectRoot is the project directory (import resolution base).
	ProjectRoot string

	// CachePath is where the build cache is persisted.
	CachePath string

	// Roots are the source directories scanned on startup and full builds.
	Roots []string

	// Filter decides which files are sources.
	Filter *watch.Filter

	// Compiler is the external compile collaborator.
	Compiler Compiler

	// Logger receives build diagnostics. Defaults to slog.Default().
	Logger *slog.Logger

	// Registry receives Prometheus metrics. Nil registers nowhere.
	Registry prometheus.Registerer
}

// Orchestrator owns the build cache and runs builds strictly one at a
// time. Change-sets arriving mid-build merge into a pending set that
// triggers an immediate follow-up cycle, so the cache is never mutated
// concurrently.
type Orchestrator struct {
	opts    Options
	cache   *graph.Cache
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *metrics
	results chan Result

	mu      sync.Mutex
	pending watch.ChangeSet
}

// New loads the cache and creates an orchestrator. A corrupt cache is
// logged and replaced with an empty one; the next build is simply a full
// rebuild.
func New(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "build")

	cache, err := graph.Load(opts.CachePath)
	if err != nil {
		logger.Warn("build cache discarded", "path", opts.CachePath, "err", err)
	}

	return &Orchestrator{
		opts:    opts,
		cache:   cache,
		logger:  logger,
		tracer:  otel.Tracer("plhub/build"),
		metrics: newMetrics(opts.Registry),
		results: make(chan Result, 1),
		pending: make(watch.ChangeSet),
	}
}

// Cache exposes the cache for read-only inspection (status endpoints,
// tests). All mutation happens inside the orchestrator.
func (o *Orchestrator) Cache() *graph.Cache {
	return o.cache
}

// Results returns the channel build results are published on. The
// channel is closed when Run returns.
func (o *Orchestrator) Results() <-chan Result {
	return o.results
}

// Enqueue merges a change-set into the pending set. Used by Run's
// intake; exported for tests and manual triggers.
func (o *Orchestrator) Enqueue(cs watch.ChangeSet) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pending.Merge(cs)
}

func (o *Orchestrator) takePending() watch.ChangeSet {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.pending) == 0 {
		return nil
	}
	cs := o.pending
	o.pending = make(watch.ChangeSet)
	return cs
}

// Run consumes change-sets until the channel closes or the context is
// canceled. An in-flight build always runs to completion and its result
// is applied to the cache; cancellation only prevents new cycles.
func (o *Orchestrator) Run(ctx context.Context, changes <-chan watch.ChangeSet) error {
	defer close(o.results)

	kick := make(chan struct{}, 1)
	go func() {
		for cs := range changes {
			o.Enqueue(cs)
			select {
			case kick <- struct{}{}:
			default:
			}
		}
		close(kick)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-kick:
			if !ok {
				return nil
			}
		}

		for {
			cs := o.takePending()
			if cs == nil {
				break
			}
			// Detached from cancellation: a build that has started is
			// allowed to finish and persist its result.
			result := o.BuildChanged(context.WithoutCancel(ctx), cs)
			if !result.Empty() {
				o.publish(ctx, result)
			}
			if ctx.Err() != nil {
				return nil
			}
		}
	}
}

func (o *Orchestrator) publish(ctx context.Context, result Result) {
	select {
	case o.results <- result:
	case <-ctx.Done():
	}
}

// BuildChanged runs one build cycle for a change-set: computes the
// rebuild set via dependency closure, compiles in topological order, and
// persists the cache once.
func (o *Orchestrator) BuildChanged(ctx context.Context, cs watch.ChangeSet) Result {
	var deleted, changed []string
	for path, kind := range cs {
		if kind == watch.Deleted {
			deleted = append(deleted, path)
		} else {
			changed = append(changed, path)
		}
	}
	roots := append(append([]string(nil), changed...), deleted...)

	rebuild, err := o.cache.RebuildSet(roots)
	if err != nil {
		// Cycle: conservative full rebuild rather than an unsound
		// traversal. RebuildSet already returned the full set.
		o.logger.Warn("falling back to full rebuild",
			"err", errors.FromError(err, "E102"))
	}

	for _, path := range deleted {
		o.cache.Remove(path)
	}

	// Deleted files stay in the closure (their dependents are rebuilt)
	// but are not themselves compiled.
	gone := make(map[string]struct{}, len(deleted))
	for _, p := range deleted {
		gone[p] = struct{}{}
	}
	var compileSet []string
	for _, p := range rebuild {
		if _, ok := gone[p]; ok {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			o.cache.Remove(p)
			continue
		}
		compileSet = append(compileSet, p)
	}

	return o.compile(ctx, compileSet)
}

// BuildAll runs a full or incremental one-shot build over the configured
// roots. With force, every source is rebuilt; otherwise only stale files
// and their dependents are.
func (o *Orchestrator) BuildAll(ctx context.Context, force bool) (Result, error) {
	sources, err := o.listSources()
	if err != nil {
		return Result{}, err
	}

	var stale []string
	if force {
		stale = sources
	} else {
		stale = o.cache.Stale(sources)
	}
	if len(stale) == 0 {
		return Result{}, nil
	}

	rebuild, err := o.cache.RebuildSet(stale)
	if err != nil {
		o.logger.Warn("falling back to full rebuild",
			"err", errors.FromError(err, "E102"))
	}

	var compileSet []string
	for _, p := range rebuild {
		if _, statErr := os.Stat(p); statErr == nil {
			compileSet = append(compileSet, p)
		}
	}

	return o.compile(ctx, compileSet), nil
}

// compile builds the given set in dependency order and saves the cache.
func (o *Orchestrator) compile(ctx context.Context, set []string) Result {
	if len(set) == 0 {
		return Result{}
	}

	start := time.Now()
	ctx, span := o.tracer.Start(ctx, "plhub.build",
		trace.WithAttributes(attribute.Int("build.rebuild_set", len(set))))
	defer span.End()

	o.metrics.rebuildSetSize.Observe(float64(len(set)))

	var result Result
	for _, path := range o.cache.TopoOrder(set) {
		compileResult := o.compileOne(ctx, path)

		if !compileResult.Success {
			o.metrics.compileFailures.Inc()
			result.Failed = append(result.Failed, Failure{
				Path:        path,
				Diagnostics: compileResult.Diagnostics,
			})
			// The cache entry (if any) stays untouched: the file remains
			// dirty and is retried on the next change.
			continue
		}

		rec, err := o.record(path)
		if err != nil {
			o.metrics.compileFailures.Inc()
			result.Failed = append(result.Failed, Failure{
				Path:        path,
				Diagnostics: []string{err.Error()},
			})
			continue
		}
		o.cache.Put(rec)
		o.metrics.filesCompiled.Inc()
		result.Succeeded = append(result.Succeeded, path)
	}

	if err := o.cache.Save(o.opts.CachePath); err != nil {
		o.logger.Error("failed to persist build cache", "err", err)
	}

	elapsed := time.Since(start)
	o.metrics.buildDuration.Observe(elapsed.Seconds())
	if result.OK() {
		o.metrics.buildsTotal.WithLabelValues("success").Inc()
		o.logger.Info("build succeeded",
			"files", len(result.Succeeded),
			"elapsed", elapsed.Round(time.Millisecond))
	} else {
		o.metrics.buildsTotal.WithLabelValues("failure").Inc()
		o.logger.Warn("build completed with errors",
			"succeeded", len(result.Succeeded),
			"failed", len(result.Failed),
			"elapsed", elapsed.Round(time.Millisecond))
	}

	return result
}

func (o *Orchestrator) compileOne(ctx context.Context, path string) CompileResult {
	ctx, span := o.tracer.Start(ctx, "plhub.compile",
		trace.WithAttributes(attribute.String("file.path", path)))
	defer span.End()
	return o.opts.Compiler.Compile(ctx, path)
}

// record builds a fresh FileRecord after a successful compile: new hash,
// new mtime, and dependency edges reparsed from source. Edges update
// only here, so the graph is always "as of last successful compile".
func (o *Orchestrator) record(path string) (graph.FileRecord, error) {
	hash, err := graph.HashFile(path)
	if err != nil {
		return graph.FileRecord{}, errors.New("E112").Wrap(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return graph.FileRecord{}, errors.New("E112").Wrap(err)
	}
	deps, err := graph.ParseImports(path, o.opts.ProjectRoot)
	if err != nil {
		return graph.FileRecord{}, errors.New("E112").Wrap(err)
	}
	return graph.FileRecord{
		Path:  path,
		Hash:  hash,
		MTime: info.ModTime().UnixNano(),
		Deps:  deps,
	}, nil
}

// listSources walks the roots collecting files accepted by the filter.
func (o *Orchestrator) listSources() ([]string, error) {
	var sources []string
	for _, root := range o.opts.Roots {
		err := filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				o.logger.Warn("path skipped", "path", p, "err", err)
				return nil
			}
			if info.IsDir() {
				if o.opts.Filter != nil && o.opts.Filter.Excluded(p) && p != root {
					return filepath.SkipDir
				}
				return nil
			}
			if o.opts.Filter == nil || o.opts.Filter.Matches(p) {
				abs, err := filepath.Abs(p)
				if err != nil {
					return nil
				}
				sources = append(sources, abs)
			}
			return nil
		})
		if err != nil {
			o.logger.Warn("watch root dropped", "root", root,
				"err", errors.New("E001").Wrap(err))
		}
	}
	return sources, nil
}
