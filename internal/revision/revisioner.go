package revision

import (
	"context"
	"log/slog"
	"path"
	"strings"
	"time"

	"git.home.luguber.info/inful/assetrev/internal/foundation/errors"
	"git.home.luguber.info/inful/assetrev/internal/logfields"
	"git.home.luguber.info/inful/assetrev/internal/metrics"
)

// Stage names used for logging and metrics.
const (
	StageCollect = "collect"
	StageGraph   = "graph"
	StageHash    = "hash"
	StageName    = "name"
	StageRewrite = "rewrite"
	StageEmit    = "emit"
)

// Options configures one Revisioner. Zero values select the defaults.
//
// RootDir resolves root-absolute references and anchors root-relative paths; when empty,
// the Base of the first descriptor is used. Prefix selects PrefixPaths and cannot be
// combined with a custom Paths strategy.
type Options struct {
	RootDir    string
	HashLength int
	Algorithm  Algorithm
	Ignore     IgnorePolicy
	Prefix     string
	Naming     NamingStrategy
	Paths      PathStrategy
	FS         FileSystem
	Logger     *slog.Logger
	Metrics    metrics.Recorder
}

// Result is the outcome of one run.
type Result struct {
	Root         string
	Outputs      []Output
	Resolved     int
	Unresolved   int
	CyclesBroken int
}

// Revisioner runs the collect, graph, hash, name and rewrite phases. It keeps no state
// between runs.
type Revisioner struct {
	opts Options
}

// New validates opts and returns a Revisioner.
func New(opts Options) (*Revisioner, error) {
	if opts.Algorithm == "" {
		opts.Algorithm = DefaultAlgorithm
	}
	algo, err := ParseAlgorithm(string(opts.Algorithm))
	if err != nil {
		return nil, err
	}
	opts.Algorithm = algo

	if opts.HashLength == 0 {
		opts.HashLength = DefaultHashLength
	}
	if opts.HashLength < 1 || opts.HashLength > algo.HexLen() {
		return nil, errors.ValidationError("hash length out of range").
			WithContext("hash_length", opts.HashLength).
			WithContext("max", algo.HexLen()).
			Build()
	}
	if opts.Prefix != "" && opts.Paths != nil {
		return nil, errors.ValidationError("prefix and a custom path strategy are mutually exclusive").Build()
	}
	if opts.Paths == nil {
		if opts.Prefix != "" {
			opts.Paths = PrefixPaths{Prefix: opts.Prefix}
		} else {
			opts.Paths = RelativePaths{}
		}
	}
	if opts.Ignore == nil {
		m, err := NewIgnoreMatcher(DefaultIgnoreRules)
		if err != nil {
			return nil, err
		}
		opts.Ignore = m
	}
	if opts.Naming == nil {
		opts.Naming = DefaultNaming{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NoopRecorder{}
	}
	return &Revisioner{opts: opts}, nil
}

// Run drains src, revisions the complete set and emits every output to sink. Nothing
// reaches the sink unless the whole computation succeeded.
func (rv *Revisioner) Run(ctx context.Context, src Source, sink Sink) (*Result, error) {
	start := time.Now()
	var c Collector
	err := rv.timed(StageCollect, func() error { return c.Drain(ctx, src) })
	descs, closeErr := c.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		rv.finish(ctx, start, err)
		return nil, err
	}

	res, err := rv.compute(ctx, descs)
	if err == nil {
		err = rv.timed(StageEmit, func() error {
			for _, out := range res.Outputs {
				if err := sink.Emit(ctx, out); err != nil {
					return errors.WrapError(err, errors.CategoryFileSystem, "sink rejected output").
						Fatal().
						WithContext("path", out.RelPath).
						Build()
				}
			}
			return nil
		})
	}
	rv.finish(ctx, start, err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Revision revisions an already collected set of descriptors.
func (rv *Revisioner) Revision(ctx context.Context, descs []Descriptor) (*Result, error) {
	start := time.Now()
	res, err := rv.compute(ctx, descs)
	rv.finish(ctx, start, err)
	return res, err
}

func (rv *Revisioner) finish(ctx context.Context, start time.Time, err error) {
	m := rv.opts.Metrics
	m.ObserveRunDuration(time.Since(start))
	switch {
	case err == nil:
		m.IncRunOutcome(metrics.OutcomeSuccess)
	case ctx.Err() != nil:
		m.IncRunOutcome(metrics.OutcomeCanceled)
	default:
		m.IncRunOutcome(metrics.OutcomeFailed)
	}
}

func (rv *Revisioner) compute(ctx context.Context, descs []Descriptor) (*Result, error) {
	log := rv.opts.Logger
	root := rv.opts.RootDir
	if root == "" && len(descs) > 0 {
		root = descs[0].Base
	}
	root = NormalizeRoot(root)
	if root == "" && len(descs) > 0 {
		return nil, errors.ConfigError("root directory is required when descriptors carry no base").Build()
	}
	log.Info("Revisioning assets", logfields.Root(root), logfields.Count(len(descs)))

	resources := make([]*Resource, 0, len(descs))
	for _, d := range descs {
		rel, ok := rootRelative(root, d.Path)
		if !ok {
			return nil, errors.ValidationError("asset lies outside the root directory").
				WithContext("path", d.Path).
				WithContext("root_dir", root).
				Build()
		}
		resources = append(resources, newResource(toSlash(d.Path), rel, d.Content))
	}

	var graph *Graph
	err := rv.timed(StageGraph, func() error {
		var err error
		graph, err = BuildGraph(root, resources, rv.opts.FS, log)
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hasher := NewHashResolver(rv.opts.Algorithm, log)
	_ = rv.timed(StageHash, func() error {
		for _, r := range graph.Resources() {
			r.digest = hasher.Hash(r)
		}
		return nil
	})
	for i := 0; i < hasher.CyclesBroken(); i++ {
		rv.opts.Metrics.IncCyclesBroken()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := rv.timed(StageName, func() error { return rv.name(graph) }); err != nil {
		return nil, err
	}

	res := &Result{Root: root, CyclesBroken: hasher.CyclesBroken()}
	res.Resolved, res.Unresolved = graph.Counts()
	err = rv.timed(StageRewrite, func() error {
		for _, r := range graph.Resources() {
			if r.External {
				continue
			}
			content, err := Rewrite(r, rv.opts.Paths)
			if err != nil {
				return err
			}
			res.Outputs = append(res.Outputs, Output{
				Path:         path.Join(path.Dir(r.SourcePath), r.FinalBase),
				RelPath:      r.FinalRelPath,
				OriginalPath: r.RelPath,
				Digest:       r.Digest(),
				Ignored:      r.Ignored,
				Content:      content,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	rv.record(graph, res)
	return res, nil
}

// name assigns FinalBase and FinalRelPath to every resource.
func (rv *Revisioner) name(g *Graph) error {
	for _, r := range g.Resources() {
		r.Ignored = rv.opts.Ignore.IsIgnored(r.RelPath)
		if r.Ignored {
			r.FinalBase = r.Basename()
			r.FinalRelPath = r.RelPath
			continue
		}
		digest := r.Digest()[:rv.opts.HashLength]
		base, err := rv.opts.Naming.Name(r, digest)
		if err != nil {
			return errors.WrapError(err, errors.CategoryConfig, "naming strategy failed").
				Fatal().
				WithContext("path", r.RelPath).
				Build()
		}
		if base == "" || strings.ContainsAny(base, `/\`) {
			return errors.ConfigError("naming strategy returned an invalid basename").
				WithContext("path", r.RelPath).
				WithContext("basename", base).
				Build()
		}
		r.FinalBase = base
		r.FinalRelPath = path.Join(r.Dir(), base)
		rv.opts.Logger.Debug("Named asset", logfields.Path(r.RelPath), logfields.Revisioned(r.FinalRelPath))
	}
	return nil
}

func (rv *Revisioner) record(g *Graph, res *Result) {
	var revisioned, ignored, external int
	for _, r := range g.Resources() {
		switch {
		case r.External:
			external++
		case r.Ignored:
			ignored++
		default:
			revisioned++
		}
	}
	m := rv.opts.Metrics
	m.AddAssets(metrics.AssetRevisioned, revisioned)
	m.AddAssets(metrics.AssetIgnored, ignored)
	m.AddAssets(metrics.AssetExternal, external)
	m.AddReferences(res.Resolved, res.Unresolved)
	rv.opts.Logger.Info("Revisioned assets",
		logfields.Count(len(res.Outputs)),
		slog.Int("ignored", ignored),
		slog.Int("external", external),
		slog.Int("unresolved_references", res.Unresolved),
		slog.Int("cycles_broken", res.CyclesBroken))
}

func (rv *Revisioner) timed(stage string, fn func() error) error {
	start := time.Now()
	err := fn()
	d := time.Since(start)
	rv.opts.Metrics.ObserveStageDuration(stage, d)
	rv.opts.Logger.Debug("Stage complete",
		logfields.Stage(stage),
		logfields.DurationMS(float64(d.Microseconds())/1000))
	return err
}
