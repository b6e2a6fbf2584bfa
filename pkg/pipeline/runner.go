package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cadlayout/pkg/cache"
	"github.com/matzehuels/cadlayout/pkg/drawing"
	"github.com/matzehuels/cadlayout/pkg/drawing/yamldoc"
	cerrors "github.com/matzehuels/cadlayout/pkg/errors"
	"github.com/matzehuels/cadlayout/pkg/layout"
	"github.com/matzehuels/cadlayout/pkg/loader"
	"github.com/matzehuels/cadlayout/pkg/observability"
	"github.com/matzehuels/cadlayout/pkg/render"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache, engine and logger. Multiple
// goroutines can safely use the same Runner with different options as long
// as the engine is safe for concurrent use.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Engine drawing.Engine
	Logger *log.Logger

	// TTL is the artifact lifetime. Zero means cache.TTLArtifact.
	TTL time.Duration
}

// NewRunner creates a runner.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, engine drawing.Engine, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Engine: engine,
		Logger: logger,
	}
}

// Execute runs the complete load → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	result := &Result{Artifacts: make(map[string][]byte)}
	src := opts.Layout.Source

	if !src.IsZero() {
		data, err := src.Bytes()
		if err != nil {
			if opts.Strict {
				return nil, err
			}
			r.Logger.Warn("source unreadable, rendering without it", "source", src.Name(), "err", err)
			opts.Layout.Source = loader.Source{}
		} else {
			result.SourceHash = cache.Hash(data)
		}
	}

	if !opts.Refresh {
		if artifacts, ok := r.cached(ctx, result.SourceHash, opts); ok {
			result.Artifacts = artifacts
			result.CacheInfo.RenderHit = true
			r.Logger.Debug("artifacts served from cache", "formats", opts.Formats)
			return result, nil
		}
	}

	// Stage 1: Load
	block, err := r.load(ctx, opts, result)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}

	// Stage 2: Layout
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, opts.Layout.Source.Name())
	layoutStart := time.Now()
	orch := layout.New(nil, opts.Shapes, layout.WithLogger(opts.Logger))
	scene, err := orch.Compose(opts.Layout, block)
	result.Stats.LayoutTime = time.Since(layoutStart)
	if scene != nil {
		result.Stats.Placements = len(scene.Placements)
	}
	hooks.OnLayoutComplete(ctx, result.Stats.Placements, result.Stats.LayoutTime, err)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Scene = scene

	r.Logger.Info("computed layout",
		"placements", result.Stats.Placements,
		"resolution", scene.ResolutionScale,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	for _, format := range opts.Formats {
		data, err := r.render(ctx, scene, format, opts)
		if err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}
		result.Artifacts[format] = data
		r.store(ctx, r.Keyer.ArtifactKey(result.SourceHash, opts.ArtifactKeyOpts(format)), data)
	}
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// load runs the loader. A strict run propagates failures; otherwise they
// leave the scene without insertions.
func (r *Runner) load(ctx context.Context, opts Options, result *Result) (*loader.Block, error) {
	src := opts.Layout.Source
	if src.IsZero() {
		return nil, nil
	}
	if r.Engine == nil {
		return nil, cerrors.New(cerrors.ErrCodeInternal, "no drawing engine configured")
	}

	lopts := []loader.Option{loader.WithFilter(opts.Filter), loader.WithLogger(opts.Logger)}
	if opts.Acknowledger != nil {
		lopts = append(lopts, loader.WithAcknowledger(opts.Acknowledger))
	}
	l := loader.New(r.Engine, lopts...)

	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, src.Name())
	start := time.Now()

	var block *loader.Block
	var err error
	if opts.Strict {
		block, err = l.Load(ctx, src, opts.Layout.Rotation)
	} else {
		block = l.LoadBlock(ctx, src, opts.Layout.Rotation)
	}

	result.Stats.LoadTime = time.Since(start)
	if block != nil {
		result.Stats.Entities = block.Model.Len()
	}
	hooks.OnLoadComplete(ctx, src.Name(), result.Stats.Entities, result.Stats.LoadTime, err)
	if err != nil {
		return nil, err
	}

	r.Logger.Info("loaded drawing",
		"source", src.Name(),
		"entities", result.Stats.Entities,
		"duration", result.Stats.LoadTime)
	return block, nil
}

// render produces one artifact.
func (r *Runner) render(ctx context.Context, scene *layout.Scene, format string, opts Options) ([]byte, error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, format)
	start := time.Now()

	var data []byte
	var err error
	switch format {
	case FormatPNG:
		ropts := opts.Render
		if ropts.Logger == nil {
			ropts.Logger = opts.Logger
		}
		data, err = render.EncodePNG(scene, ropts)
	case FormatYAML:
		data, err = yamldoc.Encode(scene.Flatten())
		if err != nil {
			err = cerrors.Wrap(cerrors.ErrCodeRenderFailed, err, "encode scene")
		}
	default:
		err = cerrors.New(cerrors.ErrCodeUnsupported, "unsupported format: %s", format)
	}

	hooks.OnRenderComplete(ctx, format, len(data), time.Since(start), err)
	return data, err
}

// cached returns every requested artifact if all are in the cache.
func (r *Runner) cached(ctx context.Context, sourceHash string, opts Options) (map[string][]byte, bool) {
	hooks := observability.Cache()
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(sourceHash, opts.ArtifactKeyOpts(format))
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil {
			r.Logger.Debug("cache read failed", "key", key, "err", err)
		}
		if err != nil || !hit {
			hooks.OnCacheMiss(ctx, key)
			return nil, false
		}
		hooks.OnCacheHit(ctx, key)
		artifacts[format] = data
	}
	return artifacts, true
}

func (r *Runner) store(ctx context.Context, key string, data []byte) {
	ttl := r.TTL
	if ttl == 0 {
		ttl = cache.TTLArtifact
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Debug("cache write failed", "key", key, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, key, len(data))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
