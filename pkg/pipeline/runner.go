package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/archview/pkg/cache"
	"github.com/matzehuels/archview/pkg/calm"
	"github.com/matzehuels/archview/pkg/graph"
	"github.com/matzehuels/archview/pkg/observability"
	"github.com/matzehuels/archview/pkg/pattern"
)

// Cache key types reported to the cache hooks.
const (
	keyTypeGraph  = "graph"
	keyTypeRender = "render"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// GraphTTL overrides cache.TTLGraph when positive.
	GraphTTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// If logger is nil, log output is discarded.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// GraphWithCacheInfo decodes data and builds its graph, consulting the
// cache first. The key covers the document bytes, the pattern flag and the
// layout settings. It reports whether the graph came from the cache.
//
// Unlike ParseBytes, undecodable input is returned as an
// ErrCodeInvalidDocument error so that outer surfaces can report it.
func (r *Runner) GraphWithCacheInfo(ctx context.Context, data []byte, opts Options) (graph.Graph, bool, error) {
	r.applyLogger(&opts)
	opts.SetDefaults()
	if err := opts.Layout.Validate(); err != nil {
		return graph.Empty(), false, err
	}

	doc, err := calm.Parse(data)
	if err != nil {
		return graph.Empty(), false, err
	}
	opts.Pattern = opts.Pattern || pattern.IsPattern(doc)

	key := r.Keyer.GraphKey(cache.Hash(data), cache.GraphKeyOpts{
		Pattern: opts.Pattern,
		Layout:  opts.Layout,
	})

	if !opts.Refresh {
		if cached, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if g, err := graph.UnmarshalGraph(cached); err == nil {
				observability.Cache().OnCacheHit(ctx, keyTypeGraph)
				r.Logger.Debug("graph cache hit", "key", key)
				return g, true, nil
			}
		} else if err != nil {
			r.Logger.Warn("cache read failed", "err", err)
		}
	}
	observability.Cache().OnCacheMiss(ctx, keyTypeGraph)

	g := parseDocument(ctx, doc, opts)

	if encoded, err := graph.MarshalGraph(g); err == nil {
		if err := r.Cache.Set(ctx, key, encoded, r.graphTTL()); err != nil {
			r.Logger.Warn("cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, keyTypeGraph, len(encoded))
		}
	}
	return g, false, nil
}

// Graph is a convenience wrapper that calls GraphWithCacheInfo and discards the cache hit info.
func (r *Runner) Graph(ctx context.Context, data []byte, opts Options) (graph.Graph, error) {
	g, _, err := r.GraphWithCacheInfo(ctx, data, opts)
	return g, err
}

// RenderWithCacheInfo renders g with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g graph.Graph, opts RenderOptions) ([]byte, bool, error) {
	opts.SetDefaults()
	if err := ValidateFormat(opts.Format); err != nil {
		return nil, false, err
	}

	encoded, err := graph.MarshalGraph(g)
	if err != nil {
		return nil, false, err
	}
	key := r.Keyer.RenderKey(cache.Hash(encoded), cache.RenderKeyOpts{
		Format:     opts.Format,
		Selections: opts.selectionsKey(),
	})

	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, keyTypeRender)
		return data, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, keyTypeRender)

	data, err := Render(ctx, g, opts)
	if err != nil {
		return nil, false, err
	}
	if err := r.Cache.Set(ctx, key, data, cache.TTLRender); err != nil {
		r.Logger.Warn("cache write failed", "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, keyTypeRender, len(data))
	}
	return data, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, g graph.Graph, opts RenderOptions) ([]byte, error) {
	data, _, err := r.RenderWithCacheInfo(ctx, g, opts)
	return data, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) graphTTL() time.Duration {
	if r.GraphTTL > 0 {
		return r.GraphTTL
	}
	return cache.TTLGraph
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
