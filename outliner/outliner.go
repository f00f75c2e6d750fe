// Package outliner serves outlines for named documents, caching the results.
package outliner

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/joeychilson/regexpoutline/cache"
	"github.com/joeychilson/regexpoutline/config"
	"github.com/joeychilson/regexpoutline/document"
	"github.com/joeychilson/regexpoutline/logger"
	"github.com/joeychilson/regexpoutline/outline"
	"github.com/joeychilson/regexpoutline/rules"
)

// Result is the outline of one document.
type Result struct {
	Name   string          `json:"name"`
	Ext    string          `json:"ext,omitempty"`
	Cached bool            `json:"cached"`
	Nodes  []*outline.Node `json:"nodes"`
}

// Outliner builds outlines with a fixed rule configuration.
type Outliner struct {
	builder     *outline.Builder
	cache       cache.Cache
	fingerprint string
	logger      logger.Logger
}

// New creates an Outliner for already resolved rule sets.
func New(sets []rules.RuleSet) *Outliner {
	return &Outliner{
		builder:     outline.New(sets),
		fingerprint: rules.Fingerprint(sets),
		logger:      logger.Noop(),
	}
}

// NewFromConfig creates an Outliner from a service configuration, including
// its cache backend.
func NewFromConfig(cfg *config.Config, log logger.Logger) (*Outliner, error) {
	if cfg == nil {
		cfg = config.New()
	}
	if log == nil {
		log = logger.Noop()
	}

	o := New(cfg.LoadRules(log)).WithLogger(log)

	switch cfg.Cache.Backend {
	case config.CacheBackendMemory, "":
		o.cache = cache.NewMemoryCache(cache.Config{TTL: cfg.Cache.GetTTL(), Size: cfg.Cache.GetSize()})
	case config.CacheBackendRedis:
		rc, err := cache.NewRedisCacheFromURL(cfg.Cache.RedisURL, cfg.Cache.GetPrefix(), cache.Config{TTL: cfg.Cache.GetTTL()})
		if err != nil {
			return nil, fmt.Errorf("failed to create redis cache: %w", err)
		}
		o.cache = rc
	}

	return o, nil
}

// WithLogger returns the Outliner with the given logger.
func (o *Outliner) WithLogger(log logger.Logger) *Outliner {
	if log == nil {
		log = logger.Noop()
	}
	o.logger = log
	o.builder = outline.New(o.builder.RuleSets(), outline.WithLogger(log))
	return o
}

// WithCache returns the Outliner with the given cache.
func (o *Outliner) WithCache(c cache.Cache) *Outliner {
	o.cache = c
	return o
}

// RuleSets returns the resolved rule sets.
func (o *Outliner) RuleSets() []rules.RuleSet {
	return o.builder.RuleSets()
}

// Outline returns the outline of the document called name with the given
// content. Only a cancelled context is an error; cache failures are logged
// and the outline is built directly.
func (o *Outliner) Outline(ctx context.Context, name, content string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Result{Name: name}
	if set, ok := rules.Select(o.RuleSets(), name); ok {
		result.Ext = set.Ext
	} else {
		result.Nodes = []*outline.Node{}
		return result, nil
	}

	key := cache.Key(name, content, o.fingerprint)
	if nodes, ok := o.fromCache(ctx, key); ok {
		result.Nodes = nodes
		result.Cached = true
		return result, nil
	}

	result.Nodes = o.builder.Build(ctx, document.New(name, content))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	o.toCache(ctx, key, result.Nodes)
	return result, nil
}

// OutlineDocument builds the outline of an already loaded document, bypassing the cache.
func (o *Outliner) OutlineDocument(ctx context.Context, doc document.Document) []*outline.Node {
	return o.builder.Build(ctx, doc)
}

// Close releases the cache.
func (o *Outliner) Close() error {
	if o.cache != nil {
		return o.cache.Close()
	}
	return nil
}

func (o *Outliner) fromCache(ctx context.Context, key string) ([]*outline.Node, bool) {
	if o.cache == nil {
		return nil, false
	}
	entry, err := o.cache.Get(ctx, key)
	if err != nil {
		o.logger.Warn("cache get failed", "error", err)
		return nil, false
	}
	if entry == nil {
		return nil, false
	}
	var nodes []*outline.Node
	if err := json.Unmarshal(entry.Body, &nodes); err != nil {
		o.logger.Warn("discarding unreadable cache entry", "error", err)
		return nil, false
	}
	return nodes, true
}

func (o *Outliner) toCache(ctx context.Context, key string, nodes []*outline.Node) {
	if o.cache == nil {
		return
	}
	body, err := json.Marshal(nodes)
	if err != nil {
		o.logger.Warn("failed to encode outline for cache", "error", err)
		return
	}
	if err := o.cache.Set(ctx, &cache.Entry{Key: key, Body: body}); err != nil {
		o.logger.Warn("cache set failed", "error", err)
	}
}
