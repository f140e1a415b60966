package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/kintree/pkg/cache"
	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/observability"
)

// CacheOptions configures Cached.
type CacheOptions struct {
	// Source names the wrapped backend in cache keys ("mongo", "dynamo").
	Source string
	Keyer  cache.Keyer
	TTL    time.Duration // zero means cache.TTLFamily
}

type cached struct {
	inner Store
	cache cache.Cache
	opts  CacheOptions
}

// Cached returns a read-through Store: single families are served from c
// when present and written to c after a load from inner. Families lists
// always go to inner. Cache failures are ignored and fall back to inner.
func Cached(inner Store, c cache.Cache, opts CacheOptions) Store {
	if opts.Keyer == nil {
		opts.Keyer = cache.NewDefaultKeyer()
	}
	if opts.TTL == 0 {
		opts.TTL = cache.TTLFamily
	}
	if opts.Source == "" {
		opts.Source = "store"
	}
	return &cached{inner: inner, cache: c, opts: opts}
}

func (s *cached) Family(ctx context.Context, id string) (*family.Family, error) {
	key := s.opts.Keyer.FamilyKey(s.opts.Source, id)
	if data, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		var f family.Family
		if json.Unmarshal(data, &f) == nil {
			observability.Cache().OnCacheHit(ctx, "family")
			return &f, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "family")

	f, err := s.inner.Family(ctx, id)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode family %s", id)
	}
	if s.cache.Set(ctx, key, data, s.opts.TTL) == nil {
		observability.Cache().OnCacheSet(ctx, "family", len(data))
	}
	return f, nil
}

func (s *cached) Families(ctx context.Context) ([]*family.Family, error) {
	return s.inner.Families(ctx)
}

// Close closes the wrapped store. The cache belongs to the caller.
func (s *cached) Close() error { return s.inner.Close() }
