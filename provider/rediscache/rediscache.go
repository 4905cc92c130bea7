// Package rediscache is a two-tier provider: a per-process TinyLFU tier in
// front of redis, via go-redis/cache.
//
// The local tier is not shared. Del removes keys from this process's tier and
// from redis, but other processes keep serving their local copies until the
// local TTL runs out. Keep LocalTTL short when namespaces are cleared often.
package rediscache

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/cache/v9"
	goredis "github.com/redis/go-redis/v9"

	pr "github.com/unkn0wn-root/memocache/provider"
	rp "github.com/unkn0wn-root/memocache/provider/redis"
)

type Config struct {
	Client    goredis.UniversalClient
	LocalSize int           // TinyLFU capacity; 0 => 10_000
	LocalTTL  time.Duration // lifetime in the local tier; 0 => 1m
}

type Provider struct {
	c    *cache.Cache
	scan *rp.Redis // SCAN/DEL against the shared tier
}

var _ pr.Provider = (*Provider)(nil)

func New(cfg Config) (*Provider, error) {
	if cfg.Client == nil {
		return nil, rp.ErrNilClient
	}
	size := cfg.LocalSize
	if size <= 0 {
		size = 10_000
	}
	ttl := cfg.LocalTTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	scan, err := rp.New(rp.Config{Client: cfg.Client})
	if err != nil {
		return nil, err
	}
	return &Provider{
		c: cache.New(&cache.Options{
			Redis:      cfg.Client,
			LocalCache: cache.NewTinyLFU(size, ttl),
		}),
		scan: scan,
	}, nil
}

func (p *Provider) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var b []byte
	err := p.c.Get(ctx, key, &b)
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (p *Provider) Set(ctx context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	err := p.c.Set(&cache.Item{
		Ctx:   ctx,
		Key:   key,
		Value: value,
		TTL:   ttl,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (p *Provider) Scan(ctx context.Context, prefix string) ([]string, error) {
	return p.scan.Scan(ctx, prefix)
}

func (p *Provider) Del(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		p.c.DeleteFromLocalCache(k)
	}
	return p.scan.Del(ctx, keys...)
}

// Close is a no-op; the caller owns the redis client.
func (p *Provider) Close(context.Context) error { return nil }
