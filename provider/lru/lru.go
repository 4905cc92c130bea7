// Package lru is the in-process fallback store: a size-bounded LRU whose
// entries expire after one fixed TTL.
package lru

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	pr "github.com/unkn0wn-root/memocache/provider"
)

// DefaultSize bounds the number of entries when Config.Size is 0.
const DefaultSize = 10_000

type Config struct {
	Size int           // max entries; 0 => DefaultSize
	TTL  time.Duration // entry lifetime; 0 => entries never expire
}

type LRU struct {
	c *expirable.LRU[string, []byte]
}

var _ pr.Provider = (*LRU)(nil)

func New(cfg Config) *LRU {
	size := cfg.Size
	if size <= 0 {
		size = DefaultSize
	}
	return &LRU{c: expirable.NewLRU[string, []byte](size, nil, cfg.TTL)}
}

func (p *LRU) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := p.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	return v, true, nil
}

// Set ignores both cost and the per-call ttl: the LRU expires every entry
// after the TTL it was built with.
func (p *LRU) Set(_ context.Context, key string, value []byte, _ int64, _ time.Duration) (bool, error) {
	p.c.Add(key, value)
	return true, nil
}

func (p *LRU) Scan(_ context.Context, prefix string) ([]string, error) {
	var out []string
	for _, k := range p.c.Keys() {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out, nil
}

func (p *LRU) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		p.c.Remove(k)
	}
	return nil
}

func (p *LRU) Close(_ context.Context) error {
	p.c.Purge()
	return nil
}

// Len reports the number of live entries.
func (p *LRU) Len() int { return p.c.Len() }
