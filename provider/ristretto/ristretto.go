package ristretto

import (
	"context"
	"errors"
	"strings"
	"time"

	rc "github.com/dgraph-io/ristretto"
	"github.com/puzpuzpuz/xsync/v3"

	pr "github.com/unkn0wn-root/memocache/provider"
)

// Provider stores entries in ristretto. Ristretto hashes keys and cannot list
// them, so a side index of written keys backs Scan; entries evicted or
// expired behind our back are pruned from the index lazily on Scan.
type Provider struct {
	c     *rc.Cache
	index *xsync.MapOf[string, struct{}]
	sync  bool
}

var _ pr.Provider = (*Provider)(nil)

type Config struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
	Metrics     bool
	// SyncWrites waits for the set buffers to drain after every Set so the
	// value is visible to the next Get. Ristretto is eventually consistent otherwise.
	SyncWrites bool
	// Cost in Ristretto is provided by the caller (memocache passes cost per Set).
}

func New(cfg Config) (*Provider, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, errors.New("ristretto: invalid config")
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}
	return &Provider{c: c, index: xsync.NewMapOf[string, struct{}](), sync: cfg.SyncWrites}, nil
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := p.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, _ := v.([]byte)
	if b == nil {
		// self-heal: drop unexpected entry shape
		p.c.Del(key)
		p.index.Delete(key)
		return nil, false, nil
	}
	return b, true, nil
}

func (p *Provider) Set(_ context.Context, key string, value []byte, cost int64, ttl time.Duration) (bool, error) {
	ok := p.c.SetWithTTL(key, value, cost, ttl)
	if !ok {
		return false, nil
	}
	p.index.Store(key, struct{}{})
	if p.sync {
		p.c.Wait()
	}
	return true, nil
}

func (p *Provider) Scan(_ context.Context, prefix string) ([]string, error) {
	var out []string
	p.index.Range(func(k string, _ struct{}) bool {
		if !strings.HasPrefix(k, prefix) {
			return true
		}
		if _, ok := p.c.Get(k); !ok {
			p.index.Delete(k)
			return true
		}
		out = append(out, k)
		return true
	})
	return out, nil
}

func (p *Provider) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		p.c.Del(k)
		p.index.Delete(k)
	}
	return nil
}

func (p *Provider) Close(_ context.Context) error {
	p.c.Wait()
	p.c.Close()
	p.index.Clear()
	return nil
}

// Helper to expose metrics if desired by the application (not part of provider.Provider).
func (p *Provider) Metrics() *rc.Metrics { return p.c.Metrics }
