package redis

import (
	"context"
	"errors"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/memocache/internal/util"
	pr "github.com/unkn0wn-root/memocache/provider"
)

var ErrNilClient = errors.New("redis provider: nil client")

const (
	defaultScanCount = 100
	defaultDelBatch  = 500
)

type Redis struct {
	rdb         goredis.UniversalClient
	closeClient bool
	scanCount   int64
	delBatch    int
}

var _ pr.Provider = (*Redis)(nil)

type Config struct {
	Client      goredis.UniversalClient
	CloseClient bool  // set true only if this provider exclusively owns the client
	ScanCount   int64 // COUNT hint per SCAN round-trip; 0 => 100
	DelBatch    int   // max keys per DEL; 0 => 500
}

func New(cfg Config) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	p := &Redis{
		rdb:         cfg.Client,
		closeClient: cfg.CloseClient,
		scanCount:   cfg.ScanCount,
		delBatch:    cfg.DelBatch,
	}
	if p.scanCount <= 0 {
		p.scanCount = defaultScanCount
	}
	if p.delBatch <= 0 {
		p.delBatch = defaultDelBatch
	}
	return p, nil
}

func (p *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := p.rdb.Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return nil, false, nil // miss
	}
	if err != nil {
		return nil, false, err // transport/server error
	}
	return b, true, nil
}

func (p *Redis) Set(ctx context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = 0 // treat non-positive TTLs as "no expiry" per provider contract
	}

	err := p.rdb.Set(ctx, key, value, ttl).Err()
	if err != nil {
		return false, err
	}
	return true, nil
}

// Scan walks the keyspace with SCAN MATCH <prefix>*. On a cluster client every
// master is scanned.
func (p *Redis) Scan(ctx context.Context, prefix string) ([]string, error) {
	match := util.GlobEscape(prefix) + "*"

	cc, ok := p.rdb.(*goredis.ClusterClient)
	if !ok {
		return scanNode(ctx, p.rdb, match, p.scanCount)
	}

	var (
		mu   sync.Mutex
		keys []string
	)
	err := cc.ForEachMaster(ctx, func(ctx context.Context, node *goredis.Client) error {
		found, err := scanNode(ctx, node, match, p.scanCount)
		if err != nil {
			return err
		}
		mu.Lock()
		keys = append(keys, found...)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func scanNode(ctx context.Context, c goredis.Cmdable, match string, count int64) ([]string, error) {
	var keys []string
	iter := c.Scan(ctx, 0, match, count).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

// Del issues DEL in batches. Cluster clients pipeline one DEL per key since a
// multi-key DEL must stay within one hash slot.
func (p *Redis) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if _, ok := p.rdb.(*goredis.ClusterClient); ok {
		_, err := p.rdb.Pipelined(ctx, func(pipe goredis.Pipeliner) error {
			for _, k := range keys {
				pipe.Del(ctx, k)
			}
			return nil
		})
		return err
	}
	for start := 0; start < len(keys); start += p.delBatch {
		end := min(start+p.delBatch, len(keys))
		if err := p.rdb.Del(ctx, keys[start:end]...).Err(); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying redis client only when this provider owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (p *Redis) Close(context.Context) error {
	if p.closeClient {
		if err := p.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}
