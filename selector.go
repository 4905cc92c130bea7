package memocache

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/memocache/config"
	pr "github.com/unkn0wn-root/memocache/provider"
	"github.com/unkn0wn-root/memocache/provider/lru"
	rp "github.com/unkn0wn-root/memocache/provider/redis"
)

// Selector chooses the backend for memoized functions. Build one at startup
// and pass its providers into Options.
//
// With a redis URL configured, the first Provider call opens one shared
// connection pool and every later call reuses it. Without one, each call gets
// its own in-process cache, so entries are never shared across functions or
// processes.
type Selector struct {
	cfg config.Config
	log Logger

	once   sync.Once
	mu     sync.Mutex // guards client
	client *goredis.Client
	remote *rp.Redis
	err    error

	warnOnce sync.Once
}

func NewSelector(cfg config.Config, log Logger) *Selector {
	return &Selector{cfg: cfg, log: coalesce[Logger](log, NopLogger{})}
}

// Remote reports whether providers are backed by redis.
func (s *Selector) Remote() bool { return s.cfg.Remote() }

// Provider returns the backend for a function cached for ttl.
func (s *Selector) Provider(ttl time.Duration) (pr.Provider, error) {
	if !s.cfg.Remote() {
		s.warnOnce.Do(func() {
			s.log.Warn("REDIS_URL is not set, falling back to memory cache", nil)
		})
		return lru.New(lru.Config{Size: s.cfg.LocalSize, TTL: ttl}), nil
	}
	s.once.Do(s.connect)
	if s.err != nil {
		return nil, s.err
	}
	return s.remote, nil
}

func (s *Selector) connect() {
	s.log.Info("redis pool initializing", Fields{"pool_size": s.cfg.PoolSize})
	opt, err := goredis.ParseURL(s.cfg.RedisURL)
	if err != nil {
		s.err = errors.Wrap(err, "memocache: parse redis url")
		return
	}
	if s.cfg.PoolSize > 0 {
		opt.PoolSize = s.cfg.PoolSize
	}
	if s.cfg.DialTimeout > 0 {
		opt.DialTimeout = s.cfg.DialTimeout
	}
	if s.cfg.ReadTimeout > 0 {
		opt.ReadTimeout = s.cfg.ReadTimeout
	}
	if s.cfg.WriteTimeout > 0 {
		opt.WriteTimeout = s.cfg.WriteTimeout
	}
	client := goredis.NewClient(opt)
	s.mu.Lock()
	s.client = client
	s.mu.Unlock()
	s.remote, s.err = rp.New(rp.Config{Client: client})
}

// Client returns the shared redis client, or nil before the first remote
// Provider call and in local mode.
func (s *Selector) Client() *goredis.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client
}

// Close closes the shared pool if one was opened. Long-lived processes may
// never call it.
func (s *Selector) Close(context.Context) error {
	client := s.Client()
	if client == nil {
		return nil
	}
	if err := client.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
		return err
	}
	return nil
}
