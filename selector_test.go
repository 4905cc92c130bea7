package memocache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/memocache/config"
	pr "github.com/unkn0wn-root/memocache/provider"
	"github.com/unkn0wn-root/memocache/provider/lru"
	rp "github.com/unkn0wn-root/memocache/provider/redis"
)

func remoteSelector(t *testing.T) (*miniredis.Miniredis, *Selector) {
	t.Helper()
	mr := miniredis.RunT(t)
	cfg := config.Default()
	cfg.RedisURL = "redis://" + mr.Addr()
	s := NewSelector(cfg, nil)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return mr, s
}

func TestSelectorLocalGivesPrivateCaches(t *testing.T) {
	s := NewSelector(config.Default(), nil)
	assert.False(t, s.Remote())

	a, err := s.Provider(time.Minute)
	require.NoError(t, err)
	b, err := s.Provider(time.Minute)
	require.NoError(t, err)

	assert.IsType(t, &lru.LRU{}, a)
	assert.NotSame(t, a, b)
	assert.Nil(t, s.Client())
	assert.NoError(t, s.Close(context.Background()))
}

func TestSelectorRemoteSharesOnePool(t *testing.T) {
	_, s := remoteSelector(t)
	assert.True(t, s.Remote())

	const n = 16
	got := make([]pr.Provider, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := s.Provider(time.Minute)
			assert.NoError(t, err)
			got[i] = p
		}(i)
	}
	wg.Wait()

	require.IsType(t, &rp.Redis{}, got[0])
	for _, p := range got[1:] {
		assert.Same(t, got[0], p)
	}
	require.NotNil(t, s.Client())
	assert.Equal(t, 10, s.Client().Options().PoolSize)
	assert.Equal(t, 5*time.Second, s.Client().Options().ReadTimeout)
}

func TestSelectorClientDuringFirstUse(t *testing.T) {
	_, s := remoteSelector(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := s.Provider(time.Minute)
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_ = s.Client()
		}()
	}
	wg.Wait()
	assert.NotNil(t, s.Client())
	assert.NoError(t, s.Close(context.Background()))
}

func TestSelectorBadURL(t *testing.T) {
	cfg := config.Default()
	cfg.RedisURL = "memcached://nope"
	s := NewSelector(cfg, nil)

	_, err := s.Provider(time.Minute)
	require.Error(t, err)
	_, err = s.Provider(time.Minute)
	require.Error(t, err, "failure is sticky")
}

func TestMemoOverRedis(t *testing.T) {
	ctx := context.Background()
	mr, s := remoteSelector(t)
	p, err := s.Provider(time.Minute)
	require.NoError(t, err)

	calls := 0
	m, err := New(counted(&calls), Options[int]{Name: "double", TTL: 30 * time.Second, Provider: p})
	require.NoError(t, err)

	v, err := m.CallKw(ctx, map[string]any{"scale": 2}, 5)
	require.NoError(t, err)
	assert.Equal(t, 10, v)
	v, err = m.CallKw(ctx, map[string]any{"scale": 2}, 5)
	require.NoError(t, err)
	assert.Equal(t, 10, v)
	assert.Equal(t, 1, calls)

	key := `double__{"args":[5],"kwargs":{"scale":2}}`
	raw, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "10", raw)
	assert.Equal(t, 30*time.Second, mr.TTL(key))

	mr.FastForward(31 * time.Second)
	_, err = m.CallKw(ctx, map[string]any{"scale": 2}, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	_, _ = m.Call(ctx, 7)
	require.NoError(t, mr.Set("doubled__unrelated", "1"))
	assert.Equal(t, 2, m.Clear(ctx))
	assert.True(t, mr.Exists("doubled__unrelated"))
	assert.False(t, mr.Exists(key))
}

func TestMemoSurvivesRedisOutage(t *testing.T) {
	ctx := context.Background()
	mr, s := remoteSelector(t)
	p, err := s.Provider(time.Minute)
	require.NoError(t, err)

	calls := 0
	hooks := &recHooks{}
	m, err := New(counted(&calls), Options[int]{
		Name:      "double",
		Provider:  p,
		Hooks:     hooks,
		OpTimeout: 200 * time.Millisecond,
	})
	require.NoError(t, err)

	mr.Close()
	for i := 0; i < 2; i++ {
		v, err := m.Call(ctx, 4)
		require.NoError(t, err)
		assert.Equal(t, 8, v)
	}
	assert.Equal(t, 2, calls)
	assert.Equal(t, 0, m.Clear(ctx))
	assert.Contains(t, hooks.backendOps, "get")
	assert.Contains(t, hooks.backendOps, "scan")
}
