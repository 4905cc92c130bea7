package memocache

import (
	"context"
	"reflect"
	"runtime"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	c "github.com/unkn0wn-root/memocache/codec"
	pr "github.com/unkn0wn-root/memocache/provider"
	"github.com/unkn0wn-root/memocache/provider/lru"
)

// Memo wraps a function with a cache-aside lookup keyed by its arguments.
//
// Provider faults never reach the caller: a failed get is a miss, a failed set
// is skipped, a failed Clear removes nothing. Errors from the wrapped function
// are returned unmodified and are never cached. Concurrent misses on the same
// key each run the function and each store their result.
type Memo[R any] struct {
	name   string
	prefix string
	fn     Callable[R]

	provider pr.Provider
	codec    c.Codec[R]
	keys     KeyCodec
	log      Logger
	hooks    Hooks

	ttl            time.Duration
	isMethod       bool
	cacheFalsy     bool
	enabled        bool
	opTimeout      time.Duration
	computeSetCost SetCostFunc
}

// New wraps fn. See Options for defaults.
func New[R any](fn CallableFunc[R], opts Options[R]) (*Memo[R], error) {
	if fn == nil {
		return nil, ErrNilFunc
	}
	if opts.Name == "" {
		opts.Name = FuncName(fn)
	}
	return newMemo[R](fn, opts)
}

func newMemo[R any](fn Callable[R], opts Options[R]) (*Memo[R], error) {
	if opts.Name == "" {
		return nil, ErrNoName
	}
	if strings.Contains(opts.Name, keySep) {
		return nil, errors.Wrapf(ErrBadName, "name %q", opts.Name)
	}
	if opts.TTL < 0 {
		return nil, errors.Newf("memocache: negative ttl %s", opts.TTL)
	}
	if opts.Codec == nil && reflect.TypeFor[R]().Kind() == reflect.Interface {
		return nil, errors.Wrapf(ErrInterfaceResult, "%s: use a concrete result type", opts.Name)
	}

	m := &Memo[R]{
		name:       opts.Name,
		prefix:     opts.Keys.Prefix(opts.Name),
		fn:         fn,
		keys:       opts.Keys,
		isMethod:   opts.IsMethod,
		cacheFalsy: !opts.SkipFalsy,
		enabled:    !opts.Disabled,
	}

	// defaults
	m.log = coalesce[Logger](opts.Logger, NopLogger{})
	m.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	m.codec = coalesce[c.Codec[R]](opts.Codec, c.JSON[R]{})
	m.ttl = coalesce[time.Duration](opts.TTL, defaultTTL)
	m.opTimeout = coalesce[time.Duration](opts.OpTimeout, defaultOpTimeout)

	if opts.ComputeSetCost != nil {
		m.computeSetCost = opts.ComputeSetCost
	} else {
		m.computeSetCost = func(string, []byte) int64 { return 1 }
	}

	if opts.Provider != nil {
		m.provider = opts.Provider
	} else {
		m.log.Warn("no provider configured, falling back to memory cache", Fields{"func": m.name, "ttl": m.ttl})
		m.provider = lru.New(lru.Config{TTL: m.ttl})
	}
	return m, nil
}

// Name is the key namespace of this function.
func (m *Memo[R]) Name() string { return m.name }

// Call runs the memoized function with positional arguments.
func (m *Memo[R]) Call(ctx context.Context, args ...any) (R, error) {
	return m.Invoke(ctx, Args{Positional: args})
}

// CallKw runs the memoized function with named and positional arguments.
func (m *Memo[R]) CallKw(ctx context.Context, kwargs map[string]any, args ...any) (R, error) {
	return m.Invoke(ctx, Args{Positional: args, Keyword: kwargs})
}

// Invoke returns the cached result for args or computes and stores it.
// A *SerializationError is returned when args cannot form a key (the function
// does not run) or when the result cannot be encoded (the result is returned
// alongside the error).
func (m *Memo[R]) Invoke(ctx context.Context, args Args) (R, error) {
	if !m.enabled {
		return m.fn.Call(ctx, args)
	}

	key, err := m.keys.Derive(m.name, args.Positional, args.Keyword, m.isMethod)
	if err != nil {
		var zero R
		return zero, err
	}

	if v, ok := m.lookup(ctx, key); ok {
		return v, nil
	}

	m.log.Debug("cache miss", Fields{"func": m.name, "key": key})
	m.hooks.Miss(m.name)

	res, err := m.fn.Call(ctx, args)
	if err != nil {
		return res, err
	}

	if !m.cacheFalsy && IsFalsy(res) {
		m.log.Debug("caching falsy result is disabled", Fields{"func": m.name})
		m.hooks.StoreSkipped(m.name)
		return res, nil
	}

	if err := m.store(ctx, key, res); err != nil {
		return res, err
	}
	return res, nil
}

// Clear drops every cached entry of this function and reports how many keys
// were removed. Failures are logged and remove nothing. Concurrent callers may
// repopulate keys while Clear runs.
func (m *Memo[R]) Clear(ctx context.Context) int {
	if !m.enabled {
		return 0
	}
	qctx, cancel := m.opCtx(ctx)
	defer cancel()

	keys, err := m.provider.Scan(qctx, m.prefix)
	if err != nil {
		m.backendFault("unable to clear cache", "scan", "", err)
		return 0
	}
	if len(keys) > 0 {
		if err := m.provider.Del(qctx, keys...); err != nil {
			m.backendFault("unable to clear cache", "del", "", err)
			return 0
		}
	}
	m.log.Debug("cache cleared", Fields{"func": m.name, "keys": len(keys)})
	m.hooks.Cleared(m.name, len(keys))
	return len(keys)
}

func (m *Memo[R]) lookup(ctx context.Context, key string) (R, bool) {
	var zero R
	qctx, cancel := m.opCtx(ctx)
	defer cancel()

	raw, ok, err := m.provider.Get(qctx, key)
	if err != nil {
		m.backendFault("unable to use cache", "get", key, err)
		return zero, false
	}
	if !ok {
		return zero, false
	}

	v, err := m.codec.Decode(raw)
	if err != nil {
		m.log.Warn("dropping undecodable cache entry", Fields{"func": m.name, "key": key, "err": err})
		m.hooks.DecodeError(m.name, key, err)
		if err := m.provider.Del(qctx, key); err != nil {
			m.log.Debug("unable to drop undecodable cache entry", Fields{"func": m.name, "key": key, "err": err})
		}
		return zero, false
	}

	m.log.Debug("cache hit", Fields{"func": m.name, "key": key})
	m.hooks.Hit(m.name)
	return v, true
}

func (m *Memo[R]) store(ctx context.Context, key string, res R) error {
	raw, err := m.codec.Encode(res)
	if err != nil {
		return &SerializationError{Func: m.name, Op: OpValue, Err: err}
	}

	qctx, cancel := m.opCtx(ctx)
	defer cancel()

	ok, err := m.provider.Set(qctx, key, raw, m.computeSetCost(key, raw), m.ttl)
	if err != nil {
		m.backendFault("unable to set cache", "set", key, err)
		return nil
	}
	if !ok {
		m.log.Debug("cache set rejected by provider (pressure)", Fields{"func": m.name, "key": key})
		m.hooks.ProviderSetRejected(m.name, key)
		return nil
	}
	m.log.Debug("cache set", Fields{"func": m.name, "key": key, "ttl": m.ttl})
	return nil
}

func (m *Memo[R]) backendFault(msg, op, key string, err error) {
	be := &BackendError{Func: m.name, Op: op, Err: err}
	f := Fields{"func": m.name, "op": op, "err": be}
	if key != "" {
		f["key"] = key
	}
	m.log.Error(msg, f)
	m.hooks.BackendError(m.name, op, be)
}

func (m *Memo[R]) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.opTimeout < 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, m.opTimeout)
}

// FuncName returns the Go runtime name of fn, e.g. "github.com/acme/users.Lookup".
// Method values lose their "-fm" suffix.
func FuncName(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return ""
	}
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return ""
	}
	return strings.TrimSuffix(f.Name(), "-fm")
}
