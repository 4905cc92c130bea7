package memocache

import (
	"context"
	"time"

	c "github.com/unkn0wn-root/memocache/codec"
	pr "github.com/unkn0wn-root/memocache/provider"
)

// SetCostFunc returns the admission cost of one encoded entry for providers
// that weigh entries (ristretto). The default cost is 1.
type SetCostFunc func(key string, raw []byte) int64

// Args is one call's arguments: positional values plus named ones.
// Both must be encodable as JSON; they form the cache key.
type Args struct {
	Positional []any
	Keyword    map[string]any
}

// Callable is the single-method capability a Memo wraps.
type Callable[R any] interface {
	Call(ctx context.Context, args Args) (R, error)
}

// CallableFunc adapts a plain function to Callable.
type CallableFunc[R any] func(ctx context.Context, args Args) (R, error)

func (f CallableFunc[R]) Call(ctx context.Context, args Args) (R, error) { return f(ctx, args) }

// Options configure one memoized function.
// Everything is optional; the name defaults to the Go name of the function.
type Options[R any] struct {
	Name string // key namespace; must not contain "__"

	TTL       time.Duration // 0 => 10m
	IsMethod  bool          // drop the first positional arg (receiver) from keys
	SkipFalsy bool          // do not store falsy results (default: store them)

	Provider pr.Provider // nil => in-process LRU expiring after TTL
	Codec    c.Codec[R]  // nil => codec.JSON[R]; required when R is an interface type
	Keys     KeyCodec

	Logger         Logger        // if nil, NopLogger is used
	Hooks          Hooks         // if nil, NopHooks is used
	OpTimeout      time.Duration // per provider call; 0 => 5s, < 0 => none
	ComputeSetCost SetCostFunc   // default 1
	Disabled       bool          // call straight through, never touch the provider
}
