package memocache

import (
	"context"
	"time"
)

// Decorate returns a decorator that memoizes functions for ttl. isMethod drops
// the receiver from keys; cacheFalsy=false leaves falsy results uncached.
// base supplies the remaining options; its Name, if set, applies to every
// function decorated, so leave it empty when decorating more than one.
//
//	cached := memocache.Decorate[[]User](time.Minute, false, true, opts)
//	listUsers, err := cached(listUsersImpl)
//	users, err := listUsers.Call(ctx, "acme")
//	listUsers.Clear(ctx)
func Decorate[R any](ttl time.Duration, isMethod, cacheFalsy bool, base Options[R]) func(CallableFunc[R]) (*Memo[R], error) {
	return func(fn CallableFunc[R]) (*Memo[R], error) {
		o := base
		o.TTL = ttl
		o.IsMethod = isMethod
		o.SkipFalsy = !cacheFalsy
		return New(fn, o)
	}
}

// Func is a memoized func(ctx, A) (R, error).
type Func[A, R any] struct{ m *Memo[R] }

// Wrap memoizes a one-argument function.
func Wrap[A, R any](fn func(context.Context, A) (R, error), opts Options[R]) (*Func[A, R], error) {
	if fn == nil {
		return nil, ErrNilFunc
	}
	if opts.Name == "" {
		opts.Name = FuncName(fn)
	}
	m, err := newMemo[R](CallableFunc[R](func(ctx context.Context, args Args) (R, error) {
		return fn(ctx, argAt[A](args, 0))
	}), opts)
	if err != nil {
		return nil, err
	}
	return &Func[A, R]{m: m}, nil
}

func (f *Func[A, R]) Call(ctx context.Context, a A) (R, error) { return f.m.Call(ctx, a) }
func (f *Func[A, R]) Clear(ctx context.Context) int            { return f.m.Clear(ctx) }
func (f *Func[A, R]) Memo() *Memo[R]                           { return f.m }

// Func2 is a memoized func(ctx, A, B) (R, error).
type Func2[A, B, R any] struct{ m *Memo[R] }

// Wrap2 memoizes a two-argument function.
func Wrap2[A, B, R any](fn func(context.Context, A, B) (R, error), opts Options[R]) (*Func2[A, B, R], error) {
	if fn == nil {
		return nil, ErrNilFunc
	}
	if opts.Name == "" {
		opts.Name = FuncName(fn)
	}
	m, err := newMemo[R](CallableFunc[R](func(ctx context.Context, args Args) (R, error) {
		return fn(ctx, argAt[A](args, 0), argAt[B](args, 1))
	}), opts)
	if err != nil {
		return nil, err
	}
	return &Func2[A, B, R]{m: m}, nil
}

func (f *Func2[A, B, R]) Call(ctx context.Context, a A, b B) (R, error) { return f.m.Call(ctx, a, b) }
func (f *Func2[A, B, R]) Clear(ctx context.Context) int                 { return f.m.Clear(ctx) }
func (f *Func2[A, B, R]) Memo() *Memo[R]                                { return f.m }

// Method is a memoized method expression func(ctx, T, A) (R, error). The
// receiver is not part of the key: every receiver shares one set of entries.
type Method[T, A, R any] struct{ m *Memo[R] }

// WrapMethod memoizes a method expression such as (*Repo).Find adapted to
// take ctx first. IsMethod is forced on.
func WrapMethod[T, A, R any](fn func(context.Context, T, A) (R, error), opts Options[R]) (*Method[T, A, R], error) {
	if fn == nil {
		return nil, ErrNilFunc
	}
	if opts.Name == "" {
		opts.Name = FuncName(fn)
	}
	opts.IsMethod = true
	m, err := newMemo[R](CallableFunc[R](func(ctx context.Context, args Args) (R, error) {
		return fn(ctx, argAt[T](args, 0), argAt[A](args, 1))
	}), opts)
	if err != nil {
		return nil, err
	}
	return &Method[T, A, R]{m: m}, nil
}

func (f *Method[T, A, R]) Call(ctx context.Context, recv T, a A) (R, error) {
	return f.m.Call(ctx, recv, a)
}
func (f *Method[T, A, R]) Clear(ctx context.Context) int { return f.m.Clear(ctx) }
func (f *Method[T, A, R]) Memo() *Memo[R]                { return f.m }

// argAt returns the i-th positional argument as T, or T's zero value when the
// argument is absent or nil.
func argAt[T any](args Args, i int) T {
	var zero T
	if i >= len(args.Positional) {
		return zero
	}
	v, ok := args.Positional[i].(T)
	if !ok {
		return zero
	}
	return v
}
