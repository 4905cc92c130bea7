package memocache

import (
	"context"
	"strings"
	"testing"
	"time"
)

type user struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type userRepo struct {
	region string
	calls  *int
}

func (r *userRepo) find(_ context.Context, id string) (user, error) {
	*r.calls++
	return user{ID: id, Name: "user-" + id}, nil
}

func lookupUser(_ context.Context, id string) (user, error) {
	return user{ID: id}, nil
}

func TestWrapTyped(t *testing.T) {
	ctx := context.Background()
	mp := newMemProvider()
	calls := 0
	f, err := Wrap(func(_ context.Context, id string) (user, error) {
		calls++
		return user{ID: id, Name: "Ada"}, nil
	}, Options[user]{Name: "user", Provider: mp})
	if err != nil {
		t.Fatalf("Wrap: %v", err)
	}

	for i := 0; i < 2; i++ {
		got, err := f.Call(ctx, "u1")
		if err != nil || got != (user{ID: "u1", Name: "Ada"}) {
			t.Fatalf("Call: got=%v err=%v", got, err)
		}
	}
	if calls != 1 {
		t.Fatalf("calls=%d want 1", calls)
	}
	if f.Memo().Name() != "user" {
		t.Fatalf("name %q", f.Memo().Name())
	}
	if n := f.Clear(ctx); n != 1 {
		t.Fatalf("Clear=%d want 1", n)
	}
}

func TestWrapDefaultsNameToFunction(t *testing.T) {
	f, err := Wrap(lookupUser, Options[user]{Provider: newMemProvider()})
	if err != nil {
		t.Fatalf("Wrap: %v", err)
	}
	name := f.Memo().Name()
	if !strings.HasSuffix(name, "memocache.lookupUser") {
		t.Fatalf("name %q", name)
	}
}

func TestWrapNil(t *testing.T) {
	if _, err := Wrap[string, user](nil, Options[user]{}); err != ErrNilFunc {
		t.Fatalf("err=%v", err)
	}
	if _, err := Wrap2[string, int, user](nil, Options[user]{}); err != ErrNilFunc {
		t.Fatalf("err=%v", err)
	}
	if _, err := WrapMethod[*userRepo, string, user](nil, Options[user]{}); err != ErrNilFunc {
		t.Fatalf("err=%v", err)
	}
}

func TestWrap2KeysOnBothArgs(t *testing.T) {
	ctx := context.Background()
	calls := 0
	f, err := Wrap2(func(_ context.Context, a string, b int) (string, error) {
		calls++
		return strings.Repeat(a, b), nil
	}, Options[string]{Name: "repeat", Provider: newMemProvider()})
	if err != nil {
		t.Fatalf("Wrap2: %v", err)
	}
	if got, _ := f.Call(ctx, "ab", 2); got != "abab" {
		t.Fatalf("got %q", got)
	}
	_, _ = f.Call(ctx, "ab", 2)
	_, _ = f.Call(ctx, "ab", 3)
	if calls != 2 {
		t.Fatalf("calls=%d want 2", calls)
	}
	if n := f.Clear(ctx); n != 2 {
		t.Fatalf("Clear=%d want 2", n)
	}
	if f.Memo() == nil {
		t.Fatalf("Memo nil")
	}
}

func TestWrapMethodSharesAcrossInstances(t *testing.T) {
	ctx := context.Background()
	calls := 0
	find, err := WrapMethod(func(ctx context.Context, r *userRepo, id string) (user, error) {
		return r.find(ctx, id)
	}, Options[user]{Name: "userRepo.find", Provider: newMemProvider()})
	if err != nil {
		t.Fatalf("WrapMethod: %v", err)
	}
	if !find.Memo().isMethod {
		t.Fatalf("WrapMethod must force method mode")
	}

	eu := &userRepo{region: "eu", calls: &calls}
	us := &userRepo{region: "us", calls: &calls}
	a, _ := find.Call(ctx, eu, "7")
	b, _ := find.Call(ctx, us, "7")
	if a != b || calls != 1 {
		t.Fatalf("a=%v b=%v calls=%d", a, b, calls)
	}
	if find.Clear(ctx) != 1 {
		t.Fatalf("Clear should remove the shared entry")
	}
}

func TestDecorateFactory(t *testing.T) {
	ctx := context.Background()
	mp := newMemProvider()
	cached := Decorate[int](2*time.Second, false, false, Options[int]{Provider: mp})

	calls := 0
	count, err := cached(func(_ context.Context, a Args) (int, error) {
		calls++
		return len(a.Positional), nil
	})
	if err != nil {
		t.Fatalf("decorate: %v", err)
	}
	if count.ttl != 2*time.Second || count.cacheFalsy || count.isMethod {
		t.Fatalf("options not applied: ttl=%v falsy=%v method=%v", count.ttl, count.cacheFalsy, count.isMethod)
	}

	_, _ = count.Call(ctx)       // 0 => falsy, not stored
	_, _ = count.Call(ctx)       // computes again
	_, _ = count.Call(ctx, 1, 2) // stored
	_, _ = count.Call(ctx, 1, 2) // hit
	if calls != 3 {
		t.Fatalf("calls=%d want 3", calls)
	}
	mp.advance(3 * time.Second)
	_, _ = count.Call(ctx, 1, 2)
	if calls != 4 {
		t.Fatalf("entry should expire after ttl, calls=%d", calls)
	}
}
