// Package asynchook runs memocache hooks off the call path. Events are queued
// to a fixed worker pool and dropped when the queue is full.
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{HitEvery: 100})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	users, _ := memocache.Wrap(lookupUser, memocache.Options[User]{
//	    Provider: provider,
//	    Hooks:    hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/memocache"
)

type Hooks struct {
	inner   memocache.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	dropped atomic.Uint64
}

var _ memocache.Hooks = (*Hooks)(nil)

func New(inner memocache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers. Events sent after Close
// are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

// Dropped reports how many events were discarded.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	defer func() {
		// send on closed queue
		if recover() != nil {
			h.dropped.Add(1)
		}
	}()
	select {
	case h.q <- f:
	default: // drop
		h.dropped.Add(1)
	}
}

func (h *Hooks) Hit(name string)          { h.try(func() { h.inner.Hit(name) }) }
func (h *Hooks) Miss(name string)         { h.try(func() { h.inner.Miss(name) }) }
func (h *Hooks) StoreSkipped(name string) { h.try(func() { h.inner.StoreSkipped(name) }) }
func (h *Hooks) Cleared(name string, n int) {
	h.try(func() { h.inner.Cleared(name, n) })
}
func (h *Hooks) ProviderSetRejected(name, key string) {
	h.try(func() { h.inner.ProviderSetRejected(name, key) })
}
func (h *Hooks) BackendError(name, op string, err error) {
	h.try(func() { h.inner.BackendError(name, op, err) })
}
func (h *Hooks) DecodeError(name, key string, err error) {
	h.try(func() { h.inner.DecodeError(name, key, err) })
}
