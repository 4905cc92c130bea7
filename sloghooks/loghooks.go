// Package sloghooks reports memocache events to a slog.Logger. High-volume
// events can be sampled; cache keys are redacted since they carry arguments.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/memocache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	HitEvery    uint64
	MissEvery   uint64
	RejectEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	hitCtr    atomic.Uint64
	missCtr   atomic.Uint64
	rejectCtr atomic.Uint64
}

var _ memocache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) Hit(name string) {
	if h.l == nil || !sample(h.opts.HitEvery, &h.hitCtr) {
		return
	}
	h.l.Debug("memocache.hit", "func", name)
}

func (h *Hooks) Miss(name string) {
	if h.l == nil || !sample(h.opts.MissEvery, &h.missCtr) {
		return
	}
	h.l.Debug("memocache.miss", "func", name)
}

func (h *Hooks) StoreSkipped(name string) {
	if h.l == nil {
		return
	}
	h.l.Debug("memocache.store_skipped", "func", name, "reason", "falsy")
}

func (h *Hooks) ProviderSetRejected(name, key string) {
	if h.l == nil || !sample(h.opts.RejectEvery, &h.rejectCtr) {
		return
	}
	h.l.Warn("memocache.provider_set_rejected",
		"func", name,
		"key", h.redact(key))
}

func (h *Hooks) BackendError(name, op string, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("memocache.backend_error",
		"func", name,
		"op", op,
		"err", err)
}

func (h *Hooks) DecodeError(name, key string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("memocache.decode_error",
		"func", name,
		"key", h.redact(key),
		"err", err)
}

func (h *Hooks) Cleared(name string, n int) {
	if h.l == nil {
		return
	}
	h.l.Info("memocache.cleared",
		"func", name,
		"keys", n)
}
