// Package promhook counts memocache events in Prometheus metrics labelled by
// function name.
package promhook

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/unkn0wn-root/memocache"
)

type Hooks struct {
	hits         *prometheus.CounterVec
	misses       *prometheus.CounterVec
	storeSkipped *prometheus.CounterVec
	setRejected  *prometheus.CounterVec
	backendErrs  *prometheus.CounterVec
	decodeErrs   *prometheus.CounterVec
	clearedKeys  *prometheus.CounterVec
}

var _ memocache.Hooks = (*Hooks)(nil)

// New registers the memocache counters on reg, or on the default registerer
// when reg is nil. Register once per process and share the Hooks.
func New(reg prometheus.Registerer) *Hooks {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Hooks{
		hits: f.NewCounterVec(prometheus.CounterOpts{
			Name: "memocache_hits_total",
			Help: "Calls answered from the cache",
		}, []string{"func"}),
		misses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "memocache_misses_total",
			Help: "Calls that ran the wrapped function",
		}, []string{"func"}),
		storeSkipped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "memocache_store_skipped_total",
			Help: "Falsy results left uncached",
		}, []string{"func"}),
		setRejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "memocache_set_rejected_total",
			Help: "Writes refused by the backend under pressure",
		}, []string{"func"}),
		backendErrs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "memocache_backend_errors_total",
			Help: "Backend failures absorbed by the cache",
		}, []string{"func", "op"}),
		decodeErrs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "memocache_decode_errors_total",
			Help: "Stored entries dropped because they could not be decoded",
		}, []string{"func"}),
		clearedKeys: f.NewCounterVec(prometheus.CounterOpts{
			Name: "memocache_cleared_keys_total",
			Help: "Keys removed by Clear",
		}, []string{"func"}),
	}
}

func (h *Hooks) Hit(name string)                    { h.hits.WithLabelValues(name).Inc() }
func (h *Hooks) Miss(name string)                   { h.misses.WithLabelValues(name).Inc() }
func (h *Hooks) StoreSkipped(name string)           { h.storeSkipped.WithLabelValues(name).Inc() }
func (h *Hooks) ProviderSetRejected(name, _ string) { h.setRejected.WithLabelValues(name).Inc() }
func (h *Hooks) BackendError(name, op string, _ error) {
	h.backendErrs.WithLabelValues(name, op).Inc()
}
func (h *Hooks) DecodeError(name, _ string, _ error) { h.decodeErrs.WithLabelValues(name).Inc() }
func (h *Hooks) Cleared(name string, n int) {
	h.clearedKeys.WithLabelValues(name).Add(float64(n))
}
