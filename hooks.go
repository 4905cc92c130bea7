package memocache

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The cache calls them on hot paths.
type Hooks interface {
	// A call was answered from the cache.
	Hit(name string)
	// A call had to run the wrapped function.
	Miss(name string)

	// A falsy result was not stored because caching falsy results is off.
	StoreSkipped(name string)

	// Provider returned ok=false on Set (backpressure/eviction).
	ProviderSetRejected(name, key string)

	// Provider failure. op ∈ {"get", "set", "scan", "del"}.
	BackendError(name, op string, err error)

	// A stored entry could not be decoded and was dropped.
	DecodeError(name, key string, err error)

	// Clear removed n keys.
	Cleared(name string, n int)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) Hit(string)                         {}
func (NopHooks) Miss(string)                        {}
func (NopHooks) StoreSkipped(string)                {}
func (NopHooks) ProviderSetRejected(string, string) {}
func (NopHooks) BackendError(string, string, error) {}
func (NopHooks) DecodeError(string, string, error)  {}
func (NopHooks) Cleared(string, int)                {}
