// Package memocache memoizes functions in a shared cache. The result of a
// call is stored under a key derived from the function name and its
// arguments; later calls with equal arguments return the stored result until
// its TTL expires.
//
// Components:
//   - Memo[R]: the cache-aside wrapper around one function (see also Wrap,
//     Wrap2, WrapMethod and Decorate for typed and factory forms).
//   - KeyCodec: derives "<name>__<json args>" keys.
//   - Provider: byte store with TTL, scan and delete (Redis, LRU, Ristretto,
//     BigCache, go-redis/cache).
//   - Codec[R]: (de)serializes results, JSON by default.
//   - Selector: picks one shared Redis pool when a URL is configured, else a
//     private in-process LRU per function.
//
// Keys:
//
//	<name>__{"args":[...],"kwargs":{...}}
//
// Cache-aside:
//
//	v, ok := provider.Get(key) // hit => decode and return
//	v = fn(args)               // miss or backend failure
//	provider.Set(key, v, ttl)  // unless v is falsy and SkipFalsy is set
//
// Backend failures never reach the caller; the function runs as if the cache
// were absent. Errors from the function are returned unchanged and never
// cached. Clear removes every key under "<name>__".
package memocache
