// Package codec converts cached results to and from the bytes a provider stores.
//
// Every codec must round-trip: Decode(Encode(v)) is equal to v for the value
// shapes it supports, including empty containers and zero values, since
// memocache may be configured to cache falsy results.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
