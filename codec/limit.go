package codec

import (
	"github.com/cockroachdb/errors"
)

// ErrTooLarge is returned when a payload exceeds a Limit bound.
var ErrTooLarge = errors.New("codec: payload too large")

// Limit wraps another codec and bounds payload sizes in both directions.
// A value <= 0 disables that bound.
//
// MaxEncode keeps oversized results out of a shared store: the memoized call
// still returns its result, the write is refused with a serialization error.
// MaxDecode protects against oversized entries written by someone else.
type Limit[V any] struct {
	// Inner is the underlying codec being wrapped. It must be set.
	Inner     Codec[V]
	MaxEncode int
	MaxDecode int
}

var _ Codec[struct{}] = Limit[struct{}]{}

func (c Limit[V]) Encode(v V) ([]byte, error) {
	b, err := c.Inner.Encode(v)
	if err != nil {
		return nil, err
	}
	if c.MaxEncode > 0 && len(b) > c.MaxEncode {
		return nil, errors.Wrapf(ErrTooLarge, "encode %d > %d", len(b), c.MaxEncode)
	}
	return b, nil
}

func (c Limit[V]) Decode(b []byte) (V, error) {
	if c.MaxDecode > 0 && len(b) > c.MaxDecode {
		var zero V
		return zero, errors.Wrapf(ErrTooLarge, "decode %d > %d", len(b), c.MaxDecode)
	}
	return c.Inner.Decode(b)
}
