package memocache

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	ErrNilFunc = errors.New("memocache: function is required")
	ErrNoName  = errors.New("memocache: name is required")
	ErrBadName = errors.Newf("memocache: name must not contain %q", keySep)

	// ErrUnkeyable marks an argument whose JSON form would lose data, so two
	// different calls could share a key.
	ErrUnkeyable = errors.New("memocache: argument cannot be keyed without loss")

	// ErrInterfaceResult is returned by New when R is an interface type and no
	// Codec is given: JSON cannot restore the dynamic type on a hit.
	ErrInterfaceResult = errors.New("memocache: interface result type needs an explicit Codec")
)

// Serialization ops.
const (
	OpKey   = "key"   // call arguments could not be encoded into a key
	OpValue = "value" // a result could not be encoded for storage
)

// SerializationError reports arguments or a result the configured encoding
// cannot represent. It is returned to the caller: it means the call or result
// shape is wrong, not that the cache is unavailable.
type SerializationError struct {
	Func string
	Op   string
	Err  error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("memocache: %s: cannot serialize %s: %v", e.Func, e.Op, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// BackendError wraps a provider failure on get/set/scan/del/decode.
// It only reaches logs and Hooks; Call and Clear never return it.
type BackendError struct {
	Func string
	Op   string
	Err  error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("memocache: %s: backend %s failed: %v", e.Func, e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }
