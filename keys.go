package memocache

import (
	"encoding"
	"encoding/json"
	"reflect"

	"github.com/cockroachdb/errors"

	c "github.com/unkn0wn-root/memocache/codec"
	"github.com/unkn0wn-root/memocache/internal/util"
)

// keySep separates a function's name from its encoded arguments.
const keySep = "__"

// KeyCodec derives cache keys of the form "<name>__<json args>".
//
// Arguments are encoded as {"args":[...],"kwargs":{...}} with encoding/json,
// which sorts map keys, so structurally equal calls always yield the same key.
// All keys of one function share the "<name>__" prefix.
//
// Arguments JSON would encode lossily are rejected with ErrUnkeyable:
// []byte (base64, indistinguishable from a string) and structs with
// unexported fields, unless the type implements json.Marshaler or
// encoding.TextMarshaler.
type KeyCodec struct {
	// MaxLen > 0 replaces encoded arguments longer than MaxLen with a SHA-256
	// digest ("<name>__#<hex>"). Keeps keys short for large arguments.
	MaxLen int
}

type keyArgs struct {
	Args   []any          `json:"args"`
	Kwargs map[string]any `json:"kwargs"`
}

// Prefix returns the namespace shared by every key of name.
func (KeyCodec) Prefix(name string) string { return name + keySep }

// Derive builds the key for one call. With isMethod the first positional
// argument is the receiver and is left out, so instances share entries.
func (k KeyCodec) Derive(name string, args []any, kwargs map[string]any, isMethod bool) (string, error) {
	if isMethod && len(args) > 0 {
		args = args[1:]
	}
	if args == nil {
		args = []any{}
	}
	if kwargs == nil {
		kwargs = map[string]any{}
	}
	for i, a := range args {
		if err := checkKeyable(reflect.ValueOf(a), 0); err != nil {
			return "", &SerializationError{Func: name, Op: OpKey, Err: errors.Wrapf(err, "args[%d]", i)}
		}
	}
	for kw, a := range kwargs {
		if err := checkKeyable(reflect.ValueOf(a), 0); err != nil {
			return "", &SerializationError{Func: name, Op: OpKey, Err: errors.Wrapf(err, "kwargs[%q]", kw)}
		}
	}
	raw, err := c.JSON[keyArgs]{}.Encode(keyArgs{Args: args, Kwargs: kwargs})
	if err != nil {
		return "", &SerializationError{Func: name, Op: OpKey, Err: err}
	}
	prefix := k.Prefix(name)
	if k.MaxLen > 0 && len(raw) > k.MaxLen {
		return util.DigestKey(prefix, string(raw)), nil
	}
	return prefix + string(raw), nil
}

const maxKeyDepth = 1000

var (
	jsonMarshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

// marshals reports whether encoding/json hands v to a custom marshaler.
func marshals(v reflect.Value) bool {
	t := v.Type()
	if t.Implements(jsonMarshalerType) || t.Implements(textMarshalerType) {
		return true
	}
	if v.CanAddr() {
		pt := reflect.PointerTo(t)
		return pt.Implements(jsonMarshalerType) || pt.Implements(textMarshalerType)
	}
	return false
}

// checkKeyable rejects values whose JSON form drops or aliases data.
// Kinds JSON cannot encode at all (chan, func, complex) are left to the
// encoder, which fails on them.
func checkKeyable(v reflect.Value, depth int) error {
	if !v.IsValid() {
		return nil
	}
	if depth > maxKeyDepth {
		return errors.Wrap(ErrUnkeyable, "value nested too deeply or cyclic")
	}
	if marshals(v) {
		return nil
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return checkKeyable(v.Elem(), depth+1)
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return errors.Wrapf(ErrUnkeyable, "%s encodes as a base64 string", v.Type())
		}
		fallthrough
	case reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if err := checkKeyable(v.Index(i), depth+1); err != nil {
				return err
			}
		}
	case reflect.Map:
		it := v.MapRange()
		for it.Next() {
			if err := checkKeyable(it.Value(), depth+1); err != nil {
				return err
			}
		}
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if f.Name == "_" || f.Tag.Get("json") == "-" {
				continue
			}
			if !f.IsExported() {
				ft := f.Type
				if ft.Kind() == reflect.Pointer {
					ft = ft.Elem()
				}
				// json promotes the exported fields of embedded structs
				if !f.Anonymous || ft.Kind() != reflect.Struct {
					return errors.Wrapf(ErrUnkeyable, "%s has unexported field %s", t, f.Name)
				}
			}
			if err := checkKeyable(v.Field(i), depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}
