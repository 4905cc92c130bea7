package memocache

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDeriveDeterministic(t *testing.T) {
	var k KeyCodec

	// maps built in different orders encode identically
	m1 := map[string]any{"b": 2, "a": []any{1, "x"}, "c": map[string]any{"z": 1, "y": 2}}
	m2 := map[string]any{"c": map[string]any{"y": 2, "z": 1}, "a": []any{1, "x"}, "b": 2}

	k1, err := k.Derive("f", []any{m1, "s"}, map[string]any{"q": 1, "p": true}, false)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	k2, err := k.Derive("f", []any{m2, "s"}, map[string]any{"p": true, "q": 1}, false)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if k1 != k2 {
		t.Fatalf("keys differ:\n%s\n%s", k1, k2)
	}
	want := `f__{"args":[{"a":[1,"x"],"b":2,"c":{"y":2,"z":1}},"s"],"kwargs":{"p":true,"q":1}}`
	if k1 != want {
		t.Fatalf("key %s\nwant %s", k1, want)
	}
}

func TestDeriveEmptyArgs(t *testing.T) {
	var k KeyCodec
	got, err := k.Derive("f", nil, nil, false)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if got != `f__{"args":[],"kwargs":{}}` {
		t.Fatalf("got %s", got)
	}
	// method mode with no args at all is not an error
	if _, err := k.Derive("f", nil, nil, true); err != nil {
		t.Fatalf("Derive method/no args: %v", err)
	}
}

func TestDeriveExcludesReceiver(t *testing.T) {
	var k KeyCodec
	type svc struct{ ch chan int } // not encodable; must never be serialized

	a, err := k.Derive("m", []any{&svc{ch: make(chan int)}, 7}, nil, true)
	if err != nil {
		t.Fatalf("Derive a: %v", err)
	}
	b, err := k.Derive("m", []any{&svc{}, 7}, nil, true)
	if err != nil {
		t.Fatalf("Derive b: %v", err)
	}
	if a != b {
		t.Fatalf("receiver leaked into key: %s vs %s", a, b)
	}
	plain, _ := k.Derive("m", []any{7}, nil, false)
	if a != plain {
		t.Fatalf("method key %s should equal plain key %s", a, plain)
	}
}

func TestDeriveSerializationError(t *testing.T) {
	var k KeyCodec
	_, err := k.Derive("f", []any{make(chan int)}, nil, false)
	var se *SerializationError
	if !errors.As(err, &se) {
		t.Fatalf("err=%v want *SerializationError", err)
	}
	if se.Func != "f" || se.Op != OpKey || se.Unwrap() == nil {
		t.Fatalf("unexpected error fields: %+v", se)
	}
}

func TestDeriveDigestKeepsPrefix(t *testing.T) {
	k := KeyCodec{MaxLen: 32}
	long := strings.Repeat("x", 100)

	a, err := k.Derive("f", []any{long}, nil, false)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if !strings.HasPrefix(a, k.Prefix("f")+"#") || len(a) != len("f__#")+32 {
		t.Fatalf("digest key %q", a)
	}
	b, _ := k.Derive("f", []any{long}, nil, false)
	if a != b {
		t.Fatalf("digest not deterministic")
	}
	c, _ := k.Derive("f", []any{long + "y"}, nil, false)
	if a == c {
		t.Fatalf("different args share a digest")
	}
	short, _ := k.Derive("f", []any{1}, nil, false)
	if strings.Contains(short, "#") {
		t.Fatalf("short payload should stay readable: %s", short)
	}
}

type opaqueID struct{ id int }

type mixedID struct {
	ID   int
	salt string
}

type base struct{ Tenant string }

type scoped struct {
	base
	ID    int
	cache map[string]int `json:"-"`
}

func TestDeriveRejectsLossyArguments(t *testing.T) {
	var k KeyCodec
	cases := []struct {
		name   string
		args   []any
		kwargs map[string]any
	}{
		{"unexported only", []any{opaqueID{id: 1}}, nil},
		{"unexported mixed", []any{mixedID{ID: 1, salt: "a"}}, nil},
		{"pointer to opaque", []any{&opaqueID{id: 1}}, nil},
		{"bytes", []any{[]byte{1, 2}}, nil},
		{"nested in slice", []any{[]any{1, opaqueID{}}}, nil},
		{"nested in map", nil, map[string]any{"filter": map[string]any{"raw": []byte("x")}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := k.Derive("f", tc.args, tc.kwargs, false)
			var se *SerializationError
			if !errors.As(err, &se) || se.Op != OpKey {
				t.Fatalf("err=%v want key SerializationError", err)
			}
			if !errors.Is(err, ErrUnkeyable) {
				t.Fatalf("err=%v should wrap ErrUnkeyable", err)
			}
		})
	}
}

func TestDeriveBytesNeverAliasString(t *testing.T) {
	var k KeyCodec
	s, err := k.Derive("f", []any{"AQI="}, nil, false)
	if err != nil {
		t.Fatalf("Derive string: %v", err)
	}
	b, err := k.Derive("f", []any{[]byte{1, 2}}, nil, false)
	if err == nil && b == s {
		t.Fatalf("[]byte and its base64 string share key %s", s)
	}
}

func TestDeriveAcceptsMarshalersAndPromotedFields(t *testing.T) {
	var k KeyCodec
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	args := []any{
		at,
		&at,
		json.RawMessage(`{"a":1}`),
		scoped{base: base{Tenant: "acme"}, ID: 7},
		[4]byte{1, 2, 3, 4},
		struct{}{},
		(*opaqueID)(nil),
	}
	got, err := k.Derive("f", args, nil, false)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	want := `f__{"args":["2024-01-02T03:04:05Z","2024-01-02T03:04:05Z",{"a":1},{"Tenant":"acme","ID":7},[1,2,3,4],{},null],"kwargs":{}}`
	if got != want {
		t.Fatalf("key %s\nwant %s", got, want)
	}
}

func TestDeriveRejectsCycles(t *testing.T) {
	var k KeyCodec
	loop := []any{nil}
	loop[0] = loop
	if _, err := k.Derive("f", []any{loop}, nil, false); err == nil {
		t.Fatalf("cyclic argument should fail")
	}
}
