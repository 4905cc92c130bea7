package memocache

import (
	"testing"
	"time"
)

type named int

type emptyable struct{ n int }

func (e emptyable) IsZero() bool { return e.n == 0 }

func TestIsFalsy(t *testing.T) {
	var nilPtr *int
	var nilMap map[string]int
	var nilFunc func()
	one := 1

	cases := []struct {
		name string
		v    any
		want bool
	}{
		{"nil", nil, true},
		{"false", false, true},
		{"true", true, false},
		{"int_zero", 0, true},
		{"int", -3, false},
		{"uint_zero", uint8(0), true},
		{"float_zero", 0.0, true},
		{"float", 0.5, false},
		{"named_zero", named(0), true},
		{"empty_string", "", true},
		{"string", "a", false},
		{"empty_slice", []int{}, true},
		{"slice", []int{0}, false},
		{"nil_map", nilMap, true},
		{"map", map[string]int{"a": 0}, false},
		{"empty_array", [0]int{}, true},
		{"nil_pointer", nilPtr, true},
		{"pointer", &one, false},
		{"nil_func", nilFunc, true},
		{"struct", struct{ A int }{}, false},
		{"iszero_true", emptyable{}, true},
		{"iszero_false", emptyable{n: 1}, false},
		{"zero_time", time.Time{}, true},
		{"time", time.Unix(1, 0), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsFalsy(tc.v); got != tc.want {
				t.Fatalf("IsFalsy(%#v)=%v want %v", tc.v, got, tc.want)
			}
		})
	}
}
