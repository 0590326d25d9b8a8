package records

import (
	"encoding/json"
	"testing"
)

func TestString(t *testing.T) {
	r := Record{"name": "  Elena ", "n": json.Number("3"), "nil": nil}
	if got := r.String("name"); got != "Elena" {
		t.Errorf("String(name) = %q", got)
	}
	for _, key := range []string{"n", "nil", "absent"} {
		if got := r.String(key); got != "" {
			t.Errorf("String(%s) = %q, want empty", key, got)
		}
	}
}

func TestFloat(t *testing.T) {
	r := Record{"a": json.Number("269.58"), "b": float64(1.5), "c": "x"}
	if f, ok := r.Float("a"); !ok || f != 269.58 {
		t.Errorf("Float(a) = %v, %v", f, ok)
	}
	if f, ok := r.Float("b"); !ok || f != 1.5 {
		t.Errorf("Float(b) = %v, %v", f, ok)
	}
	if _, ok := r.Float("c"); ok {
		t.Error("Float(c) accepted a string")
	}
	if _, ok := r.Float("absent"); ok {
		t.Error("Float(absent) reported ok")
	}
}

func TestInt(t *testing.T) {
	cases := []struct {
		name string
		val  any
		want int64
		ok   bool
	}{
		{"integer number", json.Number("1542241826796"), 1542241826796, true},
		{"fractional number truncates", json.Number("1542241826796.0"), 1542241826796, true},
		{"float64", float64(42), 42, true},
		{"int", int(7), 7, true},
		{"string", "9", 0, false},
		{"garbage number", json.Number("abc"), 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Record{"k": tc.val}.Int("k")
			if got != tc.want || ok != tc.ok {
				t.Errorf("Int = %d, %v; want %d, %v", got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestHas(t *testing.T) {
	r := Record{"a": "x", "b": nil}
	if !r.Has("a") || r.Has("b") || r.Has("c") {
		t.Errorf("Has: a=%v b=%v c=%v", r.Has("a"), r.Has("b"), r.Has("c"))
	}
}
