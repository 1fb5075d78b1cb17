package jsonfield

import "testing"

func TestDecode(t *testing.T) {
	if _, err := Decode(`{"a":1}`); err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if _, err := Decode(`[1,2]`); err == nil {
		t.Fatalf("expected error for array top level")
	}
	if _, err := Decode(`{"a":`); err == nil {
		t.Fatalf("expected syntax error")
	}
}

func TestToString(t *testing.T) {
	obj, err := Decode(`{"s":"x","n":475,"f":1.5,"b":true,"o":{},"z":null}`)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	cases := map[string]string{"s": "x", "n": "475", "f": "1.5", "b": "true", "o": "", "z": "", "missing": ""}
	for key, want := range cases {
		if got := obj.String(key); got != want {
			t.Fatalf("String(%q) = %q, want %q", key, got, want)
		}
	}
	if obj.OptString("z") != nil || obj.OptString("missing") != nil || obj.OptString("o") != nil {
		t.Fatalf("expected nil for null, missing and object values")
	}
	if p := obj.OptString("n"); p == nil || *p != "475" {
		t.Fatalf("expected numeric literal text, got %v", p)
	}
}

func TestInt(t *testing.T) {
	obj, _ := Decode(`{"a":4,"b":"6","c":4.5,"d":"four","e":null,"f":4.0,"g":[1]}`)
	if p := obj.Int("a"); p == nil || *p != 4 {
		t.Fatalf("expected 4, got %v", p)
	}
	if p := obj.Int("b"); p == nil || *p != 6 {
		t.Fatalf("expected 6 from numeric string, got %v", p)
	}
	if p := obj.Int("f"); p == nil || *p != 4 {
		t.Fatalf("expected 4 from 4.0, got %v", p)
	}
	for _, key := range []string{"c", "d", "e", "g", "missing"} {
		if p := obj.Int(key); p != nil {
			t.Fatalf("Int(%q) = %d, want nil", key, *p)
		}
	}
}

func TestArrays(t *testing.T) {
	obj, _ := Decode(`{"steps":["Mix",null,{"x":1},2,"Cook"],"items":[{"a":1},"skip",{"b":2}],"notArray":"x"}`)

	steps := obj.Strings("steps")
	if len(steps) != 3 || steps[0] != "Mix" || steps[1] != "2" || steps[2] != "Cook" {
		t.Fatalf("unexpected steps %v", steps)
	}
	if got := obj.Strings("notArray"); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
	if got := obj.Objects("items"); len(got) != 2 {
		t.Fatalf("expected 2 objects, got %d", len(got))
	}
	if !obj.IsArray("steps") || obj.IsArray("notArray") {
		t.Fatalf("unexpected IsArray results")
	}
}

func TestPresence(t *testing.T) {
	obj, _ := Decode(`{"a":null,"b":""}`)
	if obj.Presence("a") != Null || obj.Presence("b") != Present || obj.Presence("c") != Absent {
		t.Fatalf("unexpected presence values")
	}
}
