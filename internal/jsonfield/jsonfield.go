// Package jsonfield reads fields out of loosely-typed JSON objects without
// ever failing on a missing or wrong-typed value.
package jsonfield

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// Object is a decoded JSON object whose numbers are json.Number.
type Object map[string]any

// Decode parses text as a single JSON object. Only syntax errors and a
// non-object top level are reported.
func Decode(text string) (Object, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, errors.New("json value is not an object")
	}
	return Object(obj), nil
}

// Presence describes how a key appears in an object.
type Presence int

const (
	Absent Presence = iota
	Null
	Present
)

func (o Object) Presence(key string) Presence {
	v, ok := o[key]
	switch {
	case !ok:
		return Absent
	case v == nil:
		return Null
	default:
		return Present
	}
}

// ToString converts scalar values to their string form. Numbers and
// booleans keep their JSON literal text; anything else is not a string.
func ToString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	}
	return "", false
}

// String returns the string at key, or "" when absent, null or not scalar.
func (o Object) String(key string) string {
	s, _ := ToString(o[key])
	return s
}

// OptString returns the string at key, or nil when absent, null or not
// scalar.
func (o Object) OptString(key string) *string {
	s, ok := ToString(o[key])
	if !ok {
		return nil
	}
	return &s
}

// Int returns an integral number (or numeric string) at key, or nil.
func (o Object) Int(key string) *int {
	var n float64
	switch t := o[key].(type) {
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil
		}
		n = f
	case float64:
		n = t
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil
		}
		n = f
	default:
		return nil
	}
	if n != math.Trunc(n) || n > math.MaxInt32 || n < math.MinInt32 {
		return nil
	}
	i := int(n)
	return &i
}

// Strings returns the scalar elements of the array at key. Non-scalar
// elements are skipped; a missing or non-array value yields an empty slice.
func (o Object) Strings(key string) []string {
	arr, _ := o[key].([]any)
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		if s, ok := ToString(item); ok {
			out = append(out, s)
		}
	}
	return out
}

// Objects returns the object elements of the array at key.
func (o Object) Objects(key string) []Object {
	arr, _ := o[key].([]any)
	out := make([]Object, 0, len(arr))
	for _, item := range arr {
		if m, ok := item.(map[string]any); ok {
			out = append(out, Object(m))
		}
	}
	return out
}

// IsArray reports whether key holds an array.
func (o Object) IsArray(key string) bool {
	_, ok := o[key].([]any)
	return ok
}
