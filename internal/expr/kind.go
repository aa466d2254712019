package expr

import "reflect"

//go:generate go tool stringer -type=Kind -trimprefix=Kind -output=kind_string.go

// Kind classifies a record value for navigation.
type Kind int

const (
	KindNone Kind = iota
	KindScalar
	KindList
	KindMap
)

// KindOf returns the Kind of a decoded record value.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNone
	case map[string]any, map[any]any:
		return KindMap
	case []any:
		return KindList
	case string, bool, int, int64, float64:
		return KindScalar
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		return KindMap
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return KindScalar
		}

		return KindList
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return KindNone
		}

		return KindOf(rv.Elem().Interface())
	default:
		return KindScalar
	}
}

// lookup returns the value stored under key when v is a mapping, nil otherwise.
func lookup(v any, key string) any {
	switch m := v.(type) {
	case map[string]any:
		return m[key]
	case map[any]any:
		return m[key]
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil
	}

	got := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
	if !got.IsValid() {
		return nil
	}

	return got.Interface()
}

// AsList returns the elements of a list value, converting typed slices.
func AsList(v any) ([]any, bool) {
	if l, ok := v.([]any); ok {
		return l, true
	}

	if KindOf(v) != KindList {
		return nil, false
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		rv = rv.Elem()
	}

	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}

	return out, true
}

// Truthy reports whether v counts as true in a condition. Absent values,
// false, empty strings, zero numbers and empty containers are false.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Map, reflect.Slice, reflect.Array:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return false
		}

		return Truthy(rv.Elem().Interface())
	default:
		return true
	}
}
