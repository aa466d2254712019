package expr

import (
	"encoding/json"
	"fmt"
)

// Evaluate applies the expression to a record. Absent keys yield nil without
// error; only filters that receive a value of the wrong kind fail, with
// ErrType. The record is never modified.
func (e *Expression) Evaluate(record any) (any, error) {
	if e.all {
		return record, nil
	}

	var (
		value any
		err   error
	)

	if e.hasLiteral {
		value = e.literal
	} else {
		value, err = navigate(record, e.segments)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.source, err)
		}
	}

	depth := e.depth

	for i := range e.filters {
		call := &e.filters[i]
		def, _ := lookupFilter(call.Name)

		// List filters consume the innermost lists, removing one level.
		at := depth
		if def.list && depth > 0 {
			at--
			depth--
		}

		value, err = applyAt(def, call, value, record, at)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.source, err)
		}
	}

	return value, nil
}

// applyAt runs a filter on the values found depth list levels below value.
// Anything that is not a list above that level is filtered as is.
func applyAt(def filterDef, call *FilterCall, value, record any, depth int) (any, error) {
	if depth == 0 {
		return def.fn(value, call, record)
	}

	items, ok := AsList(value)
	if !ok {
		return def.fn(value, call, record)
	}

	out := make([]any, len(items))
	for i, it := range items {
		v, err := applyAt(def, call, it, record, depth-1)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}

		out[i] = v
	}

	return out, nil
}

func navigate(cursor any, segments []Segment) (any, error) {
	for i, seg := range segments {
		if cursor == nil {
			return nil, nil
		}

		if KindOf(cursor) != KindMap {
			return nil, nil
		}

		cursor = lookup(cursor, seg.Name)
		if !seg.Flatten {
			continue
		}

		if cursor == nil {
			return nil, nil
		}

		items, ok := AsList(cursor)
		if !ok {
			return nil, fmt.Errorf("%w: %s[] expects a list, got %s", ErrType, seg.Name, KindOf(cursor))
		}

		rest := segments[i+1:]
		out := make([]any, 0, len(items))

		for _, it := range items {
			v, err := navigate(it, rest)
			if err != nil {
				return nil, err
			}

			out = append(out, v)
		}

		return out, nil
	}

	return cursor, nil
}

func marshalCompact(v any) ([]byte, error) {
	return json.Marshal(normalizeJSON(v))
}

// normalizeJSON converts map[any]any trees into map[string]any so they can
// be marshalled.
func normalizeJSON(v any) any {
	switch x := v.(type) {
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, val := range x {
			m[fmt.Sprint(k)] = normalizeJSON(val)
		}

		return m
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, val := range x {
			m[k] = normalizeJSON(val)
		}

		return m
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = normalizeJSON(val)
		}

		return out
	default:
		return v
	}
}
