package source

import (
	"context"
	"fmt"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"

	"yaani/internal/expr"
	"yaani/internal/subimport"
)

// File serves records from a local dump keyed by endpoint:
//
//	dcim/devices:
//	  - {id: 1, name: sw1, role: {slug: leaf}}
//	dcim/sites:
//	  - {id: 1, slug: par1}
//
// JSON dumps work too. Filters are applied locally: each key=value pair
// must match the record field of that name, either directly or through the
// slug, name or value of a nested object. Repeated keys are alternatives.
type File struct {
	collections map[string][]subimport.Record
}

// LoadFile reads a dump from disk.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read source file %s: %w", path, err)
	}

	return ParseFile(data)
}

// ParseFile decodes a YAML or JSON dump.
func ParseFile(data []byte) (*File, error) {
	f := &File{}

	if err := yaml.Unmarshal(data, &f.collections); err != nil {
		return nil, fmt.Errorf("failed to parse source file: %w", err)
	}

	return f, nil
}

// Fetch returns the records of <app>/<type> matching filter. An endpoint
// absent from the dump is empty.
func (f *File) Fetch(_ context.Context, app, typ, filter string) ([]subimport.Record, error) {
	q, err := url.ParseQuery(filter)
	if err != nil {
		return nil, fmt.Errorf("invalid filter %q: %w", filter, err)
	}

	q.Del("limit")

	var out []subimport.Record

	for _, r := range f.collections[app+"/"+typ] {
		if matches(r, q) {
			out = append(out, r)
		}
	}

	return out, nil
}

// FetchRelated fetches a collection and indexes it by the index expression.
func (f *File) FetchRelated(ctx context.Context, app, typ, index, filter string) (subimport.RelatedIndex, error) {
	return fetchRelated(ctx, f, app, typ, index, filter)
}

func matches(r subimport.Record, q url.Values) bool {
	for key, wanted := range q {
		if !fieldMatches(r[key], wanted) {
			return false
		}
	}

	return true
}

func fieldMatches(v any, wanted []string) bool {
	if items, ok := expr.AsList(v); ok {
		for _, it := range items {
			if fieldMatches(it, wanted) {
				return true
			}
		}

		return false
	}

	if m, ok := v.(map[string]any); ok {
		for _, k := range []string{"slug", "name", "value"} {
			if s, ok := m[k]; ok && fieldMatches(s, wanted) {
				return true
			}
		}

		return false
	}

	if v == nil {
		return false
	}

	got := expr.Stringify(v)
	for _, w := range wanted {
		if got == w {
			return true
		}
	}

	return false
}
