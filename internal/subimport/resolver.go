package subimport

import (
	"context"
	"fmt"
	"maps"

	"yaani/internal/common"
	"yaani/internal/expr"
)

// Record is one decoded NetBox object.
type Record = map[string]any

// RelatedIndex maps the stringified index value of related records to the
// records carrying it.
type RelatedIndex map[string][]Record

// RelatedFetcher loads a related collection, indexed by the given key.
type RelatedFetcher interface {
	FetchRelated(ctx context.Context, app, typ, index, filter string) (RelatedIndex, error)
}

// Spec is a compiled sub-import declaration.
type Spec struct {
	Name     string
	App      string
	Type     string
	Index    string
	Bind     *expr.Expression
	Relation Relation
	Filter   string
}

// Resolver attaches related records to primary records. It is immutable;
// Prefetch and WithIndexes return bound copies, safe for concurrent use.
type Resolver struct {
	specs  []Spec
	deps   []int // index of the spec bound through, -1 if none
	order  []int
	policy ConflictPolicy

	indexes []RelatedIndex
}

// Compile validates the declarations and builds their dependency graph.
// A spec depends on another when its bind expression starts with the other
// spec's name. Duplicate names and cycles are errors.
func Compile(specs []Spec, policy ConflictPolicy) (*Resolver, error) {
	byName := make(map[string]int, len(specs))

	for i, s := range specs {
		if s.Name == "" {
			return nil, fmt.Errorf("sub-import %d: missing name", i)
		}

		if s.Bind == nil {
			return nil, fmt.Errorf("sub-import %q: missing bind expression", s.Name)
		}

		if _, dup := byName[s.Name]; dup {
			return nil, fmt.Errorf("sub-import %q declared twice", s.Name)
		}

		byName[s.Name] = i
	}

	r := &Resolver{
		specs:  specs,
		deps:   make([]int, len(specs)),
		policy: policy,
	}

	for i, s := range specs {
		r.deps[i] = -1
		if d, ok := byName[s.Bind.Root()]; ok {
			r.deps[i] = d
		}
	}

	order, err := topoSort(len(specs), func(i int) []int {
		if r.deps[i] < 0 {
			return nil
		}

		return []int{r.deps[i]}
	})
	if err != nil {
		return nil, err
	}

	r.order = order

	return r, nil
}

// Specs returns the declarations in declaration order.
func (r *Resolver) Specs() []Spec {
	return r.specs
}

// Order returns the spec names in dependency order.
func (r *Resolver) Order() []string {
	names := make([]string, len(r.order))
	for i, idx := range r.order {
		names[i] = r.specs[idx].Name
	}

	return names
}

// ForwardRefs describes specs that bind through a sub-import declared after
// them. Such specs never resolve, since resolution follows declaration order.
func (r *Resolver) ForwardRefs() []string {
	var out []string

	for i, d := range r.deps {
		if d > i {
			out = append(out, fmt.Sprintf("%q binds through %q, which is declared after it",
				r.specs[i].Name, r.specs[d].Name))
		}
	}

	return out
}

// Prefetch loads every related collection once and returns a resolver bound
// to them.
func (r *Resolver) Prefetch(ctx context.Context, f RelatedFetcher) (*Resolver, error) {
	indexes := make(map[string]RelatedIndex, len(r.specs))

	for _, s := range r.specs {
		idx, err := f.FetchRelated(ctx, s.App, s.Type, s.Index, s.Filter)
		if err != nil {
			return nil, fmt.Errorf("sub-import %q: %w", s.Name, err)
		}

		indexes[s.Name] = idx
	}

	return r.WithIndexes(indexes), nil
}

// WithIndexes returns a copy of r bound to pre-built indexes, keyed by spec
// name. Specs without an index match nothing.
func (r *Resolver) WithIndexes(indexes map[string]RelatedIndex) *Resolver {
	bound := *r
	bound.indexes = make([]RelatedIndex, len(r.specs))

	for i, s := range r.specs {
		bound.indexes[i] = indexes[s.Name]
	}

	return &bound
}

// Resolve returns a shallow copy of record with one key per spec attached.
// Failures are per spec: the record continues without that attachment and
// the error is returned for reporting. Neither record nor the related
// records are modified.
func (r *Resolver) Resolve(record Record) (Record, []error) {
	out := maps.Clone(record)
	if out == nil {
		out = Record{}
	}

	attached := make([]bool, len(r.specs))

	var errs []error

	for i, s := range r.specs {
		if _, exists := record[s.Name]; exists {
			if r.policy == ConflictError {
				errs = append(errs, fmt.Errorf("%w: %q", ErrAttachmentConflict, s.Name))
				continue
			}

			// The existing key stands in for the skipped attachment.
			attached[i] = true

			continue
		}

		if d := r.deps[i]; d >= 0 && !attached[d] {
			errs = append(errs, fmt.Errorf("%w: %q needs %q", ErrUnresolvedDependency, s.Name, r.specs[d].Name))
			continue
		}

		bound, err := s.Bind.Evaluate(out)
		if err != nil {
			errs = append(errs, fmt.Errorf("sub-import %q: %w", s.Name, err))
			continue
		}

		out[s.Name] = r.match(i, bound)
		attached[i] = true
	}

	return out, errs
}

func (r *Resolver) match(i int, bound any) any {
	var idx RelatedIndex
	if r.indexes != nil {
		idx = r.indexes[i]
	}

	var found []any

	for _, key := range joinKeys(bound) {
		for _, rec := range idx[key] {
			found = append(found, rec)
		}
	}

	if r.specs[i].Relation == RelationMany {
		if found == nil {
			return []any{}
		}

		return found
	}

	if len(found) == 0 {
		return nil
	}

	return found[0]
}

// joinKeys turns a bind result into lookup keys: one per non-nil element of
// a list, one for a scalar, none for nil.
func joinKeys(v any) []string {
	if v == nil {
		return nil
	}

	if expr.KindOf(v) != expr.KindList {
		return []string{expr.Stringify(v)}
	}

	items, _ := expr.AsList(v)

	keys := make([]string, 0, len(items))
	for _, it := range items {
		if it != nil {
			keys = append(keys, expr.Stringify(it))
		}
	}

	return common.Dedupe(keys)
}

// IndexRecords keys records by the value of the index expression. Records
// whose index is absent are left out; a list-valued index files the record
// under every element.
func IndexRecords(records []Record, index *expr.Expression) (RelatedIndex, error) {
	out := make(RelatedIndex, len(records))

	for _, rec := range records {
		v, err := index.Evaluate(rec)
		if err != nil {
			return nil, fmt.Errorf("index %s: %w", index.Source(), err)
		}

		for _, key := range joinKeys(v) {
			out[key] = append(out[key], rec)
		}
	}

	return out, nil
}
