package subimport

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yaani/internal/expr"
)

var (
	paris = Record{"id": 1, "name": "paris", "region": map[string]any{"id": 10}}
	lyon  = Record{"id": 2, "name": "lyon", "region": map[string]any{"id": 10}}
	west  = Record{"id": 10, "name": "west"}
)

func spec(name, bind string, rel Relation) Spec {
	return Spec{Name: name, App: "dcim", Type: name, Index: "id", Bind: expr.MustCompile(bind), Relation: rel}
}

func mustIndex(t *testing.T, records ...Record) RelatedIndex {
	t.Helper()

	idx, err := IndexRecords(records, expr.MustCompile("id"))
	require.NoError(t, err)

	return idx
}

func TestCompile(t *testing.T) {
	r, err := Compile([]Spec{
		spec("site_info", "site.id", RelationOne),
		spec("region_info", "site_info.region.id", RelationOne),
	}, ConflictError)
	require.NoError(t, err)

	assert.Equal(t, []string{"site_info", "region_info"}, r.Order())
	assert.Empty(t, r.ForwardRefs())
	assert.Len(t, r.Specs(), 2)
}

func TestCompileForwardRef(t *testing.T) {
	r, err := Compile([]Spec{
		spec("region_info", "site_info.region.id", RelationOne),
		spec("site_info", "site.id", RelationOne),
	}, ConflictError)
	require.NoError(t, err)

	assert.Equal(t, []string{"site_info", "region_info"}, r.Order())
	require.Len(t, r.ForwardRefs(), 1)
	assert.Contains(t, r.ForwardRefs()[0], `"region_info" binds through "site_info"`)
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name    string
		specs   []Spec
		wantErr error
	}{
		{
			name: "cycle",
			specs: []Spec{
				spec("a", "b.id", RelationOne),
				spec("b", "a.id", RelationOne),
			},
			wantErr: ErrCycle,
		},
		{
			name:    "self reference",
			specs:   []Spec{spec("a", "a.id", RelationOne)},
			wantErr: ErrCycle,
		},
		{
			name: "duplicate",
			specs: []Spec{
				spec("a", "x", RelationOne),
				spec("a", "y", RelationOne),
			},
		},
		{
			name:  "missing bind",
			specs: []Spec{{Name: "a"}},
		},
		{
			name:  "missing name",
			specs: []Spec{{Bind: expr.MustCompile("x")}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.specs, ConflictError)
			require.Error(t, err)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestResolveChain(t *testing.T) {
	r, err := Compile([]Spec{
		spec("site_info", "site.id", RelationOne),
		spec("region_info", "site_info.region.id", RelationOne),
	}, ConflictError)
	require.NoError(t, err)

	r = r.WithIndexes(map[string]RelatedIndex{
		"site_info":   mustIndex(t, paris, lyon),
		"region_info": mustIndex(t, west),
	})

	device := Record{"name": "sw1", "site": map[string]any{"id": 1}}

	out, errs := r.Resolve(device)
	assert.Empty(t, errs)
	assert.Equal(t, paris, out["site_info"])
	assert.Equal(t, west, out["region_info"])

	// The input is left untouched.
	assert.Equal(t, Record{"name": "sw1", "site": map[string]any{"id": 1}}, device)

	v, err := expr.MustCompile("region_info.name").Evaluate(out)
	require.NoError(t, err)
	assert.Equal(t, "west", v)
}

func TestResolveRelations(t *testing.T) {
	idx := map[string]RelatedIndex{
		"one":  mustIndex(t, paris, lyon),
		"many": mustIndex(t, paris, lyon),
	}

	tests := []struct {
		name     string
		bind     string
		rel      Relation
		record   Record
		expected any
	}{
		{
			name:     "one match",
			bind:     "site_id",
			rel:      RelationOne,
			record:   Record{"site_id": 2},
			expected: lyon,
		},
		{
			name:     "one no match",
			bind:     "site_id",
			rel:      RelationOne,
			record:   Record{"site_id": 99},
			expected: nil,
		},
		{
			name:     "one absent bind",
			bind:     "site_id",
			rel:      RelationOne,
			record:   Record{},
			expected: nil,
		},
		{
			name:     "many from list bind",
			bind:     "site_ids",
			rel:      RelationMany,
			record:   Record{"site_ids": []any{1, 2, 99}},
			expected: []any{paris, lyon},
		},
		{
			name:     "many from flattened bind",
			bind:     "sites[].id",
			rel:      RelationMany,
			record:   Record{"sites": []any{map[string]any{"id": 2}}},
			expected: []any{lyon},
		},
		{
			name:     "many no match",
			bind:     "site_ids",
			rel:      RelationMany,
			record:   Record{"site_ids": []any{}},
			expected: []any{},
		},
		{
			name:     "float keys match int index",
			bind:     "site_id",
			rel:      RelationOne,
			record:   Record{"site_id": float64(1)},
			expected: paris,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name := "one"
			if tt.rel == RelationMany {
				name = "many"
			}

			r, err := Compile([]Spec{spec(name, tt.bind, tt.rel)}, ConflictError)
			require.NoError(t, err)

			out, errs := r.WithIndexes(idx).Resolve(tt.record)
			assert.Empty(t, errs)
			assert.Contains(t, out, name)
			assert.Equal(t, tt.expected, out[name])
		})
	}
}

func TestResolveConflict(t *testing.T) {
	specs := []Spec{spec("site", "site_ref.id", RelationOne)}
	record := Record{"site": map[string]any{"id": 1, "name": "original"}, "site_ref": map[string]any{"id": 1}}

	r, err := Compile(specs, ConflictError)
	require.NoError(t, err)

	out, errs := r.WithIndexes(map[string]RelatedIndex{"site": mustIndex(t, paris)}).Resolve(record)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrAttachmentConflict)
	assert.Equal(t, record["site"], out["site"])

	r, err = Compile(specs, ConflictSkip)
	require.NoError(t, err)

	out, errs = r.Resolve(record)
	assert.Empty(t, errs)
	assert.Equal(t, record["site"], out["site"])
}

func TestResolveDependentsOfConflictingSpec(t *testing.T) {
	specs := []Spec{
		spec("site", "site_ref.id", RelationOne),
		spec("region", "site.region_id", RelationOne),
	}
	record := Record{"site": map[string]any{"region_id": 10}}
	indexes := map[string]RelatedIndex{
		"site":   mustIndex(t, paris),
		"region": mustIndex(t, west),
	}

	tests := []struct {
		name       string
		policy     ConflictPolicy
		wantRegion any
		wantErrs   []error
	}{
		{
			name:       "skip keeps the existing key for dependents",
			policy:     ConflictSkip,
			wantRegion: west,
		},
		{
			name:       "error leaves dependents unresolved",
			policy:     ConflictError,
			wantRegion: nil,
			wantErrs:   []error{ErrAttachmentConflict, ErrUnresolvedDependency},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Compile(specs, tt.policy)
			require.NoError(t, err)

			out, errs := r.WithIndexes(indexes).Resolve(record)
			require.Len(t, errs, len(tt.wantErrs))

			for i, want := range tt.wantErrs {
				assert.ErrorIs(t, errs[i], want)
			}

			assert.Equal(t, record["site"], out["site"])
			assert.Equal(t, tt.wantRegion, out["region"])
		})
	}
}

func TestResolveUnresolvedDependency(t *testing.T) {
	r, err := Compile([]Spec{
		spec("region_info", "site_info.region.id", RelationOne),
		spec("site_info", "site.id", RelationOne),
	}, ConflictError)
	require.NoError(t, err)

	r = r.WithIndexes(map[string]RelatedIndex{
		"site_info":   mustIndex(t, paris),
		"region_info": mustIndex(t, west),
	})

	out, errs := r.Resolve(Record{"site": map[string]any{"id": 1}})
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrUnresolvedDependency)
	assert.NotContains(t, out, "region_info")
	assert.Equal(t, paris, out["site_info"])
}

func TestResolveDependencyFailurePropagates(t *testing.T) {
	r, err := Compile([]Spec{
		spec("site_info", "site[].id", RelationOne),
		spec("region_info", "site_info.region.id", RelationOne),
	}, ConflictError)
	require.NoError(t, err)

	out, errs := r.Resolve(Record{"site": "not-a-list"})
	require.Len(t, errs, 2)
	assert.ErrorIs(t, errs[0], expr.ErrType)
	assert.ErrorIs(t, errs[1], ErrUnresolvedDependency)
	assert.NotContains(t, out, "site_info")
}

type fakeFetcher struct {
	calls   []string
	indexes map[string]RelatedIndex
	err     error
}

func (f *fakeFetcher) FetchRelated(_ context.Context, app, typ, index, _ string) (RelatedIndex, error) {
	f.calls = append(f.calls, app+"/"+typ+"#"+index)
	if f.err != nil {
		return nil, f.err
	}

	return f.indexes[typ], nil
}

func TestPrefetch(t *testing.T) {
	r, err := Compile([]Spec{
		spec("sites", "site.id", RelationOne),
		spec("regions", "sites.region.id", RelationOne),
	}, ConflictError)
	require.NoError(t, err)

	f := &fakeFetcher{indexes: map[string]RelatedIndex{
		"sites":   mustIndex(t, paris),
		"regions": mustIndex(t, west),
	}}

	bound, err := r.Prefetch(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, []string{"dcim/sites#id", "dcim/regions#id"}, f.calls)

	for range 3 {
		out, errs := bound.Resolve(Record{"site": map[string]any{"id": 1}})
		assert.Empty(t, errs)
		assert.Equal(t, west, out["regions"])
	}

	assert.Len(t, f.calls, 2)

	_, err = r.Prefetch(context.Background(), &fakeFetcher{err: errors.New("boom")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `sub-import "sites"`)
}

func TestIndexRecords(t *testing.T) {
	tagged := Record{"id": 3, "slugs": []any{"a", "b"}}

	idx, err := IndexRecords([]Record{paris, lyon, tagged, {"name": "no id"}}, expr.MustCompile("id"))
	require.NoError(t, err)
	assert.Len(t, idx, 3)
	assert.Equal(t, []Record{paris}, idx["1"])

	idx, err = IndexRecords([]Record{tagged}, expr.MustCompile("slugs"))
	require.NoError(t, err)
	assert.Equal(t, []Record{tagged}, idx["a"])
	assert.Equal(t, []Record{tagged}, idx["b"])

	repeated := Record{"id": 4, "slugs": []any{"c", "c"}}
	idx, err = IndexRecords([]Record{repeated}, expr.MustCompile("slugs"))
	require.NoError(t, err)
	assert.Equal(t, []Record{repeated}, idx["c"])

	_, err = IndexRecords([]Record{{"id": "x"}}, expr.MustCompile("id[]"))
	assert.ErrorIs(t, err, expr.ErrType)
}

func TestParseRelation(t *testing.T) {
	rel, err := ParseRelation("")
	require.NoError(t, err)
	assert.Equal(t, RelationOne, rel)

	rel, err = ParseRelation("Many")
	require.NoError(t, err)
	assert.Equal(t, RelationMany, rel)

	_, err = ParseRelation("several")
	assert.Error(t, err)

	p, err := ParseConflictPolicy("skip")
	require.NoError(t, err)
	assert.Equal(t, ConflictSkip, p)
	assert.Equal(t, "error", ConflictError.String())

	_, err = ParseConflictPolicy("override")
	assert.Error(t, err)
}
