package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileSegments(t *testing.T) {
	tests := []struct {
		input    string
		expected []Segment
	}{
		{
			input:    "name",
			expected: []Segment{{Name: "name"}},
		},
		{
			input: "site.name",
			expected: []Segment{
				{Name: "site"},
				{Name: "name"},
			},
		},
		{
			input: ".site.name",
			expected: []Segment{
				{Name: "site"},
				{Name: "name"},
			},
		},
		{
			input:    "tags[]",
			expected: []Segment{{Name: "tags", Flatten: true}},
		},
		{
			input: "interfaces[].ip-addresses[].address",
			expected: []Segment{
				{Name: "interfaces", Flatten: true},
				{Name: "ip-addresses", Flatten: true},
				{Name: "address"},
			},
		},
		{
			input:    "  custom_fields  ",
			expected: []Segment{{Name: "custom_fields"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			e, err := Compile(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, e.Segments())
			assert.Empty(t, e.Filters())
			assert.False(t, e.IsAll())
		})
	}
}

func TestCompileAll(t *testing.T) {
	e, err := Compile("ALL")
	require.NoError(t, err)
	assert.True(t, e.IsAll())
	assert.Empty(t, e.Segments())
	assert.Equal(t, "", e.Root())
	assert.Equal(t, "ALL", e.String())

	// ALL is only a sentinel as the whole expression.
	e, err = Compile("ALL.name")
	require.NoError(t, err)
	assert.False(t, e.IsAll())
	assert.Equal(t, "ALL", e.Root())
}

func TestCompileFilters(t *testing.T) {
	e, err := Compile(`name | lower | sub("-[0-9]+$", "") | join(", ")`)
	require.NoError(t, err)

	filters := e.Filters()
	require.Len(t, filters, 3)
	assert.Equal(t, "lower", filters[0].Name)
	assert.Empty(t, filters[0].Args)
	assert.Equal(t, "sub", filters[1].Name)
	assert.Equal(t, []string{"-[0-9]+$", ""}, filters[1].Args)
	assert.Equal(t, "join", filters[2].Name)
	assert.Equal(t, []string{", "}, filters[2].Args)
}

func TestCompileQuotedSeparators(t *testing.T) {
	e, err := Compile(`url | sub("https?://[^|]+\\.", 'a,b')`)
	require.NoError(t, err)

	filters := e.Filters()
	require.Len(t, filters, 1)
	assert.Equal(t, []string{`https?://[^|]+\.`, "a,b"}, filters[0].Args)
}

func TestCompileFallbackSugar(t *testing.T) {
	sugar, err := Compile("primary_ip4.address // primary_ip6.address")
	require.NoError(t, err)

	explicit, err := Compile("primary_ip4.address | default(primary_ip6.address)")
	require.NoError(t, err)

	assert.True(t, sugar.Equal(explicit))
	assert.Equal(t, explicit.String(), sugar.String())

	filters := sugar.Filters()
	require.Len(t, filters, 1)
	require.NotNil(t, filters[0].Fallback)
	assert.Equal(t, "primary_ip6", filters[0].Fallback.Root())
}

func TestCompileLiteralFallback(t *testing.T) {
	e, err := Compile(`primary_ip.address // "" | sub("/[0-9]+", "")`)
	require.NoError(t, err)

	assert.Equal(t, `primary_ip.address | default("") | sub("/[0-9]+", "")`, e.String())
	assert.Equal(t, "primary_ip", e.Root())
}

func TestExpressionEqual(t *testing.T) {
	a := MustCompile("site.name|lower")
	b := MustCompile("  .site.name | lower ")
	c := MustCompile("site.name | upper")
	d := MustCompile("site.name[] | lower")

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(d))
	assert.False(t, a.Equal(nil))
	assert.NotEqual(t, a.Source(), b.Source())
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "empty", input: "", wantErr: ErrMalformedExpression},
		{name: "blank", input: "   ", wantErr: ErrMalformedExpression},
		{name: "empty segment", input: "a..b", wantErr: ErrMalformedExpression},
		{name: "trailing dot", input: "a.", wantErr: ErrMalformedExpression},
		{name: "root only", input: ".", wantErr: ErrMalformedExpression},
		{name: "bare flatten", input: "[]", wantErr: ErrMalformedExpression},
		{name: "flatten without key", input: "a.[]", wantErr: ErrMalformedExpression},
		{name: "invalid key", input: "a b", wantErr: ErrMalformedExpression},
		{name: "empty stage", input: "name |", wantErr: ErrMalformedExpression},
		{name: "double pipe", input: "name || lower", wantErr: ErrMalformedExpression},
		{name: "fallback after filter", input: "a | lower // b", wantErr: ErrMalformedExpression},
		{name: "missing fallback", input: "a //", wantErr: ErrMalformedExpression},
		{name: "unterminated quote", input: `a | sub("x, "")`, wantErr: ErrMalformedExpression},
		{name: "unbalanced paren", input: `a | sub("x", "y"`, wantErr: ErrMalformedExpression},
		{name: "sub arity", input: `a | sub("x")`, wantErr: ErrMalformedExpression},
		{name: "lower arity", input: `a | lower("x")`, wantErr: ErrMalformedExpression},
		{name: "default arity", input: `a | default`, wantErr: ErrMalformedExpression},
		{name: "bad pattern", input: `a | sub("(", "")`, wantErr: ErrMalformedExpression},
		{name: "bad match pattern", input: `a | match("[")`, wantErr: ErrMalformedExpression},
		{name: "match arity", input: `a | match`, wantErr: ErrMalformedExpression},
		{name: "all with filter", input: "ALL | lower", wantErr: ErrMalformedExpression},
		{name: "all with fallback", input: "ALL // name", wantErr: ErrMalformedExpression},
		{name: "unknown filter", input: "a | shout", wantErr: ErrUnknownFilter},
		{name: "unknown filter with args", input: `a | replace("x", "y")`, wantErr: ErrUnknownFilter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := Compile(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, e)
		})
	}
}

func TestMustCompilePanics(t *testing.T) {
	assert.Panics(t, func() { MustCompile("a..b") })
	assert.NotPanics(t, func() { MustCompile("a.b") })
}

func TestUnknownFilterError(t *testing.T) {
	_, err := Compile("name | lowr")

	var ufe *UnknownFilterError
	require.ErrorAs(t, err, &ufe)
	assert.Equal(t, "lowr", ufe.Name)
	assert.Equal(t, "name | lowr", ufe.Expr)
	assert.ErrorIs(t, err, ErrUnknownFilter)
}
