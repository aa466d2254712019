package expr

import (
	"slices"
	"strings"
)

// AllSentinel is the expression that captures the whole record.
const AllSentinel = "ALL"

// Segment is one navigation step: a mapping key, optionally followed by the
// flatten marker "[]".
type Segment struct {
	Name    string
	Flatten bool
}

// String returns the segment in source form.
func (s Segment) String() string {
	if s.Flatten {
		return s.Name + "[]"
	}

	return s.Name
}

// FilterCall is one compiled filter invocation of a pipeline.
type FilterCall struct {
	Name string
	// Args holds the literal arguments, unquoted.
	Args []string
	// Fallback is set for default only.
	Fallback *Expression

	state any
}

// String returns the call in source form.
func (c FilterCall) String() string {
	if c.Fallback != nil {
		return c.Name + "(" + c.Fallback.String() + ")"
	}

	if len(c.Args) == 0 {
		return c.Name
	}

	quoted := make([]string, len(c.Args))
	for i, a := range c.Args {
		quoted[i] = quote(a)
	}

	return c.Name + "(" + strings.Join(quoted, ", ") + ")"
}

func (c FilterCall) equal(other FilterCall) bool {
	if c.Name != other.Name || !slices.Equal(c.Args, other.Args) {
		return false
	}

	if c.Fallback == nil || other.Fallback == nil {
		return c.Fallback == other.Fallback
	}

	return c.Fallback.Equal(other.Fallback)
}

// Expression is a compiled path expression. It holds no per-record state
// and is safe for concurrent use.
type Expression struct {
	source string

	all        bool
	hasLiteral bool
	literal    string
	segments   []Segment
	filters    []FilterCall
	depth      int // flatten markers along the path
}

// Source returns the text the expression was compiled from.
func (e *Expression) Source() string {
	return e.source
}

// IsAll reports whether the expression is the ALL sentinel.
func (e *Expression) IsAll() bool {
	return e.all
}

// Segments returns the navigation steps.
func (e *Expression) Segments() []Segment {
	return slices.Clone(e.segments)
}

// Filters returns the filter invocations in pipeline order.
func (e *Expression) Filters() []FilterCall {
	return slices.Clone(e.filters)
}

// Root returns the first navigated key, or "" for ALL and literals.
func (e *Expression) Root() string {
	if len(e.segments) == 0 {
		return ""
	}

	return e.segments[0].Name
}

// String returns the canonical form of the expression.
func (e *Expression) String() string {
	if e == nil {
		return ""
	}

	if e.all {
		return AllSentinel
	}

	var sb strings.Builder

	if e.hasLiteral {
		sb.WriteString(quote(e.literal))
	} else {
		for i, seg := range e.segments {
			if i > 0 {
				sb.WriteString(".")
			}

			sb.WriteString(seg.String())
		}
	}

	for _, f := range e.filters {
		sb.WriteString(" | ")
		sb.WriteString(f.String())
	}

	return sb.String()
}

// Equal reports whether both expressions compile to the same segment and
// filter sequences. Source formatting is ignored.
func (e *Expression) Equal(other *Expression) bool {
	if e == nil || other == nil {
		return e == other
	}

	if e.all != other.all || e.hasLiteral != other.hasLiteral || e.literal != other.literal {
		return false
	}

	if !slices.Equal(e.segments, other.segments) {
		return false
	}

	return slices.EqualFunc(e.filters, other.filters, FilterCall.equal)
}

func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}
