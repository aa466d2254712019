package expr

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"yaani/internal/common"
)

const defaultFilterName = "default"

// FilterFunc transforms the current pipeline value. The record is the one
// the expression is evaluated against; only default looks at it.
type FilterFunc func(input any, call *FilterCall, record any) (any, error)

type filterDef struct {
	fn      FilterFunc
	minArgs int
	maxArgs int
	// list filters consume a whole list, even on flattened paths.
	list bool
	// prepare validates literal arguments once, at compile time.
	prepare func(args []string) (any, error)
}

func (d filterDef) arity() string {
	if d.minArgs == d.maxArgs {
		return fmt.Sprintf("%d argument(s)", d.minArgs)
	}

	return fmt.Sprintf("%d to %d arguments", d.minArgs, d.maxArgs)
}

var registry map[string]filterDef

func init() {
	registry = map[string]filterDef{
		"sub":             {fn: subFilter, minArgs: 2, maxArgs: 2, prepare: prepareSub},
		defaultFilterName: {fn: defaultFilter, minArgs: 1, maxArgs: 1},
		"lower":           {fn: lowerFilter},
		"upper":           {fn: upperFilter},
		"join":            {fn: joinFilter, maxArgs: 1, list: true},
		"first":           {fn: firstFilter, list: true},
		"match":           {fn: matchFilter, minArgs: 1, maxArgs: 1, prepare: prepareMatch},
	}
}

func lookupFilter(name string) (filterDef, bool) {
	def, ok := registry[name]
	return def, ok
}

// FilterNames returns the registered filter names, sorted.
func FilterNames() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

type subState struct {
	re   *regexp.Regexp
	repl string
}

var backrefRe = regexp.MustCompile(`\\(\d+)`)

func prepareSub(args []string) (any, error) {
	re, err := regexp.Compile(args[0])
	if err != nil {
		return nil, fmt.Errorf("invalid pattern: %w", err)
	}

	// \1 style group references are accepted alongside Go's ${1}.
	repl := backrefRe.ReplaceAllString(args[1], "$${$1}")

	return subState{re: re, repl: repl}, nil
}

// subFilter applies a regular expression substitution to a string.
// Usage: name | sub("-[0-9]+$", "")
func subFilter(input any, call *FilterCall, _ any) (any, error) {
	if input == nil {
		return nil, nil
	}

	s, ok := input.(string)
	if !ok {
		return nil, fmt.Errorf("%w: sub expects a string, got %s", ErrType, KindOf(input))
	}

	st := call.state.(subState)

	return st.re.ReplaceAllString(s, st.repl), nil
}

func prepareMatch(args []string) (any, error) {
	re, err := regexp.Compile(args[0])
	if err != nil {
		return nil, fmt.Errorf("invalid pattern: %w", err)
	}

	return re, nil
}

// matchFilter reports whether a string contains a match of the pattern.
// Absent values do not match.
// Usage: status.value | match("^(active|staged)$")
func matchFilter(input any, call *FilterCall, _ any) (any, error) {
	if input == nil {
		return false, nil
	}

	s, ok := input.(string)
	if !ok {
		return nil, fmt.Errorf("%w: match expects a string, got %s", ErrType, KindOf(input))
	}

	return call.state.(*regexp.Regexp).MatchString(s), nil
}

// defaultFilter returns the fallback, evaluated against the record, when the
// input is absent.
func defaultFilter(input any, call *FilterCall, record any) (any, error) {
	if input != nil {
		return input, nil
	}

	return call.Fallback.Evaluate(record)
}

func lowerFilter(input any, _ *FilterCall, _ any) (any, error) {
	return mapString(input, "lower", strings.ToLower)
}

func upperFilter(input any, _ *FilterCall, _ any) (any, error) {
	return mapString(input, "upper", strings.ToUpper)
}

func mapString(input any, name string, fn func(string) string) (any, error) {
	if input == nil {
		return nil, nil
	}

	s, ok := input.(string)
	if !ok {
		return nil, fmt.Errorf("%w: %s expects a string, got %s", ErrType, name, KindOf(input))
	}

	return fn(s), nil
}

// joinFilter joins list elements with a separator ("" by default).
// Usage: tags | join(",")
func joinFilter(input any, call *FilterCall, _ any) (any, error) {
	if input == nil {
		return nil, nil
	}

	items, ok := AsList(input)
	if !ok {
		return nil, fmt.Errorf("%w: join expects a list, got %s", ErrType, KindOf(input))
	}

	sep := ""
	if len(call.Args) > 0 {
		sep = call.Args[0]
	}

	parts := make([]string, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}

		parts = append(parts, Stringify(it))
	}

	return strings.Join(parts, sep), nil
}

// firstFilter returns the first element of a list, nil when it is empty.
func firstFilter(input any, _ *FilterCall, _ any) (any, error) {
	if input == nil {
		return nil, nil
	}

	items, ok := AsList(input)
	if !ok {
		return nil, fmt.Errorf("%w: first expects a list, got %s", ErrType, KindOf(input))
	}

	v, _ := common.First(items)

	return v, nil
}

// Stringify renders a value the way it appears in group names: strings
// verbatim, numbers and booleans in their shortest form, containers as
// compact JSON.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case fmt.Stringer:
		return x.String()
	}

	if KindOf(v) == KindScalar {
		return fmt.Sprint(v)
	}

	b, err := marshalCompact(v)
	if err != nil {
		return fmt.Sprint(v)
	}

	return string(b)
}
