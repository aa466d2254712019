package expr

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	pipeSep     = "|"
	fallbackSep = "//"
	flattenMark = "[]"
)

// Compile parses a path expression into an Expression.
// It fails with ErrMalformedExpression or ErrUnknownFilter.
func Compile(src string) (*Expression, error) {
	text := strings.TrimSpace(src)
	if text == "" {
		return nil, malformed(src, "empty expression")
	}

	if text == AllSentinel {
		return &Expression{source: src, all: true}, nil
	}

	stages, err := splitOutside(text, pipeSep)
	if err != nil {
		return nil, malformed(src, "%v", err)
	}

	e := &Expression{source: src}

	operands, err := splitOutside(stages[0], fallbackSep)
	if err != nil {
		return nil, malformed(src, "%v", err)
	}

	if strings.TrimSpace(operands[0]) == AllSentinel {
		return nil, malformed(src, "%s cannot be combined with other operators", AllSentinel)
	}

	if err := e.parseHead(src, operands[0]); err != nil {
		return nil, err
	}

	for _, op := range operands[1:] {
		fallback, err := parseOperand(src, op)
		if err != nil {
			return nil, err
		}

		e.filters = append(e.filters, FilterCall{Name: defaultFilterName, Fallback: fallback})
	}

	for _, stage := range stages[1:] {
		parts, err := splitOutside(stage, fallbackSep)
		if err != nil {
			return nil, malformed(src, "%v", err)
		}

		if len(parts) > 1 {
			return nil, malformed(src, "%q must come before the first filter", fallbackSep)
		}

		call, err := parseFilterCall(src, stage)
		if err != nil {
			return nil, err
		}

		e.filters = append(e.filters, call)
	}

	return e, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(src string) *Expression {
	e, err := Compile(src)
	if err != nil {
		panic(err)
	}

	return e
}

func (e *Expression) parseHead(src, head string) error {
	op, err := parseOperand(src, head)
	if err != nil {
		return err
	}

	e.hasLiteral = op.hasLiteral
	e.literal = op.literal
	e.segments = op.segments
	e.depth = op.depth

	return nil
}

// parseOperand parses a navigation or a quoted literal.
func parseOperand(src, text string) (*Expression, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, malformed(src, "empty operand")
	}

	if isQuoted(text) {
		lit, err := unquote(text)
		if err != nil {
			return nil, malformed(src, "%v", err)
		}

		return &Expression{source: text, hasLiteral: true, literal: lit}, nil
	}

	segments, err := parseNavigation(src, text)
	if err != nil {
		return nil, err
	}

	op := &Expression{source: text, segments: segments}
	for _, s := range segments {
		if s.Flatten {
			op.depth++
		}
	}

	return op, nil
}

// parseNavigation parses "a.b[].c", with an optional leading root dot.
func parseNavigation(src, text string) ([]Segment, error) {
	path := strings.TrimPrefix(text, ".")
	if path == "" {
		return nil, malformed(src, "empty navigation")
	}

	parts := strings.Split(path, ".")
	segments := make([]Segment, 0, len(parts))

	for _, part := range parts {
		if part == "" {
			return nil, malformed(src, "empty segment")
		}

		name := part
		flatten := false

		if strings.HasSuffix(part, flattenMark) {
			flatten = true
			name = strings.TrimSuffix(part, flattenMark)

			if name == "" {
				return nil, malformed(src, "flatten marker without key name")
			}
		}

		if !isValidKey(name) {
			return nil, malformed(src, "invalid key name %q", name)
		}

		segments = append(segments, Segment{Name: name, Flatten: flatten})
	}

	return segments, nil
}

// parseFilterCall parses "name" or "name(arg, ...)".
func parseFilterCall(src, text string) (FilterCall, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return FilterCall{}, malformed(src, "empty filter in pipeline")
	}

	name := text
	var rawArgs []string

	if open := strings.IndexByte(text, '('); open >= 0 {
		if !strings.HasSuffix(text, ")") {
			return FilterCall{}, malformed(src, "filter call %q is missing its closing parenthesis", text)
		}

		name = strings.TrimSpace(text[:open])

		inner := strings.TrimSpace(text[open+1 : len(text)-1])
		if inner != "" {
			parts, err := splitOutside(inner, ",")
			if err != nil {
				return FilterCall{}, malformed(src, "%v", err)
			}

			rawArgs = parts
		}
	}

	if !isValidKey(name) {
		return FilterCall{}, malformed(src, "invalid filter name %q", name)
	}

	def, ok := lookupFilter(name)
	if !ok {
		return FilterCall{}, &UnknownFilterError{Name: name, Expr: src}
	}

	if len(rawArgs) < def.minArgs || len(rawArgs) > def.maxArgs {
		return FilterCall{}, malformed(src, "filter %s takes %s, got %d", name, def.arity(), len(rawArgs))
	}

	call := FilterCall{Name: name}

	if name == defaultFilterName {
		fallback, err := parseOperand(src, rawArgs[0])
		if err != nil {
			return FilterCall{}, err
		}

		call.Fallback = fallback

		return call, nil
	}

	for _, raw := range rawArgs {
		arg, err := parseLiteralArg(raw)
		if err != nil {
			return FilterCall{}, malformed(src, "filter %s: %v", name, err)
		}

		call.Args = append(call.Args, arg)
	}

	if def.prepare != nil {
		state, err := def.prepare(call.Args)
		if err != nil {
			return FilterCall{}, malformed(src, "filter %s: %v", name, err)
		}

		call.state = state
	}

	return call, nil
}

// parseLiteralArg accepts a quoted string or a bare word.
func parseLiteralArg(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty argument")
	}

	if isQuoted(raw) {
		return unquote(raw)
	}

	if strings.ContainsAny(raw, "'\"()") {
		return "", fmt.Errorf("invalid bare argument %q", raw)
	}

	return raw, nil
}

// splitOutside splits s on sep, ignoring separators inside quotes or
// parentheses. It fails on unterminated quotes and unbalanced parentheses.
func splitOutside(s, sep string) ([]string, error) {
	var (
		parts   []string
		current strings.Builder
		quoteCh byte
		depth   int
	)

	for i := 0; i < len(s); i++ {
		c := s[i]

		if quoteCh != 0 {
			current.WriteByte(c)

			if c == '\\' && i+1 < len(s) {
				i++
				current.WriteByte(s[i])
			} else if c == quoteCh {
				quoteCh = 0
			}

			continue
		}

		switch {
		case c == '\'' || c == '"':
			quoteCh = c
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced ')' at offset %d", i)
			}
		case depth == 0 && strings.HasPrefix(s[i:], sep):
			parts = append(parts, current.String())
			current.Reset()
			i += len(sep) - 1

			continue
		}

		current.WriteByte(c)
	}

	if quoteCh != 0 {
		return nil, fmt.Errorf("unterminated %c quote", quoteCh)
	}

	if depth != 0 {
		return nil, fmt.Errorf("unbalanced '('")
	}

	parts = append(parts, current.String())

	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			return nil, fmt.Errorf("empty element around %q", sep)
		}
	}

	return parts, nil
}

func isQuoted(s string) bool {
	if len(s) < 2 {
		return false
	}

	q := s[0]

	return (q == '"' || q == '\'') && s[len(s)-1] == q
}

// unquote strips the surrounding quotes and resolves backslash escapes.
func unquote(s string) (string, error) {
	q := s[0]
	body := s[1 : len(s)-1]

	var sb strings.Builder

	for i := 0; i < len(body); i++ {
		c := body[i]

		switch {
		case c == '\\' && i+1 < len(body):
			i++

			switch body[i] {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case '\\', '"', '\'':
				sb.WriteByte(body[i])
			default:
				// Regex escapes such as \d are kept verbatim.
				sb.WriteByte('\\')
				sb.WriteByte(body[i])
			}
		case c == q:
			return "", fmt.Errorf("unescaped quote inside %s", s)
		default:
			sb.WriteByte(c)
		}
	}

	return sb.String(), nil
}

// isValidKey accepts letters, digits, '_' and '-'.
func isValidKey(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '-' {
			return false
		}
	}

	return true
}
