package expr

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedExpression reports a syntax error found while compiling.
	ErrMalformedExpression = errors.New("malformed expression")
	// ErrUnknownFilter reports a filter name missing from the registry.
	ErrUnknownFilter = errors.New("unknown filter")
	// ErrType reports a value of the wrong kind met during evaluation.
	ErrType = errors.New("type error")
)

func malformed(src, format string, args ...any) error {
	return fmt.Errorf("%w %q: %s", ErrMalformedExpression, src, fmt.Sprintf(format, args...))
}

// UnknownFilterError names the filter missing from the registry.
type UnknownFilterError struct {
	Name string
	Expr string
}

func (e *UnknownFilterError) Error() string {
	return fmt.Sprintf("%s %q in %q", ErrUnknownFilter, e.Name, e.Expr)
}

func (e *UnknownFilterError) Unwrap() error {
	return ErrUnknownFilter
}
