package inventory

import (
	"fmt"

	"yaani/internal/expr"
)

// Membership files a host into a group.
type Membership struct {
	Group string
	Host  string
}

// GroupBy evaluates each expression against record and returns the groups
// the record with identifier id belongs to. Absent values yield no group; a
// scalar yields prefix+value; a list yields one group per non-nil element.
// Failing expressions are skipped and reported.
func GroupBy(record any, id string, exprs []*expr.Expression, prefix string) ([]Membership, []error) {
	var (
		out  []Membership
		errs []error
	)

	for _, e := range exprs {
		v, err := e.Evaluate(record)
		if err != nil {
			errs = append(errs, fmt.Errorf("group_by %s: %w", e.Source(), err))
			continue
		}

		if v == nil {
			continue
		}

		items, ok := expr.AsList(v)
		if !ok {
			items = []any{v}
		}

		for _, it := range items {
			if it == nil {
				continue
			}

			name := prefix + expr.Stringify(it)
			if name == "" {
				continue
			}

			out = append(out, Membership{Group: name, Host: id})
		}
	}

	return out, errs
}
