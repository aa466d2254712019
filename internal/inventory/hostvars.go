package inventory

import "fmt"

// AssembleHostVars evaluates every variable against record. A failing
// variable is left out of the map and its error returned; the others are
// unaffected.
func AssembleHostVars(record any, vars []Var) (HostVarsMap, []error) {
	out := make(HostVarsMap, len(vars))

	var errs []error

	for _, v := range vars {
		val, err := v.Expr.Evaluate(record)
		if err != nil {
			errs = append(errs, fmt.Errorf("host_vars %s: %w", v.Name, err))
			continue
		}

		out[v.Name] = val
	}

	return out, errs
}
