package config

import (
	"errors"
	"fmt"

	"yaani/internal/diagnostic"
	"yaani/internal/expr"
	"yaani/internal/inventory"
	"yaani/internal/match"
	"yaani/internal/subimport"
)

// Compile validates f and compiles every expression into a build plan. All
// problems are reported together; the plan is nil when any is an error.
func Compile(f *File) (*inventory.Plan, *diagnostic.Diagnostics) {
	res := Validate(f)
	if f == nil {
		return nil, res
	}

	plan := &inventory.Plan{
		GroupVars: f.NetBox.GroupVars,
		Hierarchy: compileHierarchy(f.NetBox.GroupHierarchy),
	}

	for i := range f.NetBox.Imports {
		imp, ok := compileImport(res, &f.NetBox.Imports[i])
		if ok {
			plan.Imports = append(plan.Imports, imp)
		}
	}

	if res.HasErrors() {
		return nil, res
	}

	return plan, res
}

func compileImport(res *diagnostic.Diagnostics, st *ImportStatement) (inventory.Import, bool) {
	before := len(res.Errors)

	imp := inventory.Import{
		Name:        st.Name,
		App:         st.App,
		Type:        st.Type,
		Filter:      st.Filter,
		GroupPrefix: st.GroupPrefix,
	}

	if st.Index != "" {
		imp.Index = compileExpr(res.At(st.Name, "index"), st.Index)
	}

	for i, src := range st.GroupBy {
		if e := compileExpr(res.At(st.Name, "group_by").Field(fmt.Sprintf("[%d]", i)), src); e != nil {
			imp.GroupBy = append(imp.GroupBy, e)
		}
	}

	for _, hv := range st.HostVars {
		if e := compileExpr(res.At(st.Name, "host_vars").Field(hv.Name), hv.Expr); e != nil {
			imp.HostVars = append(imp.HostVars, inventory.Var{Name: hv.Name, Expr: e})
		}
	}

	if st.PreCondition != "" {
		imp.PreCondition = compileExpr(res.At(st.Name, "pre_condition"), st.PreCondition)
	}

	if st.PostCondition != "" {
		imp.PostCondition = compileExpr(res.At(st.Name, "post_condition"), st.PostCondition)
	}

	if len(st.SubImports) > 0 {
		imp.SubImports = compileSubImports(res, st)
	}

	return imp, len(res.Errors) == before
}

func compileSubImports(res *diagnostic.Diagnostics, st *ImportStatement) *subimport.Resolver {
	specs := make([]subimport.Spec, 0, len(st.SubImports))
	seen := make(map[string]struct{}, len(st.SubImports))

	for _, sub := range st.SubImports {
		// Structural problems are already reported by Validate.
		if _, dup := seen[sub.Name]; dup || sub.Name == "" || sub.Type == "" || sub.Bind == "" {
			continue
		}

		seen[sub.Name] = struct{}{}

		at := res.At(st.Name, "sub_import").Field(sub.Name)

		bind := compileExpr(at.Field("bind"), sub.Bind)
		if bind == nil {
			continue
		}

		if sub.Index != "" {
			compileExpr(at.Field("index"), sub.Index)
		}

		rel, err := subimport.ParseRelation(sub.Relation)
		if err != nil {
			continue
		}

		specs = append(specs, subimport.Spec{
			Name:     sub.Name,
			App:      sub.App,
			Type:     sub.Type,
			Index:    sub.Index,
			Bind:     bind,
			Relation: rel,
			Filter:   sub.Filter,
		})
	}

	if len(specs) != len(st.SubImports) {
		return nil
	}

	policy, err := subimport.ParseConflictPolicy(st.OnConflict)
	if err != nil {
		return nil
	}

	r, err := subimport.Compile(specs, policy)
	if err != nil {
		code := "invalid_sub_import"
		if errors.Is(err, subimport.ErrCycle) {
			code = "sub_import_cycle"
		}

		res.At(st.Name, "sub_import").Errorf(code, "%v", err)

		return nil
	}

	for _, msg := range r.ForwardRefs() {
		res.At(st.Name, "sub_import").Warnf("forward_reference", "%s", msg)
	}

	return r
}

// compileExpr compiles src, reporting failures at the given location.
func compileExpr(at diagnostic.Scope, src string) *expr.Expression {
	e, err := expr.Compile(src)
	if err == nil {
		return e
	}

	var ufe *expr.UnknownFilterError
	if errors.As(err, &ufe) {
		at.Suggest(match.Suggest(ufe.Name, expr.FilterNames(), maxSuggestions)...).Errorf("unknown_filter", "%v", err)
	} else {
		at.Errorf("malformed_expression", "%v", err)
	}

	return nil
}

func compileHierarchy(h Hierarchy) []inventory.HierarchyNode {
	if len(h) == 0 {
		return nil
	}

	out := make([]inventory.HierarchyNode, len(h))
	for i, n := range h {
		out[i] = inventory.HierarchyNode{Name: n.Name, Children: compileHierarchy(n.Children)}
	}

	return out
}
