package config

import (
	"fmt"
	"maps"
	"slices"

	"yaani/internal/diagnostic"
	"yaani/internal/inventory"
	"yaani/internal/match"
	"yaani/internal/subimport"
)

const maxSuggestions = 3

// Validate checks the structure of a configuration. Expressions are left to
// Compile.
func Validate(f *File) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if f == nil {
		res.At("", "").Errorf("config_is_nil", "configuration is nil")
		return res
	}

	nb := &f.NetBox

	if nb.API.URL == "" && nb.Source == "" {
		res.At("", "api.api_url").Errorf("missing_api_url", "the api_url key is mandatory unless a source file is set")
	}

	if nb.API.PageSize < 0 {
		res.At("", "api.page_size").Errorf("invalid_page_size", "page_size must not be negative, got %d", nb.API.PageSize)
	}

	if len(nb.Imports) == 0 {
		res.At("", "import").Infof("default_import", "no import statements, every device is imported without groups or host variables")
	}

	for i := range nb.Imports {
		validateImport(res, &nb.Imports[i])
	}

	if _, ok := nb.GroupVars[inventory.MetaKey]; ok {
		res.At("", "group_vars").Field(inventory.MetaKey).Errorf("reserved_group_name", "%q is reserved for host variables", inventory.MetaKey)
	}

	validateHierarchy(res.At("", "group_hierarchy"), nb.GroupHierarchy)

	return res
}

func validateHierarchy(at diagnostic.Scope, h Hierarchy) {
	for _, n := range h {
		if n.Name == inventory.MetaKey {
			at.Field(n.Name).Errorf("reserved_group_name", "%q is reserved for host variables", inventory.MetaKey)
		}

		validateHierarchy(at.Field(n.Name), n.Children)
	}
}

func validateImport(res *diagnostic.Diagnostics, st *ImportStatement) {
	at := res.At(st.Name, "")

	if st.Name == inventory.MetaKey {
		at.Errorf("reserved_group_name", "%q is reserved for host variables", inventory.MetaKey)
	}

	if st.App == "" || st.Type == "" {
		known := slices.Sorted(maps.Keys(KnownImports))

		at.Suggest(match.Suggest(st.Name, known, maxSuggestions)...).Errorf("unknown_import_type",
			"import type %q is not supported without app and type (known: %v)", st.Name, known)
	}

	if _, err := subimport.ParseConflictPolicy(st.OnConflict); err != nil {
		at.Field("on_conflict").Errorf("invalid_on_conflict", "%v", err)
	}

	seen := make(map[string]struct{}, len(st.SubImports))

	for i, sub := range st.SubImports {
		sat := at.Field("sub_import").Field(fmt.Sprintf("[%d]", i))

		if sub.Name == "" {
			sat.Errorf("missing_sub_import_name", "sub-import name is mandatory")
		} else {
			sat = at.Field("sub_import").Field(sub.Name)

			if _, dup := seen[sub.Name]; dup {
				sat.Errorf("duplicate_sub_import", "sub-import %q declared twice", sub.Name)
			}

			seen[sub.Name] = struct{}{}
		}

		if sub.Type == "" {
			sat.Field("type").Errorf("missing_sub_import_type", "sub-import type is mandatory")
		}

		if sub.Bind == "" {
			sat.Field("bind").Errorf("missing_bind", "sub-import bind expression is mandatory")
		}

		if _, err := subimport.ParseRelation(sub.Relation); err != nil {
			sat.Field("relation").Errorf("invalid_relation", "%v", err)
		}

		for _, hv := range st.HostVars {
			if hv.Name == sub.Name {
				sat.Infof("shadowed_name", "host variable %q has the same name as a sub-import", hv.Name)
			}
		}
	}
}
