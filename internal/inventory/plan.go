package inventory

import (
	"yaani/internal/expr"
	"yaani/internal/subimport"
)

// Record is one decoded NetBox object.
type Record = subimport.Record

// DefaultImportName is the import used when a configuration declares none.
const DefaultImportName = "devices"

// Var is a host variable: an output name and the expression producing it.
type Var struct {
	Name string
	Expr *expr.Expression
}

// Import is a compiled import statement.
type Import struct {
	// Name is the statement key; every host it yields joins the group of
	// that name.
	Name string
	// App and Type select the NetBox endpoint (<app>/<type>/).
	App  string
	Type string
	// Filter is passed to the fetcher untouched.
	Filter string
	// Index yields the host identifier. Nil means "name".
	Index       *expr.Expression
	GroupPrefix string
	GroupBy     []*expr.Expression
	HostVars    []Var
	// PreCondition and PostCondition drop records they evaluate falsy on.
	// PostCondition sees the host variables, not the record.
	PreCondition  *expr.Expression
	PostCondition *expr.Expression
	// SubImports is nil when the statement declares none.
	SubImports *subimport.Resolver
}

// HierarchyNode is a group and the groups nested under it.
type HierarchyNode struct {
	Name     string
	Children []HierarchyNode
}

// Plan is everything the Builder needs to produce an inventory.
type Plan struct {
	Imports   []Import
	GroupVars map[string]map[string]any
	Hierarchy []HierarchyNode
}

var nameExpr = expr.MustCompile("name")

// DefaultImport returns the implicit devices import: every device is a host
// in the devices group, without host variables.
func DefaultImport() Import {
	return Import{
		Name: DefaultImportName,
		App:  "dcim",
		Type: "devices",
	}
}

func (imp *Import) index() *expr.Expression {
	if imp.Index == nil {
		return nameExpr
	}

	return imp.Index
}
