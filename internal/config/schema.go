package config

import (
	"time"
)

// File represents the root of a configuration file.
type File struct {
	NetBox NetBox `yaml:"netbox"`
}

// NetBox holds everything under the netbox key.
type NetBox struct {
	// API configures the NetBox REST endpoint.
	API API `yaml:"api"`

	// Source reads records from a local dump instead of the API.
	Source string `yaml:"source,omitempty"`

	// Imports are the import statements, in declaration order.
	Imports Imports `yaml:"import,omitempty"`

	// GroupVars sets static variables on groups.
	GroupVars map[string]map[string]any `yaml:"group_vars,omitempty"`

	// GroupHierarchy nests groups: each key is a parent, its mapping value
	// lists the children.
	GroupHierarchy Hierarchy `yaml:"group_hierarchy,omitempty"`
}

// API holds the connection settings of the NetBox REST API.
type API struct {
	URL      string        `yaml:"api_url"`
	Token    string        `yaml:"api_token,omitempty"`
	Timeout  time.Duration `yaml:"timeout,omitempty"`
	PageSize int           `yaml:"page_size,omitempty"`
}

// ImportStatement declares one NetBox collection to turn into hosts.
type ImportStatement struct {
	// Name is the statement key (devices, racks, ...). It selects the
	// endpoint unless App and Type are set, and names the group every
	// imported host joins.
	Name string `yaml:"-"`

	App  string `yaml:"app,omitempty"`
	Type string `yaml:"type,omitempty"`

	// Filter is appended to the API query string untouched.
	Filter string `yaml:"filter,omitempty"`

	// Index is the expression yielding the host identifier.
	Index string `yaml:"index,omitempty"`

	GroupPrefix string        `yaml:"group_prefix,omitempty"`
	GroupBy     StringOrArray `yaml:"group_by,omitempty"`
	HostVars    Vars          `yaml:"host_vars,omitempty"`

	// PreCondition is evaluated against the record once its sub-imports are
	// attached, PostCondition against the assembled host variables. A record
	// whose condition is falsy yields no host.
	PreCondition  string `yaml:"pre_condition,omitempty"`
	PostCondition string `yaml:"post_condition,omitempty"`

	SubImports []SubImportSpec `yaml:"sub_import,omitempty"`

	// OnConflict is error or skip; see subimport.ConflictPolicy.
	OnConflict string `yaml:"on_conflict,omitempty"`
}

// SubImportSpec declares a related collection attached to every record.
type SubImportSpec struct {
	Name     string `yaml:"name"`
	App      string `yaml:"app,omitempty"`
	Type     string `yaml:"type"`
	Index    string `yaml:"index,omitempty"`
	Bind     string `yaml:"bind"`
	Relation string `yaml:"relation,omitempty"`
	Filter   string `yaml:"filter,omitempty"`
}

// Imports is an order-preserving mapping of import statements.
type Imports []ImportStatement

// Get returns the statement with the given name.
func (im Imports) Get(name string) (*ImportStatement, bool) {
	for i := range im {
		if im[i].Name == name {
			return &im[i], true
		}
	}

	return nil, false
}

// Var is one host variable declaration.
type Var struct {
	Name string
	Expr string
}

// Vars is an order-preserving mapping of host variables.
type Vars []Var

// HierarchyNode is a group and its children.
type HierarchyNode struct {
	Name     string
	Children Hierarchy
}

// Hierarchy is an order-preserving tree of groups.
type Hierarchy []HierarchyNode

// StringOrArray accepts a single string or a list of strings.
type StringOrArray []string

// Endpoint is a NetBox API collection, <app>/<type>/.
type Endpoint struct {
	App  string
	Type string
}

// KnownImports maps the import names usable without app and type to their
// endpoints.
var KnownImports = map[string]Endpoint{
	"devices": {App: "dcim", Type: "devices"},
	"racks":   {App: "dcim", Type: "racks"},
	"sites":   {App: "dcim", Type: "sites"},
}
