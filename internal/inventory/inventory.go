package inventory

import (
	"maps"
	"slices"
)

// HostVarsMap holds the evaluated variables of one host.
type HostVarsMap map[string]any

// Group is a named set of hosts with optional variables and child groups.
type Group struct {
	Name     string
	Hosts    []string
	Vars     map[string]any
	Children []string

	members map[string]struct{}
}

// Has reports whether host is a member of the group.
func (g *Group) Has(host string) bool {
	_, ok := g.members[host]
	return ok
}

func (g *Group) add(host string) {
	if g.members == nil {
		g.members = make(map[string]struct{})
	}

	if _, ok := g.members[host]; ok {
		return
	}

	g.members[host] = struct{}{}
	g.Hosts = append(g.Hosts, host)
}

func (g *Group) addChild(name string) {
	if !slices.Contains(g.Children, name) {
		g.Children = append(g.Children, name)
	}
}

// Inventory is the result of a build.
type Inventory struct {
	Groups   map[string]*Group
	HostVars map[string]HostVarsMap
}

// New returns an empty inventory.
func New() *Inventory {
	return &Inventory{
		Groups:   make(map[string]*Group),
		HostVars: make(map[string]HostVarsMap),
	}
}

// Group returns the named group, creating it if needed.
func (inv *Inventory) Group(name string) *Group {
	g, ok := inv.Groups[name]
	if !ok {
		g = &Group{Name: name}
		inv.Groups[name] = g
	}

	return g
}

// AddMembership files a host into a group. Repeated calls have no effect.
func (inv *Inventory) AddMembership(m Membership) {
	inv.Group(m.Group).add(m.Host)
}

// MergeHostVars merges vars into the host's map; keys already present are
// replaced. The host is registered even when vars is empty.
func (inv *Inventory) MergeHostVars(host string, vars HostVarsMap) {
	cur, ok := inv.HostVars[host]
	if !ok {
		cur = make(HostVarsMap, len(vars))
		inv.HostVars[host] = cur
	}

	maps.Copy(cur, vars)
}

// GroupNames returns the group names, sorted.
func (inv *Inventory) GroupNames() []string {
	return slices.Sorted(maps.Keys(inv.Groups))
}

// Hosts returns every host with variables, sorted.
func (inv *Inventory) Hosts() []string {
	return slices.Sorted(maps.Keys(inv.HostVars))
}

// applyGroupVars sets static variables on groups, creating them if needed.
func (inv *Inventory) applyGroupVars(groupVars map[string]map[string]any) {
	for name, vars := range groupVars {
		g := inv.Group(name)
		if g.Vars == nil {
			g.Vars = make(map[string]any, len(vars))
		}

		maps.Copy(g.Vars, vars)
	}
}

// applyHierarchy declares parent/children relations between groups.
func (inv *Inventory) applyHierarchy(nodes []HierarchyNode) {
	for _, n := range nodes {
		parent := inv.Group(n.Name)

		for _, child := range n.Children {
			inv.Group(child.Name)
			parent.addChild(child.Name)
		}

		inv.applyHierarchy(n.Children)
	}
}
