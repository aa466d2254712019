package inventory

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// MetaKey is the inventory key holding per-host variables.
const MetaKey = "_meta"

type jsonGroup struct {
	Hosts    []string       `json:"hosts"`
	Vars     map[string]any `json:"vars,omitempty"`
	Children []string       `json:"children,omitempty"`
}

// MarshalJSON renders the Ansible dynamic inventory format:
//
//	{"<group>": {"hosts": [...], "vars": {...}, "children": [...]},
//	 "_meta": {"hostvars": {"<host>": {...}}}}
func (inv *Inventory) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(inv.Groups)+1)

	for name, g := range inv.Groups {
		hosts := g.Hosts
		if hosts == nil {
			hosts = []string{}
		}

		out[name] = jsonGroup{Hosts: hosts, Vars: g.Vars, Children: g.Children}
	}

	hostvars := inv.HostVars
	if hostvars == nil {
		hostvars = map[string]HostVarsMap{}
	}

	out[MetaKey] = map[string]any{"hostvars": hostvars}

	return json.Marshal(out)
}

// Table renders the groups as a human-readable table.
func (inv *Inventory) Table() string {
	tw := table.NewWriter()
	tw.SetTitle("INVENTORY")
	tw.AppendHeader(table.Row{"Group", "Hosts", "Children", "Vars"})

	for _, name := range inv.GroupNames() {
		g := inv.Groups[name]

		hosts := slices.Clone(g.Hosts)
		slices.Sort(hosts)

		tw.AppendRow(table.Row{
			name,
			strings.Join(hosts, "\n"),
			strings.Join(g.Children, "\n"),
			formatVars(g.Vars),
		})
	}

	tw.AppendFooter(table.Row{fmt.Sprintf("%d groups", len(inv.Groups)), fmt.Sprintf("%d hosts", len(inv.HostVars))})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, WidthMax: 60},
	})

	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	style.Format.Footer = text.FormatDefault
	style.Options.SeparateRows = true
	tw.SetStyle(style)

	return tw.Render()
}

// HostVarsTable renders one host's variables as a table.
func HostVarsTable(host string, vars HostVarsMap) string {
	tw := table.NewWriter()
	tw.SetTitle(host)
	tw.AppendHeader(table.Row{"Variable", "Value"})

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	for _, k := range keys {
		tw.AppendRow(table.Row{k, formatValue(vars[k])})
	}

	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	tw.SetStyle(style)

	return tw.Render()
}

func formatVars(vars map[string]any) string {
	if len(vars) == 0 {
		return ""
	}

	return formatValue(vars)
}

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case nil:
		return "null"
	}

	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}

	return string(b)
}
