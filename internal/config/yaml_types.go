package config

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"yaani/internal/common"
)

// --- StringOrArray YAML methods ---

// UnmarshalYAML accepts either a single string or an array of strings.
func (s *StringOrArray) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var str string

		err := node.Decode(&str)
		if err != nil {
			return err
		}

		if str != "" {
			*s = StringOrArray{str}
		} else {
			*s = StringOrArray{}
		}

		return nil

	case yaml.SequenceNode:
		var arr []string

		err := node.Decode(&arr)
		if err != nil {
			return err
		}

		*s = arr

		return nil

	default:
		return fmt.Errorf("line %d: expected string or array, got %v", node.Line, kindName(node.Kind))
	}
}

// MarshalYAML outputs a single string if length is 1, otherwise an array.
func (s StringOrArray) MarshalYAML() (any, error) {
	if common.IsSingle(s) {
		return s[0], nil
	}

	return []string(s), nil
}

// Contains returns true if the array contains the given string.
func (s StringOrArray) Contains(str string) bool {
	return slices.Contains(s, str)
}

// --- Imports YAML methods ---

// UnmarshalYAML decodes the import mapping, keeping declaration order.
func (im *Imports) UnmarshalYAML(node *yaml.Node) error {
	if isNull(node) {
		*im = nil
		return nil
	}

	return eachPair(node, func(name string, value *yaml.Node) error {
		var st ImportStatement

		if !isNull(value) {
			if err := value.Decode(&st); err != nil {
				return fmt.Errorf("import %s: %w", name, err)
			}
		}

		st.Name = name
		*im = append(*im, st)

		return nil
	})
}

// MarshalYAML outputs the statements as a mapping in declaration order.
func (im Imports) MarshalYAML() (any, error) {
	out := &yaml.Node{Kind: yaml.MappingNode}

	for _, st := range im {
		var value yaml.Node
		if err := value.Encode(st); err != nil {
			return nil, fmt.Errorf("import %s: %w", st.Name, err)
		}

		out.Content = append(out.Content, scalar(st.Name), &value)
	}

	return out, nil
}

// --- Vars YAML methods ---

// UnmarshalYAML decodes the host_vars mapping, keeping declaration order.
func (v *Vars) UnmarshalYAML(node *yaml.Node) error {
	if isNull(node) {
		*v = nil
		return nil
	}

	return eachPair(node, func(name string, value *yaml.Node) error {
		if value.Kind != yaml.ScalarNode || isNull(value) {
			return fmt.Errorf("line %d: host variable %s must be an expression string", value.Line, name)
		}

		*v = append(*v, Var{Name: name, Expr: value.Value})

		return nil
	})
}

// MarshalYAML outputs the variables as a mapping in declaration order.
func (v Vars) MarshalYAML() (any, error) {
	out := &yaml.Node{Kind: yaml.MappingNode}
	for _, hv := range v {
		out.Content = append(out.Content, scalar(hv.Name), scalar(hv.Expr))
	}

	return out, nil
}

// --- Hierarchy YAML methods ---

// UnmarshalYAML decodes nested parent/children mappings. A null value is a
// leaf group.
func (h *Hierarchy) UnmarshalYAML(node *yaml.Node) error {
	if isNull(node) {
		*h = nil
		return nil
	}

	return eachPair(node, func(name string, value *yaml.Node) error {
		n := HierarchyNode{Name: name}

		if !isNull(value) {
			if err := value.Decode(&n.Children); err != nil {
				return fmt.Errorf("group %s: %w", name, err)
			}
		}

		*h = append(*h, n)

		return nil
	})
}

// MarshalYAML outputs the tree as nested mappings.
func (h Hierarchy) MarshalYAML() (any, error) {
	out := &yaml.Node{Kind: yaml.MappingNode}

	for _, n := range h {
		value := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}

		if len(n.Children) > 0 {
			children, err := n.Children.MarshalYAML()
			if err != nil {
				return nil, err
			}

			value = children.(*yaml.Node)
		}

		out.Content = append(out.Content, scalar(n.Name), value)
	}

	return out, nil
}

// eachPair calls fn for every key/value pair of a mapping node, in order.
func eachPair(node *yaml.Node, fn func(key string, value *yaml.Node) error) error {
	if node.Kind == yaml.AliasNode {
		node = node.Alias
	}

	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected mapping, got %v", node.Line, kindName(node.Kind))
	}

	seen := make(map[string]struct{}, len(node.Content)/2)

	for i := 0; i+1 < len(node.Content); i += 2 {
		var key string
		if err := node.Content[i].Decode(&key); err != nil {
			return fmt.Errorf("line %d: invalid key: %w", node.Content[i].Line, err)
		}

		if _, dup := seen[key]; dup {
			return fmt.Errorf("line %d: duplicate key %q", node.Content[i].Line, key)
		}

		seen[key] = struct{}{}

		if err := fn(key, node.Content[i+1]); err != nil {
			return err
		}
	}

	return nil
}

func isNull(node *yaml.Node) bool {
	return node == nil || (node.Kind == yaml.ScalarNode && node.Tag == "!!null")
}

func scalar(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return common.UnknownStr
	}
}
