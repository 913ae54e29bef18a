package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// --- RefDef YAML methods ---

// UnmarshalYAML implements custom YAML unmarshaling for RefDef. Accepts
// either a bare shape id string or a {target, traits} mapping.
func (r *RefDef) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var target string

		err := node.Decode(&target)
		if err != nil {
			return err
		}

		*r = RefDef{Target: target}

		return nil

	case yaml.MappingNode:
		// Plain struct alias avoids recursing into this method.
		type plain RefDef

		var p plain

		err := node.Decode(&p)
		if err != nil {
			return err
		}

		*r = RefDef(p)

		return nil

	default:
		return fmt.Errorf("expected shape id or {target, traits} mapping, got %v", node.Kind)
	}
}

// MarshalYAML implements custom YAML marshaling for RefDef. Outputs a
// bare string when no traits are attached.
func (r RefDef) MarshalYAML() (any, error) {
	if r.Traits == (TraitsDef{}) {
		return r.Target, nil
	}

	type plain RefDef

	return plain(r), nil
}

// --- MemberDefs YAML methods ---

// UnmarshalYAML implements custom YAML unmarshaling for MemberDefs,
// preserving the document's member order.
func (m *MemberDefs) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("expected members mapping, got %v", node.Kind)
	}

	out := make(MemberDefs, 0, len(node.Content)/2)

	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := node.Content[i]
		valNode := node.Content[i+1]

		var name string
		if err := keyNode.Decode(&name); err != nil {
			return err
		}

		var ref RefDef
		if err := valNode.Decode(&ref); err != nil {
			return fmt.Errorf("member %q: %w", name, err)
		}

		out = append(out, MemberDef{Name: name, Ref: ref})
	}

	*m = out

	return nil
}

// MarshalYAML implements custom YAML marshaling for MemberDefs.
func (m MemberDefs) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}

	for _, member := range m {
		keyNode := &yaml.Node{}
		if err := keyNode.Encode(member.Name); err != nil {
			return nil, err
		}

		valNode := &yaml.Node{}
		if err := valNode.Encode(member.Ref); err != nil {
			return nil, err
		}

		node.Content = append(node.Content, keyNode, valNode)
	}

	return node, nil
}

// Named returns the member with the given name, or nil.
func (m MemberDefs) Named(name string) *MemberDef {
	for i := range m {
		if m[i].Name == name {
			return &m[i]
		}
	}

	return nil
}
