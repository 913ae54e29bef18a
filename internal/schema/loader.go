package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"codec-generator/internal/shape"
	"codec-generator/internal/synth"
	"codec-generator/internal/trait"
)

// preludeNamespace holds the built-in leaf shapes every document can
// reference without defining them.
const preludeNamespace = "prelude"

// Model is the loaded form of a schema document: everything the
// synthesizer needs for one generation run.
type Model struct {
	Graph   *shape.Graph
	Binding trait.Binding
	Fields  []synth.Field
}

// LoadFile loads and parses a YAML schema file from the given path.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML data into a Document.
func Parse(data []byte) (*Document, error) {
	var doc Document

	err := yaml.Unmarshal(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema YAML: %w", err)
	}

	applyDefaults(&doc)

	return &doc, nil
}

// Load is the one-call form: read, parse, validate, and build.
func Load(path string) (*Model, error) {
	doc, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	return Build(doc)
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(doc *Document) {
	if doc.Version == "" {
		doc.Version = "1"
	}

	if doc.Binding == "" {
		doc.Binding = "rest-xml"
	}
}

// Build converts a document into the loaded model. The document is
// validated first; structural errors abort the build.
func Build(doc *Document) (*Model, error) {
	diags := Validate(doc)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid schema: %w", diags.Error())
	}

	binding, err := buildBinding(doc)
	if err != nil {
		return nil, err
	}

	graph := shape.NewGraph()
	seedPrelude(graph)

	for rawID, def := range doc.Shapes {
		node, err := buildNode(rawID, def)
		if err != nil {
			return nil, err
		}

		graph.Add(node)
	}

	fields, err := buildFields(doc, graph)
	if err != nil {
		return nil, err
	}

	return &Model{Graph: graph, Binding: binding, Fields: fields}, nil
}

// buildBinding resolves the named binding and applies the document's
// overrides on top of it.
func buildBinding(doc *Document) (trait.Binding, error) {
	if doc.Binding != "rest-xml" {
		return trait.Binding{}, fmt.Errorf("unknown binding %q", doc.Binding)
	}

	b := trait.RestXML()

	d := doc.Defaults
	if d == nil {
		return b, nil
	}

	if d.KeyName != "" {
		b.KeyName = d.KeyName
	}

	if d.ValueName != "" {
		b.ValueName = d.ValueName
	}

	if d.ElementName != "" {
		b.ElementName = d.ElementName
	}

	if d.EntryName != "" {
		b.EntryName = d.EntryName
	}

	if d.TimestampFormat != "" {
		f, err := trait.ParseTimestampFormat(d.TimestampFormat)
		if err != nil {
			return trait.Binding{}, fmt.Errorf("binding defaults: %w", err)
		}

		b.TimestampFormat = f
	}

	if d.Namespace != nil {
		b.Namespace = &trait.Namespace{Prefix: d.Namespace.Prefix, URI: d.Namespace.URI}
	}

	return b, nil
}

// seedPrelude registers the built-in leaf shapes.
func seedPrelude(g *shape.Graph) {
	leaves := map[string]shape.LeafKind{
		"String":    shape.LeafString,
		"Boolean":   shape.LeafBoolean,
		"Integer":   shape.LeafInteger,
		"Long":      shape.LeafLong,
		"Double":    shape.LeafDouble,
		"Blob":      shape.LeafBlob,
		"Timestamp": shape.LeafTimestamp,
	}

	for name, kind := range leaves {
		g.Add(&shape.Node{
			ID:   shape.ShapeID{Namespace: preludeNamespace, Name: name},
			Kind: shape.KindLeaf,
			Leaf: kind,
		})
	}
}

// buildNode converts one shape definition into a graph node.
func buildNode(rawID string, def *ShapeDef) (*shape.Node, error) {
	id, err := shape.ParseShapeID(rawID)
	if err != nil {
		return nil, fmt.Errorf("shape %q: %w", rawID, err)
	}

	traits, err := buildTraits(def.Traits)
	if err != nil {
		return nil, fmt.Errorf("shape %s: %w", id, err)
	}

	node := &shape.Node{ID: id, Traits: traits}

	switch def.Type {
	case "map":
		node.Kind = shape.KindMap

		node.Key, err = buildRef(def.Key)
		if err != nil {
			return nil, fmt.Errorf("shape %s key: %w", id, err)
		}

		node.Value, err = buildRef(def.Value)
		if err != nil {
			return nil, fmt.Errorf("shape %s value: %w", id, err)
		}

	case "list":
		node.Kind = shape.KindList

		node.Element, err = buildRef(def.Element)
		if err != nil {
			return nil, fmt.Errorf("shape %s element: %w", id, err)
		}

	case "structure":
		node.Kind = shape.KindStructure

		for _, m := range def.Members {
			ref, err := buildRef(&m.Ref)
			if err != nil {
				return nil, fmt.Errorf("shape %s member %s: %w", id, m.Name, err)
			}

			node.Members = append(node.Members, shape.Member{Name: m.Name, Ref: ref})
		}

	default:
		kind, ok := leafKindFromType(def.Type)
		if !ok {
			return nil, fmt.Errorf("shape %s: unknown type %q", id, def.Type)
		}

		node.Kind = shape.KindLeaf
		node.Leaf = kind
	}

	return node, nil
}

// buildRef converts a reference definition into a graph Ref.
func buildRef(def *RefDef) (shape.Ref, error) {
	if def == nil {
		return shape.Ref{}, fmt.Errorf("missing reference")
	}

	target, err := shape.ParseShapeID(def.Target)
	if err != nil {
		return shape.Ref{}, err
	}

	traits, err := buildTraits(def.Traits)
	if err != nil {
		return shape.Ref{}, err
	}

	return shape.Ref{Target: target, Traits: traits}, nil
}

// buildTraits converts a traits definition into occurrence traits.
func buildTraits(def TraitsDef) (trait.Traits, error) {
	t := trait.Traits{
		KeyName:   def.KeyName,
		ValueName: def.ValueName,
		EntryName: def.EntryName,
		Flattened: def.Flattened,
	}

	if def.Namespace != nil {
		t.Namespace = &trait.Namespace{Prefix: def.Namespace.Prefix, URI: def.Namespace.URI}
	}

	if def.TimestampFormat != "" {
		f, err := trait.ParseTimestampFormat(def.TimestampFormat)
		if err != nil {
			return trait.Traits{}, err
		}

		t.TimestampFormat = f
	}

	return t, nil
}

// buildFields resolves the document's field list against the graph.
func buildFields(doc *Document, graph *shape.Graph) ([]synth.Field, error) {
	fields := make([]synth.Field, 0, len(doc.Fields))

	for _, fd := range doc.Fields {
		structID, err := shape.ParseShapeID(fd.Structure)
		if err != nil {
			return nil, fmt.Errorf("field %s.%s: %w", fd.Structure, fd.Member, err)
		}

		node := graph.Get(structID)
		if node == nil {
			return nil, fmt.Errorf("field %s.%s: unknown structure", fd.Structure, fd.Member)
		}

		member := node.MemberNamed(fd.Member)
		if member == nil {
			return nil, fmt.Errorf("field %s.%s: structure has no such member", fd.Structure, fd.Member)
		}

		fields = append(fields, synth.Field{Structure: structID, Member: *member})
	}

	return fields, nil
}

// leafKindFromType maps a document type name to a leaf kind.
func leafKindFromType(typ string) (shape.LeafKind, bool) {
	switch typ {
	case "string":
		return shape.LeafString, true
	case "boolean":
		return shape.LeafBoolean, true
	case "integer":
		return shape.LeafInteger, true
	case "long":
		return shape.LeafLong, true
	case "double":
		return shape.LeafDouble, true
	case "blob":
		return shape.LeafBlob, true
	case "timestamp":
		return shape.LeafTimestamp, true
	default:
		return shape.LeafUnknown, false
	}
}
