package synth

import (
	"errors"
	"fmt"

	"codec-generator/internal/names"
	"codec-generator/internal/shape"
	"codec-generator/internal/trait"
)

// SchemaError reports a field whose shape chain is malformed for the
// target protocol. It is fatal for that field only; the run continues
// for others.
type SchemaError struct {
	// Field is the fully-qualified field name.
	Field  string
	Reason string
	// Err is the underlying cause, e.g. a *trait.GapError.
	Err error
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Field, e.Reason, e.Err)
	}

	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Unwrap returns the underlying cause.
func (e *SchemaError) Unwrap() error {
	return e.Err
}

// Field identifies one structure member to synthesize a codec for.
type Field struct {
	Structure shape.ShapeID
	Member    shape.Member
}

// QualifiedName returns the fully-qualified field name used in
// diagnostics and artifacts.
func (f Field) QualifiedName() string {
	return f.Structure.String() + "." + f.Member.Name
}

// Synthesizer builds decode and encode plans for aggregate fields. It
// holds only read-only state and is safe for concurrent use.
type Synthesizer struct {
	graph    *shape.Graph
	resolver *trait.Resolver
}

// NewSynthesizer creates a Synthesizer over an immutable shape graph and
// one protocol binding's trait resolver.
func NewSynthesizer(graph *shape.Graph, resolver *trait.Resolver) *Synthesizer {
	return &Synthesizer{graph: graph, resolver: resolver}
}

// Synthesize builds both plans for one field.
func (s *Synthesizer) Synthesize(f Field) (*FieldCodec, error) {
	dec, err := s.BuildDecodePlan(f)
	if err != nil {
		return nil, err
	}

	enc, err := s.BuildEncodePlan(f)
	if err != nil {
		return nil, err
	}

	return &FieldCodec{
		Field:    f.QualifiedName(),
		WireName: f.Member.Name,
		Decode:   dec,
		Encode:   enc,
	}, nil
}

// BuildDecodePlan builds the decode plan for one field. Allocator state
// is scoped to this call and discarded after.
func (s *Synthesizer) BuildDecodePlan(f Field) (*DecodePlan, error) {
	root, err := s.buildChain(f, names.NewAllocator())
	if err != nil {
		return nil, err
	}

	return &DecodePlan{Root: root}, nil
}

// BuildEncodePlan builds the encode plan for one field. It mirrors the
// decode plan but is synthesized with its own allocator: encode and
// decode artifacts live in separate scopes.
func (s *Synthesizer) BuildEncodePlan(f Field) (*EncodePlan, error) {
	root, err := s.buildChain(f, names.NewAllocator())
	if err != nil {
		return nil, err
	}

	return &EncodePlan{Root: root}, nil
}

// buildChain starts the recursive descent at depth 0, the field's own
// declared shape.
func (s *Synthesizer) buildChain(f Field, alloc *names.Allocator) (*Plan, error) {
	field := f.QualifiedName()

	node := s.graph.Get(f.Member.Target)
	if node == nil {
		return nil, &SchemaError{Field: field, Reason: fmt.Sprintf("unresolved shape %s", f.Member.Target)}
	}

	switch node.Kind {
	case shape.KindMap, shape.KindList:
		return s.buildPlan(field, node, f.Member.Name, f.Member.Traits, 0, false, alloc)
	default:
		return nil, &SchemaError{
			Field:  field,
			Reason: fmt.Sprintf("field shape must be a map or list, got %s", node.Kind),
		}
	}
}

// buildPlan builds the plan node for one map/list occurrence at the
// given depth, recursing for aggregate values.
func (s *Synthesizer) buildPlan(
	field string,
	node *shape.Node,
	slotName string,
	position trait.Traits,
	depth int,
	anchored bool,
	alloc *names.Allocator,
) (*Plan, error) {
	collection := trait.CollectionMap
	if node.Kind == shape.KindList {
		collection = trait.CollectionList
	}

	eff, err := s.resolver.Resolve(trait.Occurrence{
		Collection: collection,
		Position:   position,
		Type:       node.Traits,
	})
	if err != nil {
		return nil, &SchemaError{Field: field, Reason: "trait resolution gap", Err: err}
	}

	// A flattened occurrence has no wrapper element for a namespace to
	// qualify; an explicit namespace on a nested flattened occurrence is
	// contradictory. The binding-wide default namespace does not trigger
	// this.
	if depth > 0 && eff.Flattened && (position.Namespace != nil || node.Traits.Namespace != nil) {
		return nil, &SchemaError{
			Field:  field,
			Reason: fmt.Sprintf("contradictory flattened+namespace traits at depth %d", depth),
		}
	}

	p := &Plan{
		Depth:      depth,
		Kind:       node.Kind,
		Flattened:  eff.Flattened,
		Anchored:   anchored,
		SlotName:   slotName,
		Namespace:  eff.Namespace,
		EntryName:  eff.EntryName,
		ValueName:  eff.ValueName,
		EntryIdent: alloc.FreshEntryName(depth),
	}
	p.KeyIdent, p.ValueIdent = alloc.FreshWrapperNames(depth)

	valueRef := node.Element
	valuePos := "element"

	if node.Kind == shape.KindMap {
		p.KeyName = eff.KeyName
		valueRef = node.Value
		valuePos = "value"

		key, err := s.keyRule(field, node.Key)
		if err != nil {
			return nil, err
		}

		p.Key = key
	}

	entry, err := s.valueRule(field, valueRef, eff, depth, node.Kind, alloc)
	if err != nil {
		var schemaErr *SchemaError
		if errors.As(err, &schemaErr) {
			return nil, err
		}

		return nil, &SchemaError{Field: field, Reason: fmt.Sprintf("invalid %s shape at depth %d", valuePos, depth), Err: err}
	}

	p.Entry = entry

	return p, nil
}

// keyRule validates and builds the map key conversion rule. The XML-style
// binding requires string keys.
func (s *Synthesizer) keyRule(field string, key shape.Ref) (*LeafRule, error) {
	node := s.graph.Get(key.Target)
	if node == nil {
		return nil, &SchemaError{Field: field, Reason: fmt.Sprintf("unresolved map key shape %s", key.Target)}
	}

	if node.Kind != shape.KindLeaf || node.Leaf != shape.LeafString {
		return nil, &SchemaError{
			Field:  field,
			Reason: fmt.Sprintf("map key must be a string leaf, got %s %s", node.Kind, node.ID),
		}
	}

	return &LeafRule{Kind: shape.LeafString}, nil
}

// valueRule builds the rule for a map value or list element position.
// Aggregate values recurse at depth+1; leaves get a conversion rule;
// structures decompose per member.
func (s *Synthesizer) valueRule(
	field string,
	ref shape.Ref,
	parent trait.Effective,
	depth int,
	parentKind shape.Kind,
	alloc *names.Allocator,
) (ValueRule, error) {
	node := s.graph.Get(ref.Target)
	if node == nil {
		return ValueRule{}, fmt.Errorf("unresolved shape %s", ref.Target)
	}

	switch node.Kind {
	case shape.KindMap, shape.KindList:
		// List elements are located by the parent's entry iteration; the
		// nested plan reads from the element fragment itself. Map values
		// locate their own slot under the resolved value name.
		slotName := parent.ValueName
		anchored := parentKind == shape.KindList

		if anchored {
			slotName = parent.EntryName
		}

		nested, err := s.buildPlan(field, node, slotName, ref.Traits, depth+1, anchored, alloc)
		if err != nil {
			return ValueRule{}, err
		}

		return ValueRule{Nested: nested}, nil

	case shape.KindLeaf:
		leaf, err := s.leafRule(node, ref.Traits)
		if err != nil {
			return ValueRule{}, err
		}

		return ValueRule{Leaf: leaf}, nil

	case shape.KindStructure:
		rule, err := s.structRule(field, node, depth, alloc)
		if err != nil {
			return ValueRule{}, err
		}

		return ValueRule{Struct: rule}, nil

	default:
		return ValueRule{}, fmt.Errorf("shape %s has unknown kind", node.ID)
	}
}

// leafRule attaches the conversion rule for a leaf position. Timestamp
// leaves need a resolved format; a gap escalates to the caller.
func (s *Synthesizer) leafRule(node *shape.Node, position trait.Traits) (*LeafRule, error) {
	rule := &LeafRule{Kind: node.Leaf}

	if node.Leaf == shape.LeafTimestamp {
		format, err := s.resolver.ResolveTimestampFormat(position, node.Traits)
		if err != nil {
			return nil, err
		}

		rule.Format = format
	}

	return rule, nil
}

// structRule decomposes a structure value into member rules. Members that
// are aggregates continue the chain at depth+1 with the same allocator.
func (s *Synthesizer) structRule(field string, node *shape.Node, depth int, alloc *names.Allocator) (*StructRule, error) {
	rule := &StructRule{Shape: node.ID}

	for _, m := range node.Members {
		target := s.graph.Get(m.Target)
		if target == nil {
			return nil, fmt.Errorf("unresolved shape %s for member %s", m.Target, m.Name)
		}

		mr := MemberRule{Name: m.Name, WireName: m.Name}

		switch target.Kind {
		case shape.KindMap, shape.KindList:
			nested, err := s.buildPlan(field, target, m.Name, m.Traits, depth+1, false, alloc)
			if err != nil {
				return nil, err
			}

			mr.Rule = ValueRule{Nested: nested}

		case shape.KindLeaf:
			leaf, err := s.leafRule(target, m.Traits)
			if err != nil {
				return nil, err
			}

			mr.Rule = ValueRule{Leaf: leaf}

		case shape.KindStructure:
			nested, err := s.structRule(field, target, depth, alloc)
			if err != nil {
				return nil, err
			}

			mr.Rule = ValueRule{Struct: nested}

		default:
			return nil, fmt.Errorf("member %s targets shape %s of unknown kind", m.Name, target.ID)
		}

		rule.Members = append(rule.Members, mr)
	}

	return rule, nil
}
