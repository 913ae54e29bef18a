package shape

import (
	"fmt"
	"strings"

	"codec-generator/internal/common"
	"codec-generator/internal/trait"
)

// ShapeID uniquely identifies a shape by its namespace and name.
type ShapeID struct {
	Namespace string // e.g., "com.example"
	Name      string // e.g., "StringMap"
}

// String returns a human-readable representation of the ShapeID.
func (id ShapeID) String() string {
	if id.Namespace == "" {
		return id.Name
	}

	return id.Namespace + "#" + id.Name
}

// IsZero returns true if the ShapeID is unset.
func (id ShapeID) IsZero() bool {
	return id.Namespace == "" && id.Name == ""
}

// ParseShapeID parses a "namespace#Name" string into a ShapeID.
// A bare name without '#' is treated as a name in the empty namespace.
func ParseShapeID(s string) (ShapeID, error) {
	if s == "" {
		return ShapeID{}, fmt.Errorf("empty shape id")
	}

	ns, name, ok := strings.Cut(s, "#")
	if !ok {
		return ShapeID{Name: s}, nil
	}

	if name == "" {
		return ShapeID{}, fmt.Errorf("shape id %q has empty name", s)
	}

	return ShapeID{Namespace: ns, Name: name}, nil
}

// Kind represents the kind of a shape.
type Kind int

const (
	KindUnknown   Kind = iota
	KindStructure      // named members, each pointing at a child shape
	KindMap            // key shape + value shape
	KindList           // element shape
	KindLeaf           // primitive, no children
)

// String returns a human-readable representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindStructure:
		return "structure"
	case KindMap:
		return "map"
	case KindList:
		return "list"
	case KindLeaf:
		return "leaf"
	default:
		return common.UnknownStr
	}
}

// IsAggregate returns true for shapes with children (structure, map, list).
func (k Kind) IsAggregate() bool {
	return k == KindStructure || k == KindMap || k == KindList
}

// LeafKind represents the primitive kind of a leaf shape.
type LeafKind int

const (
	LeafUnknown LeafKind = iota
	LeafString
	LeafBoolean
	LeafInteger
	LeafLong
	LeafDouble
	LeafBlob
	LeafTimestamp
)

// String returns a human-readable representation of the LeafKind.
func (k LeafKind) String() string {
	switch k {
	case LeafString:
		return "string"
	case LeafBoolean:
		return "boolean"
	case LeafInteger:
		return "integer"
	case LeafLong:
		return "long"
	case LeafDouble:
		return "double"
	case LeafBlob:
		return "blob"
	case LeafTimestamp:
		return "timestamp"
	default:
		return common.UnknownStr
	}
}

// Ref is a child position within an aggregate shape: the target shape plus
// the traits attached at that position. Position traits are occurrence
// traits for everything nested below the owning member.
type Ref struct {
	Target ShapeID
	Traits trait.Traits
}

// Member is a named structure member.
type Member struct {
	Name string // IDL member name, also the default wire name
	Ref
}

// Node describes one shape in the graph. Exactly the fields for its Kind
// are meaningful: Members for structures, Key/Value for maps, Element for
// lists, Leaf for leaves.
type Node struct {
	ID   ShapeID
	Kind Kind

	// Traits are type-level defaults, overridden per occurrence.
	Traits trait.Traits

	Members []Member // KindStructure
	Key     Ref      // KindMap
	Value   Ref      // KindMap
	Element Ref      // KindList
	Leaf    LeafKind // KindLeaf
}

// MemberNamed returns the structure member with the given name, or nil.
func (n *Node) MemberNamed(name string) *Member {
	for i := range n.Members {
		if n.Members[i].Name == name {
			return &n.Members[i]
		}
	}

	return nil
}

// Graph holds all shapes for one generation run. It is populated by the
// schema loader and read-only afterwards.
type Graph struct {
	// Shapes maps ShapeID to its node definition.
	Shapes map[ShapeID]*Node
}

// NewGraph creates a new empty Graph.
func NewGraph() *Graph {
	return &Graph{Shapes: make(map[ShapeID]*Node)}
}

// Add registers a node under its ID, replacing any previous definition.
func (g *Graph) Add(n *Node) {
	g.Shapes[n.ID] = n
}

// Get returns the node for a given ShapeID, or nil if not found.
func (g *Graph) Get(id ShapeID) *Node {
	return g.Shapes[id]
}
