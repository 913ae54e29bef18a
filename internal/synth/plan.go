package synth

import (
	"codec-generator/internal/common"
	"codec-generator/internal/shape"
	"codec-generator/internal/trait"
)

// Presence is the decode-time three-way state of an optional aggregate
// field: the field key missing entirely, present with zero entries, or
// present with at least one entry. The three states are never collapsed
// into each other.
type Presence int

const (
	PresenceAbsent Presence = iota
	PresenceEmpty
	PresencePopulated
)

// String returns a human-readable presence name.
func (p Presence) String() string {
	switch p {
	case PresenceAbsent:
		return "absent"
	case PresenceEmpty:
		return "empty"
	case PresencePopulated:
		return "populated"
	default:
		return common.UnknownStr
	}
}

// LeafRule is the conversion rule for a leaf value. A string leaf is a
// direct copy; every other kind needs a parse on decode and the inverse
// format on encode.
type LeafRule struct {
	Kind shape.LeafKind
	// Format is set for timestamp leaves only.
	Format trait.TimestampFormat
}

// Identity returns true for direct-copy leaves.
func (r LeafRule) Identity() bool {
	return r.Kind == shape.LeafString
}

// ValueRule describes what to do with an entry's value (maps) or with an
// element (lists). Exactly one field is set.
type ValueRule struct {
	// Leaf conversion, including identity.
	Leaf *LeafRule
	// Nested plan to apply at depth+1 for aggregate values.
	Nested *Plan
	// Struct decomposition for structure values.
	Struct *StructRule
}

// StructRule decomposes a structure value into per-member rules,
// processed in declaration order.
type StructRule struct {
	Shape   shape.ShapeID
	Members []MemberRule
}

// MemberRule binds one structure member to its wire element and rule.
type MemberRule struct {
	Name     string // IDL member name, key in the decoded value
	WireName string // element name within the structure fragment
	Rule     ValueRule
}

// Plan is one node of the depth-indexed plan tree for a map or list
// occurrence. The tree mirrors the field's nesting chain; each node
// records its depth, resolved effective names, flatten mode, and either a
// leaf conversion rule or a nested plan.
type Plan struct {
	// Depth along the field's chain; 0 is the field's declared shape.
	Depth int
	// Kind is shape.KindMap or shape.KindList.
	Kind shape.Kind
	// Flattened selects direct entries under the slot name instead of a
	// wrapper container.
	Flattened bool
	// Anchored marks a nested occurrence whose slot has already been
	// located by the parent (list-element position): entries are read
	// from and written into the element fragment itself.
	Anchored bool
	// SlotName is the element name of this occurrence's own slot: the
	// field's wire name at depth 0, the parent's resolved value/element
	// name below.
	SlotName string
	// Namespace qualifies the wrapper (or the repeated slot elements when
	// flattened). Nil means unqualified.
	Namespace *trait.Namespace
	// EntryName is the per-entry element name inside the wrapper.
	EntryName string
	// KeyName and ValueName are the map entry sub-element names. Lists
	// leave KeyName empty.
	KeyName   string
	ValueName string

	// Allocator-supplied carrier identifiers, unique within the field's
	// synthesis call. Emitters must consume them verbatim.
	EntryIdent string
	KeyIdent   string
	ValueIdent string

	// Key is the map key conversion rule (lists leave it nil).
	Key *LeafRule
	// Entry is the rule for the entry's value (maps) or the element
	// itself (lists).
	Entry ValueRule
}

// DecodePlan is the decode-side plan for one field. Only the outermost
// node carries the three-way presence instruction; nested occurrences
// that are present-but-empty yield an empty container value and never
// propagate an absent signal upward. Duplicate keys within one decoded
// collection resolve last-write-wins.
type DecodePlan struct {
	Root *Plan
}

// EncodePlan mirrors the decode plan: absent fields are omitted from
// output entirely, empty fields are written as a present, entry-less
// container.
type EncodePlan struct {
	Root *Plan
}

// FieldCodec is the synthesizer's per-field output, handed to a plan
// emitter.
type FieldCodec struct {
	// Field is the fully-qualified field name, e.g.
	// "com.example#Input.myMap".
	Field string
	// WireName is the field's slot element name at depth 0.
	WireName string
	Decode   *DecodePlan
	Encode   *EncodePlan
}
