package trait

import (
	"fmt"

	"codec-generator/internal/common"
)

// CollectionKind tells the resolver which names an occurrence needs.
type CollectionKind int

const (
	CollectionMap CollectionKind = iota + 1
	CollectionList
)

// String returns a human-readable representation of the CollectionKind.
func (k CollectionKind) String() string {
	switch k {
	case CollectionMap:
		return "map"
	case CollectionList:
		return "list"
	default:
		return common.UnknownStr
	}
}

// Occurrence describes one specific appearance of a collection shape
// within a field's nesting chain: the traits set at that position and the
// type-level defaults of the shape itself.
type Occurrence struct {
	Collection CollectionKind
	// Position holds the occurrence-level overrides (member traits at
	// depth 0, child-position traits below).
	Position Traits
	// Type holds the shape definition's own trait defaults.
	Type Traits
}

// Effective is the fully resolved wire configuration for one occurrence.
type Effective struct {
	KeyName   string // map key element name
	ValueName string // map value element name or list element name
	EntryName string // per-entry wrapper element name
	Flattened bool
	Namespace *Namespace
}

// GapError reports an occurrence that lacks a trait with no applicable
// fallback for the active binding.
type GapError struct {
	Trait string
}

// Error implements the error interface.
func (e *GapError) Error() string {
	return fmt.Sprintf("no value or fallback for trait %q", e.Trait)
}

// Resolver computes effective traits under one protocol binding. It is a
// pure function holder: no state beyond the binding, no side effects.
type Resolver struct {
	binding Binding
}

// NewResolver creates a Resolver for the given binding.
func NewResolver(binding Binding) *Resolver {
	return &Resolver{binding: binding}
}

// Binding returns the active binding.
func (r *Resolver) Binding() Binding {
	return r.binding
}

// Resolve computes the effective wire configuration for one occurrence.
// It fails only with a *GapError, when a name the occurrence needs has no
// override and no binding default.
func (r *Resolver) Resolve(occ Occurrence) (Effective, error) {
	eff := Effective{
		Flattened: firstBool(occ.Position.Flattened, occ.Type.Flattened, false),
		Namespace: firstNamespace(occ.Position.Namespace, occ.Type.Namespace, r.binding.Namespace),
	}

	switch occ.Collection {
	case CollectionMap:
		eff.KeyName = firstString(occ.Position.KeyName, occ.Type.KeyName, r.binding.KeyName)
		if eff.KeyName == "" {
			return Effective{}, &GapError{Trait: "keyName"}
		}

		eff.ValueName = firstString(occ.Position.ValueName, occ.Type.ValueName, r.binding.ValueName)
		if eff.ValueName == "" {
			return Effective{}, &GapError{Trait: "valueName"}
		}

		eff.EntryName = firstString(occ.Position.EntryName, occ.Type.EntryName, r.binding.EntryName)
		if eff.EntryName == "" {
			return Effective{}, &GapError{Trait: "entryName"}
		}

	case CollectionList:
		eff.ValueName = firstString(occ.Position.ValueName, occ.Type.ValueName, r.binding.ElementName)
		if eff.ValueName == "" {
			return Effective{}, &GapError{Trait: "elementName"}
		}
		// List entries are the elements themselves; the element name doubles
		// as the per-entry name.
		eff.EntryName = eff.ValueName

	default:
		return Effective{}, fmt.Errorf("unsupported collection kind %v", occ.Collection)
	}

	return eff, nil
}

// ResolveTimestampFormat computes the effective timestamp format for a
// leaf position. It fails with a *GapError when neither the position, the
// leaf type, nor the binding specifies a format.
func (r *Resolver) ResolveTimestampFormat(position, typ Traits) (TimestampFormat, error) {
	if position.TimestampFormat != TimestampUnspecified {
		return position.TimestampFormat, nil
	}

	if typ.TimestampFormat != TimestampUnspecified {
		return typ.TimestampFormat, nil
	}

	if r.binding.TimestampFormat != TimestampUnspecified {
		return r.binding.TimestampFormat, nil
	}

	return TimestampUnspecified, &GapError{Trait: "timestampFormat"}
}

func firstString(position, typ *string, fallback string) string {
	if position != nil {
		return *position
	}

	if typ != nil {
		return *typ
	}

	return fallback
}

func firstBool(position, typ *bool, fallback bool) bool {
	if position != nil {
		return *position
	}

	if typ != nil {
		return *typ
	}

	return fallback
}

func firstNamespace(position, typ, fallback *Namespace) *Namespace {
	if position != nil {
		return position
	}

	if typ != nil {
		return typ
	}

	return fallback
}
