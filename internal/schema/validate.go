package schema

import (
	"fmt"

	"codec-generator/internal/diagnostic"
	"codec-generator/internal/shape"
	"codec-generator/internal/trait"
)

// Diagnostic codes reported by Validate.
const (
	CodeUnknownBinding   = "SCHEMA_UNKNOWN_BINDING"
	CodeBadShapeID       = "SCHEMA_BAD_SHAPE_ID"
	CodeBadType          = "SCHEMA_BAD_TYPE"
	CodeMissingRef       = "SCHEMA_MISSING_REF"
	CodeUnknownTarget    = "SCHEMA_UNKNOWN_TARGET"
	CodeBadTimestamp     = "SCHEMA_BAD_TIMESTAMP_FORMAT"
	CodeUnknownStructure = "SCHEMA_UNKNOWN_STRUCTURE"
	CodeUnknownMember    = "SCHEMA_UNKNOWN_MEMBER"
	CodeNoShapes         = "SCHEMA_NO_SHAPES"
	CodeNoFields         = "SCHEMA_NO_FIELDS"
	CodeEmptyStructure   = "SCHEMA_EMPTY_STRUCTURE"
)

// Validate checks a parsed document for structural problems and returns
// them as diagnostics. Errors make the document unusable for Build;
// warnings do not.
func Validate(doc *Document) diagnostic.Diagnostics {
	var diags diagnostic.Diagnostics

	if doc.Binding != "rest-xml" {
		diags.AddError(CodeUnknownBinding, fmt.Sprintf("unknown binding %q", doc.Binding), "")
	}

	if doc.Defaults != nil && doc.Defaults.TimestampFormat != "" {
		if _, err := trait.ParseTimestampFormat(doc.Defaults.TimestampFormat); err != nil {
			diags.AddError(CodeBadTimestamp, err.Error(), "")
		}
	}

	if len(doc.Shapes) == 0 {
		diags.AddError(CodeNoShapes, "document defines no shapes", "")
	}

	known := knownShapeIDs(doc, &diags)

	for rawID, def := range doc.Shapes {
		validateShape(rawID, def, known, &diags)
	}

	if len(doc.Fields) == 0 {
		diags.AddWarning(CodeNoFields, "document selects no fields; nothing will be generated", "")
	}

	for _, fd := range doc.Fields {
		validateField(doc, fd, &diags)
	}

	return diags
}

// knownShapeIDs collects all resolvable shape ids: document shapes plus
// the prelude leaves.
func knownShapeIDs(doc *Document, diags *diagnostic.Diagnostics) map[shape.ShapeID]struct{} {
	known := make(map[shape.ShapeID]struct{})

	for _, name := range []string{"String", "Boolean", "Integer", "Long", "Double", "Blob", "Timestamp"} {
		known[shape.ShapeID{Namespace: preludeNamespace, Name: name}] = struct{}{}
	}

	for rawID := range doc.Shapes {
		id, err := shape.ParseShapeID(rawID)
		if err != nil {
			diags.AddError(CodeBadShapeID, err.Error(), rawID)
			continue
		}

		known[id] = struct{}{}
	}

	return known
}

func validateShape(rawID string, def *ShapeDef, known map[shape.ShapeID]struct{}, diags *diagnostic.Diagnostics) {
	validateTraits(def.Traits, rawID, diags)

	switch def.Type {
	case "map":
		validateRef(def.Key, rawID+" key", known, diags)
		validateRef(def.Value, rawID+" value", known, diags)

	case "list":
		validateRef(def.Element, rawID+" element", known, diags)

	case "structure":
		if len(def.Members) == 0 {
			diags.AddWarning(CodeEmptyStructure, "structure has no members", rawID)
		}

		for _, m := range def.Members {
			validateRef(&m.Ref, rawID+"."+m.Name, known, diags)
		}

	default:
		if _, ok := leafKindFromType(def.Type); !ok {
			diags.AddError(CodeBadType, fmt.Sprintf("unknown shape type %q", def.Type), rawID)
		}
	}
}

func validateRef(ref *RefDef, where string, known map[shape.ShapeID]struct{}, diags *diagnostic.Diagnostics) {
	if ref == nil {
		diags.AddError(CodeMissingRef, "missing required reference", where)
		return
	}

	validateTraits(ref.Traits, where, diags)

	id, err := shape.ParseShapeID(ref.Target)
	if err != nil {
		diags.AddError(CodeBadShapeID, err.Error(), where)
		return
	}

	if _, ok := known[id]; !ok {
		diags.AddError(CodeUnknownTarget, fmt.Sprintf("reference to undefined shape %s", id), where)
	}
}

func validateTraits(def TraitsDef, where string, diags *diagnostic.Diagnostics) {
	if def.TimestampFormat == "" {
		return
	}

	if _, err := trait.ParseTimestampFormat(def.TimestampFormat); err != nil {
		diags.AddError(CodeBadTimestamp, err.Error(), where)
	}
}

func validateField(doc *Document, fd FieldDef, diags *diagnostic.Diagnostics) {
	where := fd.Structure + "." + fd.Member

	def, ok := lookupShape(doc, fd.Structure)
	if !ok || def.Type != "structure" {
		diags.AddError(CodeUnknownStructure, fmt.Sprintf("field references unknown structure %q", fd.Structure), where)
		return
	}

	if def.Members.Named(fd.Member) == nil {
		diags.AddError(CodeUnknownMember, fmt.Sprintf("structure %q has no member %q", fd.Structure, fd.Member), where)
	}
}

// lookupShape finds a shape definition by raw id, tolerating spelling
// differences that parse to the same ShapeID.
func lookupShape(doc *Document, rawID string) (*ShapeDef, bool) {
	if def, ok := doc.Shapes[rawID]; ok {
		return def, true
	}

	want, err := shape.ParseShapeID(rawID)
	if err != nil {
		return nil, false
	}

	for candidate, def := range doc.Shapes {
		id, err := shape.ParseShapeID(candidate)
		if err == nil && id == want {
			return def, true
		}
	}

	return nil, false
}
