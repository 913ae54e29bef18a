package schema

// Document is the root of a YAML schema file.
type Document struct {
	// Version of the document format (for future compatibility).
	Version string `yaml:"version,omitempty"`

	// Binding names the protocol binding. Only "rest-xml" is known.
	Binding string `yaml:"binding,omitempty"`

	// Defaults overrides individual binding defaults.
	Defaults *BindingDef `yaml:"defaults,omitempty"`

	// Shapes defines the shape graph, keyed by shape id ("ns#Name").
	Shapes map[string]*ShapeDef `yaml:"shapes"`

	// Fields lists the structure members to synthesize codecs for.
	Fields []FieldDef `yaml:"fields"`
}

// BindingDef overrides the active binding's defaults. Empty fields keep
// the binding's own value.
type BindingDef struct {
	KeyName         string        `yaml:"keyName,omitempty"`
	ValueName       string        `yaml:"valueName,omitempty"`
	ElementName     string        `yaml:"elementName,omitempty"`
	EntryName       string        `yaml:"entryName,omitempty"`
	TimestampFormat string        `yaml:"timestampFormat,omitempty"`
	Namespace       *NamespaceDef `yaml:"namespace,omitempty"`
}

// NamespaceDef is a namespace declaration.
type NamespaceDef struct {
	Prefix string `yaml:"prefix,omitempty"`
	URI    string `yaml:"uri"`
}

// TraitsDef holds the traits attachable to a shape definition or to an
// occurrence (member, key, value, element position).
type TraitsDef struct {
	KeyName         *string       `yaml:"keyName,omitempty"`
	ValueName       *string       `yaml:"valueName,omitempty"`
	EntryName       *string       `yaml:"entryName,omitempty"`
	Flattened       *bool         `yaml:"flattened,omitempty"`
	Namespace       *NamespaceDef `yaml:"namespace,omitempty"`
	TimestampFormat string        `yaml:"timestampFormat,omitempty"`
}

// ShapeDef defines one shape. Type selects which of the remaining
// fields apply: "map" uses Key/Value, "list" uses Element, "structure"
// uses Members, and a leaf kind name ("string", "boolean", "integer",
// "long", "double", "blob", "timestamp") uses none.
type ShapeDef struct {
	Type    string     `yaml:"type"`
	Traits  TraitsDef  `yaml:"traits,omitempty"`
	Key     *RefDef    `yaml:"key,omitempty"`
	Value   *RefDef    `yaml:"value,omitempty"`
	Element *RefDef    `yaml:"element,omitempty"`
	Members MemberDefs `yaml:"members,omitempty"`
}

// RefDef points at a target shape from a child position, optionally
// attaching position traits.
type RefDef struct {
	Target string    `yaml:"target"`
	Traits TraitsDef `yaml:"traits,omitempty"`
}

// MemberDef is one named structure member.
type MemberDef struct {
	Name string
	Ref  RefDef
}

// MemberDefs is the ordered member list of a structure. YAML mappings
// lose insertion order under map decoding, so it carries its own
// unmarshaler; member order is the wire order of generated codecs.
type MemberDefs []MemberDef

// FieldDef selects one structure member for codec synthesis.
type FieldDef struct {
	Structure string `yaml:"structure"`
	Member    string `yaml:"member"`
}
