package emit

import (
	"bytes"
	"fmt"
	"go/format"
	"sort"
	"strings"
	"text/template"

	"codec-generator/internal/shape"
	"codec-generator/internal/synth"
	"codec-generator/internal/trait"
)

// SourceConfig holds configuration for the source-generation strategy.
type SourceConfig struct {
	// PackageName is the name of the generated package.
	PackageName string
}

// DefaultSourceConfig returns the default source emitter configuration.
func DefaultSourceConfig() SourceConfig {
	return SourceConfig{PackageName: "codecs"}
}

// GeneratedFile represents a generated Go source file.
type GeneratedFile struct {
	Filename string
	Content  []byte
}

// SourceArtifact is the source strategy's artifact form: one generated
// file holding the field's decode and encode functions.
type SourceArtifact struct {
	FieldName string
	File      GeneratedFile
}

// Field implements Artifact.
func (a *SourceArtifact) Field() string {
	return a.FieldName
}

// SourceEmitter lowers plans into generated Go source. The generated
// functions operate on wire fragments and use the allocator-supplied
// identifiers verbatim as loop and carrier variables, so nesting depth
// and sibling count never produce identifier collisions.
type SourceEmitter struct {
	config SourceConfig
}

// NewSourceEmitter creates a SourceEmitter with the given configuration.
func NewSourceEmitter(config SourceConfig) *SourceEmitter {
	return &SourceEmitter{config: config}
}

// Emit implements Emitter.
func (e *SourceEmitter) Emit(codec *synth.FieldCodec) (Artifact, error) {
	funcBase := exportName(codec.WireName)

	decode := buildDecodeBody(codec.Decode.Root)
	encode := buildEncodeBody(codec.Encode.Root)

	imports := map[string]struct{}{
		"codec-generator/internal/synth": {},
		"codec-generator/internal/wire":  {},
	}
	mergeImports(imports, decode.imports)
	mergeImports(imports, encode.imports)

	data := codecTemplateData{
		PackageName: e.config.PackageName,
		FieldName:   codec.Field,
		DecodeFunc:  "decode" + funcBase,
		EncodeFunc:  "encode" + funcBase,
		DecodeBody:  strings.Join(indentAll(decode.statements, 1), "\n"),
		EncodeBody:  strings.Join(indentAll(encode.statements, 1), "\n"),
		Imports:     sortedImports(imports),
	}

	var buf bytes.Buffer
	if err := codecFileTemplate.Execute(&buf, data); err != nil {
		return nil, &EmitterError{Field: codec.Field, Err: err}
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, &EmitterError{Field: codec.Field, Err: fmt.Errorf("formatting generated code: %w", err)}
	}

	return &SourceArtifact{
		FieldName: codec.Field,
		File: GeneratedFile{
			Filename: snakeCase(codec.WireName) + "_codec.go",
			Content:  formatted,
		},
	}, nil
}

type codecTemplateData struct {
	PackageName string
	FieldName   string
	DecodeFunc  string
	EncodeFunc  string
	DecodeBody  string
	EncodeBody  string
	Imports     []string
}

var codecFileTemplate = template.Must(template.New("codec").Parse(`// Code generated by codec-generator. DO NOT EDIT.

package {{.PackageName}}

import (
{{range .Imports}}	"{{.}}"
{{end}})

// {{.DecodeFunc}} decodes field {{.FieldName}} from its parent fragment,
// returning the value and its presence state.
func {{.DecodeFunc}}(parent *wire.Fragment) (any, synth.Presence, error) {
{{.DecodeBody}}
}

// {{.EncodeFunc}} encodes field {{.FieldName}} into parent. A nil value
// is absent and emits nothing.
func {{.EncodeFunc}}(value any, parent *wire.Fragment) error {
{{.EncodeBody}}
}
`))

// srcResult collects generated statements and the imports they need.
type srcResult struct {
	statements []string
	imports    map[string]struct{}
}

func newSrcResult() srcResult {
	return srcResult{imports: map[string]struct{}{}}
}

func (r *srcResult) add(lines ...string) {
	r.statements = append(r.statements, lines...)
}

func (r *srcResult) addIndented(lines []string, tabs int) {
	r.statements = append(r.statements, indentAll(lines, tabs)...)
}

func (r *srcResult) needs(pkgs ...string) {
	for _, p := range pkgs {
		r.imports[p] = struct{}{}
	}
}

func (r *srcResult) absorb(o srcResult, tabs int) {
	r.addIndented(o.statements, tabs)
	mergeImports(r.imports, o.imports)
}

func mergeImports(dst, src map[string]struct{}) {
	for k := range src {
		dst[k] = struct{}{}
	}
}

func sortedImports(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}

	sort.Strings(out)

	return out
}

func indentAll(lines []string, tabs int) []string {
	if len(lines) == 0 {
		return lines
	}

	prefix := strings.Repeat("\t", tabs)
	out := make([]string, 0, len(lines))

	for _, l := range lines {
		if l == "" {
			out = append(out, l)
		} else {
			out = append(out, prefix+l)
		}
	}

	return out
}

// --- decode generation ---

// buildDecodeBody generates the body of the decode function for the root
// plan, including the three-way presence returns.
func buildDecodeBody(p *synth.Plan) srcResult {
	out := newSrcResult()
	outVar := "out_" + p.EntryIdent

	loop := newSrcResult()
	loop.add(decodeEntryBody(p, &loop, outVar)...)

	switch {
	case p.Flattened:
		slotsVar := "slots_" + p.EntryIdent
		out.add(
			fmt.Sprintf("%s := parent.ChildrenNamed(%q)", slotsVar, p.SlotName),
			fmt.Sprintf("if len(%s) == 0 {", slotsVar),
			"\treturn nil, synth.PresenceAbsent, nil",
			"}",
			fmt.Sprintf("%s := %s", outVar, containerLiteral(p)),
			fmt.Sprintf("if !(len(%s) == 1 && %s[0].IsEmptyMarker()) {", slotsVar, slotsVar),
			fmt.Sprintf("\tfor _, %s := range %s {", p.EntryIdent, slotsVar),
		)
		out.absorb(loop, 2)
		out.add("\t}", "}")

	default:
		slotVar := "slot_" + p.EntryIdent
		out.add(
			fmt.Sprintf("%s := parent.FirstNamed(%q)", slotVar, p.SlotName),
			fmt.Sprintf("if %s == nil {", slotVar),
			"\treturn nil, synth.PresenceAbsent, nil",
			"}",
			fmt.Sprintf("%s := %s", outVar, containerLiteral(p)),
			fmt.Sprintf("for _, %s := range %s.ChildrenNamed(%q) {", p.EntryIdent, slotVar, p.EntryName),
		)
		out.absorb(loop, 1)
		out.add("}")
	}

	out.add(
		fmt.Sprintf("if len(%s) == 0 {", outVar),
		fmt.Sprintf("\treturn %s, synth.PresenceEmpty, nil", outVar),
		"}",
		fmt.Sprintf("return %s, synth.PresencePopulated, nil", outVar),
	)

	return out
}

// decodeEntryBody generates the per-entry statements: key binding for
// maps, value/element decoding, container insertion.
func decodeEntryBody(p *synth.Plan, r *srcResult, outVar string) []string {
	var lines []string

	entry := p.EntryIdent

	if p.Kind == shape.KindMap {
		keyFrag := "kf_" + entry
		lines = append(lines,
			fmt.Sprintf("%s := %s.FirstNamed(%q)", keyFrag, entry, p.KeyName),
			fmt.Sprintf("if %s == nil {", keyFrag),
			fmt.Sprintf("\treturn nil, synth.PresenceAbsent, fmt.Errorf(\"map entry missing key element %%q\", %q)", p.KeyName),
			"}",
			fmt.Sprintf("%s := %s.Text", p.KeyIdent, keyFrag),
		)
		r.needs("fmt")

		valueLines, valueExpr := decodeMapValue(p, r)
		lines = append(lines, valueLines...)
		lines = append(lines, fmt.Sprintf("%s[%s] = %s", outVar, p.KeyIdent, valueExpr))

		return lines
	}

	elemLines, elemExpr := decodeListElement(p, r)
	lines = append(lines, elemLines...)
	lines = append(lines, fmt.Sprintf("%s = append(%s, %s)", outVar, outVar, elemExpr))

	return lines
}

// decodeMapValue generates statements reading a map entry's value
// sub-element and returns the expression holding the decoded value.
func decodeMapValue(p *synth.Plan, r *srcResult) ([]string, string) {
	entry := p.EntryIdent
	valueFrag := "vf_" + entry

	locate := []string{
		fmt.Sprintf("%s := %s.FirstNamed(%q)", valueFrag, entry, p.ValueName),
		fmt.Sprintf("if %s == nil {", valueFrag),
		fmt.Sprintf("\treturn nil, synth.PresenceAbsent, fmt.Errorf(\"map entry missing value element %%q\", %q)", p.ValueName),
		"}",
	}
	r.needs("fmt")

	switch {
	case p.Entry.Leaf != nil:
		if p.Entry.Leaf.Identity() {
			return locate, valueFrag + ".Text"
		}

		lines := append(locate, leafParseLines(r, p.ValueIdent, valueFrag+".Text", *p.Entry.Leaf)...)

		return lines, p.ValueIdent

	case p.Entry.Nested != nil:
		return decodeNestedBlock(p.Entry.Nested, entry, r)

	case p.Entry.Struct != nil:
		structVar := "st_" + entry
		lines := append(locate, decodeStructBlock(p.Entry.Struct, valueFrag, structVar, entry, r)...)

		return lines, structVar

	default:
		return []string{fmt.Sprintf("_ = %s // no entry rule", entry)}, "nil"
	}
}

// decodeListElement generates statements reading one list element and
// returns the expression holding the decoded value.
func decodeListElement(p *synth.Plan, r *srcResult) ([]string, string) {
	entry := p.EntryIdent

	switch {
	case p.Entry.Leaf != nil:
		if p.Entry.Leaf.Identity() {
			return nil, entry + ".Text"
		}

		return leafParseLines(r, p.ValueIdent, entry+".Text", *p.Entry.Leaf), p.ValueIdent

	case p.Entry.Nested != nil:
		return decodeNestedBlock(p.Entry.Nested, entry, r)

	case p.Entry.Struct != nil:
		structVar := "st_" + entry

		return decodeStructBlock(p.Entry.Struct, entry, structVar, entry, r), structVar

	default:
		return []string{fmt.Sprintf("_ = %s // no entry rule", entry)}, "nil"
	}
}

// decodeNestedBlock generates the statements for a nested occurrence in
// value position: absent and empty both yield an empty container.
func decodeNestedBlock(p *synth.Plan, parentVar string, r *srcResult) ([]string, string) {
	outVar := "out_" + p.EntryIdent

	inner := newSrcResult()
	inner.add(decodeEntryBody(p, &inner, outVar)...)
	mergeImports(r.imports, inner.imports)

	lines := []string{fmt.Sprintf("%s := %s", outVar, containerLiteral(p))}

	switch {
	case p.Anchored:
		lines = append(lines, fmt.Sprintf("for _, %s := range %s.ChildrenNamed(%q) {", p.EntryIdent, parentVar, p.EntryName))
		lines = append(lines, indentAll(inner.statements, 1)...)
		lines = append(lines, "}")

	case p.Flattened:
		slotsVar := "slots_" + p.EntryIdent
		lines = append(lines,
			fmt.Sprintf("%s := %s.ChildrenNamed(%q)", slotsVar, parentVar, p.SlotName),
			fmt.Sprintf("if !(len(%s) == 1 && %s[0].IsEmptyMarker()) {", slotsVar, slotsVar),
			fmt.Sprintf("\tfor _, %s := range %s {", p.EntryIdent, slotsVar),
		)
		lines = append(lines, indentAll(inner.statements, 2)...)
		lines = append(lines, "\t}", "}")

	default:
		slotVar := "slot_" + p.EntryIdent
		lines = append(lines,
			fmt.Sprintf("if %s := %s.FirstNamed(%q); %s != nil {", slotVar, parentVar, p.SlotName, slotVar),
			fmt.Sprintf("\tfor _, %s := range %s.ChildrenNamed(%q) {", p.EntryIdent, slotVar, p.EntryName),
		)
		lines = append(lines, indentAll(inner.statements, 2)...)
		lines = append(lines, "\t}", "}")
	}

	return lines, outVar
}

// decodeStructBlock generates member-by-member decoding of a structure
// fragment into a map variable. Absent members are skipped.
func decodeStructBlock(rule *synth.StructRule, fragVar, structVar, suffix string, r *srcResult) []string {
	lines := []string{fmt.Sprintf("%s := map[string]any{}", structVar)}

	for i, m := range rule.Members {
		memberFrag := fmt.Sprintf("mf_%s_%d", suffix, i)

		switch {
		case m.Rule.Leaf != nil:
			lines = append(lines, fmt.Sprintf("if %s := %s.FirstNamed(%q); %s != nil {", memberFrag, fragVar, m.WireName, memberFrag))

			if m.Rule.Leaf.Identity() {
				lines = append(lines, fmt.Sprintf("\t%s[%q] = %s.Text", structVar, m.Name, memberFrag))
			} else {
				memberVal := fmt.Sprintf("mv_%s_%d", suffix, i)
				lines = append(lines, indentAll(leafParseLines(r, memberVal, memberFrag+".Text", *m.Rule.Leaf), 1)...)
				lines = append(lines, fmt.Sprintf("\t%s[%q] = %s", structVar, m.Name, memberVal))
			}

			lines = append(lines, "}")

		case m.Rule.Nested != nil:
			lines = append(lines, decodeMemberNested(m, fragVar, structVar, r)...)

		case m.Rule.Struct != nil:
			innerVar := fmt.Sprintf("st_%s_%d", suffix, i)
			lines = append(lines, fmt.Sprintf("if %s := %s.FirstNamed(%q); %s != nil {", memberFrag, fragVar, m.WireName, memberFrag))
			lines = append(lines, indentAll(decodeStructBlock(m.Rule.Struct, memberFrag, innerVar, fmt.Sprintf("%s_%d", suffix, i), r), 1)...)
			lines = append(lines, fmt.Sprintf("\t%s[%q] = %s", structVar, m.Name, innerVar))
			lines = append(lines, "}")
		}
	}

	return lines
}

// decodeMemberNested generates decoding of an aggregate structure member,
// preserving member absence: no slot means no key in the decoded value.
func decodeMemberNested(m synth.MemberRule, fragVar, structVar string, r *srcResult) []string {
	p := m.Rule.Nested
	outVar := "out_" + p.EntryIdent

	inner := newSrcResult()
	inner.add(decodeEntryBody(p, &inner, outVar)...)
	mergeImports(r.imports, inner.imports)

	var lines []string

	if p.Flattened {
		slotsVar := "slots_" + p.EntryIdent
		lines = append(lines,
			fmt.Sprintf("if %s := %s.ChildrenNamed(%q); len(%s) > 0 {", slotsVar, fragVar, p.SlotName, slotsVar),
			fmt.Sprintf("\t%s := %s", outVar, containerLiteral(p)),
			fmt.Sprintf("\tif !(len(%s) == 1 && %s[0].IsEmptyMarker()) {", slotsVar, slotsVar),
			fmt.Sprintf("\t\tfor _, %s := range %s {", p.EntryIdent, slotsVar),
		)
		lines = append(lines, indentAll(inner.statements, 3)...)
		lines = append(lines,
			"\t\t}",
			"\t}",
			fmt.Sprintf("\t%s[%q] = %s", structVar, m.Name, outVar),
			"}",
		)

		return lines
	}

	slotVar := "slot_" + p.EntryIdent
	lines = append(lines,
		fmt.Sprintf("if %s := %s.FirstNamed(%q); %s != nil {", slotVar, fragVar, p.SlotName, slotVar),
		fmt.Sprintf("\t%s := %s", outVar, containerLiteral(p)),
		fmt.Sprintf("\tfor _, %s := range %s.ChildrenNamed(%q) {", p.EntryIdent, slotVar, p.EntryName),
	)
	lines = append(lines, indentAll(inner.statements, 2)...)
	lines = append(lines,
		"\t}",
		fmt.Sprintf("\t%s[%q] = %s", structVar, m.Name, outVar),
		"}",
	)

	return lines
}

// leafParseLines generates a wire.ParseLeaf call with error handling.
func leafParseLines(r *srcResult, destVar, textExpr string, rule synth.LeafRule) []string {
	r.needs("codec-generator/internal/shape", "codec-generator/internal/trait", "codec-generator/internal/wire")

	return []string{
		fmt.Sprintf("%s, err := wire.ParseLeaf(%s, %s, %s)", destVar, textExpr, leafKindExpr(rule.Kind), timestampFormatExpr(rule.Format)),
		"if err != nil {",
		"\treturn nil, synth.PresenceAbsent, err",
		"}",
	}
}

// --- encode generation ---

// buildEncodeBody generates the body of the encode function for the root
// plan: nil is absent and emits nothing.
func buildEncodeBody(p *synth.Plan) srcResult {
	out := newSrcResult()
	srcVar := containerVar(p) + "_" + p.EntryIdent

	out.add(
		"if value == nil {",
		"\treturn nil",
		"}",
		fmt.Sprintf("%s, ok := value.(%s)", srcVar, containerType(p)),
		"if !ok {",
		fmt.Sprintf("\treturn fmt.Errorf(\"cannot encode %%T as %s\", value)", p.Kind),
		"}",
	)
	out.needs("fmt")

	out.add(encodeCollectionBlock(p, srcVar, "parent", &out)...)
	out.add("return nil")

	return out
}

// encodeCollectionBlock generates the wrapper/flattened/anchored emission
// for one occurrence, reading from srcVar and appending to parentVar. A
// nil source emits an empty representation, never nothing: absence is
// the root's concern only.
func encodeCollectionBlock(p *synth.Plan, srcVar, parentVar string, r *srcResult) []string {
	entryLines := encodeEntryBody(p, r)

	var lines []string

	switch {
	case p.Anchored:
		lines = append(lines, encodeLoopHeader(p, srcVar, fmt.Sprintf("wire.New(%q)", p.EntryName), r)...)
		lines = append(lines, indentAll(entryLines, 1)...)
		lines = append(lines, fmt.Sprintf("\t%s.Append(%s)", parentVar, p.EntryIdent), "}")

	case p.Flattened:
		lines = append(lines,
			fmt.Sprintf("if len(%s) == 0 {", srcVar),
			fmt.Sprintf("\t%s.Append(%s)", parentVar, newFragmentExpr(p.SlotName, p.Namespace, r)),
			"} else {",
		)

		loop := encodeLoopHeader(p, srcVar, newFragmentExpr(p.SlotName, p.Namespace, r), r)
		lines = append(lines, indentAll(loop, 1)...)
		lines = append(lines, indentAll(entryLines, 2)...)
		lines = append(lines, fmt.Sprintf("\t\t%s.Append(%s)", parentVar, p.EntryIdent), "\t}", "}")

	default:
		wrapVar := "wrap_" + p.EntryIdent
		lines = append(lines, fmt.Sprintf("%s := %s", wrapVar, newFragmentExpr(p.SlotName, p.Namespace, r)))
		lines = append(lines, encodeLoopHeader(p, srcVar, fmt.Sprintf("wire.New(%q)", p.EntryName), r)...)
		lines = append(lines, indentAll(entryLines, 1)...)
		lines = append(lines, fmt.Sprintf("\t%s.Append(%s)", wrapVar, p.EntryIdent), "}")
		lines = append(lines, fmt.Sprintf("%s.Append(%s)", parentVar, wrapVar))
	}

	return lines
}

// encodeLoopHeader generates the iteration header. Map keys are sorted
// for deterministic output; the loop variable is the entry fragment.
func encodeLoopHeader(p *synth.Plan, srcVar, newEntryExpr string, r *srcResult) []string {
	if p.Kind == shape.KindMap {
		keysVar := "keys_" + p.EntryIdent
		r.needs("sort")

		return []string{
			fmt.Sprintf("%s := make([]string, 0, len(%s))", keysVar, srcVar),
			fmt.Sprintf("for %s := range %s {", p.KeyIdent, srcVar),
			fmt.Sprintf("\t%s = append(%s, %s)", keysVar, keysVar, p.KeyIdent),
			"}",
			fmt.Sprintf("sort.Strings(%s)", keysVar),
			fmt.Sprintf("for _, %s := range %s {", p.KeyIdent, keysVar),
			fmt.Sprintf("\t%s := %s[%s]", p.ValueIdent, srcVar, p.KeyIdent),
			fmt.Sprintf("\t%s := %s", p.EntryIdent, newEntryExpr),
			fmt.Sprintf("\t%s.Append(wire.Elem(%q, %s))", p.EntryIdent, p.KeyName, p.KeyIdent),
		}
	}

	return []string{
		fmt.Sprintf("for _, %s := range %s {", p.ValueIdent, srcVar),
		fmt.Sprintf("\t%s := %s", p.EntryIdent, newEntryExpr),
	}
}

// encodeEntryBody generates the statements filling one entry fragment
// from the current value variable.
func encodeEntryBody(p *synth.Plan, r *srcResult) []string {
	entry := p.EntryIdent
	value := p.ValueIdent

	switch {
	case p.Entry.Leaf != nil:
		textExpr, pre := leafFormatLines(r, "txt_"+entry, value, *p.Entry.Leaf)

		if p.Kind == shape.KindMap {
			return append(pre, fmt.Sprintf("%s.Append(wire.Elem(%q, %s))", entry, p.ValueName, textExpr))
		}

		return append(pre, fmt.Sprintf("%s.Text = %s", entry, textExpr))

	case p.Entry.Nested != nil:
		return encodeNestedValue(p.Entry.Nested, value, entry, r)

	case p.Entry.Struct != nil:
		if p.Kind == shape.KindMap {
			elemVar := "el_" + entry
			lines := []string{fmt.Sprintf("%s := wire.New(%q)", elemVar, p.ValueName)}
			lines = append(lines, encodeStructBlock(p.Entry.Struct, value, elemVar, entry, r)...)

			return append(lines, fmt.Sprintf("%s.Append(%s)", entry, elemVar))
		}

		return encodeStructBlock(p.Entry.Struct, value, entry, entry, r)

	default:
		return []string{fmt.Sprintf("_ = %s // no entry rule", value)}
	}
}

// encodeNestedValue generates encoding of a nested occurrence from an
// any-typed value. A nil value encodes the empty representation.
func encodeNestedValue(p *synth.Plan, valueExpr, targetVar string, r *srcResult) []string {
	srcVar := containerVar(p) + "_" + p.EntryIdent
	lines := []string{
		fmt.Sprintf("%s, ok := %s.(%s)", srcVar, valueExpr, containerType(p)),
		fmt.Sprintf("if !ok && %s != nil {", valueExpr),
		fmt.Sprintf("\treturn fmt.Errorf(\"cannot encode %%T as %s\", %s)", p.Kind, valueExpr),
		"}",
	}
	r.needs("fmt")

	return append(lines, encodeCollectionBlock(p, srcVar, targetVar, r)...)
}

// encodeStructBlock generates member-by-member encoding of a structure
// value into the target fragment. Missing members emit nothing.
func encodeStructBlock(rule *synth.StructRule, valueExpr, targetVar, suffix string, r *srcResult) []string {
	structSrc := "sm_" + suffix
	lines := []string{
		fmt.Sprintf("%s, ok := %s.(map[string]any)", structSrc, valueExpr),
		fmt.Sprintf("if !ok && %s != nil {", valueExpr),
		fmt.Sprintf("\treturn fmt.Errorf(\"cannot encode %%T as structure\", %s)", valueExpr),
		"}",
	}
	r.needs("fmt")

	for i, m := range rule.Members {
		memberVal := fmt.Sprintf("mv_%s_%d", suffix, i)
		lines = append(lines, fmt.Sprintf("if %s, ok := %s[%q]; ok {", memberVal, structSrc, m.Name))

		switch {
		case m.Rule.Leaf != nil:
			textExpr, pre := leafFormatLines(r, fmt.Sprintf("txt_%s_%d", suffix, i), memberVal, *m.Rule.Leaf)
			lines = append(lines, indentAll(pre, 1)...)
			lines = append(lines, fmt.Sprintf("\t%s.Append(wire.Elem(%q, %s))", targetVar, m.WireName, textExpr))

		case m.Rule.Nested != nil:
			lines = append(lines, indentAll(encodeNestedValue(m.Rule.Nested, memberVal, targetVar, r), 1)...)

		case m.Rule.Struct != nil:
			elemVar := fmt.Sprintf("el_%s_%d", suffix, i)
			lines = append(lines, fmt.Sprintf("\t%s := wire.New(%q)", elemVar, m.WireName))
			lines = append(lines, indentAll(encodeStructBlock(m.Rule.Struct, memberVal, elemVar, fmt.Sprintf("%s_%d", suffix, i), r), 1)...)
			lines = append(lines, fmt.Sprintf("\t%s.Append(%s)", targetVar, elemVar))
		}

		lines = append(lines, "}")
	}

	return lines
}

// leafFormatLines generates the conversion of a runtime value to wire
// text, returning the text expression and its preceding statements.
func leafFormatLines(r *srcResult, destVar, valueExpr string, rule synth.LeafRule) (string, []string) {
	if rule.Identity() {
		strVar := "s_" + destVar

		return strVar, []string{
			fmt.Sprintf("%s, ok := %s.(string)", strVar, valueExpr),
			"if !ok {",
			fmt.Sprintf("\treturn fmt.Errorf(\"cannot encode %%T as string\", %s)", valueExpr),
			"}",
		}
	}

	r.needs("codec-generator/internal/shape", "codec-generator/internal/trait", "codec-generator/internal/wire")

	return destVar, []string{
		fmt.Sprintf("%s, err := wire.FormatLeaf(%s, %s, %s)", destVar, valueExpr, leafKindExpr(rule.Kind), timestampFormatExpr(rule.Format)),
		"if err != nil {",
		"\treturn err",
		"}",
	}
}

// --- shared helpers ---

func containerLiteral(p *synth.Plan) string {
	if p.Kind == shape.KindList {
		return "[]any{}"
	}

	return "map[string]any{}"
}

func containerType(p *synth.Plan) string {
	if p.Kind == shape.KindList {
		return "[]any"
	}

	return "map[string]any"
}

func containerVar(p *synth.Plan) string {
	if p.Kind == shape.KindList {
		return "l"
	}

	return "m"
}

// newFragmentExpr renders a wire.New call with an optional namespace.
func newFragmentExpr(name string, ns *trait.Namespace, r *srcResult) string {
	if ns == nil {
		return fmt.Sprintf("wire.New(%q)", name)
	}

	r.needs("codec-generator/internal/trait")

	return fmt.Sprintf("wire.New(%q).WithNamespace(&trait.Namespace{Prefix: %q, URI: %q})", name, ns.Prefix, ns.URI)
}

func leafKindExpr(kind shape.LeafKind) string {
	switch kind {
	case shape.LeafBoolean:
		return "shape.LeafBoolean"
	case shape.LeafInteger:
		return "shape.LeafInteger"
	case shape.LeafLong:
		return "shape.LeafLong"
	case shape.LeafDouble:
		return "shape.LeafDouble"
	case shape.LeafBlob:
		return "shape.LeafBlob"
	case shape.LeafTimestamp:
		return "shape.LeafTimestamp"
	default:
		return "shape.LeafString"
	}
}

func timestampFormatExpr(format trait.TimestampFormat) string {
	switch format {
	case trait.TimestampDateTime:
		return "trait.TimestampDateTime"
	case trait.TimestampEpochSeconds:
		return "trait.TimestampEpochSeconds"
	case trait.TimestampHTTPDate:
		return "trait.TimestampHTTPDate"
	default:
		return "trait.TimestampUnspecified"
	}
}

// exportName upper-cases the first rune of a member name for use in a
// generated function name.
func exportName(name string) string {
	if name == "" {
		return name
	}

	return strings.ToUpper(name[:1]) + name[1:]
}

// snakeCase converts a camelCase member name to snake_case for the
// generated filename.
func snakeCase(name string) string {
	var sb strings.Builder

	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				sb.WriteByte('_')
			}

			sb.WriteRune(r + ('a' - 'A'))
		} else {
			sb.WriteRune(r)
		}
	}

	return sb.String()
}
