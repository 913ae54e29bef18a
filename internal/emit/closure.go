package emit

import (
	"fmt"
	"sort"

	"codec-generator/internal/shape"
	"codec-generator/internal/synth"
	"codec-generator/internal/wire"
)

// DecodeFunc decodes one field from its parent fragment, returning the
// value and its three-way presence state.
type DecodeFunc func(parent *wire.Fragment) (any, synth.Presence, error)

// EncodeFunc encodes one field value into its parent fragment. A nil
// value is absent and produces no output; a non-nil empty container is
// written as a present, entry-less container.
type EncodeFunc func(value any, parent *wire.Fragment) error

// RuntimeArtifact is an executable field codec: the closure strategy's
// artifact form.
type RuntimeArtifact struct {
	FieldName string
	WireName  string
	Decode    DecodeFunc
	Encode    EncodeFunc
}

// Field implements Artifact.
func (a *RuntimeArtifact) Field() string {
	return a.FieldName
}

// ClosureEmitter lowers plans into executable closures. Decoded map
// values are map[string]any, lists are []any, structures map[string]any
// keyed by member name, leaves their Go primitive (string, bool, int32,
// int64, float64, []byte, time.Time).
type ClosureEmitter struct{}

// NewClosureEmitter creates a ClosureEmitter.
func NewClosureEmitter() *ClosureEmitter {
	return &ClosureEmitter{}
}

// Emit implements Emitter.
func (e *ClosureEmitter) Emit(codec *synth.FieldCodec) (Artifact, error) {
	dec, err := compileDecode(codec.Decode.Root)
	if err != nil {
		return nil, &EmitterError{Field: codec.Field, Err: err}
	}

	enc, err := compileEncode(codec.Encode.Root)
	if err != nil {
		return nil, &EmitterError{Field: codec.Field, Err: err}
	}

	return &RuntimeArtifact{
		FieldName: codec.Field,
		WireName:  codec.WireName,
		Decode:    dec,
		Encode:    enc,
	}, nil
}

// --- decode compilation ---

func compileDecode(p *synth.Plan) (DecodeFunc, error) {
	switch p.Kind {
	case shape.KindMap:
		return compileMapDecode(p)
	case shape.KindList:
		return compileListDecode(p)
	default:
		return nil, fmt.Errorf("plan at depth %d has non-collection kind %s", p.Depth, p.Kind)
	}
}

// locateEntries finds the entry fragments for one occurrence. The second
// return is false when the occurrence is absent. Entries come back in
// wire-input encounter order.
func locateEntries(p *synth.Plan, parent *wire.Fragment) ([]*wire.Fragment, bool) {
	if p.Anchored {
		// The parent already located this occurrence's slot.
		return parent.ChildrenNamed(p.EntryName), true
	}

	if p.Flattened {
		slots := parent.ChildrenNamed(p.SlotName)
		if len(slots) == 0 {
			return nil, false
		}

		if len(slots) == 1 && slots[0].IsEmptyMarker() {
			return nil, true
		}

		return slots, true
	}

	wrapper := parent.FirstNamed(p.SlotName)
	if wrapper == nil {
		return nil, false
	}

	return wrapper.ChildrenNamed(p.EntryName), true
}

func compileMapDecode(p *synth.Plan) (DecodeFunc, error) {
	decodeValue, err := compileMapValueDecode(p)
	if err != nil {
		return nil, err
	}

	return func(parent *wire.Fragment) (any, synth.Presence, error) {
		entries, present := locateEntries(p, parent)
		if !present {
			return nil, synth.PresenceAbsent, nil
		}

		out := make(map[string]any, len(entries))

		for _, entry := range entries {
			keyFrag := entry.FirstNamed(p.KeyName)
			if keyFrag == nil {
				return nil, synth.PresenceAbsent, fmt.Errorf("map entry missing key element %q", p.KeyName)
			}

			v, err := decodeValue(entry)
			if err != nil {
				return nil, synth.PresenceAbsent, err
			}

			// Duplicate keys resolve last-write-wins.
			out[keyFrag.Text] = v
		}

		if len(out) == 0 {
			return out, synth.PresenceEmpty, nil
		}

		return out, synth.PresencePopulated, nil
	}, nil
}

// compileMapValueDecode builds the reader for a map entry's value
// sub-element.
func compileMapValueDecode(p *synth.Plan) (func(entry *wire.Fragment) (any, error), error) {
	switch {
	case p.Entry.Leaf != nil:
		rule := *p.Entry.Leaf

		return func(entry *wire.Fragment) (any, error) {
			frag := entry.FirstNamed(p.ValueName)
			if frag == nil {
				return nil, fmt.Errorf("map entry missing value element %q", p.ValueName)
			}

			return wire.ParseLeaf(frag.Text, rule.Kind, rule.Format)
		}, nil

	case p.Entry.Nested != nil:
		nested := p.Entry.Nested

		fn, err := compileDecode(nested)
		if err != nil {
			return nil, err
		}

		return func(entry *wire.Fragment) (any, error) {
			// An absent or present-but-empty nested occurrence yields an
			// empty container keyed under the parent entry; the absent
			// signal never propagates upward.
			v, _, err := fn(entry)
			if err != nil {
				return nil, err
			}

			if v == nil {
				return emptyContainer(nested), nil
			}

			return v, nil
		}, nil

	case p.Entry.Struct != nil:
		fn, err := compileStructDecode(p.Entry.Struct)
		if err != nil {
			return nil, err
		}

		return func(entry *wire.Fragment) (any, error) {
			frag := entry.FirstNamed(p.ValueName)
			if frag == nil {
				return nil, fmt.Errorf("map entry missing value element %q", p.ValueName)
			}

			return fn(frag)
		}, nil

	default:
		return nil, fmt.Errorf("map plan at depth %d has no entry rule", p.Depth)
	}
}

func compileListDecode(p *synth.Plan) (DecodeFunc, error) {
	decodeElement, err := compileElementDecode(p)
	if err != nil {
		return nil, err
	}

	return func(parent *wire.Fragment) (any, synth.Presence, error) {
		entries, present := locateEntries(p, parent)
		if !present {
			return nil, synth.PresenceAbsent, nil
		}

		out := make([]any, 0, len(entries))

		for _, elem := range entries {
			v, err := decodeElement(elem)
			if err != nil {
				return nil, synth.PresenceAbsent, err
			}

			out = append(out, v)
		}

		if len(out) == 0 {
			return out, synth.PresenceEmpty, nil
		}

		return out, synth.PresencePopulated, nil
	}, nil
}

// compileElementDecode builds the reader for a list element fragment.
// The element carries its value directly: text for leaves, members for
// structures, nested entries for aggregates.
func compileElementDecode(p *synth.Plan) (func(elem *wire.Fragment) (any, error), error) {
	switch {
	case p.Entry.Leaf != nil:
		rule := *p.Entry.Leaf

		return func(elem *wire.Fragment) (any, error) {
			return wire.ParseLeaf(elem.Text, rule.Kind, rule.Format)
		}, nil

	case p.Entry.Nested != nil:
		nested := p.Entry.Nested

		fn, err := compileDecode(nested)
		if err != nil {
			return nil, err
		}

		return func(elem *wire.Fragment) (any, error) {
			v, _, err := fn(elem)
			if err != nil {
				return nil, err
			}

			if v == nil {
				return emptyContainer(nested), nil
			}

			return v, nil
		}, nil

	case p.Entry.Struct != nil:
		return compileStructDecode(p.Entry.Struct)

	default:
		return nil, fmt.Errorf("list plan at depth %d has no entry rule", p.Depth)
	}
}

// compileStructDecode builds the reader for a structure fragment. Absent
// members are omitted from the decoded value.
func compileStructDecode(rule *synth.StructRule) (func(frag *wire.Fragment) (any, error), error) {
	type memberDecoder struct {
		name string
		fn   func(frag *wire.Fragment) (any, bool, error)
	}

	decoders := make([]memberDecoder, 0, len(rule.Members))

	for _, m := range rule.Members {
		md := memberDecoder{name: m.Name}

		switch {
		case m.Rule.Leaf != nil:
			leaf := *m.Rule.Leaf
			wireName := m.WireName

			md.fn = func(frag *wire.Fragment) (any, bool, error) {
				el := frag.FirstNamed(wireName)
				if el == nil {
					return nil, false, nil
				}

				v, err := wire.ParseLeaf(el.Text, leaf.Kind, leaf.Format)

				return v, err == nil, err
			}

		case m.Rule.Nested != nil:
			fn, err := compileDecode(m.Rule.Nested)
			if err != nil {
				return nil, err
			}

			md.fn = func(frag *wire.Fragment) (any, bool, error) {
				v, presence, err := fn(frag)
				if err != nil {
					return nil, false, err
				}

				if presence == synth.PresenceAbsent {
					return nil, false, nil
				}

				return v, true, nil
			}

		case m.Rule.Struct != nil:
			fn, err := compileStructDecode(m.Rule.Struct)
			if err != nil {
				return nil, err
			}

			wireName := m.WireName

			md.fn = func(frag *wire.Fragment) (any, bool, error) {
				el := frag.FirstNamed(wireName)
				if el == nil {
					return nil, false, nil
				}

				v, err := fn(el)

				return v, err == nil, err
			}

		default:
			return nil, fmt.Errorf("structure %s member %s has no rule", rule.Shape, m.Name)
		}

		decoders = append(decoders, md)
	}

	return func(frag *wire.Fragment) (any, error) {
		out := make(map[string]any, len(decoders))

		for _, md := range decoders {
			v, ok, err := md.fn(frag)
			if err != nil {
				return nil, err
			}

			if ok {
				out[md.name] = v
			}
		}

		return out, nil
	}, nil
}

func emptyContainer(p *synth.Plan) any {
	if p.Kind == shape.KindList {
		return []any{}
	}

	return map[string]any{}
}

// --- encode compilation ---

func compileEncode(p *synth.Plan) (EncodeFunc, error) {
	switch p.Kind {
	case shape.KindMap:
		return compileMapEncode(p)
	case shape.KindList:
		return compileListEncode(p)
	default:
		return nil, fmt.Errorf("plan at depth %d has non-collection kind %s", p.Depth, p.Kind)
	}
}

func compileMapEncode(p *synth.Plan) (EncodeFunc, error) {
	encodeValue, err := compileMapValueEncode(p)
	if err != nil {
		return nil, err
	}

	return func(value any, parent *wire.Fragment) error {
		m, ok := asMap(value)
		if !ok {
			return fmt.Errorf("map plan cannot encode value of type %T", value)
		}

		if m == nil {
			// Absent: omitted from output entirely.
			return nil
		}

		encodeEntry := func(target *wire.Fragment, key string) error {
			target.Append(wire.Elem(p.KeyName, key))
			return encodeValue(m[key], target)
		}

		switch {
		case p.Anchored:
			for _, k := range sortedKeys(m) {
				entry := wire.New(p.EntryName)
				if err := encodeEntry(entry, k); err != nil {
					return err
				}

				parent.Append(entry)
			}

		case p.Flattened:
			if len(m) == 0 {
				parent.Append(wire.New(p.SlotName).WithNamespace(p.Namespace))
				return nil
			}

			for _, k := range sortedKeys(m) {
				entry := wire.New(p.SlotName).WithNamespace(p.Namespace)
				if err := encodeEntry(entry, k); err != nil {
					return err
				}

				parent.Append(entry)
			}

		default:
			wrapper := wire.New(p.SlotName).WithNamespace(p.Namespace)

			for _, k := range sortedKeys(m) {
				entry := wire.New(p.EntryName)
				if err := encodeEntry(entry, k); err != nil {
					return err
				}

				wrapper.Append(entry)
			}

			// An empty map still emits the wrapper: present, entry-less.
			parent.Append(wrapper)
		}

		return nil
	}, nil
}

func compileMapValueEncode(p *synth.Plan) (func(v any, entry *wire.Fragment) error, error) {
	switch {
	case p.Entry.Leaf != nil:
		rule := *p.Entry.Leaf

		return func(v any, entry *wire.Fragment) error {
			text, err := wire.FormatLeaf(v, rule.Kind, rule.Format)
			if err != nil {
				return err
			}

			entry.Append(wire.Elem(p.ValueName, text))

			return nil
		}, nil

	case p.Entry.Nested != nil:
		nested := p.Entry.Nested

		fn, err := compileEncode(nested)
		if err != nil {
			return nil, err
		}

		return func(v any, entry *wire.Fragment) error {
			if v == nil {
				v = emptyContainer(nested)
			}

			return fn(v, entry)
		}, nil

	case p.Entry.Struct != nil:
		fn, err := compileStructEncode(p.Entry.Struct)
		if err != nil {
			return nil, err
		}

		return func(v any, entry *wire.Fragment) error {
			el := wire.New(p.ValueName)
			if err := fn(v, el); err != nil {
				return err
			}

			entry.Append(el)

			return nil
		}, nil

	default:
		return nil, fmt.Errorf("map plan at depth %d has no entry rule", p.Depth)
	}
}

func compileListEncode(p *synth.Plan) (EncodeFunc, error) {
	fillElement, err := compileElementEncode(p)
	if err != nil {
		return nil, err
	}

	return func(value any, parent *wire.Fragment) error {
		l, ok := asList(value)
		if !ok {
			return fmt.Errorf("list plan cannot encode value of type %T", value)
		}

		if l == nil {
			return nil
		}

		switch {
		case p.Anchored:
			for _, v := range l {
				elem := wire.New(p.EntryName)
				if err := fillElement(v, elem); err != nil {
					return err
				}

				parent.Append(elem)
			}

		case p.Flattened:
			if len(l) == 0 {
				parent.Append(wire.New(p.SlotName).WithNamespace(p.Namespace))
				return nil
			}

			for _, v := range l {
				elem := wire.New(p.SlotName).WithNamespace(p.Namespace)
				if err := fillElement(v, elem); err != nil {
					return err
				}

				parent.Append(elem)
			}

		default:
			wrapper := wire.New(p.SlotName).WithNamespace(p.Namespace)

			for _, v := range l {
				elem := wire.New(p.EntryName)
				if err := fillElement(v, elem); err != nil {
					return err
				}

				wrapper.Append(elem)
			}

			parent.Append(wrapper)
		}

		return nil
	}, nil
}

func compileElementEncode(p *synth.Plan) (func(v any, elem *wire.Fragment) error, error) {
	switch {
	case p.Entry.Leaf != nil:
		rule := *p.Entry.Leaf

		return func(v any, elem *wire.Fragment) error {
			text, err := wire.FormatLeaf(v, rule.Kind, rule.Format)
			if err != nil {
				return err
			}

			elem.Text = text

			return nil
		}, nil

	case p.Entry.Nested != nil:
		nested := p.Entry.Nested

		fn, err := compileEncode(nested)
		if err != nil {
			return nil, err
		}

		return func(v any, elem *wire.Fragment) error {
			if v == nil {
				v = emptyContainer(nested)
			}

			return fn(v, elem)
		}, nil

	case p.Entry.Struct != nil:
		return compileStructEncode(p.Entry.Struct)

	default:
		return nil, fmt.Errorf("list plan at depth %d has no entry rule", p.Depth)
	}
}

// compileStructEncode builds the writer for a structure value. Members
// missing from the value map are absent and emit nothing; members are
// written in declaration order.
func compileStructEncode(rule *synth.StructRule) (func(v any, parent *wire.Fragment) error, error) {
	type memberEncoder struct {
		name string
		fn   func(v any, parent *wire.Fragment) error
	}

	encoders := make([]memberEncoder, 0, len(rule.Members))

	for _, m := range rule.Members {
		me := memberEncoder{name: m.Name}

		switch {
		case m.Rule.Leaf != nil:
			leaf := *m.Rule.Leaf
			wireName := m.WireName

			me.fn = func(v any, parent *wire.Fragment) error {
				text, err := wire.FormatLeaf(v, leaf.Kind, leaf.Format)
				if err != nil {
					return err
				}

				parent.Append(wire.Elem(wireName, text))

				return nil
			}

		case m.Rule.Nested != nil:
			fn, err := compileEncode(m.Rule.Nested)
			if err != nil {
				return nil, err
			}

			nested := m.Rule.Nested

			me.fn = func(v any, parent *wire.Fragment) error {
				if v == nil {
					v = emptyContainer(nested)
				}

				return fn(v, parent)
			}

		case m.Rule.Struct != nil:
			fn, err := compileStructEncode(m.Rule.Struct)
			if err != nil {
				return nil, err
			}

			wireName := m.WireName

			me.fn = func(v any, parent *wire.Fragment) error {
				el := wire.New(wireName)
				if err := fn(v, el); err != nil {
					return err
				}

				parent.Append(el)

				return nil
			}

		default:
			return nil, fmt.Errorf("structure %s member %s has no rule", rule.Shape, m.Name)
		}

		encoders = append(encoders, me)
	}

	return func(v any, parent *wire.Fragment) error {
		m, ok := asMap(v)
		if !ok {
			return fmt.Errorf("structure %s cannot encode value of type %T", rule.Shape, v)
		}

		for _, me := range encoders {
			mv, present := m[me.name]
			if !present {
				continue
			}

			if err := me.fn(mv, parent); err != nil {
				return err
			}
		}

		return nil
	}, nil
}

func asMap(value any) (map[string]any, bool) {
	if value == nil {
		return nil, true
	}

	m, ok := value.(map[string]any)

	return m, ok
}

func asList(value any) ([]any, bool) {
	if value == nil {
		return nil, true
	}

	l, ok := value.([]any)

	return l, ok
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
