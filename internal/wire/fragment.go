package wire

import (
	"strings"

	"codec-generator/internal/trait"
)

// Attr is one element attribute.
type Attr struct {
	Name  string
	Value string
}

// Fragment is one wire element.
type Fragment struct {
	Name      string
	Namespace *trait.Namespace
	Attrs     []Attr
	Text      string
	Children  []*Fragment
}

// New creates a named Fragment with no content.
func New(name string) *Fragment {
	return &Fragment{Name: name}
}

// Elem creates a named Fragment with text content.
func Elem(name, text string) *Fragment {
	return &Fragment{Name: name, Text: text}
}

// Append adds children in order and returns the fragment for chaining.
func (f *Fragment) Append(children ...*Fragment) *Fragment {
	f.Children = append(f.Children, children...)
	return f
}

// WithNamespace sets the fragment's namespace and returns it.
func (f *Fragment) WithNamespace(ns *trait.Namespace) *Fragment {
	f.Namespace = ns
	return f
}

// FirstNamed returns the first child with the given local name, or nil.
func (f *Fragment) FirstNamed(name string) *Fragment {
	for _, c := range f.Children {
		if c.Name == name {
			return c
		}
	}

	return nil
}

// ChildrenNamed returns all children with the given local name, in
// encounter order.
func (f *Fragment) ChildrenNamed(name string) []*Fragment {
	var out []*Fragment

	for _, c := range f.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}

	return out
}

// IsEmptyMarker reports whether the fragment is a present, entry-less
// container: no children and no text. Flattened occurrences use a single
// such element to distinguish an empty collection from an absent one.
func (f *Fragment) IsEmptyMarker() bool {
	return len(f.Children) == 0 && f.Text == ""
}

// String renders the fragment as indentation-free XML-style text for
// diagnostics and tests. It performs minimal escaping and is not a
// conforming XML serializer.
func (f *Fragment) String() string {
	var sb strings.Builder
	f.render(&sb)

	return sb.String()
}

func (f *Fragment) render(sb *strings.Builder) {
	sb.WriteByte('<')
	sb.WriteString(f.qualifiedName())

	if f.Namespace != nil && f.Namespace.URI != "" {
		sb.WriteString(" xmlns")

		if f.Namespace.Prefix != "" {
			sb.WriteByte(':')
			sb.WriteString(f.Namespace.Prefix)
		}

		sb.WriteString(`="`)
		sb.WriteString(f.Namespace.URI)
		sb.WriteByte('"')
	}

	for _, a := range f.Attrs {
		sb.WriteByte(' ')
		sb.WriteString(a.Name)
		sb.WriteString(`="`)
		sb.WriteString(escapeText(a.Value))
		sb.WriteByte('"')
	}

	if len(f.Children) == 0 && f.Text == "" {
		sb.WriteString("/>")
		return
	}

	sb.WriteByte('>')
	sb.WriteString(escapeText(f.Text))

	for _, c := range f.Children {
		c.render(sb)
	}

	sb.WriteString("</")
	sb.WriteString(f.qualifiedName())
	sb.WriteByte('>')
}

func (f *Fragment) qualifiedName() string {
	if f.Namespace != nil && f.Namespace.Prefix != "" {
		return f.Namespace.Prefix + ":" + f.Name
	}

	return f.Name
}

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escapeText(s string) string {
	return textEscaper.Replace(s)
}
