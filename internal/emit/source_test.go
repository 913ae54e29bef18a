package emit

import (
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codec-generator/internal/synth"
	"codec-generator/internal/trait"
)

// buildSource synthesizes one Input member and emits generated source.
func buildSource(t *testing.T, member string) *SourceArtifact {
	t.Helper()

	g := codecGraph()
	m := g.Get(id("Input")).MemberNamed(member)
	require.NotNil(t, m)

	s := synth.NewSynthesizer(g, trait.NewResolver(trait.RestXML()))

	codec, err := s.Synthesize(synth.Field{Structure: id("Input"), Member: *m})
	require.NoError(t, err)

	artifact, err := NewSourceEmitter(DefaultSourceConfig()).Emit(codec)
	require.NoError(t, err)

	src, ok := artifact.(*SourceArtifact)
	require.True(t, ok)

	return src
}

func TestSourceEmitSimpleMap(t *testing.T) {
	src := buildSource(t, "myMap")

	assert.Equal(t, "com.example#Input.myMap", src.FieldName)
	assert.Equal(t, "my_map_codec.go", src.File.Filename)

	content := string(src.File.Content)
	t.Log(content)

	assert.True(t, strings.HasPrefix(content, "// Code generated by codec-generator. DO NOT EDIT."))
	assert.Contains(t, content, "package codecs")
	assert.Contains(t, content, "func decodeMyMap(parent *wire.Fragment) (any, synth.Presence, error)")
	assert.Contains(t, content, "func encodeMyMap(value any, parent *wire.Fragment) error")

	// Allocator identifiers are consumed verbatim.
	assert.Contains(t, content, "for _, e0 := range")
	assert.Contains(t, content, "k0 :=")
	assert.Contains(t, content, `parent.FirstNamed("myMap")`)
}

func TestSourceEmitParses(t *testing.T) {
	for _, member := range []string{"myMap", "nested", "stamps", "tags", "events", "matrix", "renamed"} {
		t.Run(member, func(t *testing.T) {
			src := buildSource(t, member)

			fset := token.NewFileSet()
			_, err := parser.ParseFile(fset, src.File.Filename, src.File.Content, parser.AllErrors)
			require.NoError(t, err, "generated source does not parse:\n%s", src.File.Content)
		})
	}
}

func TestSourceEmitFlattenedNested(t *testing.T) {
	src := buildSource(t, "nested")
	content := string(src.File.Content)

	// Flattened outer: slots located by repeated slot name, with the
	// single-empty-element marker check.
	assert.Contains(t, content, `parent.ChildrenNamed("nested")`)
	assert.Contains(t, content, "IsEmptyMarker()")

	// Depth-1 identifiers are distinct from depth-0 ones.
	assert.Contains(t, content, "e1")
	assert.Contains(t, content, "k1")
	assert.NotContains(t, content, "e0_2", "no collision suffix expected in a plain chain")
}

func TestSourceEmitTimestampConversions(t *testing.T) {
	src := buildSource(t, "stamps")
	content := string(src.File.Content)

	assert.Contains(t, content, "wire.ParseLeaf")
	assert.Contains(t, content, "wire.FormatLeaf")
	assert.Contains(t, content, "shape.LeafTimestamp")
	assert.Contains(t, content, "trait.TimestampEpochSeconds")
}

func TestSourceEmitStructMembers(t *testing.T) {
	src := buildSource(t, "events")
	content := string(src.File.Content)

	// Members decode conditionally and encode only when present.
	assert.Contains(t, content, `FirstNamed("name")`)
	assert.Contains(t, content, `FirstNamed("count")`)
	assert.Contains(t, content, `"tags"`)
	assert.Contains(t, content, "shape.LeafLong")
}

func TestSourceEmitPackageNameConfig(t *testing.T) {
	g := codecGraph()
	m := g.Get(id("Input")).MemberNamed("myMap")
	require.NotNil(t, m)

	s := synth.NewSynthesizer(g, trait.NewResolver(trait.RestXML()))
	codec, err := s.Synthesize(synth.Field{Structure: id("Input"), Member: *m})
	require.NoError(t, err)

	artifact, err := NewSourceEmitter(SourceConfig{PackageName: "generated"}).Emit(codec)
	require.NoError(t, err)

	src := artifact.(*SourceArtifact)
	assert.Contains(t, string(src.File.Content), "package generated")
}
