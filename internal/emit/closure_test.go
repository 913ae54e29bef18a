package emit

import (
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codec-generator/internal/shape"
	"codec-generator/internal/synth"
	"codec-generator/internal/trait"
	"codec-generator/internal/wire"
)

func id(name string) shape.ShapeID {
	return shape.ShapeID{Namespace: "com.example", Name: name}
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

// codecGraph builds the graph used by the closure round-trip tests.
func codecGraph() *shape.Graph {
	g := shape.NewGraph()

	g.Add(&shape.Node{ID: id("String"), Kind: shape.KindLeaf, Leaf: shape.LeafString})
	g.Add(&shape.Node{ID: id("Long"), Kind: shape.KindLeaf, Leaf: shape.LeafLong})
	g.Add(&shape.Node{ID: id("Timestamp"), Kind: shape.KindLeaf, Leaf: shape.LeafTimestamp})

	g.Add(&shape.Node{
		ID:    id("StringMap"),
		Kind:  shape.KindMap,
		Key:   shape.Ref{Target: id("String")},
		Value: shape.Ref{Target: id("String")},
	})

	g.Add(&shape.Node{
		ID:    id("NestedMap"),
		Kind:  shape.KindMap,
		Key:   shape.Ref{Target: id("String")},
		Value: shape.Ref{Target: id("StringMap")},
	})

	g.Add(&shape.Node{
		ID:    id("StampMap"),
		Kind:  shape.KindMap,
		Key:   shape.Ref{Target: id("String")},
		Value: shape.Ref{Target: id("Timestamp"), Traits: trait.Traits{TimestampFormat: trait.TimestampEpochSeconds}},
	})

	g.Add(&shape.Node{
		ID:      id("TagList"),
		Kind:    shape.KindList,
		Element: shape.Ref{Target: id("String")},
	})

	g.Add(&shape.Node{
		ID:      id("Matrix"),
		Kind:    shape.KindList,
		Element: shape.Ref{Target: id("TagList")},
	})

	g.Add(&shape.Node{
		ID:   id("Event"),
		Kind: shape.KindStructure,
		Members: []shape.Member{
			{Name: "name", Ref: shape.Ref{Target: id("String")}},
			{Name: "count", Ref: shape.Ref{Target: id("Long")}},
			{Name: "tags", Ref: shape.Ref{Target: id("TagList")}},
		},
	})

	g.Add(&shape.Node{
		ID:      id("EventList"),
		Kind:    shape.KindList,
		Element: shape.Ref{Target: id("Event")},
	})

	g.Add(&shape.Node{
		ID:   id("Input"),
		Kind: shape.KindStructure,
		Members: []shape.Member{
			{Name: "myMap", Ref: shape.Ref{Target: id("StringMap")}},
			{Name: "nested", Ref: shape.Ref{Target: id("NestedMap"), Traits: trait.Traits{Flattened: boolPtr(true)}}},
			{Name: "stamps", Ref: shape.Ref{Target: id("StampMap")}},
			{Name: "tags", Ref: shape.Ref{Target: id("TagList"), Traits: trait.Traits{Flattened: boolPtr(true)}}},
			{Name: "events", Ref: shape.Ref{Target: id("EventList")}},
			{Name: "matrix", Ref: shape.Ref{Target: id("Matrix")}},
			{Name: "renamed", Ref: shape.Ref{Target: id("StringMap"), Traits: trait.Traits{
				KeyName:   strPtr("K"),
				ValueName: strPtr("V"),
				EntryName: strPtr("item"),
			}}},
		},
	})

	return g
}

// buildRuntime synthesizes and compiles the codec for one Input member.
func buildRuntime(t *testing.T, member string) *RuntimeArtifact {
	t.Helper()

	g := codecGraph()
	m := g.Get(id("Input")).MemberNamed(member)
	require.NotNil(t, m)

	s := synth.NewSynthesizer(g, trait.NewResolver(trait.RestXML()))

	codec, err := s.Synthesize(synth.Field{Structure: id("Input"), Member: *m})
	require.NoError(t, err)

	artifact, err := NewClosureEmitter().Emit(codec)
	require.NoError(t, err)

	rt, ok := artifact.(*RuntimeArtifact)
	require.True(t, ok)

	return rt
}

// roundTrip encodes the value into a fresh parent and decodes it back,
// asserting the wire makes it through unchanged.
func roundTrip(t *testing.T, rt *RuntimeArtifact, value any) (any, synth.Presence) {
	t.Helper()

	parent := wire.New("payload")
	require.NoError(t, rt.Encode(value, parent))

	decoded, presence, err := rt.Decode(parent)
	require.NoError(t, err, "wire was:\n%s\nvalue:\n%s", parent, spew.Sdump(value))

	return decoded, presence
}

func TestMapRoundTripPopulated(t *testing.T) {
	rt := buildRuntime(t, "myMap")
	value := map[string]any{"a": "1", "b": "2"}

	decoded, presence := roundTrip(t, rt, value)
	assert.Equal(t, synth.PresencePopulated, presence)
	assert.Equal(t, value, decoded)
}

func TestMapAbsentEmitsNothing(t *testing.T) {
	rt := buildRuntime(t, "myMap")

	parent := wire.New("payload")
	require.NoError(t, rt.Encode(nil, parent))
	assert.Empty(t, parent.Children, "absent fields are omitted entirely")

	decoded, presence, err := rt.Decode(parent)
	require.NoError(t, err)
	assert.Equal(t, synth.PresenceAbsent, presence)
	assert.Nil(t, decoded)
}

func TestMapEmptyKeepsWrapper(t *testing.T) {
	rt := buildRuntime(t, "myMap")

	parent := wire.New("payload")
	require.NoError(t, rt.Encode(map[string]any{}, parent))

	wrapper := parent.FirstNamed("myMap")
	require.NotNil(t, wrapper, "empty is present, entry-less")
	assert.Empty(t, wrapper.Children)

	decoded, presence, err := rt.Decode(parent)
	require.NoError(t, err)
	assert.Equal(t, synth.PresenceEmpty, presence)
	assert.Equal(t, map[string]any{}, decoded)
}

func TestMapWireShape(t *testing.T) {
	rt := buildRuntime(t, "myMap")

	parent := wire.New("payload")
	require.NoError(t, rt.Encode(map[string]any{"b": "2", "a": "1"}, parent))

	// Keys are sorted, so the rendering is deterministic.
	assert.Equal(t,
		`<payload><myMap><entry><key>a</key><value>1</value></entry><entry><key>b</key><value>2</value></entry></myMap></payload>`,
		parent.String())
}

func TestFlattenedOuterWrappedInnerNestedMap(t *testing.T) {
	rt := buildRuntime(t, "nested")
	value := map[string]any{
		"outer": map[string]any{"a": "1", "b": "2"},
		"more":  map[string]any{},
	}

	parent := wire.New("payload")
	require.NoError(t, rt.Encode(value, parent))

	// Flattened outer: repeated slot elements, no wrapper.
	slots := parent.ChildrenNamed("nested")
	require.Len(t, slots, 2)
	assert.Nil(t, parent.FirstNamed("entry"))

	// Wrapped inner: each entry holds its key plus a value wrapper with
	// its own entry elements.
	decoded, presence, err := rt.Decode(parent)
	require.NoError(t, err)
	assert.Equal(t, synth.PresencePopulated, presence)
	assert.Equal(t, value, decoded)
}

func TestNestedEmptyAndAbsentBothDecodeEmpty(t *testing.T) {
	rt := buildRuntime(t, "nested")

	// A nil inner value is normalized to the empty container on encode,
	// so absent and empty collapse below depth 0.
	decoded, _ := roundTrip(t, rt, map[string]any{"outer": nil})
	assert.Equal(t, map[string]any{"outer": map[string]any{}}, decoded)

	decoded, _ = roundTrip(t, rt, map[string]any{"outer": map[string]any{}})
	assert.Equal(t, map[string]any{"outer": map[string]any{}}, decoded)
}

func TestFlattenedEmptyMapUsesMarker(t *testing.T) {
	rt := buildRuntime(t, "nested")

	parent := wire.New("payload")
	require.NoError(t, rt.Encode(map[string]any{}, parent))

	slots := parent.ChildrenNamed("nested")
	require.Len(t, slots, 1)
	assert.True(t, slots[0].IsEmptyMarker())

	decoded, presence, err := rt.Decode(parent)
	require.NoError(t, err)
	assert.Equal(t, synth.PresenceEmpty, presence)
	assert.Equal(t, map[string]any{}, decoded)
}

func TestEpochSecondsTimestampsInMapValues(t *testing.T) {
	rt := buildRuntime(t, "stamps")
	value := map[string]any{
		"created": time.Unix(1398796238, 0).UTC(),
		"updated": time.Unix(1500000000, 0).UTC(),
	}

	parent := wire.New("payload")
	require.NoError(t, rt.Encode(value, parent))
	assert.Contains(t, parent.String(), "<value>1398796238</value>")

	decoded, presence, err := rt.Decode(parent)
	require.NoError(t, err)
	assert.Equal(t, synth.PresencePopulated, presence)
	assert.Equal(t, value, decoded)
}

func TestFlattenedLeafList(t *testing.T) {
	rt := buildRuntime(t, "tags")
	value := []any{"x", "y", "z"}

	parent := wire.New("payload")
	require.NoError(t, rt.Encode(value, parent))

	slots := parent.ChildrenNamed("tags")
	require.Len(t, slots, 3)
	assert.Equal(t, "x", slots[0].Text)

	decoded, presence, err := rt.Decode(parent)
	require.NoError(t, err)
	assert.Equal(t, synth.PresencePopulated, presence)
	assert.Equal(t, value, decoded)
}

func TestFlattenedEmptyListRoundTrip(t *testing.T) {
	rt := buildRuntime(t, "tags")

	decoded, presence := roundTrip(t, rt, []any{})
	assert.Equal(t, synth.PresenceEmpty, presence)
	assert.Equal(t, []any{}, decoded)
}

func TestListOfStructuresRoundTrip(t *testing.T) {
	rt := buildRuntime(t, "events")
	value := []any{
		map[string]any{"name": "boot", "count": int64(1), "tags": []any{"sys"}},
		// Member absence survives: no count key, no count element.
		map[string]any{"name": "halt"},
	}

	decoded, presence := roundTrip(t, rt, value)
	assert.Equal(t, synth.PresencePopulated, presence)
	assert.Equal(t, value, decoded)

	// And the absent member really is off the wire.
	parent := wire.New("payload")
	require.NoError(t, rt.Encode(value, parent))

	members := parent.FirstNamed("events").ChildrenNamed("member")
	require.Len(t, members, 2)
	assert.Nil(t, members[1].FirstNamed("count"))
}

func TestAnchoredNestedListRoundTrip(t *testing.T) {
	rt := buildRuntime(t, "matrix")
	value := []any{
		[]any{"a", "b"},
		[]any{},
		[]any{"c"},
	}

	decoded, presence := roundTrip(t, rt, value)
	assert.Equal(t, synth.PresencePopulated, presence)
	assert.Equal(t, value, decoded)
}

func TestCustomNamesOnTheWire(t *testing.T) {
	rt := buildRuntime(t, "renamed")

	parent := wire.New("payload")
	require.NoError(t, rt.Encode(map[string]any{"a": "1"}, parent))

	assert.Equal(t,
		`<payload><renamed><item><K>a</K><V>1</V></item></renamed></payload>`,
		parent.String())

	decoded, _, err := rt.Decode(parent)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": "1"}, decoded)
}

func TestDuplicateKeysLastWriteWins(t *testing.T) {
	rt := buildRuntime(t, "myMap")

	parent := wire.New("payload").Append(
		wire.New("myMap").Append(
			wire.New("entry").Append(wire.Elem("key", "a"), wire.Elem("value", "first")),
			wire.New("entry").Append(wire.Elem("key", "a"), wire.Elem("value", "second")),
		),
	)

	decoded, presence, err := rt.Decode(parent)
	require.NoError(t, err)
	assert.Equal(t, synth.PresencePopulated, presence)
	assert.Equal(t, map[string]any{"a": "second"}, decoded)
}

func TestDecodeMissingKeyElementFails(t *testing.T) {
	rt := buildRuntime(t, "myMap")

	parent := wire.New("payload").Append(
		wire.New("myMap").Append(
			wire.New("entry").Append(wire.Elem("value", "orphan")),
		),
	)

	_, _, err := rt.Decode(parent)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing key element")
}

func TestEncodeRejectsWrongRuntimeType(t *testing.T) {
	rt := buildRuntime(t, "myMap")

	err := rt.Encode([]any{"not", "a", "map"}, wire.New("payload"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot encode")
}
