package shape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseShapeID(t *testing.T) {
	id, err := ParseShapeID("com.example#StringMap")
	require.NoError(t, err)
	assert.Equal(t, ShapeID{Namespace: "com.example", Name: "StringMap"}, id)
	assert.Equal(t, "com.example#StringMap", id.String())

	id, err = ParseShapeID("Bare")
	require.NoError(t, err)
	assert.Equal(t, ShapeID{Name: "Bare"}, id)
	assert.Equal(t, "Bare", id.String())

	_, err = ParseShapeID("")
	assert.Error(t, err)

	_, err = ParseShapeID("ns#")
	assert.Error(t, err)
}

func TestKindIsAggregate(t *testing.T) {
	assert.True(t, KindStructure.IsAggregate())
	assert.True(t, KindMap.IsAggregate())
	assert.True(t, KindList.IsAggregate())
	assert.False(t, KindLeaf.IsAggregate())
	assert.False(t, KindUnknown.IsAggregate())
}

func TestGraphLookup(t *testing.T) {
	g := NewGraph()
	id := ShapeID{Namespace: "ns", Name: "Input"}

	g.Add(&Node{
		ID:   id,
		Kind: KindStructure,
		Members: []Member{
			{Name: "first", Ref: Ref{Target: ShapeID{Namespace: "ns", Name: "A"}}},
			{Name: "second", Ref: Ref{Target: ShapeID{Namespace: "ns", Name: "B"}}},
		},
	})

	node := g.Get(id)
	require.NotNil(t, node)

	m := node.MemberNamed("second")
	require.NotNil(t, m)
	assert.Equal(t, "B", m.Target.Name)

	assert.Nil(t, node.MemberNamed("third"))
	assert.Nil(t, g.Get(ShapeID{Name: "missing"}))
}
