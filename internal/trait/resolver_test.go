package trait

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestResolveMapDefaults(t *testing.T) {
	r := NewResolver(RestXML())

	eff, err := r.Resolve(Occurrence{Collection: CollectionMap})
	require.NoError(t, err)

	assert.Equal(t, "key", eff.KeyName)
	assert.Equal(t, "value", eff.ValueName)
	assert.Equal(t, "entry", eff.EntryName)
	assert.False(t, eff.Flattened)
	assert.Nil(t, eff.Namespace)
}

func TestResolveListDefaults(t *testing.T) {
	r := NewResolver(RestXML())

	eff, err := r.Resolve(Occurrence{Collection: CollectionList})
	require.NoError(t, err)

	assert.Equal(t, "member", eff.ValueName)
	// List elements carry the entries themselves.
	assert.Equal(t, eff.ValueName, eff.EntryName)
	assert.Empty(t, eff.KeyName)
}

func TestResolveFallbackOrder(t *testing.T) {
	r := NewResolver(RestXML())

	// Occurrence overrides beat type defaults beat binding defaults.
	eff, err := r.Resolve(Occurrence{
		Collection: CollectionMap,
		Position:   Traits{KeyName: strPtr("K")},
		Type:       Traits{KeyName: strPtr("typeK"), ValueName: strPtr("V")},
	})
	require.NoError(t, err)

	assert.Equal(t, "K", eff.KeyName)
	assert.Equal(t, "V", eff.ValueName)
	assert.Equal(t, "entry", eff.EntryName)
}

func TestResolveFlattenedFallback(t *testing.T) {
	r := NewResolver(RestXML())

	eff, err := r.Resolve(Occurrence{
		Collection: CollectionList,
		Type:       Traits{Flattened: boolPtr(true)},
	})
	require.NoError(t, err)
	assert.True(t, eff.Flattened)

	// Position wins over the type default.
	eff, err = r.Resolve(Occurrence{
		Collection: CollectionList,
		Position:   Traits{Flattened: boolPtr(false)},
		Type:       Traits{Flattened: boolPtr(true)},
	})
	require.NoError(t, err)
	assert.False(t, eff.Flattened)
}

func TestResolveNamespaceFallback(t *testing.T) {
	binding := RestXML()
	binding.Namespace = &Namespace{URI: "https://example.com/default"}
	r := NewResolver(binding)

	eff, err := r.Resolve(Occurrence{Collection: CollectionMap})
	require.NoError(t, err)
	require.NotNil(t, eff.Namespace)
	assert.Equal(t, "https://example.com/default", eff.Namespace.URI)

	positioned := &Namespace{Prefix: "p", URI: "https://example.com/p"}
	eff, err = r.Resolve(Occurrence{Collection: CollectionMap, Position: Traits{Namespace: positioned}})
	require.NoError(t, err)
	assert.Same(t, positioned, eff.Namespace)
}

func TestResolveGap(t *testing.T) {
	// A binding stripped of its map names cannot resolve a map occurrence.
	binding := RestXML()
	binding.KeyName = ""
	r := NewResolver(binding)

	_, err := r.Resolve(Occurrence{Collection: CollectionMap})
	require.Error(t, err)

	var gap *GapError
	require.ErrorAs(t, err, &gap)
	assert.Equal(t, "keyName", gap.Trait)
}

func TestResolveTimestampFormat(t *testing.T) {
	r := NewResolver(RestXML())

	f, err := r.ResolveTimestampFormat(Traits{}, Traits{})
	require.NoError(t, err)
	assert.Equal(t, TimestampDateTime, f)

	f, err = r.ResolveTimestampFormat(Traits{TimestampFormat: TimestampEpochSeconds}, Traits{TimestampFormat: TimestampHTTPDate})
	require.NoError(t, err)
	assert.Equal(t, TimestampEpochSeconds, f)

	f, err = r.ResolveTimestampFormat(Traits{}, Traits{TimestampFormat: TimestampHTTPDate})
	require.NoError(t, err)
	assert.Equal(t, TimestampHTTPDate, f)
}

func TestResolveTimestampFormatGap(t *testing.T) {
	binding := RestXML()
	binding.TimestampFormat = TimestampUnspecified
	r := NewResolver(binding)

	_, err := r.ResolveTimestampFormat(Traits{}, Traits{})

	var gap *GapError
	require.ErrorAs(t, err, &gap)
	assert.Equal(t, "timestampFormat", gap.Trait)
}

func TestParseTimestampFormat(t *testing.T) {
	f, err := ParseTimestampFormat("epoch-seconds")
	require.NoError(t, err)
	assert.Equal(t, TimestampEpochSeconds, f)

	_, err = ParseTimestampFormat("stardate")
	assert.Error(t, err)
}
