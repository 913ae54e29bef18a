package driver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"codec-generator/internal/emit"
	"codec-generator/internal/schema"
	"codec-generator/internal/shape"
	"codec-generator/internal/trait"
)

const driverDoc = `
shapes:
  ns#StringMap:
    type: map
    key: prelude#String
    value: prelude#String
  ns#TagList:
    type: list
    element: prelude#String
  ns#BadKeyMap:
    type: map
    key: prelude#Long
    value: prelude#String
  ns#Input:
    type: structure
    members:
      beta: ns#StringMap
      alpha: ns#TagList
      broken: ns#BadKeyMap
      scalar: prelude#String
fields:
  - structure: ns#Input
    member: beta
  - structure: ns#Input
    member: alpha
  - structure: ns#Input
    member: broken
  - structure: ns#Input
    member: scalar
`

func loadModel(t *testing.T) *schema.Model {
	t.Helper()

	doc, err := schema.Parse([]byte(driverDoc))
	require.NoError(t, err)

	model, err := schema.Build(doc)
	require.NoError(t, err)

	return model
}

func TestRunCollectsArtifactsAndDiagnostics(t *testing.T) {
	model := loadModel(t)

	result, err := Run(context.Background(), model, emit.NewClosureEmitter(), Config{
		Logger: zap.NewNop(),
	})
	require.NoError(t, err)

	// Two fields synthesize; the non-string key and the scalar fail as
	// per-field diagnostics without aborting the run.
	require.Len(t, result.Artifacts, 2)
	assert.Equal(t, "ns#Input.alpha", result.Artifacts[0].Field(), "artifacts come back in field order")
	assert.Equal(t, "ns#Input.beta", result.Artifacts[1].Field())

	require.True(t, result.Diagnostics.HasErrors())
	require.Len(t, result.Diagnostics.Errors, 2)

	fields := map[string]string{}
	for _, d := range result.Diagnostics.Errors {
		fields[d.Field] = d.Code
	}

	assert.Equal(t, CodeSynthesisFailed, fields["ns#Input.broken"])
	assert.Equal(t, CodeSynthesisFailed, fields["ns#Input.scalar"])
}

func TestRunSourceStrategy(t *testing.T) {
	model := loadModel(t)

	result, err := Run(context.Background(), model, emit.NewSourceEmitter(emit.DefaultSourceConfig()), Config{
		Workers: 2,
	})
	require.NoError(t, err)
	require.Len(t, result.Artifacts, 2)

	src, ok := result.Artifacts[0].(*emit.SourceArtifact)
	require.True(t, ok)
	assert.Equal(t, "alpha_codec.go", src.File.Filename)
	assert.NotEmpty(t, src.File.Content)
}

func TestRunHonorsCancelledContext(t *testing.T) {
	model := loadModel(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, model, emit.NewClosureEmitter(), Config{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunEmptyFieldList(t *testing.T) {
	model := &schema.Model{
		Graph:   shape.NewGraph(),
		Binding: trait.RestXML(),
	}

	result, err := Run(context.Background(), model, emit.NewClosureEmitter(), Config{})
	require.NoError(t, err)
	assert.Empty(t, result.Artifacts)
	assert.False(t, result.Diagnostics.HasErrors())
}
