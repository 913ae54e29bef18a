package emit

import (
	"fmt"

	"codec-generator/internal/synth"
)

// Artifact is the lowered form of one field's codec.
type Artifact interface {
	// Field returns the fully-qualified field name the artifact serves.
	Field() string
}

// Emitter lowers a synthesized field codec into an artifact. The plan's
// depth ordering must be preserved, and allocator-supplied identifiers
// must be consumed verbatim.
type Emitter interface {
	Emit(codec *synth.FieldCodec) (Artifact, error)
}

// EmitterError wraps a lowering failure. The underlying error is
// propagated unchanged; only the field name is attached.
type EmitterError struct {
	Field string
	Err   error
}

// Error implements the error interface.
func (e *EmitterError) Error() string {
	return fmt.Sprintf("%s: emit: %v", e.Field, e.Err)
}

// Unwrap returns the underlying lowering failure.
func (e *EmitterError) Unwrap() error {
	return e.Err
}
