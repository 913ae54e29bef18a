// Package emit lowers synthesized plans into the artifact form the
// surrounding pipeline consumes.
//
// Two strategies are provided: SourceEmitter renders generated Go source
// (text/template + go/format), ClosureEmitter compiles plans into
// directly executable encode/decode closures over wire fragments. Both
// preserve plan depth ordering and consume the allocator-supplied
// identifiers verbatim; the synthesizer is unaware of which backend is
// active.
package emit
