// Package schema loads the YAML schema document that drives a generation
// run: shape definitions, per-occurrence traits, the protocol binding
// defaults, and the list of fields to synthesize codecs for.
//
// The document is the single external input of the pipeline. Parse
// produces the raw document, Validate reports structural problems as
// diagnostics, and Build converts a valid document into the shape graph
// and binding the synthesizer consumes.
package schema
