// Package diagnostic provides structured, per-field warnings and errors
// for the codec generator.
//
// Synthesis failures are fatal for the offending field only; the run
// continues for other fields, and the collected diagnostics report every
// failure by fully-qualified field name.
package diagnostic
