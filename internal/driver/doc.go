// Package driver orchestrates a generation run: it synthesizes a codec
// for every selected field, lowers each through the configured emitter,
// and aggregates per-field failures as diagnostics so one bad field
// never aborts the rest of the run.
package driver
