// Package trait provides wire-level trait definitions, the protocol
// binding defaults table, and the resolver that computes effective
// names, flatten state, and namespace for one occurrence of a shape.
//
// Resolution order is always occurrence override > type-level default >
// binding default. A trait with no applicable fallback is reported as a
// GapError and never silently guessed.
package trait
