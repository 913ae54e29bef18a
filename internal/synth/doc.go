// Package synth provides the recursive-descent codec synthesizer that
// turns one aggregate field's shape chain into a DecodePlan and an
// EncodePlan.
//
// Synthesis pipeline per field:
//  1. Resolve effective traits for the occurrence at the current depth
//  2. Decide wrapper read/emission (non-flattened) vs direct entries
//     (flattened)
//  3. Bind key and value/element sub-values under the resolved names,
//     with allocator-supplied carrier identifiers
//  4. Recurse at depth+1 for aggregate values; attach leaf conversion
//     rules otherwise
//  5. Emit the three-way Absent/Empty/Populated instruction at the
//     outermost depth only
//
// Synthesis is a pure function over the immutable shape graph and trait
// binding: independent fields may be synthesized concurrently with no
// shared mutable state.
package synth
