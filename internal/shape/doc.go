// Package shape provides the protocol-neutral schema model consumed by
// codec synthesis.
//
// The model is an arena of shape nodes addressed by ShapeID. A node is a
// tagged union over structure, map, list, and leaf kinds. The type graph
// may contain cycles; synthesis never walks the raw graph, only a finite
// occurrence chain for one concrete field, so no cycle detection lives
// here.
//
// Key types:
//   - ShapeID: namespace + shape name
//   - Node: describes kind (structure/map/list/leaf) and children
//   - Ref: a child position (target shape + position-level traits)
//   - Graph: the immutable arena, supplied once per generation run
package shape
