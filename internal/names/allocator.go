// Package names provides the depth- and field-scoped allocator of
// collision-free synthetic identifiers used during codec synthesis.
//
// Allocator state never persists across field boundaries: each field's
// synthesis call starts a fresh instance, so two sibling fields may both
// restart their depth counters at zero without ever sharing identifiers
// inside one generated artifact.
package names

import "strconv"

// NewAllocator creates an Allocator. The reserved names are taken up
// front and will never be handed out; callers reserve identifiers that
// already exist in the surrounding artifact scope.
func NewAllocator(reserved ...string) *Allocator {
	taken := make(map[string]struct{}, len(reserved))
	for _, name := range reserved {
		taken[name] = struct{}{}
	}

	return &Allocator{taken: taken}
}

// Allocator hands out identifiers that are unique within one field's
// synthesis call. Within one chain, identifiers are keyed by the
// monotonically increasing depth, which is unique along that chain; the
// taken set guards against collisions with reserved or custom names.
type Allocator struct {
	taken map[string]struct{}
}

// FreshWrapperNames returns the key and value carrier identifiers for a
// map or list occurrence at the given depth.
func (a *Allocator) FreshWrapperNames(depth int) (keyName, valueName string) {
	d := strconv.Itoa(depth)
	return a.Fresh("k" + d), a.Fresh("v" + d)
}

// FreshEntryName returns the per-entry carrier identifier for the given
// depth.
func (a *Allocator) FreshEntryName(depth int) string {
	return a.Fresh("e" + strconv.Itoa(depth))
}

// Fresh returns base if still free, otherwise base with the lowest
// numeric suffix that makes it unique. The returned name is recorded as
// taken.
func (a *Allocator) Fresh(base string) string {
	if a.taken == nil {
		a.taken = make(map[string]struct{})
	}

	name := base

	for next := 2; ; next++ {
		if _, ok := a.taken[name]; !ok {
			a.taken[name] = struct{}{}
			return name
		}

		name = base + "_" + strconv.Itoa(next)
	}
}
