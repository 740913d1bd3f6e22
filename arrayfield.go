package bdocfilter

// ArrayField is the array-capable, compile-time-typed field handle. S is
// the declared slice type (e.g. []string) and E its element type; the
// constraint ties them together so the item serializer for E is always
// known at compile time, satisfying invariant 5 (array operators use the
// item serializer, never the field's own) without a runtime capability
// check.
type ArrayField[S ~[]E, E any] struct {
	path string
}

// ArrayOf declares a typed array field handle for path.
func ArrayOf[S ~[]E, E any](path string) ArrayField[S, E] {
	return ArrayField[S, E]{path: path}
}

func (f ArrayField[S, E]) fieldPath() string { return f.path }

func (f ArrayField[S, E]) serializeItem(reg *Registry, v E) (any, error) {
	return serializeAs(reg, v)
}
