package bdocfilter

// FieldRef is anything that resolves to a dotted, server-visible path.
// Path and TypedField implement it directly; ArrayField implements it for
// its element-typed counterpart in arrayfield.go.
type FieldRef interface {
	fieldPath() string
}

// Path is the untyped field-handle flavor (§4.1 flavor 1): a raw dotted
// path with no declared Go type. Values passed alongside a Path are taken
// to already be BDOC-shaped (a primitive, a time.Time, a bson.D, ...); no
// registry lookup is performed for them. The exception is array-operator
// use of a Path (InPath, NinPath, AllPath): it is type-checked at render
// time against the DocumentSerializer, which is how the declared item type
// is recovered lazily (§4.1), and each item is then serialized with the
// Registry entry for that item type, if one is registered.
type Path string

func (p Path) fieldPath() string { return string(p) }

// ElementPath is the conventional placeholder path for a condition applied
// to a scalar array's element itself inside ElemMatch (§4.2), e.g.
// ElemMatch(tags, GtValue(ElementPath, 5)). Render detects this empty-string
// key and rewrites it away; it never appears in rendered output.
const ElementPath Path = ""

// TypedField is the typed-string field-handle flavor (§4.1 flavor 2): a
// dotted path plus a compile-time declared field type F. Literals passed
// through a TypedField are serialized with the Registry entry for F, if
// one is registered, falling back to passing the literal through
// unchanged.
//
// The expression-handle flavor (§4.1 flavor 3, a compiled member-access
// chain) is intentionally not implemented: Go has no member-expression
// compiler to delegate to, and the design notes explicitly permit omitting
// it in favor of TypedField's compile-time path.
type TypedField[F any] struct {
	path string
}

// FieldOf declares a typed field handle for path with Go type F.
func FieldOf[F any](path string) TypedField[F] {
	return TypedField[F]{path: path}
}

func (f TypedField[F]) fieldPath() string { return f.path }

func (f TypedField[F]) serialize(reg *Registry, v F) (any, error) {
	return serializeAs(reg, v)
}
