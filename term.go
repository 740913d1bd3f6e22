package bdocfilter

import "go.mongodb.org/mongo-driver/v2/bson"

// Term is the filter AST node type (§3): an immutable, tagged variant over
// a field predicate, a logical combinator, or an escape hatch. Terms are
// built once by the constructors in builder.go and never mutated; Render
// is the only thing that ever looks inside one.
type Term interface {
	isTerm()
}

// simpleTerm is Simple(field, value): a field matched against a literal.
// serialize is nil when value already is a BDOC-shaped literal (the Path
// flavor); otherwise it converts the stored Go literal through the
// field's registered serializer at render time.
type simpleTerm struct {
	path      string
	value     any
	serialize func(*Registry) (any, error)
}

func (simpleTerm) isTerm() {}

// operatorTerm is Operator(field, op, operand): one comparison/element/
// evaluation operator applied to one field.
type operatorTerm struct {
	path      string
	op        string
	value     any
	serialize func(*Registry) (any, error)
}

func (operatorTerm) isTerm() {}

// arrayOperatorTerm is ArrayOperator(field, op, items): $in/$nin/$all.
// resolve performs item serialization at render time; for a compile-time
// ArrayField it never touches docSer, for a Path it uses docSer to recover
// the declared item type (§4.1 flavor 1) and fails with SerializerMismatch
// if the field isn't array-shaped there.
type arrayOperatorTerm struct {
	path    string
	op      string
	resolve func(docSer DocumentSerializer, reg *Registry) ([]any, error)
}

func (arrayOperatorTerm) isTerm() {}

// geometryTerm is Geometry(field, op, geometry): $geoWithin/$geoIntersects.
// wrapperKey is almost always "$geometry" (the GeoJSON operand form); the
// legacy $box/$center/$centerSphere/$polygon shapes reuse this same node
// with a different wrapper key instead of a GeoJSON object.
type geometryTerm struct {
	path       string
	op         string
	wrapperKey string
	value      any
}

func (geometryTerm) isTerm() {}

// nearTerm is Near(field, point, spherical?, max?, min?).
type nearTerm struct {
	path        string
	sphere      bool
	point       any
	maxDistance *float64
	minDistance *float64
}

func (nearTerm) isTerm() {}

// elemMatchTerm is ElementMatch(field, inner): a subfilter over the array
// element type. inner is rendered with the same DocumentSerializer as the
// enclosing document; Path lookups inside it are not re-rooted at the
// array element.
type elemMatchTerm struct {
	path  string
	inner Term
}

func (elemMatchTerm) isTerm() {}

// textTerm is the $text full-text search operator. Unlike every other
// term it has no field path; it applies to the document's text index.
type textTerm struct {
	search   string
	language *string
}

func (textTerm) isTerm() {}

// andTerm, orTerm and notTerm are the logical combinators; their
// normalization rules live in render.go (§4.3-§4.5).
type andTerm struct{ children []Term }

func (andTerm) isTerm() {}

type orTerm struct{ children []Term }

func (orTerm) isTerm() {}

type notTerm struct{ child Term }

func (notTerm) isTerm() {}

// rawTerm is Raw(doc): a pre-built BDOC document passed through as-is.
type rawTerm struct{ doc bson.D }

func (rawTerm) isTerm() {}

// expressionTerm is Expression(lambda): an opaque host-side predicate
// lowered by an external compiler. compile stands in for that compiler;
// this package never inspects what produced it.
type expressionTerm struct {
	compile func(reg *Registry) (bson.D, error)
}

func (expressionTerm) isTerm() {}

// arrayIndexExistsTerm is the synthetic form used for size-range
// predicates: {"field.index": {$exists: bool}}.
type arrayIndexExistsTerm struct {
	path   string
	index  int
	exists bool
}

func (arrayIndexExistsTerm) isTerm() {}
