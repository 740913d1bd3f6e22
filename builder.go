package bdocfilter

import "go.mongodb.org/mongo-driver/v2/bson"

// This file is the builder facade (§4.6, C5): ergonomic constructors that
// turn field handles and literals into Term values. Every operator that
// compares against a value of the field's own declared type comes in two
// parallel forms, matching §4.1's first two field-handle flavors — a
// TypedField form that serializes value through the field's registered
// serializer, and a Path form that takes an already BDOC-shaped value
// (suffixed Value). Operators whose operand is never of the field's own
// type (existence, size, geo shapes, ...) take a bare FieldRef instead,
// since there is nothing field-typed to parallel.
//
// Builders never touch a Registry or DocumentSerializer; they allocate an
// AST node and nothing else. All registry/document-serializer work happens
// in Render.
//
// Construction errors (§7: "structural precondition failed at
// construction — null field, null filter list element") are raised
// immediately, as a panic carrying an *InvalidFilterError, rather than
// surfacing later as a render-time error or a bare nil-pointer dereference.

// mustField validates a FieldRef handle and returns its resolved path,
// panicking with an *InvalidFilterError if field is nil.
func mustField(field FieldRef) string {
	if field == nil {
		panic(invalidFilter("nil field"))
	}
	return field.fieldPath()
}

// mustChild validates a single Term, panicking with an *InvalidFilterError
// if it is nil.
func mustChild(child Term) Term {
	if child == nil {
		panic(invalidFilter("nil filter list element"))
	}
	return child
}

// mustChildren validates every element of a Term slice, panicking with an
// *InvalidFilterError naming the first nil element found.
func mustChildren(children []Term) []Term {
	for i, c := range children {
		if c == nil {
			panic(invalidFilter("nil filter list element at index %d", i))
		}
	}
	return children
}

// Eq builds Simple(field, value) for a typed field.
func Eq[F any](field TypedField[F], value F) Term {
	return simpleTerm{
		path:      field.fieldPath(),
		value:     value,
		serialize: func(reg *Registry) (any, error) { return field.serialize(reg, value) },
	}
}

// EqValue builds Simple(field, value) for an untyped path and a
// BDOC-shaped literal.
func EqValue(field Path, value any) Term {
	return simpleTerm{path: field.fieldPath(), value: value}
}

func typedOperator[F any](field TypedField[F], op string, value F) Term {
	return operatorTerm{
		path:      field.fieldPath(),
		op:        op,
		value:     value,
		serialize: func(reg *Registry) (any, error) { return field.serialize(reg, value) },
	}
}

func valueOperator(field Path, op string, value any) Term {
	return operatorTerm{path: field.fieldPath(), op: op, value: value}
}

// Ne builds Operator(field, $ne, value) for a typed field.
func Ne[F any](field TypedField[F], value F) Term { return typedOperator(field, "$ne", value) }

// NeValue builds Operator(field, $ne, value) for an untyped path.
func NeValue(field Path, value any) Term { return valueOperator(field, "$ne", value) }

// Gt builds Operator(field, $gt, value) for a typed field.
func Gt[F any](field TypedField[F], value F) Term { return typedOperator(field, "$gt", value) }

// GtValue builds Operator(field, $gt, value) for an untyped path.
func GtValue(field Path, value any) Term { return valueOperator(field, "$gt", value) }

// Gte builds Operator(field, $gte, value) for a typed field.
func Gte[F any](field TypedField[F], value F) Term { return typedOperator(field, "$gte", value) }

// GteValue builds Operator(field, $gte, value) for an untyped path.
func GteValue(field Path, value any) Term { return valueOperator(field, "$gte", value) }

// Lt builds Operator(field, $lt, value) for a typed field.
func Lt[F any](field TypedField[F], value F) Term { return typedOperator(field, "$lt", value) }

// LtValue builds Operator(field, $lt, value) for an untyped path.
func LtValue(field Path, value any) Term { return valueOperator(field, "$lt", value) }

// Lte builds Operator(field, $lte, value) for a typed field.
func Lte[F any](field TypedField[F], value F) Term { return typedOperator(field, "$lte", value) }

// LteValue builds Operator(field, $lte, value) for an untyped path.
func LteValue(field Path, value any) Term { return valueOperator(field, "$lte", value) }

// Exists builds Operator(field, $exists, true).
func Exists(field FieldRef) Term {
	return operatorTerm{path: mustField(field), op: "$exists", value: true}
}

// NotExists builds Operator(field, $exists, false).
func NotExists(field FieldRef) Term {
	return operatorTerm{path: mustField(field), op: "$exists", value: false}
}

// BSONType builds Operator(field, $type, bsonType), e.g. BSONType(f, "string").
func BSONType(field FieldRef, bsonType string) Term {
	return operatorTerm{path: mustField(field), op: "$type", value: bsonType}
}

// Mod builds Operator(field, $mod, [divisor, remainder]).
func Mod(field FieldRef, divisor, remainder int) Term {
	return operatorTerm{path: mustField(field), op: "$mod", value: bson.A{divisor, remainder}}
}

// RegexPattern builds Operator(field, $regex, pattern) with no options.
func RegexPattern(field FieldRef, pattern string) Term {
	return operatorTerm{path: mustField(field), op: "$regex", value: bson.Regex{Pattern: pattern}}
}

// RegexOptions builds Operator(field, $regex, pattern) with options
// (e.g. "i" for case-insensitive).
func RegexOptions(field FieldRef, pattern, options string) Term {
	return operatorTerm{path: mustField(field), op: "$regex", value: bson.Regex{Pattern: pattern, Options: options}}
}

// In builds ArrayOperator(field, $in, items) for a compile-time array field.
func In[S ~[]E, E any](field ArrayField[S, E], items S) Term {
	return arrayOperatorTerm{path: field.fieldPath(), op: "$in", resolve: typedItems(field, items)}
}

// Nin builds ArrayOperator(field, $nin, items) for a compile-time array field.
func Nin[S ~[]E, E any](field ArrayField[S, E], items S) Term {
	return arrayOperatorTerm{path: field.fieldPath(), op: "$nin", resolve: typedItems(field, items)}
}

// All builds ArrayOperator(field, $all, items) for a compile-time array field.
func All[S ~[]E, E any](field ArrayField[S, E], items S) Term {
	return arrayOperatorTerm{path: field.fieldPath(), op: "$all", resolve: typedItems(field, items)}
}

func typedItems[S ~[]E, E any](field ArrayField[S, E], items S) func(DocumentSerializer, *Registry) ([]any, error) {
	return func(_ DocumentSerializer, reg *Registry) ([]any, error) {
		out := make([]any, len(items))
		for i, it := range items {
			v, err := field.serializeItem(reg, it)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}
}

// InPath builds ArrayOperator(field, $in, items) for an untyped path,
// recovering the declared item type from docSer at render time (§4.1
// flavor 1). Render fails with SerializerMismatchError if the path isn't
// array-shaped there.
func InPath[T any](field Path, items []T) Term {
	return arrayOperatorTerm{path: field.fieldPath(), op: "$in", resolve: dynamicItems(field, items)}
}

// NinPath is InPath's $nin counterpart.
func NinPath[T any](field Path, items []T) Term {
	return arrayOperatorTerm{path: field.fieldPath(), op: "$nin", resolve: dynamicItems(field, items)}
}

// AllPath is InPath's $all counterpart.
func AllPath[T any](field Path, items []T) Term {
	return arrayOperatorTerm{path: field.fieldPath(), op: "$all", resolve: dynamicItems(field, items)}
}

func dynamicItems[T any](field Path, items []T) func(DocumentSerializer, *Registry) ([]any, error) {
	return func(docSer DocumentSerializer, reg *Registry) ([]any, error) {
		if docSer == nil {
			return nil, serializerMismatch(field.fieldPath(), "no document serializer supplied to resolve the declared item type")
		}
		m, ok := docSer.Member(field.fieldPath())
		if !ok || !m.IsArray {
			return nil, serializerMismatch(field.fieldPath(), "serializer for field is not array-capable")
		}
		out := make([]any, len(items))
		for i, it := range items {
			v, err := serializeByType(reg, m.ItemType, it)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}
}

// Size builds Operator(field, $size, n).
func Size(field FieldRef, n int) Term {
	return operatorTerm{path: mustField(field), op: "$size", value: n}
}

// SizeGt builds the ArrayIndexExists(field, n, true) synthetic form.
func SizeGt(field FieldRef, n int) Term {
	return arrayIndexExistsTerm{path: mustField(field), index: n, exists: true}
}

// SizeGte builds the ArrayIndexExists(field, n-1, true) synthetic form.
func SizeGte(field FieldRef, n int) Term {
	return arrayIndexExistsTerm{path: mustField(field), index: n - 1, exists: true}
}

// SizeLt builds the ArrayIndexExists(field, n-1, false) synthetic form.
func SizeLt(field FieldRef, n int) Term {
	return arrayIndexExistsTerm{path: mustField(field), index: n - 1, exists: false}
}

// SizeLte builds the ArrayIndexExists(field, n, false) synthetic form.
func SizeLte(field FieldRef, n int) Term {
	return arrayIndexExistsTerm{path: mustField(field), index: n, exists: false}
}

// ElemMatch builds ElementMatch(field, inner): a subfilter over the array
// element type. Multiple conditions are folded with AND semantics, same
// as passing And(conditions...) directly.
func ElemMatch(field FieldRef, conditions ...Term) Term {
	path := mustField(field)
	mustChildren(conditions)
	var inner Term
	switch len(conditions) {
	case 0:
		inner = andTerm{}
	case 1:
		inner = conditions[0]
	default:
		inner = andTerm{children: conditions}
	}
	return elemMatchTerm{path: path, inner: inner}
}

// GeoIntersects builds Geometry(field, $geoIntersects, geometry), geometry
// being a GeoJSON document (e.g. one built by GeoJSONPoint).
func GeoIntersects(field FieldRef, geometry any) Term {
	return geometryTerm{path: mustField(field), op: "$geoIntersects", wrapperKey: "$geometry", value: geometry}
}

// GeoWithin builds Geometry(field, $geoWithin, geometry) for a GeoJSON operand.
func GeoWithin(field FieldRef, geometry any) Term {
	return geometryTerm{path: mustField(field), op: "$geoWithin", wrapperKey: "$geometry", value: geometry}
}

// GeoWithinBox builds the legacy $box form of $geoWithin.
func GeoWithinBox(field FieldRef, bottomLeft, topRight [2]float64) Term {
	return geometryTerm{
		path: mustField(field), op: "$geoWithin", wrapperKey: "$box",
		value: bson.A{bson.A{bottomLeft[0], bottomLeft[1]}, bson.A{topRight[0], topRight[1]}},
	}
}

// GeoWithinCenter builds the legacy $center form of $geoWithin.
func GeoWithinCenter(field FieldRef, center [2]float64, radius float64) Term {
	return geometryTerm{
		path: mustField(field), op: "$geoWithin", wrapperKey: "$center",
		value: bson.A{bson.A{center[0], center[1]}, radius},
	}
}

// GeoWithinCenterSphere builds the $centerSphere form of $geoWithin
// (radius in radians).
func GeoWithinCenterSphere(field FieldRef, center [2]float64, radiusRadians float64) Term {
	return geometryTerm{
		path: mustField(field), op: "$geoWithin", wrapperKey: "$centerSphere",
		value: bson.A{bson.A{center[0], center[1]}, radiusRadians},
	}
}

// GeoWithinPolygon builds the legacy $polygon form of $geoWithin.
func GeoWithinPolygon(field FieldRef, points ...[2]float64) Term {
	path := mustField(field)
	pts := make(bson.A, len(points))
	for i, p := range points {
		pts[i] = bson.A{p[0], p[1]}
	}
	return geometryTerm{path: path, op: "$geoWithin", wrapperKey: "$polygon", value: pts}
}

// Near builds Near(field, point, spherical=false, max, min). Either
// distance bound may be nil to omit it.
func Near(field FieldRef, point any, maxDistance, minDistance *float64) Term {
	return nearTerm{path: mustField(field), point: point, maxDistance: maxDistance, minDistance: minDistance}
}

// NearSphere is Near's spherical counterpart ($nearSphere).
func NearSphere(field FieldRef, point any, maxDistance, minDistance *float64) Term {
	return nearTerm{path: mustField(field), sphere: true, point: point, maxDistance: maxDistance, minDistance: minDistance}
}

// GeoJSONPoint builds a GeoJSON Point document suitable as a Near,
// GeoWithin or GeoIntersects geometry operand.
func GeoJSONPoint(lon, lat float64) bson.D {
	return bson.D{{Key: "type", Value: "Point"}, {Key: "coordinates", Value: bson.A{lon, lat}}}
}

// Text builds the $text search term with no language override.
func Text(search string) Term {
	return textTerm{search: search}
}

// TextLanguage builds the $text search term with an explicit language.
func TextLanguage(search, language string) Term {
	return textTerm{search: search, language: &language}
}

// And builds And(children): a conjunction, normalized per §4.3.
func And(children ...Term) Term { return andTerm{children: mustChildren(children)} }

// Or builds Or(children): a disjunction, normalized per §4.5.
func Or(children ...Term) Term { return orTerm{children: mustChildren(children)} }

// Not builds Not(child): a negation, lowered per §4.4.
func Not(child Term) Term { return notTerm{child: mustChild(child)} }

// Raw builds Raw(doc): a pre-built BDOC document passed through unchanged.
func Raw(doc bson.D) Term { return rawTerm{doc: doc} }

// Where builds Expression(lambda): an opaque host predicate. Go has no
// member-expression compiler to lower an actual lambda, so compile stands
// in for that external compiler — it is handed the Registry in use and
// must return the already-rendered document.
func Where(compile func(reg *Registry) (bson.D, error)) Term {
	return expressionTerm{compile: compile}
}
