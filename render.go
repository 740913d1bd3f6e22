package bdocfilter

import (
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/bdocql/bdocfilter/internal/bdoc"
)

// Render turns a Term into a BDOC document (§4, C4). It is a pure function
// of its three arguments: the same (term, docSer, reg) always renders to a
// byte-identical document, and rendering never mutates term, docSer or reg.
//
// docSer may be nil if term contains no ElemMatch (over any field handle)
// and no array operator built over an untyped Path field; a term that does
// fails to render with SerializerMismatchError instead of panicking.
func Render(term Term, docSer DocumentSerializer, reg *Registry) (bson.D, error) {
	if term == nil {
		return nil, invalidFilter("term is nil")
	}
	return renderTerm(term, docSer, reg)
}

func renderTerm(term Term, docSer DocumentSerializer, reg *Registry) (bson.D, error) {
	switch t := term.(type) {
	case simpleTerm:
		return renderSimple(t, reg)
	case operatorTerm:
		return renderOperator(t, reg)
	case arrayOperatorTerm:
		return renderArrayOperator(t, docSer, reg)
	case geometryTerm:
		return renderGeometry(t), nil
	case nearTerm:
		return renderNear(t), nil
	case elemMatchTerm:
		return renderElemMatch(t, docSer, reg)
	case textTerm:
		return renderText(t), nil
	case andTerm:
		return renderAnd(t, docSer, reg)
	case orTerm:
		return renderOr(t, docSer, reg)
	case notTerm:
		return renderNot(t, docSer, reg)
	case rawTerm:
		return t.doc, nil
	case expressionTerm:
		return t.compile(reg)
	case arrayIndexExistsTerm:
		return renderArrayIndexExists(t), nil
	default:
		return nil, invalidFilter("unrecognized term type %T", term)
	}
}

// fieldDoc builds {path: value} through the pooled streaming writer (C1).
func fieldDoc(path string, value any) bson.D {
	w := bdoc.Acquire()
	defer bdoc.Release(w)
	w.Name(path)
	w.Value(value)
	return w.EndDocument()
}

// fieldWrap builds {path: inner} through the pooled streaming writer.
func fieldWrap(path string, inner bson.D) bson.D {
	w := bdoc.Acquire()
	defer bdoc.Release(w)
	w.Name(path)
	w.Doc(inner)
	return w.EndDocument()
}

// opDoc builds the one-element {op: value} operator document.
func opDoc(op string, value any) bson.D {
	w := bdoc.Acquire()
	defer bdoc.Release(w)
	w.Name(op)
	w.Value(value)
	return w.EndDocument()
}

func renderSimple(t simpleTerm, reg *Registry) (bson.D, error) {
	val := t.value
	if t.serialize != nil {
		v, err := t.serialize(reg)
		if err != nil {
			return nil, err
		}
		val = v
	}
	return fieldDoc(t.path, val), nil
}

func renderOperator(t operatorTerm, reg *Registry) (bson.D, error) {
	val := t.value
	if t.serialize != nil {
		v, err := t.serialize(reg)
		if err != nil {
			return nil, err
		}
		val = v
	}
	return fieldWrap(t.path, opDoc(t.op, val)), nil
}

func renderArrayOperator(t arrayOperatorTerm, docSer DocumentSerializer, reg *Registry) (bson.D, error) {
	items, err := t.resolve(docSer, reg)
	if err != nil {
		return nil, err
	}
	return fieldWrap(t.path, opDoc(t.op, bson.A(items))), nil
}

func renderGeometry(t geometryTerm) bson.D {
	wrapper := bson.D{{Key: t.wrapperKey, Value: t.value}}
	return fieldWrap(t.path, opDoc(t.op, wrapper))
}

func renderNear(t nearTerm) bson.D {
	op := "$near"
	if t.sphere {
		op = "$nearSphere"
	}
	inner := bson.D{{Key: "$geometry", Value: t.point}}
	if t.maxDistance != nil {
		inner = append(inner, bson.E{Key: "$maxDistance", Value: *t.maxDistance})
	}
	if t.minDistance != nil {
		inner = append(inner, bson.E{Key: "$minDistance", Value: *t.minDistance})
	}
	return fieldWrap(t.path, bson.D{{Key: op, Value: inner}})
}

func renderElemMatch(t elemMatchTerm, docSer DocumentSerializer, reg *Registry) (bson.D, error) {
	if docSer == nil {
		return nil, serializerMismatch(t.path, "no document serializer supplied to resolve whether the field is array-capable")
	}
	m, ok := docSer.Member(t.path)
	if !ok || !m.IsArray {
		return nil, serializerMismatch(t.path, "serializer for field is not array-capable")
	}
	inner, err := renderTerm(t.inner, docSer, reg)
	if err != nil {
		return nil, err
	}
	return fieldWrap(t.path, bson.D{{Key: "$elemMatch", Value: elemMatchBody(inner)}}), nil
}

// elemMatchBody applies the scalar $elemMatch fixup (§4.2): a condition
// built against ElementPath renders keyed by the empty string by
// convention ("the element itself"). That key can never be a real server
// field name, so it is rewritten away here rather than appearing in output.
func elemMatchBody(inner bson.D) bson.D {
	if len(inner) != 1 || inner[0].Key != "" {
		return inner
	}
	switch v := inner[0].Value.(type) {
	case bson.D:
		return v
	case bson.Regex:
		return bson.D{{Key: "$regex", Value: v}}
	default:
		return bson.D{{Key: "$eq", Value: v}}
	}
}

func renderText(t textTerm) bson.D {
	inner := bson.D{{Key: "$search", Value: t.search}}
	if t.language != nil {
		inner = append(inner, bson.E{Key: "$language", Value: *t.language})
	}
	return bson.D{{Key: "$text", Value: inner}}
}

func renderArrayIndexExists(t arrayIndexExistsTerm) bson.D {
	path := t.path + "." + strconv.Itoa(t.index)
	return fieldWrap(path, opDoc("$exists", t.exists))
}

// renderAnd implements §4.3: fold each child's rendered clauses into an
// accumulator one at a time, merging disjoint operator documents on the
// same field and promoting to $and only where the flat form can't express
// the result.
func renderAnd(t andTerm, docSer DocumentSerializer, reg *Registry) (bson.D, error) {
	acc := bson.D{}
	for _, child := range t.children {
		rendered, err := renderTerm(child, docSer, reg)
		if err != nil {
			return nil, err
		}
		for _, clause := range rendered {
			acc = foldAndClause(acc, clause)
		}
	}
	return acc, nil
}

func foldAndClause(acc bson.D, clause bson.E) bson.D {
	if clause.Key == "$and" {
		if arr, ok := clause.Value.(bson.A); ok {
			for _, elem := range arr {
				if ed, ok := elem.(bson.D); ok {
					for _, c := range ed {
						acc = foldAndClause(acc, c)
					}
				}
			}
			return acc
		}
	}
	if len(acc) == 1 && acc[0].Key == "$and" {
		return appendToAndArray(acc, clause)
	}
	if idx := indexOfKey(acc, clause.Key); idx >= 0 {
		if merged, ok := mergeDisjoint(acc[idx].Value, clause.Value); ok {
			acc[idx] = bson.E{Key: clause.Key, Value: merged}
			return acc
		}
		return promote(acc, clause)
	}
	return append(acc, clause)
}

func indexOfKey(doc bson.D, key string) int {
	for i, e := range doc {
		if e.Key == key {
			return i
		}
	}
	return -1
}

// mergeDisjoint merges b's keys into a when both are documents and share no
// key, allowing e.g. $gt and $lt on the same field to coexist.
func mergeDisjoint(a, b any) (bson.D, bool) {
	ad, ok := a.(bson.D)
	if !ok {
		return nil, false
	}
	bd, ok := b.(bson.D)
	if !ok {
		return nil, false
	}
	for _, be := range bd {
		if indexOfKey(ad, be.Key) >= 0 {
			return nil, false
		}
	}
	merged := make(bson.D, len(ad), len(ad)+len(bd))
	copy(merged, ad)
	merged = append(merged, bd...)
	return merged, true
}

func appendToAndArray(acc bson.D, clause bson.E) bson.D {
	arr, _ := acc[0].Value.(bson.A)
	arr = append(arr, bson.D{clause})
	acc[0] = bson.E{Key: "$and", Value: arr}
	return acc
}

func promote(acc bson.D, clause bson.E) bson.D {
	arr := make(bson.A, 0, len(acc)+1)
	for _, e := range acc {
		arr = append(arr, bson.D{e})
	}
	arr = append(arr, bson.D{clause})
	return bson.D{{Key: "$and", Value: arr}}
}

// renderOr implements §4.5: {"$or": [...]}, flattening a child that itself
// rendered to a sole "$or" key into the parent array. Empty disjunctions
// render literally rather than short-circuiting, so a caller's bug stays
// visible instead of silently matching everything.
func renderOr(t orTerm, docSer DocumentSerializer, reg *Registry) (bson.D, error) {
	arr := bson.A{}
	for _, child := range t.children {
		rendered, err := renderTerm(child, docSer, reg)
		if err != nil {
			return nil, err
		}
		if len(rendered) == 1 && rendered[0].Key == "$or" {
			if sub, ok := rendered[0].Value.(bson.A); ok {
				arr = append(arr, sub...)
				continue
			}
		}
		arr = append(arr, rendered)
	}
	return bson.D{{Key: "$or", Value: arr}}, nil
}

// renderNot implements §4.4: lower Not(child) to a semantically equivalent
// form that never leaves a bare $not at the document top level.
func renderNot(t notTerm, docSer DocumentSerializer, reg *Registry) (bson.D, error) {
	r, err := renderTerm(t.child, docSer, reg)
	if err != nil {
		return nil, err
	}
	return negate(r), nil
}

func negate(r bson.D) bson.D {
	if len(r) != 1 {
		return norFallback(r)
	}
	k, v := r[0].Key, r[0].Value

	if strings.HasPrefix(k, "$") {
		switch k {
		case "$or":
			return bson.D{{Key: "$nor", Value: v}}
		case "$nor":
			return bson.D{{Key: "$or", Value: v}}
		default:
			return norFallback(r)
		}
	}

	if rx, ok := v.(bson.Regex); ok {
		return fieldWrap(k, opDoc("$not", rx))
	}

	inner, ok := v.(bson.D)
	if !ok || len(inner) == 0 || !strings.HasPrefix(inner[0].Key, "$") || inner[0].Key == "$ref" {
		return fieldWrap(k, opDoc("$ne", v))
	}
	if len(inner) != 1 {
		return norFallback(r)
	}

	op, opv := inner[0].Key, inner[0].Value
	switch op {
	case "$exists":
		b, ok := opv.(bool)
		if !ok {
			return norFallback(r)
		}
		return fieldWrap(k, opDoc("$exists", !b))
	case "$in":
		return fieldWrap(k, opDoc("$nin", opv))
	case "$nin":
		return fieldWrap(k, opDoc("$in", opv))
	case "$ne":
		return fieldDoc(k, opv)
	case "$not":
		nested, ok := opv.(bson.D)
		if !ok {
			return norFallback(r)
		}
		return fieldWrap(k, nested)
	default:
		return fieldWrap(k, opDoc("$not", bson.D{{Key: op, Value: opv}}))
	}
}

func norFallback(r bson.D) bson.D {
	return bson.D{{Key: "$nor", Value: bson.A{r}}}
}
