package bdocfilter

import "go.mongodb.org/mongo-driver/v2/bson"

// Sort/projection builders are out of scope proper (§1) but are
// structurally parallel to the filter builder and simple enough to reuse
// field handles for, so a sort key or projected field can't silently drift
// from the filter that selected the documents in the first place.

// SortOrder is ascending or descending for one sort key.
type SortOrder int

const (
	Ascending  SortOrder = 1
	Descending SortOrder = -1
)

// SortSpec accumulates ordered sort keys.
type SortSpec struct {
	keys bson.D
}

// Sort starts a new, empty SortSpec.
func Sort() *SortSpec { return &SortSpec{} }

// By appends field in the given order. Later keys break ties among earlier
// ones, matching server sort semantics for a compound sort document.
func (s *SortSpec) By(field FieldRef, order SortOrder) *SortSpec {
	s.keys = append(s.keys, bson.E{Key: field.fieldPath(), Value: int(order)})
	return s
}

// Render returns the accumulated sort document.
func (s *SortSpec) Render() bson.D {
	if s.keys == nil {
		return bson.D{}
	}
	return s.keys
}

// ProjectionSpec accumulates included/excluded fields.
type ProjectionSpec struct {
	fields bson.D
}

// Projection starts a new, empty ProjectionSpec.
func Projection() *ProjectionSpec { return &ProjectionSpec{} }

// Include marks field to be returned.
func (p *ProjectionSpec) Include(field FieldRef) *ProjectionSpec {
	p.fields = append(p.fields, bson.E{Key: field.fieldPath(), Value: 1})
	return p
}

// Exclude marks field to be omitted. Mixing Include and Exclude on fields
// other than _id is a server-side error; this package surfaces the
// caller's construction rather than validating it, matching the filter
// renderer's own stance (§4.5: bugs should stay visible).
func (p *ProjectionSpec) Exclude(field FieldRef) *ProjectionSpec {
	p.fields = append(p.fields, bson.E{Key: field.fieldPath(), Value: 0})
	return p
}

// Render returns the accumulated projection document.
func (p *ProjectionSpec) Render() bson.D {
	if p.fields == nil {
		return bson.D{}
	}
	return p.fields
}
