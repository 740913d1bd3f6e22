// Package mongodb binds rendered bdocfilter.Term values to a live
// *mongo.Collection and implements the write-acknowledgement probe
// summarized in the filter package's external-interfaces section. The
// renderer itself is pure and transport-free (§5 of the filter package);
// this package is the thin, I/O-performing edge around it.
package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/bdocql/bdocfilter"
)

// Collection wraps a *mongo.Collection and renders bdocfilter.Term values
// against it with a fixed document serializer and registry.
type Collection struct {
	coll   *mongo.Collection
	docSer bdocfilter.DocumentSerializer
	reg    *bdocfilter.Registry
}

// New wraps coll. reg defaults to bdocfilter.DefaultRegistry when nil.
func New(coll *mongo.Collection, docSer bdocfilter.DocumentSerializer, reg *bdocfilter.Registry) *Collection {
	if reg == nil {
		reg = bdocfilter.DefaultRegistry
	}
	return &Collection{coll: coll, docSer: docSer, reg: reg}
}

// FindOptions mirrors the query-shaping knobs a sibling sort/projection
// builder would produce (out of scope, §1: index/update/projection/sort
// builders are structurally parallel but not part of this package) — they
// are taken pre-built rather than grown into a second builder surface here.
type FindOptions struct {
	Sort       bson.D
	Skip       *int64
	Limit      *int64
	Projection bson.D
}

// Find renders term and issues it as a Find against the wrapped collection.
func (c *Collection) Find(ctx context.Context, term bdocfilter.Term, opts FindOptions) (*mongo.Cursor, error) {
	filter, err := bdocfilter.Render(term, c.docSer, c.reg)
	if err != nil {
		return nil, err
	}
	o := options.Find()
	if opts.Sort != nil {
		o.SetSort(opts.Sort)
	}
	if opts.Skip != nil {
		o.SetSkip(*opts.Skip)
	}
	if opts.Limit != nil {
		o.SetLimit(*opts.Limit)
	}
	if opts.Projection != nil {
		o.SetProjection(opts.Projection)
	}
	return c.coll.Find(ctx, filter, o)
}

// FindOne renders term and issues it as a FindOne against the wrapped
// collection.
func (c *Collection) FindOne(ctx context.Context, term bdocfilter.Term, opts FindOptions) (*mongo.SingleResult, error) {
	filter, err := bdocfilter.Render(term, c.docSer, c.reg)
	if err != nil {
		return nil, err
	}
	o := options.FindOne()
	if opts.Sort != nil {
		o.SetSort(opts.Sort)
	}
	if opts.Skip != nil {
		o.SetSkip(*opts.Skip)
	}
	if opts.Projection != nil {
		o.SetProjection(opts.Projection)
	}
	return c.coll.FindOne(ctx, filter, o), nil
}

// CountDocuments renders term and issues it as a CountDocuments against the
// wrapped collection.
func (c *Collection) CountDocuments(ctx context.Context, term bdocfilter.Term) (int64, error) {
	filter, err := bdocfilter.Render(term, c.docSer, c.reg)
	if err != nil {
		return 0, err
	}
	return c.coll.CountDocuments(ctx, filter)
}

// DeleteMany renders term and issues it as a DeleteMany against the wrapped
// collection.
func (c *Collection) DeleteMany(ctx context.Context, term bdocfilter.Term) (*mongo.DeleteResult, error) {
	filter, err := bdocfilter.Render(term, c.docSer, c.reg)
	if err != nil {
		return nil, err
	}
	return c.coll.DeleteMany(ctx, filter)
}
