// Package bdocfilter provides a type-safe query-filter builder and renderer
// for document databases that speak a BSON-shaped query language.
//
// Application code composes filters against a host document type using the
// fluent constructors in this package, then renders the resulting filter
// term to a bson.D the server understands:
//
//	type User struct {
//		Status string `bson:"status"`
//		Age    int    `bson:"age"`
//		Tags   []string `bson:"tags"`
//	}
//
//	status := bdocfilter.FieldOf[string]("status")
//	age := bdocfilter.FieldOf[int]("age")
//
//	term := bdocfilter.And(
//		bdocfilter.Eq(status, "active"),
//		bdocfilter.Gt(age, 21),
//	)
//
//	doc, err := bdocfilter.Render(term, bdocfilter.StructSerializer[User](), bdocfilter.DefaultRegistry)
//
// The builder (package-level constructors), the filter term AST, the
// field-path resolver, and the renderer are the core of this package.
// Sort and projection builders over the same field handles live in
// query.go, and a MongoDB execution binding that runs rendered filters
// against a collection lives in pkg/mongodb.
package bdocfilter
