// Package benchmarks measures bdocfilter render performance.
package benchmarks

import (
	"testing"

	"github.com/bdocql/bdocfilter"
)

type benchDoc struct {
	Name   string   `bson:"name"`
	Age    int      `bson:"age"`
	Tags   []string `bson:"tags"`
	Active bool     `bson:"active"`
}

var benchDocSer = bdocfilter.StructSerializer[benchDoc]()

func BenchmarkRender_Simple(b *testing.B) {
	term := bdocfilter.EqValue(bdocfilter.Path("name"), "alice")
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := bdocfilter.Render(term, benchDocSer, bdocfilter.DefaultRegistry); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRender_AndMerge(b *testing.B) {
	age := bdocfilter.FieldOf[int]("age")
	term := bdocfilter.And(bdocfilter.Gt(age, 18), bdocfilter.Lt(age, 65))
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := bdocfilter.Render(term, benchDocSer, bdocfilter.DefaultRegistry); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRender_AndPromote(b *testing.B) {
	age := bdocfilter.FieldOf[int]("age")
	term := bdocfilter.And(bdocfilter.Gt(age, 1), bdocfilter.Gt(age, 2))
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := bdocfilter.Render(term, benchDocSer, bdocfilter.DefaultRegistry); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRender_NestedOr(b *testing.B) {
	term := bdocfilter.Or(
		bdocfilter.EqValue(bdocfilter.Path("name"), "alice"),
		bdocfilter.Or(
			bdocfilter.EqValue(bdocfilter.Path("name"), "bob"),
			bdocfilter.EqValue(bdocfilter.Path("name"), "carol"),
		),
	)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := bdocfilter.Render(term, benchDocSer, bdocfilter.DefaultRegistry); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRender_ArrayOperator(b *testing.B) {
	term := bdocfilter.InPath(bdocfilter.Path("tags"), []string{"a", "b", "c"})
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := bdocfilter.Render(term, benchDocSer, bdocfilter.DefaultRegistry); err != nil {
			b.Fatal(err)
		}
	}
}
