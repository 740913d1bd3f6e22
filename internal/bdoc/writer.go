// Package bdoc implements the tree-shaped BDOC value model and the
// streaming writer the renderer emits through. A document is a bson.D (an
// ordered slice of key/value pairs, preserving the insertion order the
// normalization rules in the renderer depend on); an array is a bson.A;
// a leaf is any value the driver's own codec already understands.
//
// Writer mirrors a begin/end-document, begin/end-array, write-name,
// write-value contract rather than exposing the accumulated bson.D/bson.A
// directly, so the renderer's emission code reads the same regardless of
// how deeply nested the current frame is. Writers are pooled: Acquire
// pulls one from a sync.Pool (allocating only on a cold pool), and Release
// must run on every exit path — including error returns — so a render
// call never leaks a writer still holding a partially built frame stack.
package bdoc

import (
	"sync"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type frameKind int

const (
	frameDocument frameKind = iota
	frameArray
)

type frame struct {
	kind frameKind
	doc  bson.D
	arr  bson.A
	name string
}

// Writer streams a single BDOC document. The zero value is not usable;
// obtain one from Acquire.
type Writer struct {
	stack []frame
}

var writerPool = sync.Pool{
	New: func() any { return &Writer{stack: make([]frame, 0, 8)} },
}

// Acquire returns a Writer from the pool, already positioned inside a
// fresh top-level document.
func Acquire() *Writer {
	w := writerPool.Get().(*Writer)
	w.stack = w.stack[:0]
	w.BeginDocument()
	return w
}

// Release resets w and returns it to the pool. Calling Release more than
// once, or using w afterward, is a programming error.
func Release(w *Writer) {
	w.stack = w.stack[:0]
	writerPool.Put(w)
}

// BeginDocument pushes a new document frame.
func (w *Writer) BeginDocument() {
	w.stack = append(w.stack, frame{kind: frameDocument})
}

// EndDocument pops the current document frame and returns its contents.
// It panics if the current frame is not a document; that is a programming
// error in the caller, not a data error.
func (w *Writer) EndDocument() bson.D {
	n := len(w.stack) - 1
	f := w.stack[n]
	if f.kind != frameDocument {
		panic("bdoc: EndDocument called on a non-document frame")
	}
	w.stack = w.stack[:n]
	return f.doc
}

// BeginArray pushes a new array frame.
func (w *Writer) BeginArray() {
	w.stack = append(w.stack, frame{kind: frameArray})
}

// EndArray pops the current array frame and returns its contents.
func (w *Writer) EndArray() bson.A {
	n := len(w.stack) - 1
	f := w.stack[n]
	if f.kind != frameArray {
		panic("bdoc: EndArray called on a non-array frame")
	}
	w.stack = w.stack[:n]
	return f.arr
}

// Name sets the key the next Value or Doc call writes under. Valid only
// when the current frame is a document.
func (w *Writer) Name(key string) {
	n := len(w.stack) - 1
	w.stack[n].name = key
}

// Value writes a leaf (or an already-built bson.D/bson.A) into the
// current frame: under the pending name if the frame is a document, or
// appended if the frame is an array.
func (w *Writer) Value(v any) {
	n := len(w.stack) - 1
	f := &w.stack[n]
	switch f.kind {
	case frameDocument:
		f.doc = append(f.doc, bson.E{Key: f.name, Value: v})
	case frameArray:
		f.arr = append(f.arr, v)
	}
}

// Doc is a convenience for Value(d) that documents intent at call sites
// emitting a whole sub-document in one step.
func (w *Writer) Doc(d bson.D) { w.Value(d) }
