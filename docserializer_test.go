package bdocfilter

import (
	"reflect"
	"testing"
)

type docSerAddress struct {
	City string `bson:"city"`
}

type docSerItem struct {
	SKU  string `bson:"sku"`
	Note string `bson:"-"`
}

type docSerProduct struct {
	unexported int
	Name       string         `bson:"name"`
	Tags       []string       `bson:"tags"`
	Address    docSerAddress  `bson:"address"`
	Items      []docSerItem   `bson:"items"`
	Plain      string
}

func TestStructSerializer_TopLevelField(t *testing.T) {
	ser := StructSerializer[docSerProduct]()
	m, ok := ser.Member("name")
	if !ok {
		t.Fatal("expected member name")
	}
	if m.Type.Kind() != reflect.String || m.IsArray {
		t.Errorf("got %+v", m)
	}
}

func TestStructSerializer_SkipsUnexportedAndDashTagged(t *testing.T) {
	ser := StructSerializer[docSerProduct]()
	if _, ok := ser.Member("unexported"); ok {
		t.Error("unexported field should not be indexed")
	}
	if _, ok := ser.Member("items.note"); ok {
		t.Error("bson:\"-\" field should not be indexed")
	}
}

func TestStructSerializer_FallsBackToFieldNameWithoutTag(t *testing.T) {
	ser := StructSerializer[docSerProduct]()
	m, ok := ser.Member("Plain")
	if !ok || m.Type.Kind() != reflect.String {
		t.Errorf("got %+v, %v", m, ok)
	}
}

func TestStructSerializer_ArrayField(t *testing.T) {
	ser := StructSerializer[docSerProduct]()
	m, ok := ser.Member("tags")
	if !ok {
		t.Fatal("expected member tags")
	}
	if !m.IsArray || m.ItemType.Kind() != reflect.String {
		t.Errorf("got %+v", m)
	}
}

func TestStructSerializer_NestedStruct(t *testing.T) {
	ser := StructSerializer[docSerProduct]()
	m, ok := ser.Member("address.city")
	if !ok {
		t.Fatal("expected member address.city")
	}
	if m.Type.Kind() != reflect.String {
		t.Errorf("got %+v", m)
	}
}

func TestStructSerializer_SliceOfStruct(t *testing.T) {
	ser := StructSerializer[docSerProduct]()
	top, ok := ser.Member("items")
	if !ok || !top.IsArray {
		t.Fatalf("expected array member items, got %+v, %v", top, ok)
	}
	nested, ok := ser.Member("items.sku")
	if !ok {
		t.Fatal("expected member items.sku")
	}
	if nested.Type.Kind() != reflect.String {
		t.Errorf("got %+v", nested)
	}
}

func TestStructSerializer_UnknownMemberNotFound(t *testing.T) {
	ser := StructSerializer[docSerProduct]()
	if _, ok := ser.Member("nonexistent"); ok {
		t.Error("expected nonexistent member to be absent")
	}
}
