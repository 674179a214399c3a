package sconfig

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/zoobzio/sentinel"
)

type badMask struct {
	Value string `mask:"bogus"`
}

type reservedName struct {
	Value string `config:"=$$="`
}

type renamed struct {
	Value string `config:"custom,immutable" comment:"first\nsecond" description:"a renamed value"`
}

func TestFieldMap_Names(t *testing.T) {
	tests := []struct {
		name string
		typ  reflect.Type
		want []string
	}{
		{"tags", reflect.TypeFor[tagged](), []string{"httpPort", "cache"}},
		{"embedded shadowing", reflect.TypeFor[derived](), []string{"id", "name", "extra"}},
		{"ignore embedded", reflect.TypeFor[ignoring](), []string{"own"}},
		{"explicit name", reflect.TypeFor[renamed](), []string{"custom"}},
		{"pointer resolves to element", reflect.TypeFor[*child](), []string{"flag"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm, err := FieldMapOf(tt.typ)
			if err != nil {
				t.Fatalf("FieldMapOf() error: %v", err)
			}
			if diff := cmp.Diff(tt.want, fm.Names()); diff != "" {
				t.Errorf("Names() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFieldMap_Errors(t *testing.T) {
	tests := []struct {
		name string
		typ  reflect.Type
		want error
	}{
		{"self containment", reflect.TypeFor[selfContained](), ErrSelfContainment},
		{"mutual recursion", reflect.TypeFor[loopA](), ErrRecursiveType},
		{"invalid mask", reflect.TypeFor[badMask](), ErrInvalidTag},
		{"reserved name", reflect.TypeFor[reservedName](), ErrInvalidTag},
		{"not a struct", reflect.TypeFor[int](), ErrNotStruct},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FieldMapOf(tt.typ)
			if !errors.Is(err, tt.want) {
				t.Errorf("FieldMapOf() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFieldMap_SelfContainmentNamesField(t *testing.T) {
	_, err := MapFields[selfContained]()
	var me *ModelError
	if !errors.As(err, &me) {
		t.Fatalf("error should be a ModelError, got %T", err)
	}
	if me.Field != "Next" {
		t.Errorf("Field = %q, want Next", me.Field)
	}
	if me.Type != reflect.TypeFor[selfContained]() {
		t.Errorf("Type = %v, want selfContained", me.Type)
	}
}

func TestFieldMap_Cached(t *testing.T) {
	a, err := MapFields[tagged]()
	if err != nil {
		t.Fatalf("MapFields() error: %v", err)
	}
	b, err := FieldMapOf(reflect.TypeFor[*tagged]())
	if err != nil {
		t.Fatalf("FieldMapOf() error: %v", err)
	}
	if a != b {
		t.Error("field models should be cached per type")
	}
}

func TestFieldMap_CaseInsensitiveLookup(t *testing.T) {
	fm, err := MapFields[tagged]()
	if err != nil {
		t.Fatalf("MapFields() error: %v", err)
	}
	for _, name := range []string{"httpPort", "HTTPPORT", "httpport"} {
		f, ok := fm.Field(name)
		if !ok {
			t.Errorf("Field(%q) not found", name)
			continue
		}
		if f.GoName() != "HTTPPort" {
			t.Errorf("Field(%q).GoName() = %q, want HTTPPort", name, f.GoName())
		}
	}
	if _, ok := fm.Field("secret"); ok {
		t.Error("skipped field should not be modelled")
	}
}

func TestFieldMap_Flags(t *testing.T) {
	fm, err := MapFields[settings]()
	if err != nil {
		t.Fatalf("MapFields() error: %v", err)
	}

	tests := []struct {
		field      string
		persist    bool
		immutable  bool
		collection bool
		children   bool
	}{
		{"id", true, true, false, false},
		{"port", true, false, false, false},
		{"timeout", true, false, false, false},
		{"color", true, false, false, false},
		{"level", true, false, false, false},
		{"tags", true, false, true, false},
		{"flags", true, false, true, false},
		{"limits", true, false, false, false},
		{"fixed", true, false, false, false},
		{"raw", true, false, false, false},
		{"when", true, false, false, false},
		{"nested", true, false, false, true},
		{"session", false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			f, ok := fm.Field(tt.field)
			if !ok {
				t.Fatalf("Field(%q) not found", tt.field)
			}
			if f.IsPersistable() != tt.persist {
				t.Errorf("IsPersistable() = %v, want %v", f.IsPersistable(), tt.persist)
			}
			if f.IsImmutable() != tt.immutable {
				t.Errorf("IsImmutable() = %v, want %v", f.IsImmutable(), tt.immutable)
			}
			if f.IsCollection() != tt.collection {
				t.Errorf("IsCollection() = %v, want %v", f.IsCollection(), tt.collection)
			}
			if f.HasChildren() != tt.children {
				t.Errorf("HasChildren() = %v, want %v", f.HasChildren(), tt.children)
			}
		})
	}
}

func TestFieldMap_ElemType(t *testing.T) {
	fm, err := MapFields[settings]()
	if err != nil {
		t.Fatalf("MapFields() error: %v", err)
	}
	tags, _ := fm.Field("tags")
	if tags.ElemType() != reflect.TypeFor[string]() {
		t.Errorf("tags ElemType() = %v, want string", tags.ElemType())
	}
	flags, _ := fm.Field("flags")
	if flags.ElemType() != reflect.TypeFor[string]() {
		t.Errorf("flags ElemType() = %v, want string", flags.ElemType())
	}
	port, _ := fm.Field("port")
	if port.ElemType() != nil {
		t.Errorf("port ElemType() = %v, want nil", port.ElemType())
	}
}

func TestFieldMap_Declarations(t *testing.T) {
	fm, err := MapFields[renamed]()
	if err != nil {
		t.Fatalf("MapFields() error: %v", err)
	}
	f, _ := fm.Field("custom")
	if diff := cmp.Diff([]string{"first", "second"}, f.Comments()); diff != "" {
		t.Errorf("Comments() mismatch (-want +got):\n%s", diff)
	}
	if f.Description() != "a renamed value" {
		t.Errorf("Description() = %q", f.Description())
	}
	if !f.IsImmutable() {
		t.Error("custom should be immutable")
	}
}

func TestFieldMap_Shadowing(t *testing.T) {
	fm, err := MapFields[derived]()
	if err != nil {
		t.Fatalf("MapFields() error: %v", err)
	}
	name, _ := fm.Field("name")
	if diff := cmp.Diff([]string{"Shadows the embedded name"}, name.Comments()); diff != "" {
		t.Errorf("own field should shadow the promoted one (-want +got):\n%s", diff)
	}

	d := &derived{base: base{ID: "b", Name: "inner"}, Name: "outer"}
	if got := name.Value(d); got != "outer" {
		t.Errorf("Value(name) = %v, want outer", got)
	}
	id, _ := fm.Field("id")
	if got := id.Value(d); got != "b" {
		t.Errorf("Value(id) = %v, want b", got)
	}
}

func TestFieldMap_Virtual(t *testing.T) {
	fm, err := MapFields[withDependent]()
	if err != nil {
		t.Fatalf("MapFields() error: %v", err)
	}
	f, ok := fm.Field("level")
	if !ok {
		t.Fatal("level not found")
	}
	if !f.IsVirtual() {
		t.Error("level should be virtual")
	}
	if f.Type() != reflect.TypeFor[int]() {
		t.Errorf("Type() = %v, want int", f.Type())
	}
	if f.HasChildren() {
		t.Error("virtual field should be a leaf")
	}
}

func TestFieldMap_LeafTypes(t *testing.T) {
	type leaves struct {
		When    time.Time
		Timeout time.Duration
		Color   color
		Level   *difficulty
	}
	fm, err := MapFields[leaves]()
	if err != nil {
		t.Fatalf("MapFields() error: %v", err)
	}
	for _, f := range fm.Fields() {
		if f.HasChildren() {
			t.Errorf("%s should be a leaf", f.Name())
		}
	}
}

type region struct {
	Region string `comment:"Deployment region"`
}

type inspectedConfig struct {
	Host string `config:"address" description:"Bind address"`
	Port int    `config:"port,immutable"`
	region
}

func TestMapFields_ReadsSentinelMetadata(t *testing.T) {
	fm, err := MapFields[inspectedConfig]()
	if err != nil {
		t.Fatalf("MapFields() error: %v", err)
	}

	md, ok := sentinel.Lookup("inspectedConfig")
	if !ok {
		t.Fatal("sentinel has no metadata for inspectedConfig")
	}
	if md.PackageName != reflect.TypeFor[inspectedConfig]().PkgPath() {
		t.Errorf("PackageName = %q", md.PackageName)
	}

	cached, ok := cachedFields(reflect.TypeFor[inspectedConfig]())
	if !ok {
		t.Fatal("cached metadata rejected")
	}
	if got := cached[0].Tags[tagConfig]; got != "address" {
		t.Errorf("config tag = %q, want address", got)
	}

	if diff := cmp.Diff([]string{"address", "port", "region"}, fm.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
	f, _ := fm.Field("region")
	if diff := cmp.Diff([]string{"Deployment region"}, f.Comments()); diff != "" {
		t.Errorf("promoted field from unexported embedded struct lost its tags:\n%s", diff)
	}
	if f, _ := fm.Field("port"); !f.IsImmutable() {
		t.Error("port should be immutable")
	}
}

func firstClash() reflect.Type {
	type clash struct {
		Value string `config:"first"`
	}
	sentinel.Inspect[clash]()
	return reflect.TypeFor[clash]()
}

func secondClash() reflect.Type {
	type clash struct {
		Value string `config:"second"`
	}
	return reflect.TypeFor[clash]()
}

func TestFieldMapOf_SentinelNameCollision(t *testing.T) {
	first, second := firstClash(), secondClash()

	if _, ok := cachedFields(first); !ok {
		t.Error("metadata for the scanned type should be used")
	}
	if _, ok := cachedFields(second); ok {
		t.Error("metadata cached under the same name must not be used for another type")
	}

	fm, err := FieldMapOf(second)
	if err != nil {
		t.Fatalf("FieldMapOf() error: %v", err)
	}
	if diff := cmp.Diff([]string{"second"}, fm.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
}
