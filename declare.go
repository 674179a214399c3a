package sconfig

import (
	"reflect"
	"sync"
)

// TypeOption configures the declarations attached to a type.
type TypeOption func(*typeDecl)

// typeDecl holds the type-level markers that fields of the type fall back to.
type typeDecl struct {
	alias          string
	name           string
	noTypeTag      bool
	ignoreEmbedded bool
	serializer     string
	validator      string
	handler        string
	comments       []string
	description    string
}

var (
	decls   = make(map[reflect.Type]*typeDecl)
	declsMu sync.RWMutex
)

// WithAlias sets the type tag written for the type.
func WithAlias(alias string) TypeOption {
	return func(d *typeDecl) { d.alias = alias }
}

// WithName sets the serialized name used by fields of this type that carry
// no name of their own.
func WithName(name string) TypeOption {
	return func(d *typeDecl) { d.name = name }
}

// WithoutTypeTag suppresses the type tag when serializing the type. Values
// held in interface fields then deserialize as untyped maps.
func WithoutTypeTag() TypeOption {
	return func(d *typeDecl) { d.noTypeTag = true }
}

// WithIgnoreEmbedded skips the fields of embedded structs.
func WithIgnoreEmbedded() TypeOption {
	return func(d *typeDecl) { d.ignoreEmbedded = true }
}

// WithSerializer names the serializer used for the type.
func WithSerializer(name string) TypeOption {
	return func(d *typeDecl) { d.serializer = name }
}

// WithValidator names the validator used by fields of the type.
func WithValidator(name string) TypeOption {
	return func(d *typeDecl) { d.validator = name }
}

// WithHandler names the property handler used by fields of the type.
func WithHandler(name string) TypeOption {
	return func(d *typeDecl) { d.handler = name }
}

// WithComment sets comment lines. On a root type they become the file
// header; on other types they are the fallback for fields without comments.
func WithComment(lines ...string) TypeOption {
	return func(d *typeDecl) { d.comments = lines }
}

// WithDescription sets the fallback description for fields of the type.
func WithDescription(desc string) TypeOption {
	return func(d *typeDecl) { d.description = desc }
}

// Declare attaches declarations to T. Declarations must be made before the
// type is first used; field models built earlier are not rebuilt.
func Declare[T any](opts ...TypeOption) {
	inspect[T]()
	DeclareType(reflect.TypeFor[T](), opts...)
}

// DeclareType attaches declarations to t. Pointer types are declared on
// their element type.
func DeclareType(t reflect.Type, opts ...TypeOption) {
	t = indirectType(t)

	declsMu.Lock()
	d, ok := decls[t]
	if !ok {
		d = &typeDecl{}
	} else {
		cp := *d
		d = &cp
	}
	for _, opt := range opts {
		opt(d)
	}
	decls[t] = d
	declsMu.Unlock()

	rememberType(t)
}

// declOf returns the declarations for t. The result is never nil.
func declOf(t reflect.Type) *typeDecl {
	declsMu.RLock()
	d, ok := decls[indirectType(t)]
	declsMu.RUnlock()
	if !ok {
		return &typeDecl{}
	}
	return d
}

// indirectType strips pointer levels.
func indirectType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}
