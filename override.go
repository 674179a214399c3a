package sconfig

import "reflect"

// Override interfaces let a type declare engine behavior in code instead of
// through Declare options. Both are looked up on a pointer to a zero value,
// so either receiver kind works.

// Aliased declares the type tag written for a type. It takes precedence over
// the fully-qualified name but not over WithAlias.
//
//	func (Parent) SerializableAs() string { return "Parent" }
type Aliased interface {
	SerializableAs() string
}

// Defaulter populates default values on a freshly constructed instance before
// the engine fills it from data. Keys missing from the data keep these values.
//
//	func (s *Settings) ConfigDefaults() { s.Port = 25565 }
type Defaulter interface {
	ConfigDefaults()
}

var (
	aliasedType   = reflect.TypeFor[Aliased]()
	defaulterType = reflect.TypeFor[Defaulter]()
)

// declaredAlias returns the alias a type declares through Aliased.
func declaredAlias(t reflect.Type) (string, bool) {
	if !reflect.PointerTo(t).Implements(aliasedType) {
		return "", false
	}
	alias := reflect.New(t).Interface().(Aliased).SerializableAs()
	return alias, alias != ""
}

// newInstance constructs a zero value of t and applies its defaults. The
// returned value is a pointer to the new instance.
func newInstance(t reflect.Type) reflect.Value {
	ptr := reflect.New(t)
	if d, ok := ptr.Interface().(Defaulter); ok {
		d.ConfigDefaults()
	}
	return ptr
}
