package sconfig

import (
	"context"
	"reflect"
	"sync"
)

// TypeKey is the reserved map key holding the type tag of a serialized
// composite value. It cannot collide with a field name.
const TypeKey = "=$$="

var (
	aliases    = make(map[string]reflect.Type) // alias or qualified name -> type
	typeAlias  = make(map[reflect.Type]string) // type -> primary alias
	knownTypes = make(map[string]reflect.Type) // qualified name -> type
	aliasMu    sync.RWMutex
)

// Register declares T with opts and registers its alias.
func Register[T any](opts ...TypeOption) error {
	inspect[T]()
	t := reflect.TypeFor[T]()
	if len(opts) > 0 {
		DeclareType(t, opts...)
	}
	return RegisterAlias(t)
}

// RegisterAlias registers the alias of a struct type: its declared alias, or
// its fully-qualified name when it declares none. The qualified name always
// resolves as well. Registering the same type again is a no-op. When another
// type already holds the alias, the new type takes it over and an
// *AliasError is returned.
func RegisterAlias(t reflect.Type) error {
	t = indirectType(t)
	if t.Kind() != reflect.Struct {
		return newModelError(ErrNotStruct, t, "")
	}

	alias := AliasOf(t)
	qualified := QualifiedName(t)

	aliasMu.Lock()
	knownTypes[qualified] = t
	prev, exists := aliases[alias]
	aliases[alias] = t
	if _, ok := aliases[qualified]; !ok {
		aliases[qualified] = t
	}
	typeAlias[t] = alias
	aliasMu.Unlock()

	ctx := context.Background()
	if exists && prev != t {
		emitAliasConflict(ctx, alias, t.String(), prev.String())
		return &AliasError{Alias: alias, Type: t, Previous: prev}
	}
	if !exists {
		emitTypeRegistered(ctx, t.String(), alias)
	}
	return nil
}

// Resolve returns the type for a type tag. Registered aliases are checked
// first, then the qualified names of every type the process has declared,
// registered, or built a field model for.
func Resolve(tag string) (reflect.Type, bool) {
	aliasMu.RLock()
	defer aliasMu.RUnlock()
	if t, ok := aliases[tag]; ok {
		return t, true
	}
	t, ok := knownTypes[tag]
	return t, ok
}

// AliasOf returns the type tag written for t.
func AliasOf(t reflect.Type) string {
	t = indirectType(t)

	aliasMu.RLock()
	alias, ok := typeAlias[t]
	aliasMu.RUnlock()
	if ok {
		return alias
	}

	if d := declOf(t); d.alias != "" {
		return d.alias
	}
	if alias, ok := declaredAlias(t); ok {
		return alias
	}
	return QualifiedName(t)
}

// QualifiedName returns the package path and name of t.
func QualifiedName(t reflect.Type) string {
	t = indirectType(t)
	if t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

// rememberType makes the qualified name of t resolvable.
func rememberType(t reflect.Type) {
	if t.Kind() != reflect.Struct || t.Name() == "" {
		return
	}
	name := QualifiedName(t)

	aliasMu.RLock()
	_, ok := knownTypes[name]
	aliasMu.RUnlock()
	if ok {
		return
	}

	aliasMu.Lock()
	knownTypes[name] = t
	aliasMu.Unlock()
}
