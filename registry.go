package sconfig

import (
	"reflect"
	"sync"
)

var (
	fieldMaps   = make(map[reflect.Type]*FieldMap)
	fieldMapsMu sync.RWMutex
)

// FieldMapOf returns the cached field model of a struct type, building it on
// first use. Pointer types resolve to their element type.
func FieldMapOf(t reflect.Type) (*FieldMap, error) {
	if t == nil {
		return nil, newModelError(ErrNotStruct, t, "")
	}
	return fieldMapOf(indirectType(t), nil)
}

func fieldMapOf(t reflect.Type, stack []reflect.Type) (*FieldMap, error) {
	// Fast path: read lock
	fieldMapsMu.RLock()
	if fm, ok := fieldMaps[t]; ok {
		fieldMapsMu.RUnlock()
		return fm, nil
	}
	fieldMapsMu.RUnlock()

	if t.Kind() != reflect.Struct {
		return nil, newModelError(ErrNotStruct, t, "")
	}

	// Built without holding the lock: nested types take it themselves.
	fm, err := buildFieldMap(t, stack)
	if err != nil {
		return nil, err
	}

	fieldMapsMu.Lock()
	if existing, ok := fieldMaps[t]; ok {
		fieldMapsMu.Unlock()
		return existing, nil
	}
	fieldMaps[t] = fm
	fieldMapsMu.Unlock()

	rememberType(t)
	emitBuilt(fm)
	return fm, nil
}

// ResetFieldMaps clears the field model cache. Intended for testing.
func ResetFieldMaps() {
	fieldMapsMu.Lock()
	defer fieldMapsMu.Unlock()
	fieldMaps = make(map[reflect.Type]*FieldMap)
}

// named is an append-only registry of instances keyed by name.
type named[T any] struct {
	mu    sync.RWMutex
	items map[string]T
}

func (r *named[T]) register(name string, item T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.items == nil {
		r.items = make(map[string]T)
	}
	r.items[name] = item
}

func (r *named[T]) lookup(name string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[name]
	return item, ok
}

var (
	serializerRegistry named[Serializer]
	validatorRegistry  named[Validator]
	handlerRegistry    named[PropertyHandler]
)

// RegisterSerializer makes s available to every set under name.
func RegisterSerializer(name string, s Serializer) {
	serializerRegistry.register(name, s)
}

// RegisterValidator makes v available to fields and types under name.
func RegisterValidator(name string, v Validator) {
	validatorRegistry.register(name, v)
}

// RegisterHandler makes h available to fields and types under name.
func RegisterHandler(name string, h PropertyHandler) {
	handlerRegistry.register(name, h)
}

func lookupSerializer(name string) (Serializer, bool) {
	return serializerRegistry.lookup(name)
}

func lookupValidator(name string) (Validator, bool) {
	return validatorRegistry.lookup(name)
}

func lookupHandler(name string) (PropertyHandler, bool) {
	return handlerRegistry.lookup(name)
}
