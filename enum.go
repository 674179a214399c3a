package sconfig

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// enumTable holds the values of a declared enum in declaration order.
type enumTable struct {
	names  []string
	values []reflect.Value
}

var (
	enums   = make(map[reflect.Type]*enumTable)
	enumsMu sync.RWMutex
)

// RegisterEnum declares the complete set of values of T. Values are written
// by name and parsed case-insensitively. A value's name comes from a
// Name() string method, then String(), then fmt formatting. This covers both
// integer enums with a String method and faux enums: pointer types whose
// instances are package-level variables.
//
//	sconfig.RegisterEnum(Easy, Normal, Hard)
func RegisterEnum[T any](values ...T) {
	t := reflect.TypeFor[T]()
	table := &enumTable{
		names:  make([]string, 0, len(values)),
		values: make([]reflect.Value, 0, len(values)),
	}
	for _, v := range values {
		rv := reflect.ValueOf(&v).Elem()
		table.names = append(table.names, enumName(rv))
		table.values = append(table.values, rv)
	}

	enumsMu.Lock()
	enums[t] = table
	enumsMu.Unlock()
}

func enumOf(t reflect.Type) (*enumTable, bool) {
	enumsMu.RLock()
	defer enumsMu.RUnlock()
	table, ok := enums[t]
	return table, ok
}

// name returns the declared name of v, or false when v is not one of the
// declared values.
func (e *enumTable) name(v reflect.Value) (string, bool) {
	for i, candidate := range e.values {
		if candidate.Equal(v) {
			return e.names[i], true
		}
	}
	return "", false
}

// parse matches s against the declared names ignoring case.
func (e *enumTable) parse(s string) (reflect.Value, bool) {
	s = strings.TrimSpace(s)
	for i, name := range e.names {
		if strings.EqualFold(name, s) {
			return e.values[i], true
		}
	}
	return reflect.Value{}, false
}

func enumName(v reflect.Value) string {
	if v.Kind() == reflect.Ptr && v.IsNil() {
		return ""
	}
	switch x := v.Interface().(type) {
	case interface{ Name() string }:
		return x.Name()
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v.Interface())
}
