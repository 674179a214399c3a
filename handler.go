package sconfig

import (
	"reflect"
)

// PropertyHandler performs the string-driven property operations on a
// located field.
type PropertyHandler interface {
	Set(fi *FieldInstance, value string) error
	Add(fi *FieldInstance, value string) error
	Remove(fi *FieldInstance, value string) error
	Clear(fi *FieldInstance) error
}

// DefaultHandler parses text with the field's textual constructor. Set
// applies to non-collection fields; Add, Remove and Clear apply to slices
// and sets.
type DefaultHandler struct{}

// Set parses value and assigns it.
func (DefaultHandler) Set(fi *FieldInstance, value string) error {
	if fi.field.IsCollection() {
		return newVetoError(fi.field.name, ErrCollectionSet,
			"%s is a collection; use add, remove or clear", fi.Path())
	}
	v, err := fi.Parse(value)
	if err != nil {
		return err
	}
	return fi.SetValue(v)
}

// Add parses value as an element and appends it. Slices are written back as
// a new slice; sets keep their map.
func (DefaultHandler) Add(fi *FieldInstance, value string) error {
	if !fi.field.IsCollection() {
		return notCollection(fi)
	}
	elem, err := fi.parseElem(value)
	if err != nil {
		return err
	}
	return fi.mutate(func(c reflect.Value) reflect.Value {
		if c.Kind() == reflect.Slice {
			return reflect.Append(c, elem)
		}
		c.SetMapIndex(elem, reflect.Zero(c.Type().Elem()))
		return c
	})
}

// Remove parses value as an element and removes its first occurrence.
func (DefaultHandler) Remove(fi *FieldInstance, value string) error {
	if !fi.field.IsCollection() {
		return notCollection(fi)
	}
	elem, err := fi.parseElem(value)
	if err != nil {
		return err
	}
	return fi.mutate(func(c reflect.Value) reflect.Value {
		if c.Kind() == reflect.Slice {
			for i := 0; i < c.Len(); i++ {
				if reflect.DeepEqual(c.Index(i).Interface(), elem.Interface()) {
					return reflect.AppendSlice(c.Slice(0, i), c.Slice(i+1, c.Len()))
				}
			}
			return c
		}
		c.SetMapIndex(elem, reflect.Value{})
		return c
	})
}

// Clear removes every element.
func (DefaultHandler) Clear(fi *FieldInstance) error {
	if !fi.field.IsCollection() {
		return notCollection(fi)
	}
	return fi.mutate(func(c reflect.Value) reflect.Value {
		if c.Kind() == reflect.Slice {
			return c.Slice(0, 0)
		}
		return reflect.MakeMap(c.Type())
	})
}

func notCollection(fi *FieldInstance) error {
	return newVetoError(fi.field.name, ErrNotCollection, "cannot modify non-collection property %s", fi.Path())
}
