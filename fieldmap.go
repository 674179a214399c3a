package sconfig

import (
	"context"
	"reflect"
	"strings"
)

// FieldMap is the ordered field model of a struct type. Lookups by name
// ignore case.
type FieldMap struct {
	typ    reflect.Type
	fields []*Field
	byName map[string]*Field
}

// MapFields returns the field model of T.
func MapFields[T any]() (*FieldMap, error) {
	inspect[T]()
	return FieldMapOf(reflect.TypeFor[T]())
}

// Type returns the struct type the model describes.
func (m *FieldMap) Type() reflect.Type { return m.typ }

// Len returns the number of fields.
func (m *FieldMap) Len() int { return len(m.fields) }

// Field returns the field with the given serialized name.
func (m *FieldMap) Field(name string) (*Field, bool) {
	f, ok := m.byName[strings.ToLower(name)]
	return f, ok
}

// Fields returns the fields in declaration order.
func (m *FieldMap) Fields() []*Field {
	return append([]*Field(nil), m.fields...)
}

// Names returns the serialized names in declaration order.
func (m *FieldMap) Names() []string {
	names := make([]string, len(m.fields))
	for i, f := range m.fields {
		names[i] = f.name
	}
	return names
}

// put adds f, letting fields declared on the struct itself shadow fields
// promoted from embedded structs. A shadowing field takes the position of
// the field it shadows.
func (m *FieldMap) put(f *Field) {
	key := strings.ToLower(f.name)
	existing, ok := m.byName[key]
	if !ok {
		m.fields = append(m.fields, f)
		m.byName[key] = f
		return
	}
	if f.promoted {
		return
	}
	for i, e := range m.fields {
		if e == existing {
			m.fields[i] = f
			break
		}
	}
	m.byName[key] = f
}

// buildFieldMap reflects over t. stack holds the types whose models are
// being built further up the call chain.
func buildFieldMap(t reflect.Type, stack []reflect.Type) (*FieldMap, error) {
	decl := declOf(t)
	md := scanType(t)
	fm := &FieldMap{
		typ:    t,
		fields: make([]*Field, 0, len(md.Fields)),
		byName: make(map[string]*Field, len(md.Fields)),
	}
	stack = append(stack, t)

	for _, meta := range md.Fields {
		sf := t.FieldByIndex(meta.Index)
		tags := parseFieldTags(meta.Tags)
		if tags.skip {
			continue
		}

		if sf.Anonymous && tags.name == "" {
			et := indirectType(sf.Type)
			if et.Kind() == reflect.Struct && !isLeafType(et) {
				if decl.ignoreEmbedded {
					continue
				}
				if sf.Type.Kind() == reflect.Ptr && !sf.IsExported() {
					continue
				}
				inner, err := childFieldMap(t, et, sf.Name, stack)
				if err != nil {
					return nil, err
				}
				for _, f := range inner.fields {
					promoted := *f
					promoted.index = append(append([]int(nil), meta.Index...), f.index...)
					promoted.promoted = true
					fm.put(&promoted)
				}
				continue
			}
		}
		if !sf.IsExported() {
			continue
		}

		f, err := buildField(t, sf, meta.Index, tags, stack)
		if err != nil {
			return nil, err
		}
		fm.put(f)
	}

	return fm, nil
}

func buildField(owner reflect.Type, sf reflect.StructField, index []int, tags fieldTags, stack []reflect.Type) (*Field, error) {
	f := &Field{
		goName:      sf.Name,
		index:       append([]int(nil), index...),
		typ:         sf.Type,
		persistable: !tags.transient,
		immutable:   tags.immutable,
		serializer:  tags.serializer,
		validator:   tags.validator,
		handler:     tags.handler,
		mask:        MaskType(tags.mask),
		comments:    tags.comments,
		description: tags.description,
	}

	if sf.Type.Implements(virtualFieldType) {
		f.virtual = true
		f.typ = reflect.Zero(sf.Type).Interface().(virtualField).valueType()
	}

	if f.mask != "" && !IsValidMaskType(f.mask) {
		return nil, newModelError(ErrInvalidTag, owner, sf.Name)
	}

	base := indirectType(f.typ)
	typeDecl := declOf(base)

	f.name = tags.name
	if f.name == "" {
		f.name = typeDecl.name
	}
	if f.name == "" {
		f.name = defaultName(sf.Name)
	}
	if f.name == TypeKey {
		return nil, newModelError(ErrInvalidTag, owner, sf.Name)
	}
	if f.serializer == "" {
		f.serializer = typeDecl.serializer
	}
	if f.validator == "" {
		f.validator = typeDecl.validator
	}
	if f.handler == "" {
		f.handler = typeDecl.handler
	}
	if len(f.comments) == 0 {
		f.comments = typeDecl.comments
	}
	if f.description == "" {
		f.description = typeDecl.description
	}

	switch {
	case isSetType(f.typ):
		f.elem = f.typ.Key()
	case f.typ.Kind() == reflect.Slice, f.typ.Kind() == reflect.Array:
		f.elem = f.typ.Elem()
	}

	if !f.virtual && f.serializer == "" && !isLeafType(f.typ) {
		child, err := childFieldMap(owner, base, sf.Name, stack)
		if err != nil {
			return nil, err
		}
		f.children = child
	}

	return f, nil
}

// childFieldMap returns the model of a nested struct, refusing to recurse
// into a type that is already being built.
func childFieldMap(owner, child reflect.Type, field string, stack []reflect.Type) (*FieldMap, error) {
	if child == owner {
		return nil, newModelError(ErrSelfContainment, owner, field)
	}
	for _, t := range stack {
		if t == child {
			return nil, newModelError(ErrRecursiveType, owner, field)
		}
	}
	return fieldMapOf(child, stack)
}

// isLeafType reports whether t is handled by a serializer rather than by a
// nested field model.
func isLeafType(t reflect.Type) bool {
	if isEnumType(t) {
		return true
	}
	base := indirectType(t)
	if isEnumType(base) || declOf(base).serializer != "" {
		return true
	}
	set := DefaultSet()
	if set.HasSerializerFor(t) || set.HasSerializerFor(base) {
		return true
	}
	if base.Kind() != reflect.Struct {
		return true
	}
	return implementsText(base)
}

func emitBuilt(fm *FieldMap) {
	emitFieldMapBuilt(context.Background(), fm.typ.String(), len(fm.fields))
}
