package sconfig

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"
)

// Serialize converts v to plain data using the default set.
func Serialize(v any) (any, error) {
	return DefaultSet().Serialize(v)
}

// Deserialize converts plain data to objects using the default set. Tagged
// maps whose tag resolves become pointers to the registered type; anything
// else comes back as maps, slices, and scalars.
func Deserialize(data any) (any, error) {
	return DefaultSet().Deserialize(data)
}

// DeserializeAs converts plain data to a T using the default set.
func DeserializeAs[T any](data any) (T, error) {
	return DeserializeWith[T](DefaultSet(), data)
}

// DeserializeWith converts plain data to a T using set.
func DeserializeWith[T any](set *SerializerSet, data any) (T, error) {
	inspect[T]()
	var zero T
	v, err := set.DeserializeAs(data, reflect.TypeFor[T]())
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	return v.(T), nil
}

// Serialize converts v to plain data.
func (s *SerializerSet) Serialize(v any) (out any, err error) {
	start := time.Now()
	rv := reflect.ValueOf(v)
	defer func() {
		emitSerializeComplete(context.Background(), typeName(rv), time.Since(start), err)
	}()
	return s.serializeValue(rv)
}

// Deserialize converts plain data to objects, resolving type tags.
func (s *SerializerSet) Deserialize(data any) (out any, err error) {
	start := time.Now()
	defer func() {
		emitDeserializeComplete(context.Background(), tagOf(data), time.Since(start), err)
	}()
	return s.deserializeAny(data, false)
}

// DeserializeAs converts plain data to a value of type t. A map without a
// type tag still fills a struct destination.
func (s *SerializerSet) DeserializeAs(data any, t reflect.Type) (out any, err error) {
	start := time.Now()
	defer func() {
		emitDeserializeComplete(context.Background(), t.String(), time.Since(start), err)
	}()
	v, err := s.deserializeValue(data, t)
	if err != nil {
		return nil, err
	}
	if !v.IsValid() {
		return nil, nil
	}
	return v.Interface(), nil
}

// serializeValue is the recursive entry point for every nested value.
func (s *SerializerSet) serializeValue(v reflect.Value) (any, error) {
	if !v.IsValid() {
		return nil, nil
	}
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
		if v.IsNil() {
			return nil, nil
		}
	}
	return s.SerializerFor(v.Type()).Serialize(v, s)
}

// deserializeValue is the recursive entry point for every nested value.
func (s *SerializerSet) deserializeValue(data any, want reflect.Type) (reflect.Value, error) {
	if data == nil {
		return reflect.Zero(want), nil
	}
	if reflect.TypeOf(data) == want && isScalarKind(want.Kind()) {
		return reflect.ValueOf(data), nil
	}
	v, err := s.SerializerFor(want).Deserialize(data, want, s)
	if err != nil {
		return reflect.Value{}, err
	}
	return conform(v, want, data)
}

// deserializeAny handles data with no destination type. Nested failures
// degrade to untyped containers so one bad value does not discard the rest.
func (s *SerializerSet) deserializeAny(data any, nested bool) (any, error) {
	switch d := data.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		if tag, ok := d[TypeKey].(string); ok {
			if t, ok := Resolve(tag); ok {
				v, err := s.deserializeValue(d, reflect.PointerTo(t))
				if err == nil {
					return v.Interface(), nil
				}
				if !nested {
					return nil, err
				}
				emitTypeUnresolved(context.Background(), tag, err)
			} else {
				emitTypeUnresolved(context.Background(), tag, nil)
			}
		}
		out := make(map[string]any, len(d))
		for k, v := range d {
			dv, err := s.deserializeAny(v, true)
			if err != nil {
				return nil, err
			}
			out[k] = dv
		}
		return out, nil
	case []any:
		out := make([]any, len(d))
		for i, v := range d {
			dv, err := s.deserializeAny(v, true)
			if err != nil {
				return nil, err
			}
			out[i] = dv
		}
		return out, nil
	}

	rv := reflect.ValueOf(data)
	switch rv.Kind() {
	case reflect.Map:
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[FormatText(iter.Key().Interface())] = iter.Value().Interface()
		}
		return s.deserializeAny(m, nested)
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return data, nil
		}
		l := make([]any, rv.Len())
		for i := range l {
			l[i] = rv.Index(i).Interface()
		}
		return s.deserializeAny(l, nested)
	}
	return data, nil
}

// objectSerializer is the fallback: structs are written as tagged maps of
// their fields, anything else through its text form.
type objectSerializer struct{}

func (objectSerializer) Serialize(v reflect.Value, set *SerializerSet) (any, error) {
	if v.Kind() != reflect.Struct || implementsText(v.Type()) {
		return textSerializer{}.Serialize(v, set)
	}
	fm, err := FieldMapOf(v.Type())
	if err != nil {
		return nil, err
	}

	out := make(map[string]any, fm.Len()+1)
	if !declOf(v.Type()).noTypeTag {
		out[TypeKey] = AliasOf(v.Type())
	}
	for _, f := range fm.fields {
		if !f.persistable {
			continue
		}
		sv, err := f.serialize(v, set)
		if err != nil {
			return nil, newFieldError(f.name, f.typ, nil, err)
		}
		out[f.name] = sv
	}
	return out, nil
}

func (objectSerializer) Deserialize(data any, want reflect.Type, set *SerializerSet) (reflect.Value, error) {
	if want.Kind() != reflect.Struct || implementsText(want) {
		return textSerializer{}.Deserialize(data, want, set)
	}
	m, ok := asStringMap(data)
	if !ok {
		return reflect.Value{}, newConversionError(ErrInvalidValue, want, data, fmt.Errorf("expected a map"))
	}
	inst := newInstance(want)
	if err := set.populate(inst.Elem(), m); err != nil {
		return reflect.Value{}, err
	}
	return inst.Elem(), nil
}

// fillsInPlace reports whether values of t are decoded field by field by the
// struct fallback, so an existing instance can be filled in place. A set
// with its own serializer for the type decodes a fresh value instead.
func (s *SerializerSet) fillsInPlace(t reflect.Type) bool {
	_, ok := s.SerializerFor(indirectType(t)).(objectSerializer)
	return ok
}

// populate fills an addressable struct from a map. Keys match field names
// ignoring case; keys with no field are ignored. Existing nested objects are
// filled in place.
func (s *SerializerSet) populate(obj reflect.Value, data map[string]any) error {
	fm, err := FieldMapOf(obj.Type())
	if err != nil {
		return err
	}

	lowered := make(map[string]any, len(data))
	for k, v := range data {
		if k == TypeKey {
			continue
		}
		lowered[strings.ToLower(k)] = v
	}

	for _, f := range fm.fields {
		raw, ok := lowered[strings.ToLower(f.name)]
		if !ok || !f.persistable {
			continue
		}

		if f.children != nil && s.fillsInPlace(f.typ) {
			if sub, ok := asStringMap(raw); ok {
				if cur := indirectValue(f.get(obj)); cur.IsValid() && cur.CanAddr() {
					if err := s.populate(cur, sub); err != nil {
						return err
					}
					continue
				}
			}
		}

		v, err := f.deserialize(raw, s)
		if err != nil {
			var fe *FieldError
			if errors.As(err, &fe) {
				return err
			}
			return newFieldError(f.name, f.typ, raw, err)
		}

		if err := f.set(obj, v, true); err != nil {
			var veto *VetoError
			if errors.As(err, &veto) {
				emitChangeVetoed(context.Background(), obj.Type().String(), f.name, err)
				continue
			}
			return err
		}
	}
	return nil
}

// asStringMap views plain map data as map[string]any.
func asStringMap(data any) (map[string]any, bool) {
	if m, ok := data.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(data)
	if rv.Kind() != reflect.Map {
		return nil, false
	}
	m := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		m[FormatText(iter.Key().Interface())] = iter.Value().Interface()
	}
	return m, true
}

// indirectValue follows pointers, returning the zero Value on nil.
func indirectValue(v reflect.Value) reflect.Value {
	for v.IsValid() && v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func implementsText(t reflect.Type) bool {
	return reflect.PointerTo(t).Implements(textUnmarshalerType) || t.Implements(textMarshalerType)
}

func isScalarKind(k reflect.Kind) bool {
	switch k {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func typeName(v reflect.Value) string {
	if !v.IsValid() {
		return "nil"
	}
	return v.Type().String()
}

// tagOf returns the type tag of plain data, if any.
func tagOf(data any) string {
	if m, ok := data.(map[string]any); ok {
		if tag, ok := m[TypeKey].(string); ok {
			return tag
		}
	}
	return fmt.Sprintf("%T", data)
}
