package sconfig

import (
	"context"
	"errors"
	"fmt"
	"reflect"
)

// Field describes one field of a struct as seen by the engine.
type Field struct {
	name        string
	goName      string
	index       []int
	typ         reflect.Type
	elem        reflect.Type
	persistable bool
	immutable   bool
	virtual     bool
	promoted    bool
	serializer  string
	validator   string
	handler     string
	mask        MaskType
	comments    []string
	description string
	children    *FieldMap
}

// Name returns the serialized name.
func (f *Field) Name() string { return f.name }

// GoName returns the name of the struct field.
func (f *Field) GoName() string { return f.goName }

// Type returns the declared type. For computed fields this is the type of
// the computed value.
func (f *Field) Type() reflect.Type { return f.typ }

// ElemType returns the element type of a collection field, or nil.
func (f *Field) ElemType() reflect.Type { return f.elem }

// IsPersistable reports whether the field is written by Serialize.
func (f *Field) IsPersistable() bool { return f.persistable }

// IsImmutable reports whether the property facade refuses to change the field.
func (f *Field) IsImmutable() bool { return f.immutable }

// IsVirtual reports whether the field is a computed field.
func (f *Field) IsVirtual() bool { return f.virtual }

// IsCollection reports whether add, remove and clear apply to the field.
func (f *Field) IsCollection() bool {
	return f.typ.Kind() == reflect.Slice && !isByteSlice(f.typ) || isSetType(f.typ)
}

// HasChildren reports whether the field is a composite with its own model.
func (f *Field) HasChildren() bool { return f.children != nil }

// Children returns the model of a composite field, or nil for leaves.
func (f *Field) Children() *FieldMap { return f.children }

// Comments returns the comment lines written above the field.
func (f *Field) Comments() []string { return append([]string(nil), f.comments...) }

// Description returns the human readable description.
func (f *Field) Description() string { return f.description }

// Mask returns the display mask applied by Describe.
func (f *Field) Mask() MaskType { return f.mask }

// SerializerName returns the name of the field's serializer override.
func (f *Field) SerializerName() string { return f.serializer }

// Validator returns the field's validator, or nil when changes are accepted
// as given.
func (f *Field) Validator() Validator {
	if f.validator == "" {
		return nil
	}
	v, ok := lookupValidator(f.validator)
	if !ok {
		return nil
	}
	return v
}

// PropertyHandler returns the field's property handler.
func (f *Field) PropertyHandler() PropertyHandler {
	if f.handler != "" {
		if h, ok := lookupHandler(f.handler); ok {
			return h
		}
	}
	return DefaultHandler{}
}

// Value reads the field from obj, a struct or pointer to struct.
func (f *Field) Value(obj any) any {
	return iface(f.get(indirectValue(reflect.ValueOf(obj))))
}

// get reads the field from a struct value. The result is the zero Value when
// an embedded pointer on the way is nil.
func (f *Field) get(obj reflect.Value) reflect.Value {
	fv, ok := fieldByIndex(obj, f.index)
	if !ok {
		return reflect.Value{}
	}
	if f.virtual {
		if fv.IsNil() {
			return reflect.Value{}
		}
		return fv.Interface().(virtualField).getValue()
	}
	return fv
}

// set writes v, which must already have the field's type, after consulting
// the validator. force skips the immutability check.
func (f *Field) set(obj reflect.Value, v reflect.Value, force bool) error {
	if f.immutable && !force {
		return newVetoError(f.name, ErrImmutable, "%s may not be modified", f.name)
	}

	v, err := f.validate(v, f.get(obj))
	if err != nil {
		return err
	}
	return f.write(obj, v)
}

// write stores v without consulting the validator.
func (f *Field) write(obj reflect.Value, v reflect.Value) error {
	dst, err := fieldForWrite(obj, f.index)
	if err != nil {
		return newFieldError(f.name, f.typ, iface(v), err)
	}
	if f.virtual {
		if dst.IsNil() {
			dst.Set(reflect.New(dst.Type().Elem()))
		}
		dst.Interface().(virtualField).setValue(v)
		return nil
	}
	dst.Set(v)
	return nil
}

// validate passes a proposed value through the validator and returns the
// accepted value.
func (f *Field) validate(proposed, old reflect.Value) (reflect.Value, error) {
	if !proposed.IsValid() {
		proposed = reflect.Zero(f.typ)
	}
	v := f.Validator()
	if v == nil {
		return proposed, nil
	}
	accepted, err := v.ValidateChange(iface(proposed), iface(old))
	if err != nil {
		return reflect.Value{}, asVeto(f.name, err)
	}
	if accepted == nil {
		return reflect.Zero(f.typ), nil
	}
	return conform(reflect.ValueOf(accepted), f.typ, accepted)
}

// serialize converts the field's current value in obj to plain data.
func (f *Field) serialize(obj reflect.Value, set *SerializerSet) (any, error) {
	v := f.get(obj)
	if f.serializer != "" {
		if ser, ok := set.NamedSerializer(f.serializer); ok {
			if !v.IsValid() || isNilValue(v) {
				return nil, nil
			}
			return ser.Serialize(v, set)
		}
		emitSerializerMissing(context.Background(), f.typ.String(), f.serializer)
	}
	return set.serializeValue(v)
}

// deserialize converts plain data to a value of the field's type.
func (f *Field) deserialize(data any, set *SerializerSet) (reflect.Value, error) {
	if f.serializer != "" && data != nil {
		if ser, ok := set.NamedSerializer(f.serializer); ok {
			v, err := ser.Deserialize(data, f.typ, set)
			if err != nil {
				return reflect.Value{}, err
			}
			return conform(v, f.typ, data)
		}
	}
	return set.deserializeValue(data, f.typ)
}

// virtualField is implemented by computed field holders such as Dependent.
type virtualField interface {
	valueType() reflect.Type
	getValue() reflect.Value
	setValue(v reflect.Value)
}

var virtualFieldType = reflect.TypeFor[virtualField]()

// conform adapts v to want, allowing assignment and same-kind conversion.
func conform(v reflect.Value, want reflect.Type, data any) (reflect.Value, error) {
	if !v.IsValid() {
		return reflect.Zero(want), nil
	}
	if v.Type() == want {
		return v, nil
	}
	if v.Type().AssignableTo(want) {
		out := reflect.New(want).Elem()
		out.Set(v)
		return out, nil
	}
	if v.Kind() == want.Kind() && v.Type().ConvertibleTo(want) {
		return v.Convert(want), nil
	}
	return reflect.Value{}, newConversionError(ErrInvalidValue, want, data,
		fmt.Errorf("got %s", v.Type()))
}

// asVeto turns a validator error into a VetoError naming the field.
func asVeto(field string, err error) error {
	var veto *VetoError
	if errors.As(err, &veto) {
		out := *veto
		if out.Field == "" {
			out.Field = field
		}
		return &out
	}
	return &VetoError{Field: field, Message: err.Error(), Reason: err}
}

func fieldByIndex(v reflect.Value, index []int) (reflect.Value, bool) {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Ptr {
			if v.IsNil() {
				return reflect.Value{}, false
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v, true
}

// fieldForWrite is fieldByIndex for writing: nil embedded pointers on the
// way are allocated.
func fieldForWrite(v reflect.Value, index []int) (reflect.Value, error) {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Ptr {
			if v.IsNil() {
				if !v.CanSet() {
					return reflect.Value{}, fmt.Errorf("embedded %s is nil", v.Type())
				}
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	if !v.CanSet() {
		return reflect.Value{}, fmt.Errorf("field is not settable")
	}
	return v, nil
}

func iface(v reflect.Value) any {
	if !v.IsValid() {
		return nil
	}
	return v.Interface()
}

func isNilValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
		return v.IsNil()
	}
	return false
}
