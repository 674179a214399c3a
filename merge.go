package sconfig

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"
)

// LoadInto deserializes data and merges it into dst using the default set.
func LoadInto(dst any, data any) error {
	return DefaultSet().LoadInto(dst, data)
}

// LoadInto deserializes data into a temporary object of dst's type and copies
// it onto dst field by field. dst keeps its identity, so references held
// elsewhere observe the new values. Nested composites that exist on both
// sides are merged the same way rather than replaced.
func (s *SerializerSet) LoadInto(dst any, data any) (err error) {
	start := time.Now()
	rv := reflect.ValueOf(dst)
	defer func() {
		emitDeserializeComplete(context.Background(), typeName(rv), time.Since(start), err)
	}()

	target, err := structTarget(rv)
	if err != nil {
		return err
	}

	v, err := s.deserializeValue(data, target.Type())
	if err != nil {
		return err
	}
	tmp := reflect.New(target.Type()).Elem()
	tmp.Set(v)

	return s.copyFields(tmp, target)
}

// CopyFields copies every persistable, mutable field of src onto dst, which
// must be a pointer to a struct of the same type. Composite fields present on
// both sides are copied recursively. Validator vetoes do not stop the copy;
// they are joined into the returned error.
func CopyFields(src, dst any) error {
	target, err := structTarget(reflect.ValueOf(dst))
	if err != nil {
		return err
	}
	from := indirectValue(reflect.ValueOf(src))
	if !from.IsValid() || from.Type() != target.Type() {
		return newConversionError(ErrInvalidValue, target.Type(), src,
			fmt.Errorf("source must be a %s", target.Type()))
	}
	return DefaultSet().copyFields(from, target)
}

// copyFields copies src onto dst. Composite fields the set decodes field by
// field are merged recursively; any other value is assigned whole.
func (s *SerializerSet) copyFields(src, dst reflect.Value) error {
	fm, err := FieldMapOf(dst.Type())
	if err != nil {
		return err
	}

	var errs []error
	for _, f := range fm.fields {
		if !f.persistable || f.immutable {
			continue
		}

		if f.children != nil && s.fillsInPlace(f.typ) {
			from := indirectValue(f.get(src))
			to := indirectValue(f.get(dst))
			if from.IsValid() && to.IsValid() && to.CanAddr() {
				if err := s.copyFields(from, to); err != nil {
					errs = append(errs, err)
				}
				continue
			}
		}

		if err := f.set(dst, f.get(src), false); err != nil {
			var veto *VetoError
			if errors.As(err, &veto) {
				emitChangeVetoed(context.Background(), dst.Type().String(), f.name, err)
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// structTarget returns the struct a non-nil pointer refers to.
func structTarget(rv reflect.Value) (reflect.Value, error) {
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return reflect.Value{}, newConversionError(ErrInvalidValue, typeOrNil(rv), iface(rv),
			fmt.Errorf("destination must be a non-nil pointer"))
	}
	target := rv.Elem()
	if target.Kind() != reflect.Struct {
		return reflect.Value{}, newModelError(ErrNotStruct, target.Type(), "")
	}
	return target, nil
}

func typeOrNil(v reflect.Value) reflect.Type {
	if !v.IsValid() {
		return nil
	}
	return v.Type()
}
