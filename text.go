package sconfig

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var (
	textMarshalerType   = reflect.TypeFor[encoding.TextMarshaler]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
	stringerType        = reflect.TypeFor[fmt.Stringer]()
	durationType        = reflect.TypeFor[time.Duration]()
	timeType            = reflect.TypeFor[time.Time]()
	bytesType           = reflect.TypeFor[[]byte]()
)

// ParseText converts text to a value of type t. It is the textual
// constructor used by property handlers and by serializers for leaf types.
// Supported: declared enums, encoding.TextUnmarshaler, time.Duration,
// strings, booleans, integers, floats, pointers to any of these, and
// interfaces (the text itself).
func ParseText(s string, t reflect.Type) (reflect.Value, error) {
	if table, ok := enumOf(t); ok {
		if v, ok := table.parse(s); ok {
			return v, nil
		}
		return reflect.Value{}, newConversionError(ErrInvalidValue, t, s,
			fmt.Errorf("expected one of %s", strings.Join(table.names, ", ")))
	}

	if reflect.PointerTo(t).Implements(textUnmarshalerType) {
		ptr := reflect.New(t)
		if err := ptr.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err != nil {
			return reflect.Value{}, newConversionError(ErrInvalidValue, t, s, err)
		}
		return ptr.Elem(), nil
	}

	if t == durationType {
		d, err := time.ParseDuration(strings.TrimSpace(s))
		if err != nil {
			return reflect.Value{}, newConversionError(ErrInvalidValue, t, s, err)
		}
		return reflect.ValueOf(d), nil
	}

	v := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.Ptr:
		elem, err := ParseText(s, t.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		ptr := reflect.New(t.Elem())
		ptr.Elem().Set(elem)
		return ptr, nil
	case reflect.String:
		v.SetString(s)
	case reflect.Bool:
		b, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return reflect.Value{}, newConversionError(ErrInvalidValue, t, s, err)
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(strings.TrimSpace(s), 0, t.Bits())
		if err != nil {
			return reflect.Value{}, newConversionError(ErrInvalidValue, t, s, err)
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := strconv.ParseUint(strings.TrimSpace(s), 0, t.Bits())
		if err != nil {
			return reflect.Value{}, newConversionError(ErrInvalidValue, t, s, err)
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(strings.TrimSpace(s), t.Bits())
		if err != nil {
			return reflect.Value{}, newConversionError(ErrInvalidValue, t, s, err)
		}
		v.SetFloat(f)
	case reflect.Interface:
		sv := reflect.ValueOf(s)
		if !sv.Type().AssignableTo(t) {
			return reflect.Value{}, newConversionError(ErrNoParsePath, t, s, nil)
		}
		v.Set(sv)
	default:
		return reflect.Value{}, newConversionError(ErrNoParsePath, t, s, nil)
	}
	return v, nil
}

// FormatText renders a value the way ParseText reads it back.
func FormatText(v any) string {
	if v == nil {
		return ""
	}
	rv := reflect.ValueOf(v)
	if table, ok := enumOf(rv.Type()); ok {
		if name, ok := table.name(rv); ok {
			return name
		}
	}
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return ""
		}
		if !rv.Type().Implements(textMarshalerType) && !rv.Type().Implements(stringerType) {
			return FormatText(rv.Elem().Interface())
		}
	}
	switch x := v.(type) {
	case string:
		return x
	case encoding.TextMarshaler:
		b, err := x.MarshalText()
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}
