package sconfig

import (
	"encoding"
	"encoding/base64"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

// coerce converts a plain scalar to want, tolerating the representation
// differences between formats: YAML ints for uint fields, JSON float64 for
// int fields, quoted numbers, and so on. Numbers that do not fit want are
// rejected rather than wrapped.
func coerce(data any, want reflect.Type) (reflect.Value, error) {
	out := reflect.New(want).Elem()
	switch want.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if err := wholeNumber(data); err != nil {
			return reflect.Value{}, newConversionError(ErrInvalidValue, want, data, err)
		}
		if f, ok := asFloat(data); ok && f >= math.MaxInt64 {
			return reflect.Value{}, newConversionError(ErrInvalidValue, want, data, errOverflow(data, want))
		}
		if u, ok := asUint(data); ok && u > math.MaxInt64 {
			return reflect.Value{}, newConversionError(ErrInvalidValue, want, data, errOverflow(data, want))
		}
		var n int64
		if err := mapstructure.WeakDecode(data, &n); err != nil {
			return reflect.Value{}, newConversionError(ErrInvalidValue, want, data, err)
		}
		if out.OverflowInt(n) {
			return reflect.Value{}, newConversionError(ErrInvalidValue, want, data, errOverflow(data, want))
		}
		out.SetInt(n)
		return out, nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if err := wholeNumber(data); err != nil {
			return reflect.Value{}, newConversionError(ErrInvalidValue, want, data, err)
		}
		if isNegative(data) {
			return reflect.Value{}, newConversionError(ErrInvalidValue, want, data, fmt.Errorf("%v is negative", data))
		}
		var n uint64
		if err := mapstructure.WeakDecode(data, &n); err != nil {
			return reflect.Value{}, newConversionError(ErrInvalidValue, want, data, err)
		}
		if out.OverflowUint(n) {
			return reflect.Value{}, newConversionError(ErrInvalidValue, want, data, errOverflow(data, want))
		}
		out.SetUint(n)
		return out, nil

	case reflect.Float32, reflect.Float64:
		var f float64
		if err := mapstructure.WeakDecode(data, &f); err != nil {
			return reflect.Value{}, newConversionError(ErrInvalidValue, want, data, err)
		}
		if out.OverflowFloat(f) {
			return reflect.Value{}, newConversionError(ErrInvalidValue, want, data, errOverflow(data, want))
		}
		out.SetFloat(f)
		return out, nil

	case reflect.String:
		if _, ok := data.(bool); ok {
			return reflect.Value{}, newConversionError(ErrInvalidValue, want, data, fmt.Errorf("expected text, got a boolean"))
		}
	}

	ptr := reflect.New(want)
	if err := mapstructure.WeakDecode(data, ptr.Interface()); err != nil {
		return reflect.Value{}, newConversionError(ErrInvalidValue, want, data, err)
	}
	return ptr.Elem(), nil
}

func errOverflow(data any, want reflect.Type) error {
	return fmt.Errorf("%v overflows %s", data, want)
}

// wholeNumber rejects floats with a fractional part or outside the int64
// range.
func wholeNumber(data any) error {
	f, ok := asFloat(data)
	if !ok {
		return nil
	}
	if f != math.Trunc(f) {
		return fmt.Errorf("%v is not a whole number", f)
	}
	if f < math.MinInt64 || f >= math.MaxUint64 {
		return fmt.Errorf("%v is out of range", f)
	}
	return nil
}

func asFloat(data any) (float64, bool) {
	switch f := data.(type) {
	case float64:
		return f, true
	case float32:
		return float64(f), true
	}
	return 0, false
}

func asUint(data any) (uint64, bool) {
	v := reflect.ValueOf(data)
	switch v.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint(), true
	}
	return 0, false
}

func isNegative(data any) bool {
	v := reflect.ValueOf(data)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() < 0
	case reflect.Float32, reflect.Float64:
		return v.Float() < 0
	case reflect.String:
		return strings.HasPrefix(strings.TrimSpace(v.String()), "-")
	}
	return false
}

// numberSerializer writes integers as int and floats as float64.
type numberSerializer struct{}

func (numberSerializer) Serialize(v reflect.Value, _ *SerializerSet) (any, error) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if n := v.Uint(); n <= math.MaxInt64 {
			return int(n), nil
		}
		return v.Uint(), nil
	case reflect.Float32, reflect.Float64:
		return v.Float(), nil
	}
	return nil, newConversionError(ErrInvalidValue, v.Type(), v.Interface(), nil)
}

func (numberSerializer) Deserialize(data any, want reflect.Type, _ *SerializerSet) (reflect.Value, error) {
	return coerce(data, want)
}

type boolSerializer struct{}

func (boolSerializer) Serialize(v reflect.Value, _ *SerializerSet) (any, error) {
	return v.Bool(), nil
}

func (boolSerializer) Deserialize(data any, want reflect.Type, _ *SerializerSet) (reflect.Value, error) {
	return coerce(data, want)
}

type stringSerializer struct{}

func (stringSerializer) Serialize(v reflect.Value, _ *SerializerSet) (any, error) {
	return v.String(), nil
}

func (stringSerializer) Deserialize(data any, want reflect.Type, _ *SerializerSet) (reflect.Value, error) {
	return coerce(data, want)
}

// durationSerializer writes durations as "1m30s" and reads either that form
// or a count of nanoseconds.
type durationSerializer struct{}

func (durationSerializer) Serialize(v reflect.Value, _ *SerializerSet) (any, error) {
	return time.Duration(v.Int()).String(), nil
}

func (durationSerializer) Deserialize(data any, want reflect.Type, _ *SerializerSet) (reflect.Value, error) {
	var d time.Duration
	switch x := data.(type) {
	case string:
		parsed, err := time.ParseDuration(strings.TrimSpace(x))
		if err != nil {
			return reflect.Value{}, newConversionError(ErrInvalidValue, want, data, err)
		}
		d = parsed
	default:
		n, err := coerce(data, reflect.TypeFor[int64]())
		if err != nil {
			return reflect.Value{}, err
		}
		d = time.Duration(n.Int())
	}
	return reflect.ValueOf(d).Convert(want), nil
}

// textSerializer round-trips a value through its text form.
type textSerializer struct{}

func (textSerializer) Serialize(v reflect.Value, _ *SerializerSet) (any, error) {
	if m, ok := v.Interface().(encoding.TextMarshaler); ok {
		b, err := m.MarshalText()
		if err != nil {
			return nil, newConversionError(ErrInvalidValue, v.Type(), v.Interface(), err)
		}
		return string(b), nil
	}
	if v.CanAddr() {
		if m, ok := v.Addr().Interface().(encoding.TextMarshaler); ok {
			b, err := m.MarshalText()
			if err != nil {
				return nil, newConversionError(ErrInvalidValue, v.Type(), v.Interface(), err)
			}
			return string(b), nil
		}
	}
	return FormatText(v.Interface()), nil
}

func (textSerializer) Deserialize(data any, want reflect.Type, _ *SerializerSet) (reflect.Value, error) {
	if reflect.TypeOf(data) == want {
		return reflect.ValueOf(data), nil
	}
	switch x := data.(type) {
	case string:
		return ParseText(x, want)
	case encoding.TextMarshaler:
		b, err := x.MarshalText()
		if err != nil {
			return reflect.Value{}, newConversionError(ErrInvalidValue, want, data, err)
		}
		return ParseText(string(b), want)
	}
	return ParseText(fmt.Sprint(data), want)
}

// bytesSerializer writes byte slices as standard base64.
type bytesSerializer struct{}

func (bytesSerializer) Serialize(v reflect.Value, _ *SerializerSet) (any, error) {
	return base64.StdEncoding.EncodeToString(v.Bytes()), nil
}

func (bytesSerializer) Deserialize(data any, want reflect.Type, _ *SerializerSet) (reflect.Value, error) {
	switch x := data.(type) {
	case string:
		b, err := base64.StdEncoding.DecodeString(x)
		if err != nil {
			return reflect.Value{}, newConversionError(ErrInvalidValue, want, data, err)
		}
		return reflect.ValueOf(b).Convert(want), nil
	case []byte:
		b := append([]byte(nil), x...)
		return reflect.ValueOf(b).Convert(want), nil
	case []any:
		b := make([]byte, len(x))
		for i, e := range x {
			n, err := coerce(e, reflect.TypeFor[uint8]())
			if err != nil {
				return reflect.Value{}, err
			}
			b[i] = byte(n.Uint())
		}
		return reflect.ValueOf(b).Convert(want), nil
	}
	return reflect.Value{}, newConversionError(ErrInvalidValue, want, data, nil)
}

// enumSerializer writes declared enum values by name.
type enumSerializer struct{}

func (enumSerializer) Serialize(v reflect.Value, _ *SerializerSet) (any, error) {
	if table, ok := enumOf(v.Type()); ok {
		if name, ok := table.name(v); ok {
			return name, nil
		}
	}
	return FormatText(v.Interface()), nil
}

func (enumSerializer) Deserialize(data any, want reflect.Type, _ *SerializerSet) (reflect.Value, error) {
	table, ok := enumOf(want)
	if !ok {
		return reflect.Value{}, newConversionError(ErrNoParsePath, want, data, nil)
	}
	if v, ok := table.parse(fmt.Sprint(data)); ok {
		return v, nil
	}
	if _, isString := data.(string); !isString && want.Kind() != reflect.Ptr && want.Kind() != reflect.Struct {
		// Numeric data for an integer enum.
		if v, err := coerce(data, want); err == nil {
			if _, known := table.name(v); known {
				return v, nil
			}
		}
	}
	return reflect.Value{}, newConversionError(ErrInvalidValue, want, data,
		fmt.Errorf("expected one of %s", strings.Join(table.names, ", ")))
}

// setSerializer writes map[K]struct{} as a sorted list of keys.
type setSerializer struct{}

func (setSerializer) Serialize(v reflect.Value, set *SerializerSet) (any, error) {
	keys := v.MapKeys()
	sort.Slice(keys, func(i, j int) bool {
		return FormatText(keys[i].Interface()) < FormatText(keys[j].Interface())
	})
	out := make([]any, 0, len(keys))
	for _, k := range keys {
		sv, err := set.serializeValue(k)
		if err != nil {
			return nil, err
		}
		out = append(out, sv)
	}
	return out, nil
}

func (setSerializer) Deserialize(data any, want reflect.Type, set *SerializerSet) (reflect.Value, error) {
	rv := reflect.ValueOf(data)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return reflect.Value{}, newConversionError(ErrInvalidValue, want, data, fmt.Errorf("expected a list"))
	}
	out := reflect.MakeMapWithSize(want, rv.Len())
	member := reflect.Zero(want.Elem())
	for i := 0; i < rv.Len(); i++ {
		k, err := set.deserializeValue(rv.Index(i).Interface(), want.Key())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("[%d]: %w", i, err)
		}
		out.SetMapIndex(k, member)
	}
	return out, nil
}

// collectionSerializer handles slices and arrays elementwise.
type collectionSerializer struct{}

func (collectionSerializer) Serialize(v reflect.Value, set *SerializerSet) (any, error) {
	out := make([]any, v.Len())
	for i := 0; i < v.Len(); i++ {
		sv, err := set.serializeValue(v.Index(i))
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		out[i] = sv
	}
	return out, nil
}

func (collectionSerializer) Deserialize(data any, want reflect.Type, set *SerializerSet) (reflect.Value, error) {
	rv := reflect.ValueOf(data)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return reflect.Value{}, newConversionError(ErrInvalidValue, want, data, fmt.Errorf("expected a list"))
	}

	var out reflect.Value
	n := rv.Len()
	if want.Kind() == reflect.Array {
		out = reflect.New(want).Elem()
		n = min(n, want.Len())
	} else {
		out = reflect.MakeSlice(want, n, n)
	}

	for i := 0; i < n; i++ {
		ev, err := set.deserializeValue(rv.Index(i).Interface(), want.Elem())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("[%d]: %w", i, err)
		}
		out.Index(i).Set(ev)
	}
	return out, nil
}

// mapSerializer handles maps elementwise. Keys are written as text and nil
// values are dropped.
type mapSerializer struct{}

func (mapSerializer) Serialize(v reflect.Value, set *SerializerSet) (any, error) {
	out := make(map[string]any, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		sv, err := set.serializeValue(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("[%s]: %w", FormatText(iter.Key().Interface()), err)
		}
		if sv == nil {
			continue
		}
		out[FormatText(iter.Key().Interface())] = sv
	}
	return out, nil
}

func (mapSerializer) Deserialize(data any, want reflect.Type, set *SerializerSet) (reflect.Value, error) {
	rv := reflect.ValueOf(data)
	if rv.Kind() != reflect.Map {
		return reflect.Value{}, newConversionError(ErrInvalidValue, want, data, fmt.Errorf("expected a map"))
	}

	out := reflect.MakeMapWithSize(want, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		raw := iter.Value().Interface()
		if raw == nil {
			continue
		}
		keyText := FormatText(iter.Key().Interface())
		k, err := ParseText(keyText, want.Key())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("[%s]: %w", keyText, err)
		}
		ev, err := set.deserializeValue(raw, want.Elem())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("[%s]: %w", keyText, err)
		}
		out.SetMapIndex(k, ev)
	}
	return out, nil
}

// pointerSerializer delegates to the element type.
type pointerSerializer struct{}

func (pointerSerializer) Serialize(v reflect.Value, set *SerializerSet) (any, error) {
	if v.IsNil() {
		return nil, nil
	}
	return set.serializeValue(v.Elem())
}

func (pointerSerializer) Deserialize(data any, want reflect.Type, set *SerializerSet) (reflect.Value, error) {
	elem, err := set.deserializeValue(data, want.Elem())
	if err != nil {
		return reflect.Value{}, err
	}
	if elem.CanAddr() && elem.Type() == want.Elem() {
		return elem.Addr(), nil
	}
	ptr := reflect.New(want.Elem())
	ptr.Elem().Set(elem)
	return ptr, nil
}

// interfaceSerializer writes the dynamic value and reads through the
// untyped path, so tagged maps come back as their registered types.
type interfaceSerializer struct{}

func (interfaceSerializer) Serialize(v reflect.Value, set *SerializerSet) (any, error) {
	if v.IsNil() {
		return nil, nil
	}
	return set.serializeValue(v.Elem())
}

func (interfaceSerializer) Deserialize(data any, want reflect.Type, set *SerializerSet) (reflect.Value, error) {
	res, err := set.deserializeAny(data, true)
	if err != nil {
		return reflect.Value{}, err
	}
	if res == nil {
		return reflect.Zero(want), nil
	}
	rv := reflect.ValueOf(res)
	if rv.Type().AssignableTo(want) {
		out := reflect.New(want).Elem()
		out.Set(rv)
		return out, nil
	}
	if rv.Kind() == reflect.Ptr && rv.Elem().Type().AssignableTo(want) {
		out := reflect.New(want).Elem()
		out.Set(rv.Elem())
		return out, nil
	}
	return reflect.Value{}, newConversionError(ErrInvalidValue, want, data,
		fmt.Errorf("%s does not implement %s", rv.Type(), want))
}
