package sconfig

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"
)

// Property operations, as reported in signals.
const (
	OpSet    = "set"
	OpAdd    = "add"
	OpRemove = "remove"
	OpClear  = "clear"
)

// FieldInstance is a field located inside a live object.
type FieldInstance struct {
	owner reflect.Value // addressable struct holding the field
	field *Field
	path  []string
}

// Field returns the located field's model.
func (fi *FieldInstance) Field() *Field { return fi.field }

// Path returns the dotted path used to locate the field.
func (fi *FieldInstance) Path() string { return strings.Join(fi.path, ".") }

// Value returns the current value.
func (fi *FieldInstance) Value() any { return iface(fi.field.get(fi.owner)) }

// SetValue assigns v after the immutability and validator checks.
func (fi *FieldInstance) SetValue(v any) error {
	rv, err := conform(reflect.ValueOf(v), fi.field.typ, v)
	if err != nil {
		return newFieldError(fi.field.name, fi.field.typ, v, err)
	}
	return fi.field.set(fi.owner, rv, false)
}

// Parse converts text to a value of the field's type.
func (fi *FieldInstance) Parse(text string) (any, error) {
	v, err := ParseText(text, fi.field.typ)
	if err != nil {
		return nil, newFieldError(fi.field.name, fi.field.typ, text, err)
	}
	return v.Interface(), nil
}

func (fi *FieldInstance) parseElem(text string) (reflect.Value, error) {
	v, err := ParseText(text, fi.field.elem)
	if err != nil {
		return reflect.Value{}, newFieldError(fi.field.name, fi.field.elem, text, err)
	}
	return v, nil
}

// mutate applies change to a copy of the collection, passes the copy through
// the validator, and stores the accepted result. Sets are updated in place so
// references to the live map observe the change.
func (fi *FieldInstance) mutate(change func(proposed reflect.Value) reflect.Value) error {
	f := fi.field
	if f.immutable {
		return newVetoError(f.name, ErrImmutable, "%s may not be modified", fi.Path())
	}

	cur := f.get(fi.owner)
	proposed := change(cloneCollection(cur, f.typ))
	accepted, err := f.validate(proposed, cur)
	if err != nil {
		return err
	}

	if cur.IsValid() && cur.Kind() == reflect.Map && !cur.IsNil() {
		cur.Clear()
		iter := accepted.MapRange()
		for iter.Next() {
			cur.SetMapIndex(iter.Key(), iter.Value())
		}
		return nil
	}
	return f.write(fi.owner, accepted)
}

func cloneCollection(cur reflect.Value, t reflect.Type) reflect.Value {
	if t.Kind() == reflect.Map {
		if !cur.IsValid() || cur.IsNil() {
			return reflect.MakeMap(t)
		}
		out := reflect.MakeMapWithSize(t, cur.Len())
		iter := cur.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), iter.Value())
		}
		return out
	}
	if !cur.IsValid() || cur.IsNil() {
		return reflect.MakeSlice(t, 0, 0)
	}
	out := reflect.MakeSlice(t, cur.Len(), cur.Len())
	reflect.Copy(out, cur)
	return out
}

// SplitPath splits a property path on dots and whitespace.
func SplitPath(path string) []string {
	return strings.FieldsFunc(path, func(r rune) bool {
		return r == '.' || unicode.IsSpace(r)
	})
}

var (
	propertyAliases   = make(map[reflect.Type]map[string][]string)
	propertyAliasesMu sync.RWMutex
)

// RegisterPropertyAlias lets a one-segment name stand for a longer path on
// objects of type t.
//
//	sconfig.RegisterPropertyAlias(reflect.TypeFor[Settings](), "port", "network.listener.port")
func RegisterPropertyAlias(t reflect.Type, alias, path string) {
	t = indirectType(t)
	propertyAliasesMu.Lock()
	defer propertyAliasesMu.Unlock()
	table, ok := propertyAliases[t]
	if !ok {
		table = make(map[string][]string)
		propertyAliases[t] = table
	}
	table[strings.ToLower(alias)] = SplitPath(path)
}

func propertyAlias(t reflect.Type, name string) ([]string, bool) {
	propertyAliasesMu.RLock()
	defer propertyAliasesMu.RUnlock()
	path, ok := propertyAliases[t][strings.ToLower(name)]
	return path, ok
}

// Locate finds the field named by path segments inside root, a non-nil
// pointer to a struct. Segment names ignore case. A single segment is first
// looked up in the property alias table of root's type.
func Locate(root any, segments ...string) (*FieldInstance, error) {
	rv := reflect.ValueOf(root)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return nil, newConversionError(ErrInvalidValue, reflect.TypeOf(root), root,
			fmt.Errorf("property root must be a non-nil pointer to a struct"))
	}
	owner := rv.Elem()

	path := make([]string, 0, len(segments))
	for _, s := range segments {
		path = append(path, SplitPath(s)...)
	}
	if len(path) == 1 {
		if aliased, ok := propertyAlias(owner.Type(), path[0]); ok {
			path = aliased
		}
	}
	if len(path) == 0 {
		return nil, newPathError(path, -1)
	}

	for i, seg := range path {
		fm, err := FieldMapOf(owner.Type())
		if err != nil {
			return nil, err
		}
		f, ok := fm.Field(seg)
		if !ok {
			return nil, newPathError(path, i)
		}
		if i == len(path)-1 {
			return &FieldInstance{owner: owner, field: f, path: path}, nil
		}
		if !f.HasChildren() {
			return nil, newPathError(path, i+1)
		}
		next := indirectValue(f.get(owner))
		if !next.IsValid() || !next.CanAddr() {
			return nil, newPathError(path, i+1)
		}
		owner = next
	}
	return nil, newPathError(path, -1)
}

// GetProperty returns the value at path inside root.
func GetProperty(root any, path string) (any, error) {
	fi, err := Locate(root, path)
	if err != nil {
		return nil, err
	}
	return fi.Value(), nil
}

// SetProperty parses value and assigns it to the field at path.
func SetProperty(root any, path, value string) error {
	return applyProperty(root, path, OpSet, func(h PropertyHandler, fi *FieldInstance) error {
		return h.Set(fi, value)
	})
}

// AddProperty parses value as an element and adds it to the collection at path.
// A slice field is replaced by a new slice holding the result, so other
// references to the old backing array do not see the element. Sets and maps
// are changed in place.
func AddProperty(root any, path, value string) error {
	return applyProperty(root, path, OpAdd, func(h PropertyHandler, fi *FieldInstance) error {
		return h.Add(fi, value)
	})
}

// RemoveProperty parses value as an element and removes it from the
// collection at path.
func RemoveProperty(root any, path, value string) error {
	return applyProperty(root, path, OpRemove, func(h PropertyHandler, fi *FieldInstance) error {
		return h.Remove(fi, value)
	})
}

// ClearProperty empties the collection at path.
func ClearProperty(root any, path string) error {
	return applyProperty(root, path, OpClear, func(h PropertyHandler, fi *FieldInstance) error {
		return h.Clear(fi)
	})
}

func applyProperty(root any, path, op string, apply func(PropertyHandler, *FieldInstance) error) (err error) {
	defer func() {
		emitPropertyResult(context.Background(), path, op, err)
	}()
	fi, err := Locate(root, path)
	if err != nil {
		return err
	}
	if op == OpSet && fi.field.immutable {
		return newVetoError(fi.field.name, ErrImmutable, "%s may not be modified", fi.Path())
	}
	return apply(fi.field.PropertyHandler(), fi)
}
