package sconfig

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// PropertyOption configures a Properties wrapper.
type PropertyOption func(*Properties)

// WithSeparator sets the separator used in the paths the wrapper accepts and
// returns. The default is ".".
func WithSeparator(sep string) PropertyOption {
	return func(p *Properties) {
		p.sep = sep
	}
}

// Properties exposes the editable fields of one object by path, for
// consoles and admin commands that work in plain strings.
type Properties struct {
	target any
	sep    string
}

// Wrap returns a Properties view of target, a non-nil pointer to a struct.
func Wrap(target any, opts ...PropertyOption) (*Properties, error) {
	if _, err := structTarget(reflect.ValueOf(target)); err != nil {
		return nil, err
	}
	p := &Properties{target: target, sep: "."}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Target returns the wrapped object.
func (p *Properties) Target() any { return p.target }

// Names lists the paths of every mutable leaf field.
func (p *Properties) Names() ([]string, error) {
	return PropertyNames(reflect.TypeOf(p.target), p.sep)
}

// Get returns the value at path.
func (p *Properties) Get(path string) (any, error) {
	return GetProperty(p.target, p.dotted(path))
}

// Set parses value and assigns it to the field at path.
func (p *Properties) Set(path, value string) error {
	return SetProperty(p.target, p.dotted(path), value)
}

// Add adds an element to the collection at path.
func (p *Properties) Add(path, value string) error {
	return AddProperty(p.target, p.dotted(path), value)
}

// Remove removes an element from the collection at path.
func (p *Properties) Remove(path, value string) error {
	return RemoveProperty(p.target, p.dotted(path), value)
}

// Clear empties the collection at path.
func (p *Properties) Clear(path string) error {
	return ClearProperty(p.target, p.dotted(path))
}

// Describe renders the value at path for display. Fields with a mask tag
// are masked; collections render as a bracketed list.
func (p *Properties) Describe(path string) (string, error) {
	fi, err := Locate(p.target, p.dotted(path))
	if err != nil {
		return "", err
	}
	return describe(fi.field, fi.field.get(fi.owner)), nil
}

func (p *Properties) dotted(path string) string {
	if p.sep == "." || p.sep == "" {
		return path
	}
	return strings.ReplaceAll(path, p.sep, ".")
}

// PropertyNames lists the paths of the mutable leaf fields of t, joined with
// sep.
func PropertyNames(t reflect.Type, sep string) ([]string, error) {
	fm, err := FieldMapOf(indirectType(t))
	if err != nil {
		return nil, err
	}
	var names []string
	collectNames(fm, "", sep, &names)
	return names, nil
}

func collectNames(fm *FieldMap, prefix, sep string, out *[]string) {
	for _, f := range fm.fields {
		if f.immutable {
			continue
		}
		name := prefix + f.name
		if f.children != nil {
			collectNames(f.children, name+sep, sep, out)
			continue
		}
		*out = append(*out, name)
	}
}

func describe(f *Field, v reflect.Value) string {
	masker, masked := maskerFor(f.mask)
	render := func(x any) string {
		s := FormatText(x)
		if masked {
			return masker.Mask(s)
		}
		return s
	}

	if v.IsValid() && isEnumType(v.Type()) {
		if isNilValue(v) {
			return "<nil>"
		}
		return render(v.Interface())
	}
	v = indirectValue(v)
	if !v.IsValid() {
		return "<nil>"
	}
	switch {
	case isSetType(v.Type()):
		items := make([]string, 0, v.Len())
		for _, k := range v.MapKeys() {
			items = append(items, render(k.Interface()))
		}
		sort.Strings(items)
		return "[" + strings.Join(items, ", ") + "]"
	case (v.Kind() == reflect.Slice || v.Kind() == reflect.Array) && !isByteSlice(v.Type()):
		items := make([]string, v.Len())
		for i := range items {
			items[i] = render(v.Index(i).Interface())
		}
		return "[" + strings.Join(items, ", ") + "]"
	case v.Kind() == reflect.Struct && f.children != nil:
		return fmt.Sprintf("<%s>", v.Type())
	}
	return render(v.Interface())
}
