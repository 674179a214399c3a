package sconfig

import (
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Layout describes how a serialized tree should be laid out on disk: key
// order and comments per map, addressed by path from the root. Paths are
// built with JoinPath; list items use their index as the segment.
type Layout struct {
	Header   []string
	comments map[string][]string
	order    map[string][]string
}

// RootPath addresses the top of a tree.
const RootPath = ""

const pathSep = "\x1f"

// JoinPath appends a key or list index to a layout path.
func JoinPath(parent, key string) string {
	if parent == RootPath {
		return key
	}
	return parent + pathSep + key
}

// Comments returns the comment lines for the entry at path.
func (l *Layout) Comments(path string) []string {
	if l == nil {
		return nil
	}
	return l.comments[path]
}

// Order returns the declared key order of the map at path.
func (l *Layout) Order(path string) []string {
	if l == nil {
		return nil
	}
	return l.order[path]
}

// Keys returns the keys of m in output order: the type tag first, then the
// declared field order, then any remaining keys sorted.
func (l *Layout) Keys(path string, m map[string]any) []string {
	keys := make([]string, 0, len(m))
	seen := make(map[string]bool, len(m))
	add := func(k string) {
		if _, ok := m[k]; ok && !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}

	add(TypeKey)
	for _, k := range l.Order(path) {
		add(k)
	}

	rest := make([]string, 0, len(m)-len(keys))
	for k := range m {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

// BuildLayout derives the layout of v's serialized form from the field
// models of the values it holds. When withComments is false only key order
// is recorded.
func BuildLayout(v any, withComments bool) *Layout {
	l := &Layout{
		comments: make(map[string][]string),
		order:    make(map[string][]string),
	}
	rv := indirectValue(reflect.ValueOf(v))
	if withComments && rv.IsValid() && rv.Kind() == reflect.Struct {
		decl := declOf(rv.Type())
		l.Header = append(l.Header, decl.comments...)
		if decl.description != "" {
			l.Header = append(l.Header, decl.description)
		}
	}
	l.walk(rv, RootPath, withComments)
	return l
}

func (l *Layout) walk(v reflect.Value, path string, withComments bool) {
	if v.IsValid() && isEnumType(v.Type()) {
		return
	}
	v = indirectValue(v)
	for v.IsValid() && v.Kind() == reflect.Interface {
		v = indirectValue(v.Elem())
	}
	if !v.IsValid() {
		return
	}

	switch v.Kind() {
	case reflect.Struct:
		if isLeafType(v.Type()) {
			return
		}
		fm, err := FieldMapOf(v.Type())
		if err != nil {
			return
		}
		order := make([]string, 0, len(fm.fields))
		for _, f := range fm.fields {
			if !f.persistable {
				continue
			}
			order = append(order, f.name)
			child := JoinPath(path, f.name)
			if withComments {
				if lines := fieldComments(f); len(lines) > 0 {
					l.comments[child] = lines
				}
			}
			if f.serializer == "" {
				l.walk(f.get(v), child, withComments)
			}
		}
		l.order[path] = order

	case reflect.Slice, reflect.Array:
		if isByteSlice(v.Type()) {
			return
		}
		for i := 0; i < v.Len(); i++ {
			l.walk(v.Index(i), JoinPath(path, strconv.Itoa(i)), withComments)
		}

	case reflect.Map:
		if isSetType(v.Type()) {
			return
		}
		iter := v.MapRange()
		for iter.Next() {
			l.walk(iter.Value(), JoinPath(path, FormatText(iter.Key().Interface())), withComments)
		}
	}
}

// fieldComments returns the comment block written above a field: its
// comment lines, then its description.
func fieldComments(f *Field) []string {
	lines := append([]string(nil), f.comments...)
	if f.description != "" {
		lines = append(lines, strings.Split(f.description, "\n")...)
	}
	return lines
}
