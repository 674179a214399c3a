package sconfig

import (
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/zoobzio/sentinel"
)

// Struct tags read by the field model.
const (
	tagConfig      = "config"      // config:"name,immutable,transient" or config:"-"
	tagComment     = "comment"     // comment:"first line\nsecond line"
	tagDescription = "description" // description:"shown by property listings"
	tagSerialize   = "serialize"   // serialize:"argon2"
	tagValidate    = "validate"    // validate:"port"
	tagHandle      = "handle"      // handle:"csv"
	tagMask        = "mask"        // mask:"email"
)

var fieldTagKeys = []string{tagConfig, tagComment, tagDescription, tagSerialize, tagValidate, tagHandle, tagMask}

func init() {
	for _, key := range fieldTagKeys {
		sentinel.Tag(key)
	}
}

// fieldTags holds the parsed per-field declarations.
type fieldTags struct {
	name        string
	skip        bool
	immutable   bool
	transient   bool
	comments    []string
	description string
	serializer  string
	validator   string
	handler     string
	mask        string
}

// parseTags extracts the registered tag keys from a struct tag the way
// sentinel does: empty values are left out.
func parseTags(tag reflect.StructTag) map[string]string {
	tags := make(map[string]string)
	for _, key := range fieldTagKeys {
		if v := tag.Get(key); v != "" {
			tags[key] = v
		}
	}
	return tags
}

func parseFieldTags(tags map[string]string) fieldTags {
	var ft fieldTags

	if cfg, ok := tags[tagConfig]; ok {
		if cfg == "-" {
			ft.skip = true
			return ft
		}
		parts := strings.Split(cfg, ",")
		ft.name = strings.TrimSpace(parts[0])
		for _, opt := range parts[1:] {
			switch strings.TrimSpace(opt) {
			case "immutable":
				ft.immutable = true
			case "transient":
				ft.transient = true
			}
		}
	}

	if c, ok := tags[tagComment]; ok && c != "" {
		ft.comments = strings.Split(c, "\n")
	}
	ft.description = tags[tagDescription]
	ft.serializer = tags[tagSerialize]
	ft.validator = tags[tagValidate]
	ft.handler = tags[tagHandle]
	ft.mask = tags[tagMask]

	return ft
}

// defaultName derives the serialized name of a field from its Go name by
// lower-casing the leading upper-case run: Port -> port, HTTPPort -> httpPort,
// ID -> id.
func defaultName(goName string) string {
	runes := []rune(goName)
	n := 0
	for n < len(runes) && unicode.IsUpper(runes[n]) {
		n++
	}
	if n == 0 {
		return goName
	}
	if n > 1 && n < len(runes) {
		// The last capital of an acronym starts the next word.
		n--
	}
	for i := 0; i < n; i++ {
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}

// inspect has sentinel scan T and the struct types it references in the
// same module, so later field-model builds read their tags from sentinel's
// cache.
func inspect[T any]() {
	t := reflect.TypeFor[T]()
	if indirectType(t).Kind() != reflect.Struct {
		return
	}
	if _, done := inspected.LoadOrStore(t, struct{}{}); done {
		return
	}
	_, _ = sentinel.TryScan[T]()
}

var inspected sync.Map // reflect.Type -> struct{}

// scanType returns the field metadata of a struct type in declaration order.
// Exported fields come from sentinel's cache when it holds rt. Sentinel skips
// unexported fields, so unexported embedded structs, and every field of a
// type sentinel has not scanned, are read through reflection.
func scanType(rt reflect.Type) *sentinel.Metadata {
	cached, ok := cachedFields(rt)
	md := sentinel.Metadata{
		TypeName:    rt.Name(),
		PackageName: rt.PkgPath(),
		Fields:      make([]sentinel.FieldMetadata, 0, rt.NumField()),
	}

	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		switch {
		case sf.IsExported() && ok:
			md.Fields = append(md.Fields, cached[i])
		case sf.IsExported() || sf.Anonymous:
			md.Fields = append(md.Fields, reflectField(sf))
		}
	}
	return &md
}

// cachedFields returns sentinel's metadata for the exported fields of rt,
// keyed by field index. Sentinel keys its cache by bare type name, so an
// entry is used only when its package, field types and tags match rt.
func cachedFields(rt reflect.Type) (map[int]sentinel.FieldMetadata, bool) {
	if rt.Name() == "" {
		return nil, false
	}
	md, ok := sentinel.Lookup(rt.Name())
	if !ok || md.PackageName != rt.PkgPath() {
		return nil, false
	}

	byIndex := make(map[int]sentinel.FieldMetadata, len(md.Fields))
	for _, fm := range md.Fields {
		if len(fm.Index) != 1 || fm.Index[0] >= rt.NumField() {
			return nil, false
		}
		sf := rt.Field(fm.Index[0])
		if sf.Type != fm.ReflectType || !sameTags(sf.Tag, fm.Tags) {
			return nil, false
		}
		byIndex[fm.Index[0]] = fm
	}
	for i := 0; i < rt.NumField(); i++ {
		if _, seen := byIndex[i]; rt.Field(i).IsExported() && !seen {
			return nil, false
		}
	}
	return byIndex, true
}

func sameTags(tag reflect.StructTag, tags map[string]string) bool {
	for _, key := range fieldTagKeys {
		if tag.Get(key) != tags[key] {
			return false
		}
	}
	return true
}

func reflectField(sf reflect.StructField) sentinel.FieldMetadata {
	fm := sentinel.FieldMetadata{
		Name:        sf.Name,
		Type:        sf.Type.String(),
		ReflectType: sf.Type,
		Index:       sf.Index,
		Tags:        parseTags(sf.Tag),
	}

	switch sf.Type.Kind() {
	case reflect.Struct:
		fm.Kind = sentinel.KindStruct
	case reflect.Ptr:
		fm.Kind = sentinel.KindPointer
	case reflect.Slice, reflect.Array:
		fm.Kind = sentinel.KindSlice
	case reflect.Map:
		fm.Kind = sentinel.KindMap
	case reflect.Interface:
		fm.Kind = sentinel.KindInterface
	default:
		fm.Kind = sentinel.KindScalar
	}
	return fm
}
