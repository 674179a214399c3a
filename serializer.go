package sconfig

import (
	"context"
	"reflect"
	"sync"
)

// Serializer converts values of a type to and from plain data: maps with
// string keys, slices, and scalars.
type Serializer interface {
	// Serialize converts v to plain data. v is never the zero reflect.Value.
	Serialize(v reflect.Value, set *SerializerSet) (any, error)

	// Deserialize converts non-nil plain data to a value assignable to want.
	Deserialize(data any, want reflect.Type, set *SerializerSet) (reflect.Value, error)
}

// Serializers adapts a pair of typed functions to a Serializer for T.
//
//	sconfig.Serializers(
//	    func(l Level) (any, error) { return l.Code(), nil },
//	    func(data any) (Level, error) { return LevelFromCode(data) },
//	)
func Serializers[T any](ser func(T) (any, error), de func(any) (T, error)) Serializer {
	return &funcSerializer[T]{ser: ser, de: de}
}

type funcSerializer[T any] struct {
	ser func(T) (any, error)
	de  func(any) (T, error)
}

func (s *funcSerializer[T]) Serialize(v reflect.Value, _ *SerializerSet) (any, error) {
	x, ok := v.Interface().(T)
	if !ok {
		return nil, newConversionError(ErrInvalidValue, reflect.TypeFor[T](), v.Interface(), nil)
	}
	return s.ser(x)
}

func (s *funcSerializer[T]) Deserialize(data any, want reflect.Type, _ *SerializerSet) (reflect.Value, error) {
	x, err := s.de(data)
	if err != nil {
		return reflect.Value{}, newConversionError(ErrInvalidValue, want, data, err)
	}
	return reflect.ValueOf(&x).Elem(), nil
}

// replacement routes every type matching a predicate to one serializer.
type replacement struct {
	match      func(reflect.Type) bool
	serializer Serializer
}

// SerializerSet is an immutable collection of serializers. Build one with
// NewSetBuilder or derive one from an existing set with Builder.
type SerializerSet struct {
	serializers  map[reflect.Type]Serializer
	overrides    map[reflect.Type]Serializer
	named        map[string]Serializer
	replacements []replacement
	fallback     Serializer

	resolved sync.Map // reflect.Type -> Serializer
}

// SetBuilder accumulates serializers for a new SerializerSet.
type SetBuilder struct {
	serializers  map[reflect.Type]Serializer
	overrides    map[reflect.Type]Serializer
	named        map[string]Serializer
	replacements []replacement
	fallback     Serializer
}

// NewSetBuilder returns a builder seeded with the default set.
func NewSetBuilder() *SetBuilder {
	return DefaultSet().Builder()
}

// Builder returns a builder seeded with the contents of s.
func (s *SerializerSet) Builder() *SetBuilder {
	b := &SetBuilder{
		serializers:  make(map[reflect.Type]Serializer, len(s.serializers)),
		overrides:    make(map[reflect.Type]Serializer, len(s.overrides)),
		named:        make(map[string]Serializer, len(s.named)),
		replacements: append([]replacement(nil), s.replacements...),
		fallback:     s.fallback,
	}
	for t, ser := range s.serializers {
		b.serializers[t] = ser
	}
	for t, ser := range s.overrides {
		b.overrides[t] = ser
	}
	for name, ser := range s.named {
		b.named[name] = ser
	}
	return b
}

// Add registers the serializer for exactly t.
func (b *SetBuilder) Add(t reflect.Type, s Serializer) *SetBuilder {
	b.serializers[t] = s
	return b
}

// Override registers a serializer for t that wins over type declarations.
func (b *SetBuilder) Override(t reflect.Type, s Serializer) *SetBuilder {
	b.overrides[t] = s
	return b
}

// Named registers a serializer that fields and types select by name.
func (b *SetBuilder) Named(name string, s Serializer) *SetBuilder {
	b.named[name] = s
	return b
}

// Replace routes every type matching the predicate to s. Replacements added
// later are consulted first.
func (b *SetBuilder) Replace(match func(reflect.Type) bool, s Serializer) *SetBuilder {
	b.replacements = append([]replacement{{match: match, serializer: s}}, b.replacements...)
	return b
}

// Fallback sets the serializer used when nothing else matches.
func (b *SetBuilder) Fallback(s Serializer) *SetBuilder {
	b.fallback = s
	return b
}

// Build returns the immutable set.
func (b *SetBuilder) Build() *SerializerSet {
	s := &SerializerSet{
		serializers:  make(map[reflect.Type]Serializer, len(b.serializers)),
		overrides:    make(map[reflect.Type]Serializer, len(b.overrides)),
		named:        make(map[string]Serializer, len(b.named)),
		replacements: append([]replacement(nil), b.replacements...),
		fallback:     b.fallback,
	}
	for t, ser := range b.serializers {
		s.serializers[t] = ser
	}
	for t, ser := range b.overrides {
		s.overrides[t] = ser
	}
	for name, ser := range b.named {
		s.named[name] = ser
	}
	if s.fallback == nil {
		s.fallback = objectSerializer{}
	}
	return s
}

// HasSerializerFor reports whether t has an exact or override serializer.
func (s *SerializerSet) HasSerializerFor(t reflect.Type) bool {
	if _, ok := s.overrides[t]; ok {
		return true
	}
	_, ok := s.serializers[t]
	return ok
}

// NamedSerializer returns the serializer registered under name in the set,
// then in the global registry.
func (s *SerializerSet) NamedSerializer(name string) (Serializer, bool) {
	if ser, ok := s.named[name]; ok {
		return ser, true
	}
	return lookupSerializer(name)
}

// SerializerFor resolves the serializer for t: set overrides, then the
// serializer named by the type's declarations, then the exact serializer,
// then structural replacements, then the fallback.
func (s *SerializerSet) SerializerFor(t reflect.Type) Serializer {
	if ser, ok := s.resolved.Load(t); ok {
		return ser.(Serializer)
	}
	ser := s.resolve(t)
	s.resolved.Store(t, ser)
	return ser
}

func (s *SerializerSet) resolve(t reflect.Type) Serializer {
	if ser, ok := s.overrides[t]; ok {
		return ser
	}
	if name := declOf(t).serializer; name != "" && t.Kind() != reflect.Ptr {
		if ser, ok := s.NamedSerializer(name); ok {
			return ser
		}
		emitSerializerMissing(context.Background(), t.String(), name)
	}
	if ser, ok := s.serializers[t]; ok {
		return ser
	}
	for _, r := range s.replacements {
		if r.match(t) {
			return r.serializer
		}
	}
	return s.fallback
}

var (
	defaultSet     *SerializerSet
	defaultSetOnce sync.Once
)

// DefaultSet returns the process-wide default serializer set.
func DefaultSet() *SerializerSet {
	defaultSetOnce.Do(func() {
		defaultSet = newDefaultSet()
	})
	return defaultSet
}

func newDefaultSet() *SerializerSet {
	b := &SetBuilder{
		serializers: make(map[reflect.Type]Serializer),
		overrides:   make(map[reflect.Type]Serializer),
		named:       make(map[string]Serializer),
	}

	for _, t := range []reflect.Type{
		reflect.TypeFor[int](), reflect.TypeFor[int8](), reflect.TypeFor[int16](),
		reflect.TypeFor[int32](), reflect.TypeFor[int64](),
		reflect.TypeFor[uint](), reflect.TypeFor[uint8](), reflect.TypeFor[uint16](),
		reflect.TypeFor[uint32](), reflect.TypeFor[uint64](),
		reflect.TypeFor[float32](), reflect.TypeFor[float64](),
	} {
		b.Add(t, numberSerializer{})
	}
	b.Add(reflect.TypeFor[bool](), boolSerializer{})
	b.Add(reflect.TypeFor[string](), stringSerializer{})
	b.Add(durationType, durationSerializer{})
	b.Add(timeType, textSerializer{})
	b.Add(bytesType, bytesSerializer{})

	b.named[string(HashArgon2)] = Argon2Serializer()
	b.named[string(HashBcrypt)] = BcryptSerializer(BcryptDefaultCost)

	// Consulted in order; earlier entries win.
	b.replacements = []replacement{
		{match: isEnumType, serializer: enumSerializer{}},
		{match: isSetType, serializer: setSerializer{}},
		{match: isByteSlice, serializer: bytesSerializer{}},
		{match: isKind(reflect.Slice, reflect.Array), serializer: collectionSerializer{}},
		{match: isKind(reflect.Map), serializer: mapSerializer{}},
		{match: isKind(reflect.Ptr), serializer: pointerSerializer{}},
		{match: isKind(reflect.Interface), serializer: interfaceSerializer{}},
		{match: isTextType, serializer: textSerializer{}},
		{match: isKind(reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
			reflect.Float32, reflect.Float64), serializer: numberSerializer{}},
		{match: isKind(reflect.Bool), serializer: boolSerializer{}},
		{match: isKind(reflect.String), serializer: stringSerializer{}},
	}
	b.fallback = objectSerializer{}

	return b.Build()
}

func isKind(kinds ...reflect.Kind) func(reflect.Type) bool {
	return func(t reflect.Type) bool {
		for _, k := range kinds {
			if t.Kind() == k {
				return true
			}
		}
		return false
	}
}

func isEnumType(t reflect.Type) bool {
	_, ok := enumOf(t)
	return ok
}

// isSetType reports whether t is a map used as a set: map[K]struct{}.
func isSetType(t reflect.Type) bool {
	return t.Kind() == reflect.Map && t.Elem().Kind() == reflect.Struct && t.Elem().NumField() == 0
}

func isByteSlice(t reflect.Type) bool {
	return t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8
}

// isTextType reports whether t round-trips through its text form.
func isTextType(t reflect.Type) bool {
	return t.Kind() != reflect.Ptr && reflect.PointerTo(t).Implements(textUnmarshalerType)
}
