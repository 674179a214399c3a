// Package sconfig converts object graphs to and from plain data and edits
// live objects through string property paths.
//
// Plain data is what every format understands: maps with string keys,
// slices, and scalars. Structs become maps of their fields, tagged with the
// type they came from so the graph can be rebuilt without knowing its shape:
//
//	{"=$$=": "Server", "port": 25565, "database": {"=$$=": "Database", "url": "..."}}
//
// # Field Model
//
// The fields of a struct are modelled once and cached. Behavior is declared
// with struct tags:
//
//	type Server struct {
//	    ID       string        `config:"id,immutable"`
//	    Port     int           `validate:"port" comment:"Listen port"`
//	    Token    string        `serialize:"vault" mask:"secret"`
//	    Session  string        `config:"session,transient"`
//	    Admins   map[string]struct{}
//	    Database *Database
//	}
//
// Tags:
//
//	config:"name,immutable,transient"  - serialized name and flags, or "-" to skip
//	comment:"line\nline"               - comment written above the field
//	description:"text"                 - description shown by property listings
//	serialize:"name"                   - named serializer for the field
//	validate:"name"                    - named validator consulted on change
//	handle:"name"                      - named property handler
//	mask:"secret"                      - display mask used by Describe
//
// Embedded structs contribute their fields; a field declared on the outer
// struct shadows one of the same name. A struct that contains itself is
// rejected with ErrSelfContainment, mutually recursive types with
// ErrRecursiveType.
//
// # Type Tags
//
// Register gives a type a short alias. Types without one are tagged with
// their fully-qualified name, which resolves for every type the process has
// declared, registered, or modelled:
//
//	sconfig.Register[Server](sconfig.WithAlias("Server"))
//
// Unknown tags are not an error: the data comes back as an untyped map.
//
// # Serializers
//
// A SerializerSet resolves the serializer for a type in order: set
// overrides, the serializer named by the type's declaration, the exact type
// serializer, structural replacements (enums, sets, slices, maps, pointers,
// text types, scalars), then the struct fallback. DefaultSet covers the
// built-in types and registers the "argon2" and "bcrypt" hashing
// serializers. Derive custom sets with NewSetBuilder:
//
//	vault, _ := sconfig.AESSerializer(key)
//	set := sconfig.NewSetBuilder().Named("vault", vault).Build()
//
// # Loading
//
// Deserialize rebuilds tagged data, DeserializeAs targets a known type, and
// LoadInto merges data into an existing object field by field so references
// held elsewhere stay valid. Validators may veto individual changes; a veto
// during a load keeps the old value.
//
// # Properties
//
// GetProperty, SetProperty, AddProperty, RemoveProperty and ClearProperty
// address fields by dotted path and take their values as text:
//
//	sconfig.SetProperty(srv, "database.pool", "20")
//	sconfig.AddProperty(srv, "admins", "alice")
//
// Immutable fields reject changes, and collection fields accept only add,
// remove and clear.
//
// # Data Sources
//
// A Source pairs a Storage with a Format. The json, yaml, msgpack and bson
// subpackages provide formats; yaml writes field comments and keeps the
// declared key order.
//
//	src := sconfig.NewFileSource("server.yaml", yaml.New(), sconfig.WithComments(true))
//	srv, err := sconfig.LoadAs[*Server](ctx, src)
//
// # Signals
//
// The engine reports model building, registrations, vetoes, property changes
// and source operations as capitan signals. See signals.go.
package sconfig
