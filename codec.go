package sconfig

// Format encodes plain data trees to bytes and back. Unmarshal into a *any
// must produce plain data: map[string]any, []any and scalars.
type Format interface {
	// ContentType returns the MIME type for this format (e.g., "application/yaml").
	ContentType() string

	// Marshal encodes v into bytes.
	Marshal(v any) ([]byte, error)

	// Unmarshal decodes data into v.
	Unmarshal(data []byte, v any) error
}

// LayoutFormat is a Format that can honor field order and comments when
// writing a tree produced by Serialize.
type LayoutFormat interface {
	Format

	// MarshalLayout encodes tree, ordering map keys and attaching comments
	// as described by l.
	MarshalLayout(tree any, l *Layout) ([]byte, error)
}
