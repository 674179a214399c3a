package sconfig

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"time"
)

const (
	opLoad = "load"
	opSave = "save"
)

// DataSource loads and saves objects through a serialized tree.
type DataSource interface {
	// Load returns the stored tree deserialized without a destination type.
	// It returns nil when nothing is stored.
	Load(ctx context.Context) (any, error)

	// LoadAs returns the stored tree deserialized as t.
	LoadAs(ctx context.Context, t reflect.Type) (any, error)

	// LoadInto merges the stored tree into dst, a pointer to a struct.
	LoadInto(ctx context.Context, dst any) error

	// Save serializes v and stores it.
	Save(ctx context.Context, v any) error
}

// LoadAs loads the stored tree of ds as a T.
func LoadAs[T any](ctx context.Context, ds DataSource) (T, error) {
	inspect[T]()
	var zero T
	v, err := ds.LoadAs(ctx, reflect.TypeFor[T]())
	if err != nil || v == nil {
		return zero, err
	}
	return v.(T), nil
}

// Storage holds the bytes behind a Source.
type Storage interface {
	// Location identifies the storage in errors and signals.
	Location() string

	// Read returns the stored bytes, or nil when nothing is stored.
	Read(ctx context.Context) ([]byte, error)

	// Write replaces the stored bytes.
	Write(ctx context.Context, data []byte) error
}

// FileStorage stores bytes in a single file. Writes go to a temporary file
// in the same directory which is then renamed over the target.
type FileStorage struct {
	path string
	mode fs.FileMode
}

// NewFileStorage returns storage for the file at path.
func NewFileStorage(path string, mode fs.FileMode) *FileStorage {
	if mode == 0 {
		mode = 0o644
	}
	return &FileStorage{path: path, mode: mode}
}

// Location returns the file path.
func (f *FileStorage) Location() string { return f.path }

// Read returns the file contents. A missing file reads as nil.
func (f *FileStorage) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return data, err
}

// Write atomically replaces the file contents, creating parent directories.
func (f *FileStorage) Write(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	defer os.Remove(name)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(f.mode); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(name, f.path)
}

// SourceOption configures a Source.
type SourceOption func(*Source)

// WithSerializerSet sets the serializers used to convert between objects and
// trees. The default is DefaultSet().
func WithSerializerSet(set *SerializerSet) SourceOption {
	return func(s *Source) {
		s.set = set
	}
}

// WithComments makes Save write field comments when the format supports
// them.
func WithComments(enabled bool) SourceOption {
	return func(s *Source) {
		s.comments = enabled
	}
}

// WithFileMode sets the permissions of files written by NewFileSource.
func WithFileMode(mode fs.FileMode) SourceOption {
	return func(s *Source) {
		s.mode = mode
	}
}

// Source is a DataSource over a Storage and a Format.
type Source struct {
	storage  Storage
	format   Format
	set      *SerializerSet
	comments bool
	mode     fs.FileMode
}

// NewSource returns a DataSource reading and writing storage in format.
func NewSource(storage Storage, format Format, opts ...SourceOption) *Source {
	s := &Source{
		storage: storage,
		format:  format,
		set:     DefaultSet(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewFileSource returns a DataSource for the file at path.
func NewFileSource(path string, format Format, opts ...SourceOption) *Source {
	s := NewSource(nil, format, opts...)
	s.storage = NewFileStorage(path, s.mode)
	return s
}

// Location returns the location of the underlying storage.
func (s *Source) Location() string { return s.storage.Location() }

// Load returns the stored tree deserialized without a destination type.
func (s *Source) Load(ctx context.Context) (any, error) {
	tree, err := s.read(ctx)
	if err != nil || tree == nil {
		return nil, err
	}
	return s.set.Deserialize(tree)
}

// LoadAs returns the stored tree deserialized as t. An empty source yields
// ErrNoData.
func (s *Source) LoadAs(ctx context.Context, t reflect.Type) (any, error) {
	tree, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	if tree == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoData, s.storage.Location())
	}
	return s.set.DeserializeAs(tree, t)
}

// LoadInto merges the stored tree into dst. An empty source yields ErrNoData
// and leaves dst untouched.
func (s *Source) LoadInto(ctx context.Context, dst any) error {
	tree, err := s.read(ctx)
	if err != nil {
		return err
	}
	if tree == nil {
		return fmt.Errorf("%w: %s", ErrNoData, s.storage.Location())
	}
	return s.set.LoadInto(dst, tree)
}

// Save serializes v and replaces the stored data.
func (s *Source) Save(ctx context.Context, v any) (err error) {
	start := time.Now()
	var size int
	defer func() {
		emitSourceComplete(ctx, opSave, s.storage.Location(), s.format.ContentType(), size, time.Since(start), err)
	}()

	tree, err := s.set.Serialize(v)
	if err != nil {
		return err
	}

	var data []byte
	if lf, ok := s.format.(LayoutFormat); ok {
		data, err = lf.MarshalLayout(tree, BuildLayout(v, s.comments))
	} else {
		data, err = s.format.Marshal(tree)
	}
	if err != nil {
		return newCodecError(ErrMarshal, err)
	}
	size = len(data)

	if err := s.storage.Write(ctx, data); err != nil {
		return newSourceError(opSave, s.storage.Location(), err)
	}
	return nil
}

// read returns the stored tree, or nil when the storage is empty.
func (s *Source) read(ctx context.Context) (tree any, err error) {
	start := time.Now()
	var size int
	defer func() {
		emitSourceComplete(ctx, opLoad, s.storage.Location(), s.format.ContentType(), size, time.Since(start), err)
	}()

	data, err := s.storage.Read(ctx)
	if err != nil {
		return nil, newSourceError(opLoad, s.storage.Location(), err)
	}
	size = len(data)
	if len(data) == 0 {
		return nil, nil
	}

	if err := s.format.Unmarshal(data, &tree); err != nil {
		return nil, newCodecError(ErrUnmarshal, err)
	}
	return tree, nil
}
