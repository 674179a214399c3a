package sconfig

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrSelfContainment indicates a struct has a field of its own type.
	ErrSelfContainment = errors.New("self containment")

	// ErrRecursiveType indicates mutually recursive struct types.
	ErrRecursiveType = errors.New("recursive type")

	// ErrNotStruct indicates a field model was requested for a non-struct type.
	ErrNotStruct = errors.New("not a struct type")

	// ErrInvalidTag indicates a struct tag has an invalid format or value.
	ErrInvalidTag = errors.New("invalid tag")

	// ErrNoSuchField indicates a property path does not name a field.
	ErrNoSuchField = errors.New("no such field")

	// ErrInvalidValue indicates a value cannot be assigned to a field.
	ErrInvalidValue = errors.New("invalid value")

	// ErrNoParsePath indicates a type has no textual or structural parse path.
	ErrNoParsePath = errors.New("no parse path")

	// ErrChangeRejected indicates a validator or handler vetoed a change.
	ErrChangeRejected = errors.New("change rejected")

	// ErrImmutable indicates an attempt to modify an immutable field.
	ErrImmutable = errors.New("immutable field")

	// ErrNotCollection indicates a collection operation on a non-collection field.
	ErrNotCollection = errors.New("not a collection")

	// ErrCollectionSet indicates a set operation on a collection field.
	ErrCollectionSet = errors.New("cannot set collection")

	// ErrAliasConflict indicates two types claimed the same alias.
	ErrAliasConflict = errors.New("alias conflict")

	// ErrUnknownSerializer indicates a named serializer was not registered.
	ErrUnknownSerializer = errors.New("unknown serializer")

	// ErrSource indicates a data source failed to read or write.
	ErrSource = errors.New("source failed")

	// ErrNoData indicates a data source holds no data.
	ErrNoData = errors.New("no data")

	// ErrUnmarshal indicates a format failed to decode input data.
	ErrUnmarshal = errors.New("unmarshal failed")

	// ErrMarshal indicates a format failed to encode output data.
	ErrMarshal = errors.New("marshal failed")

	// ErrInvalidKey indicates an encryption key has invalid size or format.
	ErrInvalidKey = errors.New("invalid key")

	// ErrCiphertextShort indicates ciphertext is too short to contain a nonce.
	ErrCiphertextShort = errors.New("ciphertext too short")

	// ErrDecryptionFailed indicates ciphertext could not be decrypted.
	ErrDecryptionFailed = errors.New("decryption failed")
)

// ModelError represents a failure to build a field model.
type ModelError struct {
	Err   error        // Underlying sentinel error (ErrSelfContainment, etc.)
	Type  reflect.Type // Type whose model was being built
	Field string       // Field that triggered the error
}

func (e *ModelError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s.%s", e.Err.Error(), e.Type, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Type)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// PathError represents a property path that could not be resolved.
type PathError struct {
	Path []string // Segments as given by the caller
	At   int      // Index of the segment that failed
}

func (e *PathError) Error() string {
	if e.At >= 0 && e.At < len(e.Path) {
		return fmt.Sprintf("%s %q in %q", ErrNoSuchField.Error(), e.Path[e.At], strings.Join(e.Path, "."))
	}
	return fmt.Sprintf("%s %q", ErrNoSuchField.Error(), strings.Join(e.Path, "."))
}

func (e *PathError) Unwrap() error {
	return ErrNoSuchField
}

// FieldError represents a value that could not be assigned to a field.
type FieldError struct {
	Field string       // Field name
	Type  reflect.Type // Declared type of the field
	Value any          // Offending value
	Cause error        // Original conversion error
}

func (e *FieldError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s for field %s (%s): %v", ErrInvalidValue.Error(), e.Field, e.Type, e.Cause)
	}
	return fmt.Sprintf("%s for field %s (%s): %v", ErrInvalidValue.Error(), e.Field, e.Type, e.Value)
}

func (e *FieldError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrInvalidValue, e.Cause}
	}
	return []error{ErrInvalidValue}
}

// ConversionError represents plain data that could not be converted to a type.
type ConversionError struct {
	Err   error        // Underlying sentinel error (ErrNoParsePath, ErrInvalidValue)
	Type  reflect.Type // Wanted type
	Value any          // Offending value
	Cause error        // Original parse error
}

func (e *ConversionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %T to %s: %v", e.Err.Error(), e.Value, e.Type, e.Cause)
	}
	return fmt.Sprintf("%s: %T to %s", e.Err.Error(), e.Value, e.Type)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// VetoError represents a rejected change. Message is meant for display to
// whoever requested the change.
type VetoError struct {
	Field   string // Field the change targeted
	Message string // User-facing reason
	Reason  error  // Optional sentinel describing the reason (ErrImmutable, etc.)
}

func (e *VetoError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s (field %s): %s", ErrChangeRejected.Error(), e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", ErrChangeRejected.Error(), e.Message)
}

func (e *VetoError) Unwrap() []error {
	if e.Reason != nil {
		return []error{ErrChangeRejected, e.Reason}
	}
	return []error{ErrChangeRejected}
}

// AliasError represents an alias claimed by more than one type.
type AliasError struct {
	Alias    string
	Type     reflect.Type // Type now holding the alias
	Previous reflect.Type // Type that held it before
}

func (e *AliasError) Error() string {
	return fmt.Sprintf("%s: %q moved from %s to %s", ErrAliasConflict.Error(), e.Alias, e.Previous, e.Type)
}

func (e *AliasError) Unwrap() error {
	return ErrAliasConflict
}

// SourceError represents a data source failure.
type SourceError struct {
	Op    string // load or save
	Path  string // Location of the source
	Cause error  // Original I/O error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", ErrSource.Error(), e.Op, e.Path, e.Cause)
}

func (e *SourceError) Unwrap() []error {
	return []error{ErrSource, e.Cause}
}

// CodecError represents a marshal/unmarshal error.
type CodecError struct {
	Err   error // Underlying sentinel error (ErrMarshal, ErrUnmarshal)
	Cause error // Original error from the format
}

func (e *CodecError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Err.Error(), e.Cause)
	}
	return e.Err.Error()
}

func (e *CodecError) Unwrap() error {
	return e.Err
}

// Reject builds a VetoError for use by validators and property handlers.
func Reject(format string, args ...any) error {
	return &VetoError{Message: fmt.Sprintf(format, args...)}
}

func newModelError(sentinel error, t reflect.Type, field string) error {
	return &ModelError{
		Err:   sentinel,
		Type:  t,
		Field: field,
	}
}

func newPathError(path []string, at int) error {
	return &PathError{
		Path: path,
		At:   at,
	}
}

func newFieldError(field string, t reflect.Type, value any, cause error) error {
	return &FieldError{
		Field: field,
		Type:  t,
		Value: value,
		Cause: cause,
	}
}

func newConversionError(sentinel error, t reflect.Type, value any, cause error) error {
	return &ConversionError{
		Err:   sentinel,
		Type:  t,
		Value: value,
		Cause: cause,
	}
}

func newVetoError(field string, reason error, format string, args ...any) error {
	return &VetoError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
		Reason:  reason,
	}
}

func newSourceError(op, path string, cause error) error {
	return &SourceError{
		Op:    op,
		Path:  path,
		Cause: cause,
	}
}

func newCodecError(sentinel error, cause error) error {
	return &CodecError{
		Err:   sentinel,
		Cause: cause,
	}
}
