package sconfig

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for engine events.
var (
	SignalFieldMapBuilt       = capitan.NewSignal("sconfig.fieldmap.built", "Field model built for a type")
	SignalTypeRegistered      = capitan.NewSignal("sconfig.type.registered", "Type registered under an alias")
	SignalAliasConflict       = capitan.NewSignal("sconfig.alias.conflict", "Alias reassigned to a different type")
	SignalTypeUnresolved      = capitan.NewSignal("sconfig.type.unresolved", "Type tag did not resolve; value kept untyped")
	SignalSerializerMissing   = capitan.NewSignal("sconfig.serializer.missing", "Named serializer not registered; default used")
	SignalSerializeComplete   = capitan.NewSignal("sconfig.serialize.complete", "Serialize operation finished")
	SignalDeserializeComplete = capitan.NewSignal("sconfig.deserialize.complete", "Deserialize operation finished")
	SignalChangeVetoed        = capitan.NewSignal("sconfig.field.vetoed", "Validator rejected a value during load")
	SignalPropertyChanged     = capitan.NewSignal("sconfig.property.changed", "Property modified")
	SignalPropertyRejected    = capitan.NewSignal("sconfig.property.rejected", "Property modification rejected")
	SignalSourceLoadComplete  = capitan.NewSignal("sconfig.source.load.complete", "Data source load finished")
	SignalSourceSaveComplete  = capitan.NewSignal("sconfig.source.save.complete", "Data source save finished")
)

// Keys for typed event data.
var (
	KeyTypeName    = capitan.NewStringKey("type_name")
	KeyAlias       = capitan.NewStringKey("alias")
	KeyPrevious    = capitan.NewStringKey("previous")
	KeyField       = capitan.NewStringKey("field")
	KeySerializer  = capitan.NewStringKey("serializer")
	KeyFieldCount  = capitan.NewIntKey("field_count")
	KeyPath        = capitan.NewStringKey("path")
	KeyOperation   = capitan.NewStringKey("operation")
	KeyContentType = capitan.NewStringKey("content_type")
	KeySize        = capitan.NewIntKey("size")
	KeyDuration    = capitan.NewDurationKey("duration")
	KeyError       = capitan.NewErrorKey("error")
)

func emitFieldMapBuilt(ctx context.Context, typeName string, fields int) {
	capitan.Emit(ctx, SignalFieldMapBuilt,
		KeyTypeName.Field(typeName),
		KeyFieldCount.Field(fields),
	)
}

func emitTypeRegistered(ctx context.Context, typeName, alias string) {
	capitan.Emit(ctx, SignalTypeRegistered,
		KeyTypeName.Field(typeName),
		KeyAlias.Field(alias),
	)
}

func emitAliasConflict(ctx context.Context, alias, typeName, previous string) {
	capitan.Error(ctx, SignalAliasConflict,
		KeyAlias.Field(alias),
		KeyTypeName.Field(typeName),
		KeyPrevious.Field(previous),
	)
}

// emitTypeUnresolved emits an event when a tagged value is kept untyped,
// either because the tag is unknown or because the typed value was corrupt.
func emitTypeUnresolved(ctx context.Context, alias string, err error) {
	if err != nil {
		capitan.Error(ctx, SignalTypeUnresolved,
			KeyAlias.Field(alias),
			KeyError.Field(err),
		)
		return
	}
	capitan.Emit(ctx, SignalTypeUnresolved,
		KeyAlias.Field(alias),
	)
}

func emitSerializerMissing(ctx context.Context, typeName, serializer string) {
	capitan.Emit(ctx, SignalSerializerMissing,
		KeyTypeName.Field(typeName),
		KeySerializer.Field(serializer),
	)
}

// emitSerializeComplete emits an event when a top-level serialize finishes.
func emitSerializeComplete(ctx context.Context, typeName string, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyTypeName.Field(typeName),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalSerializeComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalSerializeComplete, fields...)
	}
}

// emitDeserializeComplete emits an event when a top-level deserialize finishes.
func emitDeserializeComplete(ctx context.Context, typeName string, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyTypeName.Field(typeName),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalDeserializeComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalDeserializeComplete, fields...)
	}
}

func emitChangeVetoed(ctx context.Context, typeName, field string, err error) {
	capitan.Error(ctx, SignalChangeVetoed,
		KeyTypeName.Field(typeName),
		KeyField.Field(field),
		KeyError.Field(err),
	)
}

// emitPropertyResult emits a changed or rejected event for a property operation.
func emitPropertyResult(ctx context.Context, path, op string, err error) {
	if err != nil {
		capitan.Error(ctx, SignalPropertyRejected,
			KeyPath.Field(path),
			KeyOperation.Field(op),
			KeyError.Field(err),
		)
		return
	}
	capitan.Emit(ctx, SignalPropertyChanged,
		KeyPath.Field(path),
		KeyOperation.Field(op),
	)
}

// emitSourceComplete emits an event when a data source load or save finishes.
func emitSourceComplete(ctx context.Context, op, path, contentType string, size int, duration time.Duration, err error) {
	signal := SignalSourceLoadComplete
	if op == opSave {
		signal = SignalSourceSaveComplete
	}
	fields := []capitan.Field{
		KeyPath.Field(path),
		KeyContentType.Field(contentType),
		KeySize.Field(size),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, signal, fields...)
	} else {
		capitan.Emit(ctx, signal, fields...)
	}
}
