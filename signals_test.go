package sconfig

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestEmitFieldMapBuilt(_ *testing.T) {
	// Should not panic
	emitFieldMapBuilt(context.Background(), "TestType", 3)
}

func TestEmitTypeRegistered(_ *testing.T) {
	emitTypeRegistered(context.Background(), "TestType", "test")
}

func TestEmitAliasConflict(_ *testing.T) {
	emitAliasConflict(context.Background(), "test", "TestType", "OtherType")
}

func TestEmitTypeUnresolved(_ *testing.T) {
	emitTypeUnresolved(context.Background(), "missing.Type", nil)
}

func TestEmitTypeUnresolved_Error(_ *testing.T) {
	emitTypeUnresolved(context.Background(), "broken.Type", errors.New("test error"))
}

func TestEmitSerializerMissing(_ *testing.T) {
	emitSerializerMissing(context.Background(), "string", "vault")
}

func TestEmitSerializeComplete_Success(_ *testing.T) {
	emitSerializeComplete(context.Background(), "TestType", 100*time.Millisecond, nil)
}

func TestEmitSerializeComplete_Error(_ *testing.T) {
	emitSerializeComplete(context.Background(), "TestType", 100*time.Millisecond, errors.New("test error"))
}

func TestEmitDeserializeComplete_Success(_ *testing.T) {
	emitDeserializeComplete(context.Background(), "TestType", 100*time.Millisecond, nil)
}

func TestEmitDeserializeComplete_Error(_ *testing.T) {
	emitDeserializeComplete(context.Background(), "TestType", 100*time.Millisecond, errors.New("test error"))
}

func TestEmitChangeVetoed(_ *testing.T) {
	emitChangeVetoed(context.Background(), "TestType", "port", Reject("no"))
}

func TestEmitPropertyResult_Success(_ *testing.T) {
	emitPropertyResult(context.Background(), "network.port", OpSet, nil)
}

func TestEmitPropertyResult_Error(_ *testing.T) {
	emitPropertyResult(context.Background(), "network.port", OpAdd, errors.New("test error"))
}

func TestEmitSourceComplete_Load(_ *testing.T) {
	emitSourceComplete(context.Background(), opLoad, "config.yaml", "application/yaml", 512, time.Millisecond, nil)
}

func TestEmitSourceComplete_SaveError(_ *testing.T) {
	emitSourceComplete(context.Background(), opSave, "config.yaml", "application/yaml", 0, time.Millisecond, errors.New("test error"))
}
