package sconfig

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadInto_KeepsIdentity(t *testing.T) {
	s := sampleSettings()
	nested := s.Nested
	tags := s.Tags

	data := map[string]any{
		"name":   "reloaded",
		"port":   2000,
		"tags":   []any{"x"},
		"nested": map[string]any{"flag": false},
	}
	if err := LoadInto(s, data); err != nil {
		t.Fatalf("LoadInto() error: %v", err)
	}

	if s.Name != "reloaded" || s.Port != 2000 {
		t.Errorf("scalars = %q %d, want reloaded 2000", s.Name, s.Port)
	}
	if s.Nested != nested {
		t.Error("nested object should be merged in place")
	}
	if nested.Flag {
		t.Error("nested flag should be false")
	}
	if diff := cmp.Diff([]string{"x"}, s.Tags); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "b"}, tags); diff != "" {
		t.Errorf("the old slice should be untouched (-want +got):\n%s", diff)
	}
}

func TestLoadInto_SkipsImmutableAndTransient(t *testing.T) {
	s := sampleSettings()
	s.Session = "live"

	if err := LoadInto(s, map[string]any{"id": "other", "session": "stored"}); err != nil {
		t.Fatalf("LoadInto() error: %v", err)
	}
	if s.ID != "s-1" {
		t.Errorf("ID = %q, want s-1", s.ID)
	}
	if s.Session != "live" {
		t.Errorf("Session = %q, want live", s.Session)
	}
}

func TestLoadInto_MissingKeysTakeDefaults(t *testing.T) {
	d := &defaulted{Port: 1, Host: "old"}
	if err := LoadInto(d, map[string]any{"host": "new"}); err != nil {
		t.Fatalf("LoadInto() error: %v", err)
	}
	if d.Port != 8080 {
		t.Errorf("Port = %d, want default 8080", d.Port)
	}
	if d.Host != "new" {
		t.Errorf("Host = %q, want new", d.Host)
	}
}

func TestLoadInto_NilNestedReplaced(t *testing.T) {
	s := &settings{}
	if err := LoadInto(s, map[string]any{"nested": map[string]any{"flag": true}}); err != nil {
		t.Fatalf("LoadInto() error: %v", err)
	}
	if s.Nested == nil || !s.Nested.Flag {
		t.Errorf("Nested = %+v, want flag set", s.Nested)
	}
}

func TestLoadInto_Errors(t *testing.T) {
	tests := []struct {
		name string
		dst  any
		data any
		want error
	}{
		{"non-pointer", settings{}, map[string]any{}, ErrInvalidValue},
		{"nil pointer", (*settings)(nil), map[string]any{}, ErrInvalidValue},
		{"not a struct", ptr(3), map[string]any{}, ErrNotStruct},
		{"bad data", &settings{}, map[string]any{"port": "many"}, ErrInvalidValue},
		{"scalar data", &settings{}, "text", ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := LoadInto(tt.dst, tt.data); !errors.Is(err, tt.want) {
				t.Errorf("LoadInto() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCopyFields_VetoesJoined(t *testing.T) {
	src := &settings{Name: "copied", Port: 70000}
	dst := sampleSettings()

	err := CopyFields(src, dst)
	if !errors.Is(err, ErrChangeRejected) {
		t.Fatalf("CopyFields() error = %v, want ErrChangeRejected", err)
	}
	if dst.Port != 25565 {
		t.Errorf("vetoed Port = %d, want 25565", dst.Port)
	}
	if dst.Name != "copied" {
		t.Errorf("Name = %q, want copied despite the veto", dst.Name)
	}
}

func TestCopyFields_TypeMismatch(t *testing.T) {
	err := CopyFields(&child{}, &settings{})
	if !errors.Is(err, ErrInvalidValue) {
		t.Errorf("CopyFields() error = %v, want ErrInvalidValue", err)
	}
}

func TestCopyFields_ValueSource(t *testing.T) {
	dst := &child{}
	if err := CopyFields(child{Flag: true}, dst); err != nil {
		t.Fatalf("CopyFields() error: %v", err)
	}
	if !dst.Flag {
		t.Error("flag should be copied")
	}
}
