package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/zoobzio/sconfig"
)

func TestLookup(t *testing.T) {
	tree := map[string]any{
		"name":  "edge",
		"Limit": 5,
		"hosts": []any{"a", map[string]any{"port": 80}},
	}

	tests := []struct {
		path string
		want any
		at   int
	}{
		{"name", "edge", -1},
		{"limit", 5, -1},
		{"hosts.1.port", 80, -1},
		{"hosts.0", "a", -1},
		{"missing", nil, 0},
		{"hosts.2", nil, 1},
		{"hosts.x", nil, 1},
		{"name.first", nil, 1},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := lookup(tree, sconfig.SplitPath(tt.path))
			if tt.at >= 0 {
				var pe *sconfig.PathError
				if !errors.As(err, &pe) {
					t.Fatalf("lookup() error = %v, want PathError", err)
				}
				if pe.At != tt.at {
					t.Errorf("PathError.At = %d, want %d", pe.At, tt.at)
				}
				return
			}
			if err != nil {
				t.Fatalf("lookup() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("lookup() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLeafPaths(t *testing.T) {
	tree := map[string]any{
		sconfig.TypeKey: "Server",
		"name":          "edge",
		"db":            map[string]any{"pool": 8, "url": "x"},
		"hosts":         []any{"a", "b"},
		"empty":         map[string]any{},
	}
	want := []string{"db.pool", "db.url", "hosts.0", "hosts.1", "name"}
	if diff := cmp.Diff(want, leafPaths(tree, "")); diff != "" {
		t.Errorf("leafPaths() mismatch (-want +got):\n%s", diff)
	}
	if got := leafPaths("scalar", ""); got != nil {
		t.Errorf("leafPaths(scalar) = %v, want nil", got)
	}
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"a.yaml", "application/yaml"},
		{"a.YML", "application/yaml"},
		{"a.json", "application/json"},
		{"a.msgpack", "application/msgpack"},
		{"a.mp", "application/msgpack"},
		{"a.bson", "application/bson"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			f, err := formatFor(tt.path)
			if err != nil {
				t.Fatalf("formatFor() error = %v", err)
			}
			if f.ContentType() != tt.want {
				t.Errorf("ContentType() = %q, want %q", f.ContentType(), tt.want)
			}
		})
	}

	if _, err := formatFor("a.toml"); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCommands(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.json")
	out := filepath.Join(dir, "out.yaml")
	if err := os.WriteFile(in, []byte(`{"name":"edge","db":{"pool":8},"hosts":["a","b"]}`), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := run(t, "convert", in, out); err != nil {
		t.Fatalf("convert error = %v", err)
	}

	got, err := run(t, "paths", out)
	if err != nil {
		t.Fatalf("paths error = %v", err)
	}
	if want := "db.pool\nhosts.0\nhosts.1\nname\n"; got != want {
		t.Errorf("paths = %q, want %q", got, want)
	}

	got, err = run(t, "get", out, "db.pool")
	if err != nil {
		t.Fatalf("get error = %v", err)
	}
	if got != "8\n" {
		t.Errorf("get db.pool = %q, want %q", got, "8\n")
	}

	got, err = run(t, "get", in, "hosts")
	if err != nil {
		t.Fatalf("get error = %v", err)
	}
	if got != "- a\n- b\n" {
		t.Errorf("get hosts = %q, want %q", got, "- a\n- b\n")
	}
}

func TestCommands_Errors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "missing.json")

	if _, err := run(t, "paths", empty); !errors.Is(err, sconfig.ErrNoData) {
		t.Errorf("paths on missing file error = %v, want ErrNoData", err)
	}
	if _, err := run(t, "get", filepath.Join(dir, "a.toml"), "x"); err == nil {
		t.Error("expected error for unsupported extension")
	}
	if _, err := run(t, "convert", empty); err == nil {
		t.Error("expected error for missing argument")
	}
}
