package yaml

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/zoobzio/sconfig"
)

type admin struct {
	User string `description:"Login name"`
}

type server struct {
	Name  string `comment:"Display name"`
	Port  int
	Admin admin
}

func init() {
	sconfig.Declare[server](sconfig.WithComment("Server settings"))
}

func TestContentType(t *testing.T) {
	if got := New().ContentType(); got != "application/yaml" {
		t.Errorf("ContentType() = %q, want %q", got, "application/yaml")
	}
}

func TestMarshalLayout(t *testing.T) {
	f := New()
	layout := sconfig.BuildLayout(server{}, true)
	tree := map[string]any{
		"port":  8080,
		"name":  "edge",
		"admin": map[string]any{"user": "root"},
		"extra": true,
	}

	data, err := f.MarshalLayout(tree, layout)
	if err != nil {
		t.Fatalf("MarshalLayout() error = %v", err)
	}
	out := string(data)

	if !strings.HasPrefix(out, "# Server settings") {
		t.Errorf("missing header:\n%s", out)
	}
	if !strings.Contains(out, "# Display name\nname: edge") {
		t.Errorf("missing field comment:\n%s", out)
	}
	if !strings.Contains(out, "    # Login name\n    user: root") && !strings.Contains(out, "  # Login name\n  user: root") {
		t.Errorf("missing nested comment:\n%s", out)
	}

	order := []string{"name:", "port:", "admin:", "extra:"}
	last := -1
	for _, key := range order {
		i := strings.Index(out, key)
		if i < 0 {
			t.Fatalf("%s missing:\n%s", key, out)
		}
		if i < last {
			t.Errorf("%s out of order:\n%s", key, out)
		}
		last = i
	}

	var back any
	if err := f.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if diff := cmp.Diff(tree, back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestMarshalLayout_WithoutComments(t *testing.T) {
	layout := sconfig.BuildLayout(server{}, false)
	data, err := New().MarshalLayout(map[string]any{"name": "edge", "port": 1}, layout)
	if err != nil {
		t.Fatalf("MarshalLayout() error = %v", err)
	}
	if want := "name: edge\nport: 1\n"; string(data) != want {
		t.Errorf("MarshalLayout() = %q, want %q", data, want)
	}
}

func TestMarshalLayout_List(t *testing.T) {
	tree := map[string]any{"hosts": []any{"a", map[string]any{"b": 2, "a": 1}}}
	data, err := New().MarshalLayout(tree, &sconfig.Layout{})
	if err != nil {
		t.Fatalf("MarshalLayout() error = %v", err)
	}
	want := "hosts:\n  - a\n  - a: 1\n    b: 2\n"
	if string(data) != want {
		t.Errorf("MarshalLayout() = %q, want %q", data, want)
	}
}

func TestUnmarshal_PlainData(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want any
	}{
		{"scalars", "a: 1\nb: 1.5\nc: true\nd: text\n", map[string]any{"a": 1, "b": 1.5, "c": true, "d": "text"}},
		{"int keys", "1: a\n2: b\n", map[string]any{"1": "a", "2": "b"}},
		{"nested int keys", "outer:\n  - 3: c\n", map[string]any{"outer": []any{map[string]any{"3": "c"}}}},
		{"null", "a: null\n", map[string]any{"a": nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got any
			if err := New().Unmarshal([]byte(tt.in), &got); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Unmarshal() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUnmarshal_Struct(t *testing.T) {
	var got struct {
		Name string `yaml:"name"`
	}
	if err := New().Unmarshal([]byte("name: edge\n"), &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got.Name != "edge" {
		t.Errorf("Name = %q, want %q", got.Name, "edge")
	}
}

func TestUnmarshal_Invalid(t *testing.T) {
	var got any
	if err := New().Unmarshal([]byte("a: [1, 2"), &got); err == nil {
		t.Error("expected error for malformed YAML")
	}
}
