// Package yaml provides the YAML format, with field comments and declared
// key order on save.
package yaml

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/zoobzio/sconfig"
	"gopkg.in/yaml.v3"
)

// yamlFormat implements sconfig.LayoutFormat for YAML.
type yamlFormat struct{}

// New returns a YAML format.
func New() sconfig.LayoutFormat {
	return &yamlFormat{}
}

// ContentType returns the MIME type for YAML.
func (f *yamlFormat) ContentType() string {
	return "application/yaml"
}

// Marshal encodes v as YAML with the type tag first and other keys sorted.
func (f *yamlFormat) Marshal(v any) ([]byte, error) {
	return f.MarshalLayout(v, nil)
}

// Unmarshal decodes YAML data into v. Decoding into a *any yields plain
// data with string map keys.
func (f *yamlFormat) Unmarshal(data []byte, v any) error {
	if err := yaml.Unmarshal(data, v); err != nil {
		return err
	}
	if tree, ok := v.(*any); ok {
		*tree = normalize(*tree)
	}
	return nil
}

// MarshalLayout encodes tree with keys in declared order and comments above
// the fields that carry them.
func (f *yamlFormat) MarshalLayout(tree any, l *sconfig.Layout) ([]byte, error) {
	root, err := toNode(tree, l, sconfig.RootPath)
	if err != nil {
		return nil, err
	}
	doc := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}
	if l != nil {
		doc.HeadComment = comment(l.Header)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toNode(v any, l *sconfig.Layout, path string) (*yaml.Node, error) {
	switch x := v.(type) {
	case map[string]any:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range l.Keys(path, x) {
			child := sconfig.JoinPath(path, k)
			key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}
			key.HeadComment = comment(l.Comments(child))
			val, err := toNode(x[k], l, child)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			n.Content = append(n.Content, key, val)
		}
		return n, nil

	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for i, item := range x {
			val, err := toNode(item, l, sconfig.JoinPath(path, strconv.Itoa(i)))
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			n.Content = append(n.Content, val)
		}
		return n, nil
	}

	n := &yaml.Node{}
	if err := n.Encode(v); err != nil {
		return nil, err
	}
	return n, nil
}

func comment(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = strings.TrimRight("# "+line, " ")
	}
	return strings.Join(out, "\n")
}

// normalize converts the map[any]any that YAML produces for non-string keys.
func normalize(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, item := range x {
			x[k] = normalize(item)
		}
		return x
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[fmt.Sprint(k)] = normalize(item)
		}
		return out
	case []any:
		for i, item := range x {
			x[i] = normalize(item)
		}
		return x
	}
	return v
}
