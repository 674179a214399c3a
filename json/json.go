// Package json provides the JSON format. Maps are written with the type tag
// first and the remaining keys in declared order when a layout is given,
// sorted otherwise.
package json

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"

	"github.com/zoobzio/sconfig"
)

// jsonFormat implements sconfig.LayoutFormat for JSON.
type jsonFormat struct {
	indent string
}

// New returns a JSON format writing indented output.
func New() sconfig.LayoutFormat {
	return &jsonFormat{indent: "  "}
}

// Compact returns a JSON format writing single-line output.
func Compact() sconfig.LayoutFormat {
	return &jsonFormat{}
}

// ContentType returns the MIME type for JSON.
func (f *jsonFormat) ContentType() string {
	return "application/json"
}

// Marshal encodes v as JSON.
func (f *jsonFormat) Marshal(v any) ([]byte, error) {
	return f.MarshalLayout(v, nil)
}

// MarshalLayout encodes tree with keys in layout order.
func (f *jsonFormat) MarshalLayout(tree any, l *sconfig.Layout) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode(&buf, tree, l, sconfig.RootPath); err != nil {
		return nil, err
	}
	if f.indent == "" {
		return buf.Bytes(), nil
	}

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", f.indent); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

func encode(buf *bytes.Buffer, v any, l *sconfig.Layout, path string) error {
	switch x := v.(type) {
	case map[string]any:
		if x == nil {
			buf.WriteString("null")
			return nil
		}
		buf.WriteByte('{')
		for i, k := range l.Keys(path, x) {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := encode(buf, x[k], l, sconfig.JoinPath(path, k)); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil

	case []any:
		if x == nil {
			buf.WriteString("null")
			return nil
		}
		buf.WriteByte('[')
		for i, item := range x {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encode(buf, item, l, sconfig.JoinPath(path, strconv.Itoa(i))); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(data)
	return nil
}

// Unmarshal decodes JSON data into v. Decoding into a *any keeps whole
// numbers as int instead of float64.
func (f *jsonFormat) Unmarshal(data []byte, v any) error {
	tree, ok := v.(*any)
	if !ok {
		return json.Unmarshal(data, v)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(tree); err != nil {
		return err
	}
	*tree = normalize(*tree)
	return nil
}

func normalize(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, item := range x {
			x[k] = normalize(item)
		}
		return x
	case []any:
		for i, item := range x {
			x[i] = normalize(item)
		}
		return x
	case json.Number:
		if n, err := x.Int64(); err == nil && n >= math.MinInt && n <= math.MaxInt {
			return int(n)
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	}
	return v
}
