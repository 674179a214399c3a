// Package bson provides the BSON format. The root of a tree must be a map.
package bson

import (
	"strconv"
	"time"

	"github.com/zoobzio/sconfig"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// bsonFormat implements sconfig.LayoutFormat for BSON.
type bsonFormat struct{}

// New returns a BSON format.
func New() sconfig.LayoutFormat {
	return &bsonFormat{}
}

// ContentType returns the MIME type for BSON.
func (f *bsonFormat) ContentType() string {
	return "application/bson"
}

// Marshal encodes v as BSON with the type tag first and other keys sorted.
func (f *bsonFormat) Marshal(v any) ([]byte, error) {
	return f.MarshalLayout(v, nil)
}

// MarshalLayout encodes tree as an ordered document so fields keep their
// declared order.
func (f *bsonFormat) MarshalLayout(tree any, l *sconfig.Layout) ([]byte, error) {
	return bson.Marshal(ordered(tree, l, sconfig.RootPath))
}

// Unmarshal decodes BSON data into v. Decoding into a *any yields plain
// data rather than driver types.
func (f *bsonFormat) Unmarshal(data []byte, v any) error {
	tree, ok := v.(*any)
	if !ok {
		return bson.Unmarshal(data, v)
	}
	var doc bson.D
	if err := bson.Unmarshal(data, &doc); err != nil {
		return err
	}
	*tree = normalize(doc)
	return nil
}

func ordered(v any, l *sconfig.Layout, path string) any {
	switch x := v.(type) {
	case map[string]any:
		doc := make(bson.D, 0, len(x))
		for _, k := range l.Keys(path, x) {
			doc = append(doc, bson.E{Key: k, Value: ordered(x[k], l, sconfig.JoinPath(path, k))})
		}
		return doc
	case []any:
		arr := make(bson.A, len(x))
		for i, item := range x {
			arr[i] = ordered(item, l, sconfig.JoinPath(path, strconv.Itoa(i)))
		}
		return arr
	}
	return v
}

func normalize(v any) any {
	switch x := v.(type) {
	case primitive.D:
		out := make(map[string]any, len(x))
		for _, e := range x {
			out[e.Key] = normalize(e.Value)
		}
		return out
	case primitive.M:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = normalize(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = normalize(item)
		}
		return out
	case primitive.A:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = normalize(item)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = normalize(item)
		}
		return out
	case int32:
		return int(x)
	case int64:
		return int(x)
	case primitive.Binary:
		return x.Data
	case primitive.DateTime:
		return x.Time().UTC().Format(time.RFC3339Nano)
	}
	return v
}
