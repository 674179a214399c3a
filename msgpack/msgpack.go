// Package msgpack provides the MessagePack format.
package msgpack

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/zoobzio/sconfig"
)

// msgpackFormat implements sconfig.LayoutFormat for MessagePack.
type msgpackFormat struct{}

// New returns a MessagePack format. Maps are written with the type tag
// first, then in declared order when a layout is given and sorted otherwise,
// so equal trees encode to equal bytes.
func New() sconfig.LayoutFormat {
	return &msgpackFormat{}
}

// ContentType returns the MIME type for MessagePack.
func (f *msgpackFormat) ContentType() string {
	return "application/msgpack"
}

// Marshal encodes v as MessagePack.
func (f *msgpackFormat) Marshal(v any) ([]byte, error) {
	return f.MarshalLayout(v, nil)
}

// MarshalLayout encodes tree with map keys in layout order.
func (f *msgpackFormat) MarshalLayout(tree any, l *sconfig.Layout) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := encode(enc, tree, l, sconfig.RootPath); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encode(enc *msgpack.Encoder, v any, l *sconfig.Layout, path string) error {
	switch x := v.(type) {
	case map[string]any:
		if x == nil {
			return enc.EncodeNil()
		}
		if err := enc.EncodeMapLen(len(x)); err != nil {
			return err
		}
		for _, k := range l.Keys(path, x) {
			if err := enc.EncodeString(k); err != nil {
				return err
			}
			if err := encode(enc, x[k], l, sconfig.JoinPath(path, k)); err != nil {
				return err
			}
		}
		return nil

	case []any:
		if x == nil {
			return enc.EncodeNil()
		}
		if err := enc.EncodeArrayLen(len(x)); err != nil {
			return err
		}
		for i, item := range x {
			if err := encode(enc, item, l, sconfig.JoinPath(path, strconv.Itoa(i))); err != nil {
				return err
			}
		}
		return nil
	}
	return enc.Encode(v)
}

// Unmarshal decodes MessagePack data into v. Decoding into a *any yields
// plain data with int and float64 numbers.
func (f *msgpackFormat) Unmarshal(data []byte, v any) error {
	if err := msgpack.Unmarshal(data, v); err != nil {
		return err
	}
	if tree, ok := v.(*any); ok {
		*tree = normalize(*tree)
	}
	return nil
}

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
	case int8:
		return int(x)
	case int16:
		return int(x)
	case int32:
		return int(x)
	case int64:
		return int(x)
	case uint8:
		return int(x)
	case uint16:
		return int(x)
	case uint32:
		return int(x)
	case uint64:
		if x <= math.MaxInt64 {
			return int(x)
		}
		return x
	case float32:
		return float64(x)
	}
	return v
}
