package jsonx

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Node is a parsed JSON value. Generated decoders read object members by
// key; every accessor reports false when the key is absent, the value is
// null or it does not convert to the requested kind.
type Node struct {
	v any
}

// number is implemented by the json.Number types of encoding/json and
// goccy/go-json.
type number interface {
	String() string
	Int64() (int64, error)
	Float64() (float64, error)
}

// Parse parses one JSON document. Numbers keep their literal text so that
// 64-bit integers and decimals decode without loss.
func Parse(data []byte) (Node, error) {
	return ParseReader(bytes.NewReader(data))
}

// ParseReader parses one JSON document from r.
func ParseReader(r io.Reader) (Node, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return Node{}, fmt.Errorf("jsonx: parse: %w", err)
	}
	return Node{v: v}, nil
}

// Unmarshal parses data and decodes it with decode.
func Unmarshal[T any](data []byte, decode func(Node) T) (T, error) {
	n, err := Parse(data)
	if err != nil {
		var zero T
		return zero, err
	}
	return decode(n), nil
}

// NewNode wraps a value produced by a JSON decoder (maps, slices, strings,
// numbers, booleans and nil).
func NewNode(v any) Node { return Node{v: v} }

// Value returns the underlying value.
func (n Node) Value() any { return n.v }

// IsNull reports whether the node is null or missing.
func (n Node) IsNull() bool { return n.v == nil }

// IsObject reports whether the node is an object.
func (n Node) IsObject() bool {
	_, ok := n.v.(map[string]any)
	return ok
}

// Has reports whether the object has a non-null member key.
func (n Node) Has(key string) bool {
	_, ok := n.Get(key)
	return ok
}

// Get returns the member key of an object node.
func (n Node) Get(key string) (Node, bool) {
	m, ok := n.v.(map[string]any)
	if !ok {
		return Node{}, false
	}
	v, ok := m[key]
	if !ok || v == nil {
		return Node{}, false
	}
	return Node{v: v}, true
}

// Keys returns the member names of an object node in sorted order.
func (n Node) Keys() []string {
	m, _ := n.v.(map[string]any)
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Object returns the member key when it is an object.
func (n Node) Object(key string) (Node, bool) {
	v, ok := n.Get(key)
	if !ok || !v.IsObject() {
		return Node{}, false
	}
	return v, true
}

// Array returns the elements of the member key when it is an array.
func (n Node) Array(key string) ([]Node, bool) {
	v, ok := n.Get(key)
	if !ok {
		return nil, false
	}
	return v.AsArray()
}

// Bool reads the member key as a boolean.
func (n Node) Bool(key string) (bool, bool) { return n.member(key).AsBool() }

// Int reads the member key as an int.
func (n Node) Int(key string) (int, bool) { return n.member(key).AsInt() }

// Int32 reads the member key as a 32-bit integer.
func (n Node) Int32(key string) (int32, bool) { return n.member(key).AsInt32() }

// Int64 reads the member key as a 64-bit integer.
func (n Node) Int64(key string) (int64, bool) { return n.member(key).AsInt64() }

// Float32 reads the member key as a single precision number.
func (n Node) Float32(key string) (float32, bool) { return n.member(key).AsFloat32() }

// Float64 reads the member key as a double precision number.
func (n Node) Float64(key string) (float64, bool) { return n.member(key).AsFloat64() }

// Decimal reads the member key as a decimal.
func (n Node) Decimal(key string) (decimal.Decimal, bool) { return n.member(key).AsDecimal() }

// String reads the member key as a string.
func (n Node) String(key string) (string, bool) { return n.member(key).AsString() }

// Time reads the member key as a timestamp.
func (n Node) Time(key string) (time.Time, bool) { return n.member(key).AsTime() }

// UUID reads the member key as a UUID.
func (n Node) UUID(key string) (uuid.UUID, bool) { return n.member(key).AsUUID() }

func (n Node) member(key string) Node {
	v, _ := n.Get(key)
	return v
}

// AsArray returns the elements of an array node.
func (n Node) AsArray() ([]Node, bool) {
	a, ok := n.v.([]any)
	if !ok {
		return nil, false
	}
	nodes := make([]Node, len(a))
	for i, v := range a {
		nodes[i] = Node{v: v}
	}
	return nodes, true
}

// AsBool reads a boolean node.
func (n Node) AsBool() (bool, bool) {
	b, ok := n.v.(bool)
	return b, ok
}

// AsInt64 reads an integral number node.
func (n Node) AsInt64() (int64, bool) {
	switch v := n.v.(type) {
	case number:
		if i, err := v.Int64(); err == nil {
			return i, true
		}
		f, err := v.Float64()
		if err != nil || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, false
		}
		return int64(f), true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int64(v), true
	}
	return 0, false
}

// AsInt reads an integral number node as an int.
func (n Node) AsInt() (int, bool) {
	i, ok := n.AsInt64()
	if !ok || int64(int(i)) != i {
		return 0, false
	}
	return int(i), true
}

// AsInt32 reads an integral number node within the 32-bit range.
func (n Node) AsInt32() (int32, bool) {
	i, ok := n.AsInt64()
	if !ok || i < math.MinInt32 || i > math.MaxInt32 {
		return 0, false
	}
	return int32(i), true
}

// AsFloat64 reads a number node.
func (n Node) AsFloat64() (float64, bool) {
	switch v := n.v.(type) {
	case number:
		f, err := v.Float64()
		return f, err == nil
	case float64:
		return v, true
	}
	return 0, false
}

// AsFloat32 reads a number node as a single precision number.
func (n Node) AsFloat32() (float32, bool) {
	f, ok := n.AsFloat64()
	return float32(f), ok
}

// AsDecimal reads a number node, or a string holding a number.
func (n Node) AsDecimal() (decimal.Decimal, bool) {
	switch v := n.v.(type) {
	case number:
		d, err := decimal.NewFromString(v.String())
		return d, err == nil
	case float64:
		return decimal.NewFromFloat(v), true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		return d, err == nil
	}
	return decimal.Decimal{}, false
}

// AsString reads a string node.
func (n Node) AsString() (string, bool) {
	s, ok := n.v.(string)
	return s, ok
}

// AsTime reads a string node holding an RFC 3339 timestamp.
func (n Node) AsTime() (time.Time, bool) {
	s, ok := n.v.(string)
	if !ok {
		return time.Time{}, false
	}
	for _, layout := range []string{TimeLayout, time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// AsUUID reads a string node holding a UUID.
func (n Node) AsUUID() (uuid.UUID, bool) {
	s, ok := n.v.(string)
	if !ok {
		return uuid.Nil, false
	}
	u, err := uuid.Parse(s)
	return u, err == nil
}
