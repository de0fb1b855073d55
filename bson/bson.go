// Package bson provides a BSON codec and a context over driver values.
//
// Context reads and writes the values the MongoDB driver produces when
// unmarshalling into bson.D: documents as bson.D (or bson.M), arrays as
// bson.A, and the driver's primitive types for binaries, dates, object ids
// and decimals.
package bson

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"sort"

	"github.com/zoobzio/serde"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNotDocument is returned when encoding a tree whose root is not a map.
var ErrNotDocument = errors.New("bson: root must be a document")

// Context implements serde.Context over driver values. nil is null.
//
// Object ids read as their hex string and dates as milliseconds since the
// epoch. Integers that fit 32 bits are written as int32 when their width
// allows it; integers beyond int64 are written as decimals.
type Context struct{}

// Values is the shared Context value.
var Values = Context{}

var _ serde.Context[any] = Context{}

func (Context) Kind(v any) serde.Kind {
	switch v.(type) {
	case nil, primitive.Null, primitive.Undefined:
		return serde.KindNull
	case string, primitive.Symbol, primitive.ObjectID:
		return serde.KindString
	case int32, int64, float64, primitive.Decimal128, primitive.DateTime:
		return serde.KindNumber
	case bool:
		return serde.KindBool
	case primitive.Binary:
		return serde.KindBlob
	case bson.A, []any:
		return serde.KindList
	case bson.D, bson.M, map[string]any:
		return serde.KindMap
	}
	return serde.KindUnknown
}

func shapeError(expected, actual serde.Kind) error {
	return &serde.ShapeError{Expected: expected, Actual: actual}
}

func (c Context) AsString(v any) serde.Result[string] {
	switch s := v.(type) {
	case string:
		return serde.Ok(s)
	case primitive.Symbol:
		return serde.Ok(string(s))
	case primitive.ObjectID:
		return serde.Ok(s.Hex())
	}
	return serde.Fail[string](shapeError(serde.KindString, c.Kind(v)))
}

func (c Context) AsNumber(v any) serde.Result[serde.Number] {
	switch n := v.(type) {
	case int32:
		return serde.Ok(serde.NewIntN(int64(n), 32))
	case int64:
		return serde.Ok(serde.NewInt(n))
	case float64:
		return serde.Ok(serde.NewFloat(n))
	case primitive.DateTime:
		return serde.Ok(serde.NewInt(int64(n)))
	case primitive.Decimal128:
		return decimalNumber(n)
	}
	return serde.Fail[serde.Number](shapeError(serde.KindNumber, c.Kind(v)))
}

func decimalNumber(d primitive.Decimal128) serde.Result[serde.Number] {
	if d.IsNaN() {
		return serde.Ok(serde.NewFloat(math.NaN()))
	}
	if inf := d.IsInf(); inf != 0 {
		return serde.Ok(serde.NewFloat(math.Inf(inf)))
	}
	bi, exp, err := d.BigInt()
	if err != nil {
		return serde.Fail[serde.Number](err)
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(abs(exp))), nil)
	if exp >= 0 {
		return serde.Ok(serde.NewBigInt(bi.Mul(bi, scale)))
	}
	f := new(big.Float).SetPrec(256).SetInt(bi)
	f.Quo(f, new(big.Float).SetPrec(256).SetInt(scale))
	return serde.Ok(serde.NewBigFloat(f))
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}

func (c Context) AsBool(v any) serde.Result[bool] {
	if b, ok := v.(bool); ok {
		return serde.Ok(b)
	}
	return serde.Fail[bool](shapeError(serde.KindBool, c.Kind(v)))
}

func (c Context) AsBlob(v any) serde.Result[[]byte] {
	if b, ok := v.(primitive.Binary); ok {
		return serde.Ok(bytes.Clone(b.Data))
	}
	return serde.Fail[[]byte](shapeError(serde.KindBlob, c.Kind(v)))
}

func (c Context) AsList(v any) serde.Result[[]any] {
	switch l := v.(type) {
	case bson.A:
		return serde.Ok([]any(l))
	case []any:
		return serde.Ok(l)
	}
	return serde.Fail[[]any](shapeError(serde.KindList, c.Kind(v)))
}

// Keys returns document keys in order. Unordered maps are returned sorted.
func (Context) Keys(v any) []string {
	switch m := v.(type) {
	case bson.D:
		keys := make([]string, len(m))
		for i, e := range m {
			keys[i] = e.Key
		}
		return keys
	case bson.M:
		return sortedKeys(m)
	case map[string]any:
		return sortedKeys(m)
	}
	return nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (Context) Get(v any, key string) (any, bool) {
	switch m := v.(type) {
	case bson.D:
		for _, e := range m {
			if e.Key == key {
				return e.Value, true
			}
		}
	case bson.M:
		item, ok := m[key]
		return item, ok
	case map[string]any:
		item, ok := m[key]
		return item, ok
	}
	return nil, false
}

// Set returns a document holding value under key. Documents are copied,
// maps are updated in place.
func (Context) Set(v any, key string, value any) any {
	switch m := v.(type) {
	case bson.D:
		out := make(bson.D, len(m), len(m)+1)
		copy(out, m)
		for i := range out {
			if out[i].Key == key {
				out[i].Value = value
				return out
			}
		}
		return append(out, bson.E{Key: key, Value: value})
	case bson.M:
		m[key] = value
	case map[string]any:
		m[key] = value
	}
	return v
}

func (Context) ToString(s string) any {
	return s
}

func (Context) ToNumber(n serde.Number) any {
	if !n.IsInteger() {
		if n.Kind() == serde.NumberBigFloat {
			if d, err := primitive.ParseDecimal128(n.String()); err == nil {
				return d
			}
		}
		return n.Float64()
	}
	if i, exact := n.Int64(); exact {
		if n.Bits() <= 32 && n.Bits() > 0 && i >= math.MinInt32 && i <= math.MaxInt32 {
			return int32(i)
		}
		return i
	}
	if d, ok := primitive.ParseDecimal128FromBigInt(n.BigInt(), 0); ok {
		return d
	}
	return n.Float64()
}

func (Context) ToBool(b bool) any {
	return b
}

func (Context) ToBlob(b []byte) any {
	return primitive.Binary{Subtype: bson.TypeBinaryGeneric, Data: bytes.Clone(b)}
}

func (Context) ToList(items []any) any {
	out := make(bson.A, len(items))
	copy(out, items)
	return out
}

func (Context) ToMap(entries []serde.Entry[any]) any {
	out := make(bson.D, len(entries))
	for i, e := range entries {
		out[i] = bson.E{Key: e.Key, Value: e.Value}
	}
	return out
}

func (Context) Null() any {
	return nil
}

// bsonCodec implements serde.Codec for BSON.
type bsonCodec struct{}

// New returns a BSON codec.
func New() serde.Codec {
	return &bsonCodec{}
}

// ContentType returns the MIME type for BSON.
func (c *bsonCodec) ContentType() string {
	return "application/bson"
}

// Encode writes v as one BSON document. The root of v must be a map.
func (c *bsonCodec) Encode(w io.Writer, v serde.Value) error {
	doc, ok := serde.Convert[serde.Value, any](serde.Canonical, Values, v).(bson.D)
	if !ok {
		return fmt.Errorf("%w: got %v", ErrNotDocument, serde.Canonical.Kind(v))
	}
	data, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Decode reads one BSON document from r.
func (c *bsonCodec) Decode(r io.Reader) (serde.Value, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var doc bson.D
	if err := bson.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return serde.Convert[any, serde.Value](Values, serde.Canonical, doc), nil
}
