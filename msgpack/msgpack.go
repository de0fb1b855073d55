// Package msgpack provides a MessagePack codec for canonical trees.
//
// Integer and float widths recorded on numbers are kept on the wire.
// Integers outside the int64 and uint64 ranges are written as decimal
// strings; the numeric serializers read them back through their string
// fallback.
package msgpack

import (
	"fmt"
	"io"
	"math"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
	"github.com/zoobzio/serde"
)

// msgpackCodec implements serde.Codec for MessagePack.
type msgpackCodec struct{}

// New returns a MessagePack codec.
func New() serde.Codec {
	return &msgpackCodec{}
}

// ContentType returns the MIME type for MessagePack.
func (c *msgpackCodec) ContentType() string {
	return "application/msgpack"
}

// Encode writes v as one MessagePack object.
func (c *msgpackCodec) Encode(w io.Writer, v serde.Value) error {
	enc := msgpack.GetEncoder()
	defer msgpack.PutEncoder(enc)
	enc.Reset(w)
	return encodeValue(enc, v)
}

func encodeValue(enc *msgpack.Encoder, v serde.Value) error {
	switch n := v.(type) {
	case nil:
		return enc.EncodeNil()
	case *serde.Primitive:
		if s, ok := n.AsString(); ok {
			return enc.EncodeString(s)
		}
		if b, ok := n.AsBool(); ok {
			return enc.EncodeBool(b)
		}
		num, _ := n.AsNumber()
		return encodeNumber(enc, num)
	case *serde.Blob:
		return enc.EncodeBytes(n.Bytes())
	case serde.Sequence:
		if err := enc.EncodeArrayLen(n.Len()); err != nil {
			return err
		}
		for _, item := range n.Values() {
			if err := encodeValue(enc, item); err != nil {
				return err
			}
		}
		return nil
	case serde.Mapping:
		if err := enc.EncodeMapLen(n.Len()); err != nil {
			return err
		}
		for _, key := range n.Keys() {
			if err := enc.EncodeString(key); err != nil {
				return err
			}
			item, _ := n.Get(key)
			if err := encodeValue(enc, item); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("msgpack: unsupported node %T", v)
}

func encodeNumber(enc *msgpack.Encoder, n serde.Number) error {
	if !n.IsInteger() {
		if n.Bits() == 32 {
			return enc.EncodeFloat32(float32(n.Float64()))
		}
		return enc.EncodeFloat64(n.Float64())
	}
	if i, exact := n.Int64(); exact {
		return encodeInt(enc, i, n.Bits())
	}
	bi := n.BigInt()
	if bi.Sign() > 0 && bi.IsUint64() {
		return enc.EncodeUint64(bi.Uint64())
	}
	return enc.EncodeString(bi.String())
}

// encodeInt writes i in the fixed width recorded on the number, or compactly
// when the width is the default.
func encodeInt(enc *msgpack.Encoder, i int64, bits int) error {
	switch bits {
	case 8:
		if i >= math.MinInt8 && i <= math.MaxInt8 {
			return enc.EncodeInt8(int8(i))
		}
	case 16:
		if i >= math.MinInt16 && i <= math.MaxInt16 {
			return enc.EncodeInt16(int16(i))
		}
	case 32:
		if i >= math.MinInt32 && i <= math.MaxInt32 {
			return enc.EncodeInt32(int32(i))
		}
	}
	return enc.EncodeInt(i)
}

// Decode reads one MessagePack object from r.
func (c *msgpackCodec) Decode(r io.Reader) (serde.Value, error) {
	dec := msgpack.GetDecoder()
	defer msgpack.PutDecoder(dec)
	dec.Reset(r)
	return decodeValue(dec)
}

func decodeValue(dec *msgpack.Decoder) (serde.Value, error) {
	code, err := dec.PeekCode()
	if err != nil {
		return nil, err
	}

	switch {
	case code == msgpcode.Nil:
		return nil, dec.DecodeNil()
	case code == msgpcode.False || code == msgpcode.True:
		b, err := dec.DecodeBool()
		if err != nil {
			return nil, err
		}
		return serde.BoolValue(b), nil
	case msgpcode.IsFixedNum(code):
		i, err := dec.DecodeInt64()
		if err != nil {
			return nil, err
		}
		return serde.IntValue(i), nil
	case code == msgpcode.Int8 || code == msgpcode.Int16 || code == msgpcode.Int32 || code == msgpcode.Int64:
		i, err := dec.DecodeInt64()
		if err != nil {
			return nil, err
		}
		return serde.NumberValue(serde.NewIntN(i, intWidth(code))), nil
	case code == msgpcode.Uint8 || code == msgpcode.Uint16 || code == msgpcode.Uint32 || code == msgpcode.Uint64:
		u, err := dec.DecodeUint64()
		if err != nil {
			return nil, err
		}
		if u <= math.MaxInt64 {
			return serde.NumberValue(serde.NewIntN(int64(u), intWidth(code))), nil
		}
		return serde.NumberValue(serde.NewUint(u)), nil
	case code == msgpcode.Float:
		f, err := dec.DecodeFloat32()
		if err != nil {
			return nil, err
		}
		return serde.NumberValue(serde.NewFloat32(f)), nil
	case code == msgpcode.Double:
		f, err := dec.DecodeFloat64()
		if err != nil {
			return nil, err
		}
		return serde.FloatValue(f), nil
	case msgpcode.IsString(code):
		s, err := dec.DecodeString()
		if err != nil {
			return nil, err
		}
		return serde.StringValue(s), nil
	case msgpcode.IsBin(code):
		b, err := dec.DecodeBytes()
		if err != nil {
			return nil, err
		}
		return serde.NewBlob(b), nil
	case msgpcode.IsFixedArray(code) || code == msgpcode.Array16 || code == msgpcode.Array32:
		return decodeList(dec)
	case msgpcode.IsFixedMap(code) || code == msgpcode.Map16 || code == msgpcode.Map32:
		return decodeMap(dec)
	}
	return nil, fmt.Errorf("msgpack: unsupported code 0x%x", code)
}

func intWidth(code byte) int {
	switch code {
	case msgpcode.Int8, msgpcode.Uint8:
		return 8
	case msgpcode.Int16, msgpcode.Uint16:
		return 16
	case msgpcode.Int32, msgpcode.Uint32:
		return 32
	}
	return 64
}

func decodeList(dec *msgpack.Decoder) (serde.Value, error) {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return nil, err
	}
	list := serde.NewList()
	for i := 0; i < n; i++ {
		item, err := decodeValue(dec)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		list.Append(item)
	}
	return list, nil
}

func decodeMap(dec *msgpack.Decoder) (serde.Value, error) {
	n, err := dec.DecodeMapLen()
	if err != nil {
		return nil, err
	}
	section := serde.NewSection()
	for i := 0; i < n; i++ {
		code, err := dec.PeekCode()
		if err != nil {
			return nil, err
		}
		if !msgpcode.IsString(code) {
			return nil, fmt.Errorf("msgpack: map key code 0x%x is not a string", code)
		}
		key, err := dec.DecodeString()
		if err != nil {
			return nil, err
		}
		item, err := decodeValue(dec)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		section.Set(key, item)
	}
	return section, nil
}
