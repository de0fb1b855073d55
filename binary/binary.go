// Package binary provides a compact binary codec for canonical trees.
//
// A stream starts with the ASCII header "MDCB" and one compression byte,
// followed by the (possibly compressed) node stream. Each node is a type
// byte and a big-endian payload; lengths and counts are 32-bit. Integer
// and float widths are preserved. Arbitrary precision numbers are stored as
// decimal text.
package binary

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zstd"
	"github.com/zoobzio/serde"
)

// Header opens every encoded stream.
const Header = "MDCB"

// Compression selects how the node stream is compressed.
type Compression byte

// Compression schemes.
const (
	None Compression = iota
	Deflate
	Zstd
)

func (c Compression) String() string {
	switch c {
	case None:
		return "none"
	case Deflate:
		return "deflate"
	case Zstd:
		return "zstd"
	}
	return fmt.Sprintf("compression(%d)", byte(c))
}

// Errors returned while decoding.
var (
	ErrHeader      = errors.New("binary: missing or invalid header")
	ErrCompression = errors.New("binary: unknown compression")
	ErrNodeType    = errors.New("binary: unknown node type")
)

// node type bytes
const (
	typeNone byte = iota
	typeInt32
	typeInt64
	typeInt16
	typeInt8
	typeFloat32
	typeFloat64
	typeDecimal
	typeString
	typeBool
	typeList
	typeSection
	typeBlob
)

// Option configures the codec.
type Option func(*binaryCodec)

// WithCompression sets the compression scheme. The default is None.
func WithCompression(c Compression) Option {
	return func(b *binaryCodec) {
		b.compression = c
	}
}

// WithLevel sets the compression level: zlib levels 1-9 for Deflate, zstd
// levels for Zstd. Negative values select the scheme's default.
func WithLevel(level int) Option {
	return func(b *binaryCodec) {
		b.level = level
	}
}

// binaryCodec implements serde.Codec for the binary format.
type binaryCodec struct {
	compression Compression
	level       int
}

// New returns a binary codec.
func New(opts ...Option) serde.Codec {
	c := &binaryCodec{level: -1}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ContentType returns the MIME type for the binary format.
func (c *binaryCodec) ContentType() string {
	return "application/x-mdcb"
}

// Encode writes the header and v to w.
func (c *binaryCodec) Encode(w io.Writer, v serde.Value) error {
	var body bytes.Buffer
	if err := encodeValue(&body, v); err != nil {
		return err
	}

	if _, err := io.WriteString(w, Header); err != nil {
		return err
	}
	if _, err := w.Write([]byte{byte(c.compression)}); err != nil {
		return err
	}

	out, err := c.compressor(w)
	if err != nil {
		return err
	}
	if _, err := out.Write(body.Bytes()); err != nil {
		return err
	}
	return out.Close()
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

func (c *binaryCodec) compressor(w io.Writer) (io.WriteCloser, error) {
	switch c.compression {
	case None:
		return nopCloser{w}, nil
	case Deflate:
		level := c.level
		if level < 0 {
			level = flate.DefaultCompression
		}
		return flate.NewWriter(w, level)
	case Zstd:
		level := zstd.SpeedDefault
		if c.level >= 0 {
			level = zstd.EncoderLevelFromZstd(c.level)
		}
		return zstd.NewWriter(w, zstd.WithEncoderLevel(level))
	}
	return nil, fmt.Errorf("%w: %v", ErrCompression, c.compression)
}

func encodeValue(buf *bytes.Buffer, v serde.Value) error {
	switch n := v.(type) {
	case nil:
		buf.WriteByte(typeNone)
	case *serde.Primitive:
		if s, ok := n.AsString(); ok {
			buf.WriteByte(typeString)
			return writeString(buf, s)
		}
		if b, ok := n.AsBool(); ok {
			buf.WriteByte(typeBool)
			if b {
				buf.WriteByte(1)
			} else {
				buf.WriteByte(0)
			}
			return nil
		}
		num, _ := n.AsNumber()
		return encodeNumber(buf, num)
	case *serde.Blob:
		buf.WriteByte(typeBlob)
		return writeBytes(buf, n.Bytes())
	case serde.Sequence:
		buf.WriteByte(typeList)
		if err := writeLen(buf, n.Len()); err != nil {
			return err
		}
		for _, item := range n.Values() {
			if err := encodeValue(buf, item); err != nil {
				return err
			}
		}
	case serde.Mapping:
		buf.WriteByte(typeSection)
		if err := writeLen(buf, n.Len()); err != nil {
			return err
		}
		for _, key := range n.Keys() {
			if err := writeString(buf, key); err != nil {
				return err
			}
			item, _ := n.Get(key)
			if err := encodeValue(buf, item); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("binary: unsupported node %T", v)
	}
	return nil
}

func encodeNumber(buf *bytes.Buffer, n serde.Number) error {
	switch n.Kind() {
	case serde.NumberBigInt, serde.NumberBigFloat:
		buf.WriteByte(typeDecimal)
		return writeString(buf, n.String())
	case serde.NumberFloat:
		if n.Bits() == 32 {
			buf.WriteByte(typeFloat32)
			buf.Write(binary.BigEndian.AppendUint32(nil, math.Float32bits(float32(n.Float64()))))
			return nil
		}
		buf.WriteByte(typeFloat64)
		buf.Write(binary.BigEndian.AppendUint64(nil, math.Float64bits(n.Float64())))
		return nil
	}

	i, _ := n.Int64()
	switch {
	case n.Bits() == 8 && i >= math.MinInt8 && i <= math.MaxInt8:
		buf.WriteByte(typeInt8)
		buf.WriteByte(byte(int8(i)))
	case n.Bits() == 16 && i >= math.MinInt16 && i <= math.MaxInt16:
		buf.WriteByte(typeInt16)
		buf.Write(binary.BigEndian.AppendUint16(nil, uint16(int16(i))))
	case n.Bits() == 32 && i >= math.MinInt32 && i <= math.MaxInt32:
		buf.WriteByte(typeInt32)
		buf.Write(binary.BigEndian.AppendUint32(nil, uint32(int32(i))))
	default:
		buf.WriteByte(typeInt64)
		buf.Write(binary.BigEndian.AppendUint64(nil, uint64(i)))
	}
	return nil
}

func writeLen(buf *bytes.Buffer, n int) error {
	if n > math.MaxInt32 {
		return fmt.Errorf("binary: length %d exceeds 32 bits", n)
	}
	buf.Write(binary.BigEndian.AppendUint32(nil, uint32(n)))
	return nil
}

func writeBytes(buf *bytes.Buffer, b []byte) error {
	if err := writeLen(buf, len(b)); err != nil {
		return err
	}
	buf.Write(b)
	return nil
}

func writeString(buf *bytes.Buffer, s string) error {
	return writeBytes(buf, []byte(s))
}

// Decode reads the header and one tree from r.
func (c *binaryCodec) Decode(r io.Reader) (serde.Value, error) {
	head := make([]byte, len(Header)+1)
	if _, err := io.ReadFull(r, head); err != nil || string(head[:len(Header)]) != Header {
		return nil, ErrHeader
	}

	in, closeFn, err := decompressor(r, Compression(head[len(Header)]))
	if err != nil {
		return nil, err
	}
	defer closeFn()

	return decodeValue(bufio.NewReader(in))
}

func decompressor(r io.Reader, c Compression) (io.Reader, func(), error) {
	switch c {
	case None:
		return r, func() {}, nil
	case Deflate:
		fr := flate.NewReader(r)
		return fr, func() { fr.Close() }, nil
	case Zstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return zr, zr.Close, nil
	}
	return nil, nil, fmt.Errorf("%w: %d", ErrCompression, byte(c))
}

func decodeValue(r *bufio.Reader) (serde.Value, error) {
	t, err := r.ReadByte()
	if err != nil {
		return nil, unexpected(err)
	}

	switch t {
	case typeNone:
		return nil, nil
	case typeInt8:
		b, err := r.ReadByte()
		if err != nil {
			return nil, unexpected(err)
		}
		return serde.NumberValue(serde.NewIntN(int64(int8(b)), 8)), nil
	case typeInt16:
		b, err := readN(r, 2)
		if err != nil {
			return nil, err
		}
		return serde.NumberValue(serde.NewIntN(int64(int16(binary.BigEndian.Uint16(b))), 16)), nil
	case typeInt32:
		b, err := readN(r, 4)
		if err != nil {
			return nil, err
		}
		return serde.NumberValue(serde.NewIntN(int64(int32(binary.BigEndian.Uint32(b))), 32)), nil
	case typeInt64:
		b, err := readN(r, 8)
		if err != nil {
			return nil, err
		}
		return serde.IntValue(int64(binary.BigEndian.Uint64(b))), nil
	case typeFloat32:
		b, err := readN(r, 4)
		if err != nil {
			return nil, err
		}
		return serde.NumberValue(serde.NewFloat32(math.Float32frombits(binary.BigEndian.Uint32(b)))), nil
	case typeFloat64:
		b, err := readN(r, 8)
		if err != nil {
			return nil, err
		}
		return serde.FloatValue(math.Float64frombits(binary.BigEndian.Uint64(b))), nil
	case typeDecimal:
		s, err := readString(r)
		if err != nil {
			return nil, err
		}
		n, err := parseDecimal(s)
		if err != nil {
			return nil, err
		}
		return serde.NumberValue(n), nil
	case typeString:
		s, err := readString(r)
		if err != nil {
			return nil, err
		}
		return serde.StringValue(s), nil
	case typeBool:
		b, err := r.ReadByte()
		if err != nil {
			return nil, unexpected(err)
		}
		return serde.BoolValue(b != 0), nil
	case typeBlob:
		b, err := readBytes(r)
		if err != nil {
			return nil, err
		}
		return serde.NewBlob(b), nil
	case typeList:
		n, err := readLen(r)
		if err != nil {
			return nil, err
		}
		list := serde.NewList()
		for i := 0; i < n; i++ {
			item, err := decodeValue(r)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			list.Append(item)
		}
		return list, nil
	case typeSection:
		n, err := readLen(r)
		if err != nil {
			return nil, err
		}
		section := serde.NewSection()
		for i := 0; i < n; i++ {
			key, err := readString(r)
			if err != nil {
				return nil, err
			}
			item, err := decodeValue(r)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			section.Set(key, item)
		}
		return section, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrNodeType, t)
}

func parseDecimal(s string) (serde.Number, error) {
	if bi, ok := new(big.Int).SetString(s, 10); ok {
		return serde.NewBigInt(bi), nil
	}
	bf, _, err := big.ParseFloat(s, 10, 256, big.ToNearestEven)
	if err != nil {
		return serde.Number{}, fmt.Errorf("binary: invalid decimal %q", s)
	}
	return serde.NewBigFloat(bf), nil
}

func unexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

func readN(r *bufio.Reader, n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, unexpected(err)
	}
	return b, nil
}

func readLen(r *bufio.Reader) (int, error) {
	b, err := readN(r, 4)
	if err != nil {
		return 0, err
	}
	n := binary.BigEndian.Uint32(b)
	if n > math.MaxInt32 {
		return 0, fmt.Errorf("binary: negative length")
	}
	return int(n), nil
}

func readBytes(r *bufio.Reader) ([]byte, error) {
	n, err := readLen(r)
	if err != nil {
		return nil, err
	}
	// a corrupt length must not force a large allocation up front
	var buf bytes.Buffer
	if _, err := io.CopyN(&buf, r, int64(n)); err != nil {
		return nil, unexpected(err)
	}
	return buf.Bytes(), nil
}

func readString(r *bufio.Reader) (string, error) {
	b, err := readBytes(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
