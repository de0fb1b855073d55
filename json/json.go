// Package json provides a JSON codec for canonical trees.
//
// Maps keep their key order in both directions. Blobs are written as base64
// strings, which the Bytes serializer reads back through its string
// fallback.
package json

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/zoobzio/serde"
)

// ErrNonFinite is returned when encoding NaN or an infinity, which JSON cannot represent.
var ErrNonFinite = errors.New("json: non-finite number")

// Option configures the codec.
type Option func(*jsonCodec)

// WithIndent pretty-prints output using indent for each nesting level.
func WithIndent(indent string) Option {
	return func(c *jsonCodec) {
		c.indent = indent
	}
}

// jsonCodec implements serde.Codec for JSON.
type jsonCodec struct {
	indent string
}

// New returns a JSON codec.
func New(opts ...Option) serde.Codec {
	c := &jsonCodec{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ContentType returns the MIME type for JSON.
func (c *jsonCodec) ContentType() string {
	return "application/json"
}

// Encode writes v as one JSON document followed by a newline.
func (c *jsonCodec) Encode(w io.Writer, v serde.Value) error {
	var buf bytes.Buffer
	if err := writeValue(&buf, v); err != nil {
		return err
	}
	if c.indent != "" {
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, buf.Bytes(), "", c.indent); err != nil {
			return err
		}
		buf = pretty
	}
	buf.WriteByte('\n')
	_, err := w.Write(buf.Bytes())
	return err
}

func writeValue(buf *bytes.Buffer, v serde.Value) error {
	switch n := v.(type) {
	case nil:
		buf.WriteString("null")
	case *serde.Primitive:
		return writePrimitive(buf, n)
	case *serde.Blob:
		return writeString(buf, base64.StdEncoding.EncodeToString(n.Bytes()))
	case serde.Sequence:
		buf.WriteByte('[')
		for i, item := range n.Values() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeValue(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case serde.Mapping:
		buf.WriteByte('{')
		for i, key := range n.Keys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeString(buf, key); err != nil {
				return err
			}
			buf.WriteByte(':')
			item, _ := n.Get(key)
			if err := writeValue(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("json: unsupported node %T", v)
	}
	return nil
}

func writePrimitive(buf *bytes.Buffer, p *serde.Primitive) error {
	if s, ok := p.AsString(); ok {
		return writeString(buf, s)
	}
	if b, ok := p.AsBool(); ok {
		if b {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
		return nil
	}
	n, _ := p.AsNumber()
	return writeNumber(buf, n)
}

func writeNumber(buf *bytes.Buffer, n serde.Number) error {
	s := n.String()
	if n.IsNaN() || strings.Contains(s, "Inf") {
		return fmt.Errorf("%w: %s", ErrNonFinite, s)
	}
	buf.WriteString(s)
	// floats keep a fraction so they decode as floats again
	if !n.IsInteger() && !strings.ContainsAny(s, ".eE") {
		buf.WriteString(".0")
	}
	return nil
}

func writeString(buf *bytes.Buffer, s string) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(data)
	return nil
}

// Decode reads one JSON document from r.
func (c *jsonCodec) Decode(r io.Reader) (serde.Value, error) {
	dec := json.NewDecoder(bufio.NewReader(r))
	dec.UseNumber()
	v, err := readValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("json: trailing data after document")
	}
	return v, nil
}

func readValue(dec *json.Decoder) (serde.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	switch t := tok.(type) {
	case nil:
		return nil, nil
	case string:
		return serde.StringValue(t), nil
	case bool:
		return serde.BoolValue(t), nil
	case json.Number:
		n, err := serde.ParseNumber(t.String())
		if err != nil {
			return nil, err
		}
		return serde.NumberValue(n), nil
	case json.Delim:
		switch t {
		case '[':
			return readList(dec)
		case '{':
			return readObject(dec)
		}
	}
	return nil, fmt.Errorf("json: unexpected token %v", tok)
}

func readList(dec *json.Decoder) (serde.Value, error) {
	list := serde.NewList()
	for dec.More() {
		item, err := readValue(dec)
		if err != nil {
			return nil, err
		}
		list.Append(item)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return list, nil
}

func readObject(dec *json.Decoder) (serde.Value, error) {
	section := serde.NewSection()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("json: object key %v is not a string", tok)
		}
		item, err := readValue(dec)
		if err != nil {
			return nil, err
		}
		if item == nil {
			// a null member is an absent member
			continue
		}
		section.Set(key, item)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return section, nil
}
