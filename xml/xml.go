// Package xml provides an XML codec for canonical trees.
//
// Every node is one element carrying a type attribute. The root and list
// items are <value> elements; map entries are <entry> elements with a key
// attribute:
//
//	<value type="map">
//	  <entry key="name" type="string">test</entry>
//	  <entry key="ports" type="list">
//	    <value type="number">80</value>
//	  </entry>
//	</value>
//
// Numbers may carry a bits attribute recording their width. Blobs hold
// base64 text.
package xml

import (
	"encoding/base64"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/zoobzio/serde"
)

const (
	elemValue = "value"
	elemEntry = "entry"

	attrType = "type"
	attrKey  = "key"
	attrBits = "bits"
)

// Option configures the codec.
type Option func(*xmlCodec)

// WithIndent pretty-prints output using indent for each nesting level.
func WithIndent(indent string) Option {
	return func(c *xmlCodec) {
		c.indent = indent
	}
}

// xmlCodec implements serde.Codec for XML.
type xmlCodec struct {
	indent string
}

// New returns an XML codec.
func New(opts ...Option) serde.Codec {
	c := &xmlCodec{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ContentType returns the MIME type for XML.
func (c *xmlCodec) ContentType() string {
	return "application/xml"
}

// Encode writes v as a single <value> element.
func (c *xmlCodec) Encode(w io.Writer, v serde.Value) error {
	enc := xml.NewEncoder(w)
	if c.indent != "" {
		enc.Indent("", c.indent)
	}
	if err := encodeNode(enc, xml.StartElement{Name: xml.Name{Local: elemValue}}, v); err != nil {
		return err
	}
	return enc.Close()
}

func encodeNode(enc *xml.Encoder, start xml.StartElement, v serde.Value) error {
	typ := serde.Canonical.Kind(v).String()
	start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: attrType}, Value: typ})

	var text string
	switch n := v.(type) {
	case nil:
	case *serde.Primitive:
		switch {
		case n.Kind() == serde.KindString:
			text, _ = n.AsString()
		case n.Kind() == serde.KindBool:
			b, _ := n.AsBool()
			text = strconv.FormatBool(b)
		default:
			num, _ := n.AsNumber()
			text = num.String()
			if bits := num.Bits(); bits > 0 && bits < 64 {
				start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: attrBits}, Value: strconv.Itoa(bits)})
			}
			if !num.IsInteger() && !strings.ContainsAny(text, ".eEIN") {
				text += ".0"
			}
		}
	case *serde.Blob:
		text = base64.StdEncoding.EncodeToString(n.Bytes())
	case serde.Sequence:
		if err := enc.EncodeToken(start); err != nil {
			return err
		}
		for _, item := range n.Values() {
			if err := encodeNode(enc, xml.StartElement{Name: xml.Name{Local: elemValue}}, item); err != nil {
				return err
			}
		}
		return enc.EncodeToken(start.End())
	case serde.Mapping:
		if err := enc.EncodeToken(start); err != nil {
			return err
		}
		for _, key := range n.Keys() {
			item, _ := n.Get(key)
			entry := xml.StartElement{
				Name: xml.Name{Local: elemEntry},
				Attr: []xml.Attr{{Name: xml.Name{Local: attrKey}, Value: key}},
			}
			if err := encodeNode(enc, entry, item); err != nil {
				return err
			}
		}
		return enc.EncodeToken(start.End())
	default:
		return fmt.Errorf("xml: unsupported node %T", v)
	}

	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if text != "" {
		if err := enc.EncodeToken(xml.CharData(text)); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

// Decode reads the first element from r.
func (c *xmlCodec) Decode(r io.Reader) (serde.Value, error) {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}
		if start, ok := tok.(xml.StartElement); ok {
			return decodeNode(dec, start)
		}
	}
}

func attr(start xml.StartElement, name string) (string, bool) {
	for _, a := range start.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func decodeNode(dec *xml.Decoder, start xml.StartElement) (serde.Value, error) {
	typ, _ := attr(start, attrType)
	switch typ {
	case "list":
		return decodeList(dec)
	case "map":
		return decodeMap(dec)
	}

	text, err := readText(dec)
	if err != nil {
		return nil, err
	}

	switch typ {
	case "null":
		return nil, nil
	case "string", "":
		return serde.StringValue(text), nil
	case "boolean":
		b, err := strconv.ParseBool(strings.TrimSpace(text))
		if err != nil {
			return nil, err
		}
		return serde.BoolValue(b), nil
	case "number":
		return decodeNumber(start, strings.TrimSpace(text))
	case "blob":
		b, err := base64.StdEncoding.DecodeString(strings.TrimSpace(text))
		if err != nil {
			return nil, err
		}
		return serde.NewBlob(b), nil
	}
	return nil, fmt.Errorf("xml: unknown node type %q", typ)
}

func decodeNumber(start xml.StartElement, text string) (serde.Value, error) {
	n, err := serde.ParseNumber(text)
	if err != nil {
		return nil, err
	}
	if s, ok := attr(start, attrBits); ok {
		bits, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("xml: invalid bits %q", s)
		}
		switch {
		case n.IsInteger():
			if i, exact := n.Int64(); exact {
				n = serde.NewIntN(i, bits)
			}
		case bits == 32:
			n = serde.NewFloat32(float32(n.Float64()))
		}
	}
	return serde.NumberValue(n), nil
}

// readText collects character data up to the end of the current element.
func readText(dec *xml.Decoder) (string, error) {
	var sb strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.StartElement:
			return "", fmt.Errorf("xml: unexpected element <%s> in scalar", t.Name.Local)
		case xml.EndElement:
			return sb.String(), nil
		}
	}
}

func decodeList(dec *xml.Decoder) (serde.Value, error) {
	list := serde.NewList()
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			item, err := decodeNode(dec, t)
			if err != nil {
				return nil, err
			}
			list.Append(item)
		case xml.EndElement:
			return list, nil
		}
	}
}

func decodeMap(dec *xml.Decoder) (serde.Value, error) {
	section := serde.NewSection()
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			key, ok := attr(t, attrKey)
			if !ok {
				return nil, fmt.Errorf("xml: <%s> in map has no key", t.Name.Local)
			}
			item, err := decodeNode(dec, t)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			section.Set(key, item)
		case xml.EndElement:
			return section, nil
		}
	}
}
