// Package yaml provides a YAML codec and a context over yaml.v3 node trees.
//
// Context lets serializers read and write *yaml.Node directly, so documents
// keep their comments and key order. The codec converts between node trees
// and canonical trees.
package yaml

import (
	"encoding/base64"
	"errors"
	"io"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/zoobzio/serde"
	"gopkg.in/yaml.v3"
)

// Node tags.
const (
	tagNull   = "!!null"
	tagBool   = "!!bool"
	tagInt    = "!!int"
	tagFloat  = "!!float"
	tagString = "!!str"
	tagBinary = "!!binary"
	tagSeq    = "!!seq"
	tagMap    = "!!map"
)

// Metadata keys understood by Context.
const (
	MetaHeadComment = "head_comment"
	MetaLineComment = "line_comment"
	MetaFootComment = "foot_comment"
)

// Context implements serde.Context over *yaml.Node. A nil node is null.
// Document and alias nodes are read through to their content.
type Context struct{}

// Nodes is the shared Context value.
var Nodes = Context{}

var (
	_ serde.Context[*yaml.Node]     = Context{}
	_ serde.MetaContext[*yaml.Node] = Context{}
)

func resolve(n *yaml.Node) *yaml.Node {
	for n != nil {
		switch {
		case n.Kind == yaml.DocumentNode && len(n.Content) > 0:
			n = n.Content[0]
		case n.Kind == yaml.AliasNode && n.Alias != nil:
			n = n.Alias
		default:
			return n
		}
	}
	return nil
}

func (Context) Kind(v *yaml.Node) serde.Kind {
	n := resolve(v)
	if n == nil {
		return serde.KindNull
	}
	switch n.Kind {
	case yaml.SequenceNode:
		return serde.KindList
	case yaml.MappingNode:
		return serde.KindMap
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case tagNull:
			return serde.KindNull
		case tagBool:
			return serde.KindBool
		case tagInt, tagFloat:
			return serde.KindNumber
		case tagBinary:
			return serde.KindBlob
		}
		return serde.KindString
	case yaml.DocumentNode:
		return serde.KindNull
	}
	return serde.KindUnknown
}

func shapeError(expected, actual serde.Kind) error {
	return &serde.ShapeError{Expected: expected, Actual: actual}
}

func (c Context) AsString(v *yaml.Node) serde.Result[string] {
	if k := c.Kind(v); k != serde.KindString {
		return serde.Fail[string](shapeError(serde.KindString, k))
	}
	return serde.Ok(resolve(v).Value)
}

func (c Context) AsNumber(v *yaml.Node) serde.Result[serde.Number] {
	if k := c.Kind(v); k != serde.KindNumber {
		return serde.Fail[serde.Number](shapeError(serde.KindNumber, k))
	}
	n := resolve(v)
	if n.ShortTag() == tagInt {
		var i int64
		if err := n.Decode(&i); err == nil {
			return serde.Ok(serde.NewInt(i))
		}
		bi, ok := new(big.Int).SetString(strings.ReplaceAll(n.Value, "_", ""), 0)
		if !ok {
			return serde.Failf[serde.Number]("yaml: invalid integer %q", n.Value)
		}
		return serde.Ok(serde.NewBigInt(bi))
	}
	var f float64
	if err := n.Decode(&f); err != nil {
		num, perr := serde.ParseNumber(n.Value)
		if perr != nil {
			return serde.Fail[serde.Number](err)
		}
		return serde.Ok(num)
	}
	return serde.Ok(serde.NewFloat(f))
}

func (c Context) AsBool(v *yaml.Node) serde.Result[bool] {
	if k := c.Kind(v); k != serde.KindBool {
		return serde.Fail[bool](shapeError(serde.KindBool, k))
	}
	var b bool
	if err := resolve(v).Decode(&b); err != nil {
		return serde.Fail[bool](err)
	}
	return serde.Ok(b)
}

func (c Context) AsBlob(v *yaml.Node) serde.Result[[]byte] {
	if k := c.Kind(v); k != serde.KindBlob {
		return serde.Fail[[]byte](shapeError(serde.KindBlob, k))
	}
	data, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(resolve(v).Value), ""))
	if err != nil {
		return serde.Fail[[]byte](err)
	}
	return serde.Ok(data)
}

func (c Context) AsList(v *yaml.Node) serde.Result[[]*yaml.Node] {
	if k := c.Kind(v); k != serde.KindList {
		return serde.Fail[[]*yaml.Node](shapeError(serde.KindList, k))
	}
	return serde.Ok(resolve(v).Content)
}

func (c Context) Keys(v *yaml.Node) []string {
	if c.Kind(v) != serde.KindMap {
		return nil
	}
	content := resolve(v).Content
	keys := make([]string, 0, len(content)/2)
	for i := 0; i+1 < len(content); i += 2 {
		keys = append(keys, content[i].Value)
	}
	return keys
}

func (c Context) Get(v *yaml.Node, key string) (*yaml.Node, bool) {
	if c.Kind(v) != serde.KindMap {
		return nil, false
	}
	content := resolve(v).Content
	for i := 0; i+1 < len(content); i += 2 {
		if content[i].Value == key {
			return content[i+1], true
		}
	}
	return nil, false
}

// Set replaces the value of key in place, or appends the key.
func (c Context) Set(v *yaml.Node, key string, value *yaml.Node) *yaml.Node {
	if c.Kind(v) != serde.KindMap {
		return v
	}
	if value == nil {
		value = c.Null()
	}
	n := resolve(v)
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			n.Content[i+1] = value
			return v
		}
	}
	n.Content = append(n.Content, scalar(tagString, key), value)
	return v
}

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func (Context) ToString(s string) *yaml.Node {
	return scalar(tagString, s)
}

func (Context) ToNumber(n serde.Number) *yaml.Node {
	if n.IsInteger() {
		return scalar(tagInt, n.String())
	}
	f := n.Float64()
	switch {
	case n.IsNaN():
		return scalar(tagFloat, ".nan")
	case math.IsInf(f, 1):
		return scalar(tagFloat, ".inf")
	case math.IsInf(f, -1):
		return scalar(tagFloat, "-.inf")
	}
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return scalar(tagFloat, s)
}

func (Context) ToBool(b bool) *yaml.Node {
	return scalar(tagBool, strconv.FormatBool(b))
}

func (Context) ToBlob(b []byte) *yaml.Node {
	return scalar(tagBinary, base64.StdEncoding.EncodeToString(b))
}

func (c Context) ToList(items []*yaml.Node) *yaml.Node {
	n := &yaml.Node{Kind: yaml.SequenceNode, Tag: tagSeq, Content: make([]*yaml.Node, len(items))}
	for i, item := range items {
		if item == nil {
			item = c.Null()
		}
		n.Content[i] = item
	}
	return n
}

func (c Context) ToMap(entries []serde.Entry[*yaml.Node]) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: tagMap, Content: make([]*yaml.Node, 0, 2*len(entries))}
	for _, e := range entries {
		value := e.Value
		if value == nil {
			value = c.Null()
		}
		n.Content = append(n.Content, scalar(tagString, e.Key), value)
	}
	return n
}

func (Context) Null() *yaml.Node {
	return scalar(tagNull, "null")
}

// MetaProperty reads the comments attached to a node.
func (Context) MetaProperty(v *yaml.Node, key string) (string, bool) {
	n := resolve(v)
	if n == nil {
		return "", false
	}
	var s string
	switch key {
	case MetaHeadComment:
		s = n.HeadComment
	case MetaLineComment:
		s = n.LineComment
	case MetaFootComment:
		s = n.FootComment
	}
	return s, s != ""
}

// SetMetaProperty attaches a comment to a node. Other keys are refused.
func (Context) SetMetaProperty(v *yaml.Node, key, value string) bool {
	n := resolve(v)
	if n == nil {
		return false
	}
	switch key {
	case MetaHeadComment:
		n.HeadComment = value
	case MetaLineComment:
		n.LineComment = value
	case MetaFootComment:
		n.FootComment = value
	default:
		return false
	}
	return true
}

// Option configures the codec.
type Option func(*yamlCodec)

// WithIndent sets the number of spaces per nesting level. The default is 2.
func WithIndent(spaces int) Option {
	return func(c *yamlCodec) {
		c.indent = spaces
	}
}

// yamlCodec implements serde.Codec for YAML.
type yamlCodec struct {
	indent int
}

// New returns a YAML codec.
func New(opts ...Option) serde.Codec {
	c := &yamlCodec{indent: 2}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ContentType returns the MIME type for YAML.
func (c *yamlCodec) ContentType() string {
	return "application/yaml"
}

// Encode writes v as one YAML document.
func (c *yamlCodec) Encode(w io.Writer, v serde.Value) error {
	node := serde.Convert[serde.Value, *yaml.Node](serde.Canonical, Nodes, v)
	if node == nil {
		node = Nodes.Null()
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(c.indent)
	if err := enc.Encode(node); err != nil {
		return err
	}
	return enc.Close()
}

// Decode reads the first YAML document from r. An empty stream is null.
func (c *yamlCodec) Decode(r io.Reader) (v serde.Value, err error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}

	// duplicate mapping keys surface as a conflict during conversion
	defer func() {
		if r := recover(); r != nil {
			conflict, ok := r.(*serde.ConflictError)
			if !ok {
				panic(r)
			}
			v, err = nil, conflict
		}
	}()
	return serde.Convert[*yaml.Node, serde.Value](Nodes, serde.Canonical, &doc), nil
}
