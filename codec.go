package serde

import (
	"bytes"
	"io"
)

// Codec encodes and decodes canonical Value trees in one wire format.
// Implementations live in the format subpackages.
type Codec interface {
	// ContentType returns the MIME type for this codec.
	ContentType() string

	// Encode writes v to w.
	Encode(w io.Writer, v Value) error

	// Decode reads one tree from r.
	Decode(r io.Reader) (Value, error)
}

// Marshal encodes v with codec into a byte slice.
func Marshal(codec Codec, v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := codec.Encode(&buf, v); err != nil {
		return nil, newCodecError(ErrEncode, codec.ContentType(), err)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a tree from data with codec.
func Unmarshal(codec Codec, data []byte) (Value, error) {
	v, err := codec.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, newCodecError(ErrDecode, codec.ContentType(), err)
	}
	return v, nil
}

// Encode serializes value through the canonical context and encodes the tree with codec.
func Encode[T any](codec Codec, s Serializer[T], value T) ([]byte, error) {
	tree, err := Serialize(Canonical, s, value).Get()
	if err != nil {
		return nil, err
	}
	return Marshal(codec, tree)
}

// Decode decodes data with codec and deserializes the tree through the canonical context.
func Decode[T any](codec Codec, s Serializer[T], data []byte) (T, error) {
	tree, err := Unmarshal(codec, data)
	if err != nil {
		var zero T
		return zero, err
	}
	return Deserialize(Canonical, s, tree).Get()
}

// Encoded stores the value of s as a blob holding its codec encoding.
// Deserialize reads the blob (or its base64 string form) back through codec.
func Encoded[T any](s Serializer[T], codec Codec) Serializer[T] {
	return Transform(Bytes,
		func(value T) Result[[]byte] {
			data, err := Encode(codec, s, value)
			if err != nil {
				return Fail[[]byte](err)
			}
			return Ok(data)
		},
		func(data []byte) Result[T] {
			v, err := Decode(codec, s, data)
			if err != nil {
				return Fail[T](err)
			}
			return Ok(v)
		},
	)
}

// EncodedString stores the value of s as a string holding its codec
// encoding. It suits text codecs such as json and yaml.
func EncodedString[T any](s Serializer[T], codec Codec) Serializer[T] {
	return Transform(String,
		func(value T) Result[string] {
			data, err := Encode(codec, s, value)
			if err != nil {
				return Fail[string](err)
			}
			return Ok(string(data))
		},
		func(text string) Result[T] {
			v, err := Decode(codec, s, []byte(text))
			if err != nil {
				return Fail[T](err)
			}
			return Ok(v)
		},
	)
}
