// Package seal provides serializers that hash or encrypt values on their way
// out of a program.
//
// Hashed is one-way: serializing hashes the plaintext, deserializing returns
// the stored hash unchanged so it can be checked with Hasher.Verify.
//
//	password := serde.Field("password", seal.Hashed(seal.Argon2()), func(u User) string { return u.Password })
//
// Encrypted encodes a value with a codec, encrypts the bytes and stores them
// as a blob:
//
//	enc, _ := seal.AES(key)
//	secret := seal.Encrypted(serde.String, json.New(), enc)
package seal

import (
	"github.com/zoobzio/serde"
)

// Hashed returns a serializer writing the hash of a string.
// Deserialize returns the stored hash as-is.
func Hashed(h Hasher) serde.Serializer[string] {
	return serde.Transform(serde.String,
		func(plaintext string) serde.Result[string] {
			hash, err := h.Hash([]byte(plaintext))
			if err != nil {
				return serde.Fail[string](err)
			}
			return serde.Ok(hash)
		},
		serde.Ok[string],
	)
}

// Encrypted stores the codec encoding of s, encrypted with enc, as a blob.
func Encrypted[T any](s serde.Serializer[T], codec serde.Codec, enc Encryptor) serde.Serializer[T] {
	return serde.Transform(serde.Bytes,
		func(value T) serde.Result[[]byte] {
			data, err := serde.Encode(codec, s, value)
			if err != nil {
				return serde.Fail[[]byte](err)
			}
			sealed, err := enc.Encrypt(data)
			if err != nil {
				return serde.Fail[[]byte](err)
			}
			return serde.Ok(sealed)
		},
		func(sealed []byte) serde.Result[T] {
			data, err := enc.Decrypt(sealed)
			if err != nil {
				return serde.Fail[T](err)
			}
			v, err := serde.Decode(codec, s, data)
			if err != nil {
				return serde.Fail[T](err)
			}
			return serde.Ok(v)
		},
	)
}
