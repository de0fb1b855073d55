// Package serde provides format-independent, bidirectional serialization.
//
// A Serializer[T] converts a Go value to and from nodes of any tree
// representation. The representation is abstracted by a Context, which knows
// how to read and build the semantic shapes every format shares: null,
// string, number, boolean, blob, list and map. The same serializer therefore
// writes a canonical Value tree, a *yaml.Node tree or a BSON document.
//
// # Serializers
//
// Leaves cover the scalar types:
//
//	serde.String, serde.Bool, serde.Bytes, serde.UUID, serde.BigInt, serde.Decimal
//	serde.Int, serde.Uint16, serde.Float64, serde.NumberOf[int](0, 100)
//
// Combinators build structure:
//
//	serde.ListOf(elem), serde.StringMapOf(values), serde.MapOf(keys, values)
//	serde.Ptr(s), serde.Or(a, b), serde.Transform(s, to, from)
//	serde.Dispatch(keys, keyOf, lookup), serde.Group(build, parts...)
//
// Objects are declared field by field:
//
//	name := serde.Field("name", serde.String, func(s Server) string { return s.Name })
//	port := serde.Field("port", serde.Uint16, func(s Server) uint16 { return s.Port }).OrElse(8080)
//	server := serde.Object(func(f serde.Fields) Server {
//	    return Server{Name: name.From(f), Port: port.From(f)}
//	}, name, port)
//
// or derived from struct tags:
//
//	type Server struct {
//	    Name string `serde:"name"`
//	    Port uint16 `serde:"port,optional"`
//	}
//	server := serde.MustDerive[Server]()
//
// # Results
//
// Serialize and Deserialize return a Result, which carries either a value or
// an error. Errors wrap sentinels such as ErrShape, ErrBounds and
// ErrMissingKey and can be checked with errors.Is. FieldError records the
// key path of a nested failure.
//
// # Codecs
//
// A Codec encodes the canonical tree in one wire format. Implementations live
// in the json, yaml, msgpack, bson, xml and binary subpackages:
//
//	data, err := serde.Encode(json.New(), server, s)
//	s, err := serde.Decode(json.New(), server, data)
//
// Processor binds a serializer to a codec at an I/O boundary and reports
// every operation through capitan signals. Formats selects a codec by file
// extension or content type.
package serde
