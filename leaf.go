package serde

import (
	"encoding/base64"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

// String serializes strings. The null node is not a string.
var String Serializer[string] = Func(
	func(ctx Context[any], value string) Result[any] {
		return Ok(ctx.ToString(value))
	},
	func(ctx Context[any], raw any) Result[string] {
		return ctx.AsString(raw)
	},
)

var rawBool = Func(
	func(ctx Context[any], value bool) Result[any] {
		return Ok(ctx.ToBool(value))
	},
	func(ctx Context[any], raw any) Result[bool] {
		return ctx.AsBool(raw)
	},
)

var numericBool = Func(
	func(ctx Context[any], value bool) Result[any] {
		if value {
			return Ok(ctx.ToNumber(NewIntN(1, 8)))
		}
		return Ok(ctx.ToNumber(NewIntN(0, 8)))
	},
	func(ctx Context[any], raw any) Result[bool] {
		return Map(ctx.AsNumber(raw), func(n Number) bool { return !n.Equal(Number{}) })
	},
)

var stringBool = Func(
	func(ctx Context[any], value bool) Result[any] {
		if value {
			return Ok(ctx.ToString("true"))
		}
		return Ok(ctx.ToString("false"))
	},
	func(ctx Context[any], raw any) Result[bool] {
		return FlatMap(ctx.AsString(raw), func(s string) Result[bool] {
			switch strings.ToLower(s) {
			case "true":
				return Ok(true)
			case "false":
				return Ok(false)
			}
			return Failf[bool]("%w: %q is not a boolean", ErrShape, s)
		})
	},
)

// Bool serializes booleans. Deserialize accepts a boolean, a number (non-zero
// is true) or the strings "true" and "false" in any case.
var Bool = Or(rawBool, numericBool, stringBool)

// Bytes serializes byte slices as blobs. Deserialize also accepts base64 strings.
var Bytes Serializer[[]byte] = Func(
	func(ctx Context[any], value []byte) Result[any] {
		return Ok(ctx.ToBlob(value))
	},
	func(ctx Context[any], raw any) Result[[]byte] {
		return ctx.AsBlob(raw).MapError(func(err error) Result[[]byte] {
			s, serr := ctx.AsString(raw).Get()
			if serr != nil {
				return Fail[[]byte](err)
			}
			b, derr := base64.StdEncoding.DecodeString(s)
			if derr != nil {
				return Failf[[]byte]("%w: invalid base64 blob: %w", ErrShape, derr)
			}
			return Ok(b)
		})
	},
)

// UUID serializes UUIDs in their canonical string form.
var UUID = Transform(String,
	func(id uuid.UUID) Result[string] { return Ok(id.String()) },
	func(s string) Result[uuid.UUID] {
		id, err := uuid.Parse(s)
		if err != nil {
			return Failf[uuid.UUID]("%w: invalid uuid %q: %w", ErrShape, s, err)
		}
		return Ok(id)
	},
)

// BigInt serializes arbitrary precision integers. Deserialize also accepts
// numeric strings; fractions are truncated.
var BigInt Serializer[*big.Int] = Func(
	func(ctx Context[any], value *big.Int) Result[any] {
		if value == nil {
			return Ok(ctx.Null())
		}
		return Ok(ctx.ToNumber(NewBigInt(value)))
	},
	func(ctx Context[any], raw any) Result[*big.Int] {
		return FlatMap(numberOrString(ctx, raw), func(n Number) Result[*big.Int] {
			if bi := n.BigInt(); bi != nil {
				return Ok(bi)
			}
			return Failf[*big.Int]("%w: %s is not finite", ErrShape, n)
		})
	},
)

// Decimal serializes arbitrary precision floats. Deserialize also accepts numeric strings.
var Decimal Serializer[*big.Float] = Func(
	func(ctx Context[any], value *big.Float) Result[any] {
		if value == nil {
			return Ok(ctx.Null())
		}
		return Ok(ctx.ToNumber(NewBigFloat(value)))
	},
	func(ctx Context[any], raw any) Result[*big.Float] {
		return FlatMap(numberOrString(ctx, raw), func(n Number) Result[*big.Float] {
			if bf := n.BigFloat(); bf != nil {
				return Ok(bf)
			}
			return Failf[*big.Float]("%w: NaN is not a decimal", ErrShape)
		})
	},
)

// Null always produces the null node and always decodes to nil.
var Null Serializer[any] = Func(
	func(ctx Context[any], _ any) Result[any] {
		return Ok(ctx.Null())
	},
	func(Context[any], any) Result[any] {
		return Ok[any](nil)
	},
)

// Node passes context nodes through untouched. It is only meaningful when
// the value already belongs to the context being written.
var Node Serializer[any] = Func(
	func(_ Context[any], value any) Result[any] {
		return Ok(value)
	},
	func(_ Context[any], raw any) Result[any] {
		return Ok(raw)
	},
)

func numberOrString(ctx Context[any], raw any) Result[Number] {
	return ctx.AsNumber(raw).MapError(func(err error) Result[Number] {
		s, serr := ctx.AsString(raw).Get()
		if serr != nil {
			return Fail[Number](err)
		}
		n, perr := ParseNumber(s)
		if perr != nil {
			return Failf[Number]("%w: %q is not a number", ErrShape, s)
		}
		return Ok(n)
	})
}
