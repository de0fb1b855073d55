package serde

import (
	"math"
	"reflect"
)

// Numeric is the set of Go types a NumberSerializer can produce.
type Numeric interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// NumberSerializer serializes a Go numeric type with inclusive bounds.
//
// Both directions validate the bounds: a value outside [lower, upper] is a
// failure wrapping ErrBounds, never a clamp. Deserialize also accepts numeric
// strings. NaN passes validation for floating types only.
type NumberSerializer[N Numeric] struct {
	lower, upper N
	lo, hi       Number
	float        bool
	signed       bool
	bits         int
}

// NumberOf returns a serializer for N accepting values in [lower, upper].
func NumberOf[N Numeric](lower, upper N) *NumberSerializer[N] {
	var probe N = 1
	s := &NumberSerializer[N]{
		lower:  lower,
		upper:  upper,
		float:  probe/2 != 0,
		signed: probe-2 < 0,
		bits:   reflect.TypeFor[N]().Bits(),
	}
	s.lo = s.number(lower)
	s.hi = s.number(upper)
	return s
}

// Leaf serializers for the predeclared numeric types, bounded by their range.
var (
	Int     = NumberOf[int](math.MinInt, math.MaxInt)
	Int8    = NumberOf[int8](math.MinInt8, math.MaxInt8)
	Int16   = NumberOf[int16](math.MinInt16, math.MaxInt16)
	Int32   = NumberOf[int32](math.MinInt32, math.MaxInt32)
	Int64   = NumberOf[int64](math.MinInt64, math.MaxInt64)
	Uint    = NumberOf[uint](0, math.MaxUint)
	Uint8   = NumberOf[uint8](0, math.MaxUint8)
	Uint16  = NumberOf[uint16](0, math.MaxUint16)
	Uint32  = NumberOf[uint32](0, math.MaxUint32)
	Uint64  = NumberOf[uint64](0, math.MaxUint64)
	Float32 = NumberOf[float32](float32(math.Inf(-1)), float32(math.Inf(1)))
	Float64 = NumberOf[float64](math.Inf(-1), math.Inf(1))
)

// Lower returns the inclusive lower bound.
func (s *NumberSerializer[N]) Lower() N {
	return s.lower
}

// Upper returns the inclusive upper bound.
func (s *NumberSerializer[N]) Upper() N {
	return s.upper
}

// sized returns a copy of s recording numbers with the given width.
func (s *NumberSerializer[N]) sized(bits int) *NumberSerializer[N] {
	cp := *s
	cp.bits = bits
	cp.lo = cp.number(cp.lower)
	cp.hi = cp.number(cp.upper)
	return &cp
}

// Within returns a serializer for the same type with new bounds.
func (s *NumberSerializer[N]) Within(lower, upper N) *NumberSerializer[N] {
	return NumberOf(lower, upper)
}

func (s *NumberSerializer[N]) Serialize(ctx Context[any], value N) Result[any] {
	n := s.number(value)
	if err := s.check(n); err != nil {
		return Fail[any](err)
	}
	return Ok(ctx.ToNumber(n))
}

func (s *NumberSerializer[N]) Deserialize(ctx Context[any], raw any) Result[N] {
	return FlatMap(numberOrString(ctx, raw), s.value)
}

// Inline returns the string form of s, used for numeric map keys.
func (s *NumberSerializer[N]) Inline() *InlineSerializer[N] {
	return &InlineSerializer[N]{
		write: func(v N) (string, error) {
			n := s.number(v)
			if err := s.check(n); err != nil {
				return "", err
			}
			return n.String(), nil
		},
		read: func(str string) (N, error) {
			n, err := ParseNumber(str)
			if err != nil {
				var zero N
				return zero, err
			}
			return s.value(n).Get()
		},
	}
}

func (s *NumberSerializer[N]) check(n Number) error {
	if n.IsNaN() {
		return nil
	}
	if n.Cmp(s.lo) < 0 || n.Cmp(s.hi) > 0 {
		return &BoundsError{Value: n, Lower: s.lo.String(), Upper: s.hi.String()}
	}
	return nil
}

// value converts a validated Number to N, truncating fractions for integer types.
func (s *NumberSerializer[N]) value(n Number) Result[N] {
	if err := s.check(n); err != nil {
		return Fail[N](err)
	}
	if !s.float && n.IsNaN() {
		return Fail[N](&BoundsError{Value: n, Lower: s.lo.String(), Upper: s.hi.String()})
	}
	switch {
	case s.float:
		return Ok(N(n.Float64()))
	case s.signed:
		i, _ := n.Int64()
		return Ok(N(i))
	}
	bi := n.BigInt()
	if bi == nil {
		return Failf[N]("%w: %s is not finite", ErrBounds, n)
	}
	return Ok(N(bi.Uint64()))
}

// number converts v to a Number carrying the encoded width of N.
func (s *NumberSerializer[N]) number(v N) Number {
	switch {
	case s.float && s.bits == 32:
		return NewFloat32(float32(v))
	case s.float:
		return NewFloat(float64(v))
	case s.signed:
		return NewIntN(int64(v), s.bits)
	}
	n := NewUint(uint64(v))
	if n.kind == NumberInt && s.bits < 64 {
		// unsigned values need the next signed width
		n.bits = uint8(s.bits * 2)
	}
	return n
}
