package serde

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

// NumberKind identifies the representation held by a Number.
type NumberKind uint8

// Numeric representations. The set is closed.
const (
	NumberInt NumberKind = iota
	NumberFloat
	NumberBigInt
	NumberBigFloat
)

func (k NumberKind) String() string {
	switch k {
	case NumberInt:
		return "int"
	case NumberFloat:
		return "float"
	case NumberBigInt:
		return "bigint"
	case NumberBigFloat:
		return "bigfloat"
	}
	return "unknown"
}

// bigPrec is the mantissa precision used for arbitrary precision comparisons.
const bigPrec = 256

// Number is a numeric primitive payload.
//
// It holds exactly one representation: a 64-bit integer, a 64-bit float, an
// arbitrary precision integer or an arbitrary precision float. Bits records
// the encoded width (8, 16, 32 or 64) of fixed-size values so codecs can
// preserve it; it never takes part in equality.
//
// The zero Number is the integer 0.
type Number struct {
	kind NumberKind
	bits uint8
	i    int64
	f    float64
	bi   *big.Int
	bf   *big.Float
}

// NewInt returns a 64-bit integer Number.
func NewInt(v int64) Number {
	return Number{kind: NumberInt, bits: 64, i: v}
}

// NewIntN returns an integer Number with an encoded width hint.
// Widths other than 8, 16 and 32 are recorded as 64.
func NewIntN(v int64, bits int) Number {
	n := NewInt(v)
	switch bits {
	case 8, 16, 32:
		n.bits = uint8(bits)
	}
	return n
}

// NewUint returns an integer Number, promoting to a big integer above math.MaxInt64.
func NewUint(v uint64) Number {
	if v <= math.MaxInt64 {
		return NewInt(int64(v))
	}
	return Number{kind: NumberBigInt, bi: new(big.Int).SetUint64(v)}
}

// NewFloat returns a 64-bit floating Number.
func NewFloat(v float64) Number {
	return Number{kind: NumberFloat, bits: 64, f: v}
}

// NewFloat32 returns a floating Number encoded as 32 bits.
func NewFloat32(v float32) Number {
	return Number{kind: NumberFloat, bits: 32, f: float64(v)}
}

// NewBigInt returns an arbitrary precision integer Number. The argument is copied.
func NewBigInt(v *big.Int) Number {
	if v == nil {
		return NewInt(0)
	}
	return Number{kind: NumberBigInt, bi: new(big.Int).Set(v)}
}

// NewBigFloat returns an arbitrary precision floating Number. The argument is copied.
func NewBigFloat(v *big.Float) Number {
	if v == nil {
		return NewFloat(0)
	}
	return Number{kind: NumberBigFloat, bf: new(big.Float).Copy(v)}
}

// ParseNumber parses a decimal integer or floating point literal.
// Integers that overflow int64 become big integers; floats that overflow
// float64 become big floats.
func ParseNumber(s string) (Number, error) {
	s = strings.TrimSpace(s)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return NewInt(i), nil
	}
	if bi, ok := new(big.Int).SetString(s, 10); ok {
		return Number{kind: NumberBigInt, bi: bi}, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err == nil {
		return NewFloat(f), nil
	}
	if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
		if bf, _, perr := big.ParseFloat(s, 10, bigPrec, big.ToNearestEven); perr == nil {
			return Number{kind: NumberBigFloat, bf: bf}, nil
		}
	}
	return Number{}, err
}

// Kind returns the representation held by n.
func (n Number) Kind() NumberKind {
	return n.kind
}

// Bits returns the encoded width of fixed-size values, or 0 for big values.
func (n Number) Bits() int {
	switch n.kind {
	case NumberInt, NumberFloat:
		if n.bits == 0 {
			return 64
		}
		return int(n.bits)
	}
	return 0
}

// IsInteger reports whether n holds an integer representation.
func (n Number) IsInteger() bool {
	return n.kind == NumberInt || n.kind == NumberBigInt
}

// IsNaN reports whether n is a floating NaN.
func (n Number) IsNaN() bool {
	return n.kind == NumberFloat && math.IsNaN(n.f)
}

// Int64 returns n as an int64 and whether the conversion was exact.
func (n Number) Int64() (int64, bool) {
	switch n.kind {
	case NumberInt:
		return n.i, true
	case NumberBigInt:
		if n.bi.IsInt64() {
			return n.bi.Int64(), true
		}
		return 0, false
	case NumberFloat:
		if n.f != math.Trunc(n.f) || n.f < math.MinInt64 || n.f >= math.MaxInt64 {
			return int64(n.f), false
		}
		return int64(n.f), true
	case NumberBigFloat:
		i, acc := n.bf.Int64()
		return i, acc == big.Exact
	}
	return 0, false
}

// Float64 returns the nearest float64 to n.
func (n Number) Float64() float64 {
	switch n.kind {
	case NumberFloat:
		return n.f
	case NumberBigInt:
		f, _ := new(big.Float).SetInt(n.bi).Float64()
		return f
	case NumberBigFloat:
		f, _ := n.bf.Float64()
		return f
	}
	return float64(n.i)
}

// BigInt returns n truncated towards zero as a new big.Int.
// It returns nil for NaN and infinities.
func (n Number) BigInt() *big.Int {
	switch n.kind {
	case NumberInt:
		return big.NewInt(n.i)
	case NumberBigInt:
		return new(big.Int).Set(n.bi)
	}
	bf := n.BigFloat()
	if bf == nil || bf.IsInf() {
		return nil
	}
	bi, _ := bf.Int(nil)
	return bi
}

// BigFloat returns n as a new big.Float. It returns nil for NaN.
func (n Number) BigFloat() *big.Float {
	switch n.kind {
	case NumberInt:
		return new(big.Float).SetPrec(bigPrec).SetInt64(n.i)
	case NumberBigInt:
		return new(big.Float).SetPrec(bigPrec).SetInt(n.bi)
	case NumberBigFloat:
		return new(big.Float).Copy(n.bf)
	}
	if math.IsNaN(n.f) {
		return nil
	}
	return new(big.Float).SetPrec(bigPrec).SetFloat64(n.f)
}

func (n Number) String() string {
	switch n.kind {
	case NumberFloat:
		return strconv.FormatFloat(n.f, 'g', -1, n.Bits())
	case NumberBigInt:
		return n.bi.String()
	case NumberBigFloat:
		return n.bf.Text('g', -1)
	}
	return strconv.FormatInt(n.i, 10)
}

// Cmp compares n and o by mathematical value, returning -1, 0 or +1.
// NaN compares equal to NaN and below every other value.
func (n Number) Cmp(o Number) int {
	if n.kind == NumberInt && o.kind == NumberInt {
		switch {
		case n.i < o.i:
			return -1
		case n.i > o.i:
			return 1
		}
		return 0
	}
	if n.IsInteger() && o.IsInteger() {
		return n.BigInt().Cmp(o.BigInt())
	}
	if n.kind == NumberFloat && o.kind == NumberFloat && !n.IsNaN() && !o.IsNaN() {
		switch {
		case n.f < o.f:
			return -1
		case n.f > o.f:
			return 1
		}
		return 0
	}
	switch {
	case n.IsNaN() && o.IsNaN():
		return 0
	case n.IsNaN():
		return -1
	case o.IsNaN():
		return 1
	}
	return n.BigFloat().Cmp(o.BigFloat())
}

// Equal reports whether n and o hold the same mathematical value.
// Integers compare exactly across widths; NaN equals NaN.
func (n Number) Equal(o Number) bool {
	return n.Cmp(o) == 0
}
