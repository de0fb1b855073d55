package serde_test

import (
	"errors"
	"math"
	"math/big"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/zoobzio/serde"
)

func toValue[T any](t *testing.T, s serde.Serializer[T], v T) serde.Value {
	t.Helper()
	node, err := serde.Serialize[serde.Value](serde.Canonical, s, v).Get()
	if err != nil {
		t.Fatalf("Serialize() error: %v", err)
	}
	return node
}

func fromValue[T any](s serde.Serializer[T], node serde.Value) (T, error) {
	return serde.Deserialize[serde.Value](serde.Canonical, s, node).Get()
}

func TestString(t *testing.T) {
	node := toValue(t, serde.String, "hello")
	if !serde.Equal(node, serde.StringValue("hello")) {
		t.Errorf("Serialize() = %v, want hello", node)
	}

	if _, err := fromValue(serde.String, serde.IntValue(1)); !errors.Is(err, serde.ErrShape) {
		t.Errorf("Deserialize(number) error = %v, want ErrShape", err)
	}
	if _, err := fromValue(serde.String, nil); !errors.Is(err, serde.ErrShape) {
		t.Errorf("Deserialize(null) error = %v, want ErrShape", err)
	}
}

func TestBool(t *testing.T) {
	tests := []struct {
		name    string
		node    serde.Value
		want    bool
		wantErr bool
	}{
		{"boolean", serde.BoolValue(true), true, false},
		{"one", serde.IntValue(1), true, false},
		{"zero", serde.IntValue(0), false, false},
		{"float", serde.FloatValue(0.5), true, false},
		{"upper string", serde.StringValue("TRUE"), true, false},
		{"false string", serde.StringValue("False"), false, false},
		{"other string", serde.StringValue("yes"), false, true},
		{"list", serde.NewList(), false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fromValue(serde.Bool, tt.node)
			if tt.wantErr {
				if !errors.Is(err, serde.ErrShape) {
					t.Errorf("Deserialize() error = %v, want ErrShape", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Deserialize() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Deserialize() = %v, want %v", got, tt.want)
			}
		})
	}

	if node := toValue(t, serde.Bool, false); !serde.Equal(node, serde.BoolValue(false)) {
		t.Errorf("Serialize(false) = %v, want boolean false", node)
	}
}

func TestBytes(t *testing.T) {
	node := toValue(t, serde.Bytes, []byte{1, 2, 3})
	if _, ok := node.(*serde.Blob); !ok {
		t.Fatalf("Serialize() = %T, want *Blob", node)
	}

	tests := []struct {
		name string
		node serde.Value
		want []byte
	}{
		{"blob", node, []byte{1, 2, 3}},
		{"base64", serde.StringValue("AQID"), []byte{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fromValue(serde.Bytes, tt.node)
			if err != nil {
				t.Fatalf("Deserialize() error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Deserialize() mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if _, err := fromValue(serde.Bytes, serde.StringValue("!!not base64")); !errors.Is(err, serde.ErrShape) {
		t.Errorf("Deserialize(invalid) error = %v, want ErrShape", err)
	}
	if _, err := fromValue(serde.Bytes, serde.IntValue(3)); !errors.Is(err, serde.ErrShape) {
		t.Errorf("Deserialize(number) error = %v, want ErrShape", err)
	}
}

func TestUUID(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

	node := toValue(t, serde.UUID, id)
	if !serde.Equal(node, serde.StringValue(id.String())) {
		t.Errorf("Serialize() = %v, want %s", node, id)
	}

	got, err := fromValue(serde.UUID, node)
	if err != nil {
		t.Fatalf("Deserialize() error: %v", err)
	}
	if got != id {
		t.Errorf("Deserialize() = %s, want %s", got, id)
	}

	if _, err := fromValue(serde.UUID, serde.StringValue("nope")); !errors.Is(err, serde.ErrShape) {
		t.Errorf("Deserialize(nope) error = %v, want ErrShape", err)
	}
}

func TestBigInt(t *testing.T) {
	want, _ := new(big.Int).SetString("123456789012345678901234567890", 10)

	for _, node := range []serde.Value{
		toValue(t, serde.BigInt, want),
		serde.StringValue("123456789012345678901234567890"),
	} {
		got, err := fromValue(serde.BigInt, node)
		if err != nil {
			t.Fatalf("Deserialize() error: %v", err)
		}
		if got.Cmp(want) != 0 {
			t.Errorf("Deserialize() = %s, want %s", got, want)
		}
	}

	if node := toValue(t, serde.BigInt, nil); node != nil {
		t.Errorf("Serialize(nil) = %v, want null", node)
	}
	if _, err := fromValue(serde.BigInt, serde.StringValue("many")); !errors.Is(err, serde.ErrShape) {
		t.Errorf("Deserialize(many) error = %v, want ErrShape", err)
	}
}

func TestDecimal(t *testing.T) {
	got, err := fromValue(serde.Decimal, serde.StringValue("1.5"))
	if err != nil {
		t.Fatalf("Deserialize() error: %v", err)
	}
	if f, _ := got.Float64(); f != 1.5 {
		t.Errorf("Deserialize() = %s, want 1.5", got)
	}

	node := toValue(t, serde.Decimal, big.NewFloat(2.25))
	n, _ := node.(*serde.Primitive).AsNumber()
	if n.Float64() != 2.25 {
		t.Errorf("Serialize() = %s, want 2.25", n)
	}
}

func TestNumberOf_NaN(t *testing.T) {
	nan := serde.FloatValue(math.NaN())

	if v, err := fromValue(serde.Int8, nan); !errors.Is(err, serde.ErrBounds) {
		t.Errorf("Int8 Deserialize(NaN) = %d, %v, want ErrBounds", v, err)
	}
	if _, err := fromValue(serde.Uint8, nan); !errors.Is(err, serde.ErrBounds) {
		t.Errorf("Uint8 Deserialize(NaN) error = %v, want ErrBounds", err)
	}
	got, err := fromValue(serde.Float64, nan)
	if err != nil || !math.IsNaN(got) {
		t.Errorf("Float64 Deserialize(NaN) = %v, %v, want NaN", got, err)
	}
}

func TestNumberOf_Bounds(t *testing.T) {
	percent := serde.NumberOf(0, 100)

	if percent.Lower() != 0 || percent.Upper() != 100 {
		t.Errorf("bounds = [%d, %d], want [0, 100]", percent.Lower(), percent.Upper())
	}

	if _, err := serde.Serialize[serde.Value](serde.Canonical, percent, 101).Get(); !errors.Is(err, serde.ErrBounds) {
		t.Errorf("Serialize(101) error = %v, want ErrBounds", err)
	}
	_, err := fromValue(percent, serde.IntValue(-1))
	if !errors.Is(err, serde.ErrBounds) {
		t.Errorf("Deserialize(-1) error = %v, want ErrBounds", err)
	}
	var be *serde.BoundsError
	if !errors.As(err, &be) || be.Lower != "0" || be.Upper != "100" {
		t.Errorf("BoundsError = %+v", be)
	}

	got, err := fromValue(percent, serde.IntValue(100))
	if err != nil || got != 100 {
		t.Errorf("Deserialize(100) = %d, %v, want 100", got, err)
	}

	narrow := percent.Within(10, 20)
	if _, err := fromValue(narrow, serde.IntValue(50)); !errors.Is(err, serde.ErrBounds) {
		t.Errorf("Within() Deserialize(50) error = %v, want ErrBounds", err)
	}
}

func TestNumeric_Leaves(t *testing.T) {
	if got, err := fromValue(serde.Int8, serde.StringValue("12")); err != nil || got != 12 {
		t.Errorf("Int8 Deserialize(\"12\") = %d, %v, want 12", got, err)
	}
	if _, err := fromValue(serde.Int8, serde.IntValue(200)); !errors.Is(err, serde.ErrBounds) {
		t.Errorf("Int8 Deserialize(200) error = %v, want ErrBounds", err)
	}
	if _, err := fromValue(serde.Uint, serde.IntValue(-1)); !errors.Is(err, serde.ErrBounds) {
		t.Errorf("Uint Deserialize(-1) error = %v, want ErrBounds", err)
	}
	if got, err := fromValue(serde.Int, serde.FloatValue(3.7)); err != nil || got != 3 {
		t.Errorf("Int Deserialize(3.7) = %d, %v, want 3", got, err)
	}
	if got, err := fromValue(serde.Float64, serde.IntValue(2)); err != nil || got != 2 {
		t.Errorf("Float64 Deserialize(2) = %v, %v, want 2", got, err)
	}
	if _, err := fromValue(serde.Int, serde.BoolValue(true)); !errors.Is(err, serde.ErrShape) {
		t.Errorf("Int Deserialize(true) error = %v, want ErrShape", err)
	}
}

func TestNumeric_Widths(t *testing.T) {
	tests := []struct {
		name string
		node serde.Value
		want int
	}{
		{"int8", toValue(t, serde.Int8, 1), 8},
		{"int32", toValue(t, serde.Int32, 1), 32},
		{"int64", toValue(t, serde.Int64, 1), 64},
		{"uint8", toValue(t, serde.Uint8, 200), 16},
		{"float32", toValue(t, serde.Float32, 1.5), 32},
		{"float64", toValue(t, serde.Float64, 1.5), 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, _ := tt.node.(*serde.Primitive).AsNumber()
			if n.Bits() != tt.want {
				t.Errorf("Bits() = %d, want %d", n.Bits(), tt.want)
			}
		})
	}
}

func TestNumberSerializer_Inline(t *testing.T) {
	key := serde.NumberOf(0, 100).Inline()

	s, err := key.WriteString(42)
	if err != nil || s != "42" {
		t.Errorf("WriteString(42) = %q, %v, want 42", s, err)
	}
	if _, err := key.WriteString(101); !errors.Is(err, serde.ErrBounds) {
		t.Errorf("WriteString(101) error = %v, want ErrBounds", err)
	}
	if _, err := key.ReadString("500"); !errors.Is(err, serde.ErrBounds) {
		t.Errorf("ReadString(500) error = %v, want ErrBounds", err)
	}
	if _, err := key.ReadString("x"); err == nil {
		t.Error("ReadString(x) should fail")
	}
}

func TestNullAndNode(t *testing.T) {
	if node := toValue(t, serde.Null, "anything"); node != nil {
		t.Errorf("Null Serialize() = %v, want null", node)
	}
	if got, err := fromValue(serde.Null, serde.StringValue("x")); err != nil || got != nil {
		t.Errorf("Null Deserialize() = %v, %v, want nil", got, err)
	}

	raw := serde.NewSection().With("a", serde.IntValue(1))
	node := toValue[any](t, serde.Node, raw)
	if node != serde.Value(raw) {
		t.Error("Node Serialize() should pass the node through")
	}
	got, err := fromValue(serde.Node, node)
	if err != nil || got != any(raw) {
		t.Errorf("Node Deserialize() = %v, %v", got, err)
	}
}
