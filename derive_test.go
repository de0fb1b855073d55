package serde_test

import (
	"errors"
	"math/big"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/zoobzio/serde"
)

type level int8

type endpoint struct {
	Host string `serde:"host"`
	Port uint16 `serde:"port,optional"`
}

type service struct {
	ID       uuid.UUID         `serde:"id"`
	Name     string            `serde:"name"`
	Level    level             `serde:"level,optional"`
	Enabled  bool              `serde:"enabled"`
	Weight   float64           `serde:"weight,optional"`
	Payload  []byte            `serde:"payload,optional"`
	Primary  endpoint          `serde:"primary"`
	Backup   *endpoint         `serde:"backup,optional"`
	Replicas []endpoint        `serde:"replicas,optional"`
	Labels   map[string]string `serde:"labels,optional"`
	Region   string
	Cache    map[string]any `serde:"-"`
	internal string
}

type widths struct {
	I8  int8    `serde:"i8"`
	I32 int32   `serde:"i32"`
	U16 uint16  `serde:"u16"`
	I64 int64   `serde:"i64"`
	F32 float32 `serde:"f32"`
}

func sampleService() service {
	return service{
		ID:       uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"),
		Name:     "api",
		Level:    -3,
		Enabled:  true,
		Weight:   0.25,
		Payload:  []byte{1, 2},
		Primary:  endpoint{Host: "a", Port: 80},
		Backup:   &endpoint{Host: "b"},
		Replicas: []endpoint{{Host: "c", Port: 81}},
		Labels:   map[string]string{"team": "core"},
		Region:   "eu",
	}
}

func TestDerive_RoundTrip(t *testing.T) {
	s, err := serde.Derive[service]()
	if err != nil {
		t.Fatalf("Derive() error: %v", err)
	}

	want := sampleService()
	node := toValue(t, s, want)
	got, err := fromValue(s, node)
	if err != nil {
		t.Fatalf("Deserialize() error: %v", err)
	}
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(service{})); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDerive_Keys(t *testing.T) {
	s := serde.MustDerive[service]()
	node := toValue(t, s, sampleService()).(serde.Mapping)

	want := []string{"id", "name", "level", "enabled", "weight", "payload", "primary", "backup", "replicas", "labels", "Region"}
	if got := node.Keys(); !slices.Equal(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}

	backup, _ := node.GetSection("backup")
	if backup.Has("port") {
		t.Error("optional zero port should be omitted")
	}
	if id, _ := node.GetString("id"); id != "6ba7b810-9dad-11d1-80b4-00c04fd430c8" {
		t.Errorf("id = %q, want uuid string", id)
	}
}

func TestDerive_OptionalOmitted(t *testing.T) {
	s := serde.MustDerive[service]()
	node := toValue(t, s, service{Name: "bare", Primary: endpoint{Host: "h"}}).(serde.Mapping)

	want := []string{"id", "name", "enabled", "primary", "Region"}
	if got := node.Keys(); !slices.Equal(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
}

func TestDerive_Missing(t *testing.T) {
	s := serde.MustDerive[endpoint]()

	_, err := fromValue(s, serde.NewSection().With("port", serde.IntValue(1)))
	var fe *serde.FieldError
	if !errors.As(err, &fe) || fe.Key != "host" || !errors.Is(err, serde.ErrMissingKey) {
		t.Errorf("Deserialize() error = %v, want missing host", err)
	}

	got, err := fromValue(s, serde.NewSection().With("host", serde.StringValue("h")))
	if err != nil || got != (endpoint{Host: "h"}) {
		t.Errorf("Deserialize() = %+v, %v, want {h 0}", got, err)
	}
}

func TestDerive_Bounds(t *testing.T) {
	s := serde.MustDerive[endpoint]()
	node := serde.NewSection().
		With("host", serde.StringValue("h")).
		With("port", serde.IntValue(70000))

	_, err := fromValue(s, node)
	if !errors.Is(err, serde.ErrBounds) {
		t.Errorf("Deserialize() error = %v, want ErrBounds for uint16", err)
	}
}

func TestDerive_Widths(t *testing.T) {
	node := toValue(t, serde.MustDerive[widths](), widths{I8: -1, I32: 7, U16: 9, I64: 3, F32: 1.5})
	m := node.(serde.Mapping)

	tests := []struct {
		key  string
		want int
	}{
		{"i8", 8},
		{"i32", 32},
		{"u16", 32},
		{"i64", 64},
		{"f32", 32},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			n, ok := m.GetNumber(tt.key)
			if !ok {
				t.Fatalf("GetNumber(%s) missing", tt.key)
			}
			if n.Bits() != tt.want {
				t.Errorf("Bits() = %d, want %d", n.Bits(), tt.want)
			}
		})
	}

	got, err := fromValue(serde.MustDerive[widths](), node)
	if err != nil {
		t.Fatalf("Deserialize() error: %v", err)
	}
	if got.I8 != -1 || got.F32 != 1.5 {
		t.Errorf("Deserialize() = %+v", got)
	}
}

func TestDerive_NestedPath(t *testing.T) {
	s := serde.MustDerive[service]()
	node := toValue(t, s, sampleService()).(serde.Mapping)
	replicas := serde.NewList(serde.NewSection().With("port", serde.IntValue(1)))
	node.Set("replicas", replicas)

	_, err := fromValue(s, node)
	var fe *serde.FieldError
	if !errors.As(err, &fe) || fe.Key != "replicas" {
		t.Fatalf("Deserialize() error = %v, want failure under replicas", err)
	}
	if !errors.Is(err, serde.ErrMissingKey) {
		t.Errorf("Deserialize() error = %v, want ErrMissingKey", err)
	}
}

func TestDerive_BigNumbers(t *testing.T) {
	type ledger struct {
		Total *big.Int   `serde:"total"`
		Rate  *big.Float `serde:"rate,optional"`
	}
	s := serde.MustDerive[ledger]()

	total, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	got, err := fromValue(s, toValue(t, s, ledger{Total: total}))
	if err != nil {
		t.Fatalf("Deserialize() error: %v", err)
	}
	if got.Total.Cmp(total) != 0 {
		t.Errorf("Total = %s, want %s", got.Total, total)
	}
	if got.Rate != nil {
		t.Errorf("Rate = %v, want nil", got.Rate)
	}
}

func TestDerive_Unsupported(t *testing.T) {
	type withChan struct {
		C chan int `serde:"c"`
	}
	type withIntKeys struct {
		M map[int]string `serde:"m"`
	}

	tests := []struct {
		name   string
		derive func() error
	}{
		{"not a struct", func() error { _, err := serde.Derive[[]string](); return err }},
		{"channel", func() error { _, err := serde.Derive[withChan](); return err }},
		{"int keys", func() error { _, err := serde.Derive[withIntKeys](); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.derive(); !errors.Is(err, serde.ErrUnsupported) {
				t.Errorf("Derive() error = %v, want ErrUnsupported", err)
			}
		})
	}
}

func TestMustDerive_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustDerive() should panic for a non-struct type")
		}
	}()
	serde.MustDerive[int]()
}
