// Package testing provides fixtures and helpers for serde tests.
package testing

import (
	"testing"

	"github.com/zoobzio/serde"
	"github.com/zoobzio/serde/seal"
)

// TestKey returns a valid 32-byte key for testing.
func TestKey(tb testing.TB) []byte {
	tb.Helper()
	return []byte("32-byte-key-for-aes-256-encrypt!")
}

// TestEncryptor returns an AES encryptor configured for testing.
func TestEncryptor(tb testing.TB) seal.Encryptor {
	tb.Helper()
	enc, err := seal.AES(TestKey(tb))
	if err != nil {
		tb.Fatalf("AES() error: %v", err)
	}
	return enc
}

// Owner is a nested fixture.
type Owner struct {
	Name  string
	Email string
}

// Config is a fixture exercising every kind of field.
type Config struct {
	Name    string
	Port    int
	Debug   bool
	Ratio   float64
	Tags    []string
	Limits  map[string]int
	Owner   *Owner
	Payload []byte
}

var (
	ownerName  = serde.Field("name", serde.String, func(o Owner) string { return o.Name })
	ownerEmail = serde.Field("email", serde.String, func(o Owner) string { return o.Email }).Optional()

	// OwnerSerializer serializes Owner.
	OwnerSerializer = serde.Object(func(f serde.Fields) Owner {
		return Owner{Name: ownerName.From(f), Email: ownerEmail.From(f)}
	}, ownerName, ownerEmail)
)

var (
	configName    = serde.Field("name", serde.String, func(c Config) string { return c.Name })
	configPort    = serde.Field("port", serde.NumberOf(1, 65535), func(c Config) int { return c.Port }).OrElse(8080)
	configDebug   = serde.Field("debug", serde.Bool, func(c Config) bool { return c.Debug }).Optional()
	configRatio   = serde.Field("ratio", serde.Float64, func(c Config) float64 { return c.Ratio }).Optional()
	configTags    = serde.Field("tags", serde.ListOf(serde.String), func(c Config) []string { return c.Tags }).Optional()
	configLimits  = serde.Field("limits", serde.StringMapOf(serde.Int), func(c Config) map[string]int { return c.Limits }).Optional()
	configOwner   = serde.Field("owner", serde.Ptr[Owner](OwnerSerializer), func(c Config) *Owner { return c.Owner }).Optional()
	configPayload = serde.Field("payload", serde.Bytes, func(c Config) []byte { return c.Payload }).Optional()

	// ConfigSerializer serializes Config. Port defaults to 8080.
	ConfigSerializer = serde.Object(func(f serde.Fields) Config {
		return Config{
			Name:    configName.From(f),
			Port:    configPort.From(f),
			Debug:   configDebug.From(f),
			Ratio:   configRatio.From(f),
			Tags:    configTags.From(f),
			Limits:  configLimits.From(f),
			Owner:   configOwner.From(f),
			Payload: configPayload.From(f),
		}
	}, configName, configPort, configDebug, configRatio, configTags, configLimits, configOwner, configPayload)
)

// SampleConfig returns a fully populated Config.
func SampleConfig() Config {
	return Config{
		Name:    "api",
		Port:    9090,
		Debug:   true,
		Ratio:   0.75,
		Tags:    []string{"blue", "green"},
		Limits:  map[string]int{"cpu": 4, "memory": 512},
		Owner:   &Owner{Name: "ops", Email: "ops@example.com"},
		Payload: []byte{0xde, 0xad, 0xbe, 0xef},
	}
}

// TaggedConfig mirrors Config through struct tags for Derive.
type TaggedConfig struct {
	Name   string            `serde:"name"`
	Port   uint16            `serde:"port"`
	Debug  bool              `serde:"debug,optional"`
	Ratio  float64           `serde:"ratio,optional"`
	Tags   []string          `serde:"tags,optional"`
	Limits map[string]int    `serde:"limits,optional"`
	Owner  *TaggedOwner      `serde:"owner,optional"`
	Labels map[string]string `serde:"-"`
}

// TaggedOwner is the nested struct of TaggedConfig.
type TaggedOwner struct {
	Name  string `serde:"name"`
	Email string `serde:"email,optional"`
}

// RoundTrip encodes v with codec through s and decodes it back.
func RoundTrip[T any](tb testing.TB, codec serde.Codec, s serde.Serializer[T], v T) T {
	tb.Helper()
	data, err := serde.Encode(codec, s, v)
	if err != nil {
		tb.Fatalf("Encode() error: %v", err)
	}
	out, err := serde.Decode(codec, s, data)
	if err != nil {
		tb.Fatalf("Decode() error: %v", err)
	}
	return out
}

// TreeRoundTrip marshals v with codec and unmarshals the result.
func TreeRoundTrip(tb testing.TB, codec serde.Codec, v serde.Value) serde.Value {
	tb.Helper()
	data, err := serde.Marshal(codec, v)
	if err != nil {
		tb.Fatalf("Marshal() error: %v", err)
	}
	out, err := serde.Unmarshal(codec, data)
	if err != nil {
		tb.Fatalf("Unmarshal() error: %v", err)
	}
	return out
}
