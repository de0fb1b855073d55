package serde_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/zoobzio/serde"
	"github.com/zoobzio/serde/json"
	"github.com/zoobzio/serde/yaml"
)

// failingCodec fails the directions it is told to.
type failingCodec struct {
	failEncode bool
	failDecode bool
}

func (c *failingCodec) ContentType() string { return "application/x-failing" }

func (c *failingCodec) Encode(w io.Writer, v serde.Value) error {
	if c.failEncode {
		return fmt.Errorf("encode failed")
	}
	return json.New().Encode(w, v)
}

func (c *failingCodec) Decode(r io.Reader) (serde.Value, error) {
	if c.failDecode {
		return nil, fmt.Errorf("decode failed")
	}
	return json.New().Decode(r)
}

func TestNewProcessor(t *testing.T) {
	proc := serde.NewProcessor[server](json.New(), serverSerializer)
	if proc == nil {
		t.Fatal("NewProcessor() returned nil")
	}
	if got := proc.Codec().ContentType(); got != "application/json" {
		t.Errorf("Codec().ContentType() = %q, want application/json", got)
	}
}

func TestProcessor_EncodeDecode(t *testing.T) {
	proc := serde.NewProcessor[server](json.New(), serverSerializer)
	ctx := context.Background()

	want := server{Name: "api", Host: "localhost", Port: 9090, Tags: []string{"a"}}
	data, err := proc.Encode(ctx, want)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if !strings.Contains(string(data), `"name":"api"`) {
		t.Errorf("Encode() = %s, want name field", data)
	}

	got, err := proc.Decode(ctx, data)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestProcessor_ReadWrite(t *testing.T) {
	proc := serde.NewProcessor[server](yaml.New(), serverSerializer)
	ctx := context.Background()

	var buf bytes.Buffer
	want := server{Name: "api", Port: 80}
	if err := proc.Write(ctx, &buf, want); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	got, err := proc.Read(ctx, &buf)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestProcessor_DecodeErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("codec", func(t *testing.T) {
		proc := serde.NewProcessor[server](&failingCodec{failDecode: true}, serverSerializer)
		_, err := proc.Decode(ctx, []byte(`{}`))

		if !errors.Is(err, serde.ErrDecode) {
			t.Fatalf("Decode() error = %v, want ErrDecode", err)
		}
		var ce *serde.CodecError
		if !errors.As(err, &ce) || ce.ContentType != "application/x-failing" {
			t.Errorf("CodecError = %+v", ce)
		}
		if !strings.HasPrefix(err.Error(), "decode: ") {
			t.Errorf("Error() = %q, want decode prefix", err.Error())
		}
	})

	t.Run("syntax", func(t *testing.T) {
		proc := serde.NewProcessor[server](json.New(), serverSerializer)
		if _, err := proc.Decode(ctx, []byte(`{"name":`)); !errors.Is(err, serde.ErrDecode) {
			t.Errorf("Decode() error = %v, want ErrDecode", err)
		}
	})

	t.Run("deserialize", func(t *testing.T) {
		proc := serde.NewProcessor[server](json.New(), serverSerializer)
		_, err := proc.Decode(ctx, []byte(`{"port":80}`))

		if !errors.Is(err, serde.ErrMissingKey) {
			t.Fatalf("Decode() error = %v, want ErrMissingKey", err)
		}
		if !strings.HasPrefix(err.Error(), "deserialize: ") {
			t.Errorf("Error() = %q, want deserialize prefix", err.Error())
		}
	})
}

func TestProcessor_EncodeErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("codec", func(t *testing.T) {
		proc := serde.NewProcessor[server](&failingCodec{failEncode: true}, serverSerializer)
		if _, err := proc.Encode(ctx, server{Name: "api", Port: 80}); !errors.Is(err, serde.ErrEncode) {
			t.Errorf("Encode() error = %v, want ErrEncode", err)
		}
	})

	t.Run("serialize", func(t *testing.T) {
		proc := serde.NewProcessor[server](json.New(), serverSerializer)
		_, err := proc.Encode(ctx, server{Name: "api", Port: 0})
		if !errors.Is(err, serde.ErrBounds) {
			t.Fatalf("Encode() error = %v, want ErrBounds", err)
		}
		if !strings.HasPrefix(err.Error(), "serialize: ") {
			t.Errorf("Error() = %q, want serialize prefix", err.Error())
		}
	})
}

func TestProcessor_Load(t *testing.T) {
	proc := serde.NewProcessor[server](json.New(), serverSerializer)
	ctx := context.Background()
	fallback := server{Name: "fallback", Port: 1}

	if got := proc.Load(ctx, []byte(`not json`), fallback); got.Name != "fallback" {
		t.Errorf("Load(invalid) = %+v, want fallback", got)
	}
	if got := proc.Load(ctx, []byte(`{"port":80}`), fallback); got.Name != "fallback" {
		t.Errorf("Load(missing name) = %+v, want fallback", got)
	}
	if got := proc.Load(ctx, []byte(`{"name":"api"}`), fallback); got.Name != "api" || got.Port != 8080 {
		t.Errorf("Load(valid) = %+v, want {api 8080}", got)
	}
}

func TestProcessor_WithDefaults(t *testing.T) {
	defaults := serde.NewSection().
		With("name", serde.StringValue("default")).
		With("port", serde.IntValue(7000)).
		With("tags", serde.NewList(serde.StringValue("base")))
	proc := serde.NewProcessor[server](json.New(), serverSerializer, serde.WithDefaults(defaults))
	ctx := context.Background()

	tests := []struct {
		name  string
		input string
		want  server
	}{
		{"empty", `{}`, server{Name: "default", Port: 7000, Tags: []string{"base"}}},
		{"input wins", `{"name":"api","tags":["x"]}`, server{Name: "api", Port: 7000, Tags: []string{"x"}}},
		{"null input", `null`, server{Name: "default", Port: 7000, Tags: []string{"base"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := proc.Decode(ctx, []byte(tt.input))
			if err != nil {
				t.Fatalf("Decode() error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
			}
		})
	}

	// Defaults are copied, never shared with decoded trees.
	defaults.Set("name", serde.StringValue("changed"))
	got, _ := proc.Decode(ctx, []byte(`{}`))
	if got.Name != "default" {
		t.Errorf("Name = %q, want default after caller mutation", got.Name)
	}
}

func TestProcessor_SetCodec(t *testing.T) {
	proc := serde.NewProcessor[server](json.New(), serverSerializer)

	if result := proc.SetCodec(yaml.New()); result != proc {
		t.Error("SetCodec() should return processor for chaining")
	}
	if got := proc.Codec().ContentType(); got != "application/yaml" {
		t.Errorf("Codec().ContentType() = %q, want application/yaml", got)
	}

	got, err := proc.Decode(context.Background(), []byte("name: api\nport: 81\n"))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if got.Port != 81 {
		t.Errorf("Port = %d, want 81", got.Port)
	}
}

func TestProcessor_Concurrent(t *testing.T) {
	proc := serde.NewProcessor[server](json.New(), serverSerializer)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%5 == 0 {
				proc.SetCodec(json.New())
			}
			want := server{Name: fmt.Sprintf("svc-%d", i), Port: 1000 + i}
			data, err := proc.Encode(ctx, want)
			if err != nil {
				t.Errorf("Encode() error: %v", err)
				return
			}
			got, err := proc.Decode(ctx, data)
			if err != nil {
				t.Errorf("Decode() error: %v", err)
				return
			}
			if got.Name != want.Name || got.Port != want.Port {
				t.Errorf("round trip = %+v, want %+v", got, want)
			}
		}(i)
	}
	wg.Wait()
}

func TestEncodeDecode_Functions(t *testing.T) {
	data, err := serde.Encode[server](json.New(), serverSerializer, server{Name: "api", Port: 80})
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	got, err := serde.Decode[server](json.New(), serverSerializer, data)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if got.Name != "api" || got.Port != 80 {
		t.Errorf("Decode() = %+v, want {api 80}", got)
	}

	if _, err := serde.Unmarshal(json.New(), []byte(`[`)); !errors.Is(err, serde.ErrDecode) {
		t.Errorf("Unmarshal() error = %v, want ErrDecode", err)
	}
	if _, err := serde.Marshal(&failingCodec{failEncode: true}, serde.NewSection()); !errors.Is(err, serde.ErrEncode) {
		t.Errorf("Marshal() error = %v, want ErrEncode", err)
	}
}

func TestEncodedString(t *testing.T) {
	tags := serde.EncodedString[[]string](serde.ListOf(serde.String), json.New())

	node := toValue(t, tags, []string{"a", "b"})
	text, ok := node.(*serde.Primitive).AsString()
	if !ok {
		t.Fatalf("Serialize() = %v, want a string", node)
	}
	if strings.TrimSpace(text) != `["a","b"]` {
		t.Errorf("Serialize() = %q, want [\"a\",\"b\"]", text)
	}

	got, err := fromValue(tags, node)
	if err != nil {
		t.Fatalf("Deserialize() error: %v", err)
	}
	if !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("Deserialize() = %v, want [a b]", got)
	}

	if _, err := fromValue(tags, serde.StringValue("{")); !errors.Is(err, serde.ErrDecode) {
		t.Errorf("Deserialize(invalid) error = %v, want ErrDecode", err)
	}
}

func TestEncoded(t *testing.T) {
	tags := serde.Encoded[[]string](serde.ListOf(serde.String), json.New())

	node := toValue(t, tags, []string{"a", "b"})
	blob, ok := node.(*serde.Blob)
	if !ok {
		t.Fatalf("Serialize() = %T, want *Blob", node)
	}
	if got := strings.TrimSpace(string(blob.Bytes())); got != `["a","b"]` {
		t.Errorf("blob = %s, want [\"a\",\"b\"]", got)
	}

	got, err := fromValue(tags, serde.StringValue("WyJjIl0="))
	if err != nil {
		t.Fatalf("Deserialize(base64) error: %v", err)
	}
	if len(got) != 1 || got[0] != "c" {
		t.Errorf("Deserialize(base64) = %v, want [c]", got)
	}
}
