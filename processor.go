package serde

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"reflect"
	"sync"
	"time"
)

// Processor binds a Serializer to a Codec at an I/O boundary.
//
// Decode and Encode move between bytes and T through the canonical tree.
// Load never fails: a decode failure yields the caller's fallback value and
// is reported through SignalDecodeFallback.
//
// Processors are safe for concurrent use. SetCodec may be called at any time.
type Processor[T any] struct {
	serializer Serializer[T]

	// Mutable configuration protected by mu
	mu       sync.RWMutex
	codec    Codec
	defaults Value

	// Type metadata
	typeName string
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*processorConfig)

type processorConfig struct {
	defaults Value
}

// WithDefaults merges defaults under every decoded tree before it is
// deserialized, following Merge: keys present in the input win, missing
// keys come from defaults.
func WithDefaults(defaults Value) ProcessorOption {
	return func(c *processorConfig) {
		c.defaults = FreezeValue(defaults)
	}
}

// NewProcessor creates a Processor for T.
func NewProcessor[T any](codec Codec, s Serializer[T], opts ...ProcessorOption) *Processor[T] {
	var cfg processorConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	p := &Processor[T]{
		serializer: s,
		codec:      codec,
		defaults:   cfg.defaults,
		typeName:   reflect.TypeFor[T]().String(),
	}

	emitProcessorCreated(context.Background(), codec.ContentType(), p.typeName)
	return p
}

// SetCodec replaces the codec. Returns the processor for chaining.
func (p *Processor[T]) SetCodec(codec Codec) *Processor[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.codec = codec
	return p
}

// Codec returns the current codec.
func (p *Processor[T]) Codec() Codec {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.codec
}

// Decode decodes data and deserializes it into a T.
func (p *Processor[T]) Decode(ctx context.Context, data []byte) (T, error) {
	return p.decode(ctx, bytes.NewReader(data), len(data))
}

// Read decodes one tree from r and deserializes it into a T.
func (p *Processor[T]) Read(ctx context.Context, r io.Reader) (T, error) {
	return p.decode(ctx, r, -1)
}

// Load is Decode that returns fallback instead of failing.
func (p *Processor[T]) Load(ctx context.Context, data []byte, fallback T) T {
	v, err := p.Decode(ctx, data)
	if err != nil {
		emitDecodeFallback(ctx, p.Codec().ContentType(), p.typeName, err)
		return fallback
	}
	return v
}

func (p *Processor[T]) decode(ctx context.Context, r io.Reader, size int) (T, error) {
	p.mu.RLock()
	codec, defaults := p.codec, p.defaults
	p.mu.RUnlock()

	start := time.Now()
	emitDecodeStart(ctx, codec.ContentType(), p.typeName, size)

	var retErr error
	defer func() {
		emitDecodeComplete(ctx, codec.ContentType(), p.typeName, time.Since(start), retErr)
	}()

	var zero T
	tree, err := codec.Decode(r)
	if err != nil {
		retErr = fmt.Errorf("decode: %w", newCodecError(ErrDecode, codec.ContentType(), err))
		return zero, retErr
	}

	if defaults != nil {
		tree = Merge[Value](Canonical, tree, defaults)
	}

	v, err := Deserialize(Canonical, p.serializer, tree).Get()
	if err != nil {
		retErr = fmt.Errorf("deserialize: %w", err)
		return zero, retErr
	}
	return v, nil
}

// Encode serializes v and encodes it.
func (p *Processor[T]) Encode(ctx context.Context, v T) ([]byte, error) {
	var buf bytes.Buffer
	if err := p.Write(ctx, &buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write serializes v and encodes it to w.
func (p *Processor[T]) Write(ctx context.Context, w io.Writer, v T) error {
	codec := p.Codec()

	start := time.Now()
	emitEncodeStart(ctx, codec.ContentType(), p.typeName)

	counter := &countingWriter{w: w}
	var retErr error
	defer func() {
		emitEncodeComplete(ctx, codec.ContentType(), p.typeName, counter.n, time.Since(start), retErr)
	}()

	tree, err := Serialize(Canonical, p.serializer, v).Get()
	if err != nil {
		retErr = fmt.Errorf("serialize: %w", err)
		return retErr
	}

	if err := codec.Encode(counter, tree); err != nil {
		retErr = fmt.Errorf("encode: %w", newCodecError(ErrEncode, codec.ContentType(), err))
		return retErr
	}
	return nil
}

// countingWriter counts bytes written for the encode signal.
type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(b []byte) (int, error) {
	n, err := c.w.Write(b)
	c.n += n
	return n, err
}
