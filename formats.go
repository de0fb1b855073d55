package serde

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Formats selects codecs by file extension or content type. It performs no I/O.
type Formats struct {
	mu           sync.RWMutex
	byExtension  map[string]Codec
	byType       map[string]Codec
	defaultCodec Codec
}

// NewFormats returns an empty format table.
func NewFormats() *Formats {
	return &Formats{
		byExtension: make(map[string]Codec),
		byType:      make(map[string]Codec),
	}
}

// Register associates codec with its content type and the given extensions.
// The first codec registered becomes the default. Returns f for chaining.
func (f *Formats) Register(codec Codec, extensions ...string) *Formats {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, ext := range extensions {
		f.byExtension[normalizeExtension(ext)] = codec
	}
	f.byType[strings.ToLower(codec.ContentType())] = codec
	if f.defaultCodec == nil {
		f.defaultCodec = codec
	}
	return f
}

// SetDefault sets the codec returned for unknown extensions. Returns f for chaining.
func (f *Formats) SetDefault(codec Codec) *Formats {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.defaultCodec = codec
	return f
}

// ForExtension returns the codec registered for ext, with or without the leading dot.
func (f *Formats) ForExtension(ext string) (Codec, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	c, ok := f.byExtension[normalizeExtension(ext)]
	return c, ok
}

// ForFile returns the codec registered for the extension of path, falling
// back to the default codec.
func (f *Formats) ForFile(path string) (Codec, bool) {
	if c, ok := f.ForExtension(filepath.Ext(path)); ok {
		return c, true
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.defaultCodec, f.defaultCodec != nil
}

// ForContentType returns the codec registered for a MIME type.
// Parameters such as "; charset=utf-8" are ignored.
func (f *Formats) ForContentType(contentType string) (Codec, bool) {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	c, ok := f.byType[strings.TrimSpace(strings.ToLower(contentType))]
	return c, ok
}

// Extensions returns the registered extensions in sorted order.
func (f *Formats) Extensions() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	exts := make([]string, 0, len(f.byExtension))
	for ext := range f.byExtension {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

func normalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
