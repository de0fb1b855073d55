package serde

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrShape indicates an external value does not have the semantic shape a serializer expected.
	ErrShape = errors.New("unexpected shape")

	// ErrBounds indicates a numeric value lies outside the inclusive range of its serializer.
	ErrBounds = errors.New("value out of bounds")

	// ErrMissingKey indicates a required field key is absent from the source map.
	ErrMissingKey = errors.New("missing key")

	// ErrUnknownKey indicates a strict object serializer found a key it does not declare.
	ErrUnknownKey = errors.New("unknown key")

	// ErrMissingValue indicates a required field getter produced no value during serialize.
	ErrMissingValue = errors.New("missing value")

	// ErrDispatch indicates no serializer is registered for a discriminator.
	ErrDispatch = errors.New("no serializer for discriminator")

	// ErrConflict indicates a conversion produced duplicate destination keys.
	ErrConflict = errors.New("structural conflict")

	// ErrUnsupported indicates a serializer does not support the requested direction.
	ErrUnsupported = errors.New("unsupported operation")

	// ErrRegistrySealed indicates a registration was attempted after the registry was sealed.
	ErrRegistrySealed = errors.New("registry sealed")

	// ErrDuplicate indicates a registration reused an existing identifier.
	ErrDuplicate = errors.New("duplicate registration")

	// ErrEncode indicates the codec failed to encode a value tree.
	ErrEncode = errors.New("encode failed")

	// ErrDecode indicates the codec failed to decode input data.
	ErrDecode = errors.New("decode failed")
)

// ShapeError reports a mismatch between the expected and actual semantic shape.
type ShapeError struct {
	Expected Kind
	Actual   Kind
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", ErrShape.Error(), e.Expected, e.Actual)
}

func (e *ShapeError) Unwrap() error {
	return ErrShape
}

// BoundsError reports a numeric value outside an inclusive [Lower, Upper] range.
type BoundsError struct {
	Value Number
	Lower string
	Upper string
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("value %s is outside of bound [%s, %s]", e.Value, e.Lower, e.Upper)
}

func (e *BoundsError) Unwrap() error {
	return ErrBounds
}

// FieldError annotates a failure with the map key it occurred under.
type FieldError struct {
	Key string // Key of the failing entry
	Err error  // Underlying failure
}

func (e *FieldError) Error() string {
	switch {
	case errors.Is(e.Err, ErrMissingKey) && !hasField(e.Err):
		return fmt.Sprintf("unable to find value for required key %s", e.Key)
	case errors.Is(e.Err, ErrMissingValue):
		return fmt.Sprintf("a value for %s could not be obtained from object", e.Key)
	case errors.Is(e.Err, ErrUnknownKey):
		return fmt.Sprintf("unknown key %s", e.Key)
	}
	return fmt.Sprintf("unable to deserialize value with key %s: %v", e.Key, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Path returns the keys from the outermost field to the innermost one.
func (e *FieldError) Path() []string {
	path := []string{e.Key}
	var inner *FieldError
	if errors.As(e.Err, &inner) {
		path = append(path, inner.Path()...)
	}
	return path
}

func hasField(err error) bool {
	var fe *FieldError
	return errors.As(err, &fe)
}

// DispatchError reports a discriminator without a registered serializer.
type DispatchError struct {
	Key any
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("unable to find value serializer for %v", e.Key)
}

func (e *DispatchError) Unwrap() error {
	return ErrDispatch
}

// ConflictError is the panic value raised when Convert produces duplicate map keys.
type ConflictError struct {
	Key string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: duplicate key %q", ErrConflict.Error(), e.Key)
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// CodecError represents an encode/decode error.
type CodecError struct {
	Err         error  // Underlying sentinel error (ErrEncode, ErrDecode)
	ContentType string // Content type of the failing codec
	Cause       error  // Original error from the codec
}

func (e *CodecError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %v", e.Err.Error(), e.ContentType, e.Cause)
	}
	return fmt.Sprintf("%s (%s)", e.Err.Error(), e.ContentType)
}

func (e *CodecError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// newShapeError creates a ShapeError for a reader that found the wrong shape.
func newShapeError(expected, actual Kind) error {
	return &ShapeError{Expected: expected, Actual: actual}
}

// newFieldError annotates err with key unless it is nil.
func newFieldError(key string, err error) error {
	if err == nil {
		return nil
	}
	return &FieldError{Key: key, Err: err}
}

// newCodecError creates a CodecError for encode/decode failures.
func newCodecError(sentinel error, contentType string, cause error) error {
	return &CodecError{
		Err:         sentinel,
		ContentType: contentType,
		Cause:       cause,
	}
}
