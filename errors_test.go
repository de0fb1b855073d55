package serde

import (
	"errors"
	"io"
	"slices"
	"testing"
)

func TestShapeError(t *testing.T) {
	err := newShapeError(KindMap, KindString)

	if !errors.Is(err, ErrShape) {
		t.Error("ShapeError should unwrap to ErrShape")
	}
	want := "unexpected shape: expected map, got string"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	var se *ShapeError
	if !errors.As(err, &se) || se.Expected != KindMap || se.Actual != KindString {
		t.Errorf("errors.As() = %+v", se)
	}
}

func TestBoundsError(t *testing.T) {
	err := &BoundsError{Value: NewInt(101), Lower: "0", Upper: "100"}

	if !errors.Is(err, ErrBounds) {
		t.Error("BoundsError should unwrap to ErrBounds")
	}
	want := "value 101 is outside of bound [0, 100]"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestFieldError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "missing key",
			err:  newFieldError("port", ErrMissingKey),
			want: "unable to find value for required key port",
		},
		{
			name: "missing value",
			err:  newFieldError("port", ErrMissingValue),
			want: "a value for port could not be obtained from object",
		},
		{
			name: "unknown key",
			err:  newFieldError("extra", ErrUnknownKey),
			want: "unknown key extra",
		},
		{
			name: "nested",
			err:  newFieldError("server", newFieldError("port", ErrMissingKey)),
			want: "unable to deserialize value with key server: unable to find value for required key port",
		},
		{
			name: "cause",
			err:  newFieldError("port", newShapeError(KindNumber, KindBool)),
			want: "unable to deserialize value with key port: unexpected shape: expected number, got boolean",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFieldError_Path(t *testing.T) {
	err := newFieldError("a", newFieldError("b", newFieldError("c", ErrMissingKey)))

	var fe *FieldError
	if !errors.As(err, &fe) {
		t.Fatal("errors.As() should find FieldError")
	}
	if got := fe.Path(); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("Path() = %v, want [a b c]", got)
	}
	if !errors.Is(err, ErrMissingKey) {
		t.Error("nested FieldError should unwrap to ErrMissingKey")
	}
}

func TestNewFieldError_Nil(t *testing.T) {
	if err := newFieldError("k", nil); err != nil {
		t.Errorf("newFieldError(nil) = %v, want nil", err)
	}
}

func TestDispatchError(t *testing.T) {
	err := &DispatchError{Key: "triangle"}

	if !errors.Is(err, ErrDispatch) {
		t.Error("DispatchError should unwrap to ErrDispatch")
	}
	want := "unable to find value serializer for triangle"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestConflictError(t *testing.T) {
	err := &ConflictError{Key: "a"}

	if !errors.Is(err, ErrConflict) {
		t.Error("ConflictError should unwrap to ErrConflict")
	}
	want := `structural conflict: duplicate key "a"`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestCodecError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		want    string
		matches []error
	}{
		{
			name:    "with cause",
			err:     newCodecError(ErrDecode, "application/json", io.ErrUnexpectedEOF),
			want:    "decode failed (application/json): unexpected EOF",
			matches: []error{ErrDecode, io.ErrUnexpectedEOF},
		},
		{
			name:    "without cause",
			err:     newCodecError(ErrEncode, "application/yaml", nil),
			want:    "encode failed (application/yaml)",
			matches: []error{ErrEncode},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
			for _, target := range tt.matches {
				if !errors.Is(tt.err, target) {
					t.Errorf("errors.Is(%v) = false, want true", target)
				}
			}
		})
	}
}

func TestSentinelErrors(t *testing.T) {
	sentinels := []error{
		ErrShape, ErrBounds, ErrMissingKey, ErrUnknownKey, ErrMissingValue, ErrDispatch,
		ErrConflict, ErrUnsupported, ErrRegistrySealed, ErrDuplicate, ErrEncode, ErrDecode,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("%v should not match %v", a, b)
			}
		}
	}
}
