/*
	This file implements Field, an n-dimensional array of fixed-width elements
	stored as packed little-endian bytes, the same layout used for label arrays
	on the wire.
*/

package seglib

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Field is an n-dimensional array of fixed-width elements.  Elements are packed
// little-endian in row-major order, so the last shape dimension varies fastest.
type Field struct {
	dtype DataType
	shape []int
	data  []byte
}

// NewField returns a zero-valued field of the given element type and shape.
func NewField(t DataType, shape []int) (*Field, error) {
	width, found := typeBytes[t]
	if !found {
		return nil, fmt.Errorf("cannot create field with unknown data type (%d)", uint8(t))
	}
	size := 1
	for _, d := range shape {
		if d < 0 {
			return nil, fmt.Errorf("cannot create field with negative dimension %d in shape %v", d, shape)
		}
		size *= d
	}
	if len(shape) == 0 {
		size = 0
	}
	f := &Field{
		dtype: t,
		shape: append([]int(nil), shape...),
		data:  make([]byte, size*int(width)),
	}
	return f, nil
}

// FieldFromBytes wraps already-packed element data in a field.  The data is
// used directly, not copied, and must be prod(shape) * element width bytes.
func FieldFromBytes(t DataType, shape []int, data []byte) (*Field, error) {
	f, err := NewField(t, shape)
	if err != nil {
		return nil, err
	}
	if len(data) != len(f.data) {
		return nil, fmt.Errorf("field of type %s and shape %v requires %d bytes, got %d",
			t, shape, len(f.data), len(data))
	}
	f.data = data
	return f, nil
}

// FieldFromValues builds a field from element values given in the canonical
// uint64 currency (see Value).  Each value is truncated to the element width.
func FieldFromValues(t DataType, shape []int, values []uint64) (*Field, error) {
	f, err := NewField(t, shape)
	if err != nil {
		return nil, err
	}
	if len(values) != f.Size() {
		return nil, fmt.Errorf("field of shape %v requires %d values, got %d",
			shape, f.Size(), len(values))
	}
	for i, v := range values {
		f.SetValue(i, v)
	}
	return f, nil
}

// DataType returns the element type of the field.
func (f *Field) DataType() DataType {
	return f.dtype
}

// Shape returns a copy of the field dimensions.
func (f *Field) Shape() []int {
	return append([]int(nil), f.shape...)
}

// Rank returns the number of dimensions.
func (f *Field) Rank() int {
	return len(f.shape)
}

// Size returns the total number of elements.
func (f *Field) Size() int {
	width := int(typeBytes[f.dtype])
	return len(f.data) / width
}

// Bytes returns the packed little-endian element data.
func (f *Field) Bytes() []byte {
	return f.data
}

// SameShape returns true if the two fields have identical dimensions.
func (f *Field) SameShape(f2 *Field) bool {
	if len(f.shape) != len(f2.shape) {
		return false
	}
	for i, d := range f.shape {
		if d != f2.shape[i] {
			return false
		}
	}
	return true
}

// Index converts an n-dimensional coordinate to a flat element offset.
func (f *Field) Index(coord []int) (int, error) {
	if len(coord) != len(f.shape) {
		return 0, fmt.Errorf("coordinate %v does not match field of rank %d", coord, len(f.shape))
	}
	i := 0
	for d, c := range coord {
		if c < 0 || c >= f.shape[d] {
			return 0, fmt.Errorf("coordinate %v outside field of shape %v", coord, f.shape)
		}
		i = i*f.shape[d] + c
	}
	return i, nil
}

// Value returns the element at flat offset i in the canonical uint64 currency:
// unsigned elements widen directly, while signed elements are sign-extended to
// int64 and reinterpreted, so a negative element yields a value >= 1<<63.
// Callers that require non-negative labels should check HasNegative first.
func (f *Field) Value(i int) uint64 {
	switch f.dtype {
	case T_uint8:
		return uint64(f.data[i])
	case T_int8:
		return uint64(int64(int8(f.data[i])))
	case T_uint16:
		return uint64(binary.LittleEndian.Uint16(f.data[i*2:]))
	case T_int16:
		return uint64(int64(int16(binary.LittleEndian.Uint16(f.data[i*2:]))))
	case T_uint32:
		return uint64(binary.LittleEndian.Uint32(f.data[i*4:]))
	case T_int32:
		return uint64(int64(int32(binary.LittleEndian.Uint32(f.data[i*4:]))))
	case T_uint64, T_int64:
		return binary.LittleEndian.Uint64(f.data[i*8:])
	}
	return 0
}

// SetValue stores a canonical uint64 value at flat offset i, truncating to the
// element width.
func (f *Field) SetValue(i int, v uint64) {
	switch f.dtype {
	case T_uint8, T_int8:
		f.data[i] = uint8(v)
	case T_uint16, T_int16:
		binary.LittleEndian.PutUint16(f.data[i*2:], uint16(v))
	case T_uint32, T_int32:
		binary.LittleEndian.PutUint32(f.data[i*4:], uint32(v))
	case T_uint64, T_int64:
		binary.LittleEndian.PutUint64(f.data[i*8:], v)
	}
}

// At returns the element at the given n-dimensional coordinate.
func (f *Field) At(coord ...int) (uint64, error) {
	i, err := f.Index(coord)
	if err != nil {
		return 0, err
	}
	return f.Value(i), nil
}

// SetAt stores a value at the given n-dimensional coordinate.
func (f *Field) SetAt(v uint64, coord ...int) error {
	i, err := f.Index(coord)
	if err != nil {
		return err
	}
	f.SetValue(i, v)
	return nil
}

// HasNegative returns true if any element of a signed field is negative.
// Unsigned fields always return false.
func (f *Field) HasNegative() bool {
	if !f.dtype.IsSigned() {
		return false
	}
	for i, n := 0, f.Size(); i < n; i++ {
		if int64(f.Value(i)) < 0 {
			return true
		}
	}
	return false
}

// MaxValue returns the maximum element of the field in the canonical currency.
// Results are only meaningful for fields without negative elements.
func (f *Field) MaxValue() uint64 {
	var max uint64
	for i, n := 0, f.Size(); i < n; i++ {
		if v := f.Value(i); v > max {
			max = v
		}
	}
	return max
}

// Equal returns true if the two fields have the same type, shape, and data.
func (f *Field) Equal(f2 *Field) bool {
	if f.dtype != f2.dtype || !f.SameShape(f2) {
		return false
	}
	return string(f.data) == string(f2.data)
}

// EqualValues returns true if the two fields have the same shape and the same
// elements in the canonical currency, regardless of element type.
func (f *Field) EqualValues(f2 *Field) bool {
	if !f.SameShape(f2) {
		return false
	}
	for i, n := 0, f.Size(); i < n; i++ {
		if f.Value(i) != f2.Value(i) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the field.
func (f *Field) Clone() *Field {
	data := make([]byte, len(f.data))
	copy(data, f.data)
	return &Field{
		dtype: f.dtype,
		shape: append([]int(nil), f.shape...),
		data:  data,
	}
}

const maxStringElements = 32

// String prints small fields in full and large ones by type and shape only.
func (f *Field) String() string {
	n := f.Size()
	if n > maxStringElements {
		return fmt.Sprintf("%s field of shape %v (%d elements)", f.dtype, f.shape, n)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s field %v [", f.dtype, f.shape)
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(" ")
		}
		if f.dtype.IsSigned() {
			fmt.Fprintf(&b, "%d", int64(f.Value(i)))
		} else {
			fmt.Fprintf(&b, "%d", f.Value(i))
		}
	}
	b.WriteString("]")
	return b.String()
}
