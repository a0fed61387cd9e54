/*
	This file describes the element types that can back a label field, and routines
	that answer width/representability questions about them.
*/

package seglib

import (
	"fmt"
)

// DataType is a unique ID for each type of element within seglib, e.g., a uint8 or an int64.
type DataType uint8

const (
	T_uint8 DataType = iota
	T_int8
	T_uint16
	T_int16
	T_uint32
	T_int32
	T_uint64
	T_int64
	T_float32
	T_float64
)

var typeBytes = map[DataType]int32{
	T_uint8:   1,
	T_int8:    1,
	T_uint16:  2,
	T_int16:   2,
	T_uint32:  4,
	T_int32:   4,
	T_uint64:  8,
	T_int64:   8,
	T_float32: 4,
	T_float64: 8,
}

var typeNames = map[DataType]string{
	T_uint8:   "uint8",
	T_int8:    "int8",
	T_uint16:  "uint16",
	T_int16:   "int16",
	T_uint32:  "uint32",
	T_int32:   "int32",
	T_uint64:  "uint64",
	T_int64:   "int64",
	T_float32: "float32",
	T_float64: "float64",
}

// DataTypeBytes returns the # of bytes for a given element type.
// For example, uint16 is 2 bytes.  No error checking is performed
// to make sure the type is valid.
func DataTypeBytes(t DataType) int32 {
	return typeBytes[t]
}

func (t DataType) String() string {
	name, found := typeNames[t]
	if !found {
		return fmt.Sprintf("unknown type (%d)", uint8(t))
	}
	return name
}

// ParseDataType returns the DataType for a type string like "uint16".
func ParseDataType(name string) (DataType, error) {
	for t, n := range typeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown data type %q", name)
}

// IsInteger returns true if the type holds fixed-width integers.
func (t DataType) IsInteger() bool {
	switch t {
	case T_uint8, T_int8, T_uint16, T_int16, T_uint32, T_int32, T_uint64, T_int64:
		return true
	}
	return false
}

// IsSigned returns true for the signed integer types.
func (t DataType) IsSigned() bool {
	switch t {
	case T_int8, T_int16, T_int32, T_int64:
		return true
	}
	return false
}

// MinScalarType returns the smallest unsigned integer type able to hold the
// given non-negative value.
func MinScalarType(v uint64) DataType {
	switch {
	case v <= 0xFF:
		return T_uint8
	case v <= 0xFFFF:
		return T_uint16
	case v <= 0xFFFFFFFF:
		return T_uint32
	default:
		return T_uint64
	}
}

// maximum non-negative value representable by each integer type
var typeMaxValue = map[DataType]uint64{
	T_uint8:  0xFF,
	T_int8:   0x7F,
	T_uint16: 0xFFFF,
	T_int16:  0x7FFF,
	T_uint32: 0xFFFFFFFF,
	T_int32:  0x7FFFFFFF,
	T_uint64: 0xFFFFFFFFFFFFFFFF,
	T_int64:  0x7FFFFFFFFFFFFFFF,
}

// CanRepresent returns true if the given non-negative value survives a round
// trip through integer type t without change.
func (t DataType) CanRepresent(v uint64) bool {
	max, found := typeMaxValue[t]
	if !found {
		return false
	}
	return v <= max
}
