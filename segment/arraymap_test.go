package segment

import (
	"errors"
	"reflect"
	"testing"

	"github.com/segbase/seglib/seglib"
)

func TestArrayMapConstruction(t *testing.T) {
	if _, err := NewArrayMap([]uint64{1, 2}, []uint64{5}, seglib.T_uint64); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected invalid argument for mismatched lengths, got %v\n", err)
	}
	if _, err := NewArrayMap(nil, nil, seglib.T_uint64); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected invalid argument for empty domain, got %v\n", err)
	}
	if _, err := NewArrayMap([]uint64{1, 2, 1}, []uint64{5, 6, 7}, seglib.T_uint64); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected invalid argument for duplicate keys, got %v\n", err)
	}
	if _, err := NewArrayMap([]uint64{1}, []uint64{5}, seglib.T_float32); !errors.Is(err, ErrTypeConstraint) {
		t.Errorf("Expected type constraint violation for float output type, got %v\n", err)
	}
	if _, err := NewArrayMap([]uint64{1}, []uint64{300}, seglib.T_uint8); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected invalid argument for value overflowing uint8, got %v\n", err)
	}
	if _, err := NewArrayMap([]uint64{9, 1, 4}, []uint64{2, 3, 4}, seglib.T_uint32); err != nil {
		t.Errorf("Unexpected error building map with unsorted keys: %v\n", err)
	}
}

func TestArrayMapLookup(t *testing.T) {
	m, err := NewArrayMap([]uint64{1, 5, 8}, []uint64{10, 20, 30}, seglib.T_uint64)
	if err != nil {
		t.Fatalf("Unable to build map: %v\n", err)
	}
	if v, err := m.Lookup(5); v != 20 || err != nil {
		t.Errorf("Bad lookup of mapped key.  Got %d, %v\n", v, err)
	}
	if v, err := m.Lookup(6); v != 0 || err != nil {
		t.Errorf("Expected zero for unmapped key, got %d, %v\n", v, err)
	}
	if v, err := m.Lookup(100); v != 0 || err != nil {
		t.Errorf("Expected zero for key beyond domain, got %d, %v\n", v, err)
	}

	got, err := m.LookupBatch([]uint64{8, 0, 5, 5, 2})
	if err != nil {
		t.Fatalf("Batch lookup failed: %v\n", err)
	}
	expected := []uint64{30, 0, 20, 20, 0}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Bad batch lookup.  Expected %v, got %v\n", expected, got)
	}
}

func TestArrayMapLen(t *testing.T) {
	m, err := NewArrayMap([]uint64{5}, []uint64{99}, seglib.T_uint64)
	if err != nil {
		t.Fatalf("Unable to build map: %v\n", err)
	}
	// Length is one past the greatest key, not the entry count.
	if m.Len() != 6 {
		t.Errorf("Expected len 6 for map with single key 5, got %d\n", m.Len())
	}
}

func TestArrayMapRange(t *testing.T) {
	m, err := NewArrayMap([]uint64{0, 3}, []uint64{7, 9}, seglib.T_uint64)
	if err != nil {
		t.Fatalf("Unable to build map: %v\n", err)
	}
	got, err := m.LookupRange(0, -1, 1)
	if err != nil {
		t.Fatalf("Range lookup failed: %v\n", err)
	}
	expected := []uint64{7, 0, 0, 9}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Bad default range lookup.  Expected %v, got %v\n", expected, got)
	}
	got, err = m.LookupRange(1, 4, 2)
	if err != nil {
		t.Fatalf("Stepped range lookup failed: %v\n", err)
	}
	expected = []uint64{0, 9}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Bad stepped range lookup.  Expected %v, got %v\n", expected, got)
	}
	if _, err := m.LookupRange(0, 4, 0); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected invalid argument for zero step, got %v\n", err)
	}
}

func TestArrayMapMask(t *testing.T) {
	m, err := NewArrayMap([]uint64{1, 2}, []uint64{11, 22}, seglib.T_uint64)
	if err != nil {
		t.Fatalf("Unable to build map: %v\n", err)
	}
	got, err := m.LookupMask([]bool{false, true, true, true})
	if err != nil {
		t.Fatalf("Mask lookup failed: %v\n", err)
	}
	expected := []uint64{11, 22, 0}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Bad mask lookup.  Expected %v, got %v\n", expected, got)
	}
}

func TestArrayMapMaterialize(t *testing.T) {
	m, err := NewArrayMap([]uint64{1, 3}, []uint64{10, 30}, seglib.T_uint16)
	if err != nil {
		t.Fatalf("Unable to build map: %v\n", err)
	}
	dense, err := m.Materialize()
	if err != nil {
		t.Fatalf("Materialize failed: %v\n", err)
	}
	if dense.DataType() != seglib.T_uint16 {
		t.Errorf("Expected uint16 dense table, got %s\n", dense.DataType())
	}
	if dense.Size() != 4 {
		t.Errorf("Expected dense table of 4 entries, got %d\n", dense.Size())
	}
	expected := []uint64{0, 10, 0, 30}
	for i, v := range expected {
		if dense.Value(i) != v {
			t.Errorf("Bad dense table entry %d.  Expected %d, got %d\n", i, v, dense.Value(i))
		}
	}
}

func TestArrayMapUpdate(t *testing.T) {
	m, err := NewArrayMap([]uint64{1, 3, 5}, []uint64{10, 30, 50}, seglib.T_uint64)
	if err != nil {
		t.Fatalf("Unable to build map: %v\n", err)
	}
	if err := m.Update([]uint64{3, 6}, []uint64{33, 66}); err != nil {
		t.Fatalf("Update failed: %v\n", err)
	}
	if v, _ := m.Lookup(3); v != 33 {
		t.Errorf("Expected updated value 33 for key 3, got %d\n", v)
	}
	if v, _ := m.Lookup(6); v != 66 {
		t.Errorf("Expected new key 6 -> 66, got %d\n", v)
	}
	if m.Len() != 7 {
		t.Errorf("Expected len 7 after growing update, got %d\n", m.Len())
	}

	// Setting a value to zero removes the key from the sparse support.
	if err := m.Update([]uint64{5}, []uint64{0}); err != nil {
		t.Fatalf("Compacting update failed: %v\n", err)
	}
	expected := []uint64{1, 3, 6}
	if !reflect.DeepEqual(m.InValues(), expected) {
		t.Errorf("Expected compacted domain %v, got %v\n", expected, m.InValues())
	}

	// A failed update must leave the map untouched.
	before := m.OutValues()
	if err := m.Update([]uint64{1, 2}, []uint64{7}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected invalid argument for mismatched update lengths, got %v\n", err)
	}
	if !reflect.DeepEqual(m.OutValues(), before) {
		t.Errorf("Map changed after failed update: had %v, now %v\n", before, m.OutValues())
	}
}

func TestArrayMapEmptiedByUpdate(t *testing.T) {
	m, err := NewArrayMap([]uint64{4}, []uint64{44}, seglib.T_uint64)
	if err != nil {
		t.Fatalf("Unable to build map: %v\n", err)
	}
	if err := m.Update([]uint64{4}, []uint64{0}); err != nil {
		t.Fatalf("Compacting update failed: %v\n", err)
	}
	if m.Len() != 0 {
		t.Errorf("Expected len 0 for emptied map, got %d\n", m.Len())
	}
	if _, err := m.Lookup(4); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Expected invalid state for lookup on emptied map, got %v\n", err)
	}
	if _, err := m.Materialize(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Expected invalid state for materialize on emptied map, got %v\n", err)
	}
}

func TestArrayMapString(t *testing.T) {
	m, err := NewArrayMap([]uint64{1, 5}, []uint64{10, 50}, seglib.T_uint64)
	if err != nil {
		t.Fatalf("Unable to build map: %v\n", err)
	}
	expected := "ArrayMap:\n  1 -> 10\n  5 -> 50"
	if m.String() != expected {
		t.Errorf("Bad map print.  Expected %q, got %q\n", expected, m.String())
	}

	big, err := NewArrayMap([]uint64{1, 2, 3, 4, 5, 6}, []uint64{1, 2, 3, 4, 5, 6}, seglib.T_uint64)
	if err != nil {
		t.Fatalf("Unable to build map: %v\n", err)
	}
	expected = "ArrayMap:\n  1 -> 1\n  2 -> 2\n  ...\n  5 -> 5\n  6 -> 6"
	if big.String() != expected {
		t.Errorf("Bad truncated map print.  Expected %q, got %q\n", expected, big.String())
	}
}

func TestArrayMapSerialization(t *testing.T) {
	m, err := NewArrayMap([]uint64{1, 5, 8, 42, 99}, []uint64{1, 2, 3, 4, 5}, seglib.T_uint8)
	if err != nil {
		t.Fatalf("Unable to build map: %v\n", err)
	}
	b, err := m.MarshalBinary()
	if err != nil {
		t.Fatalf("Unable to serialize map: %v\n", err)
	}
	var m2 ArrayMap
	if err := m2.UnmarshalBinary(b); err != nil {
		t.Fatalf("Unable to deserialize map: %v\n", err)
	}
	if !reflect.DeepEqual(m.InValues(), m2.InValues()) || !reflect.DeepEqual(m.OutValues(), m2.OutValues()) {
		t.Errorf("Map changed through serialization: %s vs %s\n", m, &m2)
	}
	if m2.OutType() != seglib.T_uint8 {
		t.Errorf("Expected uint8 output type after deserialization, got %s\n", m2.OutType())
	}

	if err := m2.UnmarshalBinary(b[:7]); err == nil {
		t.Errorf("Expected error deserializing truncated map data\n")
	}
}
