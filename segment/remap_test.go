package segment

import (
	"errors"
	"testing"

	"github.com/segbase/seglib/seglib"
)

func mustField(t *testing.T, dtype seglib.DataType, shape []int, values []uint64) *seglib.Field {
	t.Helper()
	f, err := seglib.FieldFromValues(dtype, shape, values)
	if err != nil {
		t.Fatalf("Unable to build %s field of shape %v: %v\n", dtype, shape, err)
	}
	return f
}

func checkValues(t *testing.T, f *seglib.Field, expected []uint64) {
	t.Helper()
	if f.Size() != len(expected) {
		t.Fatalf("Expected field of %d elements, got %d\n", len(expected), f.Size())
	}
	for i, v := range expected {
		if f.Value(i) != v {
			t.Errorf("Bad field element %d.  Expected %d, got %d\n", i, v, f.Value(i))
		}
	}
}

func TestRelabelSequential(t *testing.T) {
	field := mustField(t, seglib.T_uint64, []int{7}, []uint64{1, 1, 5, 5, 8, 99, 42})
	relabeled, fw, inv, err := RelabelSequential(field, 1)
	if err != nil {
		t.Fatalf("Relabel failed: %v\n", err)
	}
	checkValues(t, relabeled, []uint64{1, 1, 2, 2, 3, 5, 4})

	sent := map[uint64]uint64{1: 1, 5: 2, 8: 3, 42: 4, 99: 5}
	for from, to := range sent {
		if v, err := fw.Lookup(from); v != to || err != nil {
			t.Errorf("Forward map should send %d to %d, got %d, %v\n", from, to, v, err)
		}
		if v, err := inv.Lookup(to); v != from || err != nil {
			t.Errorf("Inverse map should send %d to %d, got %d, %v\n", to, from, v, err)
		}
	}

	// Applying the forward map to the input must reproduce the relabeling,
	// and the inverse map must reconstruct the input.
	applied, err := fw.LookupField(field)
	if err != nil {
		t.Fatalf("Forward map application failed: %v\n", err)
	}
	if !applied.EqualValues(relabeled) {
		t.Errorf("Forward map of input differs from relabeled output: %s vs %s\n", applied, relabeled)
	}
	restored, err := inv.LookupField(relabeled)
	if err != nil {
		t.Fatalf("Inverse map application failed: %v\n", err)
	}
	if !restored.EqualValues(field) {
		t.Errorf("Inverse map of relabeled output differs from input: %s vs %s\n", restored, field)
	}
}

func TestRelabelOffset(t *testing.T) {
	field := mustField(t, seglib.T_uint64, []int{7}, []uint64{1, 1, 5, 5, 8, 99, 42})
	relabeled, _, _, err := RelabelSequential(field, 5)
	if err != nil {
		t.Fatalf("Relabel with offset failed: %v\n", err)
	}
	checkValues(t, relabeled, []uint64{5, 5, 6, 6, 7, 9, 8})
}

func TestRelabelBackground(t *testing.T) {
	field := mustField(t, seglib.T_uint32, []int{2, 3}, []uint64{0, 20, 0, 10, 20, 30})
	relabeled, fw, inv, err := RelabelSequential(field, 1)
	if err != nil {
		t.Fatalf("Relabel failed: %v\n", err)
	}
	checkValues(t, relabeled, []uint64{0, 2, 0, 1, 2, 3})
	if v, _ := fw.Lookup(0); v != 0 {
		t.Errorf("Background must map to itself in forward map, got %d\n", v)
	}
	if v, _ := inv.Lookup(0); v != 0 {
		t.Errorf("Background must map to itself in inverse map, got %d\n", v)
	}
}

func TestRelabelContiguity(t *testing.T) {
	field := mustField(t, seglib.T_uint64, []int{8}, []uint64{0, 1000, 7, 7, 500000, 0, 32, 1000})
	relabeled, _, _, err := RelabelSequential(field, 3)
	if err != nil {
		t.Fatalf("Relabel failed: %v\n", err)
	}
	distinct := make(map[uint64]struct{})
	for i := 0; i < relabeled.Size(); i++ {
		if v := relabeled.Value(i); v != 0 {
			distinct[v] = struct{}{}
		}
	}
	// 4 distinct nonzero input labels must land exactly on {3, 4, 5, 6}.
	if len(distinct) != 4 {
		t.Fatalf("Expected 4 distinct nonzero output labels, got %d\n", len(distinct))
	}
	for v := uint64(3); v <= 6; v++ {
		if _, found := distinct[v]; !found {
			t.Errorf("Expected output label %d in relabeled field\n", v)
		}
	}
}

func TestRelabelSingleLabel(t *testing.T) {
	field := mustField(t, seglib.T_uint64, []int{3}, []uint64{42, 42, 42})
	relabeled, _, _, err := RelabelSequential(field, 1)
	if err != nil {
		t.Fatalf("Relabel of single-label field failed: %v\n", err)
	}
	checkValues(t, relabeled, []uint64{1, 1, 1})

	zeros := mustField(t, seglib.T_uint64, []int{3}, []uint64{0, 0, 0})
	relabeled, fw, _, err := RelabelSequential(zeros, 1)
	if err != nil {
		t.Fatalf("Relabel of all-background field failed: %v\n", err)
	}
	checkValues(t, relabeled, []uint64{0, 0, 0})
	if v, _ := fw.Lookup(0); v != 0 {
		t.Errorf("All-background forward map should send 0 to 0, got %d\n", v)
	}
}

func TestRelabelTypePromotion(t *testing.T) {
	// uint8 input whose output range exceeds uint8 must widen.
	field := mustField(t, seglib.T_uint8, []int{3}, []uint64{7, 9, 11})
	relabeled, _, _, err := RelabelSequential(field, 300)
	if err != nil {
		t.Fatalf("Relabel failed: %v\n", err)
	}
	if relabeled.DataType() != seglib.T_uint16 {
		t.Errorf("Expected promotion to uint16, got %s\n", relabeled.DataType())
	}
	checkValues(t, relabeled, []uint64{300, 301, 302})

	// int8 input whose max output of 128 fits uint8 but not int8 must switch
	// to the unsigned type of the same width.
	field = mustField(t, seglib.T_int8, []int{3}, []uint64{3, 4, 5})
	relabeled, _, _, err = RelabelSequential(field, 126)
	if err != nil {
		t.Fatalf("Relabel failed: %v\n", err)
	}
	if relabeled.DataType() != seglib.T_uint8 {
		t.Errorf("Expected promotion to uint8, got %s\n", relabeled.DataType())
	}
	checkValues(t, relabeled, []uint64{126, 127, 128})

	// When the full output range fits the signed input type, it is kept.
	field = mustField(t, seglib.T_int8, []int{2}, []uint64{3, 4})
	relabeled, _, _, err = RelabelSequential(field, 126)
	if err != nil {
		t.Fatalf("Relabel failed: %v\n", err)
	}
	if relabeled.DataType() != seglib.T_int8 {
		t.Errorf("Expected int8 output for in-range labels, got %s\n", relabeled.DataType())
	}

	// A wide input type is never narrowed.
	field = mustField(t, seglib.T_uint64, []int{2}, []uint64{5, 6})
	relabeled, _, _, err = RelabelSequential(field, 1)
	if err != nil {
		t.Fatalf("Relabel failed: %v\n", err)
	}
	if relabeled.DataType() != seglib.T_uint64 {
		t.Errorf("Expected uint64 output for uint64 input, got %s\n", relabeled.DataType())
	}
}

func TestRelabelErrors(t *testing.T) {
	field := mustField(t, seglib.T_uint64, []int{2}, []uint64{1, 2})
	if _, _, _, err := RelabelSequential(field, 0); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected invalid argument for zero offset, got %v\n", err)
	}

	empty, err := seglib.NewField(seglib.T_uint64, []int{0})
	if err != nil {
		t.Fatalf("Unable to make empty field: %v\n", err)
	}
	if _, _, _, err := RelabelSequential(empty, 1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected invalid argument for empty field, got %v\n", err)
	}

	// 0xFFFFFFFFFFFFFFFF truncates to the int32 bit pattern for -1.
	negative := mustField(t, seglib.T_int32, []int{3}, []uint64{1, 0xFFFFFFFFFFFFFFFF, 2})
	if _, _, _, err := RelabelSequential(negative, 1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected invalid argument for negative labels, got %v\n", err)
	}

	floats, err := seglib.NewField(seglib.T_float32, []int{4})
	if err != nil {
		t.Fatalf("Unable to make float field: %v\n", err)
	}
	if _, _, _, err := RelabelSequential(floats, 1); !errors.Is(err, ErrTypeConstraint) {
		t.Errorf("Expected type constraint violation for float field, got %v\n", err)
	}
}

func TestMapFieldShape(t *testing.T) {
	field := mustField(t, seglib.T_uint64, []int{2, 2, 2},
		[]uint64{1, 2, 1, 2, 3, 3, 0, 1})
	out, err := MapField(field, []uint64{1, 2, 3}, []uint64{10, 20, 30}, seglib.T_uint64)
	if err != nil {
		t.Fatalf("MapField failed: %v\n", err)
	}
	if !out.SameShape(field) {
		t.Errorf("Expected mapped field of shape %v, got %v\n", field.Shape(), out.Shape())
	}
	checkValues(t, out, []uint64{10, 20, 10, 20, 30, 30, 0, 10})
}
