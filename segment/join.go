package segment

import (
	"fmt"

	"github.com/segbase/seglib/seglib"
)

// JoinSegmentations returns the join of two label fields of the same shape:
// two positions share a label in the result if and only if they share a label
// in both s1 and s2.  The result labels form a minimal contiguous range
// starting at 1, with 0 kept for positions that are background in both
// relabeled inputs.
func JoinSegmentations(s1, s2 *seglib.Field) (*seglib.Field, error) {
	if !s1.SameShape(s2) {
		return nil, fmt.Errorf("%w: cannot join segmentations of shapes %v and %v",
			ErrDimensionMismatch, s1.Shape(), s2.Shape())
	}
	r1, _, _, err := RelabelSequential(s1, 1)
	if err != nil {
		return nil, err
	}
	r2, _, _, err := RelabelSequential(s2, 1)
	if err != nil {
		return nil, err
	}

	// Injective pairing of the two dense labelings: distinct (r1, r2) pairs
	// yield distinct combined values since r2 < max(r2) + 1.
	stride := r2.MaxValue() + 1
	combined, err := seglib.NewField(seglib.T_uint64, s1.Shape())
	if err != nil {
		return nil, err
	}
	for i, size := 0, combined.Size(); i < size; i++ {
		combined.SetValue(i, stride*r1.Value(i)+r2.Value(i))
	}

	joined, _, _, err := RelabelSequential(combined, 1)
	if err != nil {
		return nil, err
	}
	return joined, nil
}
