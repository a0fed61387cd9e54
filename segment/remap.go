/*
	This file implements sequential relabeling: mapping the distinct nonzero
	labels of a field onto a dense range while leaving background label 0
	untouched.
*/

package segment

import (
	"fmt"
	"sort"

	"github.com/segbase/seglib/seglib"
)

// MapField applies the correspondence inVals[i] -> outVals[i] to every
// element of a field, returning a new field of the same shape in outType.
// Elements not present in inVals map to zero.
func MapField(field *seglib.Field, inVals, outVals []uint64, outType seglib.DataType) (*seglib.Field, error) {
	if !field.DataType().IsInteger() {
		return nil, fmt.Errorf("%w: cannot remap field with %s elements", ErrTypeConstraint, field.DataType())
	}
	if !outType.IsInteger() {
		return nil, fmt.Errorf("%w: remap output type must be integer, got %s", ErrTypeConstraint, outType)
	}
	if len(inVals) != len(outVals) {
		return nil, fmt.Errorf("%w: remap requires equal domain and range lengths, got %d and %d",
			ErrInvalidArgument, len(inVals), len(outVals))
	}
	if len(inVals) == 0 {
		return nil, fmt.Errorf("%w: remap requires a non-empty correspondence", ErrInvalidArgument)
	}

	// Sorted copies of the correspondence for binary search.
	n := len(inVals)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return inVals[order[a]] < inVals[order[b]] })
	sortedIn := make([]uint64, n)
	sortedOut := make([]uint64, n)
	for i, j := range order {
		sortedIn[i] = inVals[j]
		sortedOut[i] = outVals[j]
	}

	out, err := seglib.NewField(outType, field.Shape())
	if err != nil {
		return nil, err
	}
	for i, size := 0, field.Size(); i < size; i++ {
		v := field.Value(i)
		j := sort.Search(n, func(j int) bool { return sortedIn[j] >= v })
		if j < n && sortedIn[j] == v {
			out.SetValue(i, sortedOut[j])
		}
	}
	return out, nil
}

// RelabelSequential relabels the distinct values of a label field to the
// contiguous range {offset, ..., offset + k - 1} where k is the number of
// distinct nonzero labels.  Label 0 denotes background and always maps to 0.
//
// The relabeled field keeps the input element type unless offset + k - 1
// cannot be represented in it, in which case the smallest sufficient unsigned
// type is used; the element type is never narrowed.
//
// The returned forward map sends original labels to new ones and the inverse
// map sends new labels back, so inv.LookupField(relabeled) reconstructs the
// input.  The maps do not retain the input field.
func RelabelSequential(field *seglib.Field, offset uint64) (relabeled *seglib.Field, fw, inv *ArrayMap, err error) {
	if offset == 0 {
		err = fmt.Errorf("%w: offset must be strictly positive", ErrInvalidArgument)
		return
	}
	if !field.DataType().IsInteger() {
		err = fmt.Errorf("%w: cannot relabel field with %s elements", ErrTypeConstraint, field.DataType())
		return
	}
	if field.Size() == 0 {
		err = fmt.Errorf("%w: cannot relabel an empty field", ErrInvalidArgument)
		return
	}
	if field.HasNegative() {
		err = fmt.Errorf("%w: cannot relabel a field that contains negative values", ErrInvalidArgument)
		return
	}

	inVals := distinctValues(field)
	outVals := make([]uint64, len(inVals))
	next := offset
	for i, v := range inVals {
		if v == 0 {
			// always map 0 to 0
			continue
		}
		outVals[i] = next
		next++
	}
	maxOut := outVals[len(outVals)-1]

	// Some logic to determine the output type: never return a smaller type
	// than the input type, but if the largest output label cannot round-trip
	// through the input type, widen to the minimum sufficient unsigned type.
	inputType := field.DataType()
	requiredType := seglib.MinScalarType(maxOut)
	var outputType seglib.DataType
	if seglib.DataTypeBytes(inputType) < seglib.DataTypeBytes(requiredType) {
		outputType = requiredType
	} else if inputType.CanRepresent(maxOut) {
		outputType = inputType
	} else {
		outputType = requiredType
	}

	relabeled, err = MapField(field, inVals, outVals, outputType)
	if err != nil {
		return
	}
	if fw, err = NewArrayMap(inVals, outVals, outputType); err != nil {
		return
	}
	inv, err = NewArrayMap(outVals, inVals, inputType)
	return
}

// distinctValues returns the sorted set of values present in the field.
func distinctValues(field *seglib.Field) []uint64 {
	seen := make(map[uint64]struct{})
	for i, size := 0, field.Size(); i < size; i++ {
		seen[field.Value(i)] = struct{}{}
	}
	vals := make([]uint64, 0, len(seen))
	for v := range seen {
		vals = append(vals, v)
	}
	sort.Slice(vals, func(a, b int) bool { return vals[a] < vals[b] })
	return vals
}
