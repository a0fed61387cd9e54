/*
	This file implements ArrayMap, a sparse integer-keyed mapping that behaves
	like a dense lookup table without allocating storage proportional to the
	maximum key.
*/

package segment

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"
	"strings"

	"github.com/segbase/seglib/seglib"
)

// ArrayMap is a finite mapping from uint64 keys to integer values.  Keys are
// unique.  Any key not in the domain looks up as the zero value of the output
// type, mirroring indexing into a dense table that is zero off the support.
//
// All read operations are safe for concurrent use.  Update mutates the map in
// place and requires the caller to serialize access.
type ArrayMap struct {
	in      []uint64
	out     []uint64
	outType seglib.DataType

	// parallel copies sorted by key for binary search, rebuilt on Update
	sortedIn  []uint64
	sortedOut []uint64
}

// NewArrayMap builds a map sending in[i] to out[i].  Values are given in the
// canonical uint64 currency and must be representable in outType.  Duplicate
// keys are rejected rather than resolved last-write-wins, and the domain must
// be non-empty.
func NewArrayMap(in, out []uint64, outType seglib.DataType) (*ArrayMap, error) {
	if !outType.IsInteger() {
		return nil, fmt.Errorf("%w: ArrayMap output type must be integer, got %s", ErrTypeConstraint, outType)
	}
	if len(in) != len(out) {
		return nil, fmt.Errorf("%w: ArrayMap requires equal domain and range lengths, got %d and %d",
			ErrInvalidArgument, len(in), len(out))
	}
	if len(in) == 0 {
		return nil, fmt.Errorf("%w: ArrayMap requires a non-empty domain", ErrInvalidArgument)
	}
	for _, v := range out {
		if !outType.CanRepresent(v) {
			return nil, fmt.Errorf("%w: value %d overflows ArrayMap output type %s",
				ErrInvalidArgument, v, outType)
		}
	}
	m := &ArrayMap{
		in:      append([]uint64(nil), in...),
		out:     append([]uint64(nil), out...),
		outType: outType,
	}
	if err := m.rebuildSorted(); err != nil {
		return nil, err
	}
	return m, nil
}

// rebuildSorted regenerates the binary-searchable copies of the key/value
// pairs and detects duplicate keys.
func (m *ArrayMap) rebuildSorted() error {
	n := len(m.in)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return m.in[order[a]] < m.in[order[b]] })
	sortedIn := make([]uint64, n)
	sortedOut := make([]uint64, n)
	for i, j := range order {
		sortedIn[i] = m.in[j]
		sortedOut[i] = m.out[j]
	}
	for i := 1; i < n; i++ {
		if sortedIn[i] == sortedIn[i-1] {
			return fmt.Errorf("%w: duplicate key %d in ArrayMap domain", ErrInvalidArgument, sortedIn[i])
		}
	}
	m.sortedIn = sortedIn
	m.sortedOut = sortedOut
	return nil
}

// lookup returns the mapped value for key k, or the zero value if k is not in
// the domain.  Assumes a non-empty map.
func (m *ArrayMap) lookup(k uint64) uint64 {
	i := sort.Search(len(m.sortedIn), func(i int) bool { return m.sortedIn[i] >= k })
	if i < len(m.sortedIn) && m.sortedIn[i] == k {
		return m.sortedOut[i]
	}
	return 0
}

// Lookup returns the mapped value for key k.  Keys outside the domain return
// the zero value of the output type.
func (m *ArrayMap) Lookup(k uint64) (uint64, error) {
	if len(m.in) == 0 {
		return 0, fmt.Errorf("%w: lookup on ArrayMap with empty domain", ErrInvalidState)
	}
	return m.lookup(k), nil
}

// LookupBatch maps each key in ks, preserving order.  Keys outside the domain
// yield the zero value of the output type.
func (m *ArrayMap) LookupBatch(ks []uint64) ([]uint64, error) {
	if len(m.in) == 0 {
		return nil, fmt.Errorf("%w: lookup on ArrayMap with empty domain", ErrInvalidState)
	}
	out := make([]uint64, len(ks))
	for i, k := range ks {
		out[i] = m.lookup(k)
	}
	return out, nil
}

// LookupRange maps the keys of the integer range [start, stop) by step.
// A negative stop defaults to Len(), i.e. one past the largest key.
func (m *ArrayMap) LookupRange(start, stop, step int64) ([]uint64, error) {
	if start < 0 {
		return nil, fmt.Errorf("%w: negative range start %d", ErrInvalidArgument, start)
	}
	if step == 0 {
		return nil, fmt.Errorf("%w: range step cannot be zero", ErrInvalidArgument)
	}
	if stop < 0 {
		stop = int64(m.Len())
	}
	var ks []uint64
	if step > 0 {
		for i := start; i < stop; i += step {
			ks = append(ks, uint64(i))
		}
	} else {
		for i := start; i > stop; i += step {
			ks = append(ks, uint64(i))
		}
	}
	return m.LookupBatch(ks)
}

// LookupMask maps the positions where mask is true.
func (m *ArrayMap) LookupMask(mask []bool) ([]uint64, error) {
	var ks []uint64
	for i, set := range mask {
		if set {
			ks = append(ks, uint64(i))
		}
	}
	return m.LookupBatch(ks)
}

// LookupField maps every element of an n-dimensional field, returning a new
// field of the same shape in the map's output type.
func (m *ArrayMap) LookupField(field *seglib.Field) (*seglib.Field, error) {
	if len(m.in) == 0 {
		return nil, fmt.Errorf("%w: lookup on ArrayMap with empty domain", ErrInvalidState)
	}
	return MapField(field, m.in, m.out, m.outType)
}

// Len returns one more than the maximum key in the domain, matching the
// length of the dense table the map stands in for.  An emptied map has
// length 0.
func (m *ArrayMap) Len() int {
	if len(m.sortedIn) == 0 {
		return 0
	}
	return int(m.sortedIn[len(m.sortedIn)-1]) + 1
}

// OutType returns the integer type of the mapped values.
func (m *ArrayMap) OutType() seglib.DataType {
	return m.outType
}

// InValues returns a copy of the domain keys in insertion order.
func (m *ArrayMap) InValues() []uint64 {
	return append([]uint64(nil), m.in...)
}

// OutValues returns a copy of the range values in insertion order.
func (m *ArrayMap) OutValues() []uint64 {
	return append([]uint64(nil), m.out...)
}

// materializeDense returns the dense table of at least minLen entries where
// position k holds the mapped value of k.
func (m *ArrayMap) materializeDense(minLen int) []uint64 {
	n := m.Len()
	if minLen > n {
		n = minLen
	}
	dense := make([]uint64, n)
	for i, k := range m.in {
		dense[k] = m.out[i]
	}
	return dense
}

// Materialize returns a 1-d field of length Len() whose position k holds the
// mapped value of k.  This can be very large: it is sized by the largest key,
// so callers should bound the domain before materializing.
func (m *ArrayMap) Materialize() (*seglib.Field, error) {
	if len(m.in) == 0 {
		return nil, fmt.Errorf("%w: cannot materialize ArrayMap with empty domain", ErrInvalidState)
	}
	dense := m.materializeDense(0)
	return seglib.FieldFromValues(m.outType, []int{len(dense)}, dense)
}

// Update sets the mapped value of ks[i] to vs[i], in place.  The sparse state
// is recomputed from the nonzero entries of the updated dense table, so
// setting a key's value to zero removes the key: this compaction is
// intentional and keeps the map equivalent to its dense counterpart.  Keys at
// or beyond Len() grow the table.  The replacement state is fully computed
// before commit, so a failed update leaves the map untouched.
func (m *ArrayMap) Update(ks, vs []uint64) error {
	if len(ks) != len(vs) {
		return fmt.Errorf("%w: update requires equal key and value lengths, got %d and %d",
			ErrInvalidArgument, len(ks), len(vs))
	}
	var maxKey uint64
	for _, k := range ks {
		if k > maxKey {
			maxKey = k
		}
	}
	for _, v := range vs {
		if !m.outType.CanRepresent(v) {
			return fmt.Errorf("%w: value %d overflows ArrayMap output type %s",
				ErrInvalidArgument, v, m.outType)
		}
	}
	dense := m.materializeDense(int(maxKey) + 1)
	for i, k := range ks {
		dense[k] = vs[i]
	}
	var newIn, newOut []uint64
	for k, v := range dense {
		if v != 0 {
			newIn = append(newIn, uint64(k))
			newOut = append(newOut, v)
		}
	}
	m.in = newIn
	m.out = newOut
	m.sortedIn = append([]uint64(nil), newIn...)
	m.sortedOut = append([]uint64(nil), newOut...)
	return nil
}

const maxStringEntries = 4

func (m *ArrayMap) String() string {
	lines := []string{"ArrayMap:"}
	if len(m.in) <= maxStringEntries+1 {
		for i := range m.in {
			lines = append(lines, fmt.Sprintf("  %d -> %d", m.in[i], m.out[i]))
		}
	} else {
		for i := 0; i < maxStringEntries/2; i++ {
			lines = append(lines, fmt.Sprintf("  %d -> %d", m.in[i], m.out[i]))
		}
		lines = append(lines, "  ...")
		for i := len(m.in) - maxStringEntries/2; i < len(m.in); i++ {
			lines = append(lines, fmt.Sprintf("  %d -> %d", m.in[i], m.out[i]))
		}
	}
	return strings.Join(lines, "\n")
}

// mapMagic starts every serialized ArrayMap.
var mapMagic = [4]byte{'S', 'G', 'A', 'M'}

// MarshalBinary encodes the map as its output type, entry count, then
// little-endian key/value pairs in insertion order.
func (m *ArrayMap) MarshalBinary() ([]byte, error) {
	var buffer bytes.Buffer
	buffer.Write(mapMagic[:])
	buffer.WriteByte(byte(m.outType))
	if err := binary.Write(&buffer, binary.LittleEndian, uint32(len(m.in))); err != nil {
		return nil, err
	}
	for i := range m.in {
		if err := binary.Write(&buffer, binary.LittleEndian, m.in[i]); err != nil {
			return nil, err
		}
		if err := binary.Write(&buffer, binary.LittleEndian, m.out[i]); err != nil {
			return nil, err
		}
	}
	return buffer.Bytes(), nil
}

// UnmarshalBinary decodes a map serialized by MarshalBinary.
func (m *ArrayMap) UnmarshalBinary(b []byte) error {
	if len(b) < 9 || !bytes.Equal(b[:4], mapMagic[:]) {
		return fmt.Errorf("data lacks ArrayMap serialization magic bytes")
	}
	outType := seglib.DataType(b[4])
	n := int(binary.LittleEndian.Uint32(b[5:9]))
	if len(b) != 9+n*16 {
		return fmt.Errorf("serialized ArrayMap with %d entries requires %d bytes, got %d",
			n, 9+n*16, len(b))
	}
	in := make([]uint64, n)
	out := make([]uint64, n)
	for i := 0; i < n; i++ {
		in[i] = binary.LittleEndian.Uint64(b[9+i*16:])
		out[i] = binary.LittleEndian.Uint64(b[17+i*16:])
	}
	decoded, err := NewArrayMap(in, out, outType)
	if err != nil {
		return err
	}
	*m = *decoded
	return nil
}
