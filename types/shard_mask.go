package types

import (
	"math/bits"
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// ShardMask is a fixed-size bit vector, bit i being set means the owner
// touches shard i. Its size is always a power of two: 2^log2NumLanes.
type ShardMask struct {
	size uint32
	bits *bitset.BitSet
}

func NewShardMask(size uint32) ShardMask {
	return ShardMask{size: size, bits: bitset.New(uint(size))}
}

func NewShardMaskFromLanes(log2NumLanes uint32, lanes ...uint32) ShardMask {
	m := NewShardMask(uint32(1) << log2NumLanes)
	for _, lane := range lanes {
		m.Set(lane)
	}
	return m
}

// FullShardMask returns a mask of the given size with every bit set
func FullShardMask(size uint32) ShardMask {
	m := NewShardMask(size)
	for i := uint32(0); i < size; i++ {
		m.Set(i)
	}
	return m
}

func (m ShardMask) Size() uint32 {
	return m.size
}

// Log2Size returns log2 of the size; ok is false if the size is not a power of two
func (m ShardMask) Log2Size() (log2 uint32, ok bool) {
	if m.size == 0 || m.size&(m.size-1) != 0 {
		return 0, false
	}
	return uint32(bits.TrailingZeros32(m.size)), true
}

func (m ShardMask) Set(i uint32) {
	if i >= m.size {
		panic("shard index out of range")
	}
	m.bits.Set(uint(i))
}

func (m ShardMask) Get(i uint32) bool {
	if m.bits == nil || i >= m.size {
		return false
	}
	return m.bits.Test(uint(i))
}

func (m ShardMask) PopCount() uint32 {
	if m.bits == nil {
		return 0
	}
	return uint32(m.bits.Count())
}

// Shards lists the set bits in ascending order
func (m ShardMask) Shards() []uint32 {
	if m.bits == nil {
		return nil
	}
	res := make([]uint32, 0, m.bits.Count())
	for i, ok := m.bits.NextSet(0); ok && i < uint(m.size); i, ok = m.bits.NextSet(i + 1) {
		res = append(res, uint32(i))
	}
	return res
}

func (m ShardMask) Clone() ShardMask {
	if m.bits == nil {
		return ShardMask{size: m.size, bits: bitset.New(uint(m.size))}
	}
	return ShardMask{size: m.size, bits: m.bits.Clone()}
}

// Union returns a new mask with the bits of both masks. Both must have the same size.
func (m ShardMask) Union(other ShardMask) ShardMask {
	if m.size != other.size {
		panic("cannot union shard masks of different sizes")
	}
	res := m.Clone()
	if other.bits != nil {
		res.bits.InPlaceUnion(other.bits)
	}
	return res
}

func (m ShardMask) Overlaps(other ShardMask) bool {
	if m.bits == nil || other.bits == nil || m.size != other.size {
		return false
	}
	return m.bits.IntersectionCardinality(other.bits) > 0
}

// Remap projects the mask onto a different number of lanes. Growing repeats
// the pattern, shrinking folds the higher lanes onto the lower ones.
func (m ShardMask) Remap(size uint32) ShardMask {
	res := NewShardMask(size)
	if m.size == 0 {
		return res
	}
	for _, i := range m.Shards() {
		if size >= m.size {
			for j := i; j < size; j += m.size {
				res.Set(j)
			}
		} else {
			res.Set(i % size)
		}
	}
	return res
}

func (m ShardMask) Words() []uint64 {
	if m.bits == nil {
		return nil
	}
	return m.bits.Bytes()
}

func ShardMaskFromWords(size uint32, words []uint64) ShardMask {
	m := NewShardMask(size)
	src := bitset.From(words)
	for i, ok := src.NextSet(0); ok && i < uint(size); i, ok = src.NextSet(i + 1) {
		m.bits.Set(i)
	}
	return m
}

func (m ShardMask) String() string {
	var sb strings.Builder
	for i := uint32(0); i < m.size; i++ {
		if m.Get(i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}
